package models

import (
	"math"

	"gorm.io/gorm"
)

// ProductImage is a stored image reference (upload itself happens out of band).
type ProductImage struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Product represents a sellable item in the catalog.
type Product struct {
	ID                 string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name               string         `json:"name" validate:"required,min=3,max=100"`
	Description        string         `json:"description" validate:"required,max=2000"`
	Price              float64        `json:"price" validate:"required,gt=0"`
	DiscountPrice      float64        `json:"discount_price" validate:"omitempty,gt=0"`
	DiscountPercentage int            `json:"discount_percentage"`
	Category           string         `json:"category" validate:"required,oneof=fashion electronics phones toys laptops gaming accessories"`
	Brand              string         `json:"brand"`
	Stock              int            `json:"stock" validate:"gte=0"`
	Images             []ProductImage `json:"images" gorm:"serializer:json"`
	IsFeatured         bool           `json:"is_featured"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// EffectivePrice returns the unit price a buyer is actually charged:
// the discount price when it is set and undercuts the list price, else
// the list price. This is the only price source used at settlement.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice > 0 && p.DiscountPrice < p.Price {
		return p.DiscountPrice
	}
	return p.Price
}

// RecomputeDiscount derives DiscountPercentage from Price and DiscountPrice.
// The percentage is never accepted from clients: percentage saved =
// (price - discountPrice) / price * 100, rounded to the nearest integer.
func (p *Product) RecomputeDiscount() {
	if p.Price <= 0 || p.DiscountPrice <= 0 || p.DiscountPrice >= p.Price {
		p.DiscountPercentage = 0
		return
	}
	p.DiscountPercentage = int(math.Round((p.Price - p.DiscountPrice) / p.Price * 100))
}
