package models

import "gorm.io/gorm"

// Address is a saved entry in a user's address book. Orders copy it into a
// ShippingAddress snapshot rather than referencing it, so editing or
// deleting a saved address never touches past orders.
type Address struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string `json:"-" gorm:"index;type:varchar(36)"`
	Label      string `json:"label" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// User represents an account holder.
type User struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name       string    `json:"name" validate:"required,min=2,max=100"`
	Email      string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string    `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	IsAdmin    bool      `json:"is_admin"`
	Addresses  []Address `json:"addresses" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Snapshot converts a saved address into the order-embedded form.
func (a *Address) Snapshot() ShippingAddress {
	return ShippingAddress{
		Label:      a.Label,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
