package models

import "time"

// Order statuses. An order is born "paid" at settlement; admins advance it.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatus reports whether s belongs to the closed status set.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a line item snapshot. Name, price, image and discount are
// copied from the Product at settlement time so later catalog edits never
// rewrite what the buyer was actually charged.
type OrderItem struct {
	ProductID          string  `json:"product_id"`
	Name               string  `json:"name"`
	UnitPrice          float64 `json:"unit_price"`
	Quantity           int     `json:"quantity"`
	ImageURL           string  `json:"image_url"`
	DiscountPercentage int     `json:"discount_percentage"`
}

// ShippingAddress is the address snapshot stored on an order. It is copied
// from the buyer's address book (or a one-off address) at settlement.
type ShippingAddress struct {
	Label      string `json:"label"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// Order represents one settled purchase.
type Order struct {
	ID            string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string      `json:"user_id" gorm:"index;type:varchar(36)"`
	Items         []OrderItem `json:"items" gorm:"serializer:json"`
	Total         float64     `json:"total"`
	PaymentMethod string      `json:"payment_method"`
	// Reference is the payment provider's transaction reference. It doubles
	// as the settlement idempotency key, hence the unique index.
	Reference string          `json:"reference" gorm:"uniqueIndex;type:varchar(100);not null"`
	Address   ShippingAddress `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
