package model

import "github.com/google/uuid"

// SavedAddress is an address document from a user's address book.
// Fields are kept as a raw document because older clients wrote different field names.
type SavedAddress struct {
	ID     uuid.UUID      `json:"id" db:"id"`
	UserID string         `json:"userId" db:"user_id"`
	Data   map[string]any `json:"data" db:"data"`
}

// ShippingAddress is the immutable address snapshot stored on an order.
type ShippingAddress struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Landmark     string `json:"landmark,omitempty"`
}

// IsComplete reports whether every mandatory field is present.
func (a ShippingAddress) IsComplete() bool {
	return a.FullName != "" &&
		a.Phone != "" &&
		a.AddressLine1 != "" &&
		a.City != "" &&
		a.State != "" &&
		a.Pincode != ""
}
