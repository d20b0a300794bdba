package types

import "encoding/json"

// ShippingAddress is the contact address captured at checkout. It is
// serialized to a single text column on the customer record, matching the
// storefront client payload shape.
type ShippingAddress struct {
	Line1      string `json:"address_line1"`
	Line2      string `json:"address_line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Serialize renders the address as the stored JSON string.
func (a ShippingAddress) Serialize() string {
	raw, err := json.Marshal(a)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// ParseShippingAddress decodes a stored address string. An empty or invalid
// value yields the zero address rather than an error; the snapshot on the
// order is authoritative for fulfillment.
func ParseShippingAddress(raw string) ShippingAddress {
	var addr ShippingAddress
	if raw == "" {
		return addr
	}
	_ = json.Unmarshal([]byte(raw), &addr)
	return addr
}
