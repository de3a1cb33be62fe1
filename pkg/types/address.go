package types

import (
	"fmt"
	"strings"
)

// Address is a saved shipping/billing address from the shopper's address book.
type Address struct {
	ID           string  `json:"id"`
	AddressLine1 string  `json:"address_line1" validate:"required,max=200"`
	AddressLine2 *string `json:"address_line2,omitempty" validate:"omitempty,max=200"`
	City         string  `json:"city" validate:"required,max=100"`
	State        *string `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode   string  `json:"postal_code" validate:"required,max=20"`
	Country      string  `json:"country" validate:"required,max=64"`
	IsDefault    bool    `json:"is_default"`
}

// Validate performs the cheap shape checks the address form relies on.
func (a Address) Validate() error {
	if strings.TrimSpace(a.AddressLine1) == "" {
		return fmt.Errorf("address: missing address_line1")
	}
	if strings.TrimSpace(a.City) == "" {
		return fmt.Errorf("address: missing city")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		return fmt.Errorf("address: missing postal_code")
	}
	if strings.TrimSpace(a.Country) == "" {
		return fmt.Errorf("address: missing country")
	}
	return nil
}

// Label renders the address on a single line for summaries.
func (a Address) Label() string {
	parts := []string{strings.TrimSpace(a.AddressLine1)}
	if a.AddressLine2 != nil && strings.TrimSpace(*a.AddressLine2) != "" {
		parts = append(parts, strings.TrimSpace(*a.AddressLine2))
	}
	parts = append(parts, strings.TrimSpace(a.City))
	if a.State != nil && strings.TrimSpace(*a.State) != "" {
		parts = append(parts, strings.TrimSpace(*a.State))
	}
	parts = append(parts, strings.TrimSpace(a.PostalCode), strings.TrimSpace(a.Country))

	clean := parts[:0]
	for _, p := range parts {
		if p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, ", ")
}

// DefaultAddress returns the address flagged as default, falling back to the first one.
// The second return value is false when the book is empty.
func DefaultAddress(book []Address) (Address, bool) {
	if len(book) == 0 {
		return Address{}, false
	}
	for _, a := range book {
		if a.IsDefault {
			return a, true
		}
	}
	return book[0], true
}

// FindAddress looks an address up by id.
func FindAddress(book []Address, id string) (Address, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Address{}, false
	}
	for _, a := range book {
		if a.ID == id {
			return a, true
		}
	}
	return Address{}, false
}
