package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductType is the explicit discriminant for cart items and products.
type ProductType string

const (
	ProductTypeClothing ProductType = "clothing"
	ProductTypePerfume  ProductType = "perfume"
)

func (p ProductType) IsValid() bool {
	switch p {
	case ProductTypeClothing, ProductTypePerfume:
		return true
	}
	return false
}

// Variant carries the type-specific part of a cart item. It is implemented only by
// ClothingVariant and PerfumeVariant.
type Variant interface {
	ProductType() ProductType
	Label() string
	isVariant()
}

// ClothingVariant describes a garment size selection.
type ClothingVariant struct {
	Size          string
	PossibleSizes []string
}

func (ClothingVariant) ProductType() ProductType { return ProductTypeClothing }
func (v ClothingVariant) Label() string {
	if v.Size == "" {
		return ""
	}
	return "Size " + v.Size
}
func (ClothingVariant) isVariant() {}

// PerfumeVariant describes a fragrance bottle volume in millilitres.
type PerfumeVariant struct {
	MLVolume        int
	PossibleVolumes []int
}

func (PerfumeVariant) ProductType() ProductType { return ProductTypePerfume }
func (v PerfumeVariant) Label() string {
	if v.MLVolume <= 0 {
		return ""
	}
	return fmt.Sprintf("%d ml", v.MLVolume)
}
func (PerfumeVariant) isVariant() {}

// CartItem is one line of the server-authoritative cart.
type CartItem struct {
	ID               string
	ProductID        string
	ProductVariantID string
	Quantity         int
	Price            decimal.Decimal
	Name             string
	Image            string
	Description      string
	Type             ProductType
	Variant          Variant
}

// LineTotal is price × quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Clothing returns the clothing variant when the item is a garment.
func (c CartItem) Clothing() (ClothingVariant, bool) {
	v, ok := c.Variant.(ClothingVariant)
	return v, ok
}

// Perfume returns the perfume variant when the item is a fragrance.
func (c CartItem) Perfume() (PerfumeVariant, bool) {
	v, ok := c.Variant.(PerfumeVariant)
	return v, ok
}

// WishlistProductID is the product reference used when moving the item to the wishlist.
func (c CartItem) WishlistProductID() string {
	if strings.TrimSpace(c.ProductID) != "" {
		return c.ProductID
	}
	return c.ID
}

type cartItemWire struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"productId,omitempty"`
	ProductVariantID string          `json:"productVariantId,omitempty"`
	Quantity         int             `json:"quantity"`
	Size             *string         `json:"size,omitempty"`
	MLVolume         *int            `json:"ml_volume,omitempty"`
	PossibleSizes    []string        `json:"possibleSizes,omitempty"`
	PossibleVolumes  []int           `json:"possibleVolumes,omitempty"`
	Price            decimal.Decimal `json:"price"`
	Name             string          `json:"name"`
	Image            string          `json:"image"`
	Description      string          `json:"description"`
	ProductType      ProductType     `json:"productType"`
}

func (c CartItem) MarshalJSON() ([]byte, error) {
	wire := cartItemWire{
		ID:               c.ID,
		ProductID:        c.ProductID,
		ProductVariantID: c.ProductVariantID,
		Quantity:         c.Quantity,
		Price:            c.Price,
		Name:             c.Name,
		Image:            c.Image,
		Description:      c.Description,
		ProductType:      c.Type,
	}
	switch v := c.Variant.(type) {
	case ClothingVariant:
		if v.Size != "" {
			size := v.Size
			wire.Size = &size
		}
		wire.PossibleSizes = v.PossibleSizes
	case PerfumeVariant:
		if v.MLVolume > 0 {
			ml := v.MLVolume
			wire.MLVolume = &ml
		}
		wire.PossibleVolumes = v.PossibleVolumes
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes the backend's flat item shape, dispatching on productType.
func (c *CartItem) UnmarshalJSON(data []byte) error {
	var wire cartItemWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	item := CartItem{
		ID:               wire.ID,
		ProductID:        wire.ProductID,
		ProductVariantID: wire.ProductVariantID,
		Quantity:         wire.Quantity,
		Price:            wire.Price,
		Name:             wire.Name,
		Image:            wire.Image,
		Description:      wire.Description,
		Type:             wire.ProductType,
	}
	switch wire.ProductType {
	case ProductTypeClothing:
		v := ClothingVariant{PossibleSizes: wire.PossibleSizes}
		if wire.Size != nil {
			v.Size = *wire.Size
		}
		item.Variant = v
	case ProductTypePerfume:
		v := PerfumeVariant{PossibleVolumes: wire.PossibleVolumes}
		if wire.MLVolume != nil {
			v.MLVolume = *wire.MLVolume
		}
		item.Variant = v
	default:
		return fmt.Errorf("cart item %q: unknown productType %q", wire.ID, wire.ProductType)
	}
	*c = item
	return nil
}

// SumQuantity returns the total number of units across items.
func SumQuantity(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
