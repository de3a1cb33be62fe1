package cart

import (
	"strings"

	"github.com/shopspring/decimal"

	cartsvc "github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/pkg/types"
)

type updateItemRequest struct {
	Quantity         *int   `json:"quantity,omitempty" validate:"omitempty,min=1,max=99"`
	ProductVariantID string `json:"productVariantId,omitempty" validate:"omitempty,max=128"`
	Size             string `json:"size,omitempty" validate:"omitempty,max=16"`
	MLVolume         int    `json:"ml_volume,omitempty" validate:"omitempty,min=1"`
}

func (u updateItemRequest) empty() bool {
	return u.Quantity == nil &&
		strings.TrimSpace(u.ProductVariantID) == "" &&
		strings.TrimSpace(u.Size) == "" &&
		u.MLVolume == 0
}

func (u updateItemRequest) toArgs() cartsvc.UpdateArgs {
	return cartsvc.UpdateArgs{
		Quantity:         u.Quantity,
		ProductVariantID: strings.TrimSpace(u.ProductVariantID),
		Size:             strings.TrimSpace(u.Size),
		MLVolume:         u.MLVolume,
	}
}

type cartView struct {
	CartID   string           `json:"cartId"`
	Items    []types.CartItem `json:"items"`
	Count    int              `json:"count"`
	Subtotal decimal.Decimal  `json:"subtotal"`
}
