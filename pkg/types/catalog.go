package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ProductVariant is a purchasable size or bottle of a product.
type ProductVariant struct {
	ID       string          `json:"id"`
	Size     string          `json:"size,omitempty"`
	MLVolume int             `json:"ml_volume,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Images      []string         `json:"images,omitempty"`
	ProductType ProductType      `json:"productType"`
	CategoryID  string           `json:"categoryId,omitempty"`
	Variants    []ProductVariant `json:"variants,omitempty"`
}

type WishlistItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	ProductType ProductType     `json:"productType,omitempty"`
}

type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// Terminal reports whether the order can no longer change state.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCancelled, OrderStatusFailed, OrderStatusDelivered:
		return true
	}
	return false
}

type Order struct {
	ID        string          `json:"id"`
	Status    OrderStatus     `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	Items     []CartItem      `json:"items,omitempty"`
}
