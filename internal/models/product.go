package models

import "time"

// ProductStatus is the lifecycle state of a product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Valid reports whether s is a known status.
func (s ProductStatus) Valid() bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}

// Product is a catalog item. SKU is unique across products.
type Product struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	SKU       string        `json:"sku"`
	Price     float64       `json:"price"`
	Quantity  int           `json:"quantity"`
	Category  string        `json:"category"`
	Status    ProductStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// CreateProductInput is the body of a create request. Price and Quantity are
// pointers so that a missing value is distinguishable from zero.
type CreateProductInput struct {
	Name     string        `binding:"required,min=2"                   json:"name"`
	SKU      string        `binding:"required,min=2"                   json:"sku"`
	Price    *float64      `binding:"required,gt=0"                    json:"price"`
	Quantity *int          `binding:"required,min=0"                   json:"quantity"`
	Category string        `binding:"required,min=2"                   json:"category"`
	Status   ProductStatus `binding:"omitempty,oneof=active inactive"  json:"status"`
}

// UpdateProductInput is a partial update; nil fields are left unchanged.
type UpdateProductInput struct {
	Name     *string        `binding:"omitempty,min=2"                  json:"name"`
	SKU      *string        `binding:"omitempty,min=2"                  json:"sku"`
	Price    *float64       `binding:"omitempty,gt=0"                   json:"price"`
	Quantity *int           `binding:"omitempty,min=0"                  json:"quantity"`
	Category *string        `binding:"omitempty,min=2"                  json:"category"`
	Status   *ProductStatus `binding:"omitempty,oneof=active inactive"  json:"status"`
}

// UpdateStatusInput is the body of a status change.
type UpdateStatusInput struct {
	Status ProductStatus `binding:"required,oneof=active inactive" json:"status"`
}
