package dto

import (
	"stocklot/internal/domain/catalogs/product"
)

// --- Request DTOs ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	SKU         *string `json:"sku"`
	Unit        string  `json:"unit"`
	Description *string `json:"description"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	item := product.NewProduct(r.Code, r.Name)
	item.SKU = r.SKU
	if r.Unit != "" {
		item.Unit = r.Unit
	}
	item.Description = r.Description
	return item
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	SKU         *string `json:"sku"`
	Unit        string  `json:"unit" binding:"required"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(item *product.Product) {
	item.Code = r.Code
	item.Name = r.Name
	item.SKU = r.SKU
	item.Unit = r.Unit
	item.Description = r.Description
	item.Version = r.Version
}

// --- Response DTOs ---

// ProductResponse is the response body for a product.
type ProductResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	SKU          *string `json:"sku,omitempty"`
	Unit         string  `json:"unit"`
	Description  *string `json:"description,omitempty"`
	DeletionMark bool    `json:"deletionMark"`
	Version      int     `json:"version"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(item *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:           item.ID.String(),
		Code:         item.Code,
		Name:         item.Name,
		SKU:          item.SKU,
		Unit:         item.Unit,
		Description:  item.Description,
		DeletionMark: item.DeletionMark,
		Version:      item.Version,
	}
}
