package dto

import "github.com/shopspring/decimal"

// CreateProductRequest datos para crear un producto.
type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Stock        int             `json:"stock"`
	MinimumStock int             `json:"minimum_stock"`
	Description  string          `json:"description"`
}

// UpdateProductRequest actualización parcial: solo los campos presentes
// en el JSON entrante se aplican sobre el registro almacenado.
type UpdateProductRequest struct {
	SKU          *string          `json:"sku,omitempty"`
	Name         *string          `json:"name,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Unit         *string          `json:"unit,omitempty"`
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`
	Stock        *int             `json:"stock,omitempty"`
	MinimumStock *int             `json:"minimum_stock,omitempty"`
	Description  *string          `json:"description,omitempty"`
}

// AdjustStockRequest ajuste relativo de stock (positivo o negativo).
type AdjustStockRequest struct {
	Delta int `json:"delta"`
}
