package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chabs-app/chabs-api/internal/domain"
)

// Product representa un producto o SKU del catálogo.
// Stock es inventario global (un solo depósito); MinimumStock alimenta las reglas de automatización.
type Product struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"` // único en la colección, comparación exacta
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Stock        int             `json:"stock"`
	MinimumStock int             `json:"minimum_stock"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (p *Product) RecordID() string      { return p.ID }
func (p *Product) SetRecordID(id string) { p.ID = id }

func (p *Product) Touch(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// Validate reglas de negocio del producto: campos requeridos y stock no negativo.
func (p *Product) Validate() error {
	if p.SKU == "" || p.Name == "" {
		return fmt.Errorf("%w: sku y name son requeridos", domain.ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock no puede ser negativo", domain.ErrValidation)
	}
	if p.MinimumStock < 0 {
		return fmt.Errorf("%w: minimum_stock no puede ser negativo", domain.ErrValidation)
	}
	return nil
}

// CheckDuplicateSKU verifica unicidad de SKU (case-sensitive) contra la colección.
// Se ignora el propio registro (mismo ID) para permitir updates que no cambian el SKU.
func CheckDuplicateSKU(list []*Product, candidate *Product) error {
	for _, other := range list {
		if other.ID != candidate.ID && other.SKU == candidate.SKU {
			return domain.ErrDuplicateSKU
		}
	}
	return nil
}
