package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos más ajuste de stock.
type ProductUseCase struct {
	repo       repository.Repository[*entity.Product]
	automation *AutomationUseCase
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.Repository[*entity.Product], automation *AutomationUseCase) *ProductUseCase {
	return &ProductUseCase{repo: repo, automation: automation}
}

// List lista los productos en orden de inserción.
func (uc *ProductUseCase) List() ([]*entity.Product, error) {
	return uc.repo.List()
}

// GetByID obtiene un producto; (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(id string) (*entity.Product, error) {
	return uc.repo.GetByID(id)
}

// Create crea un producto. La unicidad de SKU la garantiza el proveedor de
// almacenamiento activo.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*entity.Product, error) {
	product := &entity.Product{
		SKU:          in.SKU,
		Name:         in.Name,
		Category:     in.Category,
		Unit:         in.Unit,
		CostPrice:    in.CostPrice,
		SellingPrice: in.SellingPrice,
		Stock:        in.Stock,
		MinimumStock: in.MinimumStock,
		Description:  in.Description,
	}
	stored, err := uc.repo.Create(product)
	if err != nil {
		return nil, err
	}
	uc.automation.EvaluateLowStock(stored)
	return stored, nil
}

// Update aplica un patch parcial sobre un producto.
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*entity.Product, error) {
	patch, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	stored, err := uc.repo.Update(id, patch)
	if err != nil {
		return nil, err
	}
	if in.Stock != nil || in.MinimumStock != nil {
		uc.automation.EvaluateLowStock(stored)
	}
	return stored, nil
}

// Delete elimina un producto.
func (uc *ProductUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

// AdjustStock aplica un ajuste relativo de stock. El stock resultante nunca
// puede quedar negativo.
func (uc *ProductUseCase) AdjustStock(id string, delta int) (*entity.Product, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	next := product.Stock + delta
	if next < 0 {
		return nil, fmt.Errorf("%w: el ajuste dejaría el stock en %d", domain.ErrValidation, next)
	}
	patch, err := json.Marshal(map[string]int{"stock": next})
	if err != nil {
		return nil, err
	}
	stored, err := uc.repo.Update(id, patch)
	if err != nil {
		return nil, err
	}
	uc.automation.EvaluateLowStock(stored)
	return stored, nil
}
