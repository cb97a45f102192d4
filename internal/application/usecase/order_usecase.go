package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/domain/repository"
)

// OrderUseCase casos de uso para órdenes: CRUD más transición de estado.
type OrderUseCase struct {
	repo       repository.Repository[*entity.Order]
	automation *AutomationUseCase
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(repo repository.Repository[*entity.Order], automation *AutomationUseCase) *OrderUseCase {
	return &OrderUseCase{repo: repo, automation: automation}
}

func (uc *OrderUseCase) List() ([]*entity.Order, error) {
	return uc.repo.List()
}

func (uc *OrderUseCase) GetByID(id string) (*entity.Order, error) {
	return uc.repo.GetByID(id)
}

// Create crea una orden en estado pending. El total se deriva de las líneas.
func (uc *OrderUseCase) Create(in dto.CreateOrderRequest) (*entity.Order, error) {
	order := &entity.Order{
		CustomerID: in.CustomerID,
		Items:      in.Items,
		Notes:      in.Notes,
	}
	stored, err := uc.repo.Create(order)
	if err != nil {
		return nil, err
	}
	uc.automation.EvaluateEvent(entity.TriggerOrderCreated, stored.ID)
	return stored, nil
}

// Update aplica un patch parcial. El estado no se toca por aquí.
func (uc *OrderUseCase) Update(id string, in dto.UpdateOrderRequest) (*entity.Order, error) {
	patch, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return uc.repo.Update(id, patch)
}

// ChangeStatus avanza la orden al siguiente estado de la cadena. Saltos y
// retrocesos se rechazan con ErrValidation.
func (uc *OrderUseCase) ChangeStatus(id, status string) (*entity.Order, error) {
	order, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !entity.CanTransitionOrder(order.Status, status) {
		return nil, fmt.Errorf("%w: transición de %q a %q no permitida", domain.ErrValidation, order.Status, status)
	}
	patch, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return nil, err
	}
	return uc.repo.Update(id, patch)
}

func (uc *OrderUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}
