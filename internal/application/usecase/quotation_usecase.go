package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/domain/repository"
)

// QuotationUseCase casos de uso para cotizaciones: CRUD más transición de estado.
type QuotationUseCase struct {
	repo       repository.Repository[*entity.Quotation]
	automation *AutomationUseCase
}

// NewQuotationUseCase construye el caso de uso.
func NewQuotationUseCase(repo repository.Repository[*entity.Quotation], automation *AutomationUseCase) *QuotationUseCase {
	return &QuotationUseCase{repo: repo, automation: automation}
}

func (uc *QuotationUseCase) List() ([]*entity.Quotation, error) {
	return uc.repo.List()
}

func (uc *QuotationUseCase) GetByID(id string) (*entity.Quotation, error) {
	return uc.repo.GetByID(id)
}

// Create crea una cotización en estado draft. El número de serie (COT-000001)
// lo asigna el proveedor de almacenamiento activo.
func (uc *QuotationUseCase) Create(in dto.CreateQuotationRequest) (*entity.Quotation, error) {
	quotation := &entity.Quotation{
		CustomerID: in.CustomerID,
		Items:      in.Items,
		ValidUntil: in.ValidUntil,
		Notes:      in.Notes,
	}
	return uc.repo.Create(quotation)
}

// Update aplica un patch parcial. QuoteNumber y estado no se tocan por aquí.
func (uc *QuotationUseCase) Update(id string, in dto.UpdateQuotationRequest) (*entity.Quotation, error) {
	patch, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return uc.repo.Update(id, patch)
}

// ChangeStatus aplica una transición del flujo draft -> sent -> accepted|rejected.
func (uc *QuotationUseCase) ChangeStatus(id, status string) (*entity.Quotation, error) {
	quotation, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if quotation == nil {
		return nil, domain.ErrNotFound
	}
	if !entity.CanTransitionQuotation(quotation.Status, status) {
		return nil, fmt.Errorf("%w: transición de %q a %q no permitida", domain.ErrValidation, quotation.Status, status)
	}
	patch, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return nil, err
	}
	stored, err := uc.repo.Update(id, patch)
	if err != nil {
		return nil, err
	}
	if status == entity.QuotationAccepted {
		uc.automation.EvaluateEvent(entity.TriggerQuotationAccepted, stored.ID)
	}
	return stored, nil
}

func (uc *QuotationUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}
