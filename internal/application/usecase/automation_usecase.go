package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/domain/repository"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

// AutomationUseCase CRUD de reglas de automatización y su evaluación.
// Las acciones son registradas (log estructurado), no ejecutan efectos externos.
type AutomationUseCase struct {
	rules repository.Repository[*entity.AutomationRule]
	log   *logger.Logger
}

// NewAutomationUseCase construye el caso de uso.
func NewAutomationUseCase(rules repository.Repository[*entity.AutomationRule], log *logger.Logger) *AutomationUseCase {
	return &AutomationUseCase{rules: rules, log: log}
}

// List lista las reglas.
func (uc *AutomationUseCase) List() ([]*entity.AutomationRule, error) {
	return uc.rules.List()
}

// GetByID obtiene una regla; (nil, nil) si no existe.
func (uc *AutomationUseCase) GetByID(id string) (*entity.AutomationRule, error) {
	return uc.rules.GetByID(id)
}

// Create crea una regla.
func (uc *AutomationUseCase) Create(in dto.CreateAutomationRuleRequest) (*entity.AutomationRule, error) {
	rule := &entity.AutomationRule{
		Name:      in.Name,
		Trigger:   in.Trigger,
		Threshold: in.Threshold,
		Action:    in.Action,
		Enabled:   in.Enabled,
	}
	return uc.rules.Create(rule)
}

// Update aplica un patch parcial sobre una regla.
func (uc *AutomationUseCase) Update(id string, in dto.UpdateAutomationRuleRequest) (*entity.AutomationRule, error) {
	patch, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return uc.rules.Update(id, patch)
}

// Delete elimina una regla.
func (uc *AutomationUseCase) Delete(id string) error {
	return uc.rules.Delete(id)
}

// EvaluateLowStock evalúa las reglas low_stock habilitadas tras una mutación
// de stock. Si Threshold es 0 se usa el MinimumStock del producto. Los fallos
// de evaluación nunca se propagan al llamador.
func (uc *AutomationUseCase) EvaluateLowStock(p *entity.Product) {
	rules, err := uc.rules.List()
	if err != nil {
		uc.log.Warn().Err(err).Msg("automation: no se pudieron leer las reglas")
		return
	}
	for _, r := range rules {
		if !r.Enabled || r.Trigger != entity.TriggerLowStock {
			continue
		}
		threshold := r.Threshold
		if threshold == 0 {
			threshold = p.MinimumStock
		}
		if p.Stock <= threshold {
			uc.log.Info().
				Str("rule", r.Name).
				Str("trigger", r.Trigger).
				Str("action", r.Action).
				Str("product_id", p.ID).
				Str("sku", p.SKU).
				Int("stock", p.Stock).
				Int("threshold", threshold).
				Msg("automation: regla disparada")
		}
	}
}

// EvaluateEvent evalúa las reglas habilitadas para un disparador de evento
// (order_created, quotation_accepted). entityID identifica el documento origen.
func (uc *AutomationUseCase) EvaluateEvent(trigger, entityID string) {
	rules, err := uc.rules.List()
	if err != nil {
		uc.log.Warn().Err(err).Msg("automation: no se pudieron leer las reglas")
		return
	}
	for _, r := range rules {
		if !r.Enabled || r.Trigger != trigger {
			continue
		}
		uc.log.Info().
			Str("rule", r.Name).
			Str("trigger", r.Trigger).
			Str("action", r.Action).
			Str("entity_id", entityID).
			Msg("automation: regla disparada")
	}
}
