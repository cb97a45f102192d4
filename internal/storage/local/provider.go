// Package local implementa el proveedor de persistencia sobre el Record Store:
// CRUD completo por entidad, respaldos, export/import y estadísticas, sin
// ninguna dependencia de red.
package local

import (
	"fmt"
	"sync"

	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/domain/repository"
	"github.com/chabs-app/chabs-api/internal/storage"
	"github.com/chabs-app/chabs-api/internal/storage/recordstore"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

var _ storage.Provider = (*Provider)(nil)

// Colecciones internas del proveedor (no exportables como entidades).
const (
	colCounters     = "_counters"
	colBackupsIndex = "_backups"
	backupKeyPrefix = "_backup_"
)

// Provider proveedor local. Las mutaciones de todas las colecciones se
// serializan con un solo mutex: el modelo de concurrencia es el de un único
// hilo lógico de control por instancia.
type Provider struct {
	store *recordstore.Store
	log   *logger.Logger
	mu    sync.Mutex

	products   *Collection[*entity.Product]
	customers  *Collection[*entity.Customer]
	suppliers  *Collection[*entity.Supplier]
	orders     *Collection[*entity.Order]
	quotations *Collection[*entity.Quotation]
	users      *Collection[*entity.User]
	rules      *Collection[*entity.AutomationRule]
}

// NewProvider construye el proveedor local sobre un Record Store ya abierto.
func NewProvider(store *recordstore.Store, log *logger.Logger) *Provider {
	p := &Provider{store: store, log: log}

	p.products = newCollection(storage.ColProducts, store, &p.mu,
		func(list []*entity.Product, e *entity.Product, _ bool) error {
			if err := e.Validate(); err != nil {
				return err
			}
			return entity.CheckDuplicateSKU(list, e)
		})
	p.customers = newCollection(storage.ColCustomers, store, &p.mu,
		func(_ []*entity.Customer, e *entity.Customer, _ bool) error {
			return e.Validate()
		})
	p.suppliers = newCollection(storage.ColSuppliers, store, &p.mu,
		func(_ []*entity.Supplier, e *entity.Supplier, _ bool) error {
			return e.Validate()
		})
	p.orders = newCollection(storage.ColOrders, store, &p.mu,
		func(_ []*entity.Order, e *entity.Order, isNew bool) error {
			if isNew && e.Status == "" {
				e.Status = entity.OrderPending
			}
			// Total siempre derivado de las líneas, nunca del llamador.
			e.RecalculateTotal()
			return e.Validate()
		})
	p.quotations = newCollection(storage.ColQuotations, store, &p.mu,
		func(list []*entity.Quotation, e *entity.Quotation, isNew bool) error {
			if isNew && e.Status == "" {
				e.Status = entity.QuotationDraft
			}
			if isNew && e.QuoteNumber == "" {
				e.QuoteNumber = p.nextQuoteNumber()
			}
			for _, other := range list {
				if other.ID != e.ID && other.QuoteNumber == e.QuoteNumber {
					return fmt.Errorf("%w: quote_number duplicado: %s", domain.ErrValidation, e.QuoteNumber)
				}
			}
			e.RecalculateTotal()
			return e.Validate()
		})
	p.users = newCollection(storage.ColUsers, store, &p.mu,
		func(list []*entity.User, e *entity.User, _ bool) error {
			if err := e.Validate(); err != nil {
				return err
			}
			for _, other := range list {
				if other.ID != e.ID && other.Email == e.Email {
					return domain.ErrEmailAlreadyExists
				}
			}
			return nil
		})
	p.rules = newCollection(storage.ColAutomationRules, store, &p.mu,
		func(_ []*entity.AutomationRule, e *entity.AutomationRule, _ bool) error {
			return e.Validate()
		})

	return p
}

func (p *Provider) Products() repository.Repository[*entity.Product]     { return p.products }
func (p *Provider) Customers() repository.Repository[*entity.Customer]   { return p.customers }
func (p *Provider) Suppliers() repository.Repository[*entity.Supplier]   { return p.suppliers }
func (p *Provider) Orders() repository.Repository[*entity.Order]         { return p.orders }
func (p *Provider) Quotations() repository.Repository[*entity.Quotation] { return p.quotations }
func (p *Provider) Users() repository.Repository[*entity.User]           { return p.users }
func (p *Provider) AutomationRules() repository.Repository[*entity.AutomationRule] {
	return p.rules
}

// Close no retiene recursos: el Record Store no mantiene descriptores abiertos.
func (p *Provider) Close() {}

// ApplyChange aplica un cambio originado en el backend remoto (feed de
// suscripción) directamente sobre la colección local, sin re-validar ni
// volver a espejar.
func (p *Provider) ApplyChange(ev storage.ChangeEvent) error {
	kind := string(ev.Kind)
	switch ev.Collection {
	case storage.ColProducts:
		return p.products.applyChange(kind, ev.EntityID, ev.Doc)
	case storage.ColCustomers:
		return p.customers.applyChange(kind, ev.EntityID, ev.Doc)
	case storage.ColSuppliers:
		return p.suppliers.applyChange(kind, ev.EntityID, ev.Doc)
	case storage.ColOrders:
		return p.orders.applyChange(kind, ev.EntityID, ev.Doc)
	case storage.ColQuotations:
		return p.quotations.applyChange(kind, ev.EntityID, ev.Doc)
	case storage.ColUsers:
		return p.users.applyChange(kind, ev.EntityID, ev.Doc)
	case storage.ColAutomationRules:
		return p.rules.applyChange(kind, ev.EntityID, ev.Doc)
	default:
		return fmt.Errorf("%w: colección desconocida: %q", domain.ErrValidation, ev.Collection)
	}
}

// nextQuoteNumber consecutivo humano-legible de cotizaciones (serie COT-000001).
// Se llama con p.mu ya tomado (desde el hook de create).
func (p *Provider) nextQuoteNumber() string {
	counters := map[string]int64{}
	p.store.ReadCollection(colCounters, &counters)
	if counters == nil {
		counters = map[string]int64{}
	}
	counters["quotation"]++
	if err := p.store.WriteCollection(colCounters, counters); err != nil {
		p.log.Warn().Err(err).Msg("persistir contador de cotizaciones")
	}
	return fmt.Sprintf("COT-%06d", counters["quotation"])
}
