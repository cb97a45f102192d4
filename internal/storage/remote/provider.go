// Package remote implementa el mismo contrato CRUD que el proveedor local,
// pero contra un servicio de datos estructurado en red: una tabla de
// documentos PostgreSQL (colección + id + doc jsonb). Añade la sonda de
// alcanzabilidad y el feed de cambios por LISTEN/NOTIFY.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/domain/repository"
	"github.com/chabs-app/chabs-api/internal/storage"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

var _ storage.Provider = (*Provider)(nil)

// callTimeout límite explícito por llamada remota; su expiración se reporta
// como domain.ErrRemoteUnavailable.
const callTimeout = 10 * time.Second

// notifyChannel canal de pg_notify para el feed de cambios.
const notifyChannel = "chabs_changes"

// Querier subconjunto de pgxpool.Pool usado por las colecciones (usable con pool o tx).
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)

// Provider proveedor remoto sobre PostgreSQL.
type Provider struct {
	pool *pgxpool.Pool
	log  *logger.Logger

	// instanceID viaja como origen en las notificaciones para que cada
	// cliente pueda descartar el eco de sus propias escrituras.
	instanceID string

	products   *Collection[*entity.Product]
	customers  *Collection[*entity.Customer]
	suppliers  *Collection[*entity.Supplier]
	orders     *Collection[*entity.Order]
	quotations *Collection[*entity.Quotation]
	users      *Collection[*entity.User]
	rules      *Collection[*entity.AutomationRule]

	subs *subscriber
}

// NewProvider construye el proveedor remoto. No requiere conectividad: la
// primera operación o HealthCheck la establecerá.
func NewProvider(pool *pgxpool.Pool, log *logger.Logger) *Provider {
	p := &Provider{
		pool:       pool,
		log:        log,
		instanceID: uuid.NewString(),
	}
	p.subs = newSubscriber(p.pool, p.log)

	p.products = newCollection(p, storage.ColProducts,
		func(list []*entity.Product, e *entity.Product, _ bool) error {
			if err := e.Validate(); err != nil {
				return err
			}
			return entity.CheckDuplicateSKU(list, e)
		})
	p.customers = newCollection(p, storage.ColCustomers,
		func(_ []*entity.Customer, e *entity.Customer, _ bool) error {
			return e.Validate()
		})
	p.suppliers = newCollection(p, storage.ColSuppliers,
		func(_ []*entity.Supplier, e *entity.Supplier, _ bool) error {
			return e.Validate()
		})
	p.orders = newCollection(p, storage.ColOrders,
		func(_ []*entity.Order, e *entity.Order, isNew bool) error {
			if isNew && e.Status == "" {
				e.Status = entity.OrderPending
			}
			e.RecalculateTotal()
			return e.Validate()
		})
	p.quotations = newCollection(p, storage.ColQuotations,
		func(list []*entity.Quotation, e *entity.Quotation, isNew bool) error {
			if isNew && e.Status == "" {
				e.Status = entity.QuotationDraft
			}
			if isNew && e.QuoteNumber == "" {
				e.QuoteNumber = nextQuoteNumber(list)
			}
			for _, other := range list {
				if other.ID != e.ID && other.QuoteNumber == e.QuoteNumber {
					return fmt.Errorf("%w: quote_number duplicado: %s", domain.ErrValidation, e.QuoteNumber)
				}
			}
			e.RecalculateTotal()
			return e.Validate()
		})
	p.users = newCollection(p, storage.ColUsers,
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
	p.rules = newCollection(p, storage.ColAutomationRules,
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

// Close detiene el listener de notificaciones y cierra el pool.
func (p *Provider) Close() {
	p.subs.close()
	p.pool.Close()
}

// InstanceID identifica esta instancia de proveedor en el feed de cambios.
func (p *Provider) InstanceID() string { return p.instanceID }

// EnsureSchema crea la tabla de documentos si no existe. Requiere conectividad;
// en modo híbrido el coordinador la invoca tras el primer health-check exitoso.
func (p *Provider) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS chabs_records (
			collection  text        NOT NULL,
			id          text        NOT NULL,
			doc         jsonb       NOT NULL,
			seq         bigserial,
			updated_at  timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		)`)
	if err != nil {
		return wrapRemoteErr(fmt.Errorf("crear esquema: %w", err))
	}
	return nil
}

// HealthCheck sonda de ida y vuelta única. Nunca retorna error: cualquier
// fallo de red o respuesta no exitosa se reporta como Reachable=false.
func (p *Provider) HealthCheck(ctx context.Context) storage.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	start := time.Now()
	err := p.pool.Ping(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		p.log.Debug().Err(err).Msg("health-check remoto fallido")
		return storage.HealthStatus{Reachable: false, LatencyMs: latency}
	}
	return storage.HealthStatus{Reachable: true, LatencyMs: latency}
}

// Apply aplica una mutación reproducida desde la cola del coordinador. Local
// es autoritativo: create y update son upsert del documento completo, sin
// re-validación de reglas de negocio; delete de un registro ya ausente no es error.
func (p *Provider) Apply(ctx context.Context, m storage.Mutation) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	switch m.Kind {
	case storage.ChangeCreated, storage.ChangeUpdated:
		_, err := p.pool.Exec(ctx, `
			INSERT INTO chabs_records (collection, id, doc, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
			m.Collection, m.EntityID, m.Doc,
		)
		if err != nil {
			return wrapRemoteErr(fmt.Errorf("upsert %s/%s: %w", m.Collection, m.EntityID, err))
		}
	case storage.ChangeDeleted:
		_, err := p.pool.Exec(ctx, `DELETE FROM chabs_records WHERE collection = $1 AND id = $2`,
			m.Collection, m.EntityID)
		if err != nil {
			return wrapRemoteErr(fmt.Errorf("delete %s/%s: %w", m.Collection, m.EntityID, err))
		}
	default:
		return fmt.Errorf("%w: mutación desconocida: %q", domain.ErrValidation, m.Kind)
	}

	p.notify(ctx, storage.ChangeEvent{
		Collection: m.Collection,
		Kind:       m.Kind,
		EntityID:   m.EntityID,
		Doc:        m.Doc,
		Origin:     p.instanceID,
	})
	return nil
}

// Subscribe registra un listener de cambios para una colección. onChange se
// invoca con la entidad cambiada y el tipo de cambio, incluidas mutaciones de
// otros clientes. Cancelar la suscripción detiene la entrega de inmediato.
func (p *Provider) Subscribe(collection string, onChange func(storage.ChangeEvent)) (storage.Subscription, error) {
	return p.subs.subscribe(collection, onChange)
}

// notify publica el cambio en el canal de pg_notify. Un fallo aquí no anula
// la escritura que lo originó; solo se registra.
func (p *Provider) notify(ctx context.Context, ev storage.ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn().Err(err).Msg("serializar notificación de cambio")
		return
	}
	if _, err := p.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, string(payload)); err != nil {
		p.log.Warn().Err(err).Msg("publicar notificación de cambio")
	}
}

// wrapRemoteErr clasifica errores: las reglas de negocio pasan intactas; todo
// fallo de transporte (incluido el timeout explícito) se convierte en
// domain.ErrRemoteUnavailable para que el coordinador pueda distinguirlos.
func wrapRemoteErr(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		domain.ErrNotFound, domain.ErrDuplicateSKU, domain.ErrValidation,
		domain.ErrEmailAlreadyExists, domain.ErrInvalidBackup,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
}

// nextQuoteNumber siguiente consecutivo de la serie COT-NNNNNN dado lo ya almacenado.
func nextQuoteNumber(list []*entity.Quotation) string {
	max := int64(0)
	for _, q := range list {
		var n int64
		if _, err := fmt.Sscanf(q.QuoteNumber, "COT-%d", &n); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("COT-%06d", max+1)
}
