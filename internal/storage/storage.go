// Package storage define el contrato común de los proveedores de persistencia:
// el puerto Provider que consume la capa de aplicación y los tipos compartidos
// entre el proveedor local, el remoto y el coordinador híbrido.
package storage

import (
	"encoding/json"
	"time"

	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/domain/repository"
)

// Nombres de colección. Toda referencia entre entidades es por ID.
const (
	ColProducts        = "products"
	ColCustomers       = "customers"
	ColSuppliers       = "suppliers"
	ColOrders          = "orders"
	ColQuotations      = "quotations"
	ColUsers           = "users"
	ColAutomationRules = "automation_rules"
)

// Collections lista estable de las colecciones de entidades (para export/backup).
var Collections = []string{
	ColProducts, ColCustomers, ColSuppliers, ColOrders,
	ColQuotations, ColUsers, ColAutomationRules,
}

// Provider es el puerto CRUD que ve la capa de aplicación, sea cual sea el
// backend activo (local, cloud o híbrido).
type Provider interface {
	Products() repository.Repository[*entity.Product]
	Customers() repository.Repository[*entity.Customer]
	Suppliers() repository.Repository[*entity.Supplier]
	Orders() repository.Repository[*entity.Order]
	Quotations() repository.Repository[*entity.Quotation]
	Users() repository.Repository[*entity.User]
	AutomationRules() repository.Repository[*entity.AutomationRule]
	Close()
}

// ChangeKind tipo de mutación de una entidad.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Mutation mutación pendiente de espejo hacia el backend remoto. Doc lleva el
// documento completo tras la escritura local (Local es autoritativo al reproducir).
type Mutation struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Kind       ChangeKind      `json:"kind"`
	EntityID   string          `json:"entity_id"`
	Doc        json.RawMessage `json:"doc,omitempty"`
	QueuedAt   time.Time       `json:"queued_at"`
}

// HealthStatus resultado de una sonda de alcanzabilidad; nunca es un error.
type HealthStatus struct {
	Reachable bool  `json:"reachable"`
	LatencyMs int64 `json:"latency_ms"`
}

// SyncState estado del coordinador (por instancia, no por entidad).
type SyncState string

const (
	StateLocalOnly     SyncState = "LOCAL_ONLY"
	StateOnlineSynced  SyncState = "ONLINE_SYNCED"
	StateOnlineSyncing SyncState = "ONLINE_SYNCING"
	StateOfflineQueued SyncState = "OFFLINE_QUEUED"
)

// SyncStatus estado observable de la sincronización (endpoint de sistema).
type SyncStatus struct {
	State         SyncState `json:"state"`
	QueueLength   int       `json:"queue_length"`
	LastCheck     time.Time `json:"last_check,omitempty"`
	LastLatencyMs int64     `json:"last_latency_ms"`
}

// ChangeEvent cambio reportado por el backend remoto, incluidas mutaciones de
// otros clientes. Origin identifica la instancia de proveedor que lo produjo,
// para que un cliente pueda descartar el eco de sus propias escrituras.
type ChangeEvent struct {
	Collection string          `json:"collection"`
	Kind       ChangeKind      `json:"kind"`
	EntityID   string          `json:"entity_id"`
	Doc        json.RawMessage `json:"doc,omitempty"`
	Origin     string          `json:"origin,omitempty"`
}

// Subscription suscripción activa a cambios remotos. Cancel detiene la entrega
// de callbacks de inmediato; no se permite entrega tardía tras cancelar.
type Subscription interface {
	Cancel()
}
