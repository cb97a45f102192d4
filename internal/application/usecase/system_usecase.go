package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/storage"
	"github.com/chabs-app/chabs-api/internal/storage/local"
	"github.com/chabs-app/chabs-api/internal/storage/remote"
)

// SyncReporter puerto hacia el coordinador de sincronización (modo hybrid)
// o su equivalente en modo cloud.
type SyncReporter interface {
	Status() storage.SyncStatus
	NotifyConnectivity(online bool)
}

// StatsSource métricas agregadas calculadas por el backend remoto.
type StatsSource interface {
	Stats(ctx context.Context) (*remote.Stats, error)
}

// SystemUseCase operaciones de sistema: estado de sincronización, respaldos,
// exportación/importación y estadísticas de almacenamiento.
//
// localOps es nil en modo cloud: los respaldos y la exportación operan sobre
// el medio local y no están disponibles contra Postgres. En ese modo las
// estadísticas salen de cloudStats, que las agrega del lado del servidor.
type SystemUseCase struct {
	localOps   *local.Provider
	cloudStats StatsSource
	reporter   SyncReporter
}

// NewSystemUseCase construye el caso de uso.
func NewSystemUseCase(localOps *local.Provider, cloudStats StatsSource, reporter SyncReporter) *SystemUseCase {
	return &SystemUseCase{localOps: localOps, cloudStats: cloudStats, reporter: reporter}
}

// SyncStatus estado actual de sincronización. En modo local puro siempre
// reporta LOCAL_ONLY.
func (uc *SystemUseCase) SyncStatus() storage.SyncStatus {
	if uc.reporter == nil {
		return storage.SyncStatus{State: storage.StateLocalOnly}
	}
	return uc.reporter.Status()
}

// NotifyConnectivity informa un cambio de conectividad detectado fuera del
// chequeo periódico. En modo local es un no-op.
func (uc *SystemUseCase) NotifyConnectivity(online bool) {
	if uc.reporter != nil {
		uc.reporter.NotifyConnectivity(online)
	}
}

// CreateBackup crea un respaldo completo del medio local.
func (uc *SystemUseCase) CreateBackup() (*local.BackupHandle, error) {
	if uc.localOps == nil {
		return nil, fmt.Errorf("%w: respaldos no disponibles en modo cloud", domain.ErrValidation)
	}
	return uc.localOps.CreateBackup()
}

// ListBackups lista los respaldos disponibles, del más antiguo al más reciente.
func (uc *SystemUseCase) ListBackups() ([]local.BackupHandle, error) {
	if uc.localOps == nil {
		return nil, fmt.Errorf("%w: respaldos no disponibles en modo cloud", domain.ErrValidation)
	}
	return uc.localOps.ListBackups(), nil
}

// RestoreBackup restaura un respaldo por ID. Si el archivo es inválido el
// estado actual queda intacto.
func (uc *SystemUseCase) RestoreBackup(id string) error {
	if uc.localOps == nil {
		return fmt.Errorf("%w: respaldos no disponibles en modo cloud", domain.ErrValidation)
	}
	return uc.localOps.RestoreBackup(id)
}

// ExportAll serializa todas las colecciones en un único documento JSON.
func (uc *SystemUseCase) ExportAll() ([]byte, error) {
	if uc.localOps == nil {
		return nil, fmt.Errorf("%w: exportación no disponible en modo cloud", domain.ErrValidation)
	}
	return uc.localOps.ExportAll()
}

// ImportAll reemplaza todas las colecciones con el contenido del documento.
// La validación es todo-o-nada: un documento inválido no modifica nada.
func (uc *SystemUseCase) ImportAll(blob []byte) error {
	if uc.localOps == nil {
		return fmt.Errorf("%w: importación no disponible en modo cloud", domain.ErrValidation)
	}
	return uc.localOps.ImportAll(blob)
}

// StorageStatsSummary respuesta de /system/stats, común a los tres modos de
// almacenamiento. OrdersTotal solo se reporta en modo cloud, donde la suma de
// los totales de pedidos se resuelve en el servidor.
type StorageStatsSummary struct {
	PerCollection map[string]int   `json:"per_collection"`
	ApproxBytes   int64            `json:"approx_bytes"`
	Backups       int              `json:"backups"`
	OrdersTotal   *decimal.Decimal `json:"orders_total,omitempty"`
}

// StorageStats conteos por colección y tamaño aproximado del almacén. En los
// modos local e hybrid se lee del medio local; en modo cloud se agrega en
// Postgres.
func (uc *SystemUseCase) StorageStats() (*StorageStatsSummary, error) {
	if uc.localOps != nil {
		stats := uc.localOps.Stats()
		return &StorageStatsSummary{
			PerCollection: stats.PerCollection,
			ApproxBytes:   stats.ApproxBytes,
			Backups:       stats.Backups,
		}, nil
	}
	if uc.cloudStats == nil {
		return nil, fmt.Errorf("%w: estadísticas no disponibles", domain.ErrValidation)
	}
	stats, err := uc.cloudStats.Stats(context.Background())
	if err != nil {
		return nil, err
	}
	return &StorageStatsSummary{
		PerCollection: stats.PerCollection,
		ApproxBytes:   stats.ApproxBytes,
		OrdersTotal:   &stats.OrdersTotal,
	}, nil
}
