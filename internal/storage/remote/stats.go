package remote

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chabs-app/chabs-api/internal/storage"
)

// Stats métricas agregadas calculadas en el servidor: conteos por colección,
// tamaño físico de la tabla y suma de los totales de pedidos. La suma se
// computa como numeric en Postgres y se decodifica directo a decimal.Decimal
// con el códec registrado en el pool.
type Stats struct {
	PerCollection map[string]int  `json:"per_collection"`
	ApproxBytes   int64           `json:"approx_bytes"`
	OrdersTotal   decimal.Decimal `json:"orders_total"`
}

// Stats computa las métricas del lado del servidor, sin traer documentos.
func (p *Provider) Stats(ctx context.Context) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	counts := make(map[string]int, len(storage.Collections))
	for _, name := range storage.Collections {
		counts[name] = 0
	}
	rows, err := p.pool.Query(ctx, `SELECT collection, count(*) FROM chabs_records GROUP BY collection`)
	if err != nil {
		return nil, wrapRemoteErr(fmt.Errorf("contar colecciones: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return nil, wrapRemoteErr(fmt.Errorf("contar colecciones: %w", err))
		}
		counts[name] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapRemoteErr(fmt.Errorf("contar colecciones: %w", err))
	}

	var approxBytes int64
	if err := p.pool.QueryRow(ctx,
		`SELECT pg_total_relation_size('chabs_records')`).Scan(&approxBytes); err != nil {
		return nil, wrapRemoteErr(fmt.Errorf("tamaño de la tabla: %w", err))
	}

	var ordersTotal decimal.Decimal
	if err := p.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM((doc->>'total')::numeric), 0)
		FROM chabs_records WHERE collection = $1`, storage.ColOrders).Scan(&ordersTotal); err != nil {
		return nil, wrapRemoteErr(fmt.Errorf("sumar totales de pedidos: %w", err))
	}

	return &Stats{
		PerCollection: counts,
		ApproxBytes:   approxBytes,
		OrdersTotal:   ordersTotal,
	}, nil
}
