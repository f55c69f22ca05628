package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas de solo lectura para informes.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de informes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// ProductsPerWarehouse productos asignados y unidades en stock por bodega.
func (r *ReportRepo) ProductsPerWarehouse(ctx context.Context) ([]repository.WarehouseProductCount, error) {
	const query = `
		SELECT w.id, w.name,
		       (SELECT COUNT(*) FROM products p WHERE p.home_warehouse_id = w.id),
		       COALESCE((SELECT SUM(s.quantity) FROM stock_levels s WHERE s.warehouse_id = w.id), 0)::bigint
		FROM warehouses w
		ORDER BY w.name, w.id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("products per warehouse: %w", err)
	}
	defer rows.Close()
	var out []repository.WarehouseProductCount
	for rows.Next() {
		var c repository.WarehouseProductCount
		if err := rows.Scan(&c.WarehouseID, &c.WarehouseName, &c.ProductCount, &c.Units); err != nil {
			return nil, fmt.Errorf("scan products per warehouse: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ProductsPerPublisher conteo por editorial y tipo; LEFT JOIN para incluir editoriales sin productos.
func (r *ReportRepo) ProductsPerPublisher(ctx context.Context) ([]repository.PublisherTypeCount, error) {
	const query = `
		SELECT pub.id, pub.name, COALESCE(p.type, ''), COUNT(p.id)
		FROM publishers pub
		LEFT JOIN products p ON p.publisher_id = pub.id
		GROUP BY pub.id, pub.name, p.type
		ORDER BY pub.name, pub.id, p.type`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("products per publisher: %w", err)
	}
	defer rows.Close()
	var out []repository.PublisherTypeCount
	for rows.Next() {
		var c repository.PublisherTypeCount
		var productType string
		if err := rows.Scan(&c.PublisherID, &c.PublisherName, &productType, &c.Count); err != nil {
			return nil, fmt.Errorf("scan products per publisher: %w", err)
		}
		c.Type = entity.ProductType(productType)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Movements movimientos con nombres de bodegas y usuario, más recientes primero. limit 0 = sin límite.
func (r *ReportRepo) Movements(ctx context.Context, from, to *time.Time, limit int) ([]repository.MovementRow, error) {
	const query = `
		SELECT m.id, m.code, COALESCE(o.name, ''), COALESCE(d.name, ''), u.username,
		       COUNT(l.id), COALESCE(SUM(l.quantity), 0)::bigint, m.created_at
		FROM movements m
		LEFT JOIN warehouses o ON o.id = m.origin_warehouse_id
		LEFT JOIN warehouses d ON d.id = m.destination_warehouse_id
		JOIN users u ON u.id = m.user_id
		LEFT JOIN movement_lines l ON l.movement_id = m.id
		WHERE ($1::timestamptz IS NULL OR m.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR m.created_at <= $2)
		GROUP BY m.id, m.code, o.name, d.name, u.username, m.created_at
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT NULLIF($3::int, 0)`
	rows, err := r.q.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("report movements: %w", err)
	}
	defer rows.Close()
	var out []repository.MovementRow
	for rows.Next() {
		var m repository.MovementRow
		if err := rows.Scan(&m.ID, &m.Code, &m.OriginName, &m.DestinationName, &m.Username,
			&m.LineCount, &m.Units, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
