package repository

import (
	"context"
	"time"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// WarehouseProductCount resultado crudo: productos asignados y unidades por bodega.
type WarehouseProductCount struct {
	WarehouseID   int64
	WarehouseName string
	ProductCount  int64 // productos con esta bodega como principal
	Units         int64 // suma del ledger en la bodega
}

// PublisherTypeCount resultado crudo: conteo de productos por editorial y tipo.
type PublisherTypeCount struct {
	PublisherID   int64
	PublisherName string
	Type          entity.ProductType
	Count         int64
}

// MovementRow movimiento enriquecido con nombres para reportes.
type MovementRow struct {
	ID              int64
	Code            string
	OriginName      string // vacío si no hay origen
	DestinationName string
	Username        string
	LineCount       int64
	Units           int64
	CreatedAt       time.Time
}

// ReportRepository define las consultas de solo lectura para informes.
type ReportRepository interface {
	ProductsPerWarehouse(ctx context.Context) ([]WarehouseProductCount, error)
	// ProductsPerPublisher incluye editoriales sin productos como una fila con Type vacío y Count 0.
	ProductsPerPublisher(ctx context.Context) ([]PublisherTypeCount, error)
	// Movements devuelve movimientos ordenados por fecha descendente.
	Movements(ctx context.Context, from, to *time.Time, limit int) ([]MovementRow, error)
}
