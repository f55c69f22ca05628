package dto

import "time"

// WarehouseCountDTO productos asignados y unidades por bodega.
type WarehouseCountDTO struct {
	WarehouseID int64  `json:"warehouse_id"`
	Name        string `json:"name"`
	Products    int64  `json:"products"`
	Units       int64  `json:"units"`
}

// PublisherBreakdownDTO productos por editorial desglosados por tipo.
type PublisherBreakdownDTO struct {
	PublisherID   int64  `json:"publisher_id"`
	Publisher     string `json:"publisher"`
	Books         int64  `json:"libros"`
	Magazines     int64  `json:"revistas"`
	Encyclopedias int64  `json:"enciclopedias"`
}

// MovementSummaryDTO fila de movimiento para informes.
type MovementSummaryDTO struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Origin      string    `json:"origin,omitempty"`
	Destination string    `json:"destination"`
	Username    string    `json:"username"`
	Lines       int64     `json:"lines"`
	Units       int64     `json:"units"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReportSummaryDTO informe general.
type ReportSummaryDTO struct {
	ProductsPerWarehouse []WarehouseCountDTO     `json:"products_per_warehouse"`
	ProductsPerPublisher []PublisherBreakdownDTO `json:"products_per_publisher"`
	RecentMovements      []MovementSummaryDTO    `json:"recent_movements"`
	GeneratedAt          time.Time               `json:"generated_at"`
}

// MovementReportDTO informe de movimientos en un rango de fechas.
type MovementReportDTO struct {
	From        *time.Time           `json:"from,omitempty"`
	To          *time.Time           `json:"to,omitempty"`
	Movements   []MovementSummaryDTO `json:"movements"`
	TotalUnits  int64                `json:"total_units"`
	GeneratedAt time.Time            `json:"generated_at"`
}
