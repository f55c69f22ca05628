// Package reports contiene los casos de uso de informes: resumen general
// (productos por bodega, editoriales por tipo, últimos movimientos) e informe de movimientos.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/access"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

// RecentMovements número de movimientos del resumen general.
const RecentMovements = 10

// ReportUseCase arma los informes a partir de ReportRepository (consultas read-only).
// Los resultados pasan por la caché y las construcciones concurrentes de la misma clave se comparten.
type ReportUseCase struct {
	repo  repository.ReportRepository
	cache Cache
	pdf   MovementPDFGenerator
	group singleflight.Group
	now   func() time.Time
}

// NewReportUseCase construye el caso de uso. cache y pdf pueden ser nil.
func NewReportUseCase(repo repository.ReportRepository, cache Cache, pdf MovementPDFGenerator) *ReportUseCase {
	return &ReportUseCase{repo: repo, cache: cache, pdf: pdf, now: time.Now}
}

// Summary devuelve el informe general.
func (uc *ReportUseCase) Summary(ctx context.Context, actor access.Actor) (*dto.ReportSummaryDTO, error) {
	if err := access.Require(actor, access.CanViewReports); err != nil {
		return nil, err
	}
	var out dto.ReportSummaryDTO
	if err := uc.cached(ctx, &out, uc.buildSummary, "reports", "summary"); err != nil {
		return nil, err
	}
	return &out, nil
}

// MovementReport devuelve los movimientos del rango [from, to]; ambos límites son opcionales.
func (uc *ReportUseCase) MovementReport(ctx context.Context, actor access.Actor, from, to *time.Time) (*dto.MovementReportDTO, error) {
	if err := access.Require(actor, access.CanViewReports); err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, domain.ErrInvalidInput
	}
	build := func(ctx context.Context) (any, error) {
		return uc.buildMovementReport(ctx, from, to)
	}
	var out dto.MovementReportDTO
	if err := uc.cached(ctx, &out, build, "reports", "movements", timeToken(from), timeToken(to)); err != nil {
		return nil, err
	}
	return &out, nil
}

// MovementReportPDF genera el informe de movimientos en PDF.
func (uc *ReportUseCase) MovementReportPDF(ctx context.Context, actor access.Actor, from, to *time.Time) ([]byte, error) {
	report, err := uc.MovementReport(ctx, actor, from, to)
	if err != nil {
		return nil, err
	}
	if uc.pdf == nil {
		return nil, errors.New("reports: generador PDF no configurado")
	}
	return uc.pdf.GenerateMovementReportPDF(ctx, report)
}

// cached resuelve dest desde la caché o con build, compartiendo la construcción entre
// peticiones concurrentes de la misma clave.
func (uc *ReportUseCase) cached(ctx context.Context, dest any, build func(context.Context) (any, error), parts ...string) error {
	if uc.cache == nil {
		value, err := build(ctx)
		if err != nil {
			return err
		}
		return assign(dest, value)
	}
	key, err := uc.cache.BuildKey(ctx, parts...)
	if err != nil {
		return fmt.Errorf("reports: clave de caché: %w", err)
	}
	loader := func(ctx context.Context) (any, error) {
		// La construcción compartida no depende de la cancelación de quien la inició.
		shared := context.WithoutCancel(ctx)
		ch := uc.group.DoChan(key, func() (any, error) {
			return build(shared)
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-ch:
			return res.Val, res.Err
		}
	}
	return uc.cache.FetchJSON(ctx, key, dest, loader)
}

// assign copia value (puntero al mismo tipo que dest) sin pasar por la caché.
func assign(dest, value any) error {
	switch d := dest.(type) {
	case *dto.ReportSummaryDTO:
		v, ok := value.(*dto.ReportSummaryDTO)
		if !ok {
			return fmt.Errorf("reports: tipo inesperado %T", value)
		}
		*d = *v
	case *dto.MovementReportDTO:
		v, ok := value.(*dto.MovementReportDTO)
		if !ok {
			return fmt.Errorf("reports: tipo inesperado %T", value)
		}
		*d = *v
	default:
		return fmt.Errorf("reports: destino no soportado %T", dest)
	}
	return nil
}

func (uc *ReportUseCase) buildSummary(ctx context.Context) (any, error) {
	type warehousesResult struct {
		rows []repository.WarehouseProductCount
		err  error
	}
	type publishersResult struct {
		rows []repository.PublisherTypeCount
		err  error
	}
	type movementsResult struct {
		rows []repository.MovementRow
		err  error
	}

	whCh := make(chan warehousesResult, 1)
	pubCh := make(chan publishersResult, 1)
	movCh := make(chan movementsResult, 1)

	go func() {
		rows, err := uc.repo.ProductsPerWarehouse(ctx)
		whCh <- warehousesResult{rows, err}
	}()
	go func() {
		rows, err := uc.repo.ProductsPerPublisher(ctx)
		pubCh <- publishersResult{rows, err}
	}()
	go func() {
		rows, err := uc.repo.Movements(ctx, nil, nil, RecentMovements)
		movCh <- movementsResult{rows, err}
	}()

	wh := <-whCh
	pub := <-pubCh
	mov := <-movCh

	if wh.err != nil {
		return nil, fmt.Errorf("reports: productos por bodega: %w", wh.err)
	}
	if pub.err != nil {
		return nil, fmt.Errorf("reports: productos por editorial: %w", pub.err)
	}
	if mov.err != nil {
		return nil, fmt.Errorf("reports: movimientos recientes: %w", mov.err)
	}

	warehouses := make([]dto.WarehouseCountDTO, 0, len(wh.rows))
	for _, r := range wh.rows {
		warehouses = append(warehouses, dto.WarehouseCountDTO{
			WarehouseID: r.WarehouseID,
			Name:        r.WarehouseName,
			Products:    r.ProductCount,
			Units:       r.Units,
		})
	}

	return &dto.ReportSummaryDTO{
		ProductsPerWarehouse: warehouses,
		ProductsPerPublisher: publisherBreakdown(pub.rows),
		RecentMovements:      movementSummaries(mov.rows),
		GeneratedAt:          uc.now(),
	}, nil
}

func (uc *ReportUseCase) buildMovementReport(ctx context.Context, from, to *time.Time) (any, error) {
	rows, err := uc.repo.Movements(ctx, from, to, 0)
	if err != nil {
		return nil, fmt.Errorf("reports: movimientos: %w", err)
	}
	out := &dto.MovementReportDTO{
		From:        from,
		To:          to,
		Movements:   movementSummaries(rows),
		GeneratedAt: uc.now(),
	}
	for _, r := range rows {
		out.TotalUnits += r.Units
	}
	return out, nil
}

// publisherBreakdown agrupa las filas (editorial, tipo) en una fila por editorial, en el orden recibido.
func publisherBreakdown(rows []repository.PublisherTypeCount) []dto.PublisherBreakdownDTO {
	out := make([]dto.PublisherBreakdownDTO, 0, len(rows))
	index := make(map[int64]int, len(rows))
	for _, r := range rows {
		i, ok := index[r.PublisherID]
		if !ok {
			out = append(out, dto.PublisherBreakdownDTO{PublisherID: r.PublisherID, Publisher: r.PublisherName})
			i = len(out) - 1
			index[r.PublisherID] = i
		}
		switch r.Type {
		case entity.ProductTypeBook:
			out[i].Books += r.Count
		case entity.ProductTypeMagazine:
			out[i].Magazines += r.Count
		case entity.ProductTypeEncyclopedia:
			out[i].Encyclopedias += r.Count
		}
	}
	return out
}

func movementSummaries(rows []repository.MovementRow) []dto.MovementSummaryDTO {
	out := make([]dto.MovementSummaryDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.MovementSummaryDTO{
			ID:          r.ID,
			Code:        r.Code,
			Origin:      r.OriginName,
			Destination: r.DestinationName,
			Username:    r.Username,
			Lines:       r.LineCount,
			Units:       r.Units,
			CreatedAt:   r.CreatedAt,
		})
	}
	return out
}

func timeToken(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
