package reports_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/internal/application/apptest"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/reports"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/access"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/cache"
)

var (
	manager = access.Actor{UserID: 1, Role: entity.RoleManager}
	worker  = access.Actor{UserID: 2, Role: entity.RoleWorker}
)

type fakePDF struct{ got *dto.MovementReportDTO }

func (f *fakePDF) GenerateMovementReportPDF(_ context.Context, r *dto.MovementReportDTO) ([]byte, error) {
	f.got = r
	return []byte("%PDF-1.3"), nil
}

// seed: bodegas Norte y Sur, editoriales Planeta (2 libros + 1 revista) y Norma (sin productos),
// y un movimiento Norte -> Sur con dos líneas.
func seed(t *testing.T) *apptest.Store {
	t.Helper()
	ctx := context.Background()
	s := apptest.NewStore()

	norte := &entity.Warehouse{Name: "Norte"}
	sur := &entity.Warehouse{Name: "Sur"}
	require.NoError(t, s.Warehouses().Create(ctx, norte))
	require.NoError(t, s.Warehouses().Create(ctx, sur))
	planeta := &entity.Publisher{Name: "Planeta"}
	norma := &entity.Publisher{Name: "Norma"}
	require.NoError(t, s.Publishers().Create(ctx, planeta))
	require.NoError(t, s.Publishers().Create(ctx, norma))

	var ids []int64
	for _, p := range []*entity.Product{
		{Type: entity.ProductTypeBook, Title: "Libro 1", PublisherID: planeta.ID, HomeWarehouseID: &norte.ID},
		{Type: entity.ProductTypeBook, Title: "Libro 2", PublisherID: planeta.ID, HomeWarehouseID: &norte.ID},
		{Type: entity.ProductTypeMagazine, Title: "Revista", PublisherID: planeta.ID, HomeWarehouseID: &sur.ID},
	} {
		require.NoError(t, s.Products().Create(ctx, p))
		require.NoError(t, s.Stock().Set(ctx, p.ID, *p.HomeWarehouseID, 10))
		ids = append(ids, p.ID)
	}

	user := &entity.User{Username: "bodeguero1", Role: entity.RoleWorker, Status: entity.UserStatusActive}
	require.NoError(t, s.Users().Create(ctx, user))
	m := &entity.Movement{ID: 1, Code: entity.MovementCode(1), OriginWarehouseID: &norte.ID, DestinationWarehouseID: &sur.ID, UserID: user.ID, CreatedAt: time.Now()}
	require.NoError(t, s.Movements().Create(ctx, m))
	require.NoError(t, s.Movements().CreateLine(ctx, &entity.MovementLine{MovementID: 1, ProductID: ids[0], Quantity: 3}))
	require.NoError(t, s.Movements().CreateLine(ctx, &entity.MovementLine{MovementID: 1, ProductID: ids[1], Quantity: 2}))
	return s
}

func TestSummary(t *testing.T) {
	s := seed(t)
	uc := reports.NewReportUseCase(s.Reports(), nil, nil)

	out, err := uc.Summary(context.Background(), manager)
	require.NoError(t, err)

	require.Len(t, out.ProductsPerWarehouse, 2)
	assert.Equal(t, "Norte", out.ProductsPerWarehouse[0].Name)
	assert.Equal(t, int64(2), out.ProductsPerWarehouse[0].Products)
	assert.Equal(t, int64(20), out.ProductsPerWarehouse[0].Units)

	require.Len(t, out.ProductsPerPublisher, 2)
	assert.Equal(t, dto.PublisherBreakdownDTO{PublisherID: out.ProductsPerPublisher[0].PublisherID, Publisher: "Planeta", Books: 2, Magazines: 1}, out.ProductsPerPublisher[0])
	assert.Equal(t, "Norma", out.ProductsPerPublisher[1].Publisher)
	assert.Zero(t, out.ProductsPerPublisher[1].Books+out.ProductsPerPublisher[1].Magazines+out.ProductsPerPublisher[1].Encyclopedias)

	require.Len(t, out.RecentMovements, 1)
	mov := out.RecentMovements[0]
	assert.Equal(t, "MOV-00001", mov.Code)
	assert.Equal(t, "Norte", mov.Origin)
	assert.Equal(t, "Sur", mov.Destination)
	assert.Equal(t, "bodeguero1", mov.Username)
	assert.Equal(t, int64(2), mov.Lines)
	assert.Equal(t, int64(5), mov.Units)
}

func TestReports_SoloJefe(t *testing.T) {
	uc := reports.NewReportUseCase(seed(t).Reports(), nil, nil)

	_, err := uc.Summary(context.Background(), worker)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.MovementReport(context.Background(), worker, nil, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMovementReport_RangoDeFechas(t *testing.T) {
	uc := reports.NewReportUseCase(seed(t).Reports(), nil, nil)
	ctx := context.Background()

	out, err := uc.MovementReport(ctx, manager, nil, nil)
	require.NoError(t, err)
	assert.Len(t, out.Movements, 1)
	assert.Equal(t, int64(5), out.TotalUnits)

	future := time.Now().Add(time.Hour)
	out, err = uc.MovementReport(ctx, manager, &future, nil)
	require.NoError(t, err)
	assert.Empty(t, out.Movements)

	past := time.Now().Add(-time.Hour)
	_, err = uc.MovementReport(ctx, manager, &future, &past)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMovementReportPDF(t *testing.T) {
	pdf := &fakePDF{}
	uc := reports.NewReportUseCase(seed(t).Reports(), nil, pdf)

	raw, err := uc.MovementReportPDF(context.Background(), manager, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(raw))
	require.NotNil(t, pdf.got)
	assert.Len(t, pdf.got.Movements, 1)
}

func TestSummary_CacheHastaBump(t *testing.T) {
	s := seed(t)
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.NewReportCache(client, time.Minute)
	uc := reports.NewReportUseCase(s.Reports(), c, nil)
	ctx := context.Background()

	first, err := uc.Summary(ctx, manager)
	require.NoError(t, err)

	// Un cambio sin invalidar no se ve: la respuesta sale de Redis.
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{Name: "Oriente"}))
	cached, err := uc.Summary(ctx, manager)
	require.NoError(t, err)
	assert.Len(t, cached.ProductsPerWarehouse, len(first.ProductsPerWarehouse))
	assert.True(t, first.GeneratedAt.Equal(cached.GeneratedAt))

	require.NoError(t, c.Bump(ctx))
	fresh, err := uc.Summary(ctx, manager)
	require.NoError(t, err)
	assert.Len(t, fresh.ProductsPerWarehouse, 3)
}

// gatedReports bloquea la primera consulta de productos por bodega hasta release y
// registra el error del contexto que ve la construcción del informe.
type gatedReports struct {
	repository.ReportRepository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
	done    chan struct{}
	seen    error
}

func (g *gatedReports) ProductsPerWarehouse(ctx context.Context) ([]repository.WarehouseProductCount, error) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
		g.seen = ctx.Err()
		defer close(g.done)
	}
	return g.ReportRepository.ProductsPerWarehouse(ctx)
}

func TestSummary_CancelarUnaPeticionNoCancelaLaConstruccionCompartida(t *testing.T) {
	s := seed(t)
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	gate := &gatedReports{
		ReportRepository: s.Reports(),
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
		done:             make(chan struct{}),
	}
	uc := reports.NewReportUseCase(gate, cache.NewReportCache(client, time.Minute), nil)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := uc.Summary(ctx, manager)
		firstErr <- err
	}()
	<-gate.entered

	second := make(chan error, 1)
	go func() {
		_, err := uc.Summary(context.Background(), manager)
		second <- err
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	close(gate.release)
	<-gate.done
	assert.NoError(t, gate.seen, "la construcción compartida sigue viva")
	require.NoError(t, <-second)

	out, err := uc.Summary(context.Background(), manager)
	require.NoError(t, err)
	assert.Len(t, out.ProductsPerWarehouse, 2)
}
