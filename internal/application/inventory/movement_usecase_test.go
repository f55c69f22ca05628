package inventory_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/internal/application/apptest"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/access"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

type countingInvalidator struct{ bumps int }

func (c *countingInvalidator) Bump(context.Context) error {
	c.bumps++
	return nil
}

type fixture struct {
	store       *apptest.Store
	uc          *inventory.MovementUseCase
	invalidator *countingInvalidator
	bodegaA     int64
	bodegaB     int64
	product     int64
	other       int64
}

var (
	worker  = access.Actor{UserID: 7, Role: entity.RoleWorker}
	manager = access.Actor{UserID: 1, Role: entity.RoleManager}
)

func ptr(v int64) *int64 { return &v }

// newFixture: bodegas A y B, producto P con 10 unidades en A y un segundo producto sin stock.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := apptest.NewStore()

	a := &entity.Warehouse{Name: "Bodega A"}
	b := &entity.Warehouse{Name: "Bodega B"}
	require.NoError(t, store.Warehouses().Create(ctx, a))
	require.NoError(t, store.Warehouses().Create(ctx, b))
	pub := &entity.Publisher{Name: "Planeta"}
	require.NoError(t, store.Publishers().Create(ctx, pub))

	p := &entity.Product{Type: entity.ProductTypeBook, Title: "Cien años de soledad", PublisherID: pub.ID, HomeWarehouseID: &a.ID}
	require.NoError(t, store.Products().Create(ctx, p))
	require.NoError(t, store.Stock().Set(ctx, p.ID, a.ID, 10))
	o := &entity.Product{Type: entity.ProductTypeMagazine, Title: "Semana", PublisherID: pub.ID}
	require.NoError(t, store.Products().Create(ctx, o))

	inv := &countingInvalidator{}
	uc := inventory.NewMovementUseCase(store, store.Movements(), store.Warehouses(), inv, zerolog.Nop())
	return &fixture{store: store, uc: uc, invalidator: inv, bodegaA: a.ID, bodegaB: b.ID, product: p.ID, other: o.ID}
}

func (f *fixture) qty(warehouseID int64) int64 {
	q, _ := f.store.Quantity(f.product, warehouseID)
	return q
}

func TestCreateMovement_TrasladoAjustaStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mov, err := f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{
		OriginWarehouseID:      ptr(f.bodegaA),
		DestinationWarehouseID: f.bodegaB,
		Lines:                  []dto.MovementLineRequest{{ProductID: f.product, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementCode(mov.ID), mov.Code)
	assert.Equal(t, worker.UserID, mov.UserID)
	require.Len(t, mov.Lines, 1)
	assert.Equal(t, int64(6), f.qty(f.bodegaA))
	assert.Equal(t, int64(4), f.qty(f.bodegaB))
	assert.Equal(t, 1, f.invalidator.bumps)
}

// Escenario A/B/P: agregar 4 deja 6; agregar 10 falla y se mantiene en 6; eliminar la primera vuelve a 10.
func TestMovementLines_EscenarioCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mov, err := f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{
		OriginWarehouseID:      ptr(f.bodegaA),
		DestinationWarehouseID: f.bodegaB,
	})
	require.NoError(t, err)
	assert.Empty(t, mov.Lines)

	first, err := f.uc.AddLine(ctx, worker, mov.ID, dto.MovementLineRequest{ProductID: f.product, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6), f.qty(f.bodegaA))

	_, err = f.uc.AddLine(ctx, worker, mov.ID, dto.MovementLineRequest{ProductID: f.product, Quantity: 10})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(6), f.qty(f.bodegaA))
	assert.Equal(t, int64(4), f.qty(f.bodegaB))
	assert.Equal(t, 1, f.store.LineCount())

	require.NoError(t, f.uc.DeleteLine(ctx, worker, first.ID))
	assert.Equal(t, int64(10), f.qty(f.bodegaA))
	assert.Equal(t, int64(0), f.qty(f.bodegaB))
	assert.Equal(t, 0, f.store.LineCount())
}

func TestCreateMovement_OrigenIgualDestino(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateMovement(context.Background(), worker, dto.CreateMovementRequest{
		OriginWarehouseID:      ptr(f.bodegaA),
		DestinationWarehouseID: f.bodegaA,
		Lines:                  []dto.MovementLineRequest{{ProductID: f.product, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
	assert.Equal(t, 0, f.store.MovementCount())
	assert.Equal(t, int64(10), f.qty(f.bodegaA))
	assert.Zero(t, f.invalidator.bumps)
}

func TestCreateMovement_JefeNoPuedeOperar(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateMovement(context.Background(), manager, dto.CreateMovementRequest{
		OriginWarehouseID:      ptr(f.bodegaA),
		DestinationWarehouseID: f.bodegaB,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 0, f.store.MovementCount())
}

func TestCreateMovement_ProductoFueraDeOrigen(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateMovement(context.Background(), worker, dto.CreateMovementRequest{
		OriginWarehouseID:      ptr(f.bodegaA),
		DestinationWarehouseID: f.bodegaB,
		Lines:                  []dto.MovementLineRequest{{ProductID: f.other, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotInOrigin)
	assert.Equal(t, 0, f.store.MovementCount())
}

func TestCreateMovement_LoteRevierteSiFallaUnaLinea(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateMovement(context.Background(), worker, dto.CreateMovementRequest{
		OriginWarehouseID:      ptr(f.bodegaA),
		DestinationWarehouseID: f.bodegaB,
		Lines: []dto.MovementLineRequest{
			{ProductID: f.product, Quantity: 7},
			{ProductID: f.product, Quantity: 7}, // acumulado 14 > 10
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(10), f.qty(f.bodegaA))
	_, exists := f.store.Quantity(f.product, f.bodegaB)
	assert.False(t, exists)
	assert.Equal(t, 0, f.store.MovementCount())
	assert.Equal(t, 0, f.store.LineCount())
}

func TestCreateMovement_IngresoSinOrigen(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateMovement(context.Background(), worker, dto.CreateMovementRequest{
		DestinationWarehouseID: f.bodegaB,
		Lines:                  []dto.MovementLineRequest{{ProductID: f.other, Quantity: 25}},
	})
	require.NoError(t, err)
	q, ok := f.store.Quantity(f.other, f.bodegaB)
	assert.True(t, ok)
	assert.Equal(t, int64(25), q)
}

func TestCreateMovement_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{DestinationWarehouseID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{
		DestinationWarehouseID: f.bodegaB,
		Lines:                  []dto.MovementLineRequest{{ProductID: f.product, Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{
		DestinationWarehouseID: f.bodegaB,
		Lines:                  []dto.MovementLineRequest{{ProductID: 999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.store.MovementCount())
}

func TestCreateMovement_CodigosMonotonicos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var codes []string
	for i := 0; i < 3; i++ {
		m, err := f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{DestinationWarehouseID: f.bodegaB})
		require.NoError(t, err)
		codes = append(codes, m.Code)
	}
	assert.Equal(t, []string{"MOV-00001", "MOV-00002", "MOV-00003"}, codes)
}

func TestDeleteMovement_RevierteTodasLasLineas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mov, err := f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{
		OriginWarehouseID:      ptr(f.bodegaA),
		DestinationWarehouseID: f.bodegaB,
		Lines: []dto.MovementLineRequest{
			{ProductID: f.product, Quantity: 3},
			{ProductID: f.product, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.qty(f.bodegaA))

	require.NoError(t, f.uc.DeleteMovement(ctx, worker, mov.ID))
	assert.Equal(t, int64(10), f.qty(f.bodegaA))
	assert.Equal(t, int64(0), f.qty(f.bodegaB))
	assert.Equal(t, 0, f.store.MovementCount())

	assert.ErrorIs(t, f.uc.DeleteMovement(ctx, worker, mov.ID), domain.ErrNotFound)
}

// Si el destino ya no tiene las unidades (salieron en otro movimiento), la reversión se rechaza.
func TestDeleteLine_DestinoSinStockSuficiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{
		OriginWarehouseID:      ptr(f.bodegaA),
		DestinationWarehouseID: f.bodegaB,
		Lines:                  []dto.MovementLineRequest{{ProductID: f.product, Quantity: 4}},
	})
	require.NoError(t, err)
	_, err = f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{
		OriginWarehouseID:      ptr(f.bodegaB),
		DestinationWarehouseID: f.bodegaA,
		Lines:                  []dto.MovementLineRequest{{ProductID: f.product, Quantity: 3}},
	})
	require.NoError(t, err)

	err = f.uc.DeleteLine(ctx, worker, in.Lines[0].ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(9), f.qty(f.bodegaA))
	assert.Equal(t, int64(1), f.qty(f.bodegaB))
	assert.Equal(t, 2, f.store.LineCount())
}

func TestListAndGetMovement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{DestinationWarehouseID: f.bodegaA})
	require.NoError(t, err)
	_, err = f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{DestinationWarehouseID: f.bodegaB})
	require.NoError(t, err)

	list, err := f.uc.ListMovements(ctx, worker, repository.MovementFilter{Limit: 20})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "MOV-00002", list.Items[0].Code, "más reciente primero")

	filtered, err := f.uc.ListMovements(ctx, worker, repository.MovementFilter{WarehouseID: ptr(f.bodegaA), Limit: 20})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, first.ID, filtered.Items[0].ID)

	got, err := f.uc.GetMovement(ctx, worker, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Code, got.Code)

	_, err = f.uc.GetMovement(ctx, worker, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.ListMovements(ctx, manager, repository.MovementFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateMovement_CantidadMaxima(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{
		DestinationWarehouseID: f.bodegaB,
		Lines:                  []dto.MovementLineRequest{{ProductID: f.product, Quantity: entity.MaxQuantity + 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(0), f.qty(f.bodegaB))
	assert.Equal(t, 0, f.store.MovementCount())

	mov, err := f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{
		DestinationWarehouseID: f.bodegaB,
		Lines:                  []dto.MovementLineRequest{{ProductID: f.product, Quantity: entity.MaxQuantity}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MaxQuantity, f.qty(f.bodegaB))

	_, err = f.uc.AddLine(ctx, worker, mov.ID, dto.MovementLineRequest{ProductID: f.product, Quantity: 1 << 62})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, entity.MaxQuantity, f.qty(f.bodegaB))
}

func TestCreateMovement_TechoDelLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Stock().Set(ctx, f.product, f.bodegaB, entity.MaxStockQuantity))

	_, err := f.uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{
		DestinationWarehouseID: f.bodegaB,
		Lines:                  []dto.MovementLineRequest{{ProductID: f.product, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, entity.MaxStockQuantity, f.qty(f.bodegaB))
	assert.Equal(t, 0, f.store.MovementCount())
}

// lockRecorder registra el orden en que se bloquean filas del ledger.
type lockRecorder struct {
	repository.StockRepository
	locked []int64
}

func (r *lockRecorder) GetForUpdate(ctx context.Context, productID, warehouseID int64) (*entity.StockLevel, error) {
	r.locked = append(r.locked, warehouseID)
	return r.StockRepository.GetForUpdate(ctx, productID, warehouseID)
}

type recordingRunner struct {
	store *apptest.Store
	rec   *lockRecorder
}

func (r recordingRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.store.Run(ctx, func(m repository.MovementRepository, s repository.StockRepository, p repository.ProductRepository) error {
		r.rec.StockRepository = s
		return fn(m, r.rec, p)
	})
}

func TestMovimientos_BloqueanLedgerEnOrdenDeBodega(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Stock().Set(ctx, f.product, f.bodegaB, 3))
	require.Less(t, f.bodegaA, f.bodegaB)

	rec := &lockRecorder{}
	uc := inventory.NewMovementUseCase(recordingRunner{store: f.store, rec: rec}, f.store.Movements(), f.store.Warehouses(), nil, zerolog.Nop())

	// A->B y B->A bloquean en el mismo orden.
	ab, err := uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{
		OriginWarehouseID:      ptr(f.bodegaA),
		DestinationWarehouseID: f.bodegaB,
		Lines:                  []dto.MovementLineRequest{{ProductID: f.product, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.bodegaA, f.bodegaB}, rec.locked)

	rec.locked = nil
	_, err = uc.CreateMovement(ctx, worker, dto.CreateMovementRequest{
		OriginWarehouseID:      ptr(f.bodegaB),
		DestinationWarehouseID: f.bodegaA,
		Lines:                  []dto.MovementLineRequest{{ProductID: f.product, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.bodegaA, f.bodegaB}, rec.locked)

	rec.locked = nil
	require.NoError(t, uc.DeleteLine(ctx, worker, ab.Lines[0].ID))
	assert.Equal(t, []int64{f.bodegaA, f.bodegaB}, rec.locked)
	assert.Equal(t, int64(10+2), f.qty(f.bodegaA))
	assert.Equal(t, int64(3-2), f.qty(f.bodegaB))
}
