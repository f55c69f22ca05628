package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/internal/application/apptest"
	"github.com/jhoicas/bodegas-api/internal/application/auth"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/application/reports"
	"github.com/jhoicas/bodegas-api/internal/application/usecase"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	apphttp "github.com/jhoicas/bodegas-api/internal/interfaces/http"
)

type apiHarness struct {
	app     *fiber.App
	store   *apptest.Store
	manager string
	worker  string
}

// newAPI arma el router completo sobre el store en memoria, con un jefe y un bodeguero.
func newAPI(t *testing.T, loginLimit int) *apiHarness {
	t.Helper()
	store := apptest.NewStore()
	ctx := context.Background()

	for _, u := range []dto.CreateUserRequest{
		{Username: "jefe", Password: "secreto123", Role: string(entity.RoleManager)},
		{Username: "bodeguero", Password: "secreto123", Role: string(entity.RoleWorker)},
	} {
		user, err := usecase.NewUser(u)
		require.NoError(t, err)
		require.NoError(t, store.Users().Create(ctx, user))
	}
	manager, err := store.Users().GetByUsername(ctx, "jefe")
	require.NoError(t, err)
	worker, err := store.Users().GetByUsername(ctx, "bodeguero")
	require.NoError(t, err)

	log := zerolog.Nop()
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, log),
		UserUC:      usecase.NewUserUseCase(store.Users()),
		PublisherUC: usecase.NewPublisherUseCase(store.Publishers(), nil, log),
		AuthorUC:    usecase.NewAuthorUseCase(store.Authors()),
		ProductUC:   usecase.NewProductUseCase(store, store.Products(), store.Publishers(), store.Authors(), store.Warehouses(), store.Stock(), nil, log),
		WarehouseUC: usecase.NewWarehouseUseCase(store.Warehouses(), store.Stock(), store.Products(), nil, log),
		MovementUC:  inventory.NewMovementUseCase(store, store.Movements(), store.Warehouses(), nil, log),
		ReportUC:    reports.NewReportUseCase(store.Reports(), nil, nil),
		JWTSecret:   testJWTSecret,
		LoginLimit:  loginLimit,
	})
	return &apiHarness{
		app:     app,
		store:   store,
		manager: tokenForRole(t, manager.ID, string(entity.RoleManager)),
		worker:  tokenForRole(t, worker.ID, string(entity.RoleWorker)),
	}
}

func (h *apiHarness) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// seedCatalog: bodegas A y B, una editorial y un libro con 10 unidades en A (vía API del jefe).
func (h *apiHarness) seedCatalog(t *testing.T) (bodegaA, bodegaB, productID int64) {
	t.Helper()
	resp := h.do(t, http.MethodPost, "/api/warehouses", h.manager, dto.CreateWarehouseRequest{Name: "Bodega A"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	a := decode[dto.WarehouseResponse](t, resp)

	resp = h.do(t, http.MethodPost, "/api/warehouses", h.manager, dto.CreateWarehouseRequest{Name: "Bodega B"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	b := decode[dto.WarehouseResponse](t, resp)

	resp = h.do(t, http.MethodPost, "/api/publishers", h.manager, dto.NameRequest{Name: "Norma"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	pub := decode[dto.PublisherResponse](t, resp)

	resp = h.do(t, http.MethodPost, "/api/products", h.manager, dto.CreateProductRequest{
		Type:            "libro",
		Title:           "Rayuela",
		PublisherID:     pub.ID,
		HomeWarehouseID: &a.ID,
		Quantity:        10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	p := decode[dto.ProductResponse](t, resp)
	require.Equal(t, int64(10), p.OnHand)
	return a.ID, b.ID, p.ID
}

func TestLogin_DevuelveTokenYRol(t *testing.T) {
	h := newAPI(t, 0)

	resp := h.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "bodeguero", Password: "secreto123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.LoginResponse](t, resp)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "bodeguero", out.User.Role)

	// El token emitido sirve para las rutas del bodeguero.
	resp = h.do(t, http.MethodGet, "/api/movements", "Bearer "+out.Token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	h := newAPI(t, 0)

	resp := h.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "jefe", Password: "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decode[dto.ErrorResponse](t, resp).Code)

	resp = h.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "nadie", Password: "secreto123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestLogin_LimiteDeIntentos(t *testing.T) {
	h := newAPI(t, 2)
	for i := 0; i < 2; i++ {
		resp := h.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "jefe", Password: "incorrecta"})
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp := h.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "jefe", Password: "secreto123"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "TOO_MANY_REQUESTS", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRouter_BodegueroNoModificaCatalogo(t *testing.T) {
	h := newAPI(t, 0)

	resp := h.do(t, http.MethodPost, "/api/publishers", h.worker, dto.NameRequest{Name: "Norma"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, resp).Code)

	resp = h.do(t, http.MethodPost, "/api/warehouses", h.worker, dto.CreateWarehouseRequest{Name: "X"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Lectura de bodegas sí está permitida.
	resp = h.do(t, http.MethodGet, "/api/warehouses", h.worker, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_JefeNoOperaMovimientos(t *testing.T) {
	h := newAPI(t, 0)
	resp := h.do(t, http.MethodGet, "/api/movements", h.manager, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_SinToken(t *testing.T) {
	h := newAPI(t, 0)
	resp := h.do(t, http.MethodGet, "/api/products", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_FlujoDeMovimientos(t *testing.T) {
	h := newAPI(t, 0)
	a, b, p := h.seedCatalog(t)

	// Traslado de 4 unidades A -> B.
	resp := h.do(t, http.MethodPost, "/api/movements", h.worker, dto.CreateMovementRequest{
		OriginWarehouseID:      &a,
		DestinationWarehouseID: b,
		Lines:                  []dto.MovementLineRequest{{ProductID: p, Quantity: 4}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	mov := decode[dto.MovementResponse](t, resp)
	assert.Equal(t, "MOV-00001", mov.Code)
	require.Len(t, mov.Lines, 1)

	qty, _ := h.store.Quantity(p, a)
	assert.Equal(t, int64(6), qty)

	// Línea que excede el stock disponible.
	resp = h.do(t, http.MethodPost, "/api/movements/"+strconv.FormatInt(mov.ID, 10)+"/lines", h.worker,
		dto.MovementLineRequest{ProductID: p, Quantity: 10})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, resp).Code)
	qty, _ = h.store.Quantity(p, a)
	assert.Equal(t, int64(6), qty)

	// Eliminar la línea restaura el stock.
	resp = h.do(t, http.MethodDelete, "/api/movements/lines/"+strconv.FormatInt(mov.Lines[0].ID, 10), h.worker, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	qty, _ = h.store.Quantity(p, a)
	assert.Equal(t, int64(10), qty)

	// El movimiento sigue existiendo sin líneas.
	resp = h.do(t, http.MethodGet, "/api/movements/"+strconv.FormatInt(mov.ID, 10), h.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[dto.MovementResponse](t, resp).Lines)
}

func TestRouter_MovimientoMismaBodega(t *testing.T) {
	h := newAPI(t, 0)
	a, _, p := h.seedCatalog(t)

	resp := h.do(t, http.MethodPost, "/api/movements", h.worker, dto.CreateMovementRequest{
		OriginWarehouseID:      &a,
		DestinationWarehouseID: a,
		Lines:                  []dto.MovementLineRequest{{ProductID: p, Quantity: 1}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_MOVEMENT", decode[dto.ErrorResponse](t, resp).Code)
	assert.Zero(t, h.store.MovementCount())
}

func TestRouter_ProductoFueraDeOrigen(t *testing.T) {
	h := newAPI(t, 0)
	a, b, p := h.seedCatalog(t)

	resp := h.do(t, http.MethodPost, "/api/movements", h.worker, dto.CreateMovementRequest{
		OriginWarehouseID:      &b,
		DestinationWarehouseID: a,
		Lines:                  []dto.MovementLineRequest{{ProductID: p, Quantity: 1}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PRODUCT_NOT_IN_ORIGIN", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRouter_ValidacionDeCuerpo(t *testing.T) {
	h := newAPI(t, 0)

	resp := h.do(t, http.MethodPost, "/api/products", h.manager, map[string]any{"type": "comic", "title": ""})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Contains(t, out.Fields, "type")
	assert.Contains(t, out.Fields, "title")
	assert.Contains(t, out.Fields, "publisher_id")
}

func TestRouter_CantidadMaximaDeLinea(t *testing.T) {
	h := newAPI(t, 0)
	a, _, p := h.seedCatalog(t)

	resp := h.do(t, http.MethodPost, "/api/movements", h.worker, dto.CreateMovementRequest{
		DestinationWarehouseID: a,
		Lines:                  []dto.MovementLineRequest{{ProductID: p, Quantity: entity.MaxQuantity + 1}},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Equal(t, "max=1000000", out.Fields["quantity"])

	resp = h.do(t, http.MethodPut, "/api/products/"+strconv.FormatInt(p, 10), h.manager, map[string]any{"quantity": int64(1) << 62})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "max=1000000", decode[dto.ErrorResponse](t, resp).Fields["quantity"])
}

func TestRouter_IDInvalido(t *testing.T) {
	h := newAPI(t, 0)
	resp := h.do(t, http.MethodGet, "/api/products/abc", h.worker, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRouter_NoEncontrado(t *testing.T) {
	h := newAPI(t, 0)
	resp := h.do(t, http.MethodGet, "/api/warehouses/999", h.worker, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRouter_ProductosPorBodega(t *testing.T) {
	h := newAPI(t, 0)
	a, b, p := h.seedCatalog(t)

	resp := h.do(t, http.MethodGet, "/api/products?warehouse_id="+strconv.FormatInt(a, 10), h.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.ProductListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, p, list.Items[0].ID)

	resp = h.do(t, http.MethodGet, "/api/products?warehouse_id="+strconv.FormatInt(b, 10), h.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[dto.ProductListResponse](t, resp).Items)

	resp = h.do(t, http.MethodGet, "/api/warehouses/"+strconv.FormatInt(a, 10)+"/products", h.worker, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = h.do(t, http.MethodGet, "/api/warehouses/"+strconv.FormatInt(a, 10)+"/products", h.manager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stock := decode[dto.WarehouseStockResponse](t, resp)
	assert.Equal(t, int64(10), stock.Units)
}

func TestRouter_EliminarBodegaConStock(t *testing.T) {
	h := newAPI(t, 0)
	a, b, _ := h.seedCatalog(t)

	resp := h.do(t, http.MethodDelete, "/api/warehouses/"+strconv.FormatInt(a, 10), h.manager, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "IN_USE", decode[dto.ErrorResponse](t, resp).Code)

	resp = h.do(t, http.MethodDelete, "/api/warehouses/"+strconv.FormatInt(b, 10), h.manager, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRouter_InformeGeneral(t *testing.T) {
	h := newAPI(t, 0)
	a, b, p := h.seedCatalog(t)
	resp := h.do(t, http.MethodPost, "/api/movements", h.worker, dto.CreateMovementRequest{
		OriginWarehouseID:      &a,
		DestinationWarehouseID: b,
		Lines:                  []dto.MovementLineRequest{{ProductID: p, Quantity: 3}},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/reports/summary", h.manager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[dto.ReportSummaryDTO](t, resp)
	require.Len(t, summary.RecentMovements, 1)
	assert.Equal(t, int64(3), summary.RecentMovements[0].Units)
	require.Len(t, summary.ProductsPerPublisher, 1)
	assert.Equal(t, int64(1), summary.ProductsPerPublisher[0].Books)

	resp = h.do(t, http.MethodGet, "/api/reports/summary", h.worker, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_InformeMovimientosRangoInvalido(t *testing.T) {
	h := newAPI(t, 0)

	resp := h.do(t, http.MethodGet, "/api/reports/movements?from=2025-02-01&to=2025-01-01", h.manager, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)

	resp = h.do(t, http.MethodGet, "/api/reports/movements?from=ayer", h.manager, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUERY", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRequestLogger_AsignaRequestID(t *testing.T) {
	h := newAPI(t, 0)
	resp := h.do(t, http.MethodGet, "/api/warehouses", h.worker, nil)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
