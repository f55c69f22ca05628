package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/access"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

// WarehouseUseCase casos de uso CRUD para bodegas y la vista de productos en bodega.
type WarehouseUseCase struct {
	repo        repository.WarehouseRepository
	stock       repository.StockRepository
	products    repository.ProductRepository
	invalidator inventory.CacheInvalidator
	log         zerolog.Logger
}

// NewWarehouseUseCase construye el caso de uso. invalidator puede ser nil.
func NewWarehouseUseCase(
	repo repository.WarehouseRepository,
	stock repository.StockRepository,
	products repository.ProductRepository,
	invalidator inventory.CacheInvalidator,
	log zerolog.Logger,
) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, stock: stock, products: products, invalidator: invalidator, log: log}
}

// Create crea una nueva bodega.
func (uc *WarehouseUseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return nil, err
	}
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	warehouse := &entity.Warehouse{Name: name}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	bump(ctx, uc.invalidator, uc.log)
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, actor access.Actor, id int64) (*dto.WarehouseResponse, error) {
	if err := access.Require(actor, access.CanReadInventory); err != nil {
		return nil, err
	}
	warehouse, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// Update renombra una bodega.
func (uc *WarehouseUseCase) Update(ctx context.Context, actor access.Actor, id int64, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return nil, err
	}
	warehouse, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if warehouse.Name, err = normalizeName(*in.Name); err != nil {
			return nil, err
		}
	}
	if err := uc.repo.Update(ctx, warehouse); err != nil {
		return nil, err
	}
	bump(ctx, uc.invalidator, uc.log)
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, actor access.Actor, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	if err := access.Require(actor, access.CanReadInventory); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina una bodega. Devuelve ErrInUse si participa en movimientos con líneas o aún tiene stock.
func (uc *WarehouseUseCase) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return err
	}
	if err := uc.repo.DeleteUnused(ctx, id); err != nil {
		return err
	}
	bump(ctx, uc.invalidator, uc.log)
	return nil
}

// Stock devuelve los productos registrados en la bodega con su cantidad (informe de bodega).
func (uc *WarehouseUseCase) Stock(ctx context.Context, actor access.Actor, id int64) (*dto.WarehouseStockResponse, error) {
	if err := access.Require(actor, access.CanViewReports); err != nil {
		return nil, err
	}
	warehouse, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	levels, err := uc.stock.ListByWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &dto.WarehouseStockResponse{
		Warehouse: *toWarehouseResponse(warehouse),
		Items:     make([]dto.WarehouseStockItem, 0, len(levels)),
	}
	for _, l := range levels {
		p, err := uc.products.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		out.Items = append(out.Items, dto.WarehouseStockItem{
			ProductID: p.ID,
			Title:     p.Title,
			Type:      string(p.Type),
			Quantity:  l.Quantity,
		})
		out.Units += l.Quantity
	}
	return out, nil
}

func (uc *WarehouseUseCase) get(ctx context.Context, id int64) (*entity.Warehouse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	return warehouse, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// bump invalida los informes cacheados; un fallo de caché no revierte la operación.
func bump(ctx context.Context, inv inventory.CacheInvalidator, log zerolog.Logger) {
	if inv == nil {
		return
	}
	if err := inv.Bump(ctx); err != nil {
		log.Warn().Err(err).Msg("invalidar caché de informes")
	}
}
