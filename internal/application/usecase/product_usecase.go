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

// ProductUseCase casos de uso CRUD para productos. El stock por bodega se ajusta con
// movimientos; el jefe de bodega solo puede fijar la cantidad en la bodega principal.
type ProductUseCase struct {
	txRunner    inventory.TxRunner
	repo        repository.ProductRepository
	publishers  repository.PublisherRepository
	authors     repository.AuthorRepository
	warehouses  repository.WarehouseRepository
	stock       repository.StockRepository
	invalidator inventory.CacheInvalidator
	log         zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner inventory.TxRunner,
	repo repository.ProductRepository,
	publishers repository.PublisherRepository,
	authors repository.AuthorRepository,
	warehouses repository.WarehouseRepository,
	stock repository.StockRepository,
	invalidator inventory.CacheInvalidator,
	log zerolog.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:    txRunner,
		repo:        repo,
		publishers:  publishers,
		authors:     authors,
		warehouses:  warehouses,
		stock:       stock,
		invalidator: invalidator,
		log:         log,
	}
}

// Create crea un producto. Con bodega principal, registra la cantidad inicial en el ledger.
func (uc *ProductUseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return nil, err
	}
	productType := entity.ProductType(in.Type)
	if !productType.Valid() || in.Quantity < 0 || in.Quantity > entity.MaxQuantity {
		return nil, domain.ErrInvalidInput
	}
	if in.HomeWarehouseID == nil && in.Quantity > 0 {
		return nil, domain.ErrInvalidInput
	}
	title, err := normalizeName(in.Title)
	if err != nil {
		return nil, err
	}
	authorIDs := dedupeIDs(in.AuthorIDs)
	if err := uc.checkReferences(ctx, in.PublisherID, authorIDs, in.HomeWarehouseID); err != nil {
		return nil, err
	}

	product := &entity.Product{
		Type:            productType,
		Title:           title,
		Description:     in.Description,
		PublisherID:     in.PublisherID,
		AuthorIDs:       authorIDs,
		HomeWarehouseID: in.HomeWarehouseID,
	}
	err = uc.txRunner.Run(ctx, func(
		_ repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if product.HomeWarehouseID == nil {
			return nil
		}
		return stockRepo.Set(ctx, product.ID, *product.HomeWarehouseID, in.Quantity)
	})
	if err != nil {
		return nil, err
	}
	product.OnHand = in.Quantity
	bump(ctx, uc.invalidator, uc.log)
	return toProductResponse(product, nil), nil
}

// GetByID obtiene un producto con su stock en cada bodega.
func (uc *ProductUseCase) GetByID(ctx context.Context, actor access.Actor, id int64) (*dto.ProductResponse, error) {
	if err := access.Require(actor, access.CanReadInventory); err != nil {
		return nil, err
	}
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	levels, err := uc.stock.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, levels), nil
}

// List lista productos, opcionalmente los registrados en una bodega o de un tipo.
func (uc *ProductUseCase) List(ctx context.Context, actor access.Actor, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	if err := access.Require(actor, access.CanReadInventory); err != nil {
		return nil, err
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p, nil))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// Update actualiza un producto. Cambiar la bodega principal registra el producto en ella;
// Quantity fija la cantidad resultante en la bodega principal.
func (uc *ProductUseCase) Update(ctx context.Context, actor access.Actor, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return nil, err
	}
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Type != nil {
		product.Type = entity.ProductType(*in.Type)
		if !product.Type.Valid() {
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Title != nil {
		if product.Title, err = normalizeName(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.PublisherID != nil {
		product.PublisherID = *in.PublisherID
	}
	if in.AuthorIDs != nil {
		product.AuthorIDs = dedupeIDs(*in.AuthorIDs)
	}
	homeChanged := false
	if in.HomeWarehouseID != nil {
		homeChanged = product.HomeWarehouseID == nil || *product.HomeWarehouseID != *in.HomeWarehouseID
		product.HomeWarehouseID = in.HomeWarehouseID
	}
	if in.Quantity != nil && (*in.Quantity < 0 || *in.Quantity > entity.MaxQuantity || product.HomeWarehouseID == nil) {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkReferences(ctx, product.PublisherID, product.AuthorIDs, product.HomeWarehouseID); err != nil {
		return nil, err
	}

	var updated *entity.Product
	err = uc.txRunner.Run(ctx, func(
		_ repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		if homeChanged {
			if err := stockRepo.Ensure(ctx, product.ID, *product.HomeWarehouseID); err != nil {
				return err
			}
		}
		if in.Quantity != nil {
			if err := stockRepo.Set(ctx, product.ID, *product.HomeWarehouseID, *in.Quantity); err != nil {
				return err
			}
		}
		var err error
		updated, err = productRepo.GetByID(ctx, product.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	bump(ctx, uc.invalidator, uc.log)
	return toProductResponse(updated, nil), nil
}

// Delete elimina un producto. ErrInUse si alguna línea de movimiento lo referencia.
func (uc *ProductUseCase) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return err
	}
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	used, err := uc.repo.HasMovementLines(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return domain.ErrInUse
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	bump(ctx, uc.invalidator, uc.log)
	return nil
}

func (uc *ProductUseCase) get(ctx context.Context, id int64) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// checkReferences verifica que editorial, autores y bodega existan.
func (uc *ProductUseCase) checkReferences(ctx context.Context, publisherID int64, authorIDs []int64, homeID *int64) error {
	pub, err := uc.publishers.GetByID(ctx, publisherID)
	if err != nil {
		return err
	}
	if pub == nil {
		return domain.ErrNotFound
	}
	if len(authorIDs) > 0 {
		found, err := uc.authors.GetByIDs(ctx, authorIDs)
		if err != nil {
			return err
		}
		if len(found) != len(authorIDs) {
			return domain.ErrNotFound
		}
	}
	if homeID != nil {
		w, err := uc.warehouses.GetByID(ctx, *homeID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toProductResponse(p *entity.Product, levels []*entity.StockLevel) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	authorIDs := p.AuthorIDs
	if authorIDs == nil {
		authorIDs = []int64{}
	}
	out := &dto.ProductResponse{
		ID:              p.ID,
		Type:            string(p.Type),
		Title:           p.Title,
		Description:     p.Description,
		PublisherID:     p.PublisherID,
		AuthorIDs:       authorIDs,
		HomeWarehouseID: p.HomeWarehouseID,
		OnHand:          p.OnHand,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	for _, l := range levels {
		out.Stock = append(out.Stock, dto.ProductStockResponse{WarehouseID: l.WarehouseID, Quantity: l.Quantity})
	}
	return out
}
