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

// PublisherUseCase CRUD de editoriales (solo jefe de bodega).
type PublisherUseCase struct {
	repo        repository.PublisherRepository
	invalidator inventory.CacheInvalidator
	log         zerolog.Logger
}

// NewPublisherUseCase construye el caso de uso.
func NewPublisherUseCase(repo repository.PublisherRepository, invalidator inventory.CacheInvalidator, log zerolog.Logger) *PublisherUseCase {
	return &PublisherUseCase{repo: repo, invalidator: invalidator, log: log}
}

func (uc *PublisherUseCase) Create(ctx context.Context, actor access.Actor, in dto.NameRequest) (*dto.PublisherResponse, error) {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return nil, err
	}
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	p := &entity.Publisher{Name: name}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	bump(ctx, uc.invalidator, uc.log)
	return toPublisherResponse(p), nil
}

func (uc *PublisherUseCase) GetByID(ctx context.Context, actor access.Actor, id int64) (*dto.PublisherResponse, error) {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toPublisherResponse(p), nil
}

func (uc *PublisherUseCase) Update(ctx context.Context, actor access.Actor, id int64, in dto.NameRequest) (*dto.PublisherResponse, error) {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return nil, err
	}
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	p.Name = name
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	bump(ctx, uc.invalidator, uc.log)
	return toPublisherResponse(p), nil
}

func (uc *PublisherUseCase) List(ctx context.Context, actor access.Actor, page dto.PageRequest) (*dto.PublisherListResponse, error) {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PublisherResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPublisherResponse(p))
	}
	return &dto.PublisherListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// Delete elimina la editorial. ErrInUse si tiene productos.
func (uc *PublisherUseCase) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	bump(ctx, uc.invalidator, uc.log)
	return nil
}

func toPublisherResponse(p *entity.Publisher) *dto.PublisherResponse {
	return &dto.PublisherResponse{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

// AuthorUseCase CRUD de autores (solo jefe de bodega).
type AuthorUseCase struct {
	repo repository.AuthorRepository
}

// NewAuthorUseCase construye el caso de uso.
func NewAuthorUseCase(repo repository.AuthorRepository) *AuthorUseCase {
	return &AuthorUseCase{repo: repo}
}

func (uc *AuthorUseCase) Create(ctx context.Context, actor access.Actor, in dto.NameRequest) (*dto.AuthorResponse, error) {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return nil, err
	}
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	a := &entity.Author{Name: name}
	if err := uc.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return toAuthorResponse(a), nil
}

func (uc *AuthorUseCase) GetByID(ctx context.Context, actor access.Actor, id int64) (*dto.AuthorResponse, error) {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return nil, err
	}
	a, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return toAuthorResponse(a), nil
}

func (uc *AuthorUseCase) Update(ctx context.Context, actor access.Actor, id int64, in dto.NameRequest) (*dto.AuthorResponse, error) {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return nil, err
	}
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	a, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	a.Name = name
	if err := uc.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return toAuthorResponse(a), nil
}

func (uc *AuthorUseCase) List(ctx context.Context, actor access.Actor, page dto.PageRequest) (*dto.AuthorListResponse, error) {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuthorResponse, 0, len(list))
	for _, a := range list {
		items = append(items, *toAuthorResponse(a))
	}
	return &dto.AuthorListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// Delete elimina el autor y sus vínculos con productos.
func (uc *AuthorUseCase) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if err := access.Require(actor, access.CanManageCatalog); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func toAuthorResponse(a *entity.Author) *dto.AuthorResponse {
	return &dto.AuthorResponse{ID: a.ID, Name: a.Name, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
}
