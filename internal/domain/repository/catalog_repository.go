package repository

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// PublisherRepository define el puerto de persistencia para editoriales.
type PublisherRepository interface {
	Create(ctx context.Context, p *entity.Publisher) error
	GetByID(ctx context.Context, id int64) (*entity.Publisher, error)
	Update(ctx context.Context, p *entity.Publisher) error
	List(ctx context.Context, limit, offset int) ([]*entity.Publisher, error)
	// Delete devuelve domain.ErrInUse si hay productos de la editorial.
	Delete(ctx context.Context, id int64) error
}

// AuthorRepository define el puerto de persistencia para autores.
type AuthorRepository interface {
	Create(ctx context.Context, a *entity.Author) error
	GetByID(ctx context.Context, id int64) (*entity.Author, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*entity.Author, error)
	Update(ctx context.Context, a *entity.Author) error
	List(ctx context.Context, limit, offset int) ([]*entity.Author, error)
	Delete(ctx context.Context, id int64) error
}
