package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

var (
	_ repository.PublisherRepository = (*PublisherRepo)(nil)
	_ repository.AuthorRepository    = (*AuthorRepo)(nil)
)

// PublisherRepo editoriales sobre PostgreSQL.
type PublisherRepo struct {
	q Querier
}

// NewPublisherRepository construye el adaptador.
func NewPublisherRepository(q Querier) *PublisherRepo {
	return &PublisherRepo{q: q}
}

func (r *PublisherRepo) Create(ctx context.Context, p *entity.Publisher) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO publishers (name) VALUES ($1) RETURNING id, created_at, updated_at`,
		p.Name,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapError("insert publisher", err)
	}
	return nil
}

func (r *PublisherRepo) GetByID(ctx context.Context, id int64) (*entity.Publisher, error) {
	var p entity.Publisher
	err := r.q.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM publishers WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get publisher: %w", err)
	}
	return &p, nil
}

func (r *PublisherRepo) Update(ctx context.Context, p *entity.Publisher) error {
	err := r.q.QueryRow(ctx,
		`UPDATE publishers SET name = $2, updated_at = now() WHERE id = $1 RETURNING updated_at`,
		p.ID, p.Name,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapError("update publisher", err)
	}
	return nil
}

func (r *PublisherRepo) List(ctx context.Context, limit, offset int) ([]*entity.Publisher, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.q.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM publishers ORDER BY name, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Publisher
	for rows.Next() {
		var p entity.Publisher
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan publisher: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Delete elimina la editorial. La FK RESTRICT de products se traduce a ErrInUse.
func (r *PublisherRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM publishers WHERE id = $1`, id)
	if err != nil {
		return mapError("delete publisher", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AuthorRepo autores sobre PostgreSQL.
type AuthorRepo struct {
	q Querier
}

// NewAuthorRepository construye el adaptador.
func NewAuthorRepository(q Querier) *AuthorRepo {
	return &AuthorRepo{q: q}
}

func (r *AuthorRepo) Create(ctx context.Context, a *entity.Author) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO authors (name) VALUES ($1) RETURNING id, created_at, updated_at`,
		a.Name,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return mapError("insert author", err)
	}
	return nil
}

func (r *AuthorRepo) GetByID(ctx context.Context, id int64) (*entity.Author, error) {
	var a entity.Author
	err := r.q.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM authors WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get author: %w", err)
	}
	return &a, nil
}

// GetByIDs devuelve los autores existentes entre ids.
func (r *AuthorRepo) GetByIDs(ctx context.Context, ids []int64) ([]*entity.Author, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM authors WHERE id = ANY($1) ORDER BY id`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("get authors: %w", err)
	}
	return scanAuthors(rows)
}

func (r *AuthorRepo) Update(ctx context.Context, a *entity.Author) error {
	err := r.q.QueryRow(ctx,
		`UPDATE authors SET name = $2, updated_at = now() WHERE id = $1 RETURNING updated_at`,
		a.ID, a.Name,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapError("update author", err)
	}
	return nil
}

func (r *AuthorRepo) List(ctx context.Context, limit, offset int) ([]*entity.Author, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.q.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM authors ORDER BY name, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return scanAuthors(rows)
}

// Delete elimina el autor; product_authors se borra en cascada.
func (r *AuthorRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return mapError("delete author", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAuthors(rows pgx.Rows) ([]*entity.Author, error) {
	defer rows.Close()
	var list []*entity.Author
	for rows.Next() {
		var a entity.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
