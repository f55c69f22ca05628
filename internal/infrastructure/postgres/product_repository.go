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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// productSelect: OnHand sale del ledger en la bodega principal; los autores como arreglo ordenado.
const productSelect = `
	SELECT p.id, p.type, p.title, p.description, p.publisher_id, p.home_warehouse_id,
	       COALESCE(s.quantity, 0),
	       ARRAY(SELECT pa.author_id FROM product_authors pa WHERE pa.product_id = p.id ORDER BY pa.author_id),
	       p.created_at, p.updated_at
	FROM products p
	LEFT JOIN stock_levels s ON s.product_id = p.id AND s.warehouse_id = p.home_warehouse_id`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var productType string
	err := row.Scan(
		&p.ID, &productType, &p.Title, &p.Description, &p.PublisherID, &p.HomeWarehouseID,
		&p.OnHand, &p.AuthorIDs, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Type = entity.ProductType(productType)
	return &p, nil
}

// Create persiste el producto y sus autores. Usar dentro de una tx.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	const query = `
		INSERT INTO products (type, title, description, publisher_id, home_warehouse_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		string(product.Type), product.Title, product.Description, product.PublisherID, product.HomeWarehouseID,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if pgCodeIs(err, codeForeignKeyViolation) {
			return fmt.Errorf("insert product: %w", domain.ErrNotFound)
		}
		return mapError("insert product", err)
	}
	return r.replaceAuthors(ctx, product.ID, product.AuthorIDs)
}

// GetByID obtiene un producto por ID; nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update actualiza los datos del producto y reemplaza sus autores. Usar dentro de una tx.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	const query = `
		UPDATE products
		SET type = $2, title = $3, description = $4, publisher_id = $5, home_warehouse_id = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		product.ID, string(product.Type), product.Title, product.Description, product.PublisherID, product.HomeWarehouseID,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if pgCodeIs(err, codeForeignKeyViolation) {
			return fmt.Errorf("update product: %w", domain.ErrNotFound)
		}
		return mapError("update product", err)
	}
	return r.replaceAuthors(ctx, product.ID, product.AuthorIDs)
}

func (r *ProductRepo) replaceAuthors(ctx context.Context, productID int64, authorIDs []int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM product_authors WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("clear product authors: %w", err)
	}
	if len(authorIDs) == 0 {
		return nil
	}
	const query = `
		INSERT INTO product_authors (product_id, author_id)
		SELECT $1, UNNEST($2::bigint[])
		ON CONFLICT DO NOTHING`
	if _, err := r.q.Exec(ctx, query, productID, authorIDs); err != nil {
		if pgCodeIs(err, codeForeignKeyViolation) {
			return fmt.Errorf("insert product authors: %w", domain.ErrNotFound)
		}
		return mapError("insert product authors", err)
	}
	return nil
}

// List lista productos por título; con WarehouseID solo los registrados en esa bodega.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)
	query := productSelect + `
		WHERE ($1::bigint IS NULL OR EXISTS (
		          SELECT 1 FROM stock_levels x WHERE x.product_id = p.id AND x.warehouse_id = $1))
		  AND ($2::text = '' OR p.type = $2)
		ORDER BY p.title, p.id
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, filter.WarehouseID, string(filter.Type), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina el producto (autores y stock en cascada). ErrInUse si tiene líneas de movimiento.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapError("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// HasMovementLines indica si alguna línea de movimiento referencia el producto.
func (r *ProductRepo) HasMovementLines(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movement_lines WHERE product_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("product movement lines: %w", err)
	}
	return exists, nil
}
