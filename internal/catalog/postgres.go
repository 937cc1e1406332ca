package catalog

import (
	"context"
	"errors"
	"io"
	"log"

	"grocerfront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT id::text, name, COALESCE(category, ''), price_cents, discount_percent, max_quantity, COALESCE(image_url, ''), created_at
FROM products
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("catalog: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents, &p.DiscountPercent, &p.MaxQuantity, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("catalog: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT id::text, name, COALESCE(category, ''), price_cents, discount_percent, max_quantity, COALESCE(image_url, ''), created_at
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents, &p.DiscountPercent, &p.MaxQuantity, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("catalog: get id=%s error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Associations(ctx context.Context) (map[string][]string, error) {
	const q = `
SELECT product_id::text, related_product_id::text
FROM product_associations
ORDER BY product_id, position
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("catalog: associations error=%v", err)
		return nil, err
	}
	defer rows.Close()

	assoc := make(map[string][]string)
	for rows.Next() {
		var productID, relatedID string
		if err := rows.Scan(&productID, &relatedID); err != nil {
			return nil, err
		}
		assoc[productID] = append(assoc[productID], relatedID)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("catalog: associations rows error=%v", err)
		return nil, err
	}
	return assoc, nil
}
