package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	Name            string
	Category        string
	PriceCents      int64
	DiscountPercent int
	MaxQuantity     int
	ImageURL        string
	RelatedNames    []string
}

// Apply inserts the grocery catalog and association graph for manual
// testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{Name: "Potato", Category: "vegetables", PriceCents: 2500, DiscountPercent: 5, MaxQuantity: 10, ImageURL: "/assets/products/potato.png", RelatedNames: []string{"Onion", "Tomato", "Green Chilli"}},
		{Name: "Onion", Category: "vegetables", PriceCents: 3000, MaxQuantity: 10, ImageURL: "/assets/products/onion.png", RelatedNames: []string{"Potato", "Tomato", "Coriander"}},
		{Name: "Tomato", Category: "vegetables", PriceCents: 2000, MaxQuantity: 10, ImageURL: "/assets/products/tomato.png", RelatedNames: []string{"Onion", "Green Chilli", "Coriander"}},
		{Name: "Green Chilli", Category: "vegetables", PriceCents: 800, MaxQuantity: 5, ImageURL: "/assets/products/chilli.png", RelatedNames: []string{"Coriander", "Onion"}},
		{Name: "Coriander", Category: "vegetables", PriceCents: 1000, MaxQuantity: 5, ImageURL: "/assets/products/coriander.png", RelatedNames: []string{"Green Chilli", "Tomato"}},
		{Name: "Milk", Category: "dairy", PriceCents: 6400, MaxQuantity: 6, ImageURL: "/assets/products/milk.png", RelatedNames: []string{"Bread", "Curd", "Butter"}},
		{Name: "Curd", Category: "dairy", PriceCents: 4000, DiscountPercent: 10, MaxQuantity: 6, ImageURL: "/assets/products/curd.png", RelatedNames: []string{"Milk", "Paneer"}},
		{Name: "Paneer", Category: "dairy", PriceCents: 9000, MaxQuantity: 4, ImageURL: "/assets/products/paneer.png", RelatedNames: []string{"Curd", "Milk"}},
		{Name: "Butter", Category: "dairy", PriceCents: 5500, MaxQuantity: 6, ImageURL: "/assets/products/butter.png", RelatedNames: []string{"Bread", "Milk"}},
		{Name: "Bread", Category: "bakery", PriceCents: 4500, MaxQuantity: 8, ImageURL: "/assets/products/bread.png", RelatedNames: []string{"Butter", "Eggs", "Milk"}},
		{Name: "Eggs", Category: "dairy", PriceCents: 7000, DiscountPercent: 5, MaxQuantity: 4, ImageURL: "/assets/products/eggs.png", RelatedNames: []string{"Bread", "Butter"}},
		{Name: "Basmati Rice", Category: "staples", PriceCents: 14500, MaxQuantity: 3, ImageURL: "/assets/products/rice.png", RelatedNames: []string{"Wheat Flour", "Sunflower Oil"}},
		{Name: "Wheat Flour", Category: "staples", PriceCents: 26000, DiscountPercent: 8, MaxQuantity: 2, ImageURL: "/assets/products/atta.png", RelatedNames: []string{"Basmati Rice", "Sunflower Oil"}},
		{Name: "Sunflower Oil", Category: "staples", PriceCents: 17500, MaxQuantity: 2, ImageURL: "/assets/products/oil.png", RelatedNames: []string{"Wheat Flour", "Basmati Rice"}},
		{Name: "Banana", Category: "fruits", PriceCents: 3500, MaxQuantity: 8, ImageURL: "/assets/products/banana.png", RelatedNames: []string{"Apple", "Milk"}},
		{Name: "Apple", Category: "fruits", PriceCents: 12000, DiscountPercent: 12, MaxQuantity: 6, ImageURL: "/assets/products/apple.png", RelatedNames: []string{"Banana", "Curd"}},
	}

	ids := make(map[string]string, len(products))
	for _, p := range products {
		id, err := upsertProduct(ctx, pool, p)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
		ids[p.Name] = id
	}

	for _, p := range products {
		for pos, related := range p.RelatedNames {
			relatedID, ok := ids[related]
			if !ok {
				return fmt.Errorf("product %s references unknown related product %s", p.Name, related)
			}
			if err := upsertAssociation(ctx, pool, ids[p.Name], relatedID, pos); err != nil {
				return fmt.Errorf("associate %s -> %s: %w", p.Name, related, err)
			}
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) (string, error) {
	const q = `
INSERT INTO products (name, category, price_cents, discount_percent, max_quantity, image_url)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name) DO UPDATE
SET category = EXCLUDED.category,
    price_cents = EXCLUDED.price_cents,
    discount_percent = EXCLUDED.discount_percent,
    max_quantity = EXCLUDED.max_quantity,
    image_url = EXCLUDED.image_url
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, p.Name, p.Category, p.PriceCents, p.DiscountPercent, p.MaxQuantity, p.ImageURL).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertAssociation(ctx context.Context, pool *pgxpool.Pool, productID, relatedID string, position int) error {
	const q = `
INSERT INTO product_associations (product_id, related_product_id, position)
VALUES ($1, $2, $3)
ON CONFLICT (product_id, related_product_id) DO UPDATE SET position = EXCLUDED.position
`
	_, err := pool.Exec(ctx, q, productID, relatedID, position)
	return err
}
