package catalog

import (
	"context"

	"grocerfront/internal/domain"
)

// Repository is the product catalog collaborator: it backs guest-mode line
// resolution, static-graph recommendation lookups and random fill.
type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// Associations returns the hand-curated product -> related-products graph.
	Associations(ctx context.Context) (map[string][]string, error)
}
