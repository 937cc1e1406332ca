// Package recommend serves product and user recommendations from three
// sources in priority order: the hand-curated association graph, the remote
// recommendation service, and random fill from the catalog. Results are
// cached with a TTL; a full result of `limit` products is guaranteed as long
// as the catalog is large enough.
package recommend

import (
	"context"
	"io"
	"log"
	"math/rand"
	"time"

	"grocerfront/internal/domain"
)

const (
	// DefaultLimit is the storefront's recommendation strip size.
	DefaultLimit = 4
	cacheTTL     = 10 * time.Minute

	// Product IDs and user IDs share one cache; user keys get a namespace
	// prefix so the two spaces stay disjoint.
	userKeyPrefix = "user:"
)

type RemoteSource interface {
	ForProduct(ctx context.Context, productID string, limit int) ([]domain.Product, error)
	ForUser(ctx context.Context, userID string, limit int) ([]domain.Product, error)
}

type catalogSource interface {
	List(ctx context.Context) ([]domain.Product, error)
}

type Service struct {
	catalog catalogSource
	remote  RemoteSource
	assoc   map[string][]string
	cache   *ttlCache
	logger  *log.Logger
	shuffle func(n int, swap func(i, j int))
}

func New(catalog catalogSource, remote RemoteSource, assoc map[string][]string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		catalog: catalog,
		remote:  remote,
		assoc:   assoc,
		cache:   newTTLCache(cacheTTL, time.Now),
		logger:  logger,
		shuffle: rand.Shuffle,
	}
}

// ForProduct returns up to limit recommended products for a product page.
// Errors on any source degrade to the next one; the method itself never
// fails.
func (s *Service) ForProduct(ctx context.Context, productID string, limit int) []domain.Product {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if cached, ok := s.cache.get(productID); ok {
		return trim(cached, limit)
	}

	catalogProducts := s.listCatalog(ctx)
	byID := make(map[string]domain.Product, len(catalogProducts))
	for _, p := range catalogProducts {
		byID[p.ID] = p
	}

	picks := make([]domain.Product, 0, limit)
	seen := map[string]bool{productID: true}

	// Static association graph first: cheapest and hand-curated. Candidates
	// are kept only when the catalog still carries them.
	for _, relID := range s.assoc[productID] {
		if len(picks) >= limit {
			break
		}
		if seen[relID] {
			continue
		}
		if p, ok := byID[relID]; ok {
			picks = append(picks, p)
			seen[relID] = true
		}
	}

	if len(picks) < limit {
		picks = s.appendRemote(picks, seen, limit, func() ([]domain.Product, error) {
			return s.remote.ForProduct(ctx, productID, limit)
		})
	}
	picks = s.randomFill(picks, seen, limit, catalogProducts)

	s.cache.set(productID, picks)
	return trim(picks, limit)
}

// ForUser returns personalized recommendations. There is no user-level
// static graph, so it falls straight through from the remote service to
// random fill.
func (s *Service) ForUser(ctx context.Context, userID string, limit int) []domain.Product {
	if limit <= 0 {
		limit = DefaultLimit
	}
	key := userKeyPrefix + userID
	if cached, ok := s.cache.get(key); ok {
		return trim(cached, limit)
	}

	catalogProducts := s.listCatalog(ctx)
	picks := make([]domain.Product, 0, limit)
	seen := map[string]bool{}

	picks = s.appendRemote(picks, seen, limit, func() ([]domain.Product, error) {
		return s.remote.ForUser(ctx, userID, limit)
	})
	picks = s.randomFill(picks, seen, limit, catalogProducts)

	s.cache.set(key, picks)
	return trim(picks, limit)
}

func (s *Service) listCatalog(ctx context.Context) []domain.Product {
	products, err := s.catalog.List(ctx)
	if err != nil {
		s.logger.Printf("recommend: catalog list error=%v", err)
		return nil
	}
	return products
}

func (s *Service) appendRemote(picks []domain.Product, seen map[string]bool, limit int, fetch func() ([]domain.Product, error)) []domain.Product {
	remote, err := fetch()
	if err != nil {
		s.logger.Printf("recommend: remote lookup error=%v", err)
		return picks
	}
	for _, p := range remote {
		if len(picks) >= limit {
			break
		}
		if p.ID == "" || seen[p.ID] {
			continue
		}
		picks = append(picks, p)
		seen[p.ID] = true
	}
	return picks
}

// randomFill draws uniformly without replacement from the catalog, excluding
// everything already chosen and the source product.
func (s *Service) randomFill(picks []domain.Product, seen map[string]bool, limit int, catalogProducts []domain.Product) []domain.Product {
	if len(picks) >= limit {
		return picks
	}
	candidates := make([]domain.Product, 0, len(catalogProducts))
	for _, p := range catalogProducts {
		if !seen[p.ID] {
			candidates = append(candidates, p)
		}
	}
	s.shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	for _, p := range candidates {
		if len(picks) >= limit {
			break
		}
		picks = append(picks, p)
		seen[p.ID] = true
	}
	return picks
}

func trim(products []domain.Product, limit int) []domain.Product {
	if len(products) > limit {
		products = products[:limit]
	}
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out
}
