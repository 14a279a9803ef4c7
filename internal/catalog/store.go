package catalog

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/fileit-code/burg-ecom/internal/api"
	"github.com/fileit-code/burg-ecom/internal/domain"
)

var meter = otel.Meter("catalog")

// Store holds the current product list for one vendor. Loads replace the
// catalog wholesale; a failed load keeps the previous catalog so the view
// can keep rendering stale-but-available data.
type Store struct {
	client *api.Client
	vendor string
	logger *slog.Logger

	loadFailures metric.Int64Counter

	mu       sync.RWMutex
	products []domain.Product
}

func NewStore(client *api.Client, vendorKey string, logger *slog.Logger) *Store {
	loadFailures, _ := meter.Int64Counter("catalog_load_failures_total",
		metric.WithDescription("Catalog loads that failed and left stale state in place"),
	)

	return &Store{
		client:       client,
		vendor:       vendorKey,
		logger:       logger,
		loadFailures: loadFailures,
	}
}

// Load fetches the vendor's catalog and replaces the stored list. Failures
// are logged and counted, never returned; the previous catalog stays
// untouched.
func (s *Store) Load(ctx context.Context) {
	products, err := s.client.ListProducts(ctx, s.vendor)
	if err != nil {
		s.logger.Error("failed to load catalog", "error", err, "vendor", s.vendor)
		s.loadFailures.Add(ctx, 1)
		return
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	s.logger.Info("catalog loaded", "vendor", s.vendor, "count", len(products))
}

// Products returns a snapshot copy of the current catalog.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, len(s.products))
	copy(products, s.products)
	return products
}

// Product looks up an item in the current catalog by id.
func (s *Store) Product(id int) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Fetch reads a single item from the backend without touching stored state.
// Not-found and failures both report absence; failures are logged.
func (s *Store) Fetch(ctx context.Context, id int) (domain.Product, bool) {
	product, err := s.client.GetProduct(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch product", "error", err, "id", id)
		return domain.Product{}, false
	}
	if product == nil {
		return domain.Product{}, false
	}
	return *product, true
}
