package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"ramyeon-storefront/internal/apperr"
	"ramyeon-storefront/internal/cache"
	"ramyeon-storefront/internal/logger"
	"ramyeon-storefront/internal/metrics"
	"ramyeon-storefront/internal/money"

	"go.uber.org/zap"
)

const (
	CacheTTL       = 5 * time.Minute
	MinSearchChars = 2

	msgLocalFallback = "Stock validated locally (backend unavailable)"
	msgLocalNoOID    = "Validated locally (ObjectId not required)"
)

// Backend stock validation only understands Mongo ObjectIds.
var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

type Service interface {
	GetProducts(ctx context.Context, filters Filters) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
	CheckStock(ctx context.Context, productID string, quantity int) (StockResult, error)
	ValidateStock(ctx context.Context, items []StockItem) (StockResult, error)

	FindByID(id string) (Product, bool)
	ByCategory(categoryID string) []Product
	Available() []Product
	LowStock() []Product

	ClearCache()
	Refresh(ctx context.Context, filters Filters) ([]Product, error)
}

type Options struct {
	CacheTTL        time.Duration
	CacheMaxEntries int
	Metrics         *metrics.Metrics
}

type service struct {
	repo    Repository
	metrics *metrics.Metrics

	lists *cache.Cache[string, []Product]
	byID  *cache.Cache[string, Product]

	mu      sync.RWMutex
	current []Product
}

func NewService(repo Repository, opts Options) Service {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = CacheTTL
	}
	return &service{
		repo:    repo,
		metrics: opts.Metrics,
		lists:   cache.Must[string, []Product](opts.CacheMaxEntries, ttl),
		byID:    cache.Must[string, Product](opts.CacheMaxEntries, ttl),
	}
}

// GetProducts lists products through the cache and remembers the list for
// the in-memory helpers.
func (s *service) GetProducts(ctx context.Context, filters Filters) ([]Product, error) {
	log := logger.Layer(ctx, "service", "GetProducts")

	key := filters.cacheKey()
	if cached, ok := s.lists.Get(key); ok {
		s.metrics.CacheHit("products")
		log.Debug("using cached products", zap.String("key", key))
		s.setCurrent(cached)
		return cached, nil
	}
	s.metrics.CacheMiss("products")

	products, err := s.repo.List(ctx, filters.query())
	if err != nil {
		log.Error("failed to fetch products", zap.Error(err))
		return nil, err
	}

	s.lists.Set(key, products)
	s.setCurrent(products)

	log.Info("GetProducts success", zap.Int("count", len(products)))
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (Product, error) {
	log := logger.Layer(ctx, "service", "GetProduct", zap.String("product_id", id))

	if strings.TrimSpace(id) == "" {
		return Product{}, apperr.Validation(ErrEmptyProductID.Error())
	}

	if cached, ok := s.byID.Get(id); ok {
		s.metrics.CacheHit("product")
		return cached, nil
	}
	s.metrics.CacheMiss("product")

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		log.Error("failed to fetch product", zap.Error(err))
		return Product{}, err
	}

	s.byID.Set(id, p)
	return p, nil
}

// Search returns nothing, without a backend call, for queries shorter
// than MinSearchChars.
func (s *service) Search(ctx context.Context, query string) ([]Product, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchChars {
		return []Product{}, nil
	}

	products, err := s.repo.Search(ctx, query)
	if err != nil {
		logger.Layer(ctx, "service", "Search").Error("failed to search products", zap.Error(err))
		return nil, err
	}
	return products, nil
}

func (s *service) CheckStock(ctx context.Context, productID string, quantity int) (StockResult, error) {
	if productID == "" {
		return StockResult{}, apperr.Validation(ErrEmptyProductID.Error())
	}
	if quantity < 1 {
		return StockResult{}, apperr.Validation(ErrInvalidQuantity.Error())
	}
	return s.validate(ctx, "CheckStock", []StockItem{{ProductID: productID, Quantity: quantity, Price: money.Zero}})
}

// ValidateStock checks several items at once. When no item carries an
// ObjectId the backend is skipped and availability is assumed.
func (s *service) ValidateStock(ctx context.Context, items []StockItem) (StockResult, error) {
	for _, it := range items {
		if it.Quantity < 1 {
			return StockResult{}, apperr.Validation(ErrInvalidQuantity.Error())
		}
	}

	needsBackend := false
	for _, it := range items {
		if objectIDPattern.MatchString(it.ProductID) {
			needsBackend = true
			break
		}
	}
	if !needsBackend {
		logger.Layer(ctx, "service", "ValidateStock").Warn("skipping backend stock validation for non-ObjectId products")
		return assumeAvailable(items, msgLocalNoOID), nil
	}

	return s.validate(ctx, "ValidateStock", items)
}

func (s *service) validate(ctx context.Context, method string, items []StockItem) (StockResult, error) {
	log := logger.Layer(ctx, "service", method, zap.Int("items", len(items)))

	reply, err := s.repo.ValidateStock(ctx, items)
	if err != nil {
		if rejected, msg := stockRejection(err); rejected {
			log.Info("backend rejected stock", zap.String("reason", msg))
			return StockResult{}, apperr.Stock(msg)
		}
		log.Warn("backend stock validation failed, using local validation", zap.Error(err))
		s.metrics.Fallback("stock_validation")
		return assumeAvailable(items, msgLocalFallback), nil
	}

	res := StockResult{Available: reply.Success, Authoritative: true, Message: reply.Message}
	if reply.Data != nil {
		if reply.Data.Available != nil {
			res.Available = reply.Success && *reply.Data.Available
		}
		res.Items = reply.Data.Items
		if reply.Data.Message != "" {
			res.Message = reply.Data.Message
		}
	}

	if !res.Available {
		msg := firstNonEmpty(reply.Error, res.Message, shortfall(res.Items), ErrInsufficientStock.Error())
		log.Info("stock unavailable", zap.String("reason", msg))
		return res, apperr.Stock(msg)
	}

	return res, nil
}

// stockRejection separates "you asked for too much" answers from
// availability failures. Only the former is authoritative.
func stockRejection(err error) (bool, string) {
	var e *apperr.Error
	if !errors.As(err, &e) || e.Kind != apperr.KindNetwork {
		return false, ""
	}
	switch e.Status {
	case 400, 409, 422:
		return true, e.Message
	}
	return false, ""
}

func shortfall(items []StockItemResult) string {
	for _, it := range items {
		if it.Available {
			continue
		}
		if it.AvailableStock != nil {
			return fmt.Sprintf("only %d left for product %s", *it.AvailableStock, it.ProductID)
		}
		return "insufficient stock for product " + it.ProductID
	}
	return ""
}

func assumeAvailable(items []StockItem, msg string) StockResult {
	res := StockResult{Available: true, Message: msg, Authoritative: false}
	for _, it := range items {
		res.Items = append(res.Items, StockItemResult{ProductID: it.ProductID, Quantity: it.Quantity, Available: true})
	}
	return res
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *service) setCurrent(products []Product) {
	s.mu.Lock()
	s.current = products
	s.mu.Unlock()
}

func (s *service) filter(keep func(Product) bool) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Product{}
	for _, p := range s.current {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *service) FindByID(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.current {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func (s *service) ByCategory(categoryID string) []Product {
	return s.filter(func(p Product) bool { return p.CategoryID == categoryID })
}

func (s *service) Available() []Product {
	return s.filter(Product.InStock)
}

func (s *service) LowStock() []Product {
	return s.filter(Product.LowStock)
}

func (s *service) ClearCache() {
	s.lists.Purge()
	s.byID.Purge()
}

func (s *service) Refresh(ctx context.Context, filters Filters) ([]Product, error) {
	s.lists.Delete(filters.cacheKey())
	return s.GetProducts(ctx, filters)
}
