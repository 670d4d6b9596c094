package order

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"ramyeon-storefront/internal/apperr"
	"ramyeon-storefront/internal/cache"
	"ramyeon-storefront/internal/logger"
	"ramyeon-storefront/internal/loyalty"
	"ramyeon-storefront/internal/metrics"
	"ramyeon-storefront/internal/money"
	"ramyeon-storefront/internal/product"
	"ramyeon-storefront/internal/promotion"
	"ramyeon-storefront/internal/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	CacheTTL       = 5 * time.Minute
	MinSearchChars = 2
)

type StockValidator interface {
	ValidateStock(ctx context.Context, items []product.StockItem) (product.StockResult, error)
}

type PromotionLookup interface {
	Get(idOrCode string) (promotion.Promotion, bool)
	DiscountFor(p promotion.Promotion, items []promotion.Item) decimal.Decimal
}

type PointsAwarder interface {
	EarnPoints(amount decimal.Decimal) int
	Award(ctx context.Context, orderAmount decimal.Decimal, customerID, orderID, description string) (loyalty.AwardResult, error)
}

type Service interface {
	CreateOrder(ctx context.Context, req CreateRequest) (Order, error)
	UpdateOrder(ctx context.Context, id string, req UpdateRequest) (Order, error)
	CancelOrder(ctx context.Context, id, reason string) (Order, error)

	GetOrders(ctx context.Context, customerID string, filters Filters) ([]Order, error)
	GetOrder(ctx context.Context, id string) (Order, error)
	GetOrderStatus(ctx context.Context, id string) (StatusInfo, error)
	SearchOrders(ctx context.Context, query, customerID string) ([]Order, error)
	LocalOrders(ctx context.Context, customerID string) LocalOrders

	Orders() []Order
	Current() (Order, bool)
	CurrentSummary() (Summary, bool)
	FindOrderByID(id string) (Order, bool)
	OrdersByStatus(status Status) []Order
	RecentOrders() []Order
	PendingOrders() []Order
	CompletedOrders() []Order

	ClearCache()
	RefreshOrders(ctx context.Context, customerID string) ([]Order, error)
}

// Options configure the service. Stock, Promotions and Points may be nil,
// which skips that step of order creation.
type Options struct {
	Stock           StockValidator
	Promotions      PromotionLookup
	Points          PointsAwarder
	Store           storage.Store
	CacheTTL        time.Duration
	CacheMaxEntries int
	Metrics         *metrics.Metrics
}

type service struct {
	repo    Repository
	stock   StockValidator
	promos  PromotionLookup
	points  PointsAwarder
	store   storage.Store
	metrics *metrics.Metrics

	lists *cache.Cache[string, []Order]
	byID  *cache.Cache[string, Order]

	mu         sync.RWMutex
	orders     []Order
	current    Order
	hasCurrent bool
}

func NewService(repo Repository, opts Options) Service {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = CacheTTL
	}
	return &service{
		repo:    repo,
		stock:   opts.Stock,
		promos:  opts.Promotions,
		points:  opts.Points,
		store:   opts.Store,
		metrics: opts.Metrics,
		lists:   cache.Must[string, []Order](opts.CacheMaxEntries, ttl),
		byID:    cache.Must[string, Order](opts.CacheMaxEntries, ttl),
	}
}

// CreateOrder submits an order. Stock is re-checked but never blocks the
// order; points are awarded after the backend accepts it and an award
// failure does not fail the order.
func (s *service) CreateOrder(ctx context.Context, req CreateRequest) (Order, error) {
	log := logger.Layer(ctx, "service", "CreateOrder",
		zap.String("customer_id", req.CustomerID),
		zap.Int("items", len(req.Items)),
	)

	if err := validateCreate(req); err != nil {
		s.metrics.OrderOperation("create_order", err)
		return Order{}, err
	}

	s.checkStock(ctx, log, req.Items)

	total := req.Total
	if !total.IsPositive() {
		total = subtotal(req.Items)
	}
	discount := money.Round2(money.Clamp(req.Discount.Add(s.promotionDiscount(log, req)), total))
	amount := total.Sub(discount)

	pointsEarned := 0
	if s.points != nil {
		pointsEarned = s.points.EarnPoints(amount)
	}

	created, err := s.repo.Create(ctx, ToPayload(req, pointsEarned, discount))
	s.metrics.OrderOperation("create_order", err)
	if err != nil {
		log.Error("failed to create order", zap.Error(err))
		return Order{}, err
	}
	if created.CustomerID == "" {
		created.CustomerID = req.CustomerID
	}
	if created.PointsEarned == 0 {
		created.PointsEarned = pointsEarned
	}

	s.mu.Lock()
	s.orders = append([]Order{created}, s.orders...)
	s.current, s.hasCurrent = created, true
	s.mu.Unlock()

	s.lists.Purge()
	s.byID.Set(created.ID, created)
	s.mirror(ctx, req.CustomerID)

	if pointsEarned > 0 && s.points != nil {
		desc := "Points earned from order #" + firstNonEmpty(created.OrderNumber, created.ID)
		if _, err := s.points.Award(ctx, amount, req.CustomerID, created.ID, desc); err != nil {
			log.Warn("failed to award loyalty points", zap.Error(err))
		}
	}

	log.Info("CreateOrder success", zap.String("order_id", created.ID), zap.Int("points_earned", pointsEarned))
	return created, nil
}

func validateCreate(req CreateRequest) error {
	if strings.TrimSpace(req.CustomerID) == "" {
		return apperr.Validation(ErrCustomerRequired.Error())
	}
	if len(req.Items) == 0 {
		return apperr.Validation(ErrNoItems.Error())
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Price.IsNegative() {
			return apperr.Validation(ErrInvalidItem.Error())
		}
	}
	return nil
}

func (s *service) checkStock(ctx context.Context, log *zap.Logger, items []Item) {
	if s.stock == nil {
		return
	}
	res, err := s.stock.ValidateStock(ctx, toStockItems(items))
	switch {
	case err != nil:
		log.Warn("stock validation error, proceeding with order", zap.Error(err))
	case !res.Available:
		log.Warn("stock validation failed, proceeding with order", zap.String("message", res.Message))
	}
}

func (s *service) promotionDiscount(log *zap.Logger, req CreateRequest) decimal.Decimal {
	sum := decimal.Zero
	if s.promos == nil || len(req.Promotions) == 0 {
		return sum
	}
	items := toPromotionItems(req.Items)
	for _, id := range req.Promotions {
		p, ok := s.promos.Get(id)
		if !ok {
			log.Warn("failed to apply promotion", zap.String("promotion", id))
			continue
		}
		d := s.promos.DiscountFor(p, items)
		if !d.IsPositive() {
			log.Warn("promotion gives no discount", zap.String("promotion", id))
			continue
		}
		sum = sum.Add(d)
	}
	return sum
}

func (s *service) UpdateOrder(ctx context.Context, id string, req UpdateRequest) (Order, error) {
	log := logger.Layer(ctx, "service", "UpdateOrder",
		zap.String("order_id", id),
		zap.String("status", string(req.Status)),
	)

	if err := validID(id); err != nil {
		return Order{}, err
	}
	if !req.Status.Valid() {
		return Order{}, apperr.Validationf("%s: %q", ErrInvalidStatus, req.Status)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, req)
	s.metrics.OrderOperation("update_order", err)
	if err != nil {
		log.Error("failed to update order", zap.Error(err))
		return Order{}, err
	}

	patched := s.patch(id, func(o *Order) {
		if updated.ID != "" {
			*o = updated
			return
		}
		o.Status = req.Status
		if req.Notes != "" {
			o.Notes = req.Notes
		}
	})
	if patched.ID == "" {
		patched = updated
	}

	log.Info("UpdateOrder success")
	return patched, nil
}

func (s *service) CancelOrder(ctx context.Context, id, reason string) (Order, error) {
	log := logger.Layer(ctx, "service", "CancelOrder", zap.String("order_id", id))

	if err := validID(id); err != nil {
		return Order{}, err
	}

	cancelled, err := s.repo.Cancel(ctx, id, reason)
	s.metrics.OrderOperation("cancel_order", err)
	if err != nil {
		log.Error("failed to cancel order", zap.Error(err))
		return Order{}, err
	}

	patched := s.patch(id, func(o *Order) {
		o.Status = StatusCancelled
		o.CancellationReason = reason
	})
	if patched.ID == "" {
		patched = cancelled
		patched.Status = StatusCancelled
		patched.CancellationReason = reason
	}

	log.Info("CancelOrder success")
	return patched, nil
}

// patch applies fn to the local copies of order id and drops it from the
// caches. It returns the patched order, or a zero Order when id is not
// held locally.
func (s *service) patch(id string, fn func(*Order)) Order {
	s.lists.Purge()
	s.byID.Delete(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out Order
	if i := slices.IndexFunc(s.orders, func(o Order) bool { return o.ID == id }); i >= 0 {
		fn(&s.orders[i])
		out = s.orders[i]
	}
	if s.hasCurrent && s.current.ID == id {
		fn(&s.current)
		out = s.current
	}
	return out
}

// GetOrders reads a customer's orders through the cache. A backend
// failure returns the error; stale entries are never served.
func (s *service) GetOrders(ctx context.Context, customerID string, filters Filters) ([]Order, error) {
	log := logger.Layer(ctx, "service", "GetOrders", zap.String("customer_id", customerID))

	if strings.TrimSpace(customerID) == "" {
		return nil, apperr.Validation(ErrCustomerRequired.Error())
	}

	key := listKey(customerID, filters)
	if cached, ok := s.lists.Get(key); ok {
		s.metrics.CacheHit("orders")
		s.setOrders(cached)
		return slices.Clone(cached), nil
	}
	s.metrics.CacheMiss("orders")

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	orders, err := s.repo.ListByCustomer(ctx, customerID, limit, max(filters.Offset, 0))
	if err != nil {
		log.Error("failed to fetch orders", zap.Error(err))
		return nil, err
	}
	orders = byStatus(orders, filters.Status)

	s.lists.Set(key, orders)
	s.setOrders(orders)
	s.mirror(ctx, customerID)

	log.Info("GetOrders success", zap.Int("count", len(orders)))
	return slices.Clone(orders), nil
}

// byStatus keeps orders with status, or all of them when status is empty.
// It never returns nil.
func byStatus(orders []Order, status Status) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

func listKey(customerID string, filters Filters) string {
	raw, _ := json.Marshal(filters)
	return "orders_" + customerID + "_" + string(raw)
}

func (s *service) GetOrder(ctx context.Context, id string) (Order, error) {
	log := logger.Layer(ctx, "service", "GetOrder", zap.String("order_id", id))

	if err := validID(id); err != nil {
		return Order{}, err
	}

	if cached, ok := s.byID.Get(id); ok {
		s.metrics.CacheHit("order")
		s.setCurrent(cached)
		return cached, nil
	}
	s.metrics.CacheMiss("order")

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		log.Error("failed to fetch order", zap.Error(err))
		return Order{}, err
	}

	s.byID.Set(id, o)
	s.setCurrent(o)
	return o, nil
}

func (s *service) GetOrderStatus(ctx context.Context, id string) (StatusInfo, error) {
	if err := validID(id); err != nil {
		return StatusInfo{}, err
	}
	info, err := s.repo.Status(ctx, id)
	if err != nil {
		logger.Layer(ctx, "service", "GetOrderStatus").Error("failed to fetch order status", zap.Error(err))
		return StatusInfo{}, err
	}
	if info.OrderID == "" {
		info.OrderID = id
	}
	return info, nil
}

// SearchOrders answers queries shorter than MinSearchChars with nothing,
// without a backend call.
func (s *service) SearchOrders(ctx context.Context, query, customerID string) ([]Order, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchChars {
		return []Order{}, nil
	}

	key := "search_" + customerID + "_" + strings.ToLower(query)
	if cached, ok := s.lists.Get(key); ok {
		s.metrics.CacheHit("order_search")
		return slices.Clone(cached), nil
	}
	s.metrics.CacheMiss("order_search")

	orders, err := s.repo.Search(ctx, query, customerID)
	if err != nil {
		logger.Layer(ctx, "service", "SearchOrders").Error("failed to search orders", zap.Error(err))
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}
	s.lists.Set(key, orders)
	return slices.Clone(orders), nil
}

// LocalOrders reads the mirrored list for a customer. It is never
// authoritative.
func (s *service) LocalOrders(ctx context.Context, customerID string) LocalOrders {
	out := LocalOrders{Orders: []Order{}}
	if s.store == nil || customerID == "" {
		return out
	}
	var orders []Order
	if err := storage.GetJSON(ctx, s.store, storage.OrdersKey(customerID), &orders); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Layer(ctx, "service", "LocalOrders").Warn("failed to read mirrored orders", zap.Error(err))
		}
		return out
	}
	if orders != nil {
		out.Orders = orders
	}
	return out
}

func (s *service) mirror(ctx context.Context, customerID string) {
	if s.store == nil || customerID == "" {
		return
	}
	if err := storage.SetJSON(ctx, s.store, storage.OrdersKey(customerID), s.Orders()); err != nil {
		logger.Layer(ctx, "service", "mirror").Warn("failed to mirror orders", zap.Error(err))
	}
}

func validID(id string) error {
	switch strings.TrimSpace(id) {
	case "", "undefined", "null":
		return apperr.Validation(ErrInvalidOrderID.Error())
	}
	return nil
}

func (s *service) setOrders(orders []Order) {
	s.mu.Lock()
	s.orders = slices.Clone(orders)
	s.mu.Unlock()
}

func (s *service) setCurrent(o Order) {
	s.mu.Lock()
	s.current, s.hasCurrent = o, true
	s.mu.Unlock()
}

func (s *service) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

func (s *service) Current() (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.hasCurrent
}

func (s *service) CurrentSummary() (Summary, bool) {
	o, ok := s.Current()
	if !ok {
		return Summary{}, false
	}
	return StatusSummary(o.Status), true
}

func (s *service) FindOrderByID(id string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

func (s *service) filter(keep func(Order) bool) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Order{}
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func (s *service) OrdersByStatus(status Status) []Order {
	return s.filter(func(o Order) bool { return o.Status == status })
}

// RecentOrders is the RecentLimit newest orders by creation time.
func (s *service) RecentOrders() []Order {
	orders := s.Orders()
	slices.SortStableFunc(orders, func(a, b Order) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	if len(orders) > RecentLimit {
		orders = orders[:RecentLimit]
	}
	return orders
}

func (s *service) PendingOrders() []Order {
	return s.filter(func(o Order) bool {
		return o.Status == StatusPending || o.Status == StatusConfirmed || o.Status == StatusPreparing
	})
}

func (s *service) CompletedOrders() []Order {
	return s.filter(func(o Order) bool {
		return o.Status == StatusCompleted || o.Status == StatusCancelled || o.Status == StatusRefunded
	})
}

func (s *service) ClearCache() {
	s.lists.Purge()
	s.byID.Purge()
}

func (s *service) RefreshOrders(ctx context.Context, customerID string) ([]Order, error) {
	s.ClearCache()
	return s.GetOrders(ctx, customerID, Filters{})
}
