package cart

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"ramyeon-storefront/internal/apperr"
	"ramyeon-storefront/internal/logger"
	"ramyeon-storefront/internal/loyalty"
	"ramyeon-storefront/internal/metrics"
	"ramyeon-storefront/internal/money"
	"ramyeon-storefront/internal/product"
	"ramyeon-storefront/internal/promotion"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type StockChecker interface {
	CheckStock(ctx context.Context, productID string, quantity int) (product.StockResult, error)
}

type PromotionEngine interface {
	FetchActive(ctx context.Context, filters promotion.Filters) ([]promotion.Promotion, error)
	IsCacheValid() bool
	Validate(code string) (promotion.Promotion, error)
	DiscountFor(p promotion.Promotion, items []promotion.Item) decimal.Decimal
}

type Ledger interface {
	Balance() int
	ValidateRedemption(ctx context.Context, customerID string, points int) (loyalty.Redemption, error)
	PointsDiscount(points int) loyalty.PointsDiscount
}

// Service defines the cart operations.
type Service interface {
	Snapshot() Snapshot
	Items() []LineItem
	ItemCount() int
	Totals() Totals
	AppliedPromotions() []AppliedPromotion

	AddItem(ctx context.Context, item LineItem) (Snapshot, error)
	RemoveItem(ctx context.Context, productID string) (Snapshot, error)
	UpdateQuantity(ctx context.Context, productID string, quantity int) (Snapshot, error)
	Clear(ctx context.Context)

	ApplyPromotionCode(ctx context.Context, code string) (AppliedPromotion, error)
	ApplyPromotion(ctx context.Context, p promotion.Promotion) (AppliedPromotion, error)
	RemovePromotion(ctx context.Context, id string) (Snapshot, error)

	ApplyLoyaltyPoints(ctx context.Context, points int, customerID string) (AppliedPromotion, error)
	RemoveLoyaltyPoints(ctx context.Context) Snapshot
	PointsDiscountAmount() decimal.Decimal
	PointsToRedeem() int
	MaxRedeemablePoints() int
}

type Options struct {
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Manager owns one cart. Every operation holds the lock for its whole
// duration, stock checks included, so concurrent mutations are applied one
// after another.
type Manager struct {
	repo    Repository
	stock   StockChecker
	promos  PromotionEngine
	ledger  Ledger
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	items   []LineItem
	applied []AppliedPromotion
}

var _ Service = (*Manager)(nil)

// NewManager restores the cart from repo. An unreadable stored cart is
// deleted and the manager starts empty.
func NewManager(ctx context.Context, repo Repository, stock StockChecker, promos PromotionEngine, ledger Ledger, opts Options) *Manager {
	m := &Manager{
		repo:    repo,
		stock:   stock,
		promos:  promos,
		ledger:  ledger,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.load(ctx)
	return m
}

func (m *Manager) load(ctx context.Context) {
	log := logger.Layer(ctx, "service", "LoadCart")

	snap, err := m.repo.Load(ctx)
	if err != nil {
		log.Warn("invalid cart data found in storage, clearing", zap.Error(err))
		if err := m.repo.Delete(ctx); err != nil {
			log.Error("failed to delete stored cart", zap.Error(err))
		}
		return
	}

	for _, it := range snap.Items {
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		if i := m.indexOf(it.ProductID); i >= 0 {
			m.items[i].Quantity += it.Quantity
			continue
		}
		m.items = append(m.items, it)
	}
	for _, ap := range snap.AppliedPromotions {
		if ap.ID() != "" && m.appliedIndex(ap.ID()) < 0 {
			m.applied = append(m.applied, ap)
		}
	}
	m.recalculate(ctx)

	log.Debug("cart restored", zap.Int("items", len(m.items)), zap.Int("promotions", len(m.applied)))
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Manager) Items() []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.items)
}

func (m *Manager) ItemCount() int {
	return m.Totals().ItemCount
}

func (m *Manager) Totals() Totals {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals()
}

func (m *Manager) AppliedPromotions() []AppliedPromotion {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.applied)
}

// AddItem checks stock for the resulting quantity, then merges the item
// into an existing line or appends it.
func (m *Manager) AddItem(ctx context.Context, item LineItem) (snap Snapshot, err error) {
	defer func() { m.metrics.CartOperation("add_item", err) }()
	log := logger.Layer(ctx, "service", "AddItem", zap.String("product_id", item.ProductID), zap.Int("quantity", item.Quantity))

	item.ProductID = strings.TrimSpace(item.ProductID)
	switch {
	case item.ProductID == "":
		return Snapshot{}, apperr.Validation(ErrEmptyProductID.Error())
	case item.Quantity < 1:
		return Snapshot{}, apperr.Validation(ErrInvalidQuantity.Error())
	case item.UnitPrice.IsNegative():
		return Snapshot{}, apperr.Validation(ErrNegativePrice.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(item.ProductID)
	finalQty := item.Quantity
	if idx >= 0 {
		finalQty += m.items[idx].Quantity
	}

	if err := m.checkStock(ctx, item.ProductID, finalQty); err != nil {
		log.Info("stock check rejected item", zap.Error(err))
		return Snapshot{}, err
	}

	if idx >= 0 {
		m.items[idx].Quantity = finalQty
	} else {
		item.AddedAt = m.now()
		m.items = append(m.items, item)
	}

	m.recalculate(ctx)
	m.persist(ctx)

	log.Info("AddItem success", zap.Int("final_quantity", finalQty))
	return m.snapshot(), nil
}

// RemoveItem drops the line and reprices every applied promotion against
// what is left; promotions that no longer give a discount are dropped.
func (m *Manager) RemoveItem(ctx context.Context, productID string) (snap Snapshot, err error) {
	defer func() { m.metrics.CartOperation("remove_item", err) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(productID)
	if idx < 0 {
		return Snapshot{}, apperr.NotFound(ErrItemNotFound.Error())
	}
	m.items = slices.Delete(m.items, idx, idx+1)

	m.recalculate(ctx)
	m.persist(ctx)

	logger.Layer(ctx, "service", "RemoveItem", zap.String("product_id", productID)).Info("RemoveItem success")
	return m.snapshot(), nil
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
func (m *Manager) UpdateQuantity(ctx context.Context, productID string, quantity int) (snap Snapshot, err error) {
	if quantity <= 0 {
		return m.RemoveItem(ctx, productID)
	}
	defer func() { m.metrics.CartOperation("update_quantity", err) }()
	log := logger.Layer(ctx, "service", "UpdateQuantity", zap.String("product_id", productID), zap.Int("quantity", quantity))

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(productID)
	if idx < 0 {
		return Snapshot{}, apperr.NotFound(ErrItemNotFound.Error())
	}

	if err := m.checkStock(ctx, productID, quantity); err != nil {
		log.Info("stock check rejected quantity", zap.Error(err))
		return Snapshot{}, err
	}

	m.items[idx].Quantity = quantity
	m.recalculate(ctx)
	m.persist(ctx)

	return m.snapshot(), nil
}

// Clear empties the cart, its promotions and the stored copy.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	m.applied = nil
	if err := m.repo.Delete(ctx); err != nil {
		logger.Layer(ctx, "service", "Clear").Error("failed to clear stored cart", zap.Error(err))
	}
	m.metrics.CartOperation("clear", nil)
}

// ApplyPromotionCode validates code against the active promotions,
// fetching them first when the list is stale, and applies the match.
func (m *Manager) ApplyPromotionCode(ctx context.Context, code string) (AppliedPromotion, error) {
	log := logger.Layer(ctx, "service", "ApplyPromotionCode", zap.String("code", code))

	if !m.promos.IsCacheValid() {
		if _, err := m.promos.FetchActive(ctx, nil); err != nil {
			log.Warn("failed to refresh active promotions", zap.Error(err))
		}
	}

	p, err := m.promos.Validate(code)
	if err != nil {
		log.Info("promotion validation failed", zap.Error(err))
		m.metrics.CartOperation("apply_promotion", err)
		return AppliedPromotion{}, err
	}
	return m.ApplyPromotion(ctx, p)
}

// ApplyPromotion prices p against the cart. A promotion that is already
// applied is returned unchanged.
func (m *Manager) ApplyPromotion(ctx context.Context, p promotion.Promotion) (ap AppliedPromotion, err error) {
	defer func() { m.metrics.CartOperation("apply_promotion", err) }()
	log := logger.Layer(ctx, "service", "ApplyPromotion", zap.String("promotion_id", p.ID), zap.String("name", p.Name))

	if p.ID == "" {
		return AppliedPromotion{}, apperr.Validation(ErrEmptyPromotionID.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.appliedIndex(p.ID); i >= 0 {
		log.Debug("promotion already applied")
		return m.applied[i], nil
	}

	amount := money.Clamp(m.promos.DiscountFor(p, ToPromotionItems(m.items)), m.remaining())
	if !amount.IsPositive() {
		return AppliedPromotion{}, apperr.NoDiscount(ErrNoDiscountApplicable.Error())
	}

	ap = AppliedPromotion{
		Promotion:      p,
		Kind:           KindPromotion,
		DiscountAmount: amount,
		AppliedAt:      m.now(),
	}
	m.applied = append(m.applied, ap)
	m.persist(ctx)

	log.Info("ApplyPromotion success", zap.String("discount", amount.String()))
	return ap, nil
}

// RemovePromotion takes off an applied promotion and exactly the amount it
// contributed.
func (m *Manager) RemovePromotion(ctx context.Context, id string) (snap Snapshot, err error) {
	defer func() { m.metrics.CartOperation("remove_promotion", err) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.appliedIndex(id)
	if i < 0 {
		return Snapshot{}, apperr.NotFound(ErrPromotionNotApplied.Error())
	}
	m.applied = slices.Delete(m.applied, i, i+1)
	m.persist(ctx)

	return m.snapshot(), nil
}

// ApplyLoyaltyPoints validates the redemption with the ledger and records
// it as a points entry, replacing an earlier one.
func (m *Manager) ApplyLoyaltyPoints(ctx context.Context, points int, customerID string) (ap AppliedPromotion, err error) {
	defer func() { m.metrics.CartOperation("apply_points", err) }()
	log := logger.Layer(ctx, "service", "ApplyLoyaltyPoints", zap.Int("points", points))

	redemption, err := m.ledger.ValidateRedemption(ctx, customerID, points)
	if err != nil {
		log.Info("points validation failed", zap.Error(err))
		return AppliedPromotion{}, err
	}
	if !redemption.Authoritative {
		log.Warn("points validated against local balance")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	remaining := m.remaining()
	existing := m.appliedIndex(LoyaltyPromotionID)
	if existing >= 0 {
		remaining = remaining.Add(m.applied[existing].DiscountAmount)
	}

	amount := money.Clamp(m.ledger.PointsDiscount(points).DiscountAmount, remaining)
	if !amount.IsPositive() {
		return AppliedPromotion{}, apperr.NoDiscount(ErrNoDiscountApplicable.Error())
	}
	if existing >= 0 {
		m.applied = slices.Delete(m.applied, existing, existing+1)
	}

	ap = AppliedPromotion{
		Promotion:      promotion.Promotion{ID: LoyaltyPromotionID, Name: "Loyalty Points", Status: promotion.StatusActive},
		Kind:           KindLoyaltyPoints,
		PointsUsed:     points,
		DiscountAmount: amount,
		AppliedAt:      m.now(),
	}
	m.applied = append(m.applied, ap)
	m.persist(ctx)

	log.Info("ApplyLoyaltyPoints success", zap.String("discount", amount.String()))
	return ap, nil
}

// RemoveLoyaltyPoints is a no-op when no points are applied.
func (m *Manager) RemoveLoyaltyPoints(ctx context.Context) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.appliedIndex(LoyaltyPromotionID); i >= 0 {
		m.applied = slices.Delete(m.applied, i, i+1)
		m.persist(ctx)
	}
	return m.snapshot()
}

func (m *Manager) PointsDiscountAmount() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.appliedIndex(LoyaltyPromotionID); i >= 0 {
		return m.applied[i].DiscountAmount
	}
	return money.Zero
}

func (m *Manager) PointsToRedeem() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.appliedIndex(LoyaltyPromotionID); i >= 0 {
		return m.applied[i].PointsUsed
	}
	return 0
}

// MaxRedeemablePoints is min(floor(subtotal × 0.5), balance).
func (m *Manager) MaxRedeemablePoints() int {
	m.mu.Lock()
	limit := int(m.subtotal().Mul(MaxPointsShare).Floor().IntPart())
	m.mu.Unlock()
	return min(limit, m.ledger.Balance())
}

func (m *Manager) checkStock(ctx context.Context, productID string, quantity int) error {
	res, err := m.stock.CheckStock(ctx, productID, quantity)
	if err != nil {
		return err
	}
	if !res.Available {
		return apperr.Stock(ErrInsufficientStock.Error())
	}
	if !res.Authoritative {
		logger.Layer(ctx, "service", "checkStock").Warn("stock assumed available", zap.String("reason", res.Message))
	}
	return nil
}

// recalculate reprices the applied promotions in order. Each amount is
// clamped to what the earlier ones left of the subtotal, and entries that
// end at zero are dropped. Must be called with mu held.
func (m *Manager) recalculate(ctx context.Context) {
	items := ToPromotionItems(m.items)
	remaining := m.subtotal()

	kept := make([]AppliedPromotion, 0, len(m.applied))
	for _, ap := range m.applied {
		var amount decimal.Decimal
		if ap.Kind == KindLoyaltyPoints {
			amount = m.ledger.PointsDiscount(ap.PointsUsed).DiscountAmount
		} else {
			amount = m.promos.DiscountFor(ap.Promotion, items)
		}
		amount = money.Clamp(amount, remaining)

		if !amount.IsPositive() {
			logger.Layer(ctx, "service", "recalculate").Info("promotion no longer applies, removing", zap.String("promotion_id", ap.ID()))
			continue
		}
		ap.DiscountAmount = amount
		remaining = remaining.Sub(amount)
		kept = append(kept, ap)
	}
	m.applied = kept
}

// persist logs failures and never returns them. Must be called with mu
// held.
func (m *Manager) persist(ctx context.Context) {
	if err := m.repo.Save(ctx, m.snapshot()); err != nil {
		logger.Layer(ctx, "service", "persist").Error("failed to persist cart", zap.Error(err))
	}
}

func (m *Manager) snapshot() Snapshot {
	return Snapshot{
		Items:             slices.Clone(m.items),
		AppliedPromotions: slices.Clone(m.applied),
		Totals:            m.totals(),
	}
}

// totals: subtotal + 10% tax + flat shipping − discount. An empty cart
// totals zero and carries no shipping fee.
func (m *Manager) totals() Totals {
	if len(m.items) == 0 {
		return Totals{Subtotal: money.Zero, Tax: money.Zero, Shipping: money.Zero, Discount: money.Zero, Total: money.Zero}
	}

	subtotal := m.subtotal()
	tax := money.Round2(subtotal.Mul(TaxRate))
	discount := m.discount()
	count := 0
	for _, it := range m.items {
		count += it.Quantity
	}

	return Totals{
		Subtotal:  subtotal,
		Tax:       tax,
		Shipping:  ShippingFee,
		Discount:  discount,
		Total:     money.Max(money.Zero, subtotal.Add(tax).Add(ShippingFee).Sub(discount)),
		ItemCount: count,
	}
}

func (m *Manager) subtotal() decimal.Decimal {
	total := money.Zero
	for _, it := range m.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (m *Manager) discount() decimal.Decimal {
	total := money.Zero
	for _, ap := range m.applied {
		total = total.Add(ap.DiscountAmount)
	}
	return total
}

func (m *Manager) remaining() decimal.Decimal {
	return money.Max(money.Zero, m.subtotal().Sub(m.discount()))
}

func (m *Manager) indexOf(productID string) int {
	return slices.IndexFunc(m.items, func(it LineItem) bool { return it.ProductID == productID })
}

func (m *Manager) appliedIndex(id string) int {
	return slices.IndexFunc(m.applied, func(ap AppliedPromotion) bool { return ap.ID() == id })
}
