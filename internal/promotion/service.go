package promotion

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"ramyeon-storefront/internal/apperr"
	"ramyeon-storefront/internal/cache"
	"ramyeon-storefront/internal/config"
	"ramyeon-storefront/internal/logger"
	"ramyeon-storefront/internal/metrics"
	"ramyeon-storefront/internal/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const CacheTTL = 5 * time.Minute

var drinksRate = decimal.NewFromFloat(0.10)

type Service interface {
	FetchActive(ctx context.Context, filters Filters) ([]Promotion, error)
	GetPromotions(ctx context.Context, filters Filters) ([]Promotion, error)
	Search(ctx context.Context, query string, filters Filters) ([]Promotion, error)
	Active() []Promotion
	Get(idOrCode string) (Promotion, bool)
	Validate(code string) (Promotion, error)

	CheckApplicability(p Promotion, items []Item) Applicability
	ComputeDiscount(p Promotion, items []Item) Discount
	DrinksDiscount(items []Item) decimal.Decimal
	DiscountFor(p Promotion, items []Item) decimal.Decimal

	Clear()
	Refresh(ctx context.Context, filters Filters) ([]Promotion, error)
	IsCacheValid() bool
}

// Options configure the engine. Nil slices fall back to the config
// defaults; an empty non-nil slice disables the rule.
type Options struct {
	ExcludedNames   []string
	DrinkKeywords   []string
	CacheTTL        time.Duration
	CacheMaxEntries int
	Metrics         *metrics.Metrics
	Now             func() time.Time
}

type service struct {
	repo     Repository
	metrics  *metrics.Metrics
	excluded []string
	keywords []string
	ttl      time.Duration
	now      func() time.Time

	lists *cache.Cache[string, []Promotion]

	mu        sync.RWMutex
	active    []Promotion
	fetchedAt time.Time
}

func NewService(repo Repository, opts Options) Service {
	s := &service{
		repo:     repo,
		metrics:  opts.Metrics,
		excluded: opts.ExcludedNames,
		keywords: opts.DrinkKeywords,
		ttl:      opts.CacheTTL,
		now:      opts.Now,
	}
	if s.excluded == nil {
		s.excluded = config.DefaultExcludedPromotions
	}
	if s.keywords == nil {
		s.keywords = config.DefaultDrinkKeywords
	}
	if s.ttl <= 0 {
		s.ttl = CacheTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.lists = cache.Must(opts.CacheMaxEntries, s.ttl, cache.WithClock[string, []Promotion](s.now))
	return s
}

// FetchActive loads the active promotions, drops the excluded names and
// makes the result the set Validate and Get look in.
func (s *service) FetchActive(ctx context.Context, filters Filters) ([]Promotion, error) {
	log := logger.Layer(ctx, "service", "FetchActive")

	key := filters.cacheKey()
	if cached, ok := s.lists.Get(key); ok {
		s.metrics.CacheHit("promotions")
		s.setActive(cached, false)
		return slices.Clone(cached), nil
	}
	s.metrics.CacheMiss("promotions")

	fetched, err := s.repo.GetActive(ctx, filters.query())
	if err != nil {
		log.Error("failed to fetch active promotions", zap.Error(err))
		return nil, err
	}

	kept := s.exclude(fetched)
	s.lists.Set(key, kept)
	s.setActive(kept, true)

	log.Info("FetchActive success", zap.Int("count", len(kept)), zap.Int("excluded", len(fetched)-len(kept)))
	return slices.Clone(kept), nil
}

func (s *service) GetPromotions(ctx context.Context, filters Filters) ([]Promotion, error) {
	fetched, err := s.repo.GetActive(ctx, filters.query())
	if err != nil {
		logger.Layer(ctx, "service", "GetPromotions").Error("failed to fetch promotions", zap.Error(err))
		return nil, err
	}
	return s.exclude(fetched), nil
}

func (s *service) Search(ctx context.Context, query string, filters Filters) ([]Promotion, error) {
	f := Filters{"search": strings.TrimSpace(query)}
	for k, v := range filters {
		f[k] = v
	}
	return s.GetPromotions(ctx, f)
}

func (s *service) Active() []Promotion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.active)
}

func (s *service) Get(idOrCode string) (Promotion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.active {
		if p.Matches(idOrCode) {
			return p, true
		}
	}
	return Promotion{}, false
}

// Validate finds code among the fetched active promotions and checks its
// status and date window.
func (s *service) Validate(code string) (Promotion, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Promotion{}, apperr.Validation(ErrEmptyCode.Error())
	}

	p, ok := s.Get(code)
	if !ok {
		return Promotion{}, apperr.NotFound(ErrNotFound.Error())
	}
	if !strings.EqualFold(p.Status, StatusActive) {
		return Promotion{}, apperr.Validation(ErrInactive.Error())
	}

	now := s.now()
	if !p.StartDate.IsZero() && now.Before(p.StartDate.Time) {
		return Promotion{}, apperr.Validation(ErrNotStarted.Error())
	}
	if !p.EndDate.IsZero() && now.After(p.EndDate.Time) {
		return Promotion{}, apperr.Validation(ErrExpired.Error())
	}
	return p, nil
}

func (s *service) CheckApplicability(p Promotion, items []Item) Applicability {
	if p.isZero() || len(items) == 0 {
		return Applicability{Reason: reasonEmpty}
	}

	subtotal := Subtotal(items)
	if p.MinimumOrder != nil && p.MinimumOrder.IsPositive() && subtotal.LessThan(*p.MinimumOrder) {
		return Applicability{Reason: fmt.Sprintf(reasonMinimumFormat, money.Format(*p.MinimumOrder))}
	}

	if len(p.ApplicableCategories) > 0 {
		matched := slices.ContainsFunc(items, func(it Item) bool {
			return (it.CategoryID != "" && slices.Contains(p.ApplicableCategories, it.CategoryID)) ||
				(it.Category != "" && slices.Contains(p.ApplicableCategories, it.Category))
		})
		if !matched {
			return Applicability{Reason: reasonCategory}
		}
	}

	return Applicability{Applicable: true, Reason: reasonApplicable}
}

// ComputeDiscount prices p against items without checking applicability.
func (s *service) ComputeDiscount(p Promotion, items []Item) Discount {
	if len(items) == 0 {
		return Discount{Amount: money.Zero, Percentage: money.Zero, Type: TypeNone}
	}

	subtotal := Subtotal(items)
	d := Discount{
		Amount:           money.Zero,
		Percentage:       money.Zero,
		Type:             TypeNone,
		OriginalSubtotal: subtotal,
	}

	switch p.DiscountType {
	case TypePercentage:
		d.Amount = subtotal.Mul(p.DiscountValue).Div(money.Hundred)
		d.Percentage = p.DiscountValue
		d.Type = TypePercentage
	case TypeFixed:
		d.Amount = money.Min(p.DiscountValue, subtotal)
		d.Type = TypeFixed
	}

	if p.MaxDiscount != nil && p.MaxDiscount.IsPositive() && d.Amount.GreaterThan(*p.MaxDiscount) {
		d.Amount = *p.MaxDiscount
	}
	d.Amount = money.Round2(money.Clamp(d.Amount, subtotal))
	d.DiscountedSubtotal = subtotal.Sub(d.Amount)
	return d
}

// DrinksDiscount is 10% of the items that look like drinks, by category
// or by a keyword in the product name.
func (s *service) DrinksDiscount(items []Item) decimal.Decimal {
	total := money.Zero
	for _, it := range items {
		if s.isDrink(it) {
			total = total.Add(it.LineTotal())
		}
	}
	return money.Round2(total.Mul(drinksRate))
}

func (s *service) isDrink(it Item) bool {
	category := strings.ToLower(it.Category)
	if strings.Contains(category, "drink") || strings.Contains(category, "beverage") {
		return true
	}
	name := strings.ToLower(it.Name)
	for _, kw := range s.keywords {
		if kw != "" && strings.Contains(name, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// DiscountFor is the amount the cart credits for p. Promotions named like
// a drinks deal use the keyword rule; the rest need to be applicable.
func (s *service) DiscountFor(p Promotion, items []Item) decimal.Decimal {
	if strings.Contains(strings.ToLower(p.Name), "drink") {
		return s.DrinksDiscount(items)
	}
	if !s.CheckApplicability(p, items).Applicable {
		return money.Zero
	}
	return s.ComputeDiscount(p, items).Amount
}

func (s *service) Clear() {
	s.lists.Purge()
	s.mu.Lock()
	s.active = nil
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

func (s *service) Refresh(ctx context.Context, filters Filters) ([]Promotion, error) {
	s.Clear()
	return s.FetchActive(ctx, filters)
}

func (s *service) IsCacheValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.fetchedAt.IsZero() && s.now().Sub(s.fetchedAt) < s.ttl
}

func (s *service) setActive(promos []Promotion, fresh bool) {
	s.mu.Lock()
	s.active = slices.Clone(promos)
	if fresh {
		s.fetchedAt = s.now()
	}
	s.mu.Unlock()
}

func (s *service) exclude(promos []Promotion) []Promotion {
	kept := make([]Promotion, 0, len(promos))
	for _, p := range promos {
		if slices.Contains(s.excluded, p.Name) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
