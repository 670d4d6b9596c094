package cart

import (
	"context"
	"net/url"
	"testing"
	"time"

	"ramyeon-storefront/internal/loyalty"
	"ramyeon-storefront/internal/product"
	"ramyeon-storefront/internal/promotion"
	"ramyeon-storefront/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockStockChecker struct {
	mock.Mock
}

func (m *MockStockChecker) CheckStock(ctx context.Context, productID string, quantity int) (product.StockResult, error) {
	args := m.Called(ctx, productID, quantity)
	return args.Get(0).(product.StockResult), args.Error(1)
}

type promoRepo struct {
	promos []promotion.Promotion
	err    error
	calls  int
}

func (r *promoRepo) GetActive(context.Context, url.Values) ([]promotion.Promotion, error) {
	r.calls++
	return r.promos, r.err
}

// ledgerRepo only answers balance reads; every write fails so the ledger
// uses its local arithmetic.
type ledgerRepo struct {
	points int
	err    error
}

func (r *ledgerRepo) Points(context.Context, string) (int, error) { return r.points, r.err }
func (r *ledgerRepo) Award(context.Context, string, loyalty.AwardRequest) (loyalty.AwardReply, error) {
	return loyalty.AwardReply{}, r.err
}
func (r *ledgerRepo) Redeem(context.Context, string, loyalty.RedeemRequest) (loyalty.RedeemReply, error) {
	return loyalty.RedeemReply{}, r.err
}
func (r *ledgerRepo) Tier(context.Context, string) (loyalty.Tier, error) { return loyalty.Tier{}, r.err }
func (r *ledgerRepo) Tiers(context.Context) ([]loyalty.Tier, error)      { return nil, r.err }

var fixedNow = time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store     *storage.MemoryStore
	stock     *MockStockChecker
	promoRepo *promoRepo
	promos    promotion.Service
	ledger    loyalty.Service
	cart      *Manager
}

func newFixture(t *testing.T, promos ...promotion.Promotion) *fixture {
	t.Helper()
	f := &fixture{
		store:     storage.NewMemoryStore(),
		stock:     new(MockStockChecker),
		promoRepo: &promoRepo{promos: promos},
	}
	f.promos = promotion.NewService(f.promoRepo, promotion.Options{Now: func() time.Time { return fixedNow }})
	f.ledger = loyalty.NewService(&ledgerRepo{}, loyalty.Options{})
	f.cart = f.reopen(context.Background())
	return f
}

// reopen builds a second manager over the same storage.
func (f *fixture) reopen(ctx context.Context) *Manager {
	return NewManager(ctx, NewRepository(f.store), f.stock, f.promos, f.ledger, Options{Now: func() time.Time { return fixedNow }})
}

func (f *fixture) stockAvailable() {
	f.stock.On("CheckStock", mock.Anything, mock.Anything, mock.Anything).
		Return(product.StockResult{Available: true, Authoritative: true}, nil)
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func decPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func item(id, name string, price float64, qty int, categoryID string) LineItem {
	return LineItem{ProductID: id, Name: name, UnitPrice: dec(price), Quantity: qty, CategoryID: categoryID}
}

func percentOff(id string, pct float64) promotion.Promotion {
	return promotion.Promotion{ID: id, Name: "Promo " + id, Code: id, DiscountType: promotion.TypePercentage, DiscountValue: dec(pct), Status: promotion.StatusActive}
}
