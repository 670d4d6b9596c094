package loyalty

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"ramyeon-storefront/internal/apperr"
	"ramyeon-storefront/internal/logger"
	"ramyeon-storefront/internal/metrics"
	"ramyeon-storefront/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	Balance() int
	SetBalance(points int)
	History() []Transaction

	EarnPoints(amount decimal.Decimal) int
	PointsDiscount(points int) PointsDiscount
	ValidateRedemption(ctx context.Context, customerID string, points int) (Redemption, error)

	Award(ctx context.Context, orderAmount decimal.Decimal, customerID, orderID, description string) (AwardResult, error)
	Redeem(ctx context.Context, points int, customerID, orderID string) (RedeemResult, error)

	CurrentTier(ctx context.Context, customerID string) (Tier, bool)
	Tiers(ctx context.Context) ([]Tier, error)

	Clear()
	Refresh(ctx context.Context, customerID string) (int, error)
}

type Options struct {
	Metrics *metrics.Metrics
	Now     func() time.Time
}

type service struct {
	repo    Repository
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	balance int
	history []Transaction
}

func NewService(repo Repository, opts Options) Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, metrics: opts.Metrics, now: now}
}

func (s *service) Balance() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// SetBalance takes the balance from the customer profile. Negative values
// are stored as 0.
func (s *service) SetBalance(points int) {
	s.mu.Lock()
	s.balance = max(points, 0)
	s.mu.Unlock()
}

// History is newest first.
func (s *service) History() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// EarnPoints is floor(amount × 0.20).
func (s *service) EarnPoints(amount decimal.Decimal) int {
	if !amount.IsPositive() {
		return 0
	}
	return int(amount.Mul(EarnRate).Floor().IntPart())
}

func (s *service) PointsDiscount(points int) PointsDiscount {
	points = max(points, 0)
	discount := decimal.NewFromInt(int64(points)).Div(decimal.NewFromInt(PointsPerPeso))
	return PointsDiscount{
		PointsUsed:      points,
		DiscountAmount:  money.Round2(money.Min(discount, MaxRedemptionDiscount)),
		MaxDiscount:     MaxRedemptionDiscount,
		PointsRemaining: max(s.Balance()-points, 0),
	}
}

// ValidateRedemption refreshes the balance when a customer id is given
// and checks points against it.
func (s *service) ValidateRedemption(ctx context.Context, customerID string, points int) (Redemption, error) {
	log := logger.Layer(ctx, "service", "ValidateRedemption", zap.Int("points", points))

	authoritative := false
	if customerID != "" {
		balance, err := s.repo.Points(ctx, customerID)
		if err != nil {
			log.Warn("failed to refresh loyalty balance, using local balance", zap.Error(err))
			s.metrics.Fallback("loyalty_balance")
		} else {
			s.SetBalance(balance)
			authoritative = true
		}
	}

	available := s.Balance()
	switch {
	case points <= 0:
		return Redemption{}, apperr.Validation(ErrInvalidPoints.Error())
	case points < MinRedemptionPoints:
		return Redemption{}, apperr.Validation(ErrBelowMinimum.Error())
	case points > available:
		return Redemption{}, apperr.Validation(ErrInsufficientPoints.Error())
	}

	return Redemption{
		Points:         points,
		Available:      available,
		DiscountAmount: s.PointsDiscount(points).DiscountAmount,
		Authoritative:  authoritative,
	}, nil
}

// Award credits points for a completed order. The backend computes the
// points; when it cannot be reached the 20% rule is applied locally and the
// result is marked non-authoritative.
func (s *service) Award(ctx context.Context, orderAmount decimal.Decimal, customerID, orderID, description string) (AwardResult, error) {
	log := logger.Layer(ctx, "service", "Award", zap.String("customer_id", customerID), zap.String("order_id", orderID))
	log.Info("Award started", zap.String("order_amount", orderAmount.String()))

	if strings.TrimSpace(customerID) == "" {
		return AwardResult{}, apperr.Validation(ErrCustomerRequired.Error())
	}
	if orderAmount.IsNegative() {
		return AwardResult{}, apperr.Validation(ErrNegativeAmount.Error())
	}

	reply, err := s.repo.Award(ctx, customerID, AwardRequest{OrderAmount: orderAmount, OrderID: orderID, Description: description})
	if err != nil {
		log.Warn("backend award failed, awarding locally", zap.Error(err))
		s.metrics.Fallback("loyalty_award")

		points := s.EarnPoints(orderAmount)
		tx := s.record(TypeEarned, points, firstNonEmpty(description, reasonOrderLocal), func(b int) int { return b + points })
		return AwardResult{PointsAwarded: points, NewBalance: tx.BalanceAfter, Transaction: tx}, nil
	}

	tx := s.record(TypeEarned, reply.PointsAwarded, firstNonEmpty(description, reasonOrder), func(b int) int {
		if reply.TotalPoints != nil {
			return *reply.TotalPoints
		}
		return b + reply.PointsAwarded
	})

	log.Info("Award success", zap.Int("points_awarded", reply.PointsAwarded), zap.Int("balance", tx.BalanceAfter))
	return AwardResult{PointsAwarded: reply.PointsAwarded, NewBalance: tx.BalanceAfter, Transaction: tx, Authoritative: true}, nil
}

// Redeem spends points. Requests above the local balance are rejected
// without calling the backend; a backend failure subtracts locally.
func (s *service) Redeem(ctx context.Context, points int, customerID, orderID string) (RedeemResult, error) {
	log := logger.Layer(ctx, "service", "Redeem", zap.String("customer_id", customerID), zap.Int("points", points))

	if points <= 0 {
		return RedeemResult{}, apperr.Validation(ErrInvalidPoints.Error())
	}
	if points > s.Balance() {
		return RedeemResult{}, apperr.Validation(ErrInsufficientPoints.Error())
	}
	if strings.TrimSpace(customerID) == "" {
		return RedeemResult{}, apperr.Validation(ErrCustomerRequired.Error())
	}

	remaining := func(b int) int { return max(b-points, 0) }

	reply, err := s.repo.Redeem(ctx, customerID, RedeemRequest{Points: points, OrderID: orderID})
	if err != nil {
		log.Warn("backend redeem failed, redeeming locally", zap.Error(err))
		s.metrics.Fallback("loyalty_redeem")

		tx := s.record(TypeRedeemed, points, reasonRedeemed, remaining)
		return RedeemResult{PointsRedeemed: points, NewBalance: tx.BalanceAfter, Transaction: tx}, nil
	}

	redeemed := reply.PointsRedeemed
	if redeemed == 0 {
		redeemed = points
	}
	tx := s.record(TypeRedeemed, redeemed, reasonRedeemed, func(b int) int {
		if reply.NewBalance != nil {
			return max(*reply.NewBalance, 0)
		}
		return remaining(b)
	})

	log.Info("Redeem success", zap.Int("balance", tx.BalanceAfter))
	return RedeemResult{PointsRedeemed: redeemed, NewBalance: tx.BalanceAfter, Transaction: tx, Authoritative: true}, nil
}

// CurrentTier reports the backend tier and true, or DefaultTier and false.
func (s *service) CurrentTier(ctx context.Context, customerID string) (Tier, bool) {
	if customerID == "" {
		return DefaultTier, false
	}
	tier, err := s.repo.Tier(ctx, customerID)
	if err != nil || tier.Name == "" {
		logger.Layer(ctx, "service", "CurrentTier").Debug("using default tier", zap.Error(err))
		return DefaultTier, false
	}
	return tier, true
}

func (s *service) Tiers(ctx context.Context) ([]Tier, error) {
	tiers, err := s.repo.Tiers(ctx)
	if err != nil {
		logger.Layer(ctx, "service", "Tiers").Error("failed to fetch loyalty tiers", zap.Error(err))
		return nil, err
	}
	return tiers, nil
}

func (s *service) Clear() {
	s.mu.Lock()
	s.balance = 0
	s.history = nil
	s.mu.Unlock()
}

// Refresh reloads the balance from the customer profile and drops the local
// history. On failure the ledger is left as it was.
func (s *service) Refresh(ctx context.Context, customerID string) (int, error) {
	if customerID == "" {
		return 0, apperr.Validation(ErrCustomerRequired.Error())
	}
	balance, err := s.repo.Points(ctx, customerID)
	if err != nil {
		logger.Layer(ctx, "service", "Refresh").Error("failed to refresh loyalty balance", zap.Error(err))
		return s.Balance(), err
	}
	s.Clear()
	s.SetBalance(balance)
	return s.Balance(), nil
}

// record applies next to the balance and prepends the transaction.
func (s *service) record(kind string, points int, reason string, next func(balance int) int) Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balance = max(next(s.balance), 0)
	tx := Transaction{
		ID:           uuid.NewString(),
		Type:         kind,
		Points:       points,
		Reason:       reason,
		Timestamp:    s.now(),
		BalanceAfter: s.balance,
	}
	s.history = append([]Transaction{tx}, s.history...)
	return tx
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
