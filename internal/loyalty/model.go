package loyalty

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PointsPerPeso       = 4
	MinRedemptionPoints = 40

	TypeEarned   = "earned"
	TypeRedeemed = "redeemed"
)

var (
	EarnRate              = decimal.NewFromFloat(0.20)
	MaxRedemptionDiscount = decimal.NewFromInt(20)
)

// DefaultTier is reported whenever the backend has no tier for the
// customer. It is not derived from the balance.
var DefaultTier = Tier{Name: "Bronze", MinPoints: 0, MaxPoints: 499, Multiplier: decimal.NewFromFloat(1.0)}

type Transaction struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Points       int       `json:"points"`
	Reason       string    `json:"reason"`
	Timestamp    time.Time `json:"timestamp"`
	BalanceAfter int       `json:"balance_after"`
}

type Tier struct {
	Name       string          `json:"name"`
	Level      int             `json:"level,omitempty"`
	MinPoints  int             `json:"min_points"`
	MaxPoints  int             `json:"max_points"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Benefits   []string        `json:"benefits,omitempty"`
}

type PointsDiscount struct {
	PointsUsed      int             `json:"points_used"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	MaxDiscount     decimal.Decimal `json:"max_discount"`
	PointsRemaining int             `json:"points_remaining"`
}

// Redemption is an accepted redemption request. Authoritative is false when
// the balance it was checked against could not be refreshed.
type Redemption struct {
	Points         int             `json:"points"`
	Available      int             `json:"available_points"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Authoritative  bool            `json:"authoritative"`
}

type AwardResult struct {
	PointsAwarded int         `json:"points_awarded"`
	NewBalance    int         `json:"new_balance"`
	Transaction   Transaction `json:"transaction"`
	Authoritative bool        `json:"authoritative"`
}

type RedeemResult struct {
	PointsRedeemed int         `json:"points_redeemed"`
	NewBalance     int         `json:"new_balance"`
	Transaction    Transaction `json:"transaction"`
	Authoritative  bool        `json:"authoritative"`
}

type AwardRequest struct {
	OrderAmount decimal.Decimal `json:"order_amount"`
	OrderID     string          `json:"order_id,omitempty"`
	Description string          `json:"description,omitempty"`
}

type RedeemRequest struct {
	Points  int    `json:"points"`
	OrderID string `json:"order_id,omitempty"`
}

// AwardReply and RedeemReply leave totals nil when the backend omits them.
type AwardReply struct {
	PointsAwarded int  `json:"points_awarded"`
	TotalPoints   *int `json:"total_points"`
}

type RedeemReply struct {
	PointsRedeemed int  `json:"points_redeemed"`
	NewBalance     *int `json:"new_balance"`
}

type customerPoints struct {
	LoyaltyPoints int `json:"loyalty_points"`
}
