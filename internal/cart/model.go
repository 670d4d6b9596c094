package cart

import (
	"encoding/json"
	"time"

	"ramyeon-storefront/internal/promotion"

	"github.com/shopspring/decimal"
)

const (
	KindPromotion     = "promotion"
	KindLoyaltyPoints = "loyalty_points"

	// LoyaltyPromotionID identifies the points entry among applied promotions.
	LoyaltyPromotionID = "loyalty_points"
)

var (
	TaxRate     = decimal.NewFromFloat(0.10)
	ShippingFee = decimal.NewFromInt(50)

	// MaxPointsShare caps redeemable points at half the subtotal.
	MaxPointsShare = decimal.NewFromFloat(0.5)
)

type LineItem struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Category   string          `json:"category,omitempty"`
	CategoryID string          `json:"category_id,omitempty"`
	ImageURL   string          `json:"image_url,omitempty"`
	AddedAt    time.Time       `json:"added_at"`
}

// UnmarshalJSON also reads the product_name field older carts were
// saved with.
func (li *LineItem) UnmarshalJSON(b []byte) error {
	type alias LineItem
	var aux struct {
		alias
		ProductName string `json:"product_name"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*li = LineItem(aux.alias)
	if li.Name == "" {
		li.Name = aux.ProductName
	}
	return nil
}

func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type AppliedPromotion struct {
	Promotion      promotion.Promotion `json:"promotion"`
	Kind           string              `json:"kind"`
	PointsUsed     int                 `json:"points_used,omitempty"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	AppliedAt      time.Time           `json:"applied_at"`
}

func (ap AppliedPromotion) ID() string { return ap.Promotion.ID }

type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Shipping  decimal.Decimal `json:"shipping"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// Snapshot is the cart as persisted and as returned to callers.
type Snapshot struct {
	Items             []LineItem         `json:"items"`
	AppliedPromotions []AppliedPromotion `json:"applied_promotions"`
	Totals            Totals             `json:"totals"`
}
