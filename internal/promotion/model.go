package promotion

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypePercentage = "percentage"
	TypeFixed      = "fixed"
	TypeNone       = "none"

	StatusActive = "active"
)

type Promotion struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Code                 string           `json:"code,omitempty"`
	DiscountType         string           `json:"discount_type"`
	DiscountValue        decimal.Decimal  `json:"discount_value"`
	MaxDiscount          *decimal.Decimal `json:"max_discount,omitempty"`
	MinimumOrder         *decimal.Decimal `json:"minimum_order,omitempty"`
	ApplicableCategories []string         `json:"applicable_categories,omitempty"`
	StartDate            Date             `json:"start_date"`
	EndDate              Date             `json:"end_date"`
	Status               string           `json:"status"`
}

func (p *Promotion) UnmarshalJSON(b []byte) error {
	type alias Promotion
	var aux struct {
		alias
		OID           string `json:"_id"`
		PromotionID   string `json:"promotion_id"`
		PromotionName string `json:"promotion_name"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = Promotion(aux.alias)
	if p.ID == "" {
		p.ID = aux.OID
	}
	if p.ID == "" {
		p.ID = aux.PromotionID
	}
	if p.Name == "" {
		p.Name = aux.PromotionName
	}
	return nil
}

// Matches reports whether key is the promotion's id, code or name.
func (p Promotion) Matches(key string) bool {
	return key != "" && (p.ID == key || p.Code == key || p.Name == key)
}

func (p Promotion) isZero() bool {
	return p.ID == "" && p.Name == "" && p.Code == ""
}

// Date is a promotion boundary. The zero value means unbounded.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func NewDate(t time.Time) Date { return Date{Time: t} }

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*d = Date{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("promotion: unrecognised date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}

// Item is the view of a cart line the engine prices against.
type Item struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Category   string          `json:"category,omitempty"`
	CategoryID string          `json:"category_id,omitempty"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func Subtotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

type Applicability struct {
	Applicable bool   `json:"applicable"`
	Reason     string `json:"reason"`
}

type Discount struct {
	Amount             decimal.Decimal `json:"amount"`
	Percentage         decimal.Decimal `json:"percentage"`
	Type               string          `json:"type"`
	OriginalSubtotal   decimal.Decimal `json:"original_subtotal"`
	DiscountedSubtotal decimal.Decimal `json:"discounted_subtotal"`
}

// Filters are extra query parameters for the active-promotions listing.
type Filters map[string]string

func (f Filters) query() url.Values {
	q := url.Values{}
	for k, v := range f {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func (f Filters) cacheKey() string {
	return "promotions?" + f.query().Encode()
}
