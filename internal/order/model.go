package order

import (
	"encoding/json"
	"time"

	"ramyeon-storefront/internal/promotion"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

const (
	DefaultDeliveryType  = "delivery"
	DefaultPaymentMethod = "cash"
	DefaultPageSize      = 50
	RecentLimit          = 5
)

// Item is an order line. Category and CategoryID only feed promotion
// pricing and are not sent to the backend.
type Item struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"product_name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Category   string          `json:"-"`
	CategoryID string          `json:"-"`
}

func (i *Item) UnmarshalJSON(b []byte) error {
	type alias Item
	var aux struct {
		alias
		ItemName string `json:"name"`
		ID       string `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*i = Item(aux.alias)
	if i.Name == "" {
		i.Name = aux.ItemName
	}
	if i.ProductID == "" {
		i.ProductID = aux.ID
	}
	return nil
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID                 string          `json:"id"`
	OrderNumber        string          `json:"order_number,omitempty"`
	CustomerID         string          `json:"customer_id,omitempty"`
	Items              []Item          `json:"items"`
	Status             Status          `json:"status"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Discount           decimal.Decimal `json:"discount"`
	Total              decimal.Decimal `json:"total_amount"`
	PointsEarned       int             `json:"points_earned"`
	PointsRedeemed     int             `json:"points_redeemed,omitempty"`
	PaymentMethod      string          `json:"payment_method,omitempty"`
	DeliveryType       string          `json:"delivery_type,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// UnmarshalJSON accepts the backend's id aliases and its loose timestamp
// formats.
func (o *Order) UnmarshalJSON(b []byte) error {
	type alias Order
	var aux struct {
		alias
		OID       string         `json:"_id"`
		OrderID   string         `json:"order_id"`
		CreatedAt promotion.Date `json:"created_at"`
		UpdatedAt promotion.Date `json:"updated_at"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*o = Order(aux.alias)
	if o.ID == "" {
		o.ID = aux.OID
	}
	if o.ID == "" {
		o.ID = aux.OrderID
	}
	o.CreatedAt = aux.CreatedAt.Time
	o.UpdatedAt = aux.UpdatedAt.Time
	return nil
}

// CreateRequest is what checkout submits. Discount is applied on top of
// any listed Promotions.
type CreateRequest struct {
	CustomerID          string
	Items               []Item
	DeliveryAddress     map[string]any
	DeliveryType        string
	PaymentMethod       string
	PointsToRedeem      int
	Notes               string
	SpecialInstructions string
	Promotions          []string
	Total               decimal.Decimal
	Discount            decimal.Decimal
}

// CreatePayload is the body of POST /online-orders/.
type CreatePayload struct {
	CustomerID          string         `json:"customer_id"`
	Items               []Item         `json:"items"`
	DeliveryAddress     map[string]any `json:"delivery_address"`
	DeliveryType        string         `json:"delivery_type"`
	PaymentMethod       string         `json:"payment_method"`
	PointsToRedeem      int            `json:"points_to_redeem"`
	Notes               string         `json:"notes"`
	SpecialInstructions string         `json:"special_instructions"`
	PointsEarned        int            `json:"points_earned"`
	Discount            string         `json:"discount"`
}

type UpdateRequest struct {
	Status Status `json:"status"`
	Notes  string `json:"notes"`
}

type cancelPayload struct {
	Reason string `json:"reason"`
}

// envelope is the backend's {success, data|error} wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// StatusInfo is the backend's view of an order's progress.
type StatusInfo struct {
	OrderID   string    `json:"order_id"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes,omitempty"`
}

func (s *StatusInfo) UnmarshalJSON(b []byte) error {
	type alias StatusInfo
	var aux struct {
		alias
		ID        string         `json:"id"`
		UpdatedAt promotion.Date `json:"updated_at"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*s = StatusInfo(aux.alias)
	if s.OrderID == "" {
		s.OrderID = aux.ID
	}
	s.UpdatedAt = aux.UpdatedAt.Time
	return nil
}

type Summary struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// Filters narrow a customer's order list. Limit and Offset default to a
// first page of DefaultPageSize.
type Filters struct {
	Status Status `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// LocalOrders is the mirrored order list read when the backend is not
// consulted.
type LocalOrders struct {
	Orders        []Order `json:"orders"`
	Authoritative bool    `json:"authoritative"`
}
