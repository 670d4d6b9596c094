package order

import (
	"strings"

	"ramyeon-storefront/internal/cart"
	"ramyeon-storefront/internal/product"
	"ramyeon-storefront/internal/promotion"

	"github.com/shopspring/decimal"
)

var summaries = map[Status]Summary{
	StatusPending:   {Text: "Pending", Color: "yellow"},
	StatusConfirmed: {Text: "Confirmed", Color: "blue"},
	StatusPreparing: {Text: "Preparing", Color: "orange"},
	StatusReady:     {Text: "Ready for Pickup", Color: "green"},
	StatusCompleted: {Text: "Completed", Color: "green"},
	StatusCancelled: {Text: "Cancelled", Color: "red"},
	StatusRefunded:  {Text: "Refunded", Color: "gray"},
}

// StatusSummary is the display text and colour for a status.
func StatusSummary(status Status) Summary {
	if s, ok := summaries[status]; ok {
		return s
	}
	return Summary{Text: "Unknown", Color: "gray"}
}

func (s Status) Valid() bool {
	_, ok := summaries[s]
	return ok
}

// ToPayload fills in the backend defaults: delivery type "delivery" and a
// lower-cased payment method defaulting to "cash". Notes and special
// instructions stand in for each other.
func ToPayload(req CreateRequest, pointsEarned int, discount decimal.Decimal) CreatePayload {
	deliveryType := req.DeliveryType
	if deliveryType == "" {
		deliveryType = DefaultDeliveryType
	}
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if method == "" {
		method = DefaultPaymentMethod
	}
	address := req.DeliveryAddress
	if address == nil {
		address = map[string]any{}
	}
	items := make([]Item, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		items = append(items, it)
	}

	return CreatePayload{
		CustomerID:          req.CustomerID,
		Items:               items,
		DeliveryAddress:     address,
		DeliveryType:        deliveryType,
		PaymentMethod:       method,
		PointsToRedeem:      max(req.PointsToRedeem, 0),
		Notes:               firstNonEmpty(req.Notes, req.SpecialInstructions),
		SpecialInstructions: firstNonEmpty(req.SpecialInstructions, req.Notes),
		PointsEarned:        pointsEarned,
		Discount:            discount.StringFixed(2),
	}
}

// FromCart turns cart lines into order items.
func FromCart(lines []cart.LineItem) []Item {
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, Item{
			ProductID:  l.ProductID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			Price:      l.UnitPrice,
			Category:   l.Category,
			CategoryID: l.CategoryID,
		})
	}
	return items
}

func toStockItems(items []Item) []product.StockItem {
	out := make([]product.StockItem, 0, len(items))
	for _, it := range items {
		out = append(out, product.StockItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return out
}

func toPromotionItems(items []Item) []promotion.Item {
	out := make([]promotion.Item, 0, len(items))
	for _, it := range items {
		out = append(out, promotion.Item{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   it.Quantity,
			Category:   it.Category,
			CategoryID: it.CategoryID,
		})
	}
	return out
}

func subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}
