package order

import (
	"encoding/json"
	"testing"

	"ramyeon-storefront/internal/cart"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToPayload_Defaults(t *testing.T) {
	p := ToPayload(CreateRequest{
		CustomerID:     "cust1",
		Items:          []Item{{ProductID: "p1", Quantity: 0, Price: decimal.NewFromInt(85)}},
		PointsToRedeem: -5,
	}, 17, decimal.NewFromFloat(12.5))

	assert.Equal(t, DefaultDeliveryType, p.DeliveryType)
	assert.Equal(t, DefaultPaymentMethod, p.PaymentMethod)
	assert.NotNil(t, p.DeliveryAddress)
	assert.Equal(t, 1, p.Items[0].Quantity)
	assert.Equal(t, 0, p.PointsToRedeem)
	assert.Equal(t, 17, p.PointsEarned)
	assert.Equal(t, "12.50", p.Discount)
	assert.Empty(t, p.Notes)
}

func TestToPayload_Overrides(t *testing.T) {
	p := ToPayload(CreateRequest{
		DeliveryType:        "pickup",
		PaymentMethod:       " Maya ",
		SpecialInstructions: "no onions",
		DeliveryAddress:     map[string]any{"city": "Cebu"},
	}, 0, decimal.Zero)

	assert.Equal(t, "pickup", p.DeliveryType)
	assert.Equal(t, "maya", p.PaymentMethod)
	assert.Equal(t, "no onions", p.Notes)
	assert.Equal(t, "no onions", p.SpecialInstructions)
	assert.Equal(t, "Cebu", p.DeliveryAddress["city"])
}

func TestFromCart(t *testing.T) {
	items := FromCart([]cart.LineItem{
		{ProductID: "p1", Name: "Shin Ramyun", UnitPrice: decimal.NewFromInt(85), Quantity: 3, Category: "noodles", CategoryID: "cat1"},
	})

	assert.Equal(t, []Item{{ProductID: "p1", Name: "Shin Ramyun", Quantity: 3, Price: decimal.NewFromInt(85), Category: "noodles", CategoryID: "cat1"}}, items)
	assert.Equal(t, "255", items[0].LineTotal().String())

	promoItems := toPromotionItems(items)
	assert.Equal(t, "noodles", promoItems[0].Category)
	assert.Equal(t, "cat1", promoItems[0].CategoryID)
}

func TestItem_CategoryNotSerialized(t *testing.T) {
	raw, err := json.Marshal(Item{ProductID: "p1", Quantity: 1, Price: decimal.NewFromInt(85), Category: "noodles", CategoryID: "cat1"})
	assert.NoError(t, err)
	assert.NotContains(t, string(raw), "noodles")
	assert.NotContains(t, string(raw), "cat1")
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusRefunded.Valid())
	assert.False(t, Status("shipped").Valid())
}
