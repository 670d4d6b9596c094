package cart

import (
	"ramyeon-storefront/internal/product"
	"ramyeon-storefront/internal/promotion"
)

// ToPromotionItems is the view of the cart the promotion engine prices.
func ToPromotionItems(items []LineItem) []promotion.Item {
	out := make([]promotion.Item, 0, len(items))
	for _, it := range items {
		out = append(out, promotion.Item{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Price:      it.UnitPrice,
			Quantity:   it.Quantity,
			Category:   it.Category,
			CategoryID: it.CategoryID,
		})
	}
	return out
}

func ToStockItems(items []LineItem) []product.StockItem {
	out := make([]product.StockItem, 0, len(items))
	for _, it := range items {
		out = append(out, product.StockItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
		})
	}
	return out
}

// FromProduct builds a line item for quantity units of p.
func FromProduct(p product.Product, quantity int) LineItem {
	return LineItem{
		ProductID:  p.ID,
		Name:       p.Name,
		UnitPrice:  p.Price,
		Quantity:   quantity,
		Category:   p.CategoryName,
		CategoryID: p.CategoryID,
		ImageURL:   p.ImageURL,
	}
}
