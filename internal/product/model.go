package product

import (
	"encoding/json"
	"net/url"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the highest stock count still reported as low.
const LowStockThreshold = 10

type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	CategoryID   string          `json:"category_id,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	Subcategory  string          `json:"subcategory,omitempty"`
	ImageURL     string          `json:"image_url,omitempty"`
	Status       string          `json:"status,omitempty"`
}

func (p *Product) UnmarshalJSON(b []byte) error {
	type alias Product
	var aux struct {
		alias
		OID      string `json:"_id"`
		Category any    `json:"category"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = Product(aux.alias)
	if p.ID == "" {
		p.ID = aux.OID
	}
	if p.CategoryName == "" {
		if name, ok := aux.Category.(string); ok {
			p.CategoryName = name
		}
	}
	return nil
}

func (p Product) InStock() bool  { return p.Stock > 0 }
func (p Product) LowStock() bool { return p.Stock > 0 && p.Stock <= LowStockThreshold }

// Filters are listing query parameters. "category" is sent to the backend
// as category_id.
type Filters map[string]string

func (f Filters) query() url.Values {
	q := url.Values{}
	for k, v := range f {
		if v == "" {
			continue
		}
		if k == "category" {
			k = "category_id"
		}
		q.Set(k, v)
	}
	return q
}

// cacheKey is stable across map iteration order.
func (f Filters) cacheKey() string {
	return "products?" + f.query().Encode()
}

type StockItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type StockItemResult struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	Available      bool   `json:"available"`
	AvailableStock *int   `json:"available_stock,omitempty"`
}

// StockResult answers a stock check. Authoritative is false when the
// backend could not be asked and availability was assumed.
type StockResult struct {
	Available     bool              `json:"available"`
	Items         []StockItemResult `json:"items,omitempty"`
	Message       string            `json:"message,omitempty"`
	Authoritative bool              `json:"authoritative"`
}

// stockReply is the backend's /pos/stock-validation/ answer.
type stockReply struct {
	Success bool       `json:"success"`
	Error   string     `json:"error"`
	Message string     `json:"message"`
	Data    *stockData `json:"data"`
}

type stockData struct {
	Available *bool             `json:"available"`
	Items     []StockItemResult `json:"items"`
	Message   string            `json:"message"`
}
