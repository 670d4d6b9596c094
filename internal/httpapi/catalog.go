package httpapi

import (
	"net/http"

	"ramyeon-storefront/internal/product"
	"ramyeon-storefront/internal/promotion"
)

// filters copies single-valued query parameters.
func filters(r *http.Request, skip ...string) map[string]string {
	out := map[string]string{}
	for key, values := range r.URL.Query() {
		if len(values) == 0 || values[0] == "" {
			continue
		}
		skipped := false
		for _, s := range skip {
			if key == s {
				skipped = true
				break
			}
		}
		if !skipped {
			out[key] = values[0]
		}
	}
	return out
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.GetProducts(r.Context(), product.Filters(filters(r)))
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, products)
}

func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, p)
}

// listCategories answers the full hierarchy with ?tree=true.
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	var fetch = h.Categories.GetCategories
	if r.URL.Query().Get("tree") == "true" {
		fetch = h.Categories.Hierarchy
	}
	categories, err := fetch(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, categories)
}

func (h *Handler) listSubcategories(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Categories.GetSubcategories(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, subs)
}

// listPromotions refreshes the active set unless a search query is given.
func (h *Handler) listPromotions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := promotion.Filters(filters(r, "q"))

	var (
		promos []promotion.Promotion
		err    error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		promos, err = h.Promotions.Search(ctx, q, f)
	} else {
		promos, err = h.Promotions.FetchActive(ctx, f)
	}
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, promos)
}
