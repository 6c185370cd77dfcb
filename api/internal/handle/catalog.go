package handle

import (
	"errors"
	"net/http"

	"agribazaar/api/internal/cart"
	"agribazaar/api/internal/catalog"
)

// NoMatches — текст для пустого результата фильтра.
const NoMatches = "No matching products found."

type catalogResp struct {
	Heading    string             `json:"heading"`
	Category   catalog.Category   `json:"category"`
	Categories []catalog.Category `json:"categories"`
	Products   []catalog.Product  `json:"products"`
	Message    string             `json:"message,omitempty"`
}

// Catalog: GET /v1/catalog?category=Crops&q=see
func (h *Handle) Catalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	q := r.URL.Query()
	cat, ok := catalog.ParseCategory(q.Get("category"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown category: "+q.Get("category"))
		return
	}
	list := catalog.Filter(catalog.Products(), cat, q.Get("q"))
	resp := catalogResp{
		Heading:    cat.Title(),
		Category:   cat,
		Categories: append([]catalog.Category{catalog.All}, catalog.Categories...),
		Products:   list,
	}
	if len(list) == 0 {
		resp.Message = NoMatches
	}
	writeJSON(w, http.StatusOK, resp)
}

type addReq struct {
	Cart    []cart.Line `json:"cart"`
	Product string      `json:"product"`
}

type cartResp struct {
	Cart    []cart.Line `json:"cart"`
	Count   int         `json:"count"`
	Total   int         `json:"total"`
	Display string      `json:"total_display"`
	Notice  string      `json:"notice,omitempty"`
}

func newCartResp(c cart.Cart) cartResp {
	return cartResp{
		Cart:    c.Lines(),
		Count:   c.Count(),
		Total:   c.Total(),
		Display: catalog.FormatPrice(c.Total()),
	}
}

// AddToCart is the reducer over HTTP: the client sends its cart and a
// product name and gets the new cart back. Nothing is stored server-side.
func (h *Handle) AddToCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req addReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	p, ok := catalog.Lookup(req.Product)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown product: "+req.Product)
		return
	}

	next, added, err := cart.Add(cart.FromLines(req.Cart), p)
	if err != nil {
		var pe *catalog.ParseError
		if errors.As(err, &pe) || errors.Is(err, cart.ErrQuantityLimit) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := newCartResp(next)
	resp.Notice = added.Confirmation()
	writeJSON(w, http.StatusOK, resp)
}
