package telegram

import (
	"strings"

	"agribazaar/api/internal/catalog"
)

func parseCategoryArg(s string) (catalog.Category, bool) {
	return catalog.ParseCategory(s)
}

func categoryList() string {
	names := []string{string(catalog.All)}
	for _, c := range catalog.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// showCatalog рисует список; при msgID != 0 редактируем сообщение с кнопками.
func (r *Router) showCatalog(chatID int64, msgID int, st browseState) {
	list := catalog.Filter(catalog.Products(), st.Category, st.Term)
	kb := makeCatalogKeyboard(st, list)
	r.edit(chatID, msgID, formatCatalog(st, list), &kb)
}

func (r *Router) showCart(chatID int64) {
	r.send(chatID, formatCart(r.Carts.Get(chatID)))
}
