package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"agribazaar/api/internal/catalog"
)

const (
	cbCategory = "cat:"
	cbAdd      = "add:"
	cbCart     = "cart"
	cbSearch   = "search"
	cbClear    = "clear"
)

// Клавиатура каталога: категории, кнопка "Add" на каждый товар, корзина/поиск.
func makeCatalogKeyboard(st browseState, products []catalog.Product) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	cats := append([]catalog.Category{catalog.All}, catalog.Categories...)
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range cats {
		label := string(c)
		if c == st.Category || (st.Category == "" && c == catalog.All) {
			label = "• " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cbCategory+string(c)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	for _, p := range products {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Add "+p.Name, cbAdd+p.Name),
		))
	}

	last := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("🔍 Search", cbSearch),
		tgbotapi.NewInlineKeyboardButtonData("🧺 View cart", cbCart),
	}
	if st.Term != "" {
		last = append(last, tgbotapi.NewInlineKeyboardButtonData("✖ Clear search", cbClear))
	}
	rows = append(rows, last)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Кнопка "More Info" под карточкой диагноза.
func makeInfoKeyboard(url string) *tgbotapi.InlineKeyboardMarkup {
	if url == "" {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("More Info", url)),
	)
	return &kb
}
