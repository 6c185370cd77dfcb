package telegram

import (
	"agribazaar/api/internal/catalog"
)

const modeAwaitSearch = "await_search"

// browseState — фильтр каталога чата. Значения неизменяемые: каждый
// апдейт кладёт новый снимок.
type browseState struct {
	Category catalog.Category
	Term     string
}

// хелперы
func (r *Router) setMode(chatID int64, mode string) { r.mode.Store(chatID, mode) }
func (r *Router) getMode(chatID int64) string {
	if v, ok := r.mode.Load(chatID); ok {
		if s, _ := v.(string); s != "" {
			return s
		}
	}
	return ""
}
func (r *Router) clearMode(chatID int64) { r.mode.Delete(chatID) }

func (r *Router) state(chatID int64) browseState {
	if v, ok := r.browse.Load(chatID); ok {
		return *v.(*browseState)
	}
	return browseState{Category: catalog.All}
}

// setCategory меняет только категорию, строка поиска сохраняется.
func (r *Router) setCategory(chatID int64, c catalog.Category) browseState {
	st := r.state(chatID)
	st.Category = c
	r.browse.Store(chatID, &st)
	return st
}

func (r *Router) setTerm(chatID int64, term string) browseState {
	st := r.state(chatID)
	st.Term = term
	r.browse.Store(chatID, &st)
	return st
}
