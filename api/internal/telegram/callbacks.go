package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"agribazaar/api/internal/cart"
	"agribazaar/api/internal/catalog"
)

func (r *Router) handleCallback(ctx context.Context, cb tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		r.ack(cb.ID, "")
		return
	}
	cid := cb.Message.Chat.ID
	msgID := cb.Message.MessageID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbAdd):
		r.onAdd(cid, cb.ID, strings.TrimPrefix(data, cbAdd))
	case strings.HasPrefix(data, cbCategory):
		r.ack(cb.ID, "")
		c, ok := catalog.ParseCategory(strings.TrimPrefix(data, cbCategory))
		if !ok {
			return
		}
		r.showCatalog(cid, msgID, r.setCategory(cid, c))
	case data == cbCart:
		r.ack(cb.ID, "")
		r.showCart(cid)
	case data == cbSearch:
		r.ack(cb.ID, "")
		r.setMode(cid, modeAwaitSearch)
		r.send(cid, "Type a product name to search.")
	case data == cbClear:
		r.ack(cb.ID, "")
		r.showCatalog(cid, msgID, r.setTerm(cid, ""))
	default:
		r.ack(cb.ID, "")
	}
}

// onAdd: подтверждение показываем всплывающим уведомлением.
func (r *Router) onAdd(chatID int64, cbID, name string) {
	p, ok := catalog.Lookup(name)
	if !ok {
		r.ack(cbID, "Product is no longer available.")
		return
	}
	_, added, err := r.Carts.Add(chatID, p)
	if errors.Is(err, cart.ErrQuantityLimit) {
		r.ack(cbID, fmt.Sprintf("❌ You can add at most %d of %s.", cart.MaxQuantity, p.Name))
		return
	}
	if err != nil {
		var pe *catalog.ParseError
		if errors.As(err, &pe) {
			r.Log.Warn("cart add: bad price", zap.Int64("chat_id", chatID), zap.String("product", p.Name), zap.String("price", pe.Input))
		}
		r.ack(cbID, "❌ Could not add "+p.Name+" to cart.")
		return
	}
	r.ack(cbID, added.Confirmation())
}

func (r *Router) ack(cbID, text string) {
	if cbID == "" {
		return
	}
	if _, err := r.Bot.Request(tgbotapi.NewCallback(cbID, text)); err != nil {
		r.Log.Debug("callback ack", zap.Error(err))
	}
}
