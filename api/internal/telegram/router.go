package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"agribazaar/api/internal/cart"
	"agribazaar/api/internal/diagnosis"
	"agribazaar/api/internal/imagecodec"
)

// Bot — то, что Router использует из *tgbotapi.BotAPI.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Router struct {
	Bot      Bot
	Engines  *diagnosis.Manager
	Sessions *diagnosis.Sessions
	Carts    *cart.Slots
	Codec    imagecodec.Codec
	Log      *zap.Logger

	// Download скачивает файл Telegram; если nil, обычный HTTP GET.
	Download func(ctx context.Context, url string) ([]byte, error)

	browse sync.Map // chatID -> *browseState
	mode   sync.Map // chatID -> string: "", "await_search"
	wg     sync.WaitGroup
}

func NewRouter(bot Bot, engines *diagnosis.Manager, codec imagecodec.Codec, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		Bot:      bot,
		Engines:  engines,
		Sessions: &diagnosis.Sessions{},
		Carts:    &cart.Slots{},
		Codec:    codec,
		Log:      log,
	}
}

// Wait blocks until all running diagnoses have delivered their results.
func (r *Router) Wait() { r.wg.Wait() }

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	// callback-кнопки
	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, *upd.CallbackQuery)
		return
	}
	if upd.Message == nil || upd.Message.Chat == nil {
		return
	}
	msg := upd.Message
	cid := msg.Chat.ID

	if msg.IsCommand() {
		r.HandleCommand(ctx, msg)
		return
	}

	// фото или картинка файлом
	if len(msg.Photo) > 0 || isImageDocument(msg.Document) {
		r.acceptPhoto(ctx, msg)
		return
	}

	txt := strings.TrimSpace(msg.Text)
	if txt == "" {
		return
	}
	if r.getMode(cid) == modeAwaitSearch {
		r.clearMode(cid)
		r.showCatalog(cid, 0, r.setTerm(cid, txt))
		return
	}
	r.send(cid, "Send /catalog to browse products or a photo of a plant to diagnose it.")
}

func (r *Router) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		r.send(cid, startText)
	case "health":
		r.send(cid, "✅ OK, engine: "+r.Engines.Get(cid).Engine().Name())
	case "catalog":
		st := r.state(cid)
		if args != "" {
			c, ok := parseCategoryArg(args)
			if !ok {
				r.send(cid, "Unknown category. Available: "+categoryList())
				return
			}
			st = r.setCategory(cid, c)
		}
		r.showCatalog(cid, 0, st)
	case "search":
		if args == "" {
			r.setMode(cid, modeAwaitSearch)
			r.send(cid, "Type a product name to search.")
			return
		}
		r.showCatalog(cid, 0, r.setTerm(cid, args))
	case "cart":
		r.showCart(cid)
	case "engine":
		r.handleEngineCommand(cid, args)
	case "reset":
		r.Sessions.Get(cid).Reset()
		r.send(cid, "Diagnosis cleared. Send a new photo of your crop.")
	case "stop":
		r.Sessions.Close(cid)
		r.Carts.Drop(cid)
		r.browse.Delete(cid)
		r.clearMode(cid)
		r.send(cid, "Session closed. Send /start to begin again.")
	default:
		r.send(cid, "Unknown command. Try /help")
	}
}

// handleEngineCommand переключает движок диагностики для чата.
// Форматы:
//
//	/engine
//	/engine plantid
//	/engine gemini [model]
func (r *Router) handleEngineCommand(chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		r.send(chatID, "Current engine: "+engineLabel(r.Engines.Get(chatID).Engine())+
			"\nUsage: /engine {"+strings.Join(r.Engines.Names(), "|")+"} [model]")
		return
	}
	model := ""
	if len(fields) > 1 {
		model = fields[1]
	}
	c, err := r.Engines.SetModel(chatID, fields[0], model)
	if err != nil {
		r.send(chatID, "❌ "+err.Error())
		return
	}
	r.send(chatID, "✅ Engine: "+engineLabel(c.Engine()))
}

func engineLabel(e diagnosis.Engine) string {
	if me, ok := e.(diagnosis.ModelEngine); ok {
		return fmt.Sprintf("%s (%s)", e.Name(), me.Model())
	}
	return e.Name()
}

func (r *Router) send(chatID int64, text string) tgbotapi.Message {
	m, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		r.Log.Warn("telegram send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return m
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) tgbotapi.Message {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	m, err := r.Bot.Send(msg)
	if err != nil {
		r.Log.Warn("telegram send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return m
}

// edit заменяет текст сообщения; без msgID отправляет новое.
func (r *Router) edit(chatID int64, msgID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if msgID == 0 {
		if kb != nil {
			r.sendWithKeyboard(chatID, text, *kb)
		} else {
			r.send(chatID, text)
		}
		return
	}
	e := tgbotapi.NewEditMessageText(chatID, msgID, text)
	e.ReplyMarkup = kb
	if _, err := r.Bot.Send(e); err != nil {
		r.Log.Warn("telegram edit", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

const startText = `🌾 Welcome to AgriBazaar!
Browse farm supplies and check your crops.

/catalog [category]: products
/search <name>: find a product
/cart: your cart
Send a photo of a plant and Crop Doctor will diagnose it.
/engine: diagnosis engine
/reset: clear diagnosis
/stop: end session`
