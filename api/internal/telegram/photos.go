package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"agribazaar/api/internal/diagnosis"
	"agribazaar/api/internal/imagecodec"
)

const (
	busyText      = "⏳ Still diagnosing the previous photo, please wait."
	cancelledText = "Diagnosis cancelled."
)

func isImageDocument(d *tgbotapi.Document) bool {
	return d != nil && strings.HasPrefix(d.MimeType, "image/")
}

// acceptPhoto: новое фото сбрасывает прошлый диагноз и запускает новый.
// Пока запрос в полёте, следующие фото отклоняются.
func (r *Router) acceptPhoto(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	log := r.Log.With(zap.Int64("chat_id", cid))

	sess := r.Sessions.Get(cid)
	if sess.Phase() == diagnosis.PhasePending {
		r.send(cid, busyText)
		return
	}

	var fileID string
	if len(msg.Photo) > 0 {
		// берём самое большое превью
		fileID = msg.Photo[len(msg.Photo)-1].FileID
	} else {
		fileID = msg.Document.FileID
	}
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		log.Warn("get file", zap.Error(err))
		r.send(cid, "Could not get the photo, please try again.")
		return
	}
	img, err := r.download(ctx, url)
	if err != nil {
		log.Warn("download photo", zap.Error(err))
		r.send(cid, "Could not download the photo, please try again.")
		return
	}
	enc, err := r.Codec.EncodeBytes(img)
	if err != nil {
		var re *imagecodec.ReadError
		if errors.As(err, &re) {
			log.Info("unreadable image", zap.Error(err))
		}
		r.send(cid, "Could not read the image: "+err.Error())
		return
	}

	sess.Reset()
	client := r.Engines.Get(cid)
	pending := r.send(cid, "🔍 Diagnosing…")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		res, err := sess.Submit(ctx, client, enc.Data)
		switch {
		case errors.Is(err, diagnosis.ErrBusy):
			r.edit(cid, pending.MessageID, busyText, nil)
			return
		case errors.Is(err, diagnosis.ErrDiscarded), errors.Is(err, diagnosis.ErrClosed):
			// сессию сбросили или закрыли, результат уже никому не нужен
			log.Debug("diagnosis result dropped", zap.Error(err))
			if sess.Phase() != diagnosis.PhaseClosed {
				r.edit(cid, pending.MessageID, cancelledText, nil)
			}
			return
		}
		if res.IsFailure() {
			log.Warn("diagnosis failure", zap.String("reason", res.Reason), zap.String("request_id", res.RequestID))
		}
		r.edit(cid, pending.MessageID, formatDiagnosis(res), makeInfoKeyboard(res.InfoURL))
	}()
}

func (r *Router) download(ctx context.Context, url string) ([]byte, error) {
	if r.Download != nil {
		return r.Download(ctx, url)
	}
	return download(ctx, url)
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
