package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"agribazaar/api/internal/diagnosis"
	"agribazaar/api/internal/imagecodec"
)

type Handle struct {
	engs  *diagnosis.Manager
	codec imagecodec.Codec
	log   *zap.Logger
}

func New(engs *diagnosis.Manager, codec imagecodec.Codec, log *zap.Logger) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{
		engs:  engs,
		codec: codec,
		log:   log,
	}
}

// Register вешает эндпоинты API на mux.
func (h *Handle) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/catalog", h.Catalog)
	mux.HandleFunc("/v1/cart/add", h.AddToCart)
	mux.HandleFunc("/v1/diagnose", h.Diagnose)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// requestContext: дедлайн из X-Request-Timeout или ?timeoutSec, в секундах.
func requestContext(r *http.Request, def time.Duration) (context.Context, context.CancelFunc) {
	deadline := def
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return context.WithTimeout(r.Context(), deadline)
}
