package handle

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"agribazaar/api/internal/imagecodec"
)

// maxBodyBytes: base64 раздувает картинку примерно на треть.
func (h *Handle) maxBodyBytes() int64 {
	max := h.codec.MaxBytes
	if max <= 0 {
		max = imagecodec.DefaultMaxBytes
	}
	return max*4/3 + 64<<10
}

type diagnoseReq struct {
	Engine   string `json:"engine"`
	ImageB64 string `json:"image_b64"`
}

// Diagnose: POST /v1/diagnose. Failure results come back as 502 with the
// same JSON shape, so the client always renders a Result.
func (h *Handle) Diagnose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
	var req diagnoseReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.ImageB64) == "" {
		writeError(w, http.StatusBadRequest, "image_b64 is required")
		return
	}
	enc, err := h.codec.NormalizeEncoded(req.ImageB64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	client, ok := h.engs.Lookup(req.Engine)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown engine: "+req.Engine+" (available: "+strings.Join(h.engs.Names(), " | ")+")")
		return
	}

	ctx, cancel := requestContext(r, 180*time.Second)
	defer cancel()

	res := client.Diagnose(ctx, enc.Data)
	h.log.Debug("diagnose", zap.String("engine", res.Engine), zap.Stringer("kind", res.Kind), zap.String("mime", enc.MIME))
	if res.IsFailure() {
		writeJSON(w, http.StatusBadGateway, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
