package plantid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agribazaar/api/internal/diagnosis"
)

const DefaultURL = "https://api.plant.id/v2/identify"

// Engine вызывает Plant.id. Ключ приходит только из конфигурации.
type Engine struct {
	APIKey string
	URL    string
	httpc  *http.Client
}

func New(key, url string) *Engine {
	if strings.TrimSpace(url) == "" {
		url = DefaultURL
	}
	return &Engine{
		APIKey: strings.TrimSpace(key),
		URL:    url,
		httpc:  &http.Client{Timeout: 60 * time.Second},
	}
}

// WithHTTPClient подменяет транспорт (тесты, прокси).
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	e.httpc = c
	return e
}

func (e *Engine) Name() string { return "plantid" }

func (e *Engine) Identify(ctx context.Context, in diagnosis.IdentifyRequest) (diagnosis.IdentifyResponse, error) {
	if e.APIKey == "" {
		return diagnosis.IdentifyResponse{}, diagnosis.ErrNoCredential
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return diagnosis.IdentifyResponse{}, fmt.Errorf("plantid: %w: encode request: %v", diagnosis.ErrPermanent, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(payload))
	if err != nil {
		return diagnosis.IdentifyResponse{}, fmt.Errorf("plantid: %w: %v", diagnosis.ErrPermanent, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return diagnosis.IdentifyResponse{}, fmt.Errorf("plantid: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return diagnosis.IdentifyResponse{}, &diagnosis.StatusError{
			Engine: e.Name(),
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(x)),
		}
	}

	var out diagnosis.IdentifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return diagnosis.IdentifyResponse{}, fmt.Errorf("plantid: %w: %v", diagnosis.ErrMalformedResponse, err)
	}
	return out, nil
}
