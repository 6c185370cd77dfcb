package diagnosis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agribazaar/api/internal/util"
)

// Cache stores normalized results by image hash. Implementations return an
// error (any) on a miss.
type Cache interface {
	Find(ctx context.Context, imageHash, engine string) (Result, error)
	Upsert(ctx context.Context, imageHash, engine string, r Result) error
}

type Options struct {
	MaxAttempts int           // всего попыток, включая первую
	Backoff     time.Duration // пауза растёт линейно: attempt * Backoff
	Timeout     time.Duration // таймаут одной попытки; 0 значит без отдельного таймаута
}

func DefaultOptions() Options {
	return Options{MaxAttempts: 3, Backoff: 300 * time.Millisecond, Timeout: 60 * time.Second}
}

// Client is the diagnosis pipeline for one engine: request construction,
// bounded retry, normalization and the optional cache.
type Client struct {
	eng   Engine
	log   *zap.Logger
	opts  Options
	cache Cache
}

func NewClient(eng Engine, log *zap.Logger, opts Options) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Client{eng: eng, log: log.With(zap.String("engine", eng.Name())), opts: opts}
}

// WithCache включает кэш результатов (Failure никогда не кэшируется).
func (c *Client) WithCache(cache Cache) *Client {
	c.cache = cache
	return c
}

func (c *Client) Engine() Engine { return c.eng }

// withEngine — копия клиента с тем же кэшем и опциями, но другим движком.
func (c *Client) withEngine(eng Engine) *Client {
	cp := *c
	cp.eng = eng
	return &cp
}

// cacheEngine — ключ движка в кэше; у разных моделей свои записи.
func (c *Client) cacheEngine() string {
	if me, ok := c.eng.(ModelEngine); ok {
		return c.eng.Name() + ":" + me.Model()
	}
	return c.eng.Name()
}

// Diagnose never returns an error: every problem becomes a Failure result.
func (c *Client) Diagnose(ctx context.Context, encoded string) Result {
	reqID := uuid.NewString()
	log := c.log.With(zap.String("request_id", reqID))
	hash := util.SHA256Hex([]byte(encoded))

	if c.cache != nil {
		if r, err := c.cache.Find(ctx, hash, c.cacheEngine()); err == nil {
			log.Debug("diagnosis cache hit", zap.String("image_hash", hash))
			r.RequestID = reqID
			r.Engine = c.eng.Name()
			return r
		}
	}

	resp, err := c.identify(ctx, log, NewIdentifyRequest(encoded))
	var r Result
	if err != nil {
		log.Warn("diagnosis failed", zap.Error(err))
		r = Failure(err)
	} else {
		r = Normalize(resp)
	}
	r.RequestID = reqID
	r.Engine = c.eng.Name()
	log.Info("diagnosis done", zap.Stringer("kind", r.Kind), zap.String("name", r.Name))

	if c.cache != nil && !r.IsFailure() {
		if err := c.cache.Upsert(ctx, hash, c.cacheEngine(), r); err != nil {
			log.Warn("diagnosis cache upsert", zap.Error(err))
		}
	}
	return r
}

// identify — ретраи на случай сетевых/5xx сбоев.
func (c *Client) identify(ctx context.Context, log *zap.Logger, req IdentifyRequest) (IdentifyResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		resp, err := c.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil || !Retryable(err) || attempt == c.opts.MaxAttempts {
			break
		}
		delay := time.Duration(attempt) * c.opts.Backoff
		log.Debug("diagnosis retry", zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
		if err := sleep(ctx, delay); err != nil {
			return IdentifyResponse{}, errors.Join(lastErr, err)
		}
	}
	return IdentifyResponse{}, lastErr
}

func (c *Client) attempt(ctx context.Context, req IdentifyRequest) (IdentifyResponse, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}
	return c.eng.Identify(ctx, req)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
