package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrBusy — в сессии уже есть запрос в полёте.
	ErrBusy = errors.New("diagnosis: request already pending")
	// ErrClosed — сессия закрыта, новые запросы не принимаются.
	ErrClosed = errors.New("diagnosis: session closed")
	// ErrDiscarded is returned with a result that arrived after the session
	// was reset or closed; the result was not applied.
	ErrDiscarded = errors.New("diagnosis: stale result discarded")
	// ErrMalformedResponse — тело ответа не разбирается.
	ErrMalformedResponse = errors.New("diagnosis: malformed response")
	// ErrNoCredential — движок не сконфигурирован.
	ErrNoCredential = errors.New("diagnosis: api credential is empty")
	// ErrPermanent — локальная ошибка, повтор не поможет (битый вход,
	// не собрался запрос или клиент).
	ErrPermanent = errors.New("diagnosis: permanent error")
)

// StatusError is a non-2xx reply from the remote service.
type StatusError struct {
	Engine string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Engine, e.Code, e.Body)
}

// Retryable reports whether another attempt may succeed.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range []error{context.Canceled, ErrMalformedResponse, ErrNoCredential, ErrPermanent} {
		if errors.Is(err, target) {
			return false
		}
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	// сеть, таймаут попытки и прочие транспортные сбои
	return true
}
