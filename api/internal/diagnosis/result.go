package diagnosis

import (
	"fmt"
)

type Kind int

const (
	KindFailure Kind = iota
	KindSuccess
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindNotFound:
		return "not_found"
	default:
		return "failure"
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "success":
		*k = KindSuccess
	case "not_found":
		*k = KindNotFound
	case "failure":
		*k = KindFailure
	default:
		return fmt.Errorf("unknown diagnosis kind %q", b)
	}
	return nil
}

// Taxonomy keeps whatever ranks the service returned; missing ranks are
// simply absent.
type Taxonomy map[string]string

func (t Taxonomy) get(rank string) (string, bool) {
	v, ok := t[rank]
	return v, ok && v != ""
}

func (t Taxonomy) Family() (string, bool) { return t.get("family") }
func (t Taxonomy) Genus() (string, bool)  { return t.get("genus") }
func (t Taxonomy) Order() (string, bool)  { return t.get("order") }

// Result is the normalized diagnosis. Kind selects which fields are
// meaningful: Success fills the plant fields, Failure fills Reason,
// NotFound carries nothing but Kind.
type Result struct {
	Kind      Kind   `json:"status"`
	Engine    string `json:"engine,omitempty"`
	RequestID string `json:"request_id,omitempty"`

	Name              string   `json:"name,omitempty"`
	Confidence        float64  `json:"confidence,omitempty"`         // 0..100, два знака
	ConfidencePercent string   `json:"confidence_percent,omitempty"` // "94.32%"
	Description       string   `json:"description,omitempty"`
	CommonNames       string   `json:"common_names,omitempty"`
	Synonyms          []string `json:"synonyms,omitempty"`
	Taxonomy          Taxonomy `json:"taxonomy,omitempty"`
	InfoURL           string   `json:"url,omitempty"`

	Reason string `json:"reason,omitempty"`
}

func (r Result) IsSuccess() bool  { return r.Kind == KindSuccess }
func (r Result) IsNotFound() bool { return r.Kind == KindNotFound }
func (r Result) IsFailure() bool  { return r.Kind == KindFailure }

// NotFound — валидный ответ без совпадений.
func NotFound() Result { return Result{Kind: KindNotFound} }

// Failure wraps a transport, status or decoding problem.
func Failure(err error) Result {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return Result{Kind: KindFailure, Reason: reason}
}
