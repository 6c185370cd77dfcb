// Package imagecodec turns a user-selected image into the raw base64 payload
// expected by the diagnosis engines.
package imagecodec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"agribazaar/api/internal/util"
)

// DefaultMaxBytes — лимит на размер исходного файла.
const DefaultMaxBytes = 10 << 20

var (
	ErrEmpty       = errors.New("image is empty")
	ErrTooLarge    = errors.New("image is too large")
	ErrUnsupported = errors.New("unsupported image type")
)

// ReadError reports an image that could not be read or is not an image.
type ReadError struct {
	Source string
	Err    error
}

func (e *ReadError) Error() string {
	if e.Source == "" {
		return "read image: " + e.Err.Error()
	}
	return fmt.Sprintf("read image %s: %v", e.Source, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Codec держит ограничения; нулевое значение использует DefaultMaxBytes.
type Codec struct {
	MaxBytes int64
}

func (c Codec) limit() int64 {
	if c.MaxBytes > 0 {
		return c.MaxBytes
	}
	return DefaultMaxBytes
}

// Encoded is the transport-safe payload plus the sniffed MIME type.
type Encoded struct {
	Data string // base64 without any data:...;base64, header
	MIME string
	Raw  []byte
}

// Encode reads r to EOF and base64-encodes it.
func (c Codec) Encode(r io.Reader) (Encoded, error) {
	return c.encode("", r)
}

// EncodeFile reads the whole file before returning.
func (c Codec) EncodeFile(path string) (Encoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return Encoded{}, &ReadError{Source: path, Err: err}
	}
	defer f.Close()
	return c.encode(path, f)
}

// EncodeBytes — то же для уже скачанных байтов (фото из Telegram).
func (c Codec) EncodeBytes(b []byte) (Encoded, error) {
	return c.check("", b)
}

func (c Codec) encode(source string, r io.Reader) (Encoded, error) {
	max := c.limit()
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return Encoded{}, &ReadError{Source: source, Err: err}
	}
	return c.check(source, b)
}

func (c Codec) check(source string, b []byte) (Encoded, error) {
	if len(b) == 0 {
		return Encoded{}, &ReadError{Source: source, Err: ErrEmpty}
	}
	if int64(len(b)) > c.limit() {
		return Encoded{}, &ReadError{Source: source, Err: ErrTooLarge}
	}
	mime := util.SniffMimeHTTP(b)
	if !strings.HasPrefix(mime, "image/") {
		return Encoded{}, &ReadError{Source: source, Err: fmt.Errorf("%w: %s", ErrUnsupported, mime)}
	}
	return Encoded{
		Data: base64.StdEncoding.EncodeToString(b),
		MIME: mime,
		Raw:  b,
	}, nil
}

// NormalizeEncoded accepts a payload that may still carry a data URL header,
// strips it and checks that what remains decodes as an image.
func (c Codec) NormalizeEncoded(s string) (Encoded, error) {
	b, _, err := util.DecodeBase64MaybeDataURL(s)
	if err != nil {
		return Encoded{}, &ReadError{Err: fmt.Errorf("bad base64: %w", err)}
	}
	return c.check("", b)
}

// StripHeader удаляет префикс data:<mime>;base64, если он есть.
func StripHeader(s string) string {
	payload, _ := util.StripDataURL(s)
	return payload
}
