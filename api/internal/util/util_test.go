package util

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestSniffMimeHTTP(t *testing.T) {
	assert.Equal(t, "image/jpeg", SniffMimeHTTP([]byte{0xFF, 0xD8, 0xFF}))
	assert.Equal(t, "image/png", SniffMimeHTTP(pngHeader))
	assert.Equal(t, "text/plain", SniffMimeHTTP([]byte("hello")))
	assert.Equal(t, "application/octet-stream", SniffMimeHTTP(nil))
}

func TestStripDataURL(t *testing.T) {
	p, m := StripDataURL("data:image/png;base64,AAAA")
	assert.Equal(t, "AAAA", p)
	assert.Equal(t, "image/png", m)

	p, m = StripDataURL("  AAAA ")
	assert.Equal(t, "AAAA", p)
	assert.Empty(t, m)
}

func TestDecodeBase64MaybeDataURL(t *testing.T) {
	enc := base64.StdEncoding.EncodeToString(pngHeader)
	b, m, err := DecodeBase64MaybeDataURL("data:image/png;base64," + enc)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, b)
	assert.Equal(t, "image/png", m)

	_, _, err = DecodeBase64MaybeDataURL("!!!")
	assert.Error(t, err)
}

func TestPickMIME(t *testing.T) {
	assert.Equal(t, "image/webp", PickMIME("image/webp", "image/png", pngHeader))
	assert.Equal(t, "image/png", PickMIME("", "image/png", nil))
	assert.Equal(t, "image/png", PickMIME("", "", pngHeader))
	assert.Equal(t, "image/jpeg", PickMIME("", "", nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab…", Truncate("abc", 2))
	assert.Equal(t, "₹₹…", Truncate("₹₹₹", 2))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
}
