package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("handle revoked") }

func TestEncode_StripsNothingAndRoundTrips(t *testing.T) {
	enc, err := Codec{}.Encode(bytes.NewReader(jpegBytes))
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", enc.MIME)
	assert.False(t, strings.HasPrefix(enc.Data, "data:"))
	raw, err := base64.StdEncoding.DecodeString(enc.Data)
	require.NoError(t, err)
	assert.Equal(t, jpegBytes, raw)
}

func TestEncodeFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "leaf.jpg")
	require.NoError(t, os.WriteFile(p, jpegBytes, 0o600))

	enc, err := Codec{}.EncodeFile(p)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(jpegBytes), enc.Data)
}

func TestEncodeFile_Missing(t *testing.T) {
	_, err := Codec{}.EncodeFile(filepath.Join(t.TempDir(), "nope.jpg"))
	var re *ReadError
	require.ErrorAs(t, err, &re)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEncode_ReadFailure(t *testing.T) {
	_, err := Codec{}.Encode(failingReader{})
	var re *ReadError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, err.Error(), "handle revoked")
}

func TestEncode_Rejects(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty", nil, ErrEmpty},
		{"text", []byte("just some text"), ErrUnsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Codec{}.Encode(bytes.NewReader(tc.in))
			var re *ReadError
			require.ErrorAs(t, err, &re)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEncode_TooLarge(t *testing.T) {
	_, err := Codec{MaxBytes: 4}.Encode(bytes.NewReader(jpegBytes))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestNormalizeEncoded(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(jpegBytes)

	enc, err := Codec{}.NormalizeEncoded("data:image/jpeg;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, payload, enc.Data)

	_, err = Codec{}.NormalizeEncoded("%%%")
	var re *ReadError
	assert.ErrorAs(t, err, &re)
}

func TestStripHeader(t *testing.T) {
	assert.Equal(t, "QUJD", StripHeader("data:image/webp;base64,QUJD"))
	assert.Equal(t, "QUJD", StripHeader("QUJD"))
}
