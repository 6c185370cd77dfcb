package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"agribazaar/api/internal/diagnosis"
)

func TestDecodeSuggestions(t *testing.T) {
	resp, err := decodeSuggestions("```json\n{\"suggestions\":[{\"plant_name\":\"Oryza sativa\",\"probability\":0.81}]}\n```")
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)

	r := diagnosis.Normalize(resp)
	assert.Equal(t, "Oryza sativa", r.Name)
	assert.Equal(t, "81.00%", r.ConfidencePercent)
}

func TestDecodeSuggestions_Malformed(t *testing.T) {
	for _, in := range []string{"", "I think it's a tomato"} {
		_, err := decodeSuggestions(in)
		assert.ErrorIs(t, err, diagnosis.ErrMalformedResponse, in)
	}
}

func TestStatusError(t *testing.T) {
	err := statusError(fmt.Errorf("rpc: %w", &googleapi.Error{Code: http.StatusServiceUnavailable, Message: "overloaded"}))
	var se *diagnosis.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 503, se.Code)
	assert.True(t, diagnosis.Retryable(err))

	err = statusError(errors.New("boom"))
	assert.False(t, errors.As(err, &se))
}

func TestFirstText(t *testing.T) {
	assert.Empty(t, firstText(nil))
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: nil},
		{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"suggestions":[]}`)}}},
	}}
	assert.Equal(t, `{"suggestions":[]}`, firstText(resp))
}

func TestIdentify_NoKey(t *testing.T) {
	_, err := New("", "").Identify(context.Background(), diagnosis.NewIdentifyRequest("x"))
	assert.ErrorIs(t, err, diagnosis.ErrNoCredential)
}

func TestWithModel(t *testing.T) {
	e := New("k", "")
	assert.Equal(t, DefaultModel, e.Model())

	pro := e.WithModel(" gemini-2.5-pro ").(*Engine)
	assert.Equal(t, "gemini-2.5-pro", pro.Model())
	assert.Equal(t, "k", pro.APIKey)
	assert.Equal(t, DefaultModel, e.Model())

	assert.Equal(t, DefaultModel, e.WithModel("").(*Engine).Model())
}

// Один движок обслуживает все чаты: смена модели в одном не трогает
// запросы остальных. Запускать с -race.
func TestWithModel_ConcurrentWithIdentify(t *testing.T) {
	e := New("k", "")
	req := diagnosis.IdentifyRequest{Images: []string{"!!!"}}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			m := fmt.Sprintf("m%d", i)
			assert.Equal(t, m, e.WithModel(m).(diagnosis.ModelEngine).Model())
		}(i)
		go func() {
			defer wg.Done()
			_, err := e.Identify(context.Background(), req)
			assert.ErrorIs(t, err, diagnosis.ErrPermanent)
			assert.Equal(t, DefaultModel, e.Model())
		}()
	}
	wg.Wait()
	assert.Equal(t, DefaultModel, e.Model())
}

func TestIdentify_BadInputIsPermanent(t *testing.T) {
	e := New("k", "")
	for _, req := range []diagnosis.IdentifyRequest{
		{},
		{Images: []string{"not base64 at all!"}},
	} {
		_, err := e.Identify(context.Background(), req)
		assert.ErrorIs(t, err, diagnosis.ErrPermanent)
		assert.False(t, diagnosis.Retryable(err))
	}
}
