package plantid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agribazaar/api/internal/diagnosis"
)

func TestIdentify_SendsContractAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"QUJD"}, body["images"])
		assert.Equal(t, []string{"similar_images"}, body["modifiers"])
		assert.Len(t, body["plant_details"], 5)

		_, _ = w.Write([]byte(`{"suggestions":[{"plant_name":"Tomato","probability":0.9432,
			"plant_details":{"common_names":["tomato"],"wiki_description":{"value":"berry"}}}]}`))
	}))
	defer srv.Close()

	resp, err := New("secret", srv.URL).Identify(context.Background(), diagnosis.NewIdentifyRequest("QUJD"))
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "Tomato", resp.Suggestions[0].PlantName)
	assert.Equal(t, "berry", resp.Suggestions[0].PlantDetails.WikiDescription.Value)
}

func TestIdentify_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New("bad", srv.URL).Identify(context.Background(), diagnosis.NewIdentifyRequest("x"))
	var se *diagnosis.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, "invalid api key", se.Body)
}

func TestIdentify_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops`))
	}))
	defer srv.Close()

	_, err := New("k", srv.URL).Identify(context.Background(), diagnosis.NewIdentifyRequest("x"))
	assert.ErrorIs(t, err, diagnosis.ErrMalformedResponse)
}

func TestIdentify_NoKey(t *testing.T) {
	_, err := New("  ", "").Identify(context.Background(), diagnosis.NewIdentifyRequest("x"))
	assert.ErrorIs(t, err, diagnosis.ErrNoCredential)
	assert.Equal(t, DefaultURL, New("", "").URL)
}

func TestClient_ConnectionRefusedIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := diagnosis.NewClient(New("k", url), zap.NewNop(), diagnosis.Options{MaxAttempts: 2, Backoff: time.Millisecond})
	r := c.Diagnose(context.Background(), "x")
	assert.Equal(t, diagnosis.KindFailure, r.Kind)
	assert.NotEmpty(t, r.Reason)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"suggestions":[]}`))
	}))
	defer srv.Close()

	c := diagnosis.NewClient(New("k", srv.URL), zap.NewNop(), diagnosis.Options{MaxAttempts: 3, Backoff: time.Millisecond})
	r := c.Diagnose(context.Background(), "x")
	assert.Equal(t, diagnosis.KindNotFound, r.Kind)
	assert.Equal(t, int32(2), hits.Load())
}
