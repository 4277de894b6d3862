package matchapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/safety-rag/internal/core/retrieval"
)

func TestClient_Match(t *testing.T) {
	var gotAuth string
	var gotReq matchRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches":[{"chunk":"Kaciga je obavezna.","source":"pravilnik.txt"},{"chunk":"Evakuacija"}]}`))
	}))
	defer srv.Close()

	matches, err := NewClient(srv.URL).Match(context.Background(), "kaciga", "sk-test")
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "kaciga", gotReq.Query)
	assert.Equal(t, []retrieval.Match{
		{Chunk: "Kaciga je obavezna.", Source: "pravilnik.txt"},
		{Chunk: "Evakuacija"},
	}, matches)
}

func TestClient_MatchEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"matches":[]}`))
	}))
	defer srv.Close()

	matches, err := NewClient(srv.URL).Match(context.Background(), "x", "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestClient_MatchErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Match(context.Background(), "x", "sk")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Match(context.Background(), "x", "sk")
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := NewClient(srv.URL).Match(ctx, "x", "sk")
		assert.Error(t, err)
	})

	t.Run("no endpoint", func(t *testing.T) {
		_, err := NewClient(" ").Match(context.Background(), "x", "sk")
		assert.ErrorIs(t, err, ErrEndpointNotSet)
	})
}
