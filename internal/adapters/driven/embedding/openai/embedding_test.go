package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/tutorbot/internal/core/domain"
)

func newTestService(t *testing.T, cfg Config, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL
	service, err := NewEmbeddingService(cfg)
	require.NoError(t, err)
	return service
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewEmbeddingService_ModelDimensions(t *testing.T) {
	small, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, 1536, small.Dimensions())
	assert.Equal(t, DefaultModel, small.ModelName())

	large, err := NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, large.Dimensions())

	custom, err := NewEmbeddingService(Config{APIKey: "k", Dimensions: 256})
	require.NoError(t, err)
	assert.Equal(t, 256, custom.Dimensions())
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	var gotReq embeddingRequest
	service := newTestService(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		// Out-of-order data entries must land at their index.
		w.Write([]byte(`{"data": [
			{"index": 1, "embedding": [0.3, 0.4]},
			{"index": 0, "embedding": [0.1, 0.2]}
		]}`))
	})

	got, err := service.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float32{0.1, 0.2}, got[0])
	assert.Equal(t, []float32{0.3, 0.4}, got[1])

	assert.Equal(t, DefaultModel, gotReq.Model)
	assert.Equal(t, []string{"first", "second"}, gotReq.Input)
	assert.Equal(t, 1536, gotReq.Dimensions, "dimensions sent for text-embedding-3 models")
}

func TestEmbed_SingleText(t *testing.T) {
	service := newTestService(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"index": 0, "embedding": [1.0]}]}`))
	})

	got, err := service.Embed(context.Background(), "diode")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, got)
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	service := newTestService(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty input")
	})

	got, err := service.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEmbedBatch_RateLimited(t *testing.T) {
	service := newTestService(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{}`))
	})

	_, err := service.EmbedBatch(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestEmbedBatch_APIError(t *testing.T) {
	service := newTestService(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "input too long", "type": "invalid_request_error"}}`))
	})

	_, err := service.EmbedBatch(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input too long")
}

func TestEmbedBatch_NoDimensionsForAda(t *testing.T) {
	var gotReq embeddingRequest
	service := newTestService(t, Config{Model: "text-embedding-ada-002"}, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{"data": [{"index": 0, "embedding": [1.0]}]}`))
	})

	_, err := service.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Zero(t, gotReq.Dimensions, "ada models do not accept a dimensions parameter")
}
