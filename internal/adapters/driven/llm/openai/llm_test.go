package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *GenerationService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	service, err := NewGenerationService(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return service
}

func completionBody(content string) string {
	return `{"choices": [{"message": {"content": ` + strconv.Quote(content) + `}, "finish_reason": "stop"}]}`
}

func TestNewGenerationService_RequiresAPIKey(t *testing.T) {
	_, err := NewGenerationService(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewGenerationService_Defaults(t *testing.T) {
	service, err := NewGenerationService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, service.ModelName())
	assert.Equal(t, DefaultBaseURL, service.baseURL)
}

func TestGenerate_SendsPromptAndOptions(t *testing.T) {
	var gotReq chatCompletionRequest
	var gotAuth string
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(completionBody("the answer")))
	})

	answer, err := service.Generate(context.Background(), "explain diodes", driven.GenerateOptions{
		MaxTokens:   300,
		Temperature: 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, DefaultModel, gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "explain diodes", gotReq.Messages[0].Content)
	assert.Equal(t, 300, gotReq.MaxTokens)
	assert.InDelta(t, 0.5, gotReq.Temperature, 1e-9)
}

func TestGenerate_RateLimited(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{}`))
	})

	_, err := service.Generate(context.Background(), "q", driven.GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestGenerate_APIError(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "invalid model", "type": "invalid_request_error"}}`))
	})

	_, err := service.Generate(context.Background(), "q", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model")
}

func TestGenerate_NoChoices(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	})

	_, err := service.Generate(context.Background(), "q", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response choices")
}

func TestGenerate_CancelledContext(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("too late")))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Generate(ctx, "q", driven.GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPing(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data": []}`))
	})
	assert.NoError(t, service.Ping(context.Background()))
}

func TestPing_Unauthorized(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	})

	err := service.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
