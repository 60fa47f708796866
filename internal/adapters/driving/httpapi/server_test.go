package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/tutorbot/internal/core/domain"
)

type mockChatService struct {
	lastRequest domain.AskRequest
	response    *domain.ChatResponse
	err         error
}

func (m *mockChatService) Answer(_ context.Context, req domain.AskRequest) (*domain.ChatResponse, error) {
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func postChat(t *testing.T, handler http.Handler, username string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(payload))
	if username != "" {
		req.Header.Set("X-Username", username)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func validBody() map[string]string {
	return map[string]string{
		"question":   "What is a BJT?",
		"session_id": "sess-1",
		"year":       "2024",
		"semester":   "1",
		"subject":    "circuits",
	}
}

func TestHandleChat_Success(t *testing.T) {
	chat := &mockChatService{
		response: &domain.ChatResponse{
			Answer: "A bipolar junction transistor.",
			Images: []domain.ImageRecord{},
		},
	}
	server := NewServer(chat, ":0")

	rec := postChat(t, server.Handler(), "alice", validBody())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp domain.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "A bipolar junction transistor.", resp.Answer)
	assert.NotNil(t, resp.Images)
	assert.Empty(t, resp.Images)

	// The header username reaches the service
	assert.Equal(t, "alice", chat.lastRequest.Username)
	assert.Equal(t, "circuits", chat.lastRequest.Subject)
}

func TestHandleChat_MissingUsername(t *testing.T) {
	chat := &mockChatService{response: &domain.ChatResponse{}}
	server := NewServer(chat, ":0")

	rec := postChat(t, server.Handler(), "", validBody())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, chat.lastRequest.Username)
}

func TestHandleChat_InvalidBody(t *testing.T) {
	chat := &mockChatService{response: &domain.ChatResponse{}}
	server := NewServer(chat, ":0")

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader([]byte("not json")))
	req.Header.Set("X-Username", "alice")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChat_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"index not found", domain.ErrIndexNotFound, http.StatusNotFound},
		{"generation timeout", domain.ErrGenerationTimeout, http.StatusGatewayTimeout},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests},
		{"unexpected", errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &mockChatService{err: tt.err}
			server := NewServer(chat, ":0")

			rec := postChat(t, server.Handler(), "alice", validBody())

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandleChat_WrappedErrorsStillMap(t *testing.T) {
	wrapped := errors.Join(errors.New("load index"), domain.ErrIndexNotFound)
	chat := &mockChatService{err: wrapped}
	server := NewServer(chat, ":0")

	rec := postChat(t, server.Handler(), "alice", validBody())

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleChat_InternalErrorLeaksNothing(t *testing.T) {
	chat := &mockChatService{err: errors.New("dsn=postgres://secret@db")}
	server := NewServer(chat, ":0")

	rec := postChat(t, server.Handler(), "alice", validBody())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal error", resp["error"])
}

func TestHandleHealth(t *testing.T) {
	server := NewServer(&mockChatService{}, ":0")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	server := NewServer(&mockChatService{}, ":0")

	req := httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
