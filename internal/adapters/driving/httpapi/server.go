package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/campuskit/tutorbot/internal/core/domain"
	"github.com/campuskit/tutorbot/internal/core/ports/driving"
	"github.com/campuskit/tutorbot/internal/logger"
)

// Server serves the chat API over HTTP.
type Server struct {
	chat driving.ChatService
	addr string
}

// NewServer creates an HTTP server wrapping the chat service.
func NewServer(chat driving.ChatService, addr string) *Server {
	return &Server{chat: chat, addr: addr}
}

// chatRequest is the POST /v1/chat body. The username comes from the
// X-Username header, set by the authentication layer upstream.
type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
	Year      string `json:"year"`
	Semester  string `json:"semester"`
	Subject   string `json:"subject"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the route table as a plain http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat", s.handleChat)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Run starts the server and blocks until the context is cancelled or
// the listener fails.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", s.addr)
	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	username := r.Header.Get("X-Username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "missing X-Username header")
		return
	}

	var body chatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req := domain.AskRequest{
		Username:  username,
		Question:  body.Question,
		SessionID: body.SessionID,
		Year:      body.Year,
		Semester:  body.Semester,
		Subject:   body.Subject,
	}

	resp, err := s.chat.Answer(r.Context(), req)
	if err != nil {
		status, msg := statusFor(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps pipeline errors to HTTP statuses. The message never
// carries internal detail; the full error goes to the log instead.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, domain.ErrIndexNotFound):
		return http.StatusNotFound, "no course material for this subject"
	case errors.Is(err, domain.ErrGenerationTimeout):
		return http.StatusGatewayTimeout, "answer generation timed out"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "too many requests, try again later"
	default:
		logger.Error("Chat request failed: %v", err)
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response: %v", err)
	}
}
