package tei

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScorer(t *testing.T, handler http.HandlerFunc) *RerankScorer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewRerankScorer(Config{BaseURL: server.URL})
}

func TestScore_MapsSortedResultsToInputOrder(t *testing.T) {
	var gotReq rerankRequest
	scorer := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rerank", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		// Servers return results sorted by score, not input order.
		json.NewEncoder(w).Encode([]rerankResult{
			{Index: 2, Score: 0.9},
			{Index: 0, Score: 0.4},
			{Index: 1, Score: 0.1},
		})
	})

	scores, err := scorer.Score(context.Background(), "diode", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.4, 0.1, 0.9}, scores)
	assert.Equal(t, "diode", gotReq.Query)
	assert.Equal(t, []string{"a", "b", "c"}, gotReq.Texts)
}

func TestScore_EmptyPassages(t *testing.T) {
	scorer := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty passages")
	})

	scores, err := scorer.Score(context.Background(), "diode", nil)
	require.NoError(t, err)
	assert.Nil(t, scores)
}

func TestScore_IndexOutOfRange(t *testing.T) {
	scorer := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]rerankResult{{Index: 5, Score: 0.9}})
	})

	_, err := scorer.Score(context.Background(), "diode", []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 5 for 2 passages")
}

func TestScore_MissingPassageScore(t *testing.T) {
	scorer := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]rerankResult{{Index: 0, Score: 0.9}})
	})

	_, err := scorer.Score(context.Background(), "diode", []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no score for passage 1")
}

func TestScore_ServerError(t *testing.T) {
	scorer := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	})

	_, err := scorer.Score(context.Background(), "diode", []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestScore_InvalidResponseBody(t *testing.T) {
	scorer := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := scorer.Score(context.Background(), "diode", []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestNewRerankScorer_Defaults(t *testing.T) {
	scorer := NewRerankScorer(Config{})
	assert.Equal(t, DefaultBaseURL, scorer.baseURL)
	assert.Equal(t, DefaultTimeout, scorer.client.Timeout)
}
