// internal/retriever/client_test.go
package retriever

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcaf-advisor/internal/common/config"
	apperrors "pcaf-advisor/internal/common/errors"
	"pcaf-advisor/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeUpstream struct {
	embeddingServer *httptest.Server
	searchServer    *httptest.Server
	resolveCalls    atomic.Int32
}

type searchFixture struct {
	IDs       []string
	Documents []string
	Distances []float64
	Sources   []string
}

func newFakeUpstream(t *testing.T, fixture searchFixture) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}

	f.embeddingServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer embed-key", r.Header.Get("Authorization"))
		writeBody(w, map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": []float64{0.1, 0.2, 0.3}}},
		})
	}))
	t.Cleanup(f.embeddingServer.Close)

	f.searchServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/collections/pcaf_motor_vehicle":
			f.resolveCalls.Add(1)
			writeBody(w, map[string]string{"id": "col-1", "name": "pcaf_motor_vehicle"})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/collections/col-1/query":
			metadatas := make([]map[string]interface{}, len(fixture.IDs))
			for i := range metadatas {
				metadatas[i] = map[string]interface{}{"source": fixture.Sources[i]}
			}
			writeBody(w, map[string]interface{}{
				"ids":       [][]string{fixture.IDs},
				"documents": [][]string{fixture.Documents},
				"metadatas": [][]map[string]interface{}{metadatas},
				"distances": [][]float64{fixture.Distances},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.searchServer.Close)

	return f
}

func writeBody(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func testAPIs(embeddingURL, searchURL string) config.APIsConfig {
	var apis config.APIsConfig
	apis.Embedding.BaseURL = embeddingURL
	apis.Embedding.APIKey = "embed-key"
	apis.Embedding.Model = "text-embedding-3-small"
	apis.Embedding.Timeout = 2000
	apis.VectorSearch.BaseURL = searchURL
	apis.VectorSearch.APIKey = "search-key"
	apis.VectorSearch.Collection = "pcaf_motor_vehicle"
	apis.VectorSearch.Timeout = 2000
	return apis
}

func standardErrorCode(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok, "expected StandardError, got %T", err)
	return stdErr.Code
}

// ==========================
// Core Functionality Tests
// ==========================

func TestRetrieve_Success(t *testing.T) {
	upstream := newFakeUpstream(t, searchFixture{
		IDs:       []string{"doc-a", "doc-b", "doc-c", "doc-d"},
		Documents: []string{"attribution text", "emissions text", "score text", "extra text"},
		Distances: []float64{0.2, 0.5, 0.9, 1.4},
		Sources:   []string{"Standard A", "Standard B", "Standard A", "Standard C"},
	})

	c := New(testAPIs(upstream.embeddingServer.URL, upstream.searchServer.URL), 3, nil, logger.NewNoOpLogger())
	candidates, err := c.Retrieve(context.Background(), "attribution factor")

	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "doc-a", candidates[0].DocumentID)
	assert.InDelta(t, 0.8, candidates[0].RelevanceScore, 0.001)
	assert.InDelta(t, 0.5, candidates[1].RelevanceScore, 0.001)
	assert.Equal(t, "Standard A", candidates[0].Metadata["source"])
}

func TestRetrieve_DistanceAboveOneClampsToZero(t *testing.T) {
	upstream := newFakeUpstream(t, searchFixture{
		IDs:       []string{"doc-a"},
		Documents: []string{"far away"},
		Distances: []float64{1.7},
		Sources:   []string{"Standard A"},
	})

	c := New(testAPIs(upstream.embeddingServer.URL, upstream.searchServer.URL), 3, nil, logger.NewNoOpLogger())
	candidates, err := c.Retrieve(context.Background(), "anything")

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Zero(t, candidates[0].RelevanceScore)
}

func TestRetrieve_MissingCredentials(t *testing.T) {
	c := New(config.APIsConfig{}, 3, nil, logger.NewNoOpLogger())
	_, err := c.Retrieve(context.Background(), "anything")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigurationMissing, standardErrorCode(t, err))
}

func TestRetrieve_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name         string
		resolve      int
		expectedCode apperrors.ErrorCode
	}{
		{"collection not found", http.StatusNotFound, apperrors.ErrCodeCollectionNotFound},
		{"auth rejected", http.StatusUnauthorized, apperrors.ErrCodeUpstreamAuthFailed},
		{"server error", http.StatusInternalServerError, apperrors.ErrCodeSearchQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedding := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeBody(w, map[string]interface{}{
					"data": []map[string]interface{}{{"embedding": []float64{0.1}}},
				})
			}))
			defer embedding.Close()

			search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.resolve)
			}))
			defer search.Close()

			c := New(testAPIs(embedding.URL, search.URL), 3, nil, logger.NewNoOpLogger())
			_, err := c.Retrieve(context.Background(), "anything")

			require.Error(t, err)
			assert.Equal(t, tt.expectedCode, standardErrorCode(t, err))
		})
	}
}

func TestRetrieve_MalformedParallelArrays(t *testing.T) {
	upstream := newFakeUpstream(t, searchFixture{})

	mismatched := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			writeBody(w, map[string]string{"id": "col-1"})
		default:
			writeBody(w, map[string]interface{}{
				"ids":       [][]string{{"doc-a", "doc-b"}},
				"documents": [][]string{{"only one"}},
				"distances": [][]float64{{0.1, 0.2}},
			})
		}
	}))
	defer mismatched.Close()

	c := New(testAPIs(upstream.embeddingServer.URL, mismatched.URL), 3, nil, logger.NewNoOpLogger())
	_, err := c.Retrieve(context.Background(), "anything")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeMalformedUpstream, standardErrorCode(t, err))
}

func TestRetrieve_EmbeddingFailure(t *testing.T) {
	embedding := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer embedding.Close()

	upstream := newFakeUpstream(t, searchFixture{})

	c := New(testAPIs(embedding.URL, upstream.searchServer.URL), 3, nil, logger.NewNoOpLogger())
	_, err := c.Retrieve(context.Background(), "anything")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeEmbeddingFailed, standardErrorCode(t, err))
}

// ==========================
// Collection Cache Tests
// ==========================

func newTestCache(t *testing.T) *CollectionCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCollectionCacheWithClient(client, time.Hour)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCollectionCache_RoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "pcaf_motor_vehicle")
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "pcaf_motor_vehicle", "col-1"))

	id, ok := cache.Get(ctx, "pcaf_motor_vehicle")
	assert.True(t, ok)
	assert.Equal(t, "col-1", id)
}

func TestRetrieve_CacheSkipsResolution(t *testing.T) {
	upstream := newFakeUpstream(t, searchFixture{
		IDs:       []string{"doc-a"},
		Documents: []string{"cached path"},
		Distances: []float64{0.3},
		Sources:   []string{"Standard A"},
	})

	cache := newTestCache(t)
	require.NoError(t, cache.Set(context.Background(), "pcaf_motor_vehicle", "col-1"))

	c := New(testAPIs(upstream.embeddingServer.URL, upstream.searchServer.URL), 3, cache, logger.NewNoOpLogger())
	candidates, err := c.Retrieve(context.Background(), "anything")

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Zero(t, upstream.resolveCalls.Load())
}

func TestRetrieve_CachePopulatedAfterMiss(t *testing.T) {
	upstream := newFakeUpstream(t, searchFixture{
		IDs:       []string{"doc-a"},
		Documents: []string{"first pass"},
		Distances: []float64{0.3},
		Sources:   []string{"Standard A"},
	})

	cache := newTestCache(t)
	c := New(testAPIs(upstream.embeddingServer.URL, upstream.searchServer.URL), 3, cache, logger.NewNoOpLogger())

	_, err := c.Retrieve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, int32(1), upstream.resolveCalls.Load())

	_, err = c.Retrieve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, int32(1), upstream.resolveCalls.Load())
}
