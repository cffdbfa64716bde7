// internal/retriever/client.go
package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"pcaf-advisor/internal/common/config"
	apperrors "pcaf-advisor/internal/common/errors"
	"pcaf-advisor/internal/common/httpclient"
	"pcaf-advisor/internal/common/logger"
	"pcaf-advisor/internal/common/metrics"
	"pcaf-advisor/internal/models"
)

// Client is the Semantic Retriever adapter. Per invocation it makes two
// sequential upstream calls: collection resolution (cacheable) and
// embed-then-search. It keeps no state beyond the optional id cache.
type Client struct {
	apis          config.APIsConfig
	maxCandidates int

	embedding *embeddingClient
	search    *httpclient.Client
	cache     *CollectionCache // nil when caching is disabled
	group     singleflight.Group
	logger    logger.Logger
}

// New constructs the adapter. cache may be nil.
func New(apis config.APIsConfig, maxCandidates int, cache *CollectionCache, log logger.Logger) *Client {
	return &Client{
		apis:          apis,
		maxCandidates: maxCandidates,
		embedding: &embeddingClient{
			baseURL: apis.Embedding.BaseURL,
			apiKey:  apis.Embedding.APIKey,
			model:   apis.Embedding.Model,
			http:    httpclient.NewClient(config.GetDuration(apis.Embedding.Timeout)),
		},
		search: httpclient.NewClient(config.GetDuration(apis.VectorSearch.Timeout)),
		cache:  cache,
		logger: log.With(map[string]interface{}{
			"component": "retriever",
		}),
	}
}

// Retrieve implements the Retriever contract.
func (c *Client) Retrieve(ctx context.Context, query string) ([]models.RetrievalCandidate, error) {
	if !c.apis.SemanticSearchConfigured() {
		return nil, apperrors.NewConfigurationMissingError("embedding or vector search credentials")
	}

	start := time.Now()
	collectionID, err := c.resolveCollection(ctx, c.apis.VectorSearch.Collection)
	metrics.RetrievalDuration.WithLabelValues("resolve").Observe(time.Since(start).Seconds())
	if err != nil {
		c.recordFailure(err)
		return nil, err
	}

	start = time.Now()
	vector, err := c.embedding.Embed(ctx, query)
	metrics.RetrievalDuration.WithLabelValues("embed").Observe(time.Since(start).Seconds())
	if err != nil {
		c.recordFailure(err)
		return nil, err
	}

	start = time.Now()
	candidates, err := c.searchCollection(ctx, collectionID, vector)
	metrics.RetrievalDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	if err != nil {
		c.recordFailure(err)
		return nil, err
	}

	sortCandidates(candidates)
	if len(candidates) > c.maxCandidates {
		candidates = candidates[:c.maxCandidates]
	}

	c.logger.Debug("retrieval complete", map[string]interface{}{
		"candidates": len(candidates),
	})

	return candidates, nil
}

func (c *Client) recordFailure(err error) {
	if stdErr, ok := err.(*apperrors.StandardError); ok {
		metrics.RetrievalFailures.WithLabelValues(string(stdErr.Code)).Inc()
	}
	c.logger.WithError(err).Warn("semantic retrieval failed", nil)
}

// resolveCollection maps the configured collection name to its opaque
// identifier, consulting the cache first. The singleflight group keeps at
// most one upstream resolution in flight per collection key.
func (c *Client) resolveCollection(ctx context.Context, collection string) (string, error) {
	if c.cache != nil {
		if id, ok := c.cache.Get(ctx, collection); ok {
			return id, nil
		}
	}

	v, err, _ := c.group.Do(collection, func() (interface{}, error) {
		id, err := c.fetchCollectionID(ctx, collection)
		if err != nil {
			return "", err
		}
		if c.cache != nil {
			if cerr := c.cache.Set(ctx, collection, id); cerr != nil {
				c.logger.WithError(cerr).Warn("collection cache write failed", nil)
			}
		}
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Client) fetchCollectionID(ctx context.Context, collection string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/collections/%s", c.apis.VectorSearch.BaseURL, url.PathEscape(collection))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", apperrors.NewSearchQueryFailedError(err)
	}
	c.authorize(req)

	resp, err := c.search.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", apperrors.NewSearchTimeoutError("resolve")
		}
		return "", apperrors.NewSearchQueryFailedError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", apperrors.NewUpstreamAuthFailedError("vector search")
	case resp.StatusCode == http.StatusNotFound:
		return "", apperrors.NewCollectionNotFoundError(collection)
	case resp.StatusCode != http.StatusOK:
		return "", apperrors.NewSearchQueryFailedError(fmt.Errorf("status %d", resp.StatusCode))
	}

	var parsed collectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.NewMalformedUpstreamError("vector search", err)
	}
	if parsed.ID == "" {
		return "", apperrors.NewMalformedUpstreamError("vector search", fmt.Errorf("empty collection id"))
	}

	return parsed.ID, nil
}

type searchRequest struct {
	QueryEmbeddings [][]float64 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

// searchResponse carries parallel arrays, one inner slice per query
// embedding. This adapter always sends exactly one embedding.
type searchResponse struct {
	IDs       [][]string                 `json:"ids"`
	Documents [][]string                 `json:"documents"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Distances [][]float64                `json:"distances"`
}

func (c *Client) searchCollection(ctx context.Context, collectionID string, vector []float64) ([]models.RetrievalCandidate, error) {
	body, _ := json.Marshal(searchRequest{
		QueryEmbeddings: [][]float64{vector},
		NResults:        c.maxCandidates,
		Include:         []string{"documents", "metadatas", "distances"},
	})

	endpoint := fmt.Sprintf("%s/api/v1/collections/%s/query", c.apis.VectorSearch.BaseURL, url.PathEscape(collectionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.search.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewSearchTimeoutError("search")
		}
		return nil, apperrors.NewSearchQueryFailedError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.NewUpstreamAuthFailedError("vector search")
	case resp.StatusCode != http.StatusOK:
		return nil, apperrors.NewSearchQueryFailedError(fmt.Errorf("status %d", resp.StatusCode))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewMalformedUpstreamError("vector search", err)
	}

	return zipCandidates(parsed)
}

// zipCandidates folds the parallel arrays into candidates. Length
// mismatches mean the upstream response cannot be trusted.
func zipCandidates(resp searchResponse) ([]models.RetrievalCandidate, error) {
	if len(resp.IDs) == 0 {
		return nil, nil
	}

	ids := resp.IDs[0]
	docs := firstOrEmptyStrings(resp.Documents)
	metas := firstOrEmptyMaps(resp.Metadatas)
	dists := firstOrEmptyFloats(resp.Distances)

	if len(docs) != len(ids) || len(dists) != len(ids) {
		return nil, apperrors.NewMalformedUpstreamError("vector search",
			fmt.Errorf("parallel array lengths disagree: %d ids, %d documents, %d distances",
				len(ids), len(docs), len(dists)))
	}

	candidates := make([]models.RetrievalCandidate, 0, len(ids))
	for i := range ids {
		var metadata map[string]string
		if i < len(metas) && len(metas[i]) > 0 {
			metadata = make(map[string]string, len(metas[i]))
			for k, v := range metas[i] {
				metadata[k] = fmt.Sprint(v)
			}
		}
		candidates = append(candidates, models.RetrievalCandidate{
			DocumentID:     ids[i],
			Text:           docs[i],
			Metadata:       metadata,
			RelevanceScore: relevanceFromDistance(dists[i]),
		})
	}
	return candidates, nil
}

func firstOrEmptyStrings(v [][]string) []string {
	if len(v) == 0 {
		return nil
	}
	return v[0]
}

func firstOrEmptyMaps(v [][]map[string]interface{}) []map[string]interface{} {
	if len(v) == 0 {
		return nil
	}
	return v[0]
}

func firstOrEmptyFloats(v [][]float64) []float64 {
	if len(v) == 0 {
		return nil
	}
	return v[0]
}

func (c *Client) authorize(req *http.Request) {
	if c.apis.VectorSearch.APIKey != "" {
		req.Header.Set("X-Api-Key", c.apis.VectorSearch.APIKey)
	}
}
