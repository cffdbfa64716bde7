// internal/retriever/embedding.go
package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "pcaf-advisor/internal/common/errors"
	"pcaf-advisor/internal/common/httpclient"
)

// embeddingClient calls the external embedding-generation API. The wire
// format follows the common /v1/embeddings shape: a model name plus input
// strings in, one vector per input out.
type embeddingClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *httpclient.Client
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the vector for a single text.
func (e *embeddingClient) Embed(ctx context.Context, text string) ([]float64, error) {
	body, _ := json.Marshal(embeddingRequest{Model: e.model, Input: []string{text}})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/embeddings", bytes.NewBuffer(body))
	if err != nil {
		return nil, apperrors.NewEmbeddingFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewSearchTimeoutError("embed")
		}
		return nil, apperrors.NewEmbeddingFailedError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.NewUpstreamAuthFailedError("embedding")
	case resp.StatusCode != http.StatusOK:
		return nil, apperrors.NewEmbeddingFailedError(fmt.Errorf("status %d", resp.StatusCode))
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewMalformedUpstreamError("embedding", err)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, apperrors.NewMalformedUpstreamError("embedding", fmt.Errorf("empty embedding in response"))
	}

	return parsed.Data[0].Embedding, nil
}
