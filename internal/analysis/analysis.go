// Package analysis is the boundary to the external AI commentary backend.
// The pipeline hands it fully formed hand records and gets free text
// back; it knows nothing about the backend's internals and performs no
// retries on its behalf.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"handtracker/internal/hand"
)

// Analyzer produces natural-language commentary for hands.
type Analyzer interface {
	AnalyzeHand(ctx context.Context, h *hand.Hand) (string, error)
	AnalyzeSession(ctx context.Context, hands []hand.Hand) (string, error)
}

// HTTPAnalyzer talks to an analysis backend over HTTP.
type HTTPAnalyzer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAnalyzer creates a client for the backend at baseURL.
func NewHTTPAnalyzer(baseURL string) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type analyzeRequest struct {
	Hands []hand.Hand `json:"hands"`
}

type analyzeResponse struct {
	Commentary string `json:"commentary"`
}

// AnalyzeHand requests commentary for a single hand.
func (a *HTTPAnalyzer) AnalyzeHand(ctx context.Context, h *hand.Hand) (string, error) {
	return a.post(ctx, []hand.Hand{*h})
}

// AnalyzeSession requests commentary spanning several hands.
func (a *HTTPAnalyzer) AnalyzeSession(ctx context.Context, hands []hand.Hand) (string, error) {
	return a.post(ctx, hands)
}

func (a *HTTPAnalyzer) post(ctx context.Context, hands []hand.Hand) (string, error) {
	body, err := json.Marshal(analyzeRequest{Hands: hands})
	if err != nil {
		return "", fmt.Errorf("analysis: encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("analysis: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("analysis: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("analysis: backend returned %s", resp.Status)
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("analysis: decoding response: %w", err)
	}
	return decoded.Commentary, nil
}
