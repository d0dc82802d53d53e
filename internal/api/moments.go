package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/driftline/driftline-go/internal/apierr"
	"github.com/driftline/driftline-go/internal/types"
)

// ListMoments retrieves previously computed moments, newest first.
func ListMoments(ctx context.Context, httpClient *http.Client, baseURL string) ([]types.Moment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/moments", nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, apierr.Network("list moments", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apierr.FromStatus("list moments", resp.StatusCode, false)
	}

	var moments []types.Moment
	if err := json.NewDecoder(resp.Body).Decode(&moments); err != nil {
		return nil, err
	}
	return moments, nil
}

// Analyze triggers a clustering run over the caller's notes and returns the
// full replacement moment collection. The computation is server-side and
// opaque; this call only owns the wire contract.
func Analyze(ctx context.Context, httpClient *http.Client, baseURL string, req types.AnalyzeRequest) (*types.AnalyzeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/analyze", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, apierr.Network("analyze", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apierr.FromStatus("analyze", resp.StatusCode, false)
	}

	var ar types.AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, err
	}
	return &ar, nil
}
