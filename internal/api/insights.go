package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/driftline/driftline-go/internal/apierr"
	"github.com/driftline/driftline-go/internal/types"
)

// InsightsStats retrieves the aggregate statistics view.
func InsightsStats(ctx context.Context, httpClient *http.Client, baseURL string) (*types.InsightsStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/insights/stats", nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, apierr.Network("insights stats", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apierr.FromStatus("insights stats", resp.StatusCode, false)
	}

	var stats types.InsightsStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Health probes the backend liveness endpoint.
func Health(ctx context.Context, httpClient *http.Client, baseURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return apierr.Network("health", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return apierr.FromStatus("health", resp.StatusCode, false)
	}
	return nil
}
