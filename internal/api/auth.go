package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/driftline/driftline-go/internal/apierr"
	"github.com/driftline/driftline-go/internal/types"
)

// Login exchanges credentials for a bearer token.
func Login(ctx context.Context, httpClient *http.Client, baseURL string, creds types.Credentials) (*types.TokenResponse, error) {
	return issueToken(ctx, httpClient, baseURL+"/auth/login", "login", &creds)
}

// Register creates an account and returns its first bearer token.
func Register(ctx context.Context, httpClient *http.Client, baseURL string, creds types.Credentials) (*types.TokenResponse, error) {
	return issueToken(ctx, httpClient, baseURL+"/auth/register", "register", &creds)
}

// DemoLogin obtains a token for the pre-seeded demo account. No body.
func DemoLogin(ctx context.Context, httpClient *http.Client, baseURL string) (*types.TokenResponse, error) {
	return issueToken(ctx, httpClient, baseURL+"/demo/login", "demo login", nil)
}

// issueToken posts to one of the token-issuing endpoints. A 401 here means
// the presented credentials were rejected, not that a session went stale.
func issueToken(ctx context.Context, httpClient *http.Client, url, op string, creds *types.Credentials) (*types.TokenResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var body *bytes.Buffer
	if creds != nil {
		if err := types.ValidateCredentials(*creds); err != nil {
			return nil, err
		}
		payload, err := json.Marshal(creds)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(payload)
	} else {
		body = bytes.NewBuffer(nil)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, apierr.Network(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// 400 on register means the email is already taken; surface it as an
	// auth failure the user can act on rather than a server fault.
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return nil, &apierr.Error{Kind: apierr.KindAuth, StatusCode: resp.StatusCode, Op: op, Underlying: fmt.Errorf("credentials rejected")}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apierr.FromStatus(op, resp.StatusCode, true)
	}

	var tr types.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, err
	}
	if tr.AccessToken == "" {
		return nil, apierr.New(apierr.KindServer, op, "empty access token in response")
	}
	return &tr, nil
}

// Me fetches the authenticated user's identity. The bearer credential is
// attached by the gateway transport, not here.
func Me(ctx context.Context, httpClient *http.Client, baseURL string) (*types.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/auth/me", nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, apierr.Network("fetch identity", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apierr.FromStatus("fetch identity", resp.StatusCode, false)
	}

	var id types.Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, err
	}
	return &id, nil
}
