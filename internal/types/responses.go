package types

// ------------------------------
// Response Payloads
// ------------------------------

// TokenResponse is the body returned by the three token-issuing endpoints
// (/auth/login, /auth/register, /demo/login).
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AnalyzeResponse is the result of a completed clustering run.
type AnalyzeResponse struct {
	Moments            []Moment `json:"moments"`
	TotalNotesAnalyzed int      `json:"total_notes_analyzed"`
	AnalysisTime       float64  `json:"analysis_time"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
