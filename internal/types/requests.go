package types

// ------------------------------
// Request Payloads
// ------------------------------

// Credentials carries an email/password pair for login and registration.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateNoteRequest is the payload for POST /notes.
type CreateNoteRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Mood        string `json:"mood,omitempty"`
	EnergyLevel int    `json:"energy_level,omitempty"`
	ImageData   string `json:"image_data,omitempty"`
}

// ListNotesQuery selects the server-side slice returned by GET /notes.
// Zero values mean "no constraint"; Limit falls back to the server default.
type ListNotesQuery struct {
	Search string
	Mood   string
	Limit  int
}

// AnalyzeRequest triggers a clustering run over the caller's notes.
// All fields are optional; the server applies its own defaults.
type AnalyzeRequest struct {
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	MinClusterSize int    `json:"min_cluster_size,omitempty"`
}
