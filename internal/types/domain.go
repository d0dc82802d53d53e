package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// Identity is the authenticated user's profile as returned by /auth/me.
type Identity struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Note is a single captured journal entry.
type Note struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Mood        string    `json:"mood"`
	EnergyLevel int       `json:"energy_level"`
	ImageData   string    `json:"image_data,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Moment is a cluster of related notes produced by the analysis service.
type Moment struct {
	ID               int       `json:"id"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	EmotionalTone    string    `json:"emotional_tone"`
	EmotionalScore   float64   `json:"emotional_score"`
	Keywords         []string  `json:"keywords"`
	ReflectionPrompt string    `json:"reflection_prompt"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	NoteCount        int       `json:"note_count"`
	NoteIDs          []int     `json:"note_ids"`
	CreatedAt        time.Time `json:"created_at"`
}

// EnergyTrend is one day of aggregated energy data inside InsightsStats.
type EnergyTrend struct {
	Date          string  `json:"date"`
	AverageEnergy float64 `json:"average_energy"`
	NoteCount     int     `json:"note_count"`
}

// DateRange bounds the notes covered by an insights aggregation. Either end
// may be empty when the account has no notes.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// InsightsStats is the aggregate view returned by /insights/stats.
type InsightsStats struct {
	TotalNotes       int            `json:"total_notes"`
	TotalMoments     int            `json:"total_moments"`
	MoodDistribution map[string]int `json:"mood_distribution"`
	EnergyTrends     []EnergyTrend  `json:"energy_trends"`
	RecentActivity   int            `json:"recent_activity"`
	DateRange        DateRange      `json:"date_range"`
}
