package types

import (
	"strings"

	"github.com/driftline/driftline-go/internal/apierr"
)

// Client-side input validation. Anything rejected here never produces a
// network request; callers receive a KindValidation error they can surface
// next to the offending form field.

// ValidateCredentials checks an email/password pair before it is sent to a
// token-issuing endpoint.
func ValidateCredentials(c Credentials) error {
	if err := ValidateEmail(c.Email); err != nil {
		return err
	}
	if len(c.Password) < 6 {
		return apierr.Validation("password", "must be at least 6 characters")
	}
	return nil
}

// ValidateEmail requires a minimally well-formed address: one "@" with a dot
// somewhere after it.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apierr.Validation("email", "is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return apierr.Validation("email", "is not a valid address")
	}
	return nil
}

// ValidateCreateNote checks a capture payload. Title and content are
// required; energy level, when set, must be on the 1-10 scale.
func ValidateCreateNote(req CreateNoteRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return apierr.Validation("title", "is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return apierr.Validation("content", "is required")
	}
	if req.EnergyLevel != 0 && (req.EnergyLevel < 1 || req.EnergyLevel > 10) {
		return apierr.Validation("energy_level", "must be between 1 and 10")
	}
	return nil
}

// ValidateNoteID rejects the zero ID so a malformed delete never reaches the
// wire.
func ValidateNoteID(id int) error {
	if id <= 0 {
		return apierr.Validation("note id", "must be positive")
	}
	return nil
}
