package types

import (
	"testing"

	"github.com/driftline/driftline-go/internal/apierr"
	"github.com/stretchr/testify/require"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr bool
	}{
		{"valid", Credentials{Email: "a@b.co", Password: "secret"}, false},
		{"empty email", Credentials{Password: "secret"}, true},
		{"no at sign", Credentials{Email: "nobody", Password: "secret"}, true},
		{"no domain dot", Credentials{Email: "a@local", Password: "secret"}, true},
		{"short password", Credentials{Email: "a@b.co", Password: "12345"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.creds)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, apierr.Is(err, apierr.KindValidation))
		})
	}
}

func TestValidateCreateNote(t *testing.T) {
	ok := CreateNoteRequest{Title: "Morning walk", Content: "Cold but clear.", EnergyLevel: 7}
	require.NoError(t, ValidateCreateNote(ok))

	require.Error(t, ValidateCreateNote(CreateNoteRequest{Content: "x"}))
	require.Error(t, ValidateCreateNote(CreateNoteRequest{Title: "x"}))
	require.Error(t, ValidateCreateNote(CreateNoteRequest{Title: "x", Content: "y", EnergyLevel: 11}))

	// Zero energy level means "unset" and passes through.
	require.NoError(t, ValidateCreateNote(CreateNoteRequest{Title: "x", Content: "y"}))
}

func TestValidateNoteID(t *testing.T) {
	require.NoError(t, ValidateNoteID(3))
	require.Error(t, ValidateNoteID(0))
	require.Error(t, ValidateNoteID(-1))
}
