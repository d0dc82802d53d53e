package driftline

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config carries the environment-driven settings of the client. One value
// selects the backend base address; everything else is a tuning knob.
type Config struct {
	// APIURL is the backend base address.
	APIURL string `envconfig:"API_URL" default:"http://localhost:8000"`

	// HTTPTimeout bounds a single HTTP request end to end. Per-request
	// context deadlines are still the preferred control.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// Debug enables HTTP traffic dumping (see http_debug.go).
	Debug bool `envconfig:"DEBUG" default:"false"`

	// StateDir overrides where the credential is persisted. Empty selects
	// the per-user config directory.
	StateDir string `envconfig:"STATE_DIR"`
}

// LoadConfig reads configuration from DRIFTLINE_* environment variables,
// falling back to the defaults above.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("driftline", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
