// Package tokenstore persists the single bearer credential the client holds.
//
// The store must be usable before anything else has initialized (session
// restoration happens first thing at startup) and must degrade to a harmless
// no-op when no durable medium is available, so callers never branch on
// persistence being present.
package tokenstore

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// primaryFile is the well-known storage key for the credential.
	primaryFile = "access_token"
	// legacyFile is the pre-rename key still found on old installs. It is
	// read once at Open and migrated to primaryFile.
	legacyFile = "token"
)

// Store holds at most one bearer credential.
//
// Contract:
//   - Token returns the credential and true, or "" and false when absent.
//   - Save replaces the credential; Clear removes it.
//   - All methods are safe for concurrent use and never panic when the
//     underlying medium is unavailable.
type Store interface {
	Token() (string, bool)
	Save(token string) error
	Clear() error
}

// Open returns a file-backed store rooted at dir, creating it if needed.
// If dir is empty the per-user config directory is used. When no usable
// directory exists (headless environments, read-only filesystems) Open
// returns a Null store rather than an error.
func Open(dir string) Store {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Null{}
		}
		dir = filepath.Join(base, "driftline")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Null{}
	}
	s := &fileStore{dir: dir}
	s.migrateLegacy()
	return s
}

type fileStore struct {
	dir string
}

func (s *fileStore) path(name string) string { return filepath.Join(s.dir, name) }

// migrateLegacy promotes a credential stored under the legacy key to the
// primary key. Runs once at Open; the legacy file is removed afterwards so
// later reads never consult it.
func (s *fileStore) migrateLegacy() {
	if _, err := os.Stat(s.path(primaryFile)); err == nil {
		_ = os.Remove(s.path(legacyFile))
		return
	}
	b, err := os.ReadFile(s.path(legacyFile))
	if err != nil {
		return
	}
	if tok := strings.TrimSpace(string(b)); tok != "" {
		_ = os.WriteFile(s.path(primaryFile), []byte(tok), 0o600)
	}
	_ = os.Remove(s.path(legacyFile))
}

func (s *fileStore) Token() (string, bool) {
	b, err := os.ReadFile(s.path(primaryFile))
	if err != nil {
		return "", false
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", false
	}
	return tok, true
}

func (s *fileStore) Save(token string) error {
	return os.WriteFile(s.path(primaryFile), []byte(token), 0o600)
}

func (s *fileStore) Clear() error {
	err := os.Remove(s.path(primaryFile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Null is the degraded store used when no persistence medium exists: reads
// report absence, writes succeed silently.
type Null struct{}

func (Null) Token() (string, bool) { return "", false }
func (Null) Save(string) error     { return nil }
func (Null) Clear() error          { return nil }
