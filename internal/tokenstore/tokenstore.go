// Package tokenstore keeps the image host bearer token in a small JSON file
// so a login survives between runs.
//
// The file is read and rewritten without any locking. Only one process is
// expected to use a given token file at a time.
package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoToken is returned by Load when nothing usable is stored.
var ErrNoToken = errors.New("no token stored")

type tokenFile struct {
	Token string `json:"token"`
}

// Store reads and writes a single token file.
type Store struct {
	path string
}

// New creates a Store backed by path. The file need not exist yet.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the token file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored token, or ErrNoToken when the file is missing or
// holds an empty token.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return "", fmt.Errorf("decode token file %s: %w", s.path, err)
	}
	token := strings.TrimSpace(tf.Token)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save replaces the stored token. The file is written to a temporary name
// and renamed into place, readable by the owner only.
func (s *Store) Save(token string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	data, err := json.MarshalIndent(tokenFile{Token: token}, "", "    ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	// CreateTemp opens with 0600.
	tmp, err := os.CreateTemp(dir, ".token_tmp_")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close token file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

// Clear removes the token file. Clearing an absent file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
