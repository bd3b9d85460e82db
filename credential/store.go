// Package credential holds delegated access tokens for principals. The
// store is the only cross-execution shared mutable resource; access is
// serialized so concurrent executions never observe lost updates. Drivers
// treat credentials as opaque capability tokens and never inspect them;
// only tool handlers consume the bearer token.
package credential

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Credential is one principal's delegated access to the Google integrations.
type Credential struct {
	Principal    string    `json:"principal"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Expired reports whether the access token is past its expiry. A zero
// expiry means the token does not expire.
func (c Credential) Expired() bool {
	return !c.Expiry.IsZero() && time.Now().After(c.Expiry)
}

// Store is a process-wide keyed credential store. The zero value is not
// usable; construct with NewStore.
type Store struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{creds: make(map[string]Credential)}
}

// Resolve returns the valid credential for the principal. Absent or expired
// credentials resolve to false; callers surface that as a domain error, not
// a fault.
func (s *Store) Resolve(principal string) (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[principal]
	if !ok || cred.Expired() {
		return Credential{}, false
	}
	return cred, true
}

// Put stores or replaces the credential for its principal.
func (s *Store) Put(cred Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[cred.Principal] = cred
}

// Invalidate removes the principal's credential.
func (s *Store) Invalidate(principal string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, principal)
}

// LoadFile merges credentials from a JSON file ([]Credential). A missing
// file is not an error; the store simply starts empty.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read credential file: %w", err)
	}

	var creds []Credential
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("parse credential file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range creds {
		s.creds[c.Principal] = c
	}
	return nil
}

// SaveFile writes all credentials to a JSON file with owner-only permissions.
func (s *Store) SaveFile(path string) error {
	s.mu.RLock()
	creds := make([]Credential, 0, len(s.creds))
	for _, c := range s.creds {
		creds = append(creds, c)
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}
