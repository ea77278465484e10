package identity

import (
	"crypto/subtle"
	"sync"

	"github.com/google/uuid"

	"github.com/duksosleepy/scraper/internal/models"
)

// Store maps fingerprints to access tokens. Bindings are created lazily on
// first sighting and never expire or rotate. The check-and-insert in
// TokenFor runs under a single lock, so concurrent first sightings of the
// same fingerprint converge on one binding.
type Store struct {
	mu           sync.Mutex
	bindings     map[string]string
	defaultToken string
	uniqueTokens bool
}

// NewStore creates a credential store. When uniqueTokens is false every new
// fingerprint is bound to defaultToken; when true each fingerprint receives
// a freshly generated UUID token.
func NewStore(defaultToken string, uniqueTokens bool) *Store {
	return &Store{
		bindings:     make(map[string]string),
		defaultToken: defaultToken,
		uniqueTokens: uniqueTokens,
	}
}

// Seed installs pre-existing fingerprint bindings, overwriting any current
// binding for the same fingerprint. Intended for startup configuration.
func (s *Store) Seed(bindings []models.CredentialBinding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range bindings {
		s.bindings[b.Fingerprint] = b.Token
	}
}

// TokenFor returns the token bound to fp, creating the binding if this is
// the first sighting. Calling it twice for the same fingerprint returns the
// same token and leaves a single binding.
func (s *Store) TokenFor(fp string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.bindings[fp]; ok {
		return token
	}

	token := s.defaultToken
	if s.uniqueTokens {
		token = uuid.NewString()
	}
	s.bindings[fp] = token
	return token
}

// Validate reports whether presented matches the token bound to fp. An
// unbound fingerprint never validates. Comparison is constant-time.
func (s *Store) Validate(fp, presented string) bool {
	s.mu.Lock()
	bound, ok := s.bindings[fp]
	s.mu.Unlock()

	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(bound), []byte(presented)) == 1
}

// Len returns the number of bindings currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bindings)
}
