package identity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duksosleepy/scraper/internal/models"
)

func TestStore_TokenFor_SharedDefault(t *testing.T) {
	store := NewStore("default-token", false)

	token := store.TokenFor("fp-1")
	assert.Equal(t, "default-token", token)

	// A different fingerprint gets the same shared token
	assert.Equal(t, "default-token", store.TokenFor("fp-2"))
	assert.Equal(t, 2, store.Len())
}

func TestStore_TokenFor_Idempotent(t *testing.T) {
	store := NewStore("default-token", false)

	first := store.TokenFor("fp-1")
	second := store.TokenFor("fp-1")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.Len())
}

func TestStore_TokenFor_UniqueTokens(t *testing.T) {
	store := NewStore("", true)

	token1 := store.TokenFor("fp-1")
	token2 := store.TokenFor("fp-2")

	assert.NotEmpty(t, token1)
	assert.NotEmpty(t, token2)
	assert.NotEqual(t, token1, token2)

	// Repeated sightings keep the originally issued token
	assert.Equal(t, token1, store.TokenFor("fp-1"))
}

func TestStore_TokenFor_ConcurrentFirstSighting(t *testing.T) {
	store := NewStore("", true)

	const goroutines = 50
	tokens := make([]string, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tokens[n] = store.TokenFor("same-fp")
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, store.Len(), "concurrent first sightings must converge on one binding")
	for _, token := range tokens {
		assert.Equal(t, tokens[0], token)
	}
}

func TestStore_Validate(t *testing.T) {
	store := NewStore("default-token", false)
	store.TokenFor("fp-1")

	assert.True(t, store.Validate("fp-1", "default-token"))
	assert.False(t, store.Validate("fp-1", "wrong-token"))
	assert.False(t, store.Validate("fp-1", ""))
}

func TestStore_Validate_UnboundFingerprint(t *testing.T) {
	store := NewStore("default-token", false)

	// Never-seen fingerprint cannot validate, even with the default token
	assert.False(t, store.Validate("never-seen", "default-token"))
}

func TestStore_Seed(t *testing.T) {
	store := NewStore("default-token", false)
	store.Seed([]models.CredentialBinding{
		{Fingerprint: "seeded-fp", Token: "seeded-token"},
	})

	assert.Equal(t, "seeded-token", store.TokenFor("seeded-fp"))
	assert.True(t, store.Validate("seeded-fp", "seeded-token"))
	assert.False(t, store.Validate("seeded-fp", "default-token"))
}

func TestStore_Seed_Overwrites(t *testing.T) {
	store := NewStore("default-token", false)
	store.TokenFor("fp-1")

	store.Seed([]models.CredentialBinding{
		{Fingerprint: "fp-1", Token: "rotated"},
	})

	assert.Equal(t, "rotated", store.TokenFor("fp-1"))
	assert.Equal(t, 1, store.Len())
}
