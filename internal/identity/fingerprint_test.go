package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Deterministic(t *testing.T) {
	fp1 := Fingerprint("192.168.1.1", "Mozilla/5.0", "en-US")
	fp2 := Fingerprint("192.168.1.1", "Mozilla/5.0", "en-US")

	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64, "fingerprint should be a hex-encoded SHA-256 digest")
}

func TestFingerprint_DivergesOnAnyField(t *testing.T) {
	base := Fingerprint("192.168.1.1", "Mozilla/5.0", "en-US")

	assert.NotEqual(t, base, Fingerprint("192.168.1.2", "Mozilla/5.0", "en-US"))
	assert.NotEqual(t, base, Fingerprint("192.168.1.1", "curl/8.0", "en-US"))
	assert.NotEqual(t, base, Fingerprint("192.168.1.1", "Mozilla/5.0", "fr-FR"))
}

func TestFingerprint_KnownDigest(t *testing.T) {
	sum := sha256.Sum256([]byte("10.0.0.1:test-agent:en"))
	expected := hex.EncodeToString(sum[:])

	assert.Equal(t, expected, Fingerprint("10.0.0.1", "test-agent", "en"))
}

func TestFingerprint_Placeholders(t *testing.T) {
	assert.Equal(t,
		Fingerprint(UnknownAddress, UnknownUserAgent, UnknownLanguage),
		Fingerprint("", "", ""))

	// Missing language only
	assert.Equal(t,
		Fingerprint("10.0.0.1", "agent", UnknownLanguage),
		Fingerprint("10.0.0.1", "agent", ""))
}

func TestFingerprint_EmptyStillDistinct(t *testing.T) {
	// A client with no headers still gets a stable, usable identity
	fp := Fingerprint("", "", "")
	assert.Len(t, fp, 64)
	assert.NotEqual(t, fp, Fingerprint("10.0.0.1", "", ""))
}
