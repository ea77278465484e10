// Package identity derives stable pseudo-identities for callers from
// connection and header attributes, and binds each identity to an access
// token. No registration or login exists: a caller's fingerprint is its
// identity, and a token is bound to a fingerprint the first time it is seen.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
)

// Placeholder values substituted for absent request attributes so that every
// request, however sparse its headers, still yields a fingerprint.
const (
	UnknownAddress   = "unknown"
	UnknownUserAgent = "unknown"
	UnknownLanguage  = "none"
)

// Fingerprint computes a deterministic digest over the caller's network
// address, User-Agent, and Accept-Language values. The fields are joined
// with a fixed delimiter so an empty field cannot alias a shifted one, then
// hashed with SHA-256. Identical inputs always produce identical output.
func Fingerprint(clientAddr, userAgent, acceptLanguage string) string {
	if clientAddr == "" {
		clientAddr = UnknownAddress
	}
	if userAgent == "" {
		userAgent = UnknownUserAgent
	}
	if acceptLanguage == "" {
		acceptLanguage = UnknownLanguage
	}

	raw := clientAddr + ":" + userAgent + ":" + acceptLanguage
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
