package admission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/duksosleepy/scraper/internal/models"
)

// TokenHeader is the request header carrying the caller's access token.
const TokenHeader = "X-Api-Token"

type contextKey string

// fingerprintKey stores the admitted caller's fingerprint in the request
// context for downstream handlers.
const fingerprintKey contextKey = "fingerprint"

// FingerprintFrom returns the fingerprint recorded by the middleware, or ""
// when the request did not pass through the gate.
func FingerprintFrom(ctx context.Context) string {
	fp, _ := ctx.Value(fingerprintKey).(string)
	return fp
}

// Middleware returns HTTP middleware that runs the admission gate before
// the wrapped handler. Rejections are written as structured JSON errors:
// 429 rate limited, 401 missing token, 403 invalid token. Rate limit
// headers are set on every response that reached the limiter.
func Middleware(gate *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := Request{
				ClientAddr:     clientAddr(r),
				UserAgent:      r.Header.Get("User-Agent"),
				AcceptLanguage: r.Header.Get("Accept-Language"),
				Token:          r.Header.Get(TokenHeader),
			}

			res, err := gate.Admit(req)

			if res.RateInfo.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", res.RateInfo.Limit))
				w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", res.RateInfo.Remaining))
				if !res.RateInfo.ResetAt.IsZero() {
					w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", res.RateInfo.ResetAt.Unix()))
				}
			}

			if err != nil {
				writeRejection(w, res, err)
				return
			}

			ctx := context.WithValue(r.Context(), fingerprintKey, res.Fingerprint)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeRejection(w http.ResponseWriter, res Result, err error) {
	var status int
	var resp *models.ErrorResponse

	switch {
	case errors.Is(err, ErrRateLimited):
		status = http.StatusTooManyRequests
		retryAfterSecs := int(res.RateInfo.RetryAfter.Seconds()) + 1
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfterSecs))
		resp = models.NewErrorResponse("Too many requests, please wait.", models.ErrorCodeRateLimited)
	case errors.Is(err, ErrMissingCredential):
		status = http.StatusUnauthorized
		resp = models.NewErrorResponse("Missing "+TokenHeader+" header", models.ErrorCodeMissingCredential)
	case errors.Is(err, ErrInvalidCredential):
		status = http.StatusForbidden
		resp = models.NewErrorResponse("Invalid "+TokenHeader, models.ErrorCodeInvalidCredential)
	default:
		status = http.StatusInternalServerError
		resp = models.NewErrorResponse("Internal server error", models.ErrorCodeInternalError)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// clientAddr extracts the client network address, checking proxy headers
// before falling back to the connection's remote address.
func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
