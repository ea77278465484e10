// Package admission decides whether an inbound request may proceed to the
// fetch pipeline. The gate runs a fixed sequence of checks: per-client rate
// limiting, fingerprint resolution with lazy credential issuance, then token
// validation. Each stage either halts with a terminal rejection or falls
// through to the next; nothing is retried.
package admission

import (
	"errors"
	"log/slog"

	"github.com/duksosleepy/scraper/internal/identity"
	"github.com/duksosleepy/scraper/internal/ratelimit"
)

// Terminal rejection reasons. All are expected during normal operation and
// reported to the caller without further detail.
var (
	ErrRateLimited       = errors.New("too many requests")
	ErrMissingCredential = errors.New("missing access token")
	ErrInvalidCredential = errors.New("invalid access token")
)

// Request carries the connection and header attributes the gate inspects.
// ClientAddr comes from the transport layer, never from the caller.
type Request struct {
	ClientAddr     string
	UserAgent      string
	AcceptLanguage string
	Token          string
}

// Result reports the admitted identity and the rate-limit state observed
// during the decision. On rejection, RateInfo is still populated so the
// HTTP layer can set rate headers.
type Result struct {
	Fingerprint string
	RateInfo    ratelimit.Info
}

// Gate orchestrates the limiter and credential store into one
// accept-or-reject decision per request.
type Gate struct {
	limiter ratelimit.Limiter
	creds   *identity.Store
	logger  *slog.Logger
}

// NewGate creates an admission gate. A nil limiter disables rate limiting.
func NewGate(limiter ratelimit.Limiter, creds *identity.Store, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		limiter: limiter,
		creds:   creds,
		logger:  logger,
	}
}

// Admit runs the gate stages in order and returns the first rejection, or a
// nil error when the request may proceed. A rejected request records no
// fingerprint binding beyond what the stages before the rejection created.
func (g *Gate) Admit(req Request) (Result, error) {
	var res Result

	if g.limiter != nil {
		allowed, info := g.limiter.Allow(req.ClientAddr)
		res.RateInfo = info
		if !allowed {
			g.logger.Warn("request rate limited",
				"client_addr", req.ClientAddr,
				"retry_after", info.RetryAfter,
			)
			return res, ErrRateLimited
		}
	}

	fp := identity.Fingerprint(req.ClientAddr, req.UserAgent, req.AcceptLanguage)
	res.Fingerprint = fp
	g.creds.TokenFor(fp)

	if req.Token == "" {
		return res, ErrMissingCredential
	}

	if !g.creds.Validate(fp, req.Token) {
		g.logger.Warn("invalid access token presented", "fingerprint", fp)
		return res, ErrInvalidCredential
	}

	return res, nil
}
