package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/markethive/accounts-backend/api/responses"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
	"github.com/markethive/accounts-backend/pkg/logger"
)

// emailDigestLen truncates the sha256 hex so counter keys stay short while
// still never storing a raw address in redis.
const emailDigestLen = 16

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// AuthRateLimitPolicy defines the throttling parameters for one auth surface
// (login, register, otp). A zero window or all-zero limits disable it.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewAuthRateLimitPolicy builds a policy with the supplied window and limits.
func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{
		name:       name,
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

func (p AuthRateLimitPolicy) counterKey(scope, value string) string {
	return fmt.Sprintf("ratelimit:%s:%s:%s", p.name, scope, value)
}

// scopeCheck is one fixed-window counter a request must pass.
type scopeCheck struct {
	scope string
	key   string
	limit int
}

// AuthRateLimit enforces per-IP and per-email fixed windows on auth
// endpoints. The email counter reads the body, so the handler downstream
// gets a replayed reader.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			checks := make([]scopeCheck, 0, 2)
			if policy.ipLimit > 0 {
				if ip := clientIP(r); ip != "" {
					checks = append(checks, scopeCheck{
						scope: "ip",
						key:   policy.counterKey("ip", ip),
						limit: policy.ipLimit,
					})
				}
			}
			if policy.emailLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if digest := emailDigest(extractEmail(body)); digest != "" {
					checks = append(checks, scopeCheck{
						scope: "email",
						key:   policy.counterKey("email", digest),
						limit: policy.emailLimit,
					})
				}
			}

			for _, check := range checks {
				count, err := store.IncrWithTTL(ctx, check.key, policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(check.limit) {
					blockRateLimited(ctx, logg, w, policy, check, count)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func blockRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, check scopeCheck, count int64) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"policy":         policy.name,
			"scope":          check.scope,
			"key":            check.key,
			"attempts":       count,
			"limit":          check.limit,
			"window_seconds": int(policy.window.Seconds()),
		})
		logg.Warn(logCtx, "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

// emailDigest normalizes an address and returns a truncated sha256 hex
// digest, or "" when no address is present.
func emailDigest(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:emailDigestLen]
}
