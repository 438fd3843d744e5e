package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/noah-isme/whenfree-api/pkg/errors"
	"github.com/noah-isme/whenfree-api/pkg/ratelimit"
)

type adminCodeRepository interface {
	FindAdminCode(ctx context.Context, eventID string) (string, error)
}

type rateLimiter interface {
	Check(ctx context.Context, identifier string, policy ratelimit.Policy) (ratelimit.Result, error)
}

// AccessGuard checks admin codes for an event and throttles guessing per client and event.
type AccessGuard struct {
	codes   adminCodeRepository
	limiter rateLimiter
	policy  ratelimit.Policy
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAccessGuard constructs an AccessGuard. A zero policy falls back to the default verify budget.
func NewAccessGuard(codes adminCodeRepository, limiter rateLimiter, policy ratelimit.Policy, metrics *MetricsService, logger *zap.Logger) *AccessGuard {
	if limiter == nil {
		limiter = ratelimit.NewLimiter(nil)
	}
	if policy.MaxRequests <= 0 || policy.Window <= 0 {
		policy = ratelimit.DefaultPolicies().VerifyCode
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessGuard{codes: codes, limiter: limiter, policy: policy, metrics: metrics, logger: logger}
}

// VerifyAdminCode reports whether code unlocks the event. A missing event and
// a wrong code both yield false. Throttled attempts fail with RATE_LIMITED
// before the stored code is consulted.
func (g *AccessGuard) VerifyAdminCode(ctx context.Context, clientIP, eventID, code string) (bool, error) {
	if err := throttle(ctx, g.limiter, g.metrics, ratelimit.VerifyKey(clientIP, eventID), g.policy, "Too many attempts. Please try again later."); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrRateLimited.Code {
			g.metrics.RecordVerification(VerificationThrottled)
			g.logger.Warn("admin code attempts throttled", zap.String("event_id", eventID), zap.String("ip", clientIP))
		}
		return false, err
	}

	stored, err := g.codes.FindAdminCode(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			g.metrics.RecordVerification(VerificationMismatched)
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify admin code")
	}

	if !adminCodeMatches(stored, code) {
		g.metrics.RecordVerification(VerificationMismatched)
		return false, nil
	}
	g.metrics.RecordVerification(VerificationMatched)
	return true, nil
}

// HashAdminCode produces the bcrypt form stored when hashing is enabled.
func HashAdminCode(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// adminCodeMatches accepts either a bcrypt hash or the clear-text code, so
// events created before hashing was switched on still verify.
func adminCodeMatches(stored, submitted string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(submitted)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

// throttle charges one request to key and converts a rejection into RATE_LIMITED.
func throttle(ctx context.Context, limiter rateLimiter, metrics *MetricsService, key string, policy ratelimit.Policy, message string) error {
	result, err := limiter.Check(ctx, key, policy)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "rate limiter unavailable")
	}
	if !result.Allowed {
		metrics.RecordRateLimited(policy.Name)
		return appErrors.RateLimited(message, result.ResetIn)
	}
	return nil
}
