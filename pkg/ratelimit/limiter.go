// Package ratelimit implements a fixed-window request counter keyed by an
// arbitrary identifier (typically "<operation>:<client ip>[:<event id>]").
//
// The limiter exists to slow abuse, not to enforce an exact bound: with the
// memory store every process counts on its own.
package ratelimit

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/noah-isme/whenfree-api/pkg/config"
)

// Policy is the budget applied to one class of operation.
type Policy struct {
	Name        string
	MaxRequests int
	Window      time.Duration
}

// Result describes the outcome of a Check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// Policies groups the independent budgets. Exhausting one never affects another.
type Policies struct {
	CreateEvent    Policy
	SubmitResponse Policy
	VerifyCode     Policy
}

// DefaultPolicies mirrors the shipped configuration defaults.
func DefaultPolicies() Policies {
	return Policies{
		CreateEvent:    Policy{Name: "create", MaxRequests: 10, Window: time.Minute},
		SubmitResponse: Policy{Name: "submit", MaxRequests: 30, Window: time.Minute},
		VerifyCode:     Policy{Name: "verify", MaxRequests: 10, Window: time.Minute},
	}
}

// PoliciesFromConfig builds the policy set from loaded configuration.
func PoliciesFromConfig(cfg config.RateLimitConfig) Policies {
	p := DefaultPolicies()
	apply := func(dst *Policy, rule config.RateLimitRule) {
		if rule.MaxRequests > 0 {
			dst.MaxRequests = rule.MaxRequests
		}
		if rule.Window > 0 {
			dst.Window = rule.Window
		}
	}
	apply(&p.CreateEvent, cfg.CreateEvent)
	apply(&p.SubmitResponse, cfg.Submit)
	apply(&p.VerifyCode, cfg.VerifyCode)
	return p
}

// CreateKey identifies event creation attempts from one client.
func CreateKey(clientIP string) string { return "create:" + clientIP }

// SubmitKey identifies response submissions from one client.
func SubmitKey(clientIP string) string { return "submit:" + clientIP }

// VerifyKey identifies admin code attempts from one client against one event.
func VerifyKey(clientIP, eventID string) string { return "verify:" + clientIP + ":" + eventID }

// lockShards bounds how many identifiers can be checked concurrently.
const lockShards = 64

// Limiter applies fixed-window policies on top of a Store. Get and Set for
// one identifier are serialised by a lock shard chosen from its hash, so a
// slow store round trip only delays identifiers sharing that shard.
type Limiter struct {
	store Store
	locks [lockShards]sync.Mutex
	now   func() time.Time
}

// NewLimiter builds a limiter; a nil store falls back to process memory.
func NewLimiter(store Store) *Limiter {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Limiter{store: store, now: time.Now}
}

// Check counts one request against the identifier's current window.
// A rejected request does not increment the counter.
func (l *Limiter) Check(ctx context.Context, identifier string, policy Policy) (Result, error) {
	if policy.MaxRequests <= 0 || policy.Window <= 0 {
		return Result{}, fmt.Errorf("invalid rate limit policy %q", policy.Name)
	}

	mu := l.lockFor(identifier)
	mu.Lock()
	defer mu.Unlock()

	now := l.now()
	entry, ok, err := l.store.Get(ctx, identifier)
	if err != nil {
		return Result{}, fmt.Errorf("load rate limit entry: %w", err)
	}

	if !ok || entry.Expired(now) {
		entry = Entry{Count: 1, ResetAt: now.Add(policy.Window)}
		if err := l.store.Set(ctx, identifier, entry); err != nil {
			return Result{}, fmt.Errorf("store rate limit entry: %w", err)
		}
		return Result{Allowed: true, Remaining: policy.MaxRequests - 1, ResetIn: policy.Window}, nil
	}

	resetIn := entry.ResetAt.Sub(now)
	if entry.Count >= policy.MaxRequests {
		return Result{Allowed: false, Remaining: 0, ResetIn: resetIn}, nil
	}

	entry.Count++
	if err := l.store.Set(ctx, identifier, entry); err != nil {
		return Result{}, fmt.Errorf("store rate limit entry: %w", err)
	}
	return Result{Allowed: true, Remaining: policy.MaxRequests - entry.Count, ResetIn: resetIn}, nil
}

func (l *Limiter) lockFor(identifier string) *sync.Mutex {
	return &l.locks[shardOf(identifier)]
}

func shardOf(identifier string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identifier))
	return h.Sum32() % lockShards
}

// Sweep reclaims expired windows. Expired entries are also handled lazily by
// Check, so this only bounds memory.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	return l.store.Sweep(ctx, l.now())
}
