// internal/app/system/authflow/resolver.go
//
// Resolution of "who is logged in". A request's auth state starts unknown
// and settles exactly once, through the first of three paths that applies:
//
//  1. demo bypass — a persisted demo identity authenticates immediately,
//     with no network call;
//  2. redirect completion — a one-time session id from the external auth
//     provider is exchanged with the backend, exactly once;
//  3. token-provider lookup — the identity provider is asked who holds the
//     session's bearer token.
//
// Every failure settles as unauthenticated. Nothing is ever left pending,
// and there is no path back to unknown short of a fresh resolution.
package authflow

import (
	"context"
	"sync"

	"github.com/dalemusser/contacthub/internal/domain/models"
	"go.uber.org/zap"
)

// State is the auth resolution state.
type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// SessionStore is the injectable session contract the resolver writes to.
// auth.SessionManager provides the real implementation per request; tests
// use an in-memory fake.
type SessionStore interface {
	Current() (*models.Identity, bool)
	SetCurrent(models.Identity) error
	Clear() error
}

// DemoSource reports a persisted demo identity, nil when none exists.
type DemoSource interface {
	DemoIdentity() (*models.Identity, error)
}

// Exchanger trades a one-time session id for an identity (the backend).
type Exchanger interface {
	ExchangeSession(ctx context.Context, sessionID string) (*models.Identity, error)
}

// ProviderLookup asks the identity provider who holds a token.
type ProviderLookup interface {
	Me(ctx context.Context, accessToken string) (*models.Identity, error)
}

// Resolution is the settled outcome. Identity is non-nil exactly when State
// is StateAuthenticated.
type Resolution struct {
	State    State
	Identity *models.Identity
}

// Resolver drives the state machine. One Resolver serves the whole app; the
// exchange guard inside it is what makes redirect completion one-shot
// across concurrent requests.
type Resolver struct {
	demo     DemoSource
	exchange Exchanger
	provider ProviderLookup
	guard    *ExchangeGuard
	log      *zap.Logger
}

// NewResolver wires the three resolution paths.
func NewResolver(demo DemoSource, exchange Exchanger, provider ProviderLookup, logger *zap.Logger) *Resolver {
	return &Resolver{
		demo:     demo,
		exchange: exchange,
		provider: provider,
		guard:    NewExchangeGuard(),
		log:      logger,
	}
}

// Resolve settles the auth state for one request. sessionID carries the
// redirect-completion parameter when present; accessToken carries the
// session's bearer token when one is stored. The resolved identity is
// written into the session store before returning.
func (rv *Resolver) Resolve(ctx context.Context, sessions SessionStore, sessionID, accessToken string) Resolution {
	// Path 1: demo bypass, synchronous.
	if rv.demo != nil {
		if id, err := rv.demo.DemoIdentity(); err == nil && id != nil {
			if err := sessions.SetCurrent(*id); err != nil {
				rv.log.Error("store demo identity", zap.Error(err))
				return Resolution{State: StateUnauthenticated}
			}
			return Resolution{State: StateAuthenticated, Identity: id}
		} else if err != nil {
			rv.log.Warn("demo identity unreadable", zap.Error(err))
		}
	}

	// Path 2: redirect completion, exactly once per session id.
	if sessionID != "" {
		if !rv.guard.Claim(sessionID) {
			// A concurrent or repeated mount already ran the exchange; settle
			// from whatever it left in the session without a second POST.
			if id, ok := sessions.Current(); ok {
				return Resolution{State: StateAuthenticated, Identity: id}
			}
			return Resolution{State: StateUnauthenticated}
		}

		id, err := rv.exchange.ExchangeSession(ctx, sessionID)
		if err != nil {
			rv.log.Warn("session exchange failed", zap.Error(err))
			return Resolution{State: StateUnauthenticated}
		}
		if err := sessions.SetCurrent(*id); err != nil {
			rv.log.Error("store exchanged identity", zap.Error(err))
			return Resolution{State: StateUnauthenticated}
		}
		return Resolution{State: StateAuthenticated, Identity: id}
	}

	// Path 3: token-provider lookup.
	if accessToken != "" {
		id, err := rv.provider.Me(ctx, accessToken)
		if err != nil {
			rv.log.Info("no provider session for token", zap.Error(err))
			return Resolution{State: StateUnauthenticated}
		}
		if err := sessions.SetCurrent(*id); err != nil {
			rv.log.Error("store provider identity", zap.Error(err))
			return Resolution{State: StateUnauthenticated}
		}
		return Resolution{State: StateAuthenticated, Identity: id}
	}

	return Resolution{State: StateUnauthenticated}
}

// ExchangeGuard makes each one-time session id exchangeable at most once
// per process. The guard is keyed on the id itself, not on time, so two
// rapid requests with the same id yield exactly one backend call.
type ExchangeGuard struct {
	mu   sync.Mutex
	used map[string]struct{}
}

// NewExchangeGuard constructs an empty guard.
func NewExchangeGuard() *ExchangeGuard {
	return &ExchangeGuard{used: make(map[string]struct{})}
}

// Claim reports whether the caller won the right to exchange this id.
func (g *ExchangeGuard) Claim(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, dup := g.used[sessionID]; dup {
		return false
	}
	g.used[sessionID] = struct{}{}
	return true
}
