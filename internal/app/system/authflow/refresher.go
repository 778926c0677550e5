// internal/app/system/authflow/refresher.go
package authflow

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultRefreshInterval renews tokens every 50 minutes, comfortably inside
// the provider's 60-minute validity window.
const DefaultRefreshInterval = 50 * time.Minute

// RefreshFunc renews a token; idp.Client.Refresh satisfies it. Provider
// token re-issuance is idempotent, so an overlapping renewal is harmless.
type RefreshFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

// Refresher keeps one provider session's token fresh on a fixed schedule
// for as long as the identity remains signed in. It holds the current token
// itself, since a background goroutine cannot rewrite a session cookie.
type Refresher struct {
	refresh  RefreshFunc
	interval time.Duration
	log      *zap.Logger

	mu  sync.Mutex
	tok *oauth2.Token

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRefresher builds a Refresher seeded with the sign-in token. An
// interval of 0 uses DefaultRefreshInterval.
func NewRefresher(tok *oauth2.Token, fn RefreshFunc, interval time.Duration, logger *zap.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{
		refresh:  fn,
		interval: interval,
		log:      logger,
		tok:      tok,
		stop:     make(chan struct{}),
	}
}

// Start launches the renewal loop.
func (rf *Refresher) Start() {
	go rf.run()
}

// Stop halts renewal. It is idempotent and safe to call from any
// goroutine; sign-out and shutdown both call it.
func (rf *Refresher) Stop() {
	rf.stopOnce.Do(func() { close(rf.stop) })
}

// Token returns the current access token.
func (rf *Refresher) Token() string {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.tok == nil {
		return ""
	}
	return rf.tok.AccessToken
}

func (rf *Refresher) run() {
	ticker := time.NewTicker(rf.interval)
	defer ticker.Stop()

	for {
		select {
		case <-rf.stop:
			return
		case <-ticker.C:
			rf.renew()
		}
	}
}

func (rf *Refresher) renew() {
	rf.mu.Lock()
	refreshToken := ""
	if rf.tok != nil {
		refreshToken = rf.tok.RefreshToken
	}
	rf.mu.Unlock()
	if refreshToken == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tok, err := rf.refresh(ctx, refreshToken)
	if err != nil {
		// Keep the old token; the next tick tries again, and an expired
		// token just resolves the session as unauthenticated downstream.
		rf.log.Warn("token refresh failed", zap.Error(err))
		return
	}

	rf.mu.Lock()
	rf.tok = tok
	rf.mu.Unlock()
	rf.log.Debug("token refreshed", zap.Time("expiry", tok.Expiry))
}

// RefresherSet tracks the active Refresher per signed-in identity. Login
// registers one, sign-out stops and removes it, shutdown stops them all.
type RefresherSet struct {
	mu  sync.Mutex
	m   map[string]*Refresher
	log *zap.Logger
}

// NewRefresherSet constructs an empty set.
func NewRefresherSet(logger *zap.Logger) *RefresherSet {
	return &RefresherSet{m: make(map[string]*Refresher), log: logger}
}

// StartFor registers and starts a Refresher for the identity, replacing
// (and stopping) any previous one.
func (s *RefresherSet) StartFor(identityID string, rf *Refresher) {
	s.mu.Lock()
	if old, ok := s.m[identityID]; ok {
		old.Stop()
	}
	s.m[identityID] = rf
	s.mu.Unlock()
	rf.Start()
}

// StopFor stops and removes the identity's Refresher, if any.
func (s *RefresherSet) StopFor(identityID string) {
	s.mu.Lock()
	rf, ok := s.m[identityID]
	if ok {
		delete(s.m, identityID)
	}
	s.mu.Unlock()
	if ok {
		rf.Stop()
	}
}

// TokenFor returns the freshest token held for the identity. Falls back to
// "" when no Refresher is registered (demo and exchange sessions).
func (s *RefresherSet) TokenFor(identityID string) string {
	s.mu.Lock()
	rf, ok := s.m[identityID]
	s.mu.Unlock()
	if !ok {
		return ""
	}
	return rf.Token()
}

// StopAll stops every Refresher. Called from app shutdown.
func (s *RefresherSet) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rf := range s.m {
		rf.Stop()
		delete(s.m, id)
	}
}
