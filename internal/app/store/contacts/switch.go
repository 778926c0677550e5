// internal/app/store/contacts/switch.go
package contacts

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/contacthub/internal/app/backend"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"go.uber.org/zap"
)

// FallbackState is the sticky demo-mode flag for one signed-in session.
// Once the backend reports unauthenticated, the flag is set and every later
// call in that session goes straight to the local store; only sign-out
// (which discards the state through Selector.Forget) resets it.
type FallbackState struct {
	mu     sync.Mutex
	fallen bool
}

// Fallen reports whether this session has switched to the local store.
func (s *FallbackState) Fallen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallen
}

// MarkFallen records the switch.
func (s *FallbackState) MarkFallen() {
	s.mu.Lock()
	s.fallen = true
	s.mu.Unlock()
}

// Switcher implements Repository by delegating to the remote repository
// until it reports unauthenticated, then to the local one. The call that
// observes the 401 is retried against the local store in the same
// invocation, so the caller still gets a usable page.
type Switcher struct {
	remote Repository
	local  Repository
	state  *FallbackState
	log    *zap.Logger
}

// NewSwitcher builds a Switcher over the two repositories and the session's
// sticky state.
func NewSwitcher(remote, local Repository, state *FallbackState, logger *zap.Logger) *Switcher {
	return &Switcher{remote: remote, local: local, state: state, log: logger}
}

func (s *Switcher) FetchPage(ctx context.Context, q Query) (Page, error) {
	if s.state.Fallen() {
		return s.local.FetchPage(ctx, q)
	}
	page, err := s.remote.FetchPage(ctx, q)
	if errors.Is(err, backend.ErrUnauthenticated) {
		s.fall("fetch")
		return s.local.FetchPage(ctx, q)
	}
	return page, err
}

func (s *Switcher) Create(ctx context.Context, in models.Contact) (models.Contact, error) {
	if s.state.Fallen() {
		return s.local.Create(ctx, in)
	}
	out, err := s.remote.Create(ctx, in)
	if errors.Is(err, backend.ErrUnauthenticated) {
		s.fall("create")
		return s.local.Create(ctx, in)
	}
	return out, err
}

func (s *Switcher) Update(ctx context.Context, id string, in models.Contact) (models.Contact, error) {
	if s.state.Fallen() {
		return s.local.Update(ctx, id, in)
	}
	out, err := s.remote.Update(ctx, id, in)
	if errors.Is(err, backend.ErrUnauthenticated) {
		s.fall("update")
		return s.local.Update(ctx, id, in)
	}
	return out, err
}

func (s *Switcher) Delete(ctx context.Context, id string) error {
	if s.state.Fallen() {
		return s.local.Delete(ctx, id)
	}
	err := s.remote.Delete(ctx, id)
	if errors.Is(err, backend.ErrUnauthenticated) {
		s.fall("delete")
		return s.local.Delete(ctx, id)
	}
	return err
}

func (s *Switcher) fall(op string) {
	s.state.MarkFallen()
	s.log.Warn("backend reported unauthenticated, switching to demo data",
		zap.String("operation", op))
}

// Selector hands out the right Repository for a request's identity. Demo
// identities always get the local store; provider identities get a Switcher
// whose sticky state is shared across all requests of that identity.
type Selector struct {
	api   *backend.Client
	local *Local
	log   *zap.Logger

	mu     sync.Mutex
	states map[string]*FallbackState
}

// NewSelector constructs the Selector shared by handlers.
func NewSelector(api *backend.Client, local *Local, logger *zap.Logger) *Selector {
	return &Selector{
		api:    api,
		local:  local,
		log:    logger,
		states: make(map[string]*FallbackState),
	}
}

// For returns the Repository serving the given identity, using the session
// token for remote calls.
func (s *Selector) For(id models.Identity, token string) Repository {
	if id.IsDemo() {
		return s.local
	}
	s.mu.Lock()
	state, ok := s.states[id.ID]
	if !ok {
		state = &FallbackState{}
		s.states[id.ID] = state
	}
	s.mu.Unlock()
	return NewSwitcher(NewRemote(s.api, token), s.local, state, s.log)
}

// Forget drops the sticky state for an identity. Called on sign-out so the
// next session starts back in remote mode.
func (s *Selector) Forget(identityID string) {
	s.mu.Lock()
	delete(s.states, identityID)
	s.mu.Unlock()
}
