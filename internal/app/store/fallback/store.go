// internal/app/store/fallback/store.go
//
// The local fallback store backs demo mode: a persisted demo-identity
// marker and a persisted contact collection, both plain JSON documents in
// the app's data directory. They are the only state this app persists
// outside the cookie session, and they are always cleared together on
// sign-out so demo data cannot leak into another account's view.
package fallback

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	identityFile = "demo_identity.json"
	contactsFile = "demo_contacts.json"

	demoTenant = "demo-tenant"
)

// Store persists the demo identity marker and the demo contact collection.
// One process owns the directory; a single mutex serializes mutations
// (concurrent writers outside this process are an accepted limitation).
type Store struct {
	dir string
	mu  sync.Mutex
	log *zap.Logger
}

// New constructs a Store rooted at dir. The directory is created on first
// write, not here, so a read-only deployment can still boot.
func New(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, log: logger}
}

// DemoIdentity returns the persisted demo identity, or nil when none exists.
func (s *Store) DemoIdentity() (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id models.Identity
	ok, err := s.read(identityFile, &id)
	if err != nil || !ok {
		return nil, err
	}
	return &id, nil
}

// SetDemoIdentity persists the demo identity marker.
func (s *Store) SetDemoIdentity(id models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(identityFile, id)
}

// Contacts returns the persisted demo collection. A missing file yields the
// seeded starter set, persisted on the way out so ids stay stable across
// reloads.
func (s *Store) Contacts() ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var contacts []models.Contact
	ok, err := s.read(contactsFile, &contacts)
	if err != nil {
		return nil, err
	}
	if !ok {
		contacts = SeedContacts()
		if err := s.write(contactsFile, contacts); err != nil {
			return nil, err
		}
	}
	return contacts, nil
}

// SaveContacts replaces the persisted demo collection.
func (s *Store) SaveContacts(contacts []models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(contactsFile, contacts)
}

// Clear removes the demo identity marker and the demo collection together.
// Clearing an already-empty store is a no-op, not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, name := range []string{identityFile, contactsFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			if firstErr == nil {
				firstErr = fmt.Errorf("fallback: clear %s: %w", name, err)
			}
		}
	}
	return firstErr
}

// NewDemoIdentity fabricates the local demo identity. The id is random per
// sign-in; the tenant is fixed so demo contacts stay scoped together.
func NewDemoIdentity() models.Identity {
	return models.Identity{
		ID:            uuid.NewString(),
		Name:          "Demo User",
		Email:         "demo@contacthub.dev",
		AvatarURL:     "/static/img/demo-avatar.svg",
		EmailVerified: true,
		Provider:      models.ProviderDemo,
		TenantID:      demoTenant,
	}
}

// SeedContacts returns the starter collection shown on a fresh demo
// sign-in.
func SeedContacts() []models.Contact {
	now := time.Now().UTC()
	return []models.Contact{
		{
			ID:        uuid.NewString(),
			FirstName: "John",
			LastName:  "Doe",
			Email:     "john.doe@example.com",
			Phone:     "+1 555 0100",
			Company:   "Acme Corp",
			Status:    models.ContactActive,
			Tags:      []string{"vip"},
			TenantID:  demoTenant,
			CreatedAt: now.Add(-48 * time.Hour),
		},
		{
			ID:        uuid.NewString(),
			FirstName: "Jane",
			LastName:  "Smith",
			Email:     "jane.smith@example.com",
			Phone:     "+1 555 0101",
			Company:   "Globex",
			Status:    models.ContactPending,
			Tags:      []string{"newsletter"},
			TenantID:  demoTenant,
			CreatedAt: now.Add(-24 * time.Hour),
		},
		{
			ID:        uuid.NewString(),
			FirstName: "Carlos",
			LastName:  "Reyes",
			Email:     "carlos.reyes@example.com",
			Company:   "Initech",
			Status:    models.ContactInactive,
			TenantID:  demoTenant,
			CreatedAt: now.Add(-2 * time.Hour),
		},
	}
}

// read loads one JSON document. The bool reports whether the file existed.
func (s *Store) read(name string, out any) (bool, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fallback: read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// A corrupt document is treated as absent; demo data is disposable.
		s.log.Warn("fallback store document corrupt, ignoring",
			zap.String("file", name), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *Store) write(name string, in any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("fallback: mkdir: %w", err)
	}
	raw, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("fallback: encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		return fmt.Errorf("fallback: write %s: %w", name, err)
	}
	return nil
}
