package contacts_test

import (
	"context"
	"testing"

	"github.com/dalemusser/contacthub/internal/app/store/contacts"
	"github.com/dalemusser/contacthub/internal/app/store/fallback"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"go.uber.org/zap"
)

func newLocal(t *testing.T, seed []models.Contact) *contacts.Local {
	t.Helper()
	fb := fallback.New(t.TempDir(), zap.NewNop())
	if seed != nil {
		if err := fb.SaveContacts(seed); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	return contacts.NewLocal(fb, zap.NewNop())
}

func seedPair() []models.Contact {
	return []models.Contact{
		{ID: "c1", FirstName: "John", LastName: "Doe", Email: "john.doe@example.com",
			Company: "Acme", Status: models.ContactActive, Tags: []string{"vip"}},
		{ID: "c2", FirstName: "Jane", LastName: "Smith", Email: "jane.smith@example.com",
			Company: "Globex", Status: models.ContactPending},
	}
}

func TestFetchPage_GlobalSearchDoe(t *testing.T) {
	l := newLocal(t, seedPair())
	page, err := l.FetchPage(context.Background(), contacts.Query{Search: "doe", PageSize: 10})
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].LastName != "Doe" {
		t.Errorf("search %q returned %+v, want only John Doe", "doe", page.Items)
	}
}

func TestFetchPage_CompanyColumnSubstring(t *testing.T) {
	l := newLocal(t, seedPair())
	ctx := context.Background()

	page, err := l.FetchPage(ctx, contacts.Query{Company: "glo", PageSize: 10})
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if page.Total != 1 || page.Items[0].Company != "Globex" {
		t.Errorf("company filter %q returned %+v, want only Globex", "glo", page.Items)
	}

	// The column filter composes with the global search by AND: a search that
	// only matches an Acme record plus a Globex company filter yields nothing.
	both, err := l.FetchPage(ctx, contacts.Query{Search: "doe", Company: "glo", PageSize: 10})
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if both.Total != 0 {
		t.Errorf("search=doe AND company=glo returned %+v, want none", both.Items)
	}
}

func TestFetchPage_FiltersAreAND(t *testing.T) {
	l := newLocal(t, seedPair())
	ctx := context.Background()

	unfiltered, _ := l.FetchPage(ctx, contacts.Query{PageSize: 10})
	bySearch, _ := l.FetchPage(ctx, contacts.Query{Search: "example.com", PageSize: 10})
	byStatus, _ := l.FetchPage(ctx, contacts.Query{Status: "active", PageSize: 10})
	both, _ := l.FetchPage(ctx, contacts.Query{Search: "example.com", Status: "active", PageSize: 10})

	if bySearch.Total > unfiltered.Total || byStatus.Total > unfiltered.Total {
		t.Error("a filtered count exceeded the unfiltered total")
	}
	if both.Total > bySearch.Total || both.Total > byStatus.Total {
		t.Error("AND of two filters must be a subset of either alone")
	}
	if both.Total != 1 || both.Items[0].ID != "c1" {
		t.Errorf("combined filter returned %+v, want only c1", both.Items)
	}
}

func TestFetchPage_StatusIsExactMatch(t *testing.T) {
	l := newLocal(t, []models.Contact{
		{ID: "c1", FirstName: "A", Status: models.ContactActive},
		{ID: "c2", FirstName: "B", Status: models.ContactInactive},
	})
	page, err := l.FetchPage(context.Background(), contacts.Query{Status: "active", PageSize: 10})
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != "c1" {
		t.Errorf("status filter matched %+v, want only c1 (no substring match on 'inactive')", page.Items)
	}
}

func TestFetchPage_EmptyCollection(t *testing.T) {
	l := newLocal(t, []models.Contact{})
	page, err := l.FetchPage(context.Background(), contacts.Query{Search: "anything", PageSize: 10})
	if err != nil {
		t.Fatalf("empty collection must not error: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("expected empty page, got %+v", page)
	}
}

func TestCreate_ThenReadFirstPage(t *testing.T) {
	l := newLocal(t, seedPair())
	ctx := context.Background()

	created, err := l.Create(ctx, models.Contact{
		FirstName: "New", LastName: "Person", Email: "new@example.com", Status: models.ContactActive,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" || created.ID == "c1" || created.ID == "c2" {
		t.Errorf("expected a freshly assigned unique id, got %q", created.ID)
	}

	page, err := l.FetchPage(ctx, contacts.Query{Page: 0, PageSize: 10})
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("total = %d, want 3", page.Total)
	}
	found := false
	seen := map[string]bool{}
	for _, c := range page.Items {
		if seen[c.ID] {
			t.Errorf("duplicate id %q on page", c.ID)
		}
		seen[c.ID] = true
		if c.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Error("created record missing from first page")
	}
}

func TestDelete_ThenRead(t *testing.T) {
	l := newLocal(t, seedPair())
	ctx := context.Background()

	if err := l.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	page, _ := l.FetchPage(ctx, contacts.Query{PageSize: 10})
	for _, c := range page.Items {
		if c.ID == "c1" {
			t.Error("deleted record still present")
		}
	}
	if page.Total != 1 {
		t.Errorf("total = %d, want 1", page.Total)
	}
}

func TestDelete_NonexistentIsNoOp(t *testing.T) {
	l := newLocal(t, seedPair())
	if err := l.Delete(context.Background(), "nope"); err != nil {
		t.Fatalf("deleting a nonexistent id must be a no-op, got %v", err)
	}
}

func TestUpdate_PreservesIDAndCreatedAt(t *testing.T) {
	l := newLocal(t, seedPair())
	got, err := l.Update(context.Background(), "c2", models.Contact{
		FirstName: "Jane", LastName: "Jones", Email: "jane.jones@example.com", Status: models.ContactActive,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.ID != "c2" {
		t.Errorf("id changed to %q", got.ID)
	}
	if got.LastName != "Jones" {
		t.Errorf("last name = %q, want Jones", got.LastName)
	}
}

func TestUpdate_MissingID(t *testing.T) {
	l := newLocal(t, seedPair())
	_, err := l.Update(context.Background(), "nope", models.Contact{FirstName: "X"})
	if err != contacts.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchPage_ReloadClampsAfterLastRowDeleted(t *testing.T) {
	// 11 records at size 10 put one record on page 1; deleting it leaves the
	// stale page index out of range, and the next load must clamp, not error.
	var seed []models.Contact
	for i := 0; i < 11; i++ {
		seed = append(seed, models.Contact{
			ID: string(rune('a' + i)), FirstName: "C", Status: models.ContactActive,
		})
	}
	l := newLocal(t, seed)
	ctx := context.Background()

	pageOne, _ := l.FetchPage(ctx, contacts.Query{Page: 1, PageSize: 10})
	if len(pageOne.Items) != 1 {
		t.Fatalf("expected one row on page 1, got %d", len(pageOne.Items))
	}
	if err := l.Delete(ctx, pageOne.Items[0].ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	reload, err := l.FetchPage(ctx, contacts.Query{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("reload errored instead of clamping: %v", err)
	}
	if reload.Total != 10 || len(reload.Items) != 10 {
		t.Errorf("reload = total %d, %d items; want the clamped full page 0", reload.Total, len(reload.Items))
	}
}
