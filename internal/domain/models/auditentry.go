// internal/domain/models/auditentry.go
package models

import "time"

// Audit actions.
const (
	AuditCreate = "CREATE"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
)

// FieldChange records one field's before/after values in an audit entry.
// Old is empty when the field had no previous value; renderers must show an
// explicit marker for that case instead of omitting the row, so "no previous
// value" and "field not changed" stay distinguishable.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// AuditEntry is one immutable change event from the audit feed. Entries are
// append-only and delivered newest-first by the source; readers trust that
// ordering and never re-sort.
type AuditEntry struct {
	ID         string                 `json:"id"`
	Action     string                 `json:"action"` // CREATE | UPDATE | DELETE
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	ActorEmail string                 `json:"user_email"`
	Timestamp  time.Time              `json:"timestamp"`
	Changes    map[string]FieldChange `json:"changes,omitempty"`
}
