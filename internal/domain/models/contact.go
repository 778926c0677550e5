// internal/domain/models/contact.go
package models

import (
	"strings"
	"time"
)

// Contact statuses. Status is an enumerated column: filters on it are
// exact-match, unlike the substring matching used for text columns.
const (
	ContactActive   = "active"
	ContactInactive = "inactive"
	ContactPending  = "pending"
)

// ContactStatuses lists the allowed status values in display order.
var ContactStatuses = []string{ContactActive, ContactInactive, ContactPending}

// Contact is a CRM contact record. The id is assigned by whichever store is
// authoritative (the backend, or the local fallback store in demo mode) at
// creation time and never changes afterward.
type Contact struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Status    string    `json:"status"`
	Tags      []string  `json:"tags,omitempty"`
	TenantID  string    `json:"tenant_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName returns "First Last" with surrounding space trimmed when either
// part is empty.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ValidContactStatus reports whether s is one of the allowed status values.
func ValidContactStatus(s string) bool {
	for _, v := range ContactStatuses {
		if s == v {
			return true
		}
	}
	return false
}
