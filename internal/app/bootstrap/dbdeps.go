// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/contacthub/internal/app/backend"
	"github.com/dalemusser/contacthub/internal/app/store/auditfeed"
	contactstore "github.com/dalemusser/contacthub/internal/app/store/contacts"
	"github.com/dalemusser/contacthub/internal/app/store/fallback"
	"github.com/dalemusser/contacthub/internal/app/system/authflow"
	"github.com/dalemusser/contacthub/internal/app/system/idp"
)

// DBDeps bundles the clients and stores the app talks to. ContactHub has no
// database of its own; its "backends" are the CRM API, the identity
// provider, and the on-disk demo fallback store.
type DBDeps struct {
	Backend    *backend.Client
	IDP        *idp.Client
	Fallback   *fallback.Store
	Contacts   *contactstore.Selector
	AuditFeed  *auditfeed.Reader
	Resolver   *authflow.Resolver
	Refreshers *authflow.RefresherSet
}
