package store

import (
	"errors"
	"strings"

	"offerpress/common"

	"gorm.io/gorm"
)

// Isolation describes whether an entity's queries are filtered by the
// caller's tenant. The policy is deliberately not uniform: sites must be
// addressable by subdomain for public serving no matter who asks, while
// users must never leak across tenants.
type Isolation int

const (
	Unscoped Isolation = iota
	TenantScoped
)

// isolationPolicies is the single place the per-entity policy lives.
// Query bundles consult it at construction instead of deciding per query.
var isolationPolicies = map[string]Isolation{
	"users":                TenantScoped,
	"activity_log":         TenantScoped,
	"sites":                Unscoped,
	"articles":             Unscoped,
	"pages":                Unscoped,
	"email_subscribers":    Unscoped,
	"widgets":              Unscoped,
	"navigation_templates": Unscoped,
}

// PolicyFor returns the isolation policy for an entity key.
func PolicyFor(entity string) Isolation {
	return isolationPolicies[entity]
}

// Store bundles entity-scoped query sets for one request's tenant context.
type Store struct {
	db       *gorm.DB
	tenantID *int

	Users               *UserQueries
	Sites               *SiteQueries
	Articles            *ArticleQueries
	Pages               *PageQueries
	Emails              *EmailQueries
	Widgets             *WidgetQueries
	NavigationTemplates *NavigationTemplateQueries
	Analytics           *AnalyticsQueries
}

// New builds a query factory scoped to tenantID. A nil tenantID is a valid
// context (platform operators, anonymous public serving): tenant-scoped
// bundles then match rows where tenant_id IS NULL, never all tenants.
// analyticsDB may be nil, which disables the Analytics bundle's writes and
// zeroes its reads.
func New(db *gorm.DB, analyticsDB *gorm.DB, tenantID *int) *Store {
	s := &Store{db: db, tenantID: tenantID}
	s.Users = &UserQueries{db: db, tenantID: tenantID, policy: PolicyFor("users")}
	s.Sites = &SiteQueries{db: db}
	s.Articles = &ArticleQueries{db: db}
	s.Pages = &PageQueries{db: db}
	s.Emails = &EmailQueries{db: db}
	s.Widgets = &WidgetQueries{db: db}
	s.NavigationTemplates = &NavigationTemplateQueries{db: db}
	s.Analytics = &AnalyticsQueries{db: analyticsDB}
	return s
}

// TenantID exposes the tenant the factory was built with.
func (s *Store) TenantID() *int {
	return s.tenantID
}

// translate maps raw gorm errors onto the domain taxonomy so callers can
// answer with something better than a generic failure.
func translate(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.NewNotFoundError(resource)
	}
	if isUniqueViolation(err) {
		return common.NewConflictError(resource, err.Error())
	}
	return err
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
