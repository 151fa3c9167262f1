package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"offerpress/common"
	"offerpress/models"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(
		&models.Tenant{}, &models.User{}, &models.Site{}, &models.Article{},
		&models.Page{}, &models.WidgetDefinition{}, &models.WidgetInstance{},
		&models.WidgetCategory{}, &models.NavigationTemplate{},
		&models.EmailSubscriber{}, &models.ActivityLogEntry{},
	)
	return db
}

func intPtr(v int) *int { return &v }

func TestIsolationPolicyTable(t *testing.T) {
	// the policy is explicit per entity, not inferred per query
	assert.Equal(t, TenantScoped, PolicyFor("users"))
	assert.Equal(t, TenantScoped, PolicyFor("activity_log"))
	assert.Equal(t, Unscoped, PolicyFor("sites"))
	assert.Equal(t, Unscoped, PolicyFor("articles"))
	assert.Equal(t, Unscoped, PolicyFor("pages"))
	assert.Equal(t, Unscoped, PolicyFor("email_subscribers"))
	assert.Equal(t, Unscoped, PolicyFor("widgets"))
	assert.Equal(t, Unscoped, PolicyFor("navigation_templates"))
}

func TestUserQueries_TenantIsolation(t *testing.T) {
	db := setupTestDB()

	t1 := New(db, nil, intPtr(1))
	t2 := New(db, nil, intPtr(2))

	user, err := t1.Users.Create("alice@example.com", "password123", "Alice", "admin")
	assert.NoError(t, err)
	assert.Equal(t, intPtr(1), user.TenantID)

	// tenant 2 never sees tenant 1's user, even by its real id
	_, err = t2.Users.GetByID(user.ID)
	assert.Error(t, err)
	assert.True(t, common.IsNotFound(err))

	got, err := t1.Users.GetByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUserQueries_NilTenantMeansNull(t *testing.T) {
	db := setupTestDB()

	operator := New(db, nil, nil)
	tenant := New(db, nil, intPtr(1))

	opUser, err := operator.Users.Create("ops@example.com", "password123", "Ops", "admin")
	assert.NoError(t, err)
	assert.Nil(t, opUser.TenantID)

	_, err = tenant.Users.Create("member@example.com", "password123", "Member", "editor")
	assert.NoError(t, err)

	// a nil tenant is tenant_id IS NULL semantics, not "all tenants"
	users, err := operator.Users.GetAll()
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "ops@example.com", users[0].Email)
}

func TestUserQueries_UpdatePassword(t *testing.T) {
	db := setupTestDB()
	st := New(db, nil, intPtr(1))

	user, _ := st.Users.Create("alice@example.com", "password123", "Alice", "admin")

	// a JSON body decodes numbers to float64; the patch must reject, not panic
	_, err := st.Users.Update(user.ID, map[string]interface{}{"password": float64(12345678)})
	assert.True(t, common.IsValidation(err))

	_, err = st.Users.Update(user.ID, map[string]interface{}{"password": ""})
	assert.True(t, common.IsValidation(err))

	_, err = st.Users.Update(user.ID, map[string]interface{}{"password": "s3cret-pass"})
	assert.NoError(t, err)

	updated, _ := st.Users.GetByID(user.ID)
	assert.True(t, CheckPassword(updated, "s3cret-pass"))
	assert.False(t, CheckPassword(updated, "password123"))
}

func TestUserQueries_DeleteScoped(t *testing.T) {
	db := setupTestDB()

	t1 := New(db, nil, intPtr(1))
	t2 := New(db, nil, intPtr(2))

	user, _ := t1.Users.Create("alice@example.com", "password123", "Alice", "admin")

	err := t2.Users.Delete(user.ID)
	assert.True(t, common.IsNotFound(err))

	// still there for the owner
	_, err = t1.Users.GetByID(user.ID)
	assert.NoError(t, err)
}

func TestSiteQueries_NotTenantFiltered(t *testing.T) {
	db := setupTestDB()

	t1 := New(db, nil, intPtr(1))
	site := models.Site{TenantID: intPtr(1), Name: "Deals", Subdomain: "deals", Status: "published"}
	assert.NoError(t, t1.Sites.Create(&site))

	// the same row resolves regardless of which tenant asks, or none
	for _, st := range []*Store{New(db, nil, intPtr(2)), New(db, nil, nil), t1} {
		got, err := st.Sites.GetBySubdomain("deals")
		assert.NoError(t, err)
		assert.Equal(t, site.ID, got.ID)
	}
}

func TestSiteQueries_SubdomainConflict(t *testing.T) {
	db := setupTestDB()
	st := New(db, nil, nil)

	assert.NoError(t, st.Sites.Create(&models.Site{Name: "One", Subdomain: "deals"}))

	err := st.Sites.Create(&models.Site{Name: "Two", Subdomain: "deals"})
	assert.Error(t, err)
	assert.True(t, common.IsConflict(err))
}

func TestSiteQueries_PartialUpdate(t *testing.T) {
	db := setupTestDB()
	st := New(db, nil, nil)

	site := models.Site{Name: "Deals", Subdomain: "deals", Domain: "deals.example.com"}
	assert.NoError(t, st.Sites.Create(&site))

	updated, err := st.Sites.Update(site.ID, map[string]interface{}{"status": "published"})
	assert.NoError(t, err)
	assert.Equal(t, "published", updated.Status)
	// untouched fields survive a partial patch
	assert.Equal(t, "Deals", updated.Name)
	assert.Equal(t, "deals.example.com", updated.Domain)
	assert.Equal(t, 2, updated.Version)
}

func TestArticleQueries_SlugUniquePerSite(t *testing.T) {
	db := setupTestDB()
	st := New(db, nil, nil)

	site1 := models.Site{Name: "One", Subdomain: "one"}
	site2 := models.Site{Name: "Two", Subdomain: "two"}
	st.Sites.Create(&site1)
	st.Sites.Create(&site2)

	assert.NoError(t, st.Articles.Create(&models.Article{SiteID: site1.ID, Slug: "best-vpn", Title: "Best VPN"}))

	// same slug on another site is fine
	assert.NoError(t, st.Articles.Create(&models.Article{SiteID: site2.ID, Slug: "best-vpn", Title: "Best VPN"}))

	// duplicate within a site conflicts
	err := st.Articles.Create(&models.Article{SiteID: site1.ID, Slug: "best-vpn", Title: "Again"})
	assert.True(t, common.IsConflict(err))
}

func TestArticleQueries_PublishedFilter(t *testing.T) {
	db := setupTestDB()
	st := New(db, nil, nil)

	site := models.Site{Name: "One", Subdomain: "one"}
	st.Sites.Create(&site)
	st.Articles.Create(&models.Article{SiteID: site.ID, Slug: "a", Title: "A", Published: true})
	st.Articles.Create(&models.Article{SiteID: site.ID, Slug: "b", Title: "B", Published: false})

	all, err := st.Articles.GetAllBySite(site.ID, false)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	published, err := st.Articles.GetAllBySite(site.ID, true)
	assert.NoError(t, err)
	assert.Len(t, published, 1)
	assert.Equal(t, "a", published[0].Slug)
}

func TestWidgetQueries_SortOrderAssignment(t *testing.T) {
	db := setupTestDB()
	st := New(db, nil, nil)

	def := models.WidgetDefinition{TypeKey: "cta_button", Name: "CTA", Active: true}
	assert.NoError(t, st.Widgets.UpsertDefinition(&def))

	first := models.WidgetInstance{DefinitionID: def.ID, SiteID: 1, Enabled: true}
	second := models.WidgetInstance{DefinitionID: def.ID, SiteID: 1, Enabled: true}
	pageScoped := models.WidgetInstance{DefinitionID: def.ID, SiteID: 1, PageID: intPtr(7), Enabled: true}

	assert.NoError(t, st.Widgets.CreateInstance(&first))
	assert.NoError(t, st.Widgets.CreateInstance(&second))
	assert.NoError(t, st.Widgets.CreateInstance(&pageScoped))

	assert.Equal(t, 1, first.SortOrder)
	assert.Equal(t, 2, second.SortOrder)
	// page scope numbers independently of the site-wide scope
	assert.Equal(t, 1, pageScoped.SortOrder)
}

func TestWidgetQueries_InstanceScoping(t *testing.T) {
	db := setupTestDB()
	st := New(db, nil, nil)

	def := models.WidgetDefinition{TypeKey: "cta_button", Name: "CTA", Active: true}
	st.Widgets.UpsertDefinition(&def)

	siteWide := models.WidgetInstance{DefinitionID: def.ID, SiteID: 1, Enabled: true}
	onPage := models.WidgetInstance{DefinitionID: def.ID, SiteID: 1, PageID: intPtr(7), Enabled: true}
	otherPage := models.WidgetInstance{DefinitionID: def.ID, SiteID: 1, PageID: intPtr(8), Enabled: true}
	st.Widgets.CreateInstance(&siteWide)
	st.Widgets.CreateInstance(&onPage)
	st.Widgets.CreateInstance(&otherPage)

	// nil page: only site-wide placements
	instances, err := st.Widgets.Instances(1, nil)
	assert.NoError(t, err)
	assert.Len(t, instances, 1)
	assert.Equal(t, siteWide.ID, instances[0].ID)

	// page 7: site-wide plus its own
	instances, err = st.Widgets.Instances(1, intPtr(7))
	assert.NoError(t, err)
	assert.Len(t, instances, 2)
}

func TestWidgetQueries_UpsertDefinitionByTypeKey(t *testing.T) {
	db := setupTestDB()
	st := New(db, nil, nil)

	def := models.WidgetDefinition{TypeKey: "countdown", Name: "Countdown", Active: true}
	assert.NoError(t, st.Widgets.UpsertDefinition(&def))
	originalID := def.ID

	again := models.WidgetDefinition{TypeKey: "countdown", Name: "Countdown v2", Active: true}
	assert.NoError(t, st.Widgets.UpsertDefinition(&again))
	assert.Equal(t, originalID, again.ID)

	defs, _ := st.Widgets.Definitions(nil)
	assert.Len(t, defs, 1)
	assert.Equal(t, "Countdown v2", defs[0].Name)
}

func TestWidgetQueries_DeleteCategoryKeepsWidgets(t *testing.T) {
	db := setupTestDB()
	st := New(db, nil, nil)

	category := models.WidgetCategory{Name: "Urgency"}
	assert.NoError(t, st.Widgets.CreateCategory(&category))

	def := models.WidgetDefinition{TypeKey: "countdown", Name: "Countdown", CategoryID: &category.ID, Active: true}
	st.Widgets.UpsertDefinition(&def)

	assert.NoError(t, st.Widgets.DeleteCategory(category.ID))

	got, err := st.Widgets.DefinitionByID(def.ID)
	assert.NoError(t, err)
	assert.Nil(t, got.CategoryID)
}

func TestEmailQueries_DuplicateConflict(t *testing.T) {
	db := setupTestDB()
	st := New(db, nil, nil)

	sub, err := st.Emails.Create(1, "Visitor@Example.com", "tok1")
	assert.NoError(t, err)
	assert.Equal(t, "visitor@example.com", sub.Email) // normalized

	_, err = st.Emails.Create(1, "visitor@example.com", "tok2")
	assert.True(t, common.IsConflict(err))

	// same address on another site is a separate list
	_, err = st.Emails.Create(2, "visitor@example.com", "tok3")
	assert.NoError(t, err)
}

func TestLogActivity_StampsTenant(t *testing.T) {
	db := setupTestDB()

	New(db, nil, intPtr(5)).LogActivity(nil, "create", "site", 1, "subdomain=deals")
	New(db, nil, nil).LogActivity(nil, "delete", "site", 2, "")

	var entries []models.ActivityLogEntry
	db.Order("id ASC").Find(&entries)
	assert.Len(t, entries, 2)
	assert.Equal(t, intPtr(5), entries[0].TenantID)
	assert.Nil(t, entries[1].TenantID)
}

func TestNavigationTemplates_ParseLinks(t *testing.T) {
	links := ParseNavLinks("[Home](/) [Pricing](/pricing) [Blog](https://blog.example.com)")
	assert.Len(t, links, 3)
	assert.Equal(t, "Home", links[0].Text)
	assert.Equal(t, "/", links[0].URL)
	assert.Equal(t, "https://blog.example.com", links[2].URL)

	assert.Nil(t, ParseNavLinks(""))
	assert.Nil(t, ParseNavLinks("no links here"))
}

func TestAnalyticsQueries_NilDatabase(t *testing.T) {
	db := setupTestDB()
	st := New(db, nil, nil)

	assert.False(t, st.Analytics.Enabled())
	assert.Error(t, st.Analytics.InsertClick(&models.ClickEvent{SiteID: 1}))

	count, err := st.Analytics.CountViews(1, nil, time.Now().Add(-24*time.Hour))
	assert.Error(t, err)
	assert.Zero(t, count)
}
