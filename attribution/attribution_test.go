package attribution

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"offerpress/models"
	"offerpress/store"
)

func TestIsExternalURL(t *testing.T) {
	origin := "https://deals.offerpress.com"

	cases := []struct {
		name     string
		raw      string
		expected bool
	}{
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"fragment", "#reviews", false},
		{"rooted fragment", "/#reviews", false},
		{"javascript scheme", "javascript:void(0)", false},
		{"javascript scheme mixed case", "JavaScript:alert(1)", false},
		{"mailto", "mailto:team@offerpress.com", false},
		{"tel", "tel:+15551234567", false},
		{"site-relative path", "/pricing", false},
		{"site-relative with query", "/pricing?ref=nav", false},
		{"same origin absolute", "https://deals.offerpress.com/pricing", false},
		{"same host different path", "https://deals.offerpress.com/a/b/c", false},
		{"other subdomain", "https://other.offerpress.com/pricing", true},
		{"other domain", "https://partner-shop.example.com/buy", true},
		{"protocol-relative same host", "//deals.offerpress.com/x", false},
		{"protocol-relative other host", "//tracker.example.net/x", true},
		{"scheme change counts as external", "http://deals.offerpress.com/pricing", true},
		{"relative resolves against origin", "pricing", false},
		{"absolute host no path", "https://partner.example.com", true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, IsExternalURL(tc.raw, origin), tc.name)
	}

	// a bad origin never classifies anything as external
	assert.False(t, IsExternalURL("https://partner.example.com/buy", ""))
	assert.False(t, IsExternalURL("https://partner.example.com/buy", "::not a url::"))
}

func setupRecorderDBs() (*store.Store, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.Site{}, &models.Article{})

	analyticsDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect analytics database")
	}
	analyticsDB.AutoMigrate(&models.ViewEvent{}, &models.ClickEvent{})

	return store.New(db, analyticsDB, nil), analyticsDB
}

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/widget-click", nil)
	return c, w
}

// waitForCount polls the analytics table until the fire-and-forget insert
// lands or the deadline passes.
func waitForCount(t *testing.T, db *gorm.DB, model interface{}, want int64) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var count int64
		db.Model(model).Count(&count)
		if count == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d rows, fire-and-forget insert never landed", want)
}

func TestNewRecorder_RequiresSalt(t *testing.T) {
	st, _ := setupRecorderDBs()

	_, err := NewRecorder(st.Analytics, st.Articles, "")
	assert.Error(t, err)

	r, err := NewRecorder(st.Analytics, st.Articles, "test-salt")
	assert.NoError(t, err)
	assert.NotNil(t, r)
}

func TestFingerprint(t *testing.T) {
	st, _ := setupRecorderDBs()
	r, _ := NewRecorder(st.Analytics, st.Articles, "salt-a")

	fp := r.Fingerprint("203.0.113.7")
	assert.Len(t, fp, 12)
	assert.Equal(t, fp, r.Fingerprint("203.0.113.7"), "deterministic for the same address")
	assert.NotEqual(t, fp, r.Fingerprint("203.0.113.8"))
	assert.NotContains(t, fp, "203.0.113.7")

	// a different salt yields a different fingerprint for the same address
	other, _ := NewRecorder(st.Analytics, st.Articles, "salt-b")
	assert.NotEqual(t, fp, other.Fingerprint("203.0.113.7"))
}

func TestRecordClick_PersistsEvent(t *testing.T) {
	st, analyticsDB := setupRecorderDBs()
	r, _ := NewRecorder(st.Analytics, st.Articles, "test-salt")

	c, _ := testContext()
	c.Request.Host = "deals.offerpress.com"
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7")

	articleID := 42
	r.RecordClick(c, ClickInput{
		SiteID:         1,
		ArticleID:      &articleID,
		WidgetType:     "cta_button",
		DestinationURL: "https://partner-shop.example.com/buy",
		SessionID:      "session-abc",
	})

	waitForCount(t, analyticsDB, &models.ClickEvent{}, 1)

	var event models.ClickEvent
	analyticsDB.First(&event)
	assert.Equal(t, 1, event.SiteID)
	assert.Equal(t, "cta_button", event.WidgetType)
	assert.True(t, event.IsExternal)
	assert.Equal(t, "session-abc", event.SessionID)
	assert.Len(t, event.Fingerprint, 12)
}

func TestRecordClick_ClientOverrideWins(t *testing.T) {
	st, analyticsDB := setupRecorderDBs()
	r, _ := NewRecorder(st.Analytics, st.Articles, "test-salt")

	c, _ := testContext()
	c.Request.Host = "deals.offerpress.com"

	// destination would classify as external, but the client says otherwise
	override := false
	r.RecordClick(c, ClickInput{
		SiteID:         1,
		DestinationURL: "https://partner-shop.example.com/buy",
		IsExternal:     &override,
		SessionID:      "session-abc",
	})

	waitForCount(t, analyticsDB, &models.ClickEvent{}, 1)

	var event models.ClickEvent
	analyticsDB.First(&event)
	assert.False(t, event.IsExternal)
}

func TestRecordClick_DisabledAnalyticsIsNoop(t *testing.T) {
	db, _ := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	db.AutoMigrate(&models.Article{})
	st := store.New(db, nil, nil)

	r, _ := NewRecorder(st.Analytics, st.Articles, "test-salt")

	c, _ := testContext()
	// must neither panic nor block when no analytics database is configured
	r.RecordClick(c, ClickInput{SiteID: 1, DestinationURL: "/x", SessionID: "s"})
	assert.False(t, st.Analytics.Enabled())
}

func TestTrackView_ThrottlesRepeatViews(t *testing.T) {
	st, analyticsDB := setupRecorderDBs()
	r, _ := NewRecorder(st.Analytics, st.Articles, "test-salt")

	article := models.Article{SiteID: 1, Slug: "best-vpn", Title: "Best VPN"}
	st.Articles.Create(&article)

	c, _ := testContext()
	c.Request.Host = "deals.offerpress.com"
	// pin the visitor session so both calls correlate
	c.Request.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "visitor-1"})

	r.TrackView(c, 1, article.ID)
	waitForCount(t, analyticsDB, &models.ViewEvent{}, 1)

	// same session again inside the throttle window: no second row
	r.TrackView(c, 1, article.ID)
	time.Sleep(100 * time.Millisecond)

	var count int64
	analyticsDB.Model(&models.ViewEvent{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
