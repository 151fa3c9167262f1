package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"offerpress/models"
	"offerpress/store"
)

func setupAggregator() (*Aggregator, *store.Store, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.Site{}, &models.Article{}, &models.EmailSubscriber{})

	analyticsDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect analytics database")
	}
	analyticsDB.AutoMigrate(&models.ViewEvent{}, &models.ClickEvent{})

	st := store.New(db, analyticsDB, nil)
	return NewAggregator(st), st, analyticsDB
}

func seedViews(db *gorm.DB, siteID, articleID, n int, at time.Time) {
	for i := 0; i < n; i++ {
		db.Create(&models.ViewEvent{SiteID: siteID, ArticleID: articleID, SessionID: "s", CreatedAt: at})
	}
}

func seedClicks(db *gorm.DB, siteID int, articleID *int, widgetType string, external bool, n int, at time.Time) {
	for i := 0; i < n; i++ {
		db.Create(&models.ClickEvent{
			SiteID: siteID, ArticleID: articleID, WidgetType: widgetType,
			DestinationURL: "https://partner.example.com", IsExternal: external,
			SessionID: "s", CreatedAt: at,
		})
	}
}

func TestParseTimeRange(t *testing.T) {
	window, days := ParseTimeRange(Range24h)
	assert.Equal(t, 24*time.Hour, window)
	assert.Equal(t, 1, days)

	window, days = ParseTimeRange(Range90d)
	assert.Equal(t, 90*24*time.Hour, window)
	assert.Equal(t, 90, days)

	// anything unrecognized falls back to a week
	window, days = ParseTimeRange("all-time")
	assert.Equal(t, 7*24*time.Hour, window)
	assert.Equal(t, 7, days)
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, 30.0, conversionRate(30, 100))
	assert.Equal(t, 33.33, conversionRate(1, 3))
	assert.Equal(t, 0.0, conversionRate(0, 100))

	// more clicks than views is counter skew, clamped rather than rejected
	assert.Equal(t, 100.0, conversionRate(15, 10))

	// zero views
	assert.Equal(t, 0.0, conversionRate(0, 0))
	assert.Equal(t, 100.0, conversionRate(5, 0))
}

func TestAverageRate(t *testing.T) {
	assert.Equal(t, 0.0, averageRate(nil))

	articles := []ArticleReport{
		{ConversionRate: 20},
		{ConversionRate: 40},
	}
	assert.Equal(t, 30.0, averageRate(articles))

	// inputs are already clamped, so the mean can never exceed 100
	clamped := []ArticleReport{{ConversionRate: 100}, {ConversionRate: 100}}
	assert.Equal(t, 100.0, averageRate(clamped))
}

func TestArticleReport(t *testing.T) {
	a, st, analyticsDB := setupAggregator()

	article := models.Article{SiteID: 1, Slug: "best-vpn", Title: "Best VPN"}
	st.Articles.Create(&article)

	now := time.Now()
	seedViews(analyticsDB, 1, article.ID, 100, now.Add(-1*time.Hour))
	seedClicks(analyticsDB, 1, &article.ID, "cta_button", true, 30, now.Add(-1*time.Hour))
	// internal clicks never count as conversions
	seedClicks(analyticsDB, 1, &article.ID, "cta_button", false, 50, now.Add(-1*time.Hour))
	// outside the window
	seedViews(analyticsDB, 1, article.ID, 500, now.Add(-40*24*time.Hour))

	report := a.ArticleReport(1, article.ID, Range30d)
	assert.Equal(t, int64(100), report.TotalViews)
	assert.Equal(t, int64(30), report.TotalClicks)
	assert.Equal(t, 30.0, report.ConversionRate)
}

func TestSiteReport(t *testing.T) {
	a, st, analyticsDB := setupAggregator()

	busy := models.Article{SiteID: 1, Slug: "busy", Title: "Busy"}
	skewed := models.Article{SiteID: 1, Slug: "skewed", Title: "Skewed"}
	st.Articles.Create(&busy)
	st.Articles.Create(&skewed)

	// a day back keeps the events inside the window with an unambiguous
	// day bucket
	at := time.Now().Add(-26 * time.Hour)
	seedViews(analyticsDB, 1, busy.ID, 100, at)
	seedClicks(analyticsDB, 1, &busy.ID, "cta_button", true, 30, at)
	// skewed article: more clicks than views
	seedViews(analyticsDB, 1, skewed.ID, 10, at)
	seedClicks(analyticsDB, 1, &skewed.ID, "comparison_table", true, 15, at)

	st.Emails.Create(1, "a@example.com", "t1")
	st.Emails.Create(1, "b@example.com", "t2")

	report := a.SiteReport(1, Range7d)

	assert.Equal(t, int64(110), report.TotalViews)
	assert.Equal(t, int64(45), report.TotalClicks)
	assert.Equal(t, int64(2), report.TotalEmails)
	assert.InDelta(t, 40.91, report.ClickThroughRate, 0.01)
	assert.InDelta(t, 1.82, report.EmailConversionRate, 0.01)

	assert.Len(t, report.Articles, 2)
	rates := map[int]float64{}
	for _, ar := range report.Articles {
		rates[ar.ArticleID] = ar.ConversionRate
		assert.GreaterOrEqual(t, ar.ConversionRate, 0.0)
		assert.LessOrEqual(t, ar.ConversionRate, 100.0)
	}
	assert.Equal(t, 30.0, rates[busy.ID])
	assert.Equal(t, 100.0, rates[skewed.ID]) // clamped
	assert.Equal(t, 65.0, report.AverageConversionRate)

	// widgets ranked by click count
	assert.Len(t, report.TopWidgets, 2)
	assert.Equal(t, "cta_button", report.TopWidgets[0].WidgetType)
	assert.Equal(t, int64(30), report.TopWidgets[0].Clicks)

	// zero-filled day series: every date the window touches, today included
	assert.Len(t, report.Series, 8)
	assert.Equal(t, time.Now().Format("2006-01-02"), report.Series[7].Date)
	var seriesViews int64
	for _, p := range report.Series {
		seriesViews += p.Views
	}
	assert.Equal(t, int64(110), seriesViews)
}

func TestSiteReport_DegradesWithoutAnalyticsDB(t *testing.T) {
	db, _ := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	db.AutoMigrate(&models.Site{}, &models.Article{}, &models.EmailSubscriber{})
	st := store.New(db, nil, nil)

	article := models.Article{SiteID: 1, Slug: "a", Title: "A"}
	st.Articles.Create(&article)

	report := NewAggregator(st).SiteReport(1, Range7d)

	// event-backed aggregates zero out; the report still returns whole
	assert.Equal(t, int64(0), report.TotalViews)
	assert.Equal(t, int64(0), report.TotalClicks)
	assert.Equal(t, 0.0, report.ClickThroughRate)
	assert.Len(t, report.Articles, 1)
	assert.Equal(t, 0.0, report.Articles[0].ConversionRate)
	assert.Len(t, report.Series, 8)
}

func TestSiteReport_24hSeriesCoversWholeWindow(t *testing.T) {
	a, _, analyticsDB := setupAggregator()

	// inside the 24h window, likely on yesterday's date
	seedViews(analyticsDB, 1, 1, 5, time.Now().Add(-20*time.Hour))

	report := a.SiteReport(1, Range24h)
	assert.Equal(t, int64(5), report.TotalViews)

	// the lookback spans two calendar dates, so both get a bucket
	assert.Len(t, report.Series, 2)
	var seriesViews int64
	for _, p := range report.Series {
		seriesViews += p.Views
	}
	assert.Equal(t, report.TotalViews, seriesViews)
}
