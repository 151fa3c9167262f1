package analytics

import (
	"log"
	"math"
	"time"

	"offerpress/store"
)

// Supported lookback windows.
const (
	Range24h = "24h"
	Range7d  = "7d"
	Range30d = "30d"
	Range90d = "90d"
)

// ParseTimeRange maps a range token to its duration and day count,
// defaulting to 7 days for anything unrecognized.
func ParseTimeRange(timeRange string) (time.Duration, int) {
	switch timeRange {
	case Range24h:
		return 24 * time.Hour, 1
	case Range7d:
		return 7 * 24 * time.Hour, 7
	case Range30d:
		return 30 * 24 * time.Hour, 30
	case Range90d:
		return 90 * 24 * time.Hour, 90
	default:
		return 7 * 24 * time.Hour, 7
	}
}

// Aggregator computes conversion reports from the same store the recorder
// writes to. It runs on demand, never as a background job.
type Aggregator struct {
	store *store.Store
}

func NewAggregator(s *store.Store) *Aggregator {
	return &Aggregator{store: s}
}

type WidgetStat struct {
	WidgetType string `json:"widget_type"`
	WidgetID   *int   `json:"widget_id,omitempty"`
	Clicks     int64  `json:"clicks"`
}

type DayPoint struct {
	Date   string `json:"date"`
	Views  int64  `json:"views"`
	Clicks int64  `json:"clicks"`
}

type ArticleReport struct {
	ArticleID      int     `json:"article_id"`
	TotalViews     int64   `json:"total_views"`
	TotalClicks    int64   `json:"total_clicks"` // external only
	ConversionRate float64 `json:"conversion_rate"`
}

type SiteReport struct {
	SiteID                int             `json:"site_id"`
	TimeRange             string          `json:"time_range"`
	TotalViews            int64           `json:"total_views"`
	TotalClicks           int64           `json:"total_clicks"` // external only
	TotalEmails           int64           `json:"total_emails"`
	ClickThroughRate      float64         `json:"click_through_rate"`
	EmailConversionRate   float64         `json:"email_conversion_rate"`
	AverageConversionRate float64         `json:"average_conversion_rate"`
	Articles              []ArticleReport `json:"articles"`
	TopWidgets            []WidgetStat    `json:"top_widgets"`
	Series                []DayPoint      `json:"series"`
}

// conversionRate is the clamped percentage of external clicks over views.
// Views and clicks are independently sourced counters that can disagree
// (a cached page is clicked without a fresh view being logged), so a raw
// ratio above 100 is expected data skew, not an error: the clamp is policy.
func conversionRate(clicks, views int64) float64 {
	if views <= 0 {
		if clicks > 0 {
			return 100
		}
		return 0
	}
	rate := float64(clicks) / float64(views) * 100
	if rate > 100 {
		return 100
	}
	return round2(rate)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ArticleReport computes one article's conversion metrics over the window.
func (a *Aggregator) ArticleReport(siteID, articleID int, timeRange string) ArticleReport {
	window, _ := ParseTimeRange(timeRange)
	since := time.Now().Add(-window)

	views := a.countOrZero("views", func() (int64, error) {
		return a.store.Analytics.CountViews(siteID, &articleID, since)
	})
	clicks := a.countOrZero("clicks", func() (int64, error) {
		return a.store.Analytics.CountExternalClicks(siteID, &articleID, since)
	})

	return ArticleReport{
		ArticleID:      articleID,
		TotalViews:     views,
		TotalClicks:    clicks,
		ConversionRate: conversionRate(clicks, views),
	}
}

// SiteReport computes a site's full conversion report. Every sub-aggregate
// degrades independently: a failed query contributes zeroed values and the
// report still returns.
func (a *Aggregator) SiteReport(siteID int, timeRange string) SiteReport {
	window, _ := ParseTimeRange(timeRange)
	since := time.Now().Add(-window)

	report := SiteReport{SiteID: siteID, TimeRange: timeRange}

	report.TotalViews = a.countOrZero("site views", func() (int64, error) {
		return a.store.Analytics.CountViews(siteID, nil, since)
	})
	report.TotalClicks = a.countOrZero("site clicks", func() (int64, error) {
		return a.store.Analytics.CountExternalClicks(siteID, nil, since)
	})
	report.TotalEmails = a.countOrZero("site emails", func() (int64, error) {
		return a.store.Emails.CountActiveSince(siteID, since)
	})

	if report.TotalViews > 0 {
		report.ClickThroughRate = round2(float64(report.TotalClicks) / float64(report.TotalViews) * 100)
		report.EmailConversionRate = round2(float64(report.TotalEmails) / float64(report.TotalViews) * 100)
	}

	report.Articles = a.articleReports(siteID, since)
	report.AverageConversionRate = averageRate(report.Articles)
	report.TopWidgets = a.topWidgets(siteID, since)
	report.Series = a.daySeries(siteID, since)

	return report
}

// averageRate is the mean of the already-clamped per-article rates,
// re-clamped to 100.
func averageRate(articles []ArticleReport) float64 {
	if len(articles) == 0 {
		return 0
	}
	var sum float64
	for _, ar := range articles {
		sum += ar.ConversionRate
	}
	avg := sum / float64(len(articles))
	if avg > 100 {
		return 100
	}
	return round2(avg)
}

func (a *Aggregator) articleReports(siteID int, since time.Time) []ArticleReport {
	articles, err := a.store.Articles.GetAllBySite(siteID, false)
	if err != nil {
		log.Printf("Error loading articles for site report %d: %v", siteID, err)
		return nil
	}

	reports := make([]ArticleReport, 0, len(articles))
	for _, article := range articles {
		articleID := article.ID
		views := a.countOrZero("article views", func() (int64, error) {
			return a.store.Analytics.CountViews(siteID, &articleID, since)
		})
		clicks := a.countOrZero("article clicks", func() (int64, error) {
			return a.store.Analytics.CountExternalClicks(siteID, &articleID, since)
		})
		reports = append(reports, ArticleReport{
			ArticleID:      articleID,
			TotalViews:     views,
			TotalClicks:    clicks,
			ConversionRate: conversionRate(clicks, views),
		})
	}
	return reports
}

func (a *Aggregator) topWidgets(siteID int, since time.Time) []WidgetStat {
	rows, err := a.store.Analytics.TopWidgets(siteID, since, 10)
	if err != nil {
		log.Printf("Error loading top widgets for site %d: %v", siteID, err)
		return nil
	}

	stats := make([]WidgetStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, WidgetStat{
			WidgetType: row.WidgetType,
			WidgetID:   row.WidgetID,
			Clicks:     row.Count,
		})
	}
	return stats
}

// daySeries builds a zero-filled day-bucketed series for charting: every
// calendar date the window touches appears, with real counts overlaid where
// they exist. The window rarely starts at midnight, so the series has one
// more point than the window has days - a 24h lookback spans two dates.
func (a *Aggregator) daySeries(siteID int, since time.Time) []DayPoint {
	start := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, since.Location())
	var series []DayPoint
	for d := start; !d.After(time.Now()); d = d.AddDate(0, 0, 1) {
		series = append(series, DayPoint{Date: d.Format("2006-01-02")})
	}

	views, err := a.store.Analytics.ViewsByDay(siteID, since)
	if err != nil {
		log.Printf("Error loading view series for site %d: %v", siteID, err)
		views = nil
	}
	clicks, err := a.store.Analytics.ClicksByDay(siteID, since)
	if err != nil {
		log.Printf("Error loading click series for site %d: %v", siteID, err)
		clicks = nil
	}

	for _, row := range views {
		for i := range series {
			if series[i].Date == row.Date {
				series[i].Views = row.Count
				break
			}
		}
	}
	for _, row := range clicks {
		for i := range series {
			if series[i].Date == row.Date {
				series[i].Clicks = row.Count
				break
			}
		}
	}

	return series
}

// countOrZero runs one sub-aggregate and zeroes it on failure so a missing
// table or column on an older deployment never fails the whole report.
func (a *Aggregator) countOrZero(what string, fn func() (int64, error)) int64 {
	count, err := fn()
	if err != nil {
		if a.store.Analytics.Enabled() {
			log.Printf("Error computing %s: %v", what, err)
		}
		return 0
	}
	return count
}
