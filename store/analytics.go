package store

import (
	"errors"
	"time"

	"offerpress/models"

	"gorm.io/gorm"
)

// AnalyticsQueries reads and writes the append-only event tables in the
// analytics database. The bundle tolerates a nil database: writes become
// no-ops and reads return zero values, so a deployment without an analytics
// db still serves every request.
type AnalyticsQueries struct {
	db *gorm.DB
}

var errAnalyticsDisabled = errors.New("analytics database not configured")

func (q *AnalyticsQueries) Enabled() bool {
	return q != nil && q.db != nil
}

func (q *AnalyticsQueries) InsertView(event *models.ViewEvent) error {
	if !q.Enabled() {
		return errAnalyticsDisabled
	}
	return q.db.Create(event).Error
}

func (q *AnalyticsQueries) InsertClick(event *models.ClickEvent) error {
	if !q.Enabled() {
		return errAnalyticsDisabled
	}
	return q.db.Create(event).Error
}

// HasRecentView reports whether this session already produced a view for the
// article inside the throttle window, so refreshes do not inflate counts.
func (q *AnalyticsQueries) HasRecentView(sessionID string, siteID, articleID int, window time.Duration) bool {
	if !q.Enabled() {
		return false
	}
	var recent models.ViewEvent
	err := q.db.Where(
		"session_id = ? AND site_id = ? AND article_id = ? AND created_at > ?",
		sessionID, siteID, articleID, time.Now().Add(-window),
	).First(&recent).Error
	return err == nil
}

func (q *AnalyticsQueries) CountViews(siteID int, articleID *int, since time.Time) (int64, error) {
	if !q.Enabled() {
		return 0, errAnalyticsDisabled
	}
	query := q.db.Model(&models.ViewEvent{}).
		Where("site_id = ? AND created_at >= ?", siteID, since)
	if articleID != nil {
		query = query.Where("article_id = ?", *articleID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountExternalClicks counts only conversion-relevant clicks; internal and
// anchor clicks are logged but excluded from conversion math.
func (q *AnalyticsQueries) CountExternalClicks(siteID int, articleID *int, since time.Time) (int64, error) {
	if !q.Enabled() {
		return 0, errAnalyticsDisabled
	}
	query := q.db.Model(&models.ClickEvent{}).
		Where("site_id = ? AND is_external = ? AND created_at >= ?", siteID, true, since)
	if articleID != nil {
		query = query.Where("article_id = ?", *articleID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// DayCount is one day bucket of a charting series.
type DayCount struct {
	Date  string
	Count int64
}

func (q *AnalyticsQueries) ViewsByDay(siteID int, since time.Time) ([]DayCount, error) {
	if !q.Enabled() {
		return nil, errAnalyticsDisabled
	}
	var results []DayCount
	err := q.db.Model(&models.ViewEvent{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("site_id = ? AND created_at >= ?", siteID, since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results).Error
	return results, err
}

func (q *AnalyticsQueries) ClicksByDay(siteID int, since time.Time) ([]DayCount, error) {
	if !q.Enabled() {
		return nil, errAnalyticsDisabled
	}
	var results []DayCount
	err := q.db.Model(&models.ClickEvent{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("site_id = ? AND is_external = ? AND created_at >= ?", siteID, true, since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results).Error
	return results, err
}

// WidgetClicks is one row of the top-widgets leaderboard.
type WidgetClicks struct {
	WidgetType string
	WidgetID   *int
	Count      int64
}

func (q *AnalyticsQueries) TopWidgets(siteID int, since time.Time, limit int) ([]WidgetClicks, error) {
	if !q.Enabled() {
		return nil, errAnalyticsDisabled
	}
	var results []WidgetClicks
	err := q.db.Model(&models.ClickEvent{}).
		Select("widget_type, widget_id, COUNT(*) as count").
		Where("site_id = ? AND is_external = ? AND created_at >= ?", siteID, true, since).
		Group("widget_type, widget_id").
		Order("count DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}
