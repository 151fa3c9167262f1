package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"offerpress/analytics"
	"offerpress/attribution"
)

type widgetClickRequest struct {
	SiteID         int    `json:"site_id"`
	ArticleID      *int   `json:"article_id"`
	WidgetID       *int   `json:"widget_id"`
	WidgetType     string `json:"widget_type"`
	DestinationURL string `json:"destination_url"`
	IsExternal     *bool  `json:"is_external"`
	SessionID      string `json:"session_id"`
}

// recordWidgetClick always answers success: attribution is non-critical and
// the visitor's navigation must never be held up or failed by it. A bad
// body is logged and still acknowledged.
func (m *Module) recordWidgetClick(c *gin.Context) {
	var req widgetClickRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SiteID <= 0 {
		log.Printf("Ignoring malformed click payload: %v", err)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	m.recorder.RecordClick(c, attribution.ClickInput{
		SiteID:         req.SiteID,
		ArticleID:      req.ArticleID,
		WidgetID:       req.WidgetID,
		WidgetType:     req.WidgetType,
		DestinationURL: req.DestinationURL,
		IsExternal:     req.IsExternal,
		SessionID:      req.SessionID,
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type viewRequest struct {
	SiteID    int `json:"site_id"`
	ArticleID int `json:"article_id"`
}

func (m *Module) recordView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SiteID <= 0 || req.ArticleID <= 0 {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	m.recorder.TrackView(c, req.SiteID, req.ArticleID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (m *Module) siteAnalytics(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	st := m.storeFor(c)
	if _, err := st.Sites.GetByID(id); err != nil {
		respondError(c, err)
		return
	}

	aggregator := analytics.NewAggregator(st)
	report := aggregator.SiteReport(id, c.Query("timeRange"))
	c.JSON(http.StatusOK, report)
}

func (m *Module) articleAnalytics(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	st := m.storeFor(c)
	article, err := st.Articles.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	aggregator := analytics.NewAggregator(st)
	report := aggregator.ArticleReport(article.SiteID, article.ID, c.Query("timeRange"))
	c.JSON(http.StatusOK, report)
}

func (m *Module) recentActivity(c *gin.Context) {
	entries, err := m.storeFor(c).RecentActivity(50)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
