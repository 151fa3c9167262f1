package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"offerpress/common"
	"offerpress/models"
)

func (m *Module) listPages(c *gin.Context) {
	siteID, err := strconv.Atoi(c.Query("siteId"))
	if err != nil || siteID <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: "siteId query parameter is required"})
		return
	}

	st := m.storeFor(c)

	if slug := c.Query("slug"); slug != "" {
		page, err := st.Pages.GetBySlug(siteID, slug)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
		return
	}

	pages, err := st.Pages.GetAllBySite(siteID, c.Query("published") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pages)
}

type createPageRequest struct {
	SiteID    int    `json:"site_id" binding:"required"`
	Slug      string `json:"slug"`
	Title     string `json:"title" binding:"required"`
	Template  string `json:"template"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

func (m *Module) createPage(c *gin.Context) {
	var req createPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	if req.Slug == "" {
		req.Slug = common.GenerateSlug(req.Title)
	}

	st := m.storeFor(c)
	page := models.Page{
		SiteID:    req.SiteID,
		Slug:      req.Slug,
		Title:     req.Title,
		Template:  req.Template,
		Content:   req.Content,
		Published: req.Published,
	}
	if err := st.Pages.Create(&page); err != nil {
		respondError(c, err)
		return
	}

	st.LogActivity(nil, "create", "page", page.ID, page.Slug)
	c.JSON(http.StatusCreated, page)
}

func (m *Module) getPage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	page, err := m.storeFor(c).Pages.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (m *Module) updatePage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	st := m.storeFor(c)
	page, err := st.Pages.Update(id, patch(body, "slug", "title", "template", "content", "published"))
	if err != nil {
		respondError(c, err)
		return
	}

	st.LogActivity(nil, "update", "page", page.ID, "")
	c.JSON(http.StatusOK, page)
}

func (m *Module) deletePage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	st := m.storeFor(c)
	if err := st.Pages.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	st.LogActivity(nil, "delete", "page", id, "")
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
