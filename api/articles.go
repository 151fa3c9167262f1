package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"offerpress/common"
	"offerpress/models"
)

func (m *Module) listArticles(c *gin.Context) {
	siteID, err := strconv.Atoi(c.Query("siteId"))
	if err != nil || siteID <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: "siteId query parameter is required"})
		return
	}

	st := m.storeFor(c)

	if slug := c.Query("slug"); slug != "" {
		article, err := st.Articles.GetBySlug(siteID, slug)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, article)
		return
	}

	if c.Query("hero") == "true" {
		heroes, err := st.Articles.GetHeroes(siteID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, heroes)
		return
	}

	articles, err := st.Articles.GetAllBySite(siteID, c.Query("published") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

type createArticleRequest struct {
	SiteID    int    `json:"site_id" binding:"required"`
	Slug      string `json:"slug"`
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
	Hero      bool   `json:"hero"`
}

func (m *Module) createArticle(c *gin.Context) {
	var req createArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	if req.Slug == "" {
		req.Slug = common.GenerateSlug(req.Title)
	}

	st := m.storeFor(c)
	article := models.Article{
		SiteID:    req.SiteID,
		Slug:      req.Slug,
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
		Hero:      req.Hero,
	}
	if err := st.Articles.Create(&article); err != nil {
		respondError(c, err)
		return
	}

	st.LogActivity(nil, "create", "article", article.ID, article.Slug)
	c.JSON(http.StatusCreated, article)
}

func (m *Module) getArticle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	article, err := m.storeFor(c).Articles.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (m *Module) updateArticle(c *gin.Context) {
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
	article, err := st.Articles.Update(id, patch(body, "slug", "title", "content", "published", "hero"))
	if err != nil {
		respondError(c, err)
		return
	}

	st.LogActivity(nil, "update", "article", article.ID, "")
	c.JSON(http.StatusOK, article)
}

func (m *Module) deleteArticle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	st := m.storeFor(c)
	if err := st.Articles.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	st.LogActivity(nil, "delete", "article", id, "")
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
