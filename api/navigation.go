package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"offerpress/models"
	"offerpress/store"
)

func (m *Module) listNavigationTemplates(c *gin.Context) {
	var siteID *int
	if v := c.Query("siteId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: "siteId must be an integer"})
			return
		}
		siteID = &id
	}

	templates, err := m.storeFor(c).NavigationTemplates.GetAll(siteID)
	if err != nil {
		respondError(c, err)
		return
	}

	// parsed links ride along so admin previews don't reparse markdown
	type templateWithLinks struct {
		models.NavigationTemplate
		ParsedLinks []store.NavLink `json:"parsed_links"`
	}
	out := make([]templateWithLinks, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, templateWithLinks{
			NavigationTemplate: tpl,
			ParsedLinks:        store.ParseNavLinks(tpl.Links),
		})
	}
	c.JSON(http.StatusOK, out)
}

type createNavigationTemplateRequest struct {
	SiteID *int   `json:"site_id"`
	Name   string `json:"name" binding:"required"`
	Links  string `json:"links"`
}

func (m *Module) createNavigationTemplate(c *gin.Context) {
	var req createNavigationTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	st := m.storeFor(c)
	tpl := models.NavigationTemplate{
		SiteID: req.SiteID,
		Name:   req.Name,
		Links:  req.Links,
	}
	if err := st.NavigationTemplates.Create(&tpl); err != nil {
		respondError(c, err)
		return
	}

	st.LogActivity(nil, "create", "navigation_template", tpl.ID, tpl.Name)
	c.JSON(http.StatusCreated, tpl)
}
