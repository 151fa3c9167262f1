package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"offerpress/models"
)

func (m *Module) listSites(c *gin.Context) {
	st := m.storeFor(c)

	if subdomain := c.Query("subdomain"); subdomain != "" {
		site, err := st.Sites.GetBySubdomain(subdomain)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, site)
		return
	}

	if domain := c.Query("domain"); domain != "" {
		site, err := st.Sites.GetByDomain(domain)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, site)
		return
	}

	sites, err := st.Sites.GetAll(c.Query("publishedOnly") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sites)
}

type createSiteRequest struct {
	Name      string `json:"name" binding:"required"`
	Subdomain string `json:"subdomain" binding:"required"`
	Domain    string `json:"domain"`
	Status    string `json:"status"`
}

func (m *Module) createSite(c *gin.Context) {
	var req createSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	st := m.storeFor(c)
	site := models.Site{
		TenantID:  st.TenantID(),
		Name:      req.Name,
		Subdomain: req.Subdomain,
		Domain:    req.Domain,
		Status:    req.Status,
	}
	if err := st.Sites.Create(&site); err != nil {
		respondError(c, err)
		return
	}

	st.LogActivity(nil, "create", "site", site.ID, fmt.Sprintf("subdomain=%s", site.Subdomain))
	c.JSON(http.StatusCreated, site)
}

func (m *Module) getSite(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	site, err := m.storeFor(c).Sites.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}

func (m *Module) updateSite(c *gin.Context) {
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
	site, err := st.Sites.Update(id, patch(body, "name", "subdomain", "domain", "status"))
	if err != nil {
		respondError(c, err)
		return
	}

	st.LogActivity(nil, "update", "site", site.ID, "")
	c.JSON(http.StatusOK, site)
}

func (m *Module) deleteSite(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	st := m.storeFor(c)
	if err := st.Sites.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	st.LogActivity(nil, "delete", "site", id, "")
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
