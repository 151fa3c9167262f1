package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"offerpress/models"
	"offerpress/store"
	"offerpress/widgets"
)

// resolveSite finds the public site for the request host (set by the
// ResolveSiteHost middleware), with a ?subdomain= fallback for local use.
// Resolution is tenant-blind: public serving works the same no matter what
// tenant header (if any) came along.
func (m *Module) resolveSite(c *gin.Context, st *store.Store) (*models.Site, error) {
	if v, exists := c.Get("site_subdomain"); exists {
		return st.Sites.GetBySubdomain(v.(string))
	}
	if v, exists := c.Get("site_domain"); exists {
		return st.Sites.GetByDomain(v.(string))
	}
	if sub := c.Query("subdomain"); sub != "" {
		return st.Sites.GetBySubdomain(sub)
	}
	return nil, errSiteUnresolved
}

var errSiteUnresolved = &siteUnresolvedError{}

type siteUnresolvedError struct{}

func (*siteUnresolvedError) Error() string { return "no site for this host" }

func (m *Module) publicSite(c *gin.Context) {
	st := m.storeFor(c)

	site, err := m.resolveSite(c, st)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "site not found"})
		return
	}
	if site.Status != "published" {
		c.JSON(http.StatusNotFound, errorResponse{Error: "site not found"})
		return
	}

	templates, err := st.NavigationTemplates.GetAll(&site.ID)
	if err != nil {
		templates = nil
	}
	var nav []store.NavLink
	if len(templates) > 0 {
		nav = store.ParseNavLinks(templates[0].Links)
	}

	articles, err := st.Articles.GetAllBySite(site.ID, true)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"site":     site,
		"nav":      nav,
		"articles": articles,
		"widgets":  m.registry.RenderAll(site.ID, nil),
	})
}

func (m *Module) publicArticle(c *gin.Context) {
	st := m.storeFor(c)

	site, err := m.resolveSite(c, st)
	if err != nil || site.Status != "published" {
		c.JSON(http.StatusNotFound, errorResponse{Error: "site not found"})
		return
	}

	article, err := st.Articles.GetBySlug(site.ID, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !article.Published {
		c.JSON(http.StatusNotFound, errorResponse{Error: "article not found"})
		return
	}

	m.recorder.TrackView(c, site.ID, article.ID)

	c.JSON(http.StatusOK, gin.H{
		"site":         site,
		"article":      article,
		"content_html": widgets.RenderMarkdown(article.Content),
		"widgets":      m.registry.RenderAll(site.ID, nil),
	})
}
