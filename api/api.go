package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"offerpress/attribution"
	"offerpress/common"
	"offerpress/email"
	"offerpress/store"
	"offerpress/widgets"
)

// Module is the JSON API surface. Every handler builds a query factory
// scoped to the request's tenant (X-Tenant-Id header, optional).
type Module struct {
	db          *gorm.DB
	analyticsDB *gorm.DB
	registry    *widgets.Registry
	recorder    *attribution.Recorder
	mailer      *email.Mailer
}

func NewModule(db, analyticsDB *gorm.DB, registry *widgets.Registry, recorder *attribution.Recorder, mailer *email.Mailer) *Module {
	return &Module{
		db:          db,
		analyticsDB: analyticsDB,
		registry:    registry,
		recorder:    recorder,
		mailer:      mailer,
	}
}

func (m *Module) RegisterRoutes(router *gin.Engine) {
	router.Use(TenantMiddleware())

	router.GET("/sites", m.listSites)
	router.POST("/sites", m.createSite)
	router.GET("/sites/:id", m.getSite)
	router.PUT("/sites/:id", m.updateSite)
	router.DELETE("/sites/:id", m.deleteSite)

	router.GET("/articles", m.listArticles)
	router.POST("/articles", m.createArticle)
	router.GET("/articles/:id", m.getArticle)
	router.PUT("/articles/:id", m.updateArticle)
	router.DELETE("/articles/:id", m.deleteArticle)

	router.GET("/pages", m.listPages)
	router.POST("/pages", m.createPage)
	router.GET("/pages/:id", m.getPage)
	router.PUT("/pages/:id", m.updatePage)
	router.DELETE("/pages/:id", m.deletePage)

	router.GET("/widgets", m.listWidgetDefinitions)
	router.POST("/widgets", m.widgetAction)
	router.DELETE("/widgets", m.deleteWidgetInstance)
	router.GET("/widgets/instances", m.listWidgetInstances)
	router.GET("/widgets/render", m.renderWidget)

	router.GET("/widget-categories", m.listWidgetCategories)
	router.POST("/widget-categories", m.createWidgetCategory)
	router.DELETE("/widget-categories/:id", m.deleteWidgetCategory)

	router.GET("/navigation-templates", m.listNavigationTemplates)
	router.POST("/navigation-templates", m.createNavigationTemplate)

	router.POST("/analytics/widget-click", m.recordWidgetClick)
	router.POST("/analytics/view", m.recordView)
	router.GET("/analytics/site/:id", m.siteAnalytics)
	router.GET("/analytics/article/:id", m.articleAnalytics)

	router.POST("/subscribe", m.subscribe)
	router.POST("/unsubscribe", m.unsubscribe)

	router.GET("/activity", m.recentActivity)

	public := router.Group("/public")
	public.Use(common.ResolveSiteHost())
	{
		public.GET("/site", m.publicSite)
		public.GET("/articles/:slug", m.publicArticle)
	}

	router.POST("/login", m.login)
	router.POST("/logout", m.logout)

	router.GET("/users", m.listUsers)
	router.POST("/users", m.createUser)
	router.GET("/users/:id", m.getUser)
	router.PUT("/users/:id", m.updateUser)
	router.DELETE("/users/:id", m.deleteUser)
}

// TenantMiddleware reads the optional X-Tenant-Id header. Its absence is a
// valid context (nil tenant), not an error.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v := c.GetHeader("X-Tenant-Id"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				c.Set("tenant_id", id)
			}
		}
		c.Next()
	}
}

func tenantID(c *gin.Context) *int {
	if v, exists := c.Get("tenant_id"); exists {
		id := v.(int)
		return &id
	}
	return nil
}

// storeFor builds the request's query factory scoped to its tenant.
func (m *Module) storeFor(c *gin.Context) *store.Store {
	return store.New(m.db, m.analyticsDB, tenantID(c))
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// respondError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is logged in full and surfaced as a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case common.IsValidation(err):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
	case common.IsConflict(err):
		c.JSON(http.StatusConflict, errorResponse{Error: "conflict", Details: err.Error()})
	case common.IsNotFound(err):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case common.IsUnauthenticated(err):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case common.IsPermissionDenied(err):
		c.JSON(http.StatusForbidden, errorResponse{Error: "forbidden"})
	default:
		log.Printf("Internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// patch copies only the allowed keys out of a decoded JSON body, giving
// update handlers partial-patch semantics.
func patch(body map[string]interface{}, allowed ...string) map[string]interface{} {
	fields := map[string]interface{}{}
	for _, key := range allowed {
		if v, ok := body[key]; ok {
			fields[key] = v
		}
	}
	return fields
}
