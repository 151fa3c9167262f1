package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"offerpress/models"
	"offerpress/widgets"
)

func (m *Module) listWidgetDefinitions(c *gin.Context) {
	if typeKey := c.Query("typeKey"); typeKey != "" {
		def, err := m.registry.DefinitionByType(typeKey)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, def)
		return
	}

	var categoryID *int
	if v := c.Query("category"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: "category must be an integer"})
			return
		}
		categoryID = &id
	}

	defs, err := m.registry.Definitions(categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, defs)
}

// widgetActionRequest is the action-dispatched write body for /widgets.
type widgetActionRequest struct {
	Action string `json:"action" binding:"required"`

	// register_widget
	TypeKey       string          `json:"type_key"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	CategoryID    *int            `json:"category_id"`
	DefaultConfig json.RawMessage `json:"default_config"`
	Active        *bool           `json:"active"`
	Global        *bool           `json:"global"`

	// create_instance / update_instance
	WidgetDefinitionID int             `json:"widget_definition_id"`
	SiteID             int             `json:"site_id"`
	PageID             *int            `json:"page_id"`
	InstanceID         int             `json:"instance_id"`
	Config             json.RawMessage `json:"config"`
}

func (m *Module) widgetAction(c *gin.Context) {
	var req widgetActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	switch req.Action {
	case "register_widget":
		m.registerWidget(c, req)
	case "create_instance":
		m.createWidgetInstance(c, req)
	case "update_instance":
		m.updateWidgetInstance(c, req)
	default:
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: "unknown action: " + req.Action})
	}
}

func (m *Module) registerWidget(c *gin.Context, req widgetActionRequest) {
	def := models.WidgetDefinition{
		TypeKey:       req.TypeKey,
		Name:          req.Name,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		DefaultConfig: string(req.DefaultConfig),
		Active:        true,
		Global:        true,
	}
	if req.Active != nil {
		def.Active = *req.Active
	}
	if req.Global != nil {
		def.Global = *req.Global
	}

	if err := m.registry.Register(&def); err != nil {
		respondError(c, err)
		return
	}

	st := m.storeFor(c)
	st.LogActivity(nil, "register", "widget_definition", def.ID, def.TypeKey)
	c.JSON(http.StatusOK, def)
}

func (m *Module) createWidgetInstance(c *gin.Context, req widgetActionRequest) {
	instance, err := m.registry.CreateInstance(req.WidgetDefinitionID, req.SiteID, req.PageID, req.Config)
	if err != nil {
		respondError(c, err)
		return
	}

	st := m.storeFor(c)
	st.LogActivity(nil, "create", "widget_instance", instance.ID, "")
	c.JSON(http.StatusCreated, instance)
}

func (m *Module) updateWidgetInstance(c *gin.Context, req widgetActionRequest) {
	instance, err := m.registry.UpdateInstance(req.InstanceID, req.Config)
	if err != nil {
		respondError(c, err)
		return
	}

	st := m.storeFor(c)
	st.LogActivity(nil, "update", "widget_instance", instance.ID, "")
	c.JSON(http.StatusOK, instance)
}

func (m *Module) deleteWidgetInstance(c *gin.Context) {
	instanceID, err := strconv.Atoi(c.Query("instanceId"))
	if err != nil || instanceID <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: "instanceId query parameter is required"})
		return
	}

	if err := m.registry.DeleteInstance(instanceID); err != nil {
		respondError(c, err)
		return
	}

	st := m.storeFor(c)
	st.LogActivity(nil, "delete", "widget_instance", instanceID, "")
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (m *Module) listWidgetInstances(c *gin.Context) {
	siteID, err := strconv.Atoi(c.Query("siteId"))
	if err != nil || siteID <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: "siteId query parameter is required"})
		return
	}

	var pageID *int
	if v := c.Query("pageId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: "pageId must be an integer"})
			return
		}
		pageID = &id
	}

	instances, err := m.registry.Instances(siteID, pageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, instances)
}

// renderWidget serves a placement's markup. The render path never errors:
// failures come back as inline diagnostic comments inside the markup.
func (m *Module) renderWidget(c *gin.Context) {
	instanceID, err := strconv.Atoi(c.Query("instanceId"))
	if err != nil || instanceID <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: "instanceId query parameter is required"})
		return
	}

	html := m.registry.Render(instanceID)
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(widgets.RenderCacheTTL.Seconds())))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (m *Module) listWidgetCategories(c *gin.Context) {
	var siteID *int
	if v := c.Query("siteId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: "siteId must be an integer"})
			return
		}
		siteID = &id
	}

	categories, err := m.registry.Categories(siteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

type createCategoryRequest struct {
	SiteID    *int   `json:"site_id"`
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
	Color     string `json:"color"`
}

func (m *Module) createWidgetCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	category := models.WidgetCategory{
		SiteID:    req.SiteID,
		Name:      req.Name,
		SortOrder: req.SortOrder,
		Color:     req.Color,
	}
	if err := m.registry.CreateCategory(&category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (m *Module) deleteWidgetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := m.registry.DeleteCategory(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
