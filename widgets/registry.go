package widgets

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"offerpress/cache"
	"offerpress/common"
	"offerpress/models"
	"offerpress/store"
)

// RenderCacheTTL is how long a successful render may be served from cache.
const RenderCacheTTL = 5 * time.Minute

// Registry manages widget definitions and their placements on sites and
// pages, and renders a placement to markup. Persistence goes through the
// store's widget bundle; the registry adds config validation at the write
// boundary and best-effort rendering.
type Registry struct {
	queries *store.WidgetQueries
}

func NewRegistry(queries *store.WidgetQueries) *Registry {
	return &Registry{queries: queries}
}

func (r *Registry) Definitions(categoryID *int) ([]models.WidgetDefinition, error) {
	return r.queries.Definitions(categoryID)
}

func (r *Registry) Definition(id int) (*models.WidgetDefinition, error) {
	return r.queries.DefinitionByID(id)
}

// DefinitionByType resolves a definition by its stable type key.
func (r *Registry) DefinitionByType(typeKey string) (*models.WidgetDefinition, error) {
	return r.queries.DefinitionByTypeKey(typeKey)
}

// Register upserts a definition by type key. The default config, when
// present, must itself be a valid config of the definition's type.
func (r *Registry) Register(def *models.WidgetDefinition) error {
	if def.DefaultConfig != "" {
		cfg, err := ParseConfig([]byte(def.DefaultConfig))
		if err != nil {
			return err
		}
		if cfg.Type != def.TypeKey {
			return common.NewValidationError("default_config",
				fmt.Sprintf("config type %q does not match definition %q", cfg.Type, def.TypeKey))
		}
	}
	return r.queries.UpsertDefinition(def)
}

func (r *Registry) Instances(siteID int, pageID *int) ([]models.WidgetInstance, error) {
	return r.queries.Instances(siteID, pageID)
}

// CreateInstance places a definition on a site or page. The instance config
// is validated merged with the definition's defaults, so a required field
// may come from either side - but never be missing at render time.
func (r *Registry) CreateInstance(definitionID, siteID int, pageID *int, config json.RawMessage) (*models.WidgetInstance, error) {
	def, err := r.queries.DefinitionByID(definitionID)
	if err != nil {
		return nil, err
	}
	if !def.Active {
		return nil, common.NewValidationError("definition_id", "widget definition is inactive")
	}

	raw, err := r.validateAgainst(def, config)
	if err != nil {
		return nil, err
	}

	instance := &models.WidgetInstance{
		DefinitionID: def.ID,
		SiteID:       siteID,
		PageID:       pageID,
		Config:       raw,
		Enabled:      true,
	}
	if err := r.queries.CreateInstance(instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// UpdateInstance replaces the instance's whole config blob (not a patch).
func (r *Registry) UpdateInstance(id int, config json.RawMessage) (*models.WidgetInstance, error) {
	instance, err := r.queries.InstanceByID(id)
	if err != nil {
		return nil, err
	}
	def, err := r.queries.DefinitionByID(instance.DefinitionID)
	if err != nil {
		return nil, err
	}

	raw, err := r.validateAgainst(def, config)
	if err != nil {
		return nil, err
	}

	updated, err := r.queries.UpdateInstanceConfig(id, raw)
	if err != nil {
		return nil, err
	}
	cache.Clear(id)
	return updated, nil
}

func (r *Registry) DeleteInstance(id int) error {
	if err := r.queries.DeleteInstance(id); err != nil {
		return err
	}
	cache.Clear(id)
	return nil
}

// validateAgainst checks the supplied config merged under the definition's
// defaults, enforcing the type tag matches the definition. It returns the
// raw override to store - defaults stay in the definition, not the row.
func (r *Registry) validateAgainst(def *models.WidgetDefinition, config json.RawMessage) (string, error) {
	raw := strings.TrimSpace(string(config))
	if raw == "" {
		raw = fmt.Sprintf(`{"type":%q}`, def.TypeKey)
	}

	merged, err := MergeConfig(def.DefaultConfig, raw)
	if err != nil {
		return "", common.NewValidationError("config", "not a JSON object")
	}
	cfg, err := ParseConfig(merged)
	if err != nil {
		return "", err
	}
	if cfg.Type != def.TypeKey {
		return "", common.NewValidationError("type",
			fmt.Sprintf("config type %q does not match definition %q", cfg.Type, def.TypeKey))
	}
	return raw, nil
}

// Render produces markup for one placement. It is on a best-effort output
// path: any failure - missing instance, missing definition, bad config -
// degrades to an inline diagnostic comment so assembly of the surrounding
// page never aborts. Successful renders are cached per instance id.
func (r *Registry) Render(instanceID int) string {
	if cached, found := cache.Read(instanceID, RenderCacheTTL); found {
		return cached
	}

	instance, err := r.queries.InstanceByID(instanceID)
	if err != nil {
		return placeholder(instanceID, "instance not found")
	}
	if !instance.Enabled {
		return ""
	}

	def, err := r.queries.DefinitionByID(instance.DefinitionID)
	if err != nil {
		return placeholder(instanceID, "definition not found")
	}

	merged, err := MergeConfig(def.DefaultConfig, instance.Config)
	if err != nil {
		return placeholder(instanceID, "invalid config")
	}
	cfg, err := ParseConfig(merged)
	if err != nil {
		return placeholder(instanceID, "invalid config")
	}

	html, err := renderConfig(cfg)
	if err != nil {
		log.Printf("Error rendering widget instance %d: %v", instanceID, err)
		return placeholder(instanceID, "render failed")
	}

	if err := cache.Write(instanceID, html); err != nil {
		log.Printf("Error caching widget instance %d: %v", instanceID, err)
	}
	return html
}

// RenderAll renders every enabled placement for a site/page in sort order,
// skipping failures widget by widget.
func (r *Registry) RenderAll(siteID int, pageID *int) string {
	instances, err := r.queries.Instances(siteID, pageID)
	if err != nil {
		log.Printf("Error loading widget instances for site %d: %v", siteID, err)
		return ""
	}

	var b strings.Builder
	for _, instance := range instances {
		if !instance.Enabled {
			continue
		}
		b.WriteString(r.Render(instance.ID))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Registry) Categories(siteID *int) ([]models.WidgetCategory, error) {
	return r.queries.Categories(siteID)
}

func (r *Registry) CreateCategory(category *models.WidgetCategory) error {
	return r.queries.CreateCategory(category)
}

func (r *Registry) DeleteCategory(id int) error {
	return r.queries.DeleteCategory(id)
}

func placeholder(instanceID int, reason string) string {
	return fmt.Sprintf("<!-- widget %d unavailable: %s -->", instanceID, reason)
}
