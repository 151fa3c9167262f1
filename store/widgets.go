package store

import (
	"offerpress/common"
	"offerpress/models"

	"gorm.io/gorm"
)

// WidgetQueries holds the persistence side of the widget registry:
// definitions, instances and categories. Config validation and rendering
// live in the widgets package on top of this bundle.
type WidgetQueries struct {
	db *gorm.DB
}

func (q *WidgetQueries) Definitions(categoryID *int) ([]models.WidgetDefinition, error) {
	query := q.db.Where("active = ?", true).Order("name ASC")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	var defs []models.WidgetDefinition
	err := query.Find(&defs).Error
	return defs, translate(err, "widget definition")
}

func (q *WidgetQueries) DefinitionByID(id int) (*models.WidgetDefinition, error) {
	var def models.WidgetDefinition
	if err := q.db.First(&def, "id = ?", id).Error; err != nil {
		return nil, translate(err, "widget definition")
	}
	return &def, nil
}

func (q *WidgetQueries) DefinitionByTypeKey(typeKey string) (*models.WidgetDefinition, error) {
	var def models.WidgetDefinition
	if err := q.db.Where("type_key = ?", typeKey).First(&def).Error; err != nil {
		return nil, translate(err, "widget definition")
	}
	return &def, nil
}

// UpsertDefinition registers a definition by its stable type key: the same
// operation creates a new definition or updates an existing one.
func (q *WidgetQueries) UpsertDefinition(def *models.WidgetDefinition) error {
	if def.TypeKey == "" {
		return common.NewValidationError("type_key", "required")
	}
	if def.Name == "" {
		return common.NewValidationError("name", "required")
	}

	var existing models.WidgetDefinition
	err := q.db.Where("type_key = ?", def.TypeKey).First(&existing).Error
	if err == nil {
		def.ID = existing.ID
		def.CreatedAt = existing.CreatedAt
		return translate(q.db.Save(def).Error, "widget definition")
	}
	if err != gorm.ErrRecordNotFound {
		return translate(err, "widget definition")
	}
	return translate(q.db.Create(def).Error, "widget definition")
}

// Instances returns placements for a site ordered for rendering. A nil
// pageID returns only site-wide rows (page_id IS NULL); a concrete pageID
// returns site-wide rows plus that page's own. Duplicate sort orders are an
// accepted tie; the id tiebreak keeps rendering deterministic.
func (q *WidgetQueries) Instances(siteID int, pageID *int) ([]models.WidgetInstance, error) {
	query := q.db.Where("site_id = ?", siteID)
	if pageID == nil {
		query = query.Where("page_id IS NULL")
	} else {
		query = query.Where("page_id IS NULL OR page_id = ?", *pageID)
	}

	var instances []models.WidgetInstance
	err := query.Order("sort_order ASC, id ASC").Find(&instances).Error
	return instances, translate(err, "widget instance")
}

func (q *WidgetQueries) InstanceByID(id int) (*models.WidgetInstance, error) {
	var instance models.WidgetInstance
	if err := q.db.First(&instance, "id = ?", id).Error; err != nil {
		return nil, translate(err, "widget instance")
	}
	return &instance, nil
}

// CreateInstance inserts a placement with a server-assigned sort order,
// max+1 within its (site, page) scope, computed inside the insert
// transaction so concurrent creates do not hand out the same slot.
func (q *WidgetQueries) CreateInstance(instance *models.WidgetInstance) error {
	if instance.SiteID == 0 {
		return common.NewValidationError("site_id", "required")
	}
	if instance.DefinitionID == 0 {
		return common.NewValidationError("definition_id", "required")
	}

	err := q.db.Transaction(func(tx *gorm.DB) error {
		scope := tx.Model(&models.WidgetInstance{}).Where("site_id = ?", instance.SiteID)
		if instance.PageID == nil {
			scope = scope.Where("page_id IS NULL")
		} else {
			scope = scope.Where("page_id = ?", *instance.PageID)
		}

		var maxOrder int
		if err := scope.Select("COALESCE(MAX(sort_order), 0)").Scan(&maxOrder).Error; err != nil {
			return err
		}
		instance.SortOrder = maxOrder + 1
		return tx.Create(instance).Error
	})
	return translate(err, "widget instance")
}

// UpdateInstanceConfig replaces the whole config blob. This is a full
// replace, not a patch: the caller sends the complete configuration.
func (q *WidgetQueries) UpdateInstanceConfig(id int, config string) (*models.WidgetInstance, error) {
	instance, err := q.InstanceByID(id)
	if err != nil {
		return nil, err
	}
	if err := q.db.Model(instance).Update("config", config).Error; err != nil {
		return nil, translate(err, "widget instance")
	}
	return q.InstanceByID(id)
}

func (q *WidgetQueries) UpdateInstance(id int, fields map[string]interface{}) (*models.WidgetInstance, error) {
	instance, err := q.InstanceByID(id)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := q.db.Model(instance).Updates(fields).Error; err != nil {
			return nil, translate(err, "widget instance")
		}
	}
	return q.InstanceByID(id)
}

func (q *WidgetQueries) DeleteInstance(id int) error {
	instance, err := q.InstanceByID(id)
	if err != nil {
		return err
	}
	return translate(q.db.Delete(instance).Error, "widget instance")
}

func (q *WidgetQueries) Categories(siteID *int) ([]models.WidgetCategory, error) {
	query := q.db.Order("sort_order ASC, name ASC")
	if siteID == nil {
		query = query.Where("site_id IS NULL")
	} else {
		query = query.Where("site_id IS NULL OR site_id = ?", *siteID)
	}
	var categories []models.WidgetCategory
	err := query.Find(&categories).Error
	return categories, translate(err, "widget category")
}

func (q *WidgetQueries) CreateCategory(category *models.WidgetCategory) error {
	if category.Name == "" {
		return common.NewValidationError("name", "required")
	}
	return translate(q.db.Create(category).Error, "widget category")
}

// DeleteCategory removes a category and reassigns its definitions'
// category_id to NULL; the widgets themselves survive.
func (q *WidgetQueries) DeleteCategory(id int) error {
	var category models.WidgetCategory
	if err := q.db.First(&category, "id = ?", id).Error; err != nil {
		return translate(err, "widget category")
	}

	err := q.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.WidgetDefinition{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	return translate(err, "widget category")
}
