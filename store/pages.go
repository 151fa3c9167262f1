package store

import (
	"offerpress/common"
	"offerpress/models"

	"gorm.io/gorm"
)

type PageQueries struct {
	db *gorm.DB
}

func (q *PageQueries) GetByID(id int) (*models.Page, error) {
	var page models.Page
	if err := q.db.First(&page, "id = ?", id).Error; err != nil {
		return nil, translate(err, "page")
	}
	return &page, nil
}

func (q *PageQueries) GetBySlug(siteID int, slug string) (*models.Page, error) {
	var page models.Page
	err := q.db.Where("site_id = ? AND slug = ?", siteID, slug).First(&page).Error
	if err != nil {
		return nil, translate(err, "page")
	}
	return &page, nil
}

func (q *PageQueries) GetAllBySite(siteID int, publishedOnly bool) ([]models.Page, error) {
	query := q.db.Where("site_id = ?", siteID).Order("created_at DESC")
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	var pages []models.Page
	err := query.Find(&pages).Error
	return pages, translate(err, "page")
}

func (q *PageQueries) Create(page *models.Page) error {
	if page.SiteID == 0 {
		return common.NewValidationError("site_id", "required")
	}
	if page.Slug == "" {
		return common.NewValidationError("slug", "required")
	}
	if page.Title == "" {
		return common.NewValidationError("title", "required")
	}
	if page.Template == "" {
		page.Template = "default"
	}
	return translate(q.db.Create(page).Error, "page")
}

func (q *PageQueries) Update(id int, fields map[string]interface{}) (*models.Page, error) {
	page, err := q.GetByID(id)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		fields["version"] = gorm.Expr("version + 1")
		if err := q.db.Model(page).Updates(fields).Error; err != nil {
			return nil, translate(err, "page")
		}
	}
	return q.GetByID(id)
}

func (q *PageQueries) Delete(id int) error {
	page, err := q.GetByID(id)
	if err != nil {
		return err
	}
	return translate(q.db.Delete(page).Error, "page")
}
