package store

import (
	"offerpress/common"
	"offerpress/models"

	"gorm.io/gorm"
)

// SiteQueries is deliberately not tenant-filtered: sites are globally
// addressable by subdomain/domain for public serving.
type SiteQueries struct {
	db *gorm.DB
}

func (q *SiteQueries) GetByID(id int) (*models.Site, error) {
	var site models.Site
	if err := q.db.First(&site, "id = ?", id).Error; err != nil {
		return nil, translate(err, "site")
	}
	return &site, nil
}

func (q *SiteQueries) GetBySubdomain(subdomain string) (*models.Site, error) {
	var site models.Site
	if err := q.db.Where("subdomain = ?", subdomain).First(&site).Error; err != nil {
		return nil, translate(err, "site")
	}
	return &site, nil
}

func (q *SiteQueries) GetByDomain(domain string) (*models.Site, error) {
	var site models.Site
	if err := q.db.Where("domain = ?", domain).First(&site).Error; err != nil {
		return nil, translate(err, "site")
	}
	return &site, nil
}

func (q *SiteQueries) GetAll(publishedOnly bool) ([]models.Site, error) {
	query := q.db.Order("created_at DESC")
	if publishedOnly {
		query = query.Where("status = ?", "published")
	}
	var sites []models.Site
	err := query.Find(&sites).Error
	return sites, translate(err, "site")
}

func (q *SiteQueries) Create(site *models.Site) error {
	if site.Subdomain == "" {
		return common.NewValidationError("subdomain", "required")
	}
	if site.Name == "" {
		return common.NewValidationError("name", "required")
	}
	if site.Status == "" {
		site.Status = "draft"
	}
	return translate(q.db.Create(site).Error, "site")
}

// Update writes only the provided fields and bumps the version counter.
func (q *SiteQueries) Update(id int, fields map[string]interface{}) (*models.Site, error) {
	site, err := q.GetByID(id)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		fields["version"] = gorm.Expr("version + 1")
		if err := q.db.Model(site).Updates(fields).Error; err != nil {
			return nil, translate(err, "site")
		}
	}
	return q.GetByID(id)
}

func (q *SiteQueries) Delete(id int) error {
	site, err := q.GetByID(id)
	if err != nil {
		return err
	}
	return translate(q.db.Delete(site).Error, "site")
}
