package store

import (
	"regexp"

	"offerpress/common"
	"offerpress/models"

	"gorm.io/gorm"
)

type NavigationTemplateQueries struct {
	db *gorm.DB
}

// NavLink is one entry parsed out of a template's markdown links blob.
type NavLink struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// markdown links in the form [text](url)
var navLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^\)]+)\)`)

// ParseNavLinks extracts the ordered links from a template's markdown blob.
func ParseNavLinks(links string) []NavLink {
	if links == "" {
		return nil
	}

	matches := navLinkPattern.FindAllStringSubmatch(links, -1)

	var navLinks []NavLink
	for _, match := range matches {
		if len(match) == 3 {
			navLinks = append(navLinks, NavLink{Text: match[1], URL: match[2]})
		}
	}
	return navLinks
}

func (q *NavigationTemplateQueries) GetByID(id int) (*models.NavigationTemplate, error) {
	var tpl models.NavigationTemplate
	if err := q.db.First(&tpl, "id = ?", id).Error; err != nil {
		return nil, translate(err, "navigation template")
	}
	return &tpl, nil
}

// GetAll returns global templates plus the site's own when siteID is given.
func (q *NavigationTemplateQueries) GetAll(siteID *int) ([]models.NavigationTemplate, error) {
	query := q.db.Order("name ASC")
	if siteID == nil {
		query = query.Where("site_id IS NULL")
	} else {
		query = query.Where("site_id IS NULL OR site_id = ?", *siteID)
	}
	var templates []models.NavigationTemplate
	err := query.Find(&templates).Error
	return templates, translate(err, "navigation template")
}

func (q *NavigationTemplateQueries) Create(tpl *models.NavigationTemplate) error {
	if tpl.Name == "" {
		return common.NewValidationError("name", "required")
	}
	return translate(q.db.Create(tpl).Error, "navigation template")
}

func (q *NavigationTemplateQueries) Update(id int, fields map[string]interface{}) (*models.NavigationTemplate, error) {
	tpl, err := q.GetByID(id)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := q.db.Model(tpl).Updates(fields).Error; err != nil {
			return nil, translate(err, "navigation template")
		}
	}
	return q.GetByID(id)
}

func (q *NavigationTemplateQueries) Delete(id int) error {
	tpl, err := q.GetByID(id)
	if err != nil {
		return err
	}
	return translate(q.db.Delete(tpl).Error, "navigation template")
}
