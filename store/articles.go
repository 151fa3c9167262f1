package store

import (
	"offerpress/common"
	"offerpress/models"

	"gorm.io/gorm"
)

// ArticleQueries is scoped only to the owning site, never to a tenant.
type ArticleQueries struct {
	db *gorm.DB
}

func (q *ArticleQueries) GetByID(id int) (*models.Article, error) {
	var article models.Article
	if err := q.db.First(&article, "id = ?", id).Error; err != nil {
		return nil, translate(err, "article")
	}
	return &article, nil
}

func (q *ArticleQueries) GetBySlug(siteID int, slug string) (*models.Article, error) {
	var article models.Article
	err := q.db.Where("site_id = ? AND slug = ?", siteID, slug).First(&article).Error
	if err != nil {
		return nil, translate(err, "article")
	}
	return &article, nil
}

func (q *ArticleQueries) GetAllBySite(siteID int, publishedOnly bool) ([]models.Article, error) {
	query := q.db.Where("site_id = ?", siteID).Order("created_at DESC")
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	var articles []models.Article
	err := query.Find(&articles).Error
	return articles, translate(err, "article")
}

func (q *ArticleQueries) GetHeroes(siteID int) ([]models.Article, error) {
	var articles []models.Article
	err := q.db.Where("site_id = ? AND hero = ? AND published = ?", siteID, true, true).
		Order("created_at DESC").
		Find(&articles).Error
	return articles, translate(err, "article")
}

func (q *ArticleQueries) Create(article *models.Article) error {
	if article.SiteID == 0 {
		return common.NewValidationError("site_id", "required")
	}
	if article.Slug == "" {
		return common.NewValidationError("slug", "required")
	}
	if article.Title == "" {
		return common.NewValidationError("title", "required")
	}
	return translate(q.db.Create(article).Error, "article")
}

func (q *ArticleQueries) Update(id int, fields map[string]interface{}) (*models.Article, error) {
	article, err := q.GetByID(id)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		fields["version"] = gorm.Expr("version + 1")
		if err := q.db.Model(article).Updates(fields).Error; err != nil {
			return nil, translate(err, "article")
		}
	}
	return q.GetByID(id)
}

func (q *ArticleQueries) Delete(id int) error {
	article, err := q.GetByID(id)
	if err != nil {
		return err
	}
	return translate(q.db.Delete(article).Error, "article")
}

// IncrementViewCount bumps the denormalized per-article counter. The counter
// and the view event table are independently sourced and can disagree; the
// aggregator clamps for exactly that reason.
func (q *ArticleQueries) IncrementViewCount(id int) error {
	return q.db.Model(&models.Article{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (q *ArticleQueries) IncrementClickCount(id int) error {
	return q.db.Model(&models.Article{}).Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + 1")).Error
}
