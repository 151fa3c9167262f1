package store

import (
	"strings"
	"time"

	"offerpress/common"
	"offerpress/models"

	"gorm.io/gorm"
)

type EmailQueries struct {
	db *gorm.DB
}

func (q *EmailQueries) GetByID(id int) (*models.EmailSubscriber, error) {
	var sub models.EmailSubscriber
	if err := q.db.First(&sub, "id = ?", id).Error; err != nil {
		return nil, translate(err, "subscriber")
	}
	return &sub, nil
}

func (q *EmailQueries) GetBySiteAndEmail(siteID int, email string) (*models.EmailSubscriber, error) {
	var sub models.EmailSubscriber
	err := q.db.Where("site_id = ? AND email = ?", siteID, email).First(&sub).Error
	if err != nil {
		return nil, translate(err, "subscriber")
	}
	return &sub, nil
}

func (q *EmailQueries) GetAllBySite(siteID int) ([]models.EmailSubscriber, error) {
	var subs []models.EmailSubscriber
	err := q.db.Where("site_id = ?", siteID).Order("created_at DESC").Find(&subs).Error
	return subs, translate(err, "subscriber")
}

// Create inserts a subscriber. A duplicate (site_id, email) surfaces as a
// ConflictError; the email service converts that into an already-subscribed
// success rather than an error.
func (q *EmailQueries) Create(siteID int, email, token string) (*models.EmailSubscriber, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if siteID == 0 {
		return nil, common.NewValidationError("site_id", "required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, common.NewValidationError("email", "invalid address")
	}

	sub := models.EmailSubscriber{
		SiteID:            siteID,
		Email:             email,
		Status:            "active",
		ConfirmationToken: token,
	}
	if err := q.db.Create(&sub).Error; err != nil {
		return nil, translate(err, "subscriber")
	}
	return &sub, nil
}

func (q *EmailQueries) UpdateStatus(siteID int, email, status string) error {
	sub, err := q.GetBySiteAndEmail(siteID, email)
	if err != nil {
		return err
	}
	return translate(q.db.Model(sub).Update("status", status).Error, "subscriber")
}

func (q *EmailQueries) Delete(id int) error {
	sub, err := q.GetByID(id)
	if err != nil {
		return err
	}
	return translate(q.db.Delete(sub).Error, "subscriber")
}

// CountActiveSince counts active signups for a site inside a lookback
// window, used by the aggregator for email conversion rates.
func (q *EmailQueries) CountActiveSince(siteID int, since time.Time) (int64, error) {
	var count int64
	err := q.db.Model(&models.EmailSubscriber{}).
		Where("site_id = ? AND status = ? AND created_at >= ?", siteID, "active", since).
		Count(&count).Error
	return count, err
}
