package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"offerpress/common"
	"offerpress/models"
	"offerpress/store"
)

func setupService() (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.Site{}, &models.EmailSubscriber{})

	st := store.New(db, nil, nil)
	return NewService(st.Emails, st.Sites, NewMailer()), db
}

func TestSubscribe(t *testing.T) {
	svc, db := setupService()

	result, err := svc.Subscribe(1, "Visitor@Example.com")
	assert.NoError(t, err)
	assert.False(t, result.AlreadySubscribed)
	assert.NotNil(t, result.Subscriber)
	assert.Equal(t, "visitor@example.com", result.Subscriber.Email)
	assert.NotEmpty(t, result.Subscriber.ConfirmationToken)

	var count int64
	db.Model(&models.EmailSubscriber{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSubscribe_DuplicateIsFriendlySuccess(t *testing.T) {
	svc, db := setupService()

	first, err := svc.Subscribe(1, "visitor@example.com")
	assert.NoError(t, err)

	// same address again: success to the visitor, no new row
	second, err := svc.Subscribe(1, "visitor@example.com")
	assert.NoError(t, err)
	assert.True(t, second.AlreadySubscribed)
	assert.Equal(t, "You're already subscribed!", second.Message)
	assert.Equal(t, first.Subscriber.ID, second.Subscriber.ID)

	var count int64
	db.Model(&models.EmailSubscriber{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSubscribe_InvalidAddress(t *testing.T) {
	svc, _ := setupService()

	_, err := svc.Subscribe(1, "not-an-address")
	assert.Error(t, err)
	assert.True(t, common.IsValidation(err))
}

func TestSubscribe_SameAddressDifferentSites(t *testing.T) {
	svc, db := setupService()

	_, err := svc.Subscribe(1, "visitor@example.com")
	assert.NoError(t, err)
	result, err := svc.Subscribe(2, "visitor@example.com")
	assert.NoError(t, err)
	assert.False(t, result.AlreadySubscribed)

	var count int64
	db.Model(&models.EmailSubscriber{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestUnsubscribe(t *testing.T) {
	svc, db := setupService()

	svc.Subscribe(1, "visitor@example.com")
	assert.NoError(t, svc.Unsubscribe(1, "visitor@example.com"))

	var sub models.EmailSubscriber
	db.First(&sub)
	assert.Equal(t, "unsubscribed", sub.Status)

	// unknown address is a not-found, not a silent success
	err := svc.Unsubscribe(1, "stranger@example.com")
	assert.True(t, common.IsNotFound(err))
}
