package models

import "time"

// ViewEvent and ClickEvent live in the separate analytics database.
// Both tables are append-only; rows are never updated.

type ViewEvent struct {
	ID        uint      `gorm:"primary_key;autoIncrement"`
	SiteID    int       `gorm:"not null;index"`
	ArticleID int       `gorm:"not null;index"`
	HashedIP  string    `gorm:"not null"` // salted one-way hash, never the raw address
	UserAgent string
	Referrer  string
	SessionID string    `gorm:"index"`
	CreatedAt time.Time `gorm:"index"`
}

type ClickEvent struct {
	ID             uint   `gorm:"primary_key;autoIncrement"`
	SiteID         int    `gorm:"not null;index"`
	ArticleID      *int   `gorm:"index"` // nullable - clicks can happen outside an article
	WidgetType     string `gorm:"index"`
	WidgetID       *int   `gorm:"index"`
	DestinationURL string `gorm:"not null"`
	IsExternal     bool   `gorm:"index"` // only external clicks count toward conversion
	SessionID      string `gorm:"index"`
	Fingerprint    string
	CreatedAt      time.Time `gorm:"index"`
}
