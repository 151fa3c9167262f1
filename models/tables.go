package models

import "time"

type Tenant struct {
	ID        int       `gorm:"primary_key;autoIncrement" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Tier      string    `gorm:"default:'free'" json:"tier"` // subscription tier: free, pro, agency
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID           int    `gorm:"primary_key;autoIncrement" json:"id"`
	TenantID     *int   `gorm:"index" json:"tenant_id"` // nullable - platform operators have no tenant
	Email        string `gorm:"not null;index" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"` // json:"-" prevents password from being exposed in API
	Name         string `json:"name"`
	Role         string `gorm:"default:'editor'" json:"role"`
}

type Site struct {
	ID        int        `gorm:"primary_key;autoIncrement" json:"id"`
	TenantID  *int       `gorm:"index" json:"tenant_id"` // nullable; sites are served publicly regardless
	Name      string     `gorm:"not null" json:"name"`
	Subdomain string     `gorm:"unique;not null;index" json:"subdomain"`
	Domain    string     `gorm:"index" json:"domain"`                // optional custom domain
	Status    string     `gorm:"default:'draft';index" json:"status"` // draft, published, archived
	Version   int        `gorm:"default:1" json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `sql:"index" json:"deleted_at,omitempty"`
}

type Article struct {
	ID         int        `gorm:"primary_key;autoIncrement" json:"id"`
	SiteID     int        `gorm:"not null;index;uniqueIndex:idx_article_site_slug" json:"site_id"`
	Slug       string     `gorm:"not null;uniqueIndex:idx_article_site_slug" json:"slug"`
	Title      string     `gorm:"not null" json:"title"`
	Content    string     `gorm:"type:text" json:"content"`
	Published  bool       `gorm:"default:false;index" json:"published"`
	Hero       bool       `gorm:"default:false" json:"hero"` // featured on the site front
	ViewCount  int        `gorm:"default:0" json:"view_count"`
	ClickCount int        `gorm:"default:0" json:"click_count"`
	Version    int        `gorm:"default:1" json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `sql:"index" json:"deleted_at,omitempty"`
}

type Page struct {
	ID        int        `gorm:"primary_key;autoIncrement" json:"id"`
	SiteID    int        `gorm:"not null;index;uniqueIndex:idx_page_site_slug" json:"site_id"`
	Slug      string     `gorm:"not null;uniqueIndex:idx_page_site_slug" json:"slug"`
	Title     string     `gorm:"not null" json:"title"`
	Template  string     `gorm:"default:'default'" json:"template"`
	Content   string     `gorm:"type:text" json:"content"`
	Published bool       `gorm:"default:false;index" json:"published"`
	Version   int        `gorm:"default:1" json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `sql:"index" json:"deleted_at,omitempty"`
}

type WidgetDefinition struct {
	ID            int       `gorm:"primary_key;autoIncrement" json:"id"`
	TypeKey       string    `gorm:"unique;not null;index" json:"type_key"` // stable across versions
	Name          string    `gorm:"not null" json:"name"`
	Description   string    `json:"description"`
	CategoryID    *int      `gorm:"index" json:"category_id"`
	DefaultConfig string    `gorm:"type:text" json:"default_config"` // JSON object overlaid under instance config
	Active        bool      `gorm:"default:true" json:"active"`
	Global        bool      `gorm:"default:true" json:"global"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type WidgetInstance struct {
	ID           int       `gorm:"primary_key;autoIncrement" json:"id"`
	DefinitionID int       `gorm:"not null;index" json:"definition_id"`
	SiteID       int       `gorm:"not null;index" json:"site_id"`
	PageID       *int      `gorm:"index" json:"page_id"`    // nil means site-wide placement
	Config       string    `gorm:"type:text" json:"config"` // tagged-union JSON, validated on write
	SortOrder    int       `gorm:"default:0;index" json:"sort_order"`
	Enabled      bool      `gorm:"default:true" json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type WidgetCategory struct {
	ID        int    `gorm:"primary_key;autoIncrement" json:"id"`
	SiteID    *int   `gorm:"index" json:"site_id"` // nil means global category
	Name      string `gorm:"not null" json:"name"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
	Color     string `json:"color"`
}

type NavigationTemplate struct {
	ID        int       `gorm:"primary_key;autoIncrement" json:"id"`
	SiteID    *int      `gorm:"index" json:"site_id"` // nil means global template
	Name      string    `gorm:"not null" json:"name"`
	Links     string    `gorm:"type:text" json:"links"` // markdown links, one [text](url) per entry
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EmailSubscriber struct {
	ID                int       `gorm:"primary_key;autoIncrement" json:"id"`
	SiteID            int       `gorm:"not null;index;uniqueIndex:idx_subscriber_site_email" json:"site_id"`
	Email             string    `gorm:"not null;uniqueIndex:idx_subscriber_site_email" json:"email"`
	Status            string    `gorm:"default:'active';index" json:"status"` // active, unsubscribed, bounced
	ConfirmationToken string    `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
}

type ActivityLogEntry struct {
	ID           int       `gorm:"primary_key;autoIncrement" json:"id"`
	TenantID     *int      `gorm:"index" json:"tenant_id"` // stamped from the factory, may be null
	UserID       *int      `gorm:"index" json:"user_id"`
	Action       string    `gorm:"not null" json:"action"`
	ResourceType string    `gorm:"not null;index" json:"resource_type"`
	ResourceID   int       `json:"resource_id"`
	Details      string    `gorm:"type:text" json:"details"`
	CreatedAt    time.Time `json:"created_at"`
}
