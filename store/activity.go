package store

import (
	"log"
	"time"

	"offerpress/models"
)

// LogActivity appends an audit row stamped with the factory's tenant id,
// which may legitimately be null for platform operators. The audit trail is
// best-effort: a failed insert is logged, never surfaced.
func (s *Store) LogActivity(userID *int, action, resourceType string, resourceID int, details string) {
	entry := models.ActivityLogEntry{
		TenantID:     s.tenantID,
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		CreatedAt:    time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Error writing activity log entry: %v", err)
	}
}

// RecentActivity reads the tenant's own audit trail, newest first.
func (s *Store) RecentActivity(limit int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := s.db.Order("created_at DESC").Limit(limit)
	if s.tenantID == nil {
		query = query.Where("tenant_id IS NULL")
	} else {
		query = query.Where("tenant_id = ?", *s.tenantID)
	}
	var entries []models.ActivityLogEntry
	err := query.Find(&entries).Error
	return entries, err
}
