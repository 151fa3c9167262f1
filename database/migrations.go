package database

import (
	"log"

	"offerpress/models"

	"gorm.io/gorm"
)

// RunMigrations creates/updates all content tables. It runs once at process
// startup, before the router accepts requests; no table is ever created
// lazily on a request path.
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Site{},
		&models.Article{},
		&models.Page{},
		&models.WidgetDefinition{},
		&models.WidgetInstance{},
		&models.WidgetCategory{},
		&models.NavigationTemplate{},
		&models.EmailSubscriber{},
		&models.ActivityLogEntry{},
	)

	if err != nil {
		log.Printf("Error running migrations: %v", err)
		return err
	}

	log.Println("Migrations completed successfully")
	return nil
}

// RunAnalyticsMigrations creates the append-only event tables in the
// analytics database. A nil db is allowed and skips migration.
func RunAnalyticsMigrations(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	log.Println("Running analytics migrations...")

	if err := db.AutoMigrate(&models.ViewEvent{}, &models.ClickEvent{}); err != nil {
		log.Printf("Error running analytics migrations: %v", err)
		return err
	}

	return nil
}
