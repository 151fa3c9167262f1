package main

import (
	"log"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"offerpress/api"
	"offerpress/attribution"
	"offerpress/cache"
	"offerpress/common"
	"offerpress/database"
	"offerpress/email"
	"offerpress/store"
	"offerpress/widgets"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	db := common.ConnectDb()
	if db == nil {
		log.Fatal("Failed to connect to database")
	}
	analyticsDB := common.ConnectAnalyticsDb()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	if err := database.RunAnalyticsMigrations(analyticsDB); err != nil {
		log.Fatal("Failed to run analytics migrations:", err)
	}

	base := store.New(db, analyticsDB, nil)

	registry := widgets.NewRegistry(base.Widgets)
	if err := widgets.SeedDefinitions(registry); err != nil {
		log.Fatal("Failed to seed widget definitions:", err)
	}

	// renders past the TTL are never served; sweep the leftover files
	if err := cache.ClearOld(widgets.RenderCacheTTL); err != nil {
		log.Printf("Error sweeping stale widget cache: %v", err)
	}

	salt := os.Getenv("FINGERPRINT_SALT")
	recorder, err := attribution.NewRecorder(base.Analytics, base.Articles, salt)
	if err != nil {
		log.Fatal("Failed to build attribution recorder:", err)
	}

	router := gin.Default()

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("SESSION_SECRET environment variable not set")
	}

	sessionStore := cookie.NewStore([]byte(sessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 730,
		HttpOnly: true,
		Secure:   false,
	})
	router.Use(sessions.Sessions("offerpress-session", sessionStore))

	apiModule := api.NewModule(db, analyticsDB, registry, recorder, email.NewMailer())
	apiModule.RegisterRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
