package main

import (
	"log"

	"github.com/carebridge/careteam/pkg/careteam/auth"
	"github.com/carebridge/careteam/pkg/careteam/config"
	"github.com/carebridge/careteam/pkg/careteam/database"
	"github.com/carebridge/careteam/pkg/careteam/groups"
	"github.com/carebridge/careteam/pkg/careteam/invitations"
	"github.com/carebridge/careteam/pkg/careteam/models"
	"github.com/carebridge/careteam/pkg/careteam/patients"
	"github.com/carebridge/careteam/pkg/careteam/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	if err := database.Connect(cfg.DatabasePath); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations completed")

	db := database.GetDB()
	repo := store.New(db)

	membershipManager := groups.NewManager(repo, logger)
	assignmentManager := patients.NewManager(repo, logger)
	responseLimiter := invitations.NewActorRateLimiter(cfg.InviteResponseLimit, cfg.InviteResponseWindow)
	invitationManager := invitations.NewManager(repo, responseLimiter, cfg.InvitationTTL, logger)

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "careteam",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(db)
		authHandler.RegisterRoutes(api.Group("/auth"))

		authed := api.Group("", auth.AuthMiddleware())

		// Care-team routes
		groupsHandler := groups.NewHandler(db, membershipManager, groups.Defaults{
			MaxMembers:  cfg.DefaultMaxMembers,
			MaxPatients: cfg.DefaultMaxPatients,
		})
		groupsGroup := authed.Group("/groups")
		groupsHandler.RegisterRoutes(groupsGroup)
		groupsHandler.RegisterMemberRoutes(groupsGroup)

		// Patient registry and assignment routes
		patientsHandler := patients.NewHandler(db, assignmentManager)
		patientsHandler.RegisterRoutes(authed)
		patientsHandler.RegisterGroupRoutes(groupsGroup)

		// Invitation routes
		invitationsHandler := invitations.NewHandler(db, invitationManager)
		invitationsHandler.RegisterGroupRoutes(groupsGroup)
		invitationsHandler.RegisterRoutes(authed.Group("/invitations"))
	}

	logger.Info("starting careteam server", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
