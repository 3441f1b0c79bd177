package main

import (
	"github.com/BINU242/refref/internal/config"
	"github.com/BINU242/refref/internal/handlers"
	"github.com/BINU242/refref/internal/middleware"
	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices, cfg *config.Config) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	db := models.GetDB()

	authHandler := handlers.NewAuthHandler(db, cfg)
	projectHandler := handlers.NewProjectHandler(db)
	memberHandler := handlers.NewMemberHandler(db, svc.taskQueue)
	programHandler := handlers.NewProgramHandler(db)
	widgetHandler := handlers.NewWidgetHandler(db, cfg)
	systemLogHandler := handlers.NewSystemLogHandler(db)
	systemConfigHandler := handlers.NewSystemConfigHandler(db)
	healthHandler := handlers.NewHealthHandler()

	r.GET("/health", healthHandler.CheckHealth)

	// Public widget surface, rate limited per IP.
	trackLimiter := middleware.NewRateLimiter(10, 30)
	r.GET("/widget/:key", widgetHandler.Script)
	track := r.Group("/api/t/:key", trackLimiter.Middleware())
	{
		track.POST("/enroll", widgetHandler.Enroll)
		track.POST("/visit", widgetHandler.Visit)
		track.POST("/signup", widgetHandler.Signup)
	}

	api := r.Group("/api")
	{
		// Auth routes (public)
		authLimiter := middleware.NewRateLimiter(5, 10)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			protected.GET("/auth/me", authHandler.GetCurrentUser)
			protected.PUT("/auth/me", authHandler.UpdateProfile)
			protected.POST("/auth/logout", authHandler.Logout)
			protected.POST("/auth/change-password", authHandler.ChangePassword)

			protected.GET("/projects", projectHandler.List)
			protected.POST("/projects", projectHandler.Create)

			// Accepting an invitation needs authentication but no existing
			// membership, so it lives outside the project group.
			protected.POST("/invitations/accept", memberHandler.AcceptInvitation)

			// System administration
			protected.GET("/system/logs", systemLogHandler.List)
			protected.GET("/system/logs/modules", systemLogHandler.GetModules)
			protected.GET("/system/email", systemConfigHandler.GetEmailSettings)
			protected.PUT("/system/email", systemConfigHandler.UpdateEmailSettings)

			// Project-scoped routes: every request below resolves the caller's
			// membership into a request-scoped project context first.
			project := protected.Group("/projects/:projectID")
			project.Use(middleware.ProjectRequired(db))
			{
				project.GET("", projectHandler.Get)
				project.PUT("", projectHandler.Update)
				project.DELETE("", projectHandler.Delete)

				project.GET("/members", memberHandler.List)
				project.PUT("/members/:userID/role", memberHandler.ChangeRole)
				project.DELETE("/members/:userID", memberHandler.Remove)

				project.GET("/invitations", memberHandler.ListInvitations)
				project.POST("/invitations", memberHandler.Invite)
				project.POST("/invitations/resend", memberHandler.ResendInvitation)
				project.DELETE("/invitations/:invitationID", memberHandler.CancelInvitation)

				project.GET("/programs", programHandler.List)
				project.POST("/programs", programHandler.Create)
				project.GET("/programs/:programID", programHandler.Get)
				project.PUT("/programs/:programID", programHandler.Update)
				project.DELETE("/programs/:programID", programHandler.Delete)

				project.GET("/programs/:programID/setup", programHandler.Progress)
				project.GET("/programs/:programID/setup/:step/can-proceed", programHandler.CanProceed)
				project.PUT("/programs/:programID/design", programHandler.SaveDesign)
				project.PUT("/programs/:programID/notifications", programHandler.SaveNotifications)
				project.GET("/programs/:programID/reward", programHandler.GetReward)
				project.PUT("/programs/:programID/reward", programHandler.SaveReward)
				project.POST("/programs/:programID/verify-installation", programHandler.VerifyInstallation)
				project.POST("/programs/:programID/go-live", programHandler.GoLive)
				project.POST("/programs/:programID/pause", programHandler.Pause)
				project.POST("/programs/:programID/resume", programHandler.Resume)

				project.GET("/programs/:programID/stats", programHandler.Stats)
				project.GET("/programs/:programID/referrals", programHandler.ListReferrals)
			}
		}
	}
}
