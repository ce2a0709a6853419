package server

import (
	"net/http"
	"time"

	"anoa.com/skillswap/internal/config"
	"anoa.com/skillswap/internal/middleware"
	appHttp "anoa.com/skillswap/internal/modules/application/delivery/http"
	dashboardHttp "anoa.com/skillswap/internal/modules/dashboard/delivery/http"
	messageHttp "anoa.com/skillswap/internal/modules/message/delivery/http"
	notiHttp "anoa.com/skillswap/internal/modules/notification/delivery/http"
	profileHttp "anoa.com/skillswap/internal/modules/profile/delivery/http"
	proposalHttp "anoa.com/skillswap/internal/modules/proposal/delivery/http"
	reviewHttp "anoa.com/skillswap/internal/modules/review/delivery/http"
	skillHttp "anoa.com/skillswap/internal/modules/skill/delivery/http"
	swapHttp "anoa.com/skillswap/internal/modules/swap/delivery/http"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func NewRouter(cfg *config.Config, svc *Services, redisClient *redis.Client) *gin.Engine {
	skillHandler := skillHttp.NewSkillHandler(svc.Skills)
	proposalHandler := proposalHttp.NewProposalHandler(svc.Proposals)
	applicationHandler := appHttp.NewApplicationHandler(svc.Applications)
	swapHandler := swapHttp.NewSwapHandler(svc.Swaps)
	messageHandler := messageHttp.NewMessageHandler(svc.Messages)
	reviewHandler := reviewHttp.NewReviewHandler(svc.Reviews)
	profileHandler := profileHttp.NewProfileHandler(svc.Profiles)
	dashboardHandler := dashboardHttp.NewDashboardHandler(svc.Dashboard)
	notificationHandler := notiHttp.NewNotificationHandler(svc.Notifications, svc.Digest, redisClient, cfg.CronSecret, cfg.AllowedOrigins)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger("/api/health", "/api/notifications/unread-count"))

	authMiddleware := middleware.NewAuthMiddleware(svc.Identity, cfg.AuthJWTSecret)

	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/cron/send-delayed-emails", notificationHandler.SendDelayedEmails)

	// Public routes, caller resolved when a token is present
	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/skills", skillHandler.ListSkills)

		public.GET("/proposals", proposalHandler.ListProposals)
		public.GET("/proposals/search", proposalHandler.SearchProposals)
		public.GET("/proposals/:proposal_id", proposalHandler.GetProposal)

		public.GET("/users/:user_id/profile", profileHandler.GetPublicProfile)
		public.GET("/users/:user_id/reviews", reviewHandler.ListForUser)
		public.GET("/users/:user_id/reputation", reviewHandler.Reputation)

		public.GET("/notifications", notificationHandler.GetNotifications)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Proposal routes
		protected.POST("/proposals", proposalHandler.CreateProposal)
		protected.GET("/proposals/me", proposalHandler.GetMyProposals)
		protected.PATCH("/proposals/:proposal_id/status", proposalHandler.UpdateStatus)
		protected.POST("/proposals/:proposal_id/rescind", proposalHandler.RescindProposal)
		protected.DELETE("/proposals/:proposal_id", proposalHandler.DeleteProposal)

		// Application routes
		protected.POST("/proposals/:proposal_id/applications", applicationHandler.Apply)
		protected.GET("/proposals/:proposal_id/applications", applicationHandler.ListForProposal)
		protected.GET("/applications/me", applicationHandler.ListMine)
		protected.PATCH("/applications/:application_id/status", applicationHandler.UpdateStatus)
		protected.POST("/applications/:application_id/accept", swapHandler.AcceptApplication)

		// Swap routes
		protected.GET("/swaps/me", swapHandler.ListMine)
		protected.GET("/swaps/:swap_id", swapHandler.GetSwap)
		protected.PATCH("/swaps/:swap_id/status", swapHandler.UpdateStatus)
		protected.GET("/swaps/:swap_id/messages", messageHandler.GetMessages)
		protected.POST("/swaps/:swap_id/messages", messageHandler.SendMessage)
		protected.POST("/swaps/:swap_id/reviews", reviewHandler.CreateReview)

		// Profile routes
		protected.GET("/profile", profileHandler.GetCurrentProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.POST("/profile/skills", profileHandler.AddSkill)
		protected.PATCH("/profile/skills/:user_skill_id", profileHandler.SetSkillVisibility)

		protected.GET("/dashboard", dashboardHandler.GetOverview)

		// Notification routes
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return router
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
