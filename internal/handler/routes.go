package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/middleware"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/service"
)

// Handlers bundles every HTTP handler mounted on the router.
type Handlers struct {
	Auth          *AuthHandler
	Campaigns     *CampaignHandler
	Employees     *EmployeeHandler
	Matching      *MatchingHandler
	Evaluations   *EvaluationHandler
	Dashboard     *DashboardHandler
	Notifications *NotificationHandler
	Metrics       *MetricsHandler
}

// RegisterRoutes mounts all endpoints under the given API prefix. Evaluation
// form routes are public by design: employees follow an emailed token link
// and never authenticate.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, authSvc *service.AuthService) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	evaluations := api.Group("/evaluations")
	evaluations.GET("/:token", h.Evaluations.Form)
	evaluations.POST("/:token", h.Evaluations.Submit)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/auth/profile", h.Auth.Profile)
	protected.PUT("/auth/profile", h.Auth.UpdateProfile)
	protected.POST("/auth/change-password", h.Auth.ChangePassword)

	campaigns := protected.Group("/campaigns")
	campaigns.GET("", h.Campaigns.List)
	campaigns.POST("", h.Campaigns.Create)
	campaigns.GET("/:id", h.Campaigns.Get)
	campaigns.PUT("/:id", h.Campaigns.Update)
	campaigns.DELETE("/:id", h.Campaigns.Delete)
	campaigns.GET("/:id/workflow", h.Campaigns.WorkflowStatus)
	campaigns.POST("/:id/workflow/complete", h.Campaigns.CompleteStep)

	campaigns.GET("/:id/employees", h.Employees.List)
	campaigns.DELETE("/:id/employees", h.Employees.Delete)
	campaigns.POST("/:id/employees/import", h.Employees.Import)

	campaigns.GET("/:id/matching/attributes", h.Matching.AvailableAttributes)
	campaigns.POST("/:id/matching/criteria", h.Matching.SaveCriteria)
	campaigns.GET("/:id/matching/criteria", h.Matching.CriteriaHistory)
	campaigns.POST("/:id/matching/generate", h.Matching.GeneratePairs)
	campaigns.POST("/:id/matching/confirm", h.Matching.ConfirmPairs)
	campaigns.GET("/:id/matching/history", h.Matching.History)

	campaigns.GET("/:id/evaluations/statistics", h.Evaluations.Statistics)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/statistics", h.Dashboard.Statistics)
	dashboard.GET("/ratings", h.Dashboard.RatingDistribution)
	dashboard.GET("/trends", h.Dashboard.Trends)
	dashboard.GET("/evaluations/recent", h.Dashboard.RecentEvaluations)
	dashboard.GET("/export", h.Dashboard.Export)

	notifications := protected.Group("/notifications")
	notifications.GET("", h.Notifications.List)
	notifications.GET("/unread-count", h.Notifications.UnreadCount)
	notifications.POST("/read-all", h.Notifications.MarkAllRead)
	notifications.POST("/:id/read", h.Notifications.MarkRead)
	notifications.DELETE("/:id", h.Notifications.Delete)

	protected.GET("/system/metrics", h.Metrics.Snapshot)
}
