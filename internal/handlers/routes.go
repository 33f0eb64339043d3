package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/pto-approval-api/internal/middleware"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"github.com/yukikurage/pto-approval-api/internal/repository"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes
type Handlers struct {
	Auth        *AuthHandler
	PTORequests *PTORequestHandler
	Team        *TeamHandler
	Admin       *AdminHandler
}

// RegisterRoutes mounts the health check and the /api tree on r. Session
// middleware must already be installed.
func RegisterRoutes(r *gin.Engine, userRepo repository.UserRepository, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "PTO Approval API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public, /me works for pending accounts)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", middleware.RequireAuth(), h.Auth.GetCurrentUser)
		}

		active := api.Group("")
		active.Use(middleware.RequireAuth(), middleware.RequireActiveUser(userRepo))

		requests := active.Group("/pto-requests")
		{
			requests.GET("", h.PTORequests.ListRequests)
			requests.POST("", h.PTORequests.CreateRequest)
			requests.GET("/quote", h.PTORequests.QuoteRequest)
			requests.POST("/drafts", h.PTORequests.DraftRequests)
			requests.GET("/:id", h.PTORequests.GetRequest)
			requests.POST("/:id/cancel", h.PTORequests.CancelRequest)
			requests.POST("/:id/decision",
				middleware.RequireRole(models.RoleManager, models.RoleApprover, models.RoleAdmin),
				h.PTORequests.DecideRequest)
		}

		manager := active.Group("/manager")
		manager.Use(middleware.RequireRole(models.RoleManager))
		{
			manager.GET("/team", h.Team.ListTeam)
			manager.GET("/pto-requests", h.Team.ListTeamRequests)
		}

		approver := active.Group("/approver")
		approver.Use(middleware.RequireRole(models.RoleApprover))
		{
			approver.GET("/departments", h.Team.ListDepartments)
			approver.GET("/pto-requests", h.Team.ListDepartmentRequests)
		}

		admin := active.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", h.Admin.ListUsers)
			admin.POST("/users", h.Admin.CreateUser)
			admin.POST("/users/:id/activate", h.Admin.ActivateUser)
			admin.PUT("/users/:id/role", h.Admin.UpdateRole)
			admin.PUT("/users/:id/department", h.Admin.AssignDepartment)
			admin.PUT("/users/:id/manager", h.Admin.SetManager)
			admin.PUT("/users/:id/balance", h.Admin.UpdateBalance)
			admin.DELETE("/users/:id", h.Admin.DeleteUser)

			admin.GET("/departments", h.Admin.ListDepartments)
			admin.POST("/departments", h.Admin.CreateDepartment)
			admin.DELETE("/departments/:id", h.Admin.DeleteDepartment)
			admin.PUT("/departments/:id/manager", h.Admin.AssignDepartmentManager)
			admin.PUT("/departments/:id/approver", h.Admin.AssignDepartmentApprover)

			admin.GET("/pto-requests", h.Admin.ListRequests)
			admin.GET("/pto-requests/export", h.Admin.ExportRequests)
		}
	}
}
