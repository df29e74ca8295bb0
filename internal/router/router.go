package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/expense-tracker/internal/config"
	"github.com/monocle-dev/expense-tracker/internal/handlers"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/middleware"
	"github.com/monocle-dev/expense-tracker/internal/types"
)

func NewRouter(cfg *config.Config, h *handlers.Handler, authMW gin.HandlerFunc, log *applog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", types.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", types.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/ws", authMW, h.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/verify-email", h.VerifyEmail)
			auth.POST("/password-reset", h.RequestPasswordReset)
			auth.POST("/password-reset/confirm", h.ConfirmPasswordReset)
		}

		users := api.Group("/users/me", authMW)
		{
			users.GET("", h.Me)
			users.PUT("", h.UpdateMe)
			users.DELETE("", h.DeleteMe)
			users.PUT("/password", h.ChangePassword)
			users.POST("/verification", h.RequestVerification)
		}

		categories := api.Group("/categories", authMW)
		{
			categories.POST("", h.CreateCategory)
			categories.GET("", h.ListCategories)
			categories.GET("/:id", h.GetCategory)
			categories.PUT("/:id", h.UpdateCategory)
			categories.DELETE("/:id", h.DeleteCategory)
		}

		expenses := api.Group("/expenses", authMW)
		{
			expenses.POST("", h.CreateExpense)
			expenses.GET("", h.ListExpenses)
			expenses.GET("/summary", h.ExpenseSummary)
			expenses.GET("/:id", h.GetExpense)
			expenses.PUT("/:id", h.UpdateExpense)
			expenses.DELETE("/:id", h.DeleteExpense)
			expenses.POST("/:id/shares", h.CreateShare)
		}

		shares := api.Group("/shares", authMW)
		{
			shares.GET("", h.ListShares)
			shares.GET("/:id", h.GetShare)
			shares.PUT("/:id/status", h.UpdateShareStatus)
			shares.PUT("/:id/split", h.UpdateShareSplit)
		}
	}

	return r
}
