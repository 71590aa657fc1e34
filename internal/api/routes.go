package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumevault/internal/account"
	"resumevault/internal/api/middleware"
	"resumevault/internal/auth"
	"resumevault/internal/exportgw"
	"resumevault/internal/kvstore"
	"resumevault/internal/resume"
)

// Deps 汇集各处理器的依赖，由 cmd/api 装配。
type Deps struct {
	Store       kvstore.Store
	Directory   *account.Directory
	Session     *account.Session
	Repo        *resume.Repository
	AutoSaver   *resume.AutoSaver
	AsynqClient *asynq.Client
	AuthService *auth.AuthService
	Redis       redis.UniversalClient
	Logger      *slog.Logger
	Gateway     *exportgw.Gateway

	PublicBaseURL string
	ClamdAddr     string

	LoginRateLimitPerHour int
	LoginLockThreshold    int
	LoginLockTTL          time.Duration
	CookieDomain          string
	AllowedWSOrigins      []string
}

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(router *gin.Engine, deps Deps) {
	authHandler := NewAuthHandler(deps)
	resumeHandler := NewResumeHandler(deps)
	exportHandler := NewExportHandler(deps)
	wsHandler := NewWsHandler(deps.Redis, deps.AuthService, deps.Logger, deps.AllowedWSOrigins)
	authMiddleware := middleware.AuthMiddleware(deps.AuthService)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
			authGroup.POST("/reset-password", authHandler.ResetPassword)
		}

		resumeGroup := v1.Group("/resume")
		resumeGroup.Use(authMiddleware)
		{
			resumeGroup.GET("", resumeHandler.GetResume)
			resumeGroup.PUT("", resumeHandler.SaveResume)
			resumeGroup.POST("/import", resumeHandler.ImportResume)
			resumeGroup.GET("/document", exportHandler.ExportDocument)
			resumeGroup.GET("/preview", resumeHandler.Preview)
			resumeGroup.GET("/public-url", resumeHandler.PublicURL)

			resumeGroup.PUT("/draft", resumeHandler.SaveDraft)
			resumeGroup.GET("/draft", resumeHandler.GetDraft)
			resumeGroup.DELETE("/draft", resumeHandler.DeleteDraft)

			resumeGroup.GET("/export/text", exportHandler.ExportText)
			resumeGroup.GET("/export/word", exportHandler.ExportWord)
			resumeGroup.POST("/export/pdf", exportHandler.ExportPDF)
		}

		v1.GET("/public/:identifier", resumeHandler.PublicResume)
		v1.GET("/themes", resumeHandler.ListThemes)

		settingsGroup := v1.Group("/settings")
		settingsGroup.Use(authMiddleware)
		{
			settingsGroup.GET("", resumeHandler.GetSettings)
			settingsGroup.PUT("", resumeHandler.UpdateSettings)
		}
	}
}
