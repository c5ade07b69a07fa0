package router

import (
	"net/http"

	"github.com/Bernardxu123/unicom-calc/internal/config"
	"github.com/Bernardxu123/unicom-calc/internal/handler"
	"github.com/Bernardxu123/unicom-calc/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and the JSON API.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ====== API ======
	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	encryptKey := cfg.Security.EncryptionKey

	// 登录/注册接口（不需要鉴权）
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.Issuer, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// 排行榜可匿名查看
	rankingHandler := handler.NewRankingHandler(db)
	api.GET("/data/ranking", rankingHandler.List)

	// 需要登录才能访问的接口
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db, encryptKey),
	)

	protected.GET("/me", handler.GetMe)
	protected.POST("/me/password", authHandler.ChangePassword)

	logHandler := handler.NewLogHandler(db, encryptKey)
	protected.GET("/me/logs", logHandler.ListLogs)
	protected.GET("/me/history", logHandler.ListSyncHistory)

	configHandler := handler.NewConfigHandler(db, encryptKey)
	protected.GET("/data/config", configHandler.Get)
	protected.POST("/data/config", configHandler.Save)

	protected.POST("/data/ranking", rankingHandler.Submit)

	exportHandler := handler.NewExportHandler(db, encryptKey)
	protected.GET("/data/export/csv", exportHandler.CSV)
	protected.GET("/data/export/xlsx", exportHandler.XLSX)

	return r
}
