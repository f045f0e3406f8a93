package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "hmy-wallet/docs/swagger"
	"hmy-wallet/internal/handler"
	"hmy-wallet/internal/server/routes"
	"hmy-wallet/pkg/monitor"
	"hmy-wallet/pkg/validator"
)

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(walletHandler *handler.WalletHandler) *gin.Engine {
	monitor.Init()
	validator.Init()

	r := gin.Default() // Logger + Recovery
	r.Use(monitor.PrometheusMiddleware())

	// 基础路由
	r.GET("/health", walletHandler.Health)
	r.GET("/metrics", gin.WrapH(monitor.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// /api/v1: 交易发送与链上查询
	api := r.Group("/api/v1")
	routes.RegisterWalletRoutes(api, walletHandler)

	return r
}
