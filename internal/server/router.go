package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"cita-client/internal/handler"
	"cita-client/internal/handler/response"
	"cita-client/pkg/monitor"
	"cita-client/pkg/validator"
)

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(tx *handler.TxHandler) *gin.Engine {
	// 0. 初始化监控指标与自定义校验
	monitor.Register()
	validator.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware())

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		api.GET("/ping", func(c *gin.Context) {
			response.Success(c, gin.H{"pong": true})
		})

		abi := api.Group("/abi")
		abi.POST("/encode", handler.Abi.Encode)
		abi.POST("/decode", handler.Abi.Decode)

		api.GET("/signer", tx.Signer)
		api.POST("/call", tx.Call)

		txs := api.Group("/tx")
		txs.POST("/sign", tx.Sign)
		txs.POST("/send", tx.Send)
		txs.POST("/decode", tx.Decode)
		txs.GET("/:hash/receipt", tx.Receipt)
	}

	return r
}
