package routes

import (
	"github.com/BerniceZTT/telecrm_end/controllers"
	"github.com/BerniceZTT/telecrm_end/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAnalyticsRoutes 注册数据分析路由。
// 所有角色可访问,数据范围在处理器内按角色收敛。
func RegisterAnalyticsRoutes(router *gin.Engine) {
	analytics := router.Group("/api/analytics")
	analytics.Use(middleware.AuthMiddleware())

	analytics.GET("/overview", controllers.GetAnalyticsOverview)
	analytics.GET("/funnel", controllers.GetAnalyticsFunnel)
	analytics.GET("/forecast", controllers.GetAnalyticsForecast)
}
