package routes

import (
	"github.com/BerniceZTT/telecrm_end/controllers"
	"github.com/BerniceZTT/telecrm_end/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterCampaignRoutes 注册营销活动路由
func RegisterCampaignRoutes(router *gin.Engine) {
	// 打开追踪像素由邮件客户端请求,不带认证头
	router.GET("/api/campaigns/:id/open", controllers.TrackCampaignOpen)

	campaigns := router.Group("/api/campaigns")
	campaigns.Use(middleware.AuthMiddleware())

	campaigns.GET("/", middleware.PermissionMiddleware("campaigns", "read"), controllers.GetCampaignList)
	campaigns.POST("/", middleware.PermissionMiddleware("campaigns", "create"), controllers.CreateCampaign)
	campaigns.GET("/:id", middleware.PermissionMiddleware("campaigns", "read"), controllers.GetCampaignDetail)
	campaigns.PUT("/:id", middleware.PermissionMiddleware("campaigns", "update"), controllers.UpdateCampaign)
	campaigns.DELETE("/:id", middleware.PermissionMiddleware("campaigns", "delete"), controllers.DeleteCampaign)

	// 群发与测试邮件 (管理员/主管)
	campaigns.POST("/:id/send", middleware.PermissionMiddleware("campaigns", "send"), controllers.SendCampaign)
	campaigns.POST("/:id/email", middleware.PermissionMiddleware("campaigns", "send"), controllers.SendCampaignTestEmail)
}
