package routes

import (
	"github.com/BerniceZTT/telecrm_end/controllers"
	"github.com/BerniceZTT/telecrm_end/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterNotificationRoutes 注册提醒路由
func RegisterNotificationRoutes(router *gin.Engine) {
	notifications := router.Group("/api/notifications")
	notifications.Use(middleware.AuthMiddleware())

	notifications.GET("/", controllers.GetNotifications)
}
