package routes

import (
	"github.com/BerniceZTT/telecrm_end/controllers"
	"github.com/BerniceZTT/telecrm_end/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAuditRoutes 注册审计日志路由
func RegisterAuditRoutes(router *gin.Engine) {
	audit := router.Group("/api/audit")
	audit.Use(middleware.AuthMiddleware())

	// 查询审计日志 (管理员/主管)
	audit.GET("/", middleware.PermissionMiddleware("audit", "read"), controllers.GetAuditLogs)
}
