package routes

import (
	"github.com/BerniceZTT/telecrm_end/controllers"
	"github.com/BerniceZTT/telecrm_end/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterWorkflowRoutes 注册工作流路由
func RegisterWorkflowRoutes(router *gin.Engine) {
	workflows := router.Group("/api/workflows")
	workflows.Use(middleware.AuthMiddleware())

	workflows.GET("/", middleware.PermissionMiddleware("workflows", "read"), controllers.GetWorkflowList)
	workflows.POST("/", middleware.PermissionMiddleware("workflows", "create"), controllers.CreateWorkflow)

	// 手动触发事件 (管理员/主管)
	workflows.POST("/trigger", middleware.PermissionMiddleware("workflows", "trigger"), controllers.TriggerWorkflows)
}
