package routes

import (
	"github.com/BerniceZTT/telecrm_end/controllers"
	"github.com/BerniceZTT/telecrm_end/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterLeadRoutes 注册线索相关路由
func RegisterLeadRoutes(router *gin.Engine) {
	leads := router.Group("/api/leads")
	leads.Use(middleware.AuthMiddleware())

	leads.GET("/", middleware.PermissionMiddleware("leads", "read"), controllers.GetLeadList)
	leads.POST("/", middleware.PermissionMiddleware("leads", "create"), controllers.CreateLead)

	// 批量导入 (管理员/主管)
	leads.POST("/import", middleware.PermissionMiddleware("leads", "import"), controllers.ImportLeads)

	// 去重与合并 (管理员/主管)
	leads.GET("/duplicates", middleware.PermissionMiddleware("leads", "merge"), controllers.GetDuplicateLeads)
	leads.POST("/merge", middleware.PermissionMiddleware("leads", "merge"), controllers.MergeLeads)

	leads.GET("/:id", middleware.PermissionMiddleware("leads", "read"), controllers.GetLeadDetail)
	leads.PUT("/:id", middleware.PermissionMiddleware("leads", "update"), controllers.UpdateLead)
	leads.DELETE("/:id", middleware.PermissionMiddleware("leads", "delete"), controllers.DeleteLead)
}
