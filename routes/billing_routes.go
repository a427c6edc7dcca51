package routes

import (
	"github.com/BerniceZTT/telecrm_end/controllers"
	"github.com/BerniceZTT/telecrm_end/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBillingRoutes 注册套餐与账单路由
func RegisterBillingRoutes(router *gin.Engine) {
	plans := router.Group("/api/plans")
	plans.Use(middleware.AuthMiddleware())
	plans.GET("/", middleware.PermissionMiddleware("plans", "read"), controllers.GetPlanList)

	invoices := router.Group("/api/invoices")
	invoices.Use(middleware.AuthMiddleware())
	// 开具账单 (管理员/主管)
	invoices.POST("/", middleware.PermissionMiddleware("invoices", "create"), controllers.CreateInvoice)
}
