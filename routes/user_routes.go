package routes

import (
	"github.com/BerniceZTT/telecrm_end/controllers"
	"github.com/BerniceZTT/telecrm_end/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 注册用户管理路由
func RegisterUserRoutes(router *gin.Engine) {
	users := router.Group("/api/users")
	users.Use(middleware.AuthMiddleware())

	// 获取用户列表
	users.GET("/", middleware.PermissionMiddleware("users", "read"), controllers.GetUserList)

	// 获取单个用户
	users.GET("/:id", middleware.PermissionMiddleware("users", "read"), controllers.GetUserDetail)

	// 创建用户 (管理员/主管)
	users.POST("/", middleware.PermissionMiddleware("users", "create"), controllers.CreateUser)

	// 更新用户 (管理员/主管)
	users.PUT("/:id", middleware.PermissionMiddleware("users", "update"), controllers.UpdateUser)

	// 局部更新: 停用、每日目标、角色 (管理员/主管)
	users.PATCH("/:id", middleware.PermissionMiddleware("users", "update"), controllers.PatchUser)

	// 删除用户 (仅管理员)
	users.DELETE("/:id", middleware.PermissionMiddleware("users", "delete"), controllers.DeleteUser)
}
