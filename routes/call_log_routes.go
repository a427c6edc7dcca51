package routes

import (
	"github.com/BerniceZTT/telecrm_end/controllers"
	"github.com/BerniceZTT/telecrm_end/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterCallLogRoutes 注册通话记录路由。记录只增不改,不提供更新和删除。
func RegisterCallLogRoutes(router *gin.Engine) {
	calls := router.Group("/api/calls")
	calls.Use(middleware.AuthMiddleware())

	calls.GET("/", middleware.PermissionMiddleware("calls", "read"), controllers.GetCallLogs)
	calls.POST("/", middleware.PermissionMiddleware("calls", "create"), controllers.CreateCallLog)

	// 录音上传,返回recordingRef供创建通话记录时引用
	calls.POST("/recording", middleware.PermissionMiddleware("calls", "create"), controllers.UploadCallRecording)
}
