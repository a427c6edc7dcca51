package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/BerniceZTT/telecrm_end/repository"
	"github.com/BerniceZTT/telecrm_end/service"
	"github.com/BerniceZTT/telecrm_end/utils"
)

// GetNotifications 获取提醒汇总。
// 正常路径按当前用户范围实时派生;存储不可用时退回轮询缓存的上次结果。
func GetNotifications(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	// 电销专员只统计分配给自己的线索
	filter := bson.M{}
	if !utils.CanViewAllLeads(user.Role) {
		filter["assignedTo"] = user.ID
	}

	leads, err := service.FetchLeadSnapshot(repository.GetContext(), filter)
	if err != nil {
		utils.LogError(err, map[string]interface{}{
			"user": user.Name,
		}, "实时派生提醒失败,尝试返回缓存结果")

		if cached, ok := service.CachedAlerts(); ok {
			utils.SuccessResponse(c, cached, "")
			return
		}
		utils.HandleError(c, err)
		return
	}

	summary := service.DeriveAlerts(leads, time.Now())
	utils.SuccessResponse(c, summary, "")
}
