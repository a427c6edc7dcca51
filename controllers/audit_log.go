package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/repository"
	"github.com/BerniceZTT/telecrm_end/utils"
)

// GetAuditLogs 获取审计日志,按时间倒序
func GetAuditLogs(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	entity := c.Query("entity")
	action := c.Query("action")
	performedBy := c.Query("performedBy")
	limitStr := c.DefaultQuery("limit", "100")

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 100
	}
	// 单次最多返回500条
	if limit > 500 {
		limit = 500
	}

	filter := bson.M{}
	if entity != "" {
		filter["entity"] = entity
	}
	if action != "" {
		filter["action"] = action
	}
	if performedBy != "" {
		filter["performedBy"] = performedBy
	}

	utils.LogInfo(map[string]interface{}{
		"user":   user.Name,
		"entity": entity,
		"action": action,
		"limit":  limit,
	}, "查询审计日志")

	ctx := repository.GetContext()
	collection := repository.Collection(repository.AuditLogsCollection)

	findOptions := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer cursor.Close(ctx)

	var records []models.AuditRecord
	if err := cursor.All(ctx, &records); err != nil {
		utils.HandleError(c, err)
		return
	}

	if records == nil {
		records = []models.AuditRecord{}
	}

	utils.SuccessResponse(c, gin.H{"logs": records}, "")
}
