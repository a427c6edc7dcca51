package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/repository"
	"github.com/BerniceZTT/telecrm_end/service"
	"github.com/BerniceZTT/telecrm_end/utils"
)

// 导入行级校验器
var importValidator = validator.New()

// ImportLeads 批量导入线索,逐行独立写入,单行失败不影响其他行
func ImportLeads(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var requestData models.LeadImportRequest
	if err := c.ShouldBindJSON(&requestData); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的请求数据: "+err.Error()))
		return
	}

	if len(requestData.Leads) == 0 {
		utils.HandleError(c, utils.CreateInvalidArgumentError("导入数据不能为空"))
		return
	}

	utils.LogInfo(map[string]interface{}{
		"user":  user.Name,
		"count": len(requestData.Leads),
	}, "批量导入线索")

	ctx := repository.GetContext()
	collection := repository.Collection(repository.LeadsCollection)

	result := models.LeadImportResult{
		Failed: []models.LeadImportFailure{},
	}

	for i, row := range requestData.Leads {
		if err := importValidator.Struct(row); err != nil {
			result.Failed = append(result.Failed, models.LeadImportFailure{
				Index: i,
				Error: fmt.Sprintf("行数据校验失败: %s", err.Error()),
			})
			continue
		}

		if row.AssignedTo != "" {
			if _, err := repository.FindUserByID(row.AssignedTo); err != nil {
				result.Failed = append(result.Failed, models.LeadImportFailure{
					Index: i,
					Error: "指定的归属用户不存在",
				})
				continue
			}
		}

		status := row.Status
		if status == "" {
			status = models.LeadStatusNEW
		}

		now := time.Now()
		lead := models.Lead{
			ID:           primitive.NewObjectID(),
			Name:         row.Name,
			Phone:        row.Phone,
			Email:        row.Email,
			Type:         row.Type,
			Source:       row.Source,
			Status:       status,
			AssignedTo:   row.AssignedTo,
			NextFollowUp: row.NextFollowUp,
			Remarks:      row.Remarks,
			Notes:        []models.LeadNote{},
			CreatedBy:    user.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if row.Score != nil {
			lead.Score = *row.Score
		} else {
			lead.Score = service.BaseScore(&lead) + service.ScoreJitter()
		}

		if _, err := collection.InsertOne(ctx, lead); err != nil {
			result.Failed = append(result.Failed, models.LeadImportFailure{
				Index: i,
				Error: "写入失败: " + err.Error(),
			})
			continue
		}

		result.Inserted++
	}

	service.RecordAudit("lead", "batch", models.AuditActionIMPORT, map[string]interface{}{
		"total":    len(requestData.Leads),
		"inserted": result.Inserted,
		"failed":   len(result.Failed),
	}, user)

	utils.LogInfo(map[string]interface{}{
		"inserted": result.Inserted,
		"failed":   len(result.Failed),
	}, "批量导入线索完成")

	utils.SuccessResponse(c, result, fmt.Sprintf("成功导入%d条线索, 失败%d条", result.Inserted, len(result.Failed)))
}
