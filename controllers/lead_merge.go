package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/repository"
	"github.com/BerniceZTT/telecrm_end/service"
	"github.com/BerniceZTT/telecrm_end/utils"
)

// GetDuplicateLeads 按电话|邮箱归一化键列出重复线索分组
func GetDuplicateLeads(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	utils.LogInfo(map[string]interface{}{
		"user": user.Name,
	}, "查询重复线索分组")

	ctx := repository.GetContext()
	collection := repository.Collection(repository.LeadsCollection)

	// 按创建时间正序,保证分组内最早的线索排在前面
	findOptions := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer cursor.Close(ctx)

	var leads []models.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		utils.HandleError(c, err)
		return
	}

	groups := service.FindDuplicateGroups(leads)
	if groups == nil {
		groups = []models.DuplicateGroup{}
	}

	utils.LogInfo(map[string]interface{}{
		"groups": len(groups),
	}, "重复线索分组查询完成")

	utils.SuccessResponse(c, groups, "")
}

// MergeLeads 合并重复线索: 保留keepId,事务内删除mergeIds及其通话记录
func MergeLeads(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var requestData models.LeadMergeRequest
	if err := c.ShouldBindJSON(&requestData); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的请求数据: "+err.Error()))
		return
	}

	// 参数校验必须发生在任何存储操作之前
	if err := service.ValidateMergeRequest(&requestData); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo(map[string]interface{}{
		"user":     user.Name,
		"keepId":   requestData.KeepID,
		"mergeIds": requestData.MergeIDs,
	}, "合并重复线索")

	keepObjectID, err := primitive.ObjectIDFromHex(requestData.KeepID)
	if err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的keepId"))
		return
	}

	mergeObjectIDs := make([]primitive.ObjectID, 0, len(requestData.MergeIDs))
	for _, id := range requestData.MergeIDs {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			utils.HandleError(c, utils.CreateInvalidArgumentError("无效的mergeId: "+id))
			return
		}
		mergeObjectIDs = append(mergeObjectIDs, objectID)
	}

	ctx := repository.GetContext()
	leadsCollection := repository.Collection(repository.LeadsCollection)

	// 保留的线索必须存在
	var keepLead models.Lead
	err = leadsCollection.FindOne(ctx, bson.M{"_id": keepObjectID}).Decode(&keepLead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.HandleError(c, utils.CreateNotFoundError("保留的线索"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	// 被合并的线索必须全部存在
	count, err := leadsCollection.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": mergeObjectIDs}})
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if int(count) != len(mergeObjectIDs) {
		utils.HandleError(c, utils.CreateNotFoundError("部分待合并线索"))
		return
	}

	// 删除被合并线索及其通话记录,放在同一事务里保证原子性
	deleted, err := repository.WithTransaction(func(sessCtx mongo.SessionContext) (interface{}, error) {
		callLogsCollection := repository.Collection(repository.CallLogsCollection)
		if _, err := callLogsCollection.DeleteMany(sessCtx, bson.M{"leadId": bson.M{"$in": requestData.MergeIDs}}); err != nil {
			return nil, err
		}

		result, err := leadsCollection.DeleteMany(sessCtx, bson.M{"_id": bson.M{"$in": mergeObjectIDs}})
		if err != nil {
			return nil, err
		}
		return result.DeletedCount, nil
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	service.RecordAudit("lead", requestData.KeepID, models.AuditActionMERGE, map[string]interface{}{
		"keepId":   requestData.KeepID,
		"mergeIds": requestData.MergeIDs,
		"merged":   deleted,
	}, user)

	utils.LogInfo(map[string]interface{}{
		"keepId": requestData.KeepID,
		"merged": deleted,
	}, "线索合并完成")

	utils.SuccessResponse(c, gin.H{
		"keepId": requestData.KeepID,
		"merged": deleted,
	}, "线索合并成功")
}
