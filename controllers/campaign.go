package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BerniceZTT/telecrm_end/config"
	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/repository"
	"github.com/BerniceZTT/telecrm_end/service"
	"github.com/BerniceZTT/telecrm_end/utils"
)

// 营销邮件正文的HTML净化策略
var campaignBodyPolicy = bluemonday.UGCPolicy()

// 1x1透明GIF,用于邮件打开追踪
var trackingPixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// GetCampaignList 获取营销活动列表
func GetCampaignList(c *gin.Context) {
	// 获取当前用户信息
	_, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.CampaignsCollection)

	findOptions := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer cursor.Close(ctx)

	var campaigns []models.Campaign
	if err := cursor.All(ctx, &campaigns); err != nil {
		utils.HandleError(c, err)
		return
	}

	if campaigns == nil {
		campaigns = []models.Campaign{}
	}

	utils.SuccessResponse(c, gin.H{"campaigns": campaigns}, "")
}

// GetCampaignDetail 获取营销活动详情
func GetCampaignDetail(c *gin.Context) {
	id := c.Param("id")

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的活动ID"))
		return
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.CampaignsCollection)

	var campaign models.Campaign
	err = collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&campaign)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.HandleError(c, utils.CreateNotFoundError("营销活动"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, campaign, "")
}

// CreateCampaign 创建营销活动,正文HTML先净化再入库
func CreateCampaign(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var requestData models.CampaignCreateRequest
	if err := c.ShouldBindJSON(&requestData); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的请求数据: "+err.Error()))
		return
	}

	now := time.Now()
	campaign := models.Campaign{
		ID:           primitive.NewObjectID(),
		Name:         requestData.Name,
		Subject:      requestData.Subject,
		Body:         campaignBodyPolicy.Sanitize(requestData.Body),
		TargetStatus: requestData.TargetStatus,
		Status:       models.CampaignStatusDRAFT,
		CreatedBy:    user.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.CampaignsCollection)

	if _, err := collection.InsertOne(ctx, campaign); err != nil {
		utils.HandleError(c, err)
		return
	}

	service.RecordAudit("campaign", campaign.ID.Hex(), models.AuditActionCREATE, map[string]interface{}{
		"name":    campaign.Name,
		"subject": campaign.Subject,
	}, user)

	utils.LogInfo(map[string]interface{}{
		"id":   campaign.ID.Hex(),
		"name": campaign.Name,
	}, "营销活动创建成功")

	utils.SuccessResponse(c, campaign, "创建营销活动成功", http.StatusCreated)
}

// UpdateCampaign 更新营销活动
func UpdateCampaign(c *gin.Context) {
	id := c.Param("id")
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的活动ID"))
		return
	}

	var requestData models.CampaignUpdateRequest
	if err := c.ShouldBindJSON(&requestData); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的请求数据: "+err.Error()))
		return
	}

	updateData := bson.M{"updatedAt": time.Now()}
	if requestData.Name != "" {
		updateData["name"] = requestData.Name
	}
	if requestData.Subject != "" {
		updateData["subject"] = requestData.Subject
	}
	if requestData.Body != "" {
		updateData["body"] = campaignBodyPolicy.Sanitize(requestData.Body)
	}
	if requestData.TargetStatus != "" {
		updateData["targetStatus"] = requestData.TargetStatus
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.CampaignsCollection)

	result, err := collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": updateData})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if result.MatchedCount == 0 {
		utils.HandleError(c, utils.CreateNotFoundError("营销活动"))
		return
	}

	service.RecordAudit("campaign", id, models.AuditActionUPDATE, map[string]interface{}{
		"fields": getMapKeys(map[string]interface{}(updateData)),
	}, user)

	utils.SuccessResponse(c, nil, "更新营销活动成功")
}

// DeleteCampaign 删除营销活动
func DeleteCampaign(c *gin.Context) {
	id := c.Param("id")
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的活动ID"))
		return
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.CampaignsCollection)

	result, err := collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if result.DeletedCount == 0 {
		utils.HandleError(c, utils.CreateNotFoundError("营销活动"))
		return
	}

	service.RecordAudit("campaign", id, models.AuditActionDELETE, nil, user)

	utils.SuccessResponse(c, nil, "删除营销活动成功")
}

// SendCampaign 向目标线索群发营销邮件,正文追加打开追踪像素
func SendCampaign(c *gin.Context) {
	id := c.Param("id")
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的活动ID"))
		return
	}

	ctx := repository.GetContext()
	campaignsCollection := repository.Collection(repository.CampaignsCollection)

	var campaign models.Campaign
	err = campaignsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&campaign)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.HandleError(c, utils.CreateNotFoundError("营销活动"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	// 圈定受众: 有邮箱的线索,可按线索状态过滤
	audienceFilter := bson.M{"email": bson.M{"$ne": ""}}
	if campaign.TargetStatus != "" {
		audienceFilter["status"] = campaign.TargetStatus
	}

	leadsCollection := repository.Collection(repository.LeadsCollection)
	findOptions := options.Find().SetProjection(bson.M{"email": 1, "name": 1})
	cursor, err := leadsCollection.Find(ctx, audienceFilter, findOptions)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer cursor.Close(ctx)

	var audience []models.Lead
	if err := cursor.All(ctx, &audience); err != nil {
		utils.HandleError(c, err)
		return
	}

	cfg := config.LoadConfig()
	htmlBody := service.AppendTrackingPixel(campaign.Body, cfg.BaseURL, campaign.ID.Hex())

	sendResult := models.CampaignSendResult{}
	for _, lead := range audience {
		if err := service.SendMail(lead.Email, campaign.Subject, htmlBody); err != nil {
			utils.LogError(err, map[string]interface{}{
				"campaignId": id,
				"to":         lead.Email,
			}, "营销邮件发送失败")
			sendResult.Failed++
			continue
		}
		sendResult.Sent++
	}

	// 记录群发结果
	_, err = campaignsCollection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{
		"$set": bson.M{
			"status":    models.CampaignStatusSENT,
			"sentCount": sendResult.Sent,
			"updatedAt": time.Now(),
		},
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	service.RecordAudit("campaign", id, models.AuditActionSEND, map[string]interface{}{
		"sent":   sendResult.Sent,
		"failed": sendResult.Failed,
	}, user)

	utils.LogInfo(map[string]interface{}{
		"id":     id,
		"sent":   sendResult.Sent,
		"failed": sendResult.Failed,
	}, "营销活动群发完成")

	utils.SuccessResponse(c, sendResult, "营销活动发送完成")
}

// SendCampaignTestEmail 发送测试邮件到指定地址
func SendCampaignTestEmail(c *gin.Context) {
	id := c.Param("id")
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的活动ID"))
		return
	}

	var requestData models.CampaignTestEmailRequest
	if err := c.ShouldBindJSON(&requestData); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的请求数据: "+err.Error()))
		return
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.CampaignsCollection)

	var campaign models.Campaign
	err = collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&campaign)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.HandleError(c, utils.CreateNotFoundError("营销活动"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	// 测试邮件不带追踪像素,避免污染打开统计
	if err := service.SendMail(requestData.To, campaign.Subject, campaign.Body); err != nil {
		utils.LogError(err, map[string]interface{}{
			"campaignId": id,
			"to":         requestData.To,
		}, "测试邮件发送失败")
		utils.HandleError(c, utils.CreateInternalError("测试邮件发送失败: "+err.Error()))
		return
	}

	utils.LogInfo(map[string]interface{}{
		"campaignId": id,
		"to":         requestData.To,
		"user":       user.Name,
	}, "测试邮件发送成功")

	utils.SuccessResponse(c, nil, "测试邮件发送成功")
}

// TrackCampaignOpen 邮件打开追踪像素,无需认证,始终返回1x1 GIF
func TrackCampaignOpen(c *gin.Context) {
	id := c.Param("id")

	// 计数尽力而为,任何失败都不影响像素返回
	if objectID, err := primitive.ObjectIDFromHex(id); err == nil {
		collection := repository.Collection(repository.CampaignsCollection)
		_, err := collection.UpdateOne(
			repository.GetContext(),
			bson.M{"_id": objectID},
			bson.M{"$inc": bson.M{"openCount": 1}},
		)
		if err != nil {
			utils.LogError(err, map[string]interface{}{"campaignId": id}, "更新打开计数失败")
		}
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Data(http.StatusOK, "image/gif", trackingPixelGIF)
}
