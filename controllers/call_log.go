package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

// GetCallLogs 获取通话记录列表
func GetCallLogs(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	leadID := c.Query("leadId")
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "20")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 20
	}
	skip := (page - 1) * limit

	filter := bson.M{}
	if leadID != "" {
		filter["leadId"] = leadID
	}

	// 电销专员只能查看自己的通话记录
	if !utils.CanViewAllLeads(user.Role) {
		filter["userId"] = user.ID
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.CallLogsCollection)

	totalCount, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"createdAt": -1})
	findOptions.SetSkip(int64(skip))
	findOptions.SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer cursor.Close(ctx)

	var callLogs []models.CallLog
	if err := cursor.All(ctx, &callLogs); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, callLogs, totalCount, int64(page), int64(limit))
}

// CreateCallLog 创建通话记录。记录只增不改,写入前校验线索与用户的有效性。
func CreateCallLog(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var requestData models.CreateCallLogInput
	if err := c.ShouldBindJSON(&requestData); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的请求数据: "+err.Error()))
		return
	}

	if requestData.QualityScore != nil {
		if *requestData.QualityScore < 0 || *requestData.QualityScore > 1 {
			utils.HandleError(c, utils.CreateInvalidArgumentError("质检评分必须在0到1之间"))
			return
		}
	}

	leadObjectID, err := primitive.ObjectIDFromHex(requestData.LeadID)
	if err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的线索ID"))
		return
	}

	ctx := repository.GetContext()
	leadsCollection := repository.Collection(repository.LeadsCollection)

	// 线索必须存在,写入时校验而不是依赖外键
	var lead models.Lead
	err = leadsCollection.FindOne(ctx, bson.M{"_id": leadObjectID}).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.HandleError(c, utils.CreateInvalidArgumentError("线索不存在"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	// 电销专员只能为自己名下的线索记录通话
	if !utils.CanViewAllLeads(user.Role) && lead.AssignedTo != user.ID {
		utils.HandleError(c, utils.CreateForbiddenError())
		return
	}

	// 默认记录在当前用户名下,管理员和主管可代他人记录
	callUserID := user.ID
	callUserName := user.Name
	if requestData.UserID != "" && requestData.UserID != user.ID {
		if !utils.CanViewAllLeads(user.Role) {
			utils.HandleError(c, utils.CreateForbiddenError())
			return
		}
		target, err := repository.FindUserByID(requestData.UserID)
		if err != nil {
			utils.HandleError(c, utils.CreateInvalidArgumentError("指定的通话用户不存在"))
			return
		}
		callUserID = requestData.UserID
		callUserName = target.Name
	}

	now := time.Now()
	callLog := models.CallLog{
		ID:              primitive.NewObjectID(),
		LeadID:          requestData.LeadID,
		UserID:          callUserID,
		UserName:        callUserName,
		Outcome:         requestData.Outcome,
		DurationSeconds: requestData.DurationSeconds,
		Notes:           requestData.Notes,
		QualityScore:    requestData.QualityScore,
		RecordingRef:    requestData.RecordingRef,
		CreatedAt:       now,
	}

	collection := repository.Collection(repository.CallLogsCollection)
	if _, err := collection.InsertOne(ctx, callLog); err != nil {
		utils.HandleError(c, err)
		return
	}

	// 尽力更新线索最近联系时间,失败不影响通话记录本身
	service.TouchLeadLastContacted(ctx, leadObjectID, now)

	service.RecordAudit("call", callLog.ID.Hex(), models.AuditActionCREATE, map[string]interface{}{
		"leadId":          callLog.LeadID,
		"outcome":         callLog.Outcome,
		"durationSeconds": callLog.DurationSeconds,
	}, user)

	utils.LogInfo(map[string]interface{}{
		"id":      callLog.ID.Hex(),
		"leadId":  callLog.LeadID,
		"outcome": callLog.Outcome,
	}, "通话记录创建成功")

	utils.SuccessResponse(c, callLog, "通话记录创建成功", http.StatusCreated)
}

// UploadCallRecording 上传通话录音,返回可嵌入通话记录的引用
func UploadCallRecording(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("未找到上传文件"))
		return
	}

	cfg := config.LoadConfig()
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		utils.HandleError(c, err)
		return
	}

	// 使用uuid重命名,避免原始文件名冲突或注入路径
	ext := filepath.Ext(file.Filename)
	recordingRef := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	dst := filepath.Join(cfg.UploadDir, recordingRef)

	if err := c.SaveUploadedFile(file, dst); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo(map[string]interface{}{
		"user":         user.Name,
		"recordingRef": recordingRef,
		"size":         file.Size,
	}, "通话录音上传成功")

	utils.SuccessResponse(c, gin.H{"recordingRef": recordingRef}, "录音上传成功", http.StatusCreated)
}
