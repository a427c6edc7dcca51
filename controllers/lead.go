package controllers

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

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

// 直接更新接口允许修改的线索字段白名单
var leadUpdatableFields = map[string]bool{
	"name":         true,
	"phone":        true,
	"email":        true,
	"type":         true,
	"source":       true,
	"score":        true,
	"status":       true,
	"assignedTo":   true,
	"nextFollowUp": true,
	"remarks":      true,
	"notes":        true,
}

// 电销专员仅可修改的字段
var telecallerUpdatableFields = map[string]bool{
	"status": true,
	"notes":  true,
}

// GetLeadList 获取线索列表
func GetLeadList(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	keyword := c.Query("keyword")
	status := c.Query("status")
	leadType := c.Query("type")
	assignedTo := c.Query("assignedTo")
	dateFrom := c.Query("dateFrom")
	dateTo := c.Query("dateTo")
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

	utils.LogInfo(map[string]interface{}{
		"user":       user.Name,
		"page":       page,
		"limit":      limit,
		"keyword":    keyword,
		"status":     status,
		"type":       leadType,
		"assignedTo": assignedTo,
		"dateFrom":   dateFrom,
		"dateTo":     dateTo,
	}, "获取线索列表")

	filter := bson.M{}

	if keyword != "" {
		escaped := regexp.QuoteMeta(keyword)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": escaped, "$options": "i"}},
			{"phone": bson.M{"$regex": escaped, "$options": "i"}},
			{"email": bson.M{"$regex": escaped, "$options": "i"}},
		}
	}

	if status != "" {
		filter["status"] = status
	}

	if leadType != "" {
		filter["type"] = leadType
	}

	if assignedTo != "" {
		filter["assignedTo"] = assignedTo
	}

	// 创建日期范围过滤,边界日期均包含在内
	createdAtFilter, apiErr := buildDateRangeFilter(dateFrom, dateTo)
	if apiErr != nil {
		utils.HandleError(c, apiErr)
		return
	}
	if createdAtFilter != nil {
		filter["createdAt"] = createdAtFilter
	}

	// 电销专员只能查看分配给自己的线索
	if !utils.CanViewAllLeads(user.Role) {
		filter["assignedTo"] = user.ID
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.LeadsCollection)

	totalCount, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	// 固定按创建时间倒序,分页依赖稳定排序
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

	var leads []models.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo(map[string]interface{}{
		"count": len(leads),
		"total": totalCount,
	}, "成功获取线索列表")

	utils.PaginatedResponse(c, leads, totalCount, int64(page), int64(limit))
}

// GetLeadDetail 获取单条线索详情
func GetLeadDetail(c *gin.Context) {
	id := c.Param("id")
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的线索ID"))
		return
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.LeadsCollection)

	var lead models.Lead
	err = collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.HandleError(c, utils.CreateNotFoundError("线索"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	// 电销专员只能查看自己的线索
	if !utils.CanViewAllLeads(user.Role) && lead.AssignedTo != user.ID {
		utils.HandleError(c, utils.CreateForbiddenError())
		return
	}

	utils.SuccessResponse(c, lead, "")
}

// CreateLead 创建线索
func CreateLead(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var requestData models.LeadCreateRequest
	if err := c.ShouldBindJSON(&requestData); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的请求数据: "+err.Error()))
		return
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.LeadsCollection)

	// 归属人必须是存在的用户
	if requestData.AssignedTo != "" {
		if _, err := repository.FindUserByID(requestData.AssignedTo); err != nil {
			utils.HandleError(c, utils.CreateInvalidArgumentError("指定的归属用户不存在"))
			return
		}
	}

	// 未显式指定评分时,基础评分叠加随机扰动
	score := 0
	if requestData.Score != nil {
		score = *requestData.Score
	}

	status := requestData.Status
	if status == "" {
		status = models.LeadStatusNEW
	}

	now := time.Now()
	newLead := models.Lead{
		ID:           primitive.NewObjectID(),
		Name:         requestData.Name,
		Phone:        requestData.Phone,
		Email:        requestData.Email,
		Type:         requestData.Type,
		Source:       requestData.Source,
		Status:       status,
		AssignedTo:   requestData.AssignedTo,
		NextFollowUp: requestData.NextFollowUp,
		Remarks:      requestData.Remarks,
		Notes:        []models.LeadNote{},
		CreatedBy:    user.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if requestData.Score == nil {
		score = service.BaseScore(&newLead) + service.ScoreJitter()
	}
	newLead.Score = score

	if _, err := collection.InsertOne(ctx, newLead); err != nil {
		utils.HandleError(c, err)
		return
	}

	service.RecordAudit("lead", newLead.ID.Hex(), models.AuditActionCREATE, map[string]interface{}{
		"name":       newLead.Name,
		"status":     newLead.Status,
		"score":      newLead.Score,
		"assignedTo": newLead.AssignedTo,
	}, user)

	utils.LogInfo(map[string]interface{}{
		"id":    newLead.ID.Hex(),
		"name":  newLead.Name,
		"score": newLead.Score,
	}, "线索创建成功")

	utils.SuccessResponse(c, newLead, "创建线索成功", http.StatusCreated)
}

// UpdateLead 更新线索
func UpdateLead(c *gin.Context) {
	id := c.Param("id")
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的请求数据: "+err.Error()))
		return
	}

	utils.LogInfo(map[string]interface{}{
		"id":     id,
		"user":   user.Name,
		"fields": getMapKeys(updateData),
	}, "更新线索")

	// 字段白名单校验,未知字段直接拒绝
	if apiErr := validateLeadUpdateFields(updateData, user.Role); apiErr != nil {
		utils.HandleError(c, apiErr)
		return
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的线索ID"))
		return
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.LeadsCollection)

	var lead models.Lead
	err = collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.HandleError(c, utils.CreateNotFoundError("线索"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	// 电销专员只能更新自己的线索
	if !utils.CanViewAllLeads(user.Role) && lead.AssignedTo != user.ID {
		utils.HandleError(c, utils.CreateForbiddenError())
		return
	}

	// 归属人变更需要验证目标用户
	assignChanged := false
	if raw, exists := updateData["assignedTo"]; exists {
		newAssignee, _ := raw.(string)
		if newAssignee != "" {
			if _, err := repository.FindUserByID(newAssignee); err != nil {
				utils.HandleError(c, utils.CreateInvalidArgumentError("指定的归属用户不存在"))
				return
			}
		}
		assignChanged = newAssignee != lead.AssignedTo
	}

	setDoc, apiErr := buildLeadUpdateDoc(updateData, user.Name)
	if apiErr != nil {
		utils.HandleError(c, apiErr)
		return
	}
	setDoc["updatedAt"] = time.Now()

	result, err := collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": setDoc},
	)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if result.MatchedCount == 0 {
		utils.HandleError(c, utils.CreateNotFoundError("线索"))
		return
	}

	auditDetails := map[string]interface{}{
		"fields": getMapKeys(updateData),
	}
	if assignChanged {
		auditDetails["assignedFrom"] = lead.AssignedTo
		auditDetails["assignedTo"] = updateData["assignedTo"]
	}
	service.RecordAudit("lead", id, models.AuditActionUPDATE, auditDetails, user)

	utils.LogInfo(map[string]interface{}{
		"id":          id,
		"updateCount": result.ModifiedCount,
	}, "线索更新成功")

	utils.SuccessResponse(c, gin.H{"updateCount": result.ModifiedCount}, "线索更新成功")
}

// DeleteLead 删除线索,通话记录级联删除
func DeleteLead(c *gin.Context) {
	id := c.Param("id")
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	utils.LogInfo(map[string]interface{}{
		"id":   id,
		"user": user.Name,
	}, "删除线索")

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的线索ID"))
		return
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.LeadsCollection)

	var lead models.Lead
	err = collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.HandleError(c, utils.CreateNotFoundError("线索"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	// 级联删除通话记录和线索本身,放在同一事务里
	deleted, err := repository.WithTransaction(func(sessCtx mongo.SessionContext) (interface{}, error) {
		callLogsCollection := repository.Collection(repository.CallLogsCollection)
		if _, err := callLogsCollection.DeleteMany(sessCtx, bson.M{"leadId": id}); err != nil {
			return nil, err
		}

		result, err := collection.DeleteOne(sessCtx, bson.M{"_id": objectID})
		if err != nil {
			return nil, err
		}
		return result.DeletedCount, nil
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if count, _ := deleted.(int64); count == 0 {
		utils.HandleError(c, utils.CreateNotFoundError("线索"))
		return
	}

	service.RecordAudit("lead", id, models.AuditActionDELETE, map[string]interface{}{
		"name": lead.Name,
	}, user)

	utils.LogInfo(map[string]interface{}{
		"id":   id,
		"name": lead.Name,
	}, "线索删除成功")

	utils.SuccessResponse(c, nil, "线索删除成功")
}

// validateLeadUpdateFields 校验更新字段白名单与角色可写范围
func validateLeadUpdateFields(updateData map[string]interface{}, role string) *utils.ApiError {
	if len(updateData) == 0 {
		return utils.CreateInvalidArgumentError("更新内容不能为空")
	}

	isTelecaller := role == string(models.UserRoleTELECALLER)
	for field := range updateData {
		if !leadUpdatableFields[field] {
			return utils.CreateInvalidArgumentError(fmt.Sprintf("不允许更新的字段: %s", field))
		}
		if isTelecaller && !telecallerUpdatableFields[field] {
			return utils.CreateInvalidArgumentError(fmt.Sprintf("电销专员不能修改字段: %s", field))
		}
	}
	return nil
}

// buildLeadUpdateDoc 将请求数据规整成$set文档,数值与日期类字段做类型归一
func buildLeadUpdateDoc(updateData map[string]interface{}, operatorName string) (bson.M, *utils.ApiError) {
	setDoc := bson.M{}

	for field, value := range updateData {
		switch field {
		case "score":
			num, ok := value.(float64)
			if !ok || num < 0 || num != float64(int(num)) {
				return nil, utils.CreateInvalidArgumentError("评分必须为非负整数")
			}
			setDoc["score"] = int(num)

		case "nextFollowUp":
			if value == nil {
				setDoc["nextFollowUp"] = nil
				continue
			}
			str, ok := value.(string)
			if !ok {
				return nil, utils.CreateInvalidArgumentError("无效的跟进日期")
			}
			t, err := parseDateTime(str)
			if err != nil {
				return nil, utils.CreateInvalidArgumentError("无效的跟进日期: " + str)
			}
			setDoc["nextFollowUp"] = t

		case "notes":
			notes, apiErr := parseLeadNotes(value, operatorName)
			if apiErr != nil {
				return nil, apiErr
			}
			setDoc["notes"] = notes

		default:
			setDoc[field] = value
		}
	}

	return setDoc, nil
}

// parseLeadNotes 解析备注数组
func parseLeadNotes(value interface{}, defaultAuthor string) ([]models.LeadNote, *utils.ApiError) {
	rawList, ok := value.([]interface{})
	if !ok {
		return nil, utils.CreateInvalidArgumentError("notes 必须为数组")
	}

	notes := make([]models.LeadNote, 0, len(rawList))
	for _, raw := range rawList {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return nil, utils.CreateInvalidArgumentError("无效的备注格式")
		}

		text, _ := m["text"].(string)
		if text == "" {
			return nil, utils.CreateInvalidArgumentError("备注内容不能为空")
		}

		author, _ := m["author"].(string)
		if author == "" {
			author = defaultAuthor
		}

		timestamp := time.Now()
		if ts, ok := m["timestamp"].(string); ok && ts != "" {
			if t, err := parseDateTime(ts); err == nil {
				timestamp = t
			}
		}

		notes = append(notes, models.LeadNote{
			Text:      text,
			Author:    author,
			Timestamp: timestamp,
		})
	}
	return notes, nil
}

// buildDateRangeFilter 构建创建日期范围过滤,起止日期均按自然日包含
func buildDateRangeFilter(dateFrom, dateTo string) (bson.M, *utils.ApiError) {
	if dateFrom == "" && dateTo == "" {
		return nil, nil
	}

	rangeFilter := bson.M{}
	if dateFrom != "" {
		from, err := time.Parse("2006-01-02", dateFrom)
		if err != nil {
			return nil, utils.CreateInvalidArgumentError("无效的起始日期: " + dateFrom)
		}
		rangeFilter["$gte"] = from
	}
	if dateTo != "" {
		to, err := time.Parse("2006-01-02", dateTo)
		if err != nil {
			return nil, utils.CreateInvalidArgumentError("无效的结束日期: " + dateTo)
		}
		// 结束日期包含整天
		rangeFilter["$lt"] = to.AddDate(0, 0, 1)
	}
	return rangeFilter, nil
}

// parseDateTime 解析时间字符串,兼容RFC3339和日期两种格式
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// 辅助函数：获取map的所有键
func getMapKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
