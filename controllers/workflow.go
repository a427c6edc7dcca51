package controllers

import (
	"net/http"
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

// GetWorkflowList 获取工作流列表
func GetWorkflowList(c *gin.Context) {
	// 获取当前用户信息
	_, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.WorkflowsCollection)

	findOptions := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer cursor.Close(ctx)

	var workflows []models.Workflow
	if err := cursor.All(ctx, &workflows); err != nil {
		utils.HandleError(c, err)
		return
	}

	if workflows == nil {
		workflows = []models.Workflow{}
	}

	utils.SuccessResponse(c, gin.H{"workflows": workflows}, "")
}

// CreateWorkflow 创建工作流
func CreateWorkflow(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var requestData models.WorkflowCreateRequest
	if err := c.ShouldBindJSON(&requestData); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的请求数据: "+err.Error()))
		return
	}

	// 动作定义必须合法
	if err := service.ValidateWorkflowAction(requestData.Action); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError(err.Error()))
		return
	}

	enabled := true
	if requestData.Enabled != nil {
		enabled = *requestData.Enabled
	}

	workflow := models.Workflow{
		ID:        primitive.NewObjectID(),
		Name:      requestData.Name,
		Event:     requestData.Event,
		Condition: requestData.Condition,
		Action:    requestData.Action,
		Enabled:   enabled,
		CreatedBy: user.ID,
		CreatedAt: time.Now(),
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.WorkflowsCollection)

	if _, err := collection.InsertOne(ctx, workflow); err != nil {
		utils.HandleError(c, err)
		return
	}

	service.RecordAudit("workflow", workflow.ID.Hex(), models.AuditActionCREATE, map[string]interface{}{
		"name":  workflow.Name,
		"event": workflow.Event,
	}, user)

	utils.LogInfo(map[string]interface{}{
		"id":    workflow.ID.Hex(),
		"name":  workflow.Name,
		"event": workflow.Event,
	}, "工作流创建成功")

	utils.SuccessResponse(c, workflow, "创建工作流成功", http.StatusCreated)
}

// TriggerWorkflows 手动触发事件,对线索执行所有命中的启用工作流
func TriggerWorkflows(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var requestData models.WorkflowTriggerRequest
	if err := c.ShouldBindJSON(&requestData); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的请求数据: "+err.Error()))
		return
	}

	leadObjectID, err := primitive.ObjectIDFromHex(requestData.LeadID)
	if err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的线索ID"))
		return
	}

	ctx := repository.GetContext()
	leadsCollection := repository.Collection(repository.LeadsCollection)

	var lead models.Lead
	err = leadsCollection.FindOne(ctx, bson.M{"_id": leadObjectID}).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.HandleError(c, utils.CreateNotFoundError("线索"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	// 只取该事件下启用的工作流
	workflowsCollection := repository.Collection(repository.WorkflowsCollection)
	cursor, err := workflowsCollection.Find(ctx, bson.M{
		"event":   requestData.Event,
		"enabled": true,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer cursor.Close(ctx)

	var workflows []models.Workflow
	if err := cursor.All(ctx, &workflows); err != nil {
		utils.HandleError(c, err)
		return
	}

	result := models.WorkflowTriggerResult{Matched: []string{}}
	for i := range workflows {
		wf := &workflows[i]
		if !service.WorkflowMatches(wf, &lead) {
			continue
		}
		result.Matched = append(result.Matched, wf.Name)

		if err := service.ApplyWorkflowAction(ctx, &lead, wf.Action, user); err != nil {
			utils.LogError(err, map[string]interface{}{
				"workflow": wf.Name,
				"leadId":   requestData.LeadID,
			}, "执行工作流动作失败")
			continue
		}
		result.Applied++

		service.RecordAudit("workflow", wf.ID.Hex(), models.AuditActionTRIGGER, map[string]interface{}{
			"event":  requestData.Event,
			"leadId": requestData.LeadID,
			"action": wf.Action.Type,
		}, user)
	}

	utils.LogInfo(map[string]interface{}{
		"event":   requestData.Event,
		"leadId":  requestData.LeadID,
		"matched": len(result.Matched),
		"applied": result.Applied,
	}, "工作流触发完成")

	utils.SuccessResponse(c, result, "工作流触发完成")
}
