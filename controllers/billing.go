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

// GetPlanList 获取订阅套餐列表
func GetPlanList(c *gin.Context) {
	// 获取当前用户信息
	_, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.PlansCollection)

	findOptions := options.Find().SetSort(bson.M{"price": 1})
	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer cursor.Close(ctx)

	var plans []models.Plan
	if err := cursor.All(ctx, &plans); err != nil {
		utils.HandleError(c, err)
		return
	}

	if plans == nil {
		plans = []models.Plan{}
	}

	utils.SuccessResponse(c, gin.H{"plans": plans}, "")
}

// CreateInvoice 按套餐开具账单
func CreateInvoice(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var requestData models.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&requestData); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的请求数据: "+err.Error()))
		return
	}

	planObjectID, err := primitive.ObjectIDFromHex(requestData.PlanID)
	if err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的套餐ID"))
		return
	}

	ctx := repository.GetContext()
	plansCollection := repository.Collection(repository.PlansCollection)

	var plan models.Plan
	err = plansCollection.FindOne(ctx, bson.M{"_id": planObjectID}).Decode(&plan)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.HandleError(c, utils.CreateNotFoundError("套餐"))
			return
		}
		utils.HandleError(c, err)
		return
	}

	invoice := buildInvoice(requestData.PlanID, plan, user.ID)

	invoicesCollection := repository.Collection(repository.InvoicesCollection)
	if _, err := invoicesCollection.InsertOne(ctx, invoice); err != nil {
		utils.HandleError(c, err)
		return
	}

	service.RecordAudit("invoice", invoice.ID.Hex(), models.AuditActionCREATE, map[string]interface{}{
		"planId":   invoice.PlanID,
		"planName": invoice.PlanName,
		"amount":   invoice.Amount,
	}, user)

	utils.LogInfo(map[string]interface{}{
		"id":       invoice.ID.Hex(),
		"planName": invoice.PlanName,
		"amount":   invoice.Amount,
	}, "账单创建成功")

	utils.SuccessResponse(c, invoice, "创建账单成功", http.StatusCreated)
}

// buildInvoice 按下单时的套餐快照生成待支付账单
func buildInvoice(planID string, plan models.Plan, createdBy string) models.Invoice {
	return models.Invoice{
		ID:        primitive.NewObjectID(),
		PlanID:    planID,
		PlanName:  plan.Name,
		Amount:    plan.Price,
		Status:    "pending",
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
}
