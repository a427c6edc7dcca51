package controllers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/repository"
	"github.com/BerniceZTT/telecrm_end/utils"
)

// 漏斗阶段的固定顺序
var funnelStatuses = []string{
	models.LeadStatusNEW,
	models.LeadStatusCONTACTED,
	models.LeadStatusINTERESTED,
	models.LeadStatusQUALIFIED,
	models.LeadStatusCONVERTED,
}

// GetAnalyticsOverview 获取数据概览统计
func GetAnalyticsOverview(c *gin.Context) {
	// 获取当前用户
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	utils.LogInfo(map[string]interface{}{
		"user": user.Name,
		"role": user.Role,
	}, "获取数据概览")

	// 基于用户角色构建查询条件
	leadFilter := bson.M{}
	callFilter := bson.M{}
	if !utils.CanViewAllLeads(user.Role) {
		leadFilter["assignedTo"] = user.ID
		callFilter["userId"] = user.ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	leadsCollection := repository.Collection(repository.LeadsCollection)
	callLogsCollection := repository.Collection(repository.CallLogsCollection)

	now := time.Now()

	totalLeads, err := leadsCollection.CountDocuments(ctx, leadFilter)
	if err != nil {
		utils.HandleError(c, fmt.Errorf("计算线索总数失败: %w", err))
		return
	}

	// 近7天新增线索
	newLeadsFilter := mergeFilter(leadFilter, bson.M{"createdAt": bson.M{"$gte": now.AddDate(0, 0, -7)}})
	newLeads7d, err := leadsCollection.CountDocuments(ctx, newLeadsFilter)
	if err != nil {
		utils.HandleError(c, fmt.Errorf("计算新增线索失败: %w", err))
		return
	}

	convertedFilter := mergeFilter(leadFilter, bson.M{"status": models.LeadStatusCONVERTED})
	converted, err := leadsCollection.CountDocuments(ctx, convertedFilter)
	if err != nil {
		utils.HandleError(c, fmt.Errorf("计算转化线索失败: %w", err))
		return
	}

	conversionRate := 0.0
	if totalLeads > 0 {
		conversionRate = math.Round(float64(converted)/float64(totalLeads)*10000) / 100
	}

	totalCalls, err := callLogsCollection.CountDocuments(ctx, callFilter)
	if err != nil {
		utils.HandleError(c, fmt.Errorf("计算通话总数失败: %w", err))
		return
	}

	// 今日通话,按自然日计算
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	callsTodayFilter := mergeFilter(callFilter, bson.M{"createdAt": bson.M{"$gte": startOfDay}})
	callsToday, err := callLogsCollection.CountDocuments(ctx, callsTodayFilter)
	if err != nil {
		utils.HandleError(c, fmt.Errorf("计算今日通话数失败: %w", err))
		return
	}

	pendingFilter := mergeFilter(leadFilter, bson.M{
		"status": bson.M{"$in": []string{models.LeadStatusPENDING, models.LeadStatusFOLLOWUP}},
	})
	pendingFollowUps, err := leadsCollection.CountDocuments(ctx, pendingFilter)
	if err != nil {
		utils.HandleError(c, fmt.Errorf("计算待跟进线索数失败: %w", err))
		return
	}

	// 状态和来源分布
	statusBreakdown, err := getChartDataAggregation(ctx, leadsCollection, leadFilter, "$status")
	if err != nil {
		utils.HandleError(c, fmt.Errorf("获取状态分布失败: %w", err))
		return
	}
	sourceBreakdown, err := getChartDataAggregation(ctx, leadsCollection, leadFilter, "$source")
	if err != nil {
		utils.HandleError(c, fmt.Errorf("获取来源分布失败: %w", err))
		return
	}

	responseData := models.AnalyticsOverview{
		TotalLeads:       int(totalLeads),
		NewLeads7d:       int(newLeads7d),
		Converted:        int(converted),
		ConversionRate:   conversionRate,
		TotalCalls:       int(totalCalls),
		CallsToday:       int(callsToday),
		PendingFollowUps: int(pendingFollowUps),
		StatusBreakdown:  statusBreakdown,
		SourceBreakdown:  sourceBreakdown,
	}

	utils.SuccessResponse(c, responseData, "成功")
}

// GetAnalyticsFunnel 获取转化漏斗,阶段顺序固定
func GetAnalyticsFunnel(c *gin.Context) {
	// 获取当前用户
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	leadFilter := bson.M{}
	if !utils.CanViewAllLeads(user.Role) {
		leadFilter["assignedTo"] = user.ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	leadsCollection := repository.Collection(repository.LeadsCollection)

	stages := make([]models.FunnelStage, 0, len(funnelStatuses))
	for _, status := range funnelStatuses {
		filter := mergeFilter(leadFilter, bson.M{"status": status})
		count, err := leadsCollection.CountDocuments(ctx, filter)
		if err != nil {
			utils.HandleError(c, fmt.Errorf("计算漏斗阶段 %s 失败: %w", status, err))
			return
		}
		stages = append(stages, models.FunnelStage{
			Status: status,
			Count:  int(count),
		})
	}

	utils.SuccessResponse(c, models.AnalyticsFunnel{Stages: stages}, "成功")
}

// GetAnalyticsForecast 获取简单转化预测: 以近30天转化量线性外推下一个30天
func GetAnalyticsForecast(c *gin.Context) {
	// 获取当前用户
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	leadFilter := bson.M{}
	if !utils.CanViewAllLeads(user.Role) {
		leadFilter["assignedTo"] = user.ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	leadsCollection := repository.Collection(repository.LeadsCollection)

	// 转化时间以最后更新时间近似
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	convertedFilter := mergeFilter(leadFilter, bson.M{
		"status":    models.LeadStatusCONVERTED,
		"updatedAt": bson.M{"$gte": thirtyDaysAgo},
	})
	last30d, err := leadsCollection.CountDocuments(ctx, convertedFilter)
	if err != nil {
		utils.HandleError(c, fmt.Errorf("计算近30天转化数失败: %w", err))
		return
	}

	// 以账单均价估算预计收入
	avgAmount, err := getAverageInvoiceAmount(ctx)
	if err != nil {
		utils.HandleError(c, fmt.Errorf("计算账单均价失败: %w", err))
		return
	}

	forecast := models.AnalyticsForecast{
		Period:               "30d",
		Last30dConversions:   int(last30d),
		ProjectedConversions: int(last30d),
		ProjectedRevenue:     math.Round(float64(last30d)*avgAmount*100) / 100,
	}

	utils.SuccessResponse(c, forecast, "成功")
}

// getChartDataAggregation 执行图表数据聚合
func getChartDataAggregation(ctx context.Context, collection *mongo.Collection, query bson.M, groupField string) ([]models.ChartDataItem, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: query}},
		{{Key: "$group", Value: bson.M{"_id": groupField, "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		ID    string `json:"_id,omitempty" bson:"_id,omitempty"`
		Count int    `bson:"count"`
	}

	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	chartData := []models.ChartDataItem{}
	for _, result := range results {
		chartData = append(chartData, models.ChartDataItem{
			Name:  result.ID,
			Value: result.Count,
		})
	}

	return chartData, nil
}

// getAverageInvoiceAmount 计算账单平均金额,无账单时返回0
func getAverageInvoiceAmount(ctx context.Context) (float64, error) {
	invoicesCollection := repository.Collection(repository.InvoicesCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$amount"}}}},
	}

	cursor, err := invoicesCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg float64 `bson:"avg"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, err
	}

	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Avg, nil
}

// mergeFilter 合并基础过滤条件与追加条件,不修改原对象
func mergeFilter(base bson.M, extra bson.M) bson.M {
	merged := bson.M{}
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
