package models

// 图表数据项
type ChartDataItem struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// AnalyticsOverview 数据概览响应结构
type AnalyticsOverview struct {
	TotalLeads       int             `json:"totalLeads"`       // 线索总数
	NewLeads7d       int             `json:"newLeads7d"`       // 近7天新增线索
	Converted        int             `json:"converted"`        // 已转化线索数
	ConversionRate   float64         `json:"conversionRate"`   // 转化率
	TotalCalls       int             `json:"totalCalls"`       // 通话总数
	CallsToday       int             `json:"callsToday"`       // 今日通话数
	PendingFollowUps int             `json:"pendingFollowUps"` // 待跟进线索数
	StatusBreakdown  []ChartDataItem `json:"statusBreakdown"`  // 状态分布
	SourceBreakdown  []ChartDataItem `json:"sourceBreakdown"`  // 来源分布
}

// FunnelStage 漏斗单个阶段
type FunnelStage struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// AnalyticsFunnel 转化漏斗响应结构
type AnalyticsFunnel struct {
	Stages []FunnelStage `json:"stages"`
}

// AnalyticsForecast 简单转化预测响应结构
type AnalyticsForecast struct {
	Period               string  `json:"period"`               // 预测周期
	Last30dConversions   int     `json:"last30dConversions"`   // 近30天转化数
	ProjectedConversions int     `json:"projectedConversions"` // 预计转化数
	ProjectedRevenue     float64 `json:"projectedRevenue"`     // 预计收入
}
