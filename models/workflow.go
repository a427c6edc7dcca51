package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 工作流动作类型
const (
	WorkflowActionSETSTATUS  = "set-status"
	WorkflowActionAPPENDNOTE = "append-note"
	WorkflowActionASSIGN     = "assign"
)

// WorkflowCondition 工作流触发条件,对线索字段做等值匹配。
// Field 为空表示无条件命中。
type WorkflowCondition struct {
	Field  string `bson:"field" json:"field"`
	Equals string `bson:"equals" json:"equals"`
}

// WorkflowAction 工作流执行动作
type WorkflowAction struct {
	Type  string `bson:"type" json:"type"`
	Value string `bson:"value" json:"value"`
}

// Workflow 自动化工作流
type Workflow struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Event     string             `bson:"event" json:"event"`
	Condition WorkflowCondition  `bson:"condition" json:"condition"`
	Action    WorkflowAction     `bson:"action" json:"action"`
	Enabled   bool               `bson:"enabled" json:"enabled"`
	CreatedBy string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type (
	// WorkflowCreateRequest 创建工作流请求
	WorkflowCreateRequest struct {
		Name      string            `json:"name" binding:"required"`
		Event     string            `json:"event" binding:"required"`
		Condition WorkflowCondition `json:"condition"`
		Action    WorkflowAction    `json:"action" binding:"required"`
		Enabled   *bool             `json:"enabled"`
	}

	// WorkflowTriggerRequest 手动触发工作流请求
	WorkflowTriggerRequest struct {
		Event  string `json:"event" binding:"required"`
		LeadID string `json:"leadId" binding:"required"`
	}

	// WorkflowTriggerResult 触发结果
	WorkflowTriggerResult struct {
		Matched []string `json:"matched"` // 命中的工作流名称
		Applied int      `json:"applied"`
	}
)
