package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 审计动作常量
const (
	AuditActionCREATE  = "create"
	AuditActionUPDATE  = "update"
	AuditActionDELETE  = "delete"
	AuditActionMERGE   = "merge"
	AuditActionIMPORT  = "import"
	AuditActionSEND    = "send"
	AuditActionTRIGGER = "trigger"
)

// AuditRecord 审计日志结构体。仅追加,记录每一次变更操作。
type AuditRecord struct {
	ID              primitive.ObjectID     `bson:"_id,omitempty" json:"_id,omitempty"`
	Entity          string                 `bson:"entity" json:"entity"`
	EntityID        string                 `bson:"entityId" json:"entityId"`
	Action          string                 `bson:"action" json:"action"`
	Details         map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
	PerformedBy     string                 `bson:"performedBy" json:"performedBy"`
	PerformedByName string                 `bson:"performedByName,omitempty" json:"performedByName,omitempty"`
	CreatedAt       time.Time              `bson:"createdAt" json:"createdAt"`
}
