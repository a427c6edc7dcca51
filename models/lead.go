package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 线索常用状态。状态字段为自由字符串,不做状态机约束,
// 以下仅为前端内置的常用取值。
const (
	LeadStatusNEW           = "new"
	LeadStatusCONTACTED     = "contacted"
	LeadStatusINTERESTED    = "interested"
	LeadStatusCONVERTED     = "converted"
	LeadStatusNOTINTERESTED = "not-interested"
	LeadStatusFOLLOWUP      = "follow-up"
	LeadStatusPENDING       = "pending"
	LeadStatusQUALIFIED     = "qualified"
)

// Lead 线索模型
type Lead struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Phone         string             `bson:"phone" json:"phone"`
	Email         string             `bson:"email" json:"email"`
	Type          string             `bson:"type" json:"type"`
	Source        string             `bson:"source" json:"source"`
	Score         int                `bson:"score" json:"score"`
	Status        string             `bson:"status" json:"status"`
	AssignedTo    string             `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	NextFollowUp  *time.Time         `bson:"nextFollowUp,omitempty" json:"nextFollowUp,omitempty"`
	Remarks       string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	Notes         []LeadNote         `bson:"notes" json:"notes"`
	CreatedBy     string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	LastContacted *time.Time         `bson:"lastContacted,omitempty" json:"lastContacted,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LeadNote 线索备注条目
type LeadNote struct {
	Text      string    `bson:"text" json:"text"`
	Author    string    `bson:"author" json:"author"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// LeadCreateRequest 创建线索请求
type LeadCreateRequest struct {
	Name         string     `json:"name" binding:"required"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email" binding:"omitempty,email"`
	Type         string     `json:"type"`
	Source       string     `json:"source"`
	Score        *int       `json:"score" binding:"omitempty,min=0"`
	Status       string     `json:"status"`
	AssignedTo   string     `json:"assignedTo"`
	NextFollowUp *time.Time `json:"nextFollowUp"`
	Remarks      string     `json:"remarks"`
}

// LeadImportRow 批量导入的单行线索数据
type LeadImportRow struct {
	Name         string     `json:"name" validate:"required"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email" validate:"omitempty,email"`
	Type         string     `json:"type"`
	Source       string     `json:"source"`
	Score        *int       `json:"score" validate:"omitempty,min=0"`
	Status       string     `json:"status"`
	AssignedTo   string     `json:"assignedTo"`
	NextFollowUp *time.Time `json:"nextFollowUp"`
	Remarks      string     `json:"remarks"`
}

// LeadImportRequest 批量导入请求
type LeadImportRequest struct {
	Leads []LeadImportRow `json:"leads" binding:"required"`
}

// LeadImportFailure 单行导入失败信息
type LeadImportFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// LeadImportResult 批量导入结果
type LeadImportResult struct {
	Inserted int                 `json:"inserted"`
	Failed   []LeadImportFailure `json:"failed"`
}

// LeadMergeRequest 合并重复线索请求
type LeadMergeRequest struct {
	KeepID   string   `json:"keepId" binding:"required"`
	MergeIDs []string `json:"mergeIds" binding:"required"`
}

// DuplicateGroup 按归一化键分组的重复线索
type DuplicateGroup struct {
	Key   string `json:"key"`
	Leads []Lead `json:"leads"`
}
