package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CallLog 通话记录。仅追加,不提供修改和删除接口。
type CallLog struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	LeadID          string             `bson:"leadId" json:"leadId"`
	UserID          string             `bson:"userId" json:"userId"`
	UserName        string             `bson:"userName,omitempty" json:"userName,omitempty"`
	Outcome         string             `bson:"outcome" json:"outcome"`
	DurationSeconds int                `bson:"durationSeconds" json:"durationSeconds"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	QualityScore    *float64           `bson:"qualityScore,omitempty" json:"qualityScore,omitempty"`
	RecordingRef    string             `bson:"recordingRef,omitempty" json:"recordingRef,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// CreateCallLogInput 创建通话记录的输入数据
type CreateCallLogInput struct {
	LeadID          string   `json:"leadId" binding:"required"`
	UserID          string   `json:"userId"`
	Outcome         string   `json:"outcome" binding:"required"`
	DurationSeconds int      `json:"durationSeconds" binding:"min=0"`
	Notes           string   `json:"notes"`
	QualityScore    *float64 `json:"qualityScore"`
	RecordingRef    string   `json:"recordingRef"`
}
