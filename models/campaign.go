package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 营销活动状态
const (
	CampaignStatusDRAFT = "draft"
	CampaignStatusSENT  = "sent"
)

// Campaign 邮件营销活动
type Campaign struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Subject      string             `bson:"subject" json:"subject"`
	Body         string             `bson:"body" json:"body"` // 经过净化的 HTML 正文
	TargetStatus string             `bson:"targetStatus,omitempty" json:"targetStatus,omitempty"`
	Status       string             `bson:"status" json:"status"`
	SentCount    int                `bson:"sentCount" json:"sentCount"`
	OpenCount    int                `bson:"openCount" json:"openCount"`
	CreatedBy    string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type (
	// CampaignCreateRequest 创建营销活动请求
	CampaignCreateRequest struct {
		Name         string `json:"name" binding:"required"`
		Subject      string `json:"subject" binding:"required"`
		Body         string `json:"body" binding:"required"`
		TargetStatus string `json:"targetStatus"`
	}

	// CampaignUpdateRequest 更新营销活动请求
	CampaignUpdateRequest struct {
		Name         string `json:"name" binding:"omitempty"`
		Subject      string `json:"subject" binding:"omitempty"`
		Body         string `json:"body" binding:"omitempty"`
		TargetStatus string `json:"targetStatus"`
	}

	// CampaignTestEmailRequest 发送测试邮件请求
	CampaignTestEmailRequest struct {
		To string `json:"to" binding:"required,email"`
	}

	// CampaignSendResult 群发结果
	CampaignSendResult struct {
		Sent   int `json:"sent"`
		Failed int `json:"failed"`
	}
)
