package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan 订阅套餐
type Plan struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name     string             `bson:"name" json:"name"`
	Price    float64            `bson:"price" json:"price"`
	Currency string             `bson:"currency" json:"currency"`
	Features []string           `bson:"features" json:"features"`
}

// Invoice 账单
type Invoice struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	PlanID    string             `bson:"planId" json:"planId"`
	PlanName  string             `bson:"planName" json:"planName"`
	Amount    float64            `bson:"amount" json:"amount"`
	Status    string             `bson:"status" json:"status"`
	CreatedBy string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CreateInvoiceRequest 创建账单请求
type CreateInvoiceRequest struct {
	PlanID string `json:"planId" binding:"required"`
}
