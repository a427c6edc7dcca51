package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BerniceZTT/telecrm_end/models"
)

func TestBuildInvoice(t *testing.T) {
	plan := models.Plan{
		Name:     "专业版",
		Price:    299,
		Currency: "CNY",
	}

	invoice := buildInvoice("66aa00000000000000000001", plan, "u1")

	// 新账单一律为待支付状态,套餐名和金额取下单时的快照
	assert.Equal(t, "pending", invoice.Status)
	assert.Equal(t, "专业版", invoice.PlanName)
	assert.Equal(t, 299.0, invoice.Amount)
	assert.Equal(t, "66aa00000000000000000001", invoice.PlanID)
	assert.Equal(t, "u1", invoice.CreatedBy)
	assert.False(t, invoice.ID.IsZero())
	assert.WithinDuration(t, time.Now(), invoice.CreatedAt, time.Minute)
}
