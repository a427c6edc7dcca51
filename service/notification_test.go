package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BerniceZTT/telecrm_end/models"
)

func followUpAt(t time.Time) *time.Time {
	return &t
}

func TestDeriveAlerts(t *testing.T) {
	now := time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC)

	leads := []models.Lead{
		// 今天上午到期
		{Name: "今日", NextFollowUp: followUpAt(time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC))},
		// 昨天到期,已逾期
		{Name: "逾期", NextFollowUp: followUpAt(time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC))},
		// 明天到期,不计入
		{Name: "明日", NextFollowUp: followUpAt(time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))},
		// 待处理状态
		{Name: "待处理", Status: models.LeadStatusPENDING},
		{Name: "跟进中", Status: models.LeadStatusFOLLOWUP},
		// 无跟进时间无状态
		{Name: "普通", Status: models.LeadStatusNEW},
	}

	summary := DeriveAlerts(leads, now)

	assert.Equal(t, 1, summary.DueToday)
	assert.Equal(t, 2, summary.Pending)
	assert.Equal(t, 1, summary.Missed)
	assert.Equal(t, now, summary.UpdatedAt)

	assert.Len(t, summary.Alerts, 3)
	assert.Contains(t, summary.Alerts, "今日需跟进 1 条线索")
	assert.Contains(t, summary.Alerts, "有 2 条线索待处理")
	assert.Contains(t, summary.Alerts, "有 1 条线索已逾期未跟进")
}

// 日期比较按自然日,当天最后一刻仍算今日
func TestDeriveAlertsCalendarDayBoundary(t *testing.T) {
	now := time.Date(2026, 8, 25, 0, 0, 1, 0, time.UTC)

	leads := []models.Lead{
		{NextFollowUp: followUpAt(time.Date(2026, 8, 25, 23, 59, 59, 0, time.UTC))},
		{NextFollowUp: followUpAt(time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))},
		{NextFollowUp: followUpAt(time.Date(2026, 8, 24, 23, 59, 59, 0, time.UTC))},
	}

	summary := DeriveAlerts(leads, now)

	assert.Equal(t, 1, summary.DueToday)
	assert.Equal(t, 1, summary.Missed)
}

// 全部为零时不产生任何提醒文案,alerts 为空数组而不是 null
func TestDeriveAlertsEmpty(t *testing.T) {
	summary := DeriveAlerts(nil, time.Now())

	assert.NotNil(t, summary.Alerts)
	assert.Empty(t, summary.Alerts)
	assert.Zero(t, summary.DueToday)
	assert.Zero(t, summary.Pending)
	assert.Zero(t, summary.Missed)
}

// 待处理计数与跟进日期相互独立,同一条线索可同时计入两类
func TestDeriveAlertsPendingWithFollowUp(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	leads := []models.Lead{
		{
			Status:       models.LeadStatusPENDING,
			NextFollowUp: followUpAt(time.Date(2026, 8, 25, 16, 0, 0, 0, time.UTC)),
		},
	}

	summary := DeriveAlerts(leads, now)

	assert.Equal(t, 1, summary.DueToday)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, 0, summary.Missed)
}
