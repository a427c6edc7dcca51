package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/repository"
	"github.com/BerniceZTT/telecrm_end/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// DeriveAlerts 由线索快照派生提醒汇总。纯函数,按 now 所在时区的自然日比较日期。
func DeriveAlerts(leads []models.Lead, now time.Time) models.AlertSummary {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	dueToday := 0
	pending := 0
	missed := 0

	for _, lead := range leads {
		if lead.Status == models.LeadStatusPENDING || lead.Status == models.LeadStatusFOLLOWUP {
			pending++
		}

		if lead.NextFollowUp == nil {
			continue
		}
		f := lead.NextFollowUp.In(now.Location())
		followDay := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, now.Location())

		switch {
		case followDay.Equal(today):
			dueToday++
		case followDay.Before(today):
			missed++
		}
	}

	alerts := []string{}
	if dueToday > 0 {
		alerts = append(alerts, fmt.Sprintf("今日需跟进 %d 条线索", dueToday))
	}
	if pending > 0 {
		alerts = append(alerts, fmt.Sprintf("有 %d 条线索待处理", pending))
	}
	if missed > 0 {
		alerts = append(alerts, fmt.Sprintf("有 %d 条线索已逾期未跟进", missed))
	}

	return models.AlertSummary{
		Alerts:    alerts,
		DueToday:  dueToday,
		Pending:   pending,
		Missed:    missed,
		UpdatedAt: now,
	}
}

// 轮询缓存。存储不可用时保留上一次成功派生的结果。
var alertCache = struct {
	sync.RWMutex
	summary models.AlertSummary
	valid   bool
}{}

// CachedAlerts 返回最近一次成功派生的提醒汇总
func CachedAlerts() (models.AlertSummary, bool) {
	alertCache.RLock()
	defer alertCache.RUnlock()
	return alertCache.summary, alertCache.valid
}

// StartAlertPoller 启动提醒轮询协程,按固定间隔重新派生全量提醒。
// ctx 取消后协程退出。
func StartAlertPoller(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		refreshAlerts(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				utils.Logger.Info().Msg("提醒轮询已停止")
				return
			case <-ticker.C:
				refreshAlerts(ctx)
			}
		}
	}()

	utils.Logger.Info().Dur("interval", interval).Msg("提醒轮询已启动")
}

// refreshAlerts 拉取线索快照并刷新缓存。失败时保留旧结果。
func refreshAlerts(ctx context.Context) {
	result, err := repository.ExecuteDbOperation(func() (interface{}, error) {
		return FetchLeadSnapshot(ctx, bson.M{})
	}, 3)
	if err != nil {
		utils.LogError2("刷新提醒失败,保留上次结果", err, nil)
		return
	}

	leads, ok := result.([]models.Lead)
	if !ok {
		return
	}

	summary := DeriveAlerts(leads, time.Now())

	alertCache.Lock()
	alertCache.summary = summary
	alertCache.valid = true
	alertCache.Unlock()
}
