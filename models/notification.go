package models

import "time"

// AlertSummary 提醒汇总。由线索快照派生,不落库。
type AlertSummary struct {
	Alerts    []string  `json:"alerts"`
	DueToday  int       `json:"dueToday"`
	Pending   int       `json:"pending"`
	Missed    int       `json:"missed"`
	UpdatedAt time.Time `json:"updatedAt"`
}
