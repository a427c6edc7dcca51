package service

import (
	"context"
	"strings"
	"time"

	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/repository"
	"github.com/BerniceZTT/telecrm_end/utils"
)

// AuditInserter 审计记录写入函数。默认写MongoDB,测试时可注入替身。
type AuditInserter func(ctx context.Context, record models.AuditRecord) error

// AuditRecorder 异步审计记录器。
// 变更操作通过带缓冲的通道投递记录,由后台协程落库,
// 审计写入失败绝不影响主操作。
type AuditRecorder struct {
	ch     chan models.AuditRecord
	insert AuditInserter
	done   chan struct{}
}

var auditRecorder *AuditRecorder

// NewAuditRecorder 创建审计记录器并启动后台写入协程
func NewAuditRecorder(buffer int, insert AuditInserter) *AuditRecorder {
	if buffer <= 0 {
		buffer = 256
	}
	if insert == nil {
		insert = defaultAuditInsert
	}

	r := &AuditRecorder{
		ch:     make(chan models.AuditRecord, buffer),
		insert: insert,
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// InitAuditRecorder 初始化全局审计记录器
func InitAuditRecorder(buffer int, insert AuditInserter) *AuditRecorder {
	auditRecorder = NewAuditRecorder(buffer, insert)
	utils.Logger.Info().Int("buffer", buffer).Msg("审计记录器已启动")
	return auditRecorder
}

func (r *AuditRecorder) run() {
	for record := range r.ch {
		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.insert(writeCtx, record); err != nil {
			utils.LogError2("保存审计记录失败", err, map[string]interface{}{
				"entity": record.Entity,
				"action": record.Action,
			})
		}
		cancel()
	}
	close(r.done)
}

// Enqueue 非阻塞入队。缓冲满时丢弃该条记录并记日志。
func (r *AuditRecorder) Enqueue(record models.AuditRecord) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.Details = SanitizeAuditDetails(record.Details)

	select {
	case r.ch <- record:
	default:
		utils.Logger.Warn().
			Str("entity", record.Entity).
			Str("action", record.Action).
			Msg("审计缓冲已满,丢弃记录")
	}
}

// Close 停止接收新记录并等待缓冲内的记录写完
func (r *AuditRecorder) Close() {
	close(r.ch)
	<-r.done
}

// RecordAudit 写一条审计记录的全局入口
func RecordAudit(entity, entityID, action string, details map[string]interface{}, user *utils.LoginUser) {
	if auditRecorder == nil {
		return
	}

	record := models.AuditRecord{
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	if user != nil {
		record.PerformedBy = user.ID
		record.PerformedByName = user.Name
	}

	auditRecorder.Enqueue(record)
}

// CloseAuditRecorder 关闭全局审计记录器
func CloseAuditRecorder() {
	if auditRecorder != nil {
		auditRecorder.Close()
	}
}

// defaultAuditInsert 默认落库实现
func defaultAuditInsert(ctx context.Context, record models.AuditRecord) error {
	collection := repository.Collection(repository.AuditLogsCollection)
	_, err := collection.InsertOne(ctx, record)
	return err
}

// SanitizeAuditDetails 清理审计详情中的敏感字段
func SanitizeAuditDetails(details map[string]interface{}) map[string]interface{} {
	if details == nil {
		return nil
	}
	sanitized, _ := sanitizeValue(details).(map[string]interface{})
	return sanitized
}

// sanitizeValue 递归清理敏感信息
func sanitizeValue(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		sanitized := make(map[string]interface{}, len(v))
		for k, val := range v {
			switch strings.ToLower(k) {
			case "password", "token", "authorization", "secret", "key", "credentialhash":
				sanitized[k] = "******"
			default:
				sanitized[k] = sanitizeValue(val)
			}
		}
		return sanitized
	case []interface{}:
		sanitized := make([]interface{}, len(v))
		for i, val := range v {
			sanitized[i] = sanitizeValue(val)
		}
		return sanitized
	default:
		return data
	}
}
