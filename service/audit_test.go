package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/utils"
)

// fakeAuditSink 收集写入的审计记录,代替MongoDB
type fakeAuditSink struct {
	mu      sync.Mutex
	records []models.AuditRecord
}

func (s *fakeAuditSink) insert(_ context.Context, record models.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *fakeAuditSink) all() []models.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AuditRecord, len(s.records))
	copy(out, s.records)
	return out
}

func TestAuditRecorderWritesRecords(t *testing.T) {
	sink := &fakeAuditSink{}
	recorder := NewAuditRecorder(8, sink.insert)

	recorder.Enqueue(models.AuditRecord{
		Entity:      "lead",
		EntityID:    "abc",
		Action:      models.AuditActionCREATE,
		PerformedBy: "u1",
	})
	recorder.Enqueue(models.AuditRecord{
		Entity:   "lead",
		EntityID: "abc",
		Action:   models.AuditActionUPDATE,
	})

	// Close 等待缓冲排空
	recorder.Close()

	records := sink.all()
	assert.Len(t, records, 2)
	assert.Equal(t, models.AuditActionCREATE, records[0].Action)
	assert.Equal(t, models.AuditActionUPDATE, records[1].Action)
	assert.False(t, records[0].CreatedAt.IsZero())
	assert.False(t, records[1].CreatedAt.IsZero())
}

func TestAuditRecorderSanitizesDetails(t *testing.T) {
	sink := &fakeAuditSink{}
	recorder := NewAuditRecorder(8, sink.insert)

	recorder.Enqueue(models.AuditRecord{
		Entity:   "user",
		EntityID: "u1",
		Action:   models.AuditActionUPDATE,
		Details: map[string]interface{}{
			"password": "plaintext",
			"email":    "a@b.com",
			"nested": map[string]interface{}{
				"token": "tok-123",
				"count": 3,
			},
		},
	})
	recorder.Close()

	records := sink.all()
	assert.Len(t, records, 1)
	assert.Equal(t, "******", records[0].Details["password"])
	assert.Equal(t, "a@b.com", records[0].Details["email"])

	nested := records[0].Details["nested"].(map[string]interface{})
	assert.Equal(t, "******", nested["token"])
	assert.Equal(t, 3, nested["count"])
}

func TestAuditRecorderEnqueueDoesNotBlockWhenFull(t *testing.T) {
	entered := make(chan struct{}, 4)
	release := make(chan struct{})
	sink := &fakeAuditSink{}

	// 模拟落库阻塞: 每次写入先报到,然后停在release上
	blockingInsert := func(ctx context.Context, record models.AuditRecord) error {
		entered <- struct{}{}
		<-release
		return sink.insert(ctx, record)
	}

	recorder := NewAuditRecorder(1, blockingInsert)

	// 第一条被写入协程取走并卡在落库上
	recorder.Enqueue(models.AuditRecord{Entity: "lead", EntityID: "r1", Action: models.AuditActionCREATE})
	<-entered

	// 第二条占满缓冲
	recorder.Enqueue(models.AuditRecord{Entity: "lead", EntityID: "r2", Action: models.AuditActionUPDATE})

	// 缓冲已满时入队必须立即返回,该条被丢弃,主流程不被拖住
	done := make(chan struct{})
	go func() {
		recorder.Enqueue(models.AuditRecord{Entity: "lead", EntityID: "r3", Action: models.AuditActionDELETE})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("审计缓冲满时 Enqueue 不应阻塞")
	}

	close(release)
	recorder.Close()

	records := sink.all()
	assert.Len(t, records, 2)
	assert.Equal(t, "r1", records[0].EntityID)
	assert.Equal(t, "r2", records[1].EntityID)
}

func TestRecordAuditGlobal(t *testing.T) {
	// 未初始化时调用不应panic
	auditRecorder = nil
	RecordAudit("lead", "x", models.AuditActionDELETE, nil, nil)

	sink := &fakeAuditSink{}
	InitAuditRecorder(4, sink.insert)

	user := &utils.LoginUser{ID: "u1", Role: "manager", Name: "主管"}
	RecordAudit("lead", "l1", models.AuditActionMERGE, map[string]interface{}{
		"mergeIds": []interface{}{"a", "b"},
	}, user)

	CloseAuditRecorder()
	auditRecorder = nil

	records := sink.all()
	assert.Len(t, records, 1)
	assert.Equal(t, "lead", records[0].Entity)
	assert.Equal(t, "l1", records[0].EntityID)
	assert.Equal(t, "u1", records[0].PerformedBy)
	assert.Equal(t, "主管", records[0].PerformedByName)
}

func TestSanitizeAuditDetails(t *testing.T) {
	assert.Nil(t, SanitizeAuditDetails(nil))

	details := map[string]interface{}{
		"Password":      "p",
		"Authorization": "Bearer x",
		"secret":        "s",
		"KEY":           "k",
		"list": []interface{}{
			map[string]interface{}{"token": "t", "name": "n"},
		},
		"plain": "ok",
	}

	sanitized := SanitizeAuditDetails(details)

	assert.Equal(t, "******", sanitized["Password"])
	assert.Equal(t, "******", sanitized["Authorization"])
	assert.Equal(t, "******", sanitized["secret"])
	assert.Equal(t, "******", sanitized["KEY"])
	assert.Equal(t, "ok", sanitized["plain"])

	list := sanitized["list"].([]interface{})
	item := list[0].(map[string]interface{})
	assert.Equal(t, "******", item["token"])
	assert.Equal(t, "n", item["name"])

	// 原对象不被修改
	assert.Equal(t, "p", details["Password"])
}
