package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/BerniceZTT/telecrm_end/models"
)

func TestValidateLeadUpdateFields(t *testing.T) {
	// 空更新
	err := validateLeadUpdateFields(map[string]interface{}{}, "manager")
	assert.NotNil(t, err)
	assert.Equal(t, "更新内容不能为空", err.Message)

	// 白名单外的字段
	err = validateLeadUpdateFields(map[string]interface{}{"password": "x"}, "admin")
	assert.NotNil(t, err)
	assert.Equal(t, "不允许更新的字段: password", err.Message)

	// 主管可以改任意白名单字段
	err = validateLeadUpdateFields(map[string]interface{}{
		"name":       "新名字",
		"assignedTo": "64f000000000000000000001",
		"score":      float64(30),
	}, "manager")
	assert.Nil(t, err)

	// 电销专员只能改状态和备注
	err = validateLeadUpdateFields(map[string]interface{}{
		"status": "contacted",
		"notes":  []interface{}{},
	}, "telecaller")
	assert.Nil(t, err)

	err = validateLeadUpdateFields(map[string]interface{}{"name": "改名"}, "telecaller")
	assert.NotNil(t, err)
	assert.Equal(t, "电销专员不能修改字段: name", err.Message)

	err = validateLeadUpdateFields(map[string]interface{}{"assignedTo": "xx"}, "telecaller")
	assert.NotNil(t, err)
}

func TestBuildLeadUpdateDocScore(t *testing.T) {
	// JSON数字反序列化后是float64
	doc, apiErr := buildLeadUpdateDoc(map[string]interface{}{"score": float64(42)}, "操作员")
	assert.Nil(t, apiErr)
	assert.Equal(t, 42, doc["score"])

	// 负数、小数、非数字都拒绝
	for _, bad := range []interface{}{float64(-1), float64(5.5), "high"} {
		_, apiErr = buildLeadUpdateDoc(map[string]interface{}{"score": bad}, "操作员")
		assert.NotNil(t, apiErr)
		assert.Equal(t, "评分必须为非负整数", apiErr.Message)
	}
}

func TestBuildLeadUpdateDocNextFollowUp(t *testing.T) {
	// 显式置空
	doc, apiErr := buildLeadUpdateDoc(map[string]interface{}{"nextFollowUp": nil}, "操作员")
	assert.Nil(t, apiErr)
	v, exists := doc["nextFollowUp"]
	assert.True(t, exists)
	assert.Nil(t, v)

	// 日期格式
	doc, apiErr = buildLeadUpdateDoc(map[string]interface{}{"nextFollowUp": "2026-09-01"}, "操作员")
	assert.Nil(t, apiErr)
	parsed, ok := doc["nextFollowUp"].(time.Time)
	assert.True(t, ok)
	assert.Equal(t, 2026, parsed.Year())
	assert.Equal(t, time.September, parsed.Month())

	// RFC3339格式
	doc, apiErr = buildLeadUpdateDoc(map[string]interface{}{"nextFollowUp": "2026-09-01T09:30:00Z"}, "操作员")
	assert.Nil(t, apiErr)
	parsed, ok = doc["nextFollowUp"].(time.Time)
	assert.True(t, ok)
	assert.Equal(t, 9, parsed.Hour())

	// 非法值
	_, apiErr = buildLeadUpdateDoc(map[string]interface{}{"nextFollowUp": "明天"}, "操作员")
	assert.NotNil(t, apiErr)

	_, apiErr = buildLeadUpdateDoc(map[string]interface{}{"nextFollowUp": float64(123)}, "操作员")
	assert.NotNil(t, apiErr)
	assert.Equal(t, "无效的跟进日期", apiErr.Message)
}

func TestBuildLeadUpdateDocNotes(t *testing.T) {
	doc, apiErr := buildLeadUpdateDoc(map[string]interface{}{
		"notes": []interface{}{
			map[string]interface{}{"text": "客户要求下周回访", "timestamp": "2026-08-20T10:00:00Z"},
		},
	}, "王五")
	assert.Nil(t, apiErr)

	notes, ok := doc["notes"].([]models.LeadNote)
	assert.True(t, ok)
	assert.Len(t, notes, 1)
	assert.Equal(t, "客户要求下周回访", notes[0].Text)
}

func TestParseLeadNotes(t *testing.T) {
	notes, apiErr := parseLeadNotes([]interface{}{
		map[string]interface{}{"text": "客户要求下周回访", "timestamp": "2026-08-20T10:00:00Z"},
		map[string]interface{}{"text": "已发送报价", "author": "李四"},
	}, "王五")
	assert.Nil(t, apiErr)
	assert.Len(t, notes, 2)

	// 未指定作者时落到操作人
	assert.Equal(t, "王五", notes[0].Author)
	assert.Equal(t, "李四", notes[1].Author)
	assert.Equal(t, 2026, notes[0].Timestamp.Year())
	// 未指定时间时取当前时间
	assert.WithinDuration(t, time.Now(), notes[1].Timestamp, time.Minute)

	// 缺少内容
	_, apiErr = parseLeadNotes([]interface{}{map[string]interface{}{"author": "无内容"}}, "王五")
	assert.NotNil(t, apiErr)
	assert.Equal(t, "备注内容不能为空", apiErr.Message)

	// 非数组
	_, apiErr = parseLeadNotes("不是数组", "王五")
	assert.NotNil(t, apiErr)

	// 元素不是对象
	_, apiErr = parseLeadNotes([]interface{}{"字符串"}, "王五")
	assert.NotNil(t, apiErr)
}

func TestBuildDateRangeFilter(t *testing.T) {
	// 都为空时不产生过滤
	filter, apiErr := buildDateRangeFilter("", "")
	assert.Nil(t, apiErr)
	assert.Nil(t, filter)

	// 仅起始日期
	filter, apiErr = buildDateRangeFilter("2026-08-01", "")
	assert.Nil(t, apiErr)
	from, ok := filter["$gte"].(time.Time)
	assert.True(t, ok)
	assert.Equal(t, "2026-08-01", from.Format("2006-01-02"))
	_, hasLt := filter["$lt"]
	assert.False(t, hasLt)

	// 结束日期包含整天,上界推到次日零点
	filter, apiErr = buildDateRangeFilter("", "2026-08-15")
	assert.Nil(t, apiErr)
	lt, ok := filter["$lt"].(time.Time)
	assert.True(t, ok)
	assert.Equal(t, "2026-08-16", lt.Format("2006-01-02"))

	// 区间
	filter, apiErr = buildDateRangeFilter("2026-08-01", "2026-08-15")
	assert.Nil(t, apiErr)
	assert.Len(t, filter, 2)

	// 非法日期
	_, apiErr = buildDateRangeFilter("08/01/2026", "")
	assert.NotNil(t, apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestParseDateTime(t *testing.T) {
	t1, err := parseDateTime("2026-08-25T14:30:00Z")
	assert.NoError(t, err)
	assert.Equal(t, 14, t1.Hour())

	t2, err := parseDateTime("2026-08-25")
	assert.NoError(t, err)
	assert.Equal(t, 0, t2.Hour())

	_, err = parseDateTime("昨天")
	assert.Error(t, err)
}

func TestGetMapKeys(t *testing.T) {
	keys := getMapKeys(map[string]interface{}{"a": 1, "b": 2, "c": 3})
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)

	assert.Empty(t, getMapKeys(map[string]interface{}{}))
}

func TestBuildLeadUpdateDocPassthrough(t *testing.T) {
	doc, apiErr := buildLeadUpdateDoc(map[string]interface{}{
		"status":  "contacted",
		"remarks": "重点客户",
	}, "操作员")
	assert.Nil(t, apiErr)
	assert.Equal(t, bson.M{"status": "contacted", "remarks": "重点客户"}, doc)
}
