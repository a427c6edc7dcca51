package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildLastContactedUpdate(t *testing.T) {
	contactTime := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)

	update := buildLastContactedUpdate(contactTime)

	// 只有 $set,没有别的更新操作符
	assert.Len(t, update, 1)

	set, ok := update["$set"].(bson.M)
	assert.True(t, ok)

	// 通话的附带更新只改最近联系时间,评分和负责人不允许出现在文档里
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"lastContacted", "updatedAt"}, keys)
	assert.NotContains(t, set, "score")
	assert.NotContains(t, set, "assignedTo")
	assert.NotContains(t, set, "status")

	assert.Equal(t, contactTime, set["lastContacted"])

	updatedAt, ok := set["updatedAt"].(time.Time)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now(), updatedAt, time.Minute)
}
