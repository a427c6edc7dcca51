package service

import (
	"context"
	"time"

	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/repository"
	"github.com/BerniceZTT/telecrm_end/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FetchLeadSnapshot 按过滤条件拉取线索快照,只取派生提醒所需的字段。
func FetchLeadSnapshot(ctx context.Context, filter bson.M) ([]models.Lead, error) {
	leadsCollection := repository.Collection(repository.LeadsCollection)

	findOptions := options.Find().SetProjection(bson.M{
		"name":         1,
		"status":       1,
		"assignedTo":   1,
		"nextFollowUp": 1,
	})

	cursor, err := leadsCollection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var leads []models.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// buildLastContactedUpdate 通话写入后线索的附带更新文档。
// 只更新最近联系时间,评分、负责人和状态不在更新范围内。
func buildLastContactedUpdate(t time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"lastContacted": t,
		"updatedAt":     time.Now(),
	}}
}

// TouchLeadLastContacted 更新线索的最近联系时间。
// 通话记录写入后的附带动作,失败只记日志,不影响主流程。
func TouchLeadLastContacted(ctx context.Context, leadObjID primitive.ObjectID, t time.Time) {
	leadsCollection := repository.Collection(repository.LeadsCollection)

	_, err := leadsCollection.UpdateOne(ctx, bson.M{"_id": leadObjID}, buildLastContactedUpdate(t))
	if err != nil {
		utils.LogError2("更新线索最近联系时间失败", err, map[string]interface{}{
			"leadId": leadObjID.Hex(),
		})
	}
}
