package service

import (
	"context"
	"fmt"
	"time"

	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/repository"
	"github.com/BerniceZTT/telecrm_end/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// WorkflowMatches 判断工作流条件是否命中线索。
// Condition.Field 为空表示无条件命中;不认识的字段一律不命中。
func WorkflowMatches(wf *models.Workflow, lead *models.Lead) bool {
	if wf.Condition.Field == "" {
		return true
	}

	switch wf.Condition.Field {
	case "status":
		return lead.Status == wf.Condition.Equals
	case "type":
		return lead.Type == wf.Condition.Equals
	case "source":
		return lead.Source == wf.Condition.Equals
	case "assignedTo":
		return lead.AssignedTo == wf.Condition.Equals
	default:
		return false
	}
}

// ValidateWorkflowAction 校验工作流动作定义
func ValidateWorkflowAction(action models.WorkflowAction) error {
	switch action.Type {
	case models.WorkflowActionSETSTATUS, models.WorkflowActionAPPENDNOTE, models.WorkflowActionASSIGN:
		if action.Value == "" {
			return fmt.Errorf("工作流动作缺少 value")
		}
		return nil
	default:
		return fmt.Errorf("未知的工作流动作类型: %s", action.Type)
	}
}

// ApplyWorkflowAction 对线索执行工作流动作
func ApplyWorkflowAction(ctx context.Context, lead *models.Lead, action models.WorkflowAction, operator *utils.LoginUser) error {
	leadsCollection := repository.Collection(repository.LeadsCollection)
	now := time.Now()

	switch action.Type {
	case models.WorkflowActionSETSTATUS:
		_, err := leadsCollection.UpdateOne(
			ctx,
			bson.M{"_id": lead.ID},
			bson.M{"$set": bson.M{"status": action.Value, "updatedAt": now}},
		)
		return err

	case models.WorkflowActionAPPENDNOTE:
		author := "工作流"
		if operator != nil && operator.Name != "" {
			author = operator.Name
		}
		note := models.LeadNote{
			Text:      action.Value,
			Author:    author,
			Timestamp: now,
		}
		_, err := leadsCollection.UpdateOne(
			ctx,
			bson.M{"_id": lead.ID},
			bson.M{
				"$push": bson.M{"notes": note},
				"$set":  bson.M{"updatedAt": now},
			},
		)
		return err

	case models.WorkflowActionASSIGN:
		// 分配目标必须是存在的用户
		if _, err := repository.FindUserByID(action.Value); err != nil {
			return fmt.Errorf("分配目标用户不存在: %s", action.Value)
		}
		_, err := leadsCollection.UpdateOne(
			ctx,
			bson.M{"_id": lead.ID},
			bson.M{"$set": bson.M{"assignedTo": action.Value, "updatedAt": now}},
		)
		return err

	default:
		return fmt.Errorf("未知的工作流动作类型: %s", action.Type)
	}
}
