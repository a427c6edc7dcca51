package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BerniceZTT/telecrm_end/models"
)

func TestWorkflowMatches(t *testing.T) {
	lead := models.Lead{
		Status:     models.LeadStatusNEW,
		Type:       "insurance",
		Source:     "website",
		AssignedTo: "u1",
	}

	cases := []struct {
		name      string
		condition models.WorkflowCondition
		want      bool
	}{
		{"空条件无条件命中", models.WorkflowCondition{}, true},
		{"状态命中", models.WorkflowCondition{Field: "status", Equals: "new"}, true},
		{"状态不匹配", models.WorkflowCondition{Field: "status", Equals: "converted"}, false},
		{"类型命中", models.WorkflowCondition{Field: "type", Equals: "insurance"}, true},
		{"来源命中", models.WorkflowCondition{Field: "source", Equals: "website"}, true},
		{"归属命中", models.WorkflowCondition{Field: "assignedTo", Equals: "u1"}, true},
		{"归属不匹配", models.WorkflowCondition{Field: "assignedTo", Equals: "u2"}, false},
		{"未知字段一律不命中", models.WorkflowCondition{Field: "score", Equals: "10"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wf := models.Workflow{Condition: tc.condition}
			assert.Equal(t, tc.want, WorkflowMatches(&wf, &lead))
		})
	}
}

func TestValidateWorkflowAction(t *testing.T) {
	assert.NoError(t, ValidateWorkflowAction(models.WorkflowAction{
		Type: models.WorkflowActionSETSTATUS, Value: "contacted",
	}))
	assert.NoError(t, ValidateWorkflowAction(models.WorkflowAction{
		Type: models.WorkflowActionAPPENDNOTE, Value: "自动备注",
	}))
	assert.NoError(t, ValidateWorkflowAction(models.WorkflowAction{
		Type: models.WorkflowActionASSIGN, Value: "u1",
	}))

	// 缺少value
	assert.Error(t, ValidateWorkflowAction(models.WorkflowAction{
		Type: models.WorkflowActionSETSTATUS,
	}))

	// 未知动作类型
	assert.Error(t, ValidateWorkflowAction(models.WorkflowAction{
		Type: "delete-lead", Value: "x",
	}))
}
