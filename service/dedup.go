package service

import (
	"strings"

	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/utils"
)

// NormalizeDedupKey 返回线索的去重键: 去除首尾空白后的 phone|email 组合。
// 电话和邮箱同时为空时返回空串,该线索不参与去重。
func NormalizeDedupKey(phone, email string) string {
	p := strings.TrimSpace(phone)
	e := strings.TrimSpace(email)
	if p == "" && e == "" {
		return ""
	}
	return p + "|" + e
}

// FindDuplicateGroups 将线索按归一化键分组,返回含两条及以上线索的分组。
// 分组按键首次出现的顺序排列,组内保持输入顺序。
func FindDuplicateGroups(leads []models.Lead) []models.DuplicateGroup {
	grouped := make(map[string][]models.Lead)
	var order []string

	for _, lead := range leads {
		key := NormalizeDedupKey(lead.Phone, lead.Email)
		if key == "" {
			continue
		}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], lead)
	}

	var result []models.DuplicateGroup
	for _, key := range order {
		if len(grouped[key]) >= 2 {
			result = append(result, models.DuplicateGroup{Key: key, Leads: grouped[key]})
		}
	}
	return result
}

// ValidateMergeRequest 校验合并请求参数。在任何存储操作之前调用。
func ValidateMergeRequest(req *models.LeadMergeRequest) error {
	if len(req.MergeIDs) == 0 {
		return utils.CreateInvalidArgumentError("mergeIds 不能为空")
	}
	seen := make(map[string]struct{}, len(req.MergeIDs))
	for _, id := range req.MergeIDs {
		if id == req.KeepID {
			return utils.CreateInvalidArgumentError("keepId 不能出现在 mergeIds 中")
		}
		if _, dup := seen[id]; dup {
			return utils.CreateInvalidArgumentError("mergeIds 中存在重复ID: " + id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
