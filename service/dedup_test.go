package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/utils"
)

func TestNormalizeDedupKey(t *testing.T) {
	assert.Equal(t, "13800000000|a@b.com", NormalizeDedupKey("13800000000", "a@b.com"))
	assert.Equal(t, "13800000000|a@b.com", NormalizeDedupKey(" 13800000000 ", "\ta@b.com\n"))
	assert.Equal(t, "13800000000|", NormalizeDedupKey("13800000000", ""))
	assert.Equal(t, "|a@b.com", NormalizeDedupKey("", "a@b.com"))

	// 电话和邮箱都为空的线索不参与去重
	assert.Equal(t, "", NormalizeDedupKey("", ""))
	assert.Equal(t, "", NormalizeDedupKey("  ", "\t"))
}

func TestFindDuplicateGroups(t *testing.T) {
	leads := []models.Lead{
		{Name: "张三", Phone: "111", Email: "a@b.com"},
		{Name: "李四", Phone: "222", Email: "c@d.com"},
		{Name: "张三备份", Phone: "111", Email: "a@b.com"},
		{Name: "王五", Phone: "333", Email: ""},
	}

	groups := FindDuplicateGroups(leads)

	assert.Len(t, groups, 1)
	assert.Equal(t, "111|a@b.com", groups[0].Key)
	assert.Len(t, groups[0].Leads, 2)
	assert.Equal(t, "张三", groups[0].Leads[0].Name)
	assert.Equal(t, "张三备份", groups[0].Leads[1].Name)
}

func TestFindDuplicateGroupsExcludesEmptyKeys(t *testing.T) {
	// 两条联系方式全空的线索键相同,但不能分到一组
	leads := []models.Lead{
		{Name: "甲"},
		{Name: "乙"},
		{Name: "丙", Phone: " ", Email: "  "},
	}

	groups := FindDuplicateGroups(leads)
	assert.Empty(t, groups)
}

func TestFindDuplicateGroupsOrderedByFirstSeen(t *testing.T) {
	leads := []models.Lead{
		{Name: "b1", Phone: "222"},
		{Name: "a1", Phone: "111"},
		{Name: "a2", Phone: "111"},
		{Name: "b2", Phone: "222"},
	}

	groups := FindDuplicateGroups(leads)

	assert.Len(t, groups, 2)
	assert.Equal(t, "222|", groups[0].Key)
	assert.Equal(t, "111|", groups[1].Key)
}

func TestValidateMergeRequest(t *testing.T) {
	// 合法请求
	err := ValidateMergeRequest(&models.LeadMergeRequest{
		KeepID:   "keep",
		MergeIDs: []string{"m1", "m2"},
	})
	assert.NoError(t, err)

	// mergeIds 为空
	err = ValidateMergeRequest(&models.LeadMergeRequest{
		KeepID:   "keep",
		MergeIDs: []string{},
	})
	assert.Error(t, err)
	apiErr, ok := err.(*utils.ApiError)
	assert.True(t, ok)
	assert.Equal(t, 400, apiErr.StatusCode)

	// keepId 出现在 mergeIds 中
	err = ValidateMergeRequest(&models.LeadMergeRequest{
		KeepID:   "keep",
		MergeIDs: []string{"m1", "keep"},
	})
	assert.Error(t, err)
	apiErr, ok = err.(*utils.ApiError)
	assert.True(t, ok)
	assert.Equal(t, 400, apiErr.StatusCode)

	// mergeIds 内部重复
	err = ValidateMergeRequest(&models.LeadMergeRequest{
		KeepID:   "keep",
		MergeIDs: []string{"m1", "m2", "m1"},
	})
	assert.Error(t, err)
	apiErr, ok = err.(*utils.ApiError)
	assert.True(t, ok)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "重复")
}
