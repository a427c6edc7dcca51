package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BerniceZTT/telecrm_end/models"
)

func TestBaseScore(t *testing.T) {
	cases := []struct {
		name string
		lead models.Lead
		want int
	}{
		{"空线索", models.Lead{}, 0},
		{"仅邮箱", models.Lead{Email: "a@b.com"}, 10},
		{"仅电话", models.Lead{Phone: "13800000000"}, 20},
		{"网站来源", models.Lead{Source: "website"}, 5},
		{"保险类型", models.Lead{Type: "insurance"}, 8},
		{"全部命中", models.Lead{Email: "a@b.com", Phone: "13800000000", Source: "website", Type: "insurance"}, 43},
		{"空白邮箱不计分", models.Lead{Email: "   "}, 0},
		{"空白电话不计分", models.Lead{Phone: "\t"}, 0},
		{"其他来源不计分", models.Lead{Source: "referral"}, 0},
		{"其他类型不计分", models.Lead{Type: "loan"}, 0},
		{"邮箱加电话", models.Lead{Email: "a@b.com", Phone: "123"}, 30},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BaseScore(&tc.lead))
		})
	}
}

func TestBaseScoreDeterministic(t *testing.T) {
	lead := models.Lead{Email: "a@b.com", Phone: "123", Source: "website"}
	first := BaseScore(&lead)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BaseScore(&lead))
	}
}

func TestScoreJitterRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		j := ScoreJitter()
		assert.GreaterOrEqual(t, j, 0)
		assert.Less(t, j, 10)
	}
}

// 最终评分落在 [基础分, 基础分+10) 区间内
func TestScoreWithJitterBounds(t *testing.T) {
	lead := models.Lead{Email: "a@b.com", Phone: "123", Source: "website", Type: "insurance"}
	floor := BaseScore(&lead)

	for i := 0; i < 100; i++ {
		total := BaseScore(&lead) + ScoreJitter()
		assert.GreaterOrEqual(t, total, floor)
		assert.Less(t, total, floor+10)
	}
}
