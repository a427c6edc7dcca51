package service

import (
	"math/rand"
	"strings"

	"github.com/BerniceZTT/telecrm_end/models"
)

// BaseScore 计算线索的确定性基础评分。
// 规则: 有邮箱+10,有电话+20,来源为 website +5,类型为 insurance +8。
func BaseScore(lead *models.Lead) int {
	score := 0
	if strings.TrimSpace(lead.Email) != "" {
		score += 10
	}
	if strings.TrimSpace(lead.Phone) != "" {
		score += 20
	}
	if lead.Source == "website" {
		score += 5
	}
	if lead.Type == "insurance" {
		score += 8
	}
	return score
}

// ScoreJitter 返回 [0,10) 的随机扰动。
// 创建线索未显式指定评分时,由调用方叠加到基础评分上,
// 避免同质线索在列表中完全并列。
func ScoreJitter() int {
	return rand.Intn(10)
}
