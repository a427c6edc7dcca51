package utils

import (
	"fmt"
	"net/http"

	"github.com/BerniceZTT/telecrm_end/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// LoginUser 当前登录用户信息
type LoginUser struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GetUser 从请求上下文中取出当前登录用户
func GetUser(c *gin.Context) (*LoginUser, error) {
	currentUser, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("GetUser 未认证访问")
	}

	// 处理不同来源的 claims
	var claims map[string]interface{}
	switch v := currentUser.(type) {
	case jwt.MapClaims:
		claims = map[string]interface{}(v)
	case map[string]interface{}:
		claims = v
	default:
		return nil, fmt.Errorf("无效的用户信息类型")
	}

	id, ok := claims["id"].(string)
	if !ok {
		return nil, fmt.Errorf("无效的用户ID")
	}

	role, ok := claims["role"].(string)
	if !ok {
		return nil, fmt.Errorf("无效的用户角色")
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)

	return &LoginUser{
		ID:    id,
		Role:  role,
		Name:  name,
		Email: email,
	}, nil
}

// CanViewAllLeads 判断角色是否可以查看全部线索。
// 电销专员只能看到分配给自己的线索。
func CanViewAllLeads(role string) bool {
	return role == string(models.UserRoleADMIN) ||
		role == string(models.UserRoleMANAGER)
}

// PaginatedResponse 分页响应
func PaginatedResponse(c *gin.Context, data interface{}, total int64, page int64, limit int64) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
			"pages": (total + limit - 1) / limit,
		},
	})
}
