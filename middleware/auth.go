package middleware

import (
	"net/http"
	"strings"

	"github.com/BerniceZTT/telecrm_end/config"
	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// AuthMiddleware 认证中间件
func AuthMiddleware() gin.HandlerFunc {
	cfg := config.LoadConfig()

	return func(c *gin.Context) {
		// 从请求头获取token
		authHeader := c.GetHeader("Authorization")
		requestPath := c.Request.URL.Path
		requestMethod := c.Request.Method

		utils.Logger.Debug().
			Str("path", requestPath).
			Str("method", requestMethod).
			Str("authorization", getShortAuthHeader(authHeader)).
			Msg("验证请求")

		// 检查Authorization头
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// 显式开启匿名管理员时,未携带凭证的请求以开发身份放行
			if cfg.AllowAnonymousAdmin {
				utils.Logger.Warn().
					Str("path", requestPath).
					Msg("匿名管理员模式: 使用开发管理员身份")
				c.Set("user", map[string]interface{}{
					"id":    "dev-admin",
					"role":  string(models.UserRoleADMIN),
					"name":  "开发管理员",
					"email": "dev@telecrm.local",
				})
				c.Next()
				return
			}

			utils.Logger.Info().Msg("缺少Authorization头或格式错误")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "未认证访问",
				"code":    utils.ErrCodeUNAUTHENTICATED,
			})
			return
		}

		// 提取token
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "未认证访问",
				"code":    utils.ErrCodeUNAUTHENTICATED,
			})
			return
		}

		// 解析token
		claims, err := utils.ParseToken(token)
		if err != nil {
			utils.Logger.Error().Err(err).Msg("Token验证失败")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "无效的token: " + err.Error(),
				"code":    utils.ErrCodeUNAUTHENTICATED,
			})
			return
		}

		// 检查必要字段
		if claims["id"] == nil || claims["role"] == nil {
			utils.Logger.Warn().Interface("claims", claims).Msg("Token负载缺少必要字段")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Token缺少必要字段",
				"code":    utils.ErrCodeUNAUTHENTICATED,
			})
			return
		}

		// 将用户信息存储到上下文
		c.Set("user", claims)

		c.Next()
	}
}

// PermissionMiddleware 资源操作权限中间件,依赖AuthMiddleware先行写入用户信息
func PermissionMiddleware(resource string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取用户信息
		userClaims, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "用户未认证",
				"code":    utils.ErrCodeUNAUTHENTICATED,
			})
			return
		}

		// 处理不同来源的 claims
		var claims map[string]interface{}
		switch v := userClaims.(type) {
		case jwt.MapClaims:
			claims = map[string]interface{}(v)
		case map[string]interface{}:
			claims = v
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "无法处理用户信息格式",
				"code":    utils.ErrCodeUNAUTHENTICATED,
			})
			return
		}

		// 获取角色
		roleStr, ok := claims["role"].(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "用户角色信息无效",
				"code":    utils.ErrCodeFORBIDDEN,
			})
			return
		}
		role := models.UserRole(roleStr)

		// 检查权限
		if !utils.HasPermission(role, resource, action) {
			name, _ := claims["name"].(string)
			utils.Logger.Info().
				Str("name", name).
				Str("role", roleStr).
				Str("resource", resource).
				Str("action", action).
				Msg("权限不足")

			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "权限不足",
				"code":    utils.ErrCodeFORBIDDEN,
			})
			return
		}

		c.Next()
	}
}

// getShortAuthHeader 获取截断的授权头，保护敏感信息
func getShortAuthHeader(header string) string {
	if header == "" {
		return ""
	}

	if len(header) > 15 {
		return header[:15] + "..."
	}

	return header
}
