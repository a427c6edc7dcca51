package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BerniceZTT/telecrm_end/models"
)

func TestHashPasswordDeterministic(t *testing.T) {
	h1 := HashPassword("secret123")
	h2 := HashPassword("secret123")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, HashPassword("secret124"))
	assert.Len(t, h1, 64) // sha256十六进制
}

func TestVerifyPassword(t *testing.T) {
	// 标准sha256格式
	assert.True(t, VerifyPassword("secret123", HashPassword("secret123")))
	assert.False(t, VerifyPassword("wrong", HashPassword("secret123")))

	// 盐值格式 sha256$salt$hash
	hashed := SimpleHash("secret123", "")
	assert.True(t, VerifyPassword("secret123", hashed))
	assert.False(t, VerifyPassword("wrong", hashed))

	customSalt := SimpleHash("secret123", "abcd1234")
	assert.True(t, VerifyPassword("secret123", customSalt))

	// 非法格式
	assert.False(t, VerifyPassword("secret123", "not-a-hash"))
	assert.False(t, VerifyPassword("secret123", ""))
}

func TestGenerateAndParseToken(t *testing.T) {
	user := models.User{
		ID:    primitive.NewObjectID(),
		Name:  "测试用户",
		Email: "test@telecrm.local",
		Role:  models.UserRoleTELECALLER,
	}

	token, err := GenerateToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims["id"])
	assert.Equal(t, "test@telecrm.local", claims["email"])
	assert.Equal(t, "测试用户", claims["name"])
	assert.Equal(t, "telecaller", claims["role"])

	// 30天有效期
	exp, ok := claims["exp"].(float64)
	assert.True(t, ok)
	assert.Greater(t, int64(exp), time.Now().Unix())
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token")
	assert.Error(t, err)

	_, err = ParseToken("")
	assert.Error(t, err)
}

func TestHasPermission(t *testing.T) {
	// 管理员拥有所有权限
	assert.True(t, HasPermission(models.UserRoleADMIN, "users", "delete"))
	assert.True(t, HasPermission(models.UserRoleADMIN, "anything", "whatever"))

	// 主管
	assert.True(t, HasPermission(models.UserRoleMANAGER, "leads", "delete"))
	assert.True(t, HasPermission(models.UserRoleMANAGER, "leads", "merge"))
	assert.True(t, HasPermission(models.UserRoleMANAGER, "campaigns", "send"))
	assert.True(t, HasPermission(models.UserRoleMANAGER, "workflows", "trigger"))
	assert.True(t, HasPermission(models.UserRoleMANAGER, "audit", "read"))
	assert.False(t, HasPermission(models.UserRoleMANAGER, "users", "delete"))

	// 电销专员
	assert.True(t, HasPermission(models.UserRoleTELECALLER, "leads", "read"))
	assert.True(t, HasPermission(models.UserRoleTELECALLER, "leads", "update"))
	assert.True(t, HasPermission(models.UserRoleTELECALLER, "calls", "create"))
	assert.True(t, HasPermission(models.UserRoleTELECALLER, "plans", "read"))
	assert.False(t, HasPermission(models.UserRoleTELECALLER, "leads", "create"))
	assert.False(t, HasPermission(models.UserRoleTELECALLER, "leads", "delete"))
	assert.False(t, HasPermission(models.UserRoleTELECALLER, "campaigns", "read"))
	assert.False(t, HasPermission(models.UserRoleTELECALLER, "audit", "read"))

	// 未知角色没有任何权限
	assert.False(t, HasPermission(models.UserRole("guest"), "leads", "read"))
}
