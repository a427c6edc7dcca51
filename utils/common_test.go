package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestGetUserFromJWTClaims(t *testing.T) {
	c, _ := newTestContext()
	c.Set("user", jwt.MapClaims{
		"id":    "64f000000000000000000001",
		"role":  "manager",
		"name":  "张三",
		"email": "zhangsan@telecrm.local",
	})

	user, err := GetUser(c)
	assert.NoError(t, err)
	assert.Equal(t, "64f000000000000000000001", user.ID)
	assert.Equal(t, "manager", user.Role)
	assert.Equal(t, "张三", user.Name)
	assert.Equal(t, "zhangsan@telecrm.local", user.Email)
}

func TestGetUserFromPlainMap(t *testing.T) {
	c, _ := newTestContext()
	c.Set("user", map[string]interface{}{
		"id":   "64f000000000000000000002",
		"role": "telecaller",
	})

	user, err := GetUser(c)
	assert.NoError(t, err)
	assert.Equal(t, "telecaller", user.Role)
	assert.Empty(t, user.Name)
}

func TestGetUserMissing(t *testing.T) {
	c, _ := newTestContext()

	user, err := GetUser(c)
	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestGetUserInvalidClaims(t *testing.T) {
	c, _ := newTestContext()
	c.Set("user", jwt.MapClaims{"role": "admin"}) // 缺少id

	_, err := GetUser(c)
	assert.Error(t, err)
}

func TestCanViewAllLeads(t *testing.T) {
	assert.True(t, CanViewAllLeads("admin"))
	assert.True(t, CanViewAllLeads("manager"))
	assert.False(t, CanViewAllLeads("telecaller"))
	assert.False(t, CanViewAllLeads(""))
}

func TestPaginatedResponse(t *testing.T) {
	c, w := newTestContext()

	PaginatedResponse(c, []string{"a", "b"}, 21, 2, 10)

	assert.Equal(t, 200, w.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])

	pagination, ok := body["pagination"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, float64(21), pagination["total"])
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(3), pagination["pages"])
}
