package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestApiErrorConstructors(t *testing.T) {
	unauth := CreateUnauthenticatedError("")
	assert.Equal(t, http.StatusUnauthorized, unauth.StatusCode)
	assert.Equal(t, ErrCodeUNAUTHENTICATED, unauth.ErrorCode)
	assert.Equal(t, "未认证访问", unauth.Message)

	forbidden := CreateForbiddenError()
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)
	assert.Equal(t, "权限不足", forbidden.Message)

	invalid := CreateInvalidArgumentError("参数格式错误")
	assert.Equal(t, http.StatusBadRequest, invalid.StatusCode)
	assert.Equal(t, ErrCodeINVALIDARGUMENT, invalid.ErrorCode)

	notFound := CreateNotFoundError("线索")
	assert.Equal(t, http.StatusNotFound, notFound.StatusCode)
	assert.Equal(t, "线索不存在", notFound.Message)

	conflict := CreateConflictError("该邮箱已被注册")
	assert.Equal(t, http.StatusConflict, conflict.StatusCode)
	assert.Equal(t, ErrCodeCONFLICT, conflict.ErrorCode)

	internal := CreateInternalError("")
	assert.Equal(t, http.StatusInternalServerError, internal.StatusCode)
	assert.Equal(t, "服务内部错误", internal.Message)
}

func TestApiErrorImplementsError(t *testing.T) {
	var err error = CreateInvalidArgumentError("评分必须为非负整数")
	assert.Equal(t, "评分必须为非负整数", err.Error())
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleErrorApiError(t *testing.T) {
	c, w := newTestContext()
	c.Request = httptest.NewRequest(http.MethodGet, "/api/leads", nil)

	HandleError(c, CreateNotFoundError("线索"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "线索不存在", body["error"])
	assert.Equal(t, ErrCodeNOTFOUND, body["code"])
}

func TestHandleErrorNoDocuments(t *testing.T) {
	c, w := newTestContext()
	c.Request = httptest.NewRequest(http.MethodGet, "/api/users/xx", nil)

	HandleError(c, mongo.ErrNoDocuments)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "资源不存在", body["error"])
}

func TestHandleErrorUnexpected(t *testing.T) {
	c, w := newTestContext()
	c.Request = httptest.NewRequest(http.MethodPost, "/api/leads", nil)

	HandleError(c, errors.New("连接超时"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, ErrCodeINTERNAL, body["code"])
}

func TestSuccessResponse(t *testing.T) {
	c, w := newTestContext()

	SuccessResponse(c, gin.H{"id": "1"}, "创建成功", http.StatusCreated)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "创建成功", body["message"])
	assert.NotNil(t, body["data"])
}

func TestSuccessResponseOmitsEmptyFields(t *testing.T) {
	c, w := newTestContext()

	SuccessResponse(c, nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	_, hasData := body["data"]
	assert.False(t, hasData)
	_, hasMessage := body["message"]
	assert.False(t, hasMessage)
}

func TestErrorResponse(t *testing.T) {
	c, w := newTestContext()

	ErrorResponse(c, "邮箱或密码错误", http.StatusUnauthorized)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "邮箱或密码错误", body["error"])
}
