package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// 错误码常量,与前端约定保持一致
const (
	ErrCodeUNAUTHENTICATED = "UNAUTHENTICATED"
	ErrCodeFORBIDDEN       = "FORBIDDEN"
	ErrCodeINVALIDARGUMENT = "INVALID_ARGUMENT"
	ErrCodeNOTFOUND        = "NOT_FOUND"
	ErrCodeCONFLICT        = "CONFLICT"
	ErrCodeINTERNAL        = "INTERNAL"
)

// ApiError 自定义API错误
type ApiError struct {
	StatusCode int
	Message    string
	ErrorCode  string
}

// Error 实现error接口
func (e *ApiError) Error() string {
	return e.Message
}

// NewApiError 创建API错误
func NewApiError(message string, statusCode int, errorCode string) *ApiError {
	return &ApiError{
		StatusCode: statusCode,
		Message:    message,
		ErrorCode:  errorCode,
	}
}

// CreateUnauthenticatedError 创建未认证错误(凭证缺失或无效)
func CreateUnauthenticatedError(message string) *ApiError {
	if message == "" {
		message = "未认证访问"
	}
	return NewApiError(message, http.StatusUnauthorized, ErrCodeUNAUTHENTICATED)
}

// CreateForbiddenError 创建权限不足错误
func CreateForbiddenError() *ApiError {
	return NewApiError("权限不足", http.StatusForbidden, ErrCodeFORBIDDEN)
}

// CreateInvalidArgumentError 创建参数非法错误
func CreateInvalidArgumentError(message string) *ApiError {
	return NewApiError(message, http.StatusBadRequest, ErrCodeINVALIDARGUMENT)
}

// CreateNotFoundError 创建资源不存在错误
func CreateNotFoundError(resource string) *ApiError {
	return NewApiError(resource+"不存在", http.StatusNotFound, ErrCodeNOTFOUND)
}

// CreateConflictError 创建唯一性冲突错误
func CreateConflictError(message string) *ApiError {
	return NewApiError(message, http.StatusConflict, ErrCodeCONFLICT)
}

// CreateInternalError 创建内部错误
func CreateInternalError(message string) *ApiError {
	if message == "" {
		message = "服务内部错误"
	}
	return NewApiError(message, http.StatusInternalServerError, ErrCodeINTERNAL)
}

// HandleError 处理错误并返回适当的响应
func HandleError(c *gin.Context, err error) {
	if c == nil {
		return
	}
	// 记录错误
	errorMessage := err.Error()
	Logger.Error().Str("path", c.Request.URL.Path).Str("method", c.Request.Method).Msg("API错误: " + errorMessage)

	LogError(err, map[string]interface{}{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	}, errorMessage)

	// 处理API错误
	if apiErr, ok := err.(*ApiError); ok {
		c.JSON(apiErr.StatusCode, gin.H{
			"success": false,
			"error":   apiErr.Message,
			"code":    apiErr.ErrorCode,
		})
		return
	}

	// 数据库层错误做统一映射
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "资源不存在",
			"code":    ErrCodeNOTFOUND,
		})
		return
	}
	if mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "记录已存在",
			"code":    ErrCodeCONFLICT,
		})
		return
	}

	// 其他未预期的错误
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   errorMessage,
		"code":    ErrCodeINTERNAL,
	})
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, data interface{}, message string, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := gin.H{"success": true}
	if data != nil {
		response["data"] = data
	}
	if message != "" {
		response["message"] = message
	}

	c.JSON(code, response)
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, message string, statusCode int) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}
