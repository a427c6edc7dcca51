package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole 用户角色枚举
type UserRole string

const (
	UserRoleADMIN      UserRole = "admin"      // 管理员
	UserRoleMANAGER    UserRole = "manager"    // 销售主管
	UserRoleTELECALLER UserRole = "telecaller" // 电销专员
)

// User 用户(账号)类型
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"-"` // 不返回密码
	Role        UserRole           `bson:"role" json:"role"`
	DailyTarget int                `bson:"dailyTarget,omitempty" json:"dailyTarget,omitempty"`
	Suspended   bool               `bson:"suspended" json:"suspended"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserBrief 用户简要信息
type UserBrief struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Role  UserRole           `bson:"role" json:"role"`
}

// 各种请求和响应结构
type (
	// LoginRequest 登录请求
	LoginRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	// LoginResponse 登录响应
	LoginResponse struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}

	// RegisterRequest 注册请求(默认注册为电销专员)
	RegisterRequest struct {
		Name     string   `json:"name" binding:"required,min=2"`
		Email    string   `json:"email" binding:"required,email"`
		Password string   `json:"password" binding:"required,min=6"`
		Role     UserRole `json:"role"`
	}

	// CreateUserRequest 创建用户请求
	CreateUserRequest struct {
		Name        string   `json:"name" binding:"required,min=2"`
		Email       string   `json:"email" binding:"required,email"`
		Password    string   `json:"password" binding:"required,min=6"`
		Role        UserRole `json:"role" binding:"required,oneof=admin manager telecaller"`
		DailyTarget int      `json:"dailyTarget" binding:"omitempty,min=0"`
	}

	// UpdateUserRequest 更新用户请求
	UpdateUserRequest struct {
		Name     string   `json:"name" binding:"omitempty,min=2"`
		Email    string   `json:"email" binding:"omitempty,email"`
		Password string   `json:"password" binding:"omitempty,min=6"`
		Role     UserRole `json:"role" binding:"omitempty,oneof=admin manager telecaller"`
	}

	// PatchUserRequest 局部更新请求(停用标记、每日目标等)
	PatchUserRequest struct {
		Suspended   *bool     `json:"suspended"`
		DailyTarget *int      `json:"dailyTarget" binding:"omitempty,min=0"`
		Role        *UserRole `json:"role" binding:"omitempty,oneof=admin manager telecaller"`
	}
)
