package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/repository"
	"github.com/BerniceZTT/telecrm_end/service"
	"github.com/BerniceZTT/telecrm_end/utils"
)

// Login 用户登录
func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求参数: "+err.Error(), http.StatusBadRequest)
		return
	}

	utils.Logger.Info().
		Str("email", req.Email).
		Msg("登录尝试")

	collection := repository.Collection(repository.UsersCollection)
	var user models.User
	err := collection.FindOne(repository.GetContext(), bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Logger.Info().Str("email", req.Email).Msg("登录失败: 账号不存在")
			utils.ErrorResponse(c, "邮箱或密码错误", http.StatusUnauthorized)
			return
		}
		utils.Logger.Error().Err(err).Msg("查询用户出错")
		utils.ErrorResponse(c, "登录失败: 数据库错误", http.StatusInternalServerError)
		return
	}

	// 停用的账户不允许登录
	if user.Suspended {
		utils.Logger.Info().Str("email", req.Email).Msg("登录失败: 账户已被停用")
		utils.ErrorResponse(c, "账户已被停用，请联系管理员", http.StatusForbidden)
		return
	}

	// 验证密码
	if !utils.VerifyPassword(req.Password, user.Password) {
		utils.Logger.Info().Str("email", req.Email).Msg("登录失败: 密码错误")
		utils.ErrorResponse(c, "邮箱或密码错误", http.StatusUnauthorized)
		return
	}

	// 生成JWT令牌
	token, err := utils.GenerateToken(user)
	if err != nil {
		utils.Logger.Error().Err(err).Msg("生成token失败")
		utils.ErrorResponse(c, "生成登录令牌失败，请重试", http.StatusInternalServerError)
		return
	}

	utils.Logger.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("用户登录成功")
	utils.SuccessResponse(c, gin.H{
		"token": token,
		"user":  user,
	}, "")
}

// Register 用户注册。角色默认为电销专员,不允许自助注册管理员。
func Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求参数: "+err.Error(), http.StatusBadRequest)
		return
	}

	utils.Logger.Info().
		Str("email", req.Email).
		Str("role", string(req.Role)).
		Msg("用户注册请求")

	role := req.Role
	if role == "" {
		role = models.UserRoleTELECALLER
	}
	if role == models.UserRoleADMIN {
		utils.ErrorResponse(c, "不允许自助注册管理员账号", http.StatusBadRequest)
		return
	}
	if role != models.UserRoleMANAGER && role != models.UserRoleTELECALLER {
		utils.ErrorResponse(c, "无效的角色: "+string(role), http.StatusBadRequest)
		return
	}

	// 检查邮箱是否已被注册
	collection := repository.Collection(repository.UsersCollection)
	var existingUser models.User
	err := collection.FindOne(repository.GetContext(), bson.M{"email": req.Email}).Decode(&existingUser)
	if err == nil {
		utils.Logger.Info().Str("email", req.Email).Msg("注册失败: 邮箱已存在")
		utils.ErrorResponse(c, "该邮箱已被注册", http.StatusConflict)
		return
	} else if err != mongo.ErrNoDocuments {
		utils.Logger.Error().Err(err).Msg("检查邮箱是否存在时出错")
		utils.ErrorResponse(c, "注册失败: 数据库错误", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	newUser := models.User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  utils.HashPassword(req.Password),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := collection.InsertOne(repository.GetContext(), newUser); err != nil {
		utils.Logger.Error().Err(err).Msg("创建用户失败")
		if mongo.IsDuplicateKeyError(err) {
			utils.ErrorResponse(c, "该邮箱已被注册", http.StatusConflict)
			return
		}
		utils.ErrorResponse(c, "注册失败: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// 注册即登录
	token, err := utils.GenerateToken(newUser)
	if err != nil {
		utils.Logger.Error().Err(err).Msg("生成token失败")
		utils.ErrorResponse(c, "注册成功但生成令牌失败，请手动登录", http.StatusInternalServerError)
		return
	}

	service.RecordAudit("user", newUser.ID.Hex(), models.AuditActionCREATE, map[string]interface{}{
		"email": newUser.Email,
		"role":  string(newUser.Role),
	}, &utils.LoginUser{ID: newUser.ID.Hex(), Role: string(newUser.Role), Name: newUser.Name, Email: newUser.Email})

	utils.Logger.Info().
		Str("email", newUser.Email).
		Str("id", newUser.ID.Hex()).
		Msg("用户注册成功")

	utils.SuccessResponse(c, gin.H{
		"token": token,
		"user":  newUser,
	}, "注册成功", http.StatusCreated)
}

// ValidateToken 验证Token并返回账户最新信息
func ValidateToken(c *gin.Context) {
	// 获取当前用户信息
	user, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if user.ID == "" || user.Role == "" {
		utils.ErrorResponse(c, "无效的token: 用户信息不完整", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// 匿名开发管理员等非数据库账号,直接回显token信息
		utils.SuccessResponse(c, gin.H{"user": gin.H{
			"_id":   user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		}}, "")
		return
	}

	var dbUser models.User
	collection := repository.Collection(repository.UsersCollection)
	err = collection.FindOne(repository.GetContext(), bson.M{"_id": userID}).Decode(&dbUser)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.ErrorResponse(c, "账号不存在或已被删除", http.StatusUnauthorized)
			return
		}
		utils.ErrorResponse(c, "查询用户失败", http.StatusInternalServerError)
		return
	}

	if dbUser.Suspended {
		utils.ErrorResponse(c, "账户已被停用", http.StatusForbidden)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": dbUser}, "")
}
