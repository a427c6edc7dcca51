package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BerniceZTT/telecrm_end/models"
	"github.com/BerniceZTT/telecrm_end/repository"
	"github.com/BerniceZTT/telecrm_end/service"
	"github.com/BerniceZTT/telecrm_end/utils"
)

// GetUserList 获取用户列表
func GetUserList(c *gin.Context) {
	utils.Logger.Info().Msg("处理获取用户列表请求...")

	role := c.Query("role")

	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}

	collection := repository.Collection(repository.UsersCollection)

	// 排除密码字段
	findOptions := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := collection.Find(repository.GetContext(), filter, findOptions)
	if err != nil {
		utils.Logger.Error().Err(err).Msg("查询用户失败")
		utils.ErrorResponse(c, "获取用户列表失败: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer cursor.Close(repository.GetContext())

	var users []models.User
	if err := cursor.All(repository.GetContext(), &users); err != nil {
		utils.Logger.Error().Err(err).Msg("解析用户数据失败")
		utils.ErrorResponse(c, "获取用户列表失败: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if users == nil {
		users = []models.User{}
	}

	utils.Logger.Info().Int("count", len(users)).Msg("获取用户列表成功")
	utils.SuccessResponse(c, gin.H{"users": users}, "")
}

// GetUserDetail 获取单个用户信息
func GetUserDetail(c *gin.Context) {
	userID := c.Param("id")

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		utils.Logger.Error().Err(err).Str("id", userID).Msg("无效的ID格式")
		utils.ErrorResponse(c, "无效的ID格式", http.StatusBadRequest)
		return
	}

	collection := repository.Collection(repository.UsersCollection)

	var user models.User
	err = collection.FindOne(
		repository.GetContext(),
		bson.M{"_id": objectID},
		options.FindOne().SetProjection(bson.M{"password": 0}),
	).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.ErrorResponse(c, "用户不存在", http.StatusNotFound)
			return
		}
		utils.Logger.Error().Err(err).Str("id", userID).Msg("查询用户失败")
		utils.ErrorResponse(c, "查询用户失败: "+err.Error(), http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user}, "")
}

// CreateUser 创建用户
func CreateUser(c *gin.Context) {
	// 获取当前用户信息
	operator, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求参数: "+err.Error(), http.StatusBadRequest)
		return
	}

	utils.Logger.Info().
		Str("email", req.Email).
		Str("role", string(req.Role)).
		Msg("处理创建用户请求")

	// 只有管理员可以创建管理员账号
	if req.Role == models.UserRoleADMIN && operator.Role != string(models.UserRoleADMIN) {
		utils.ErrorResponse(c, "只有管理员可以创建管理员账号", http.StatusForbidden)
		return
	}

	collection := repository.Collection(repository.UsersCollection)

	// 检查邮箱是否已存在
	var existingUser models.User
	err = collection.FindOne(repository.GetContext(), bson.M{"email": req.Email}).Decode(&existingUser)
	if err == nil {
		utils.Logger.Error().Str("email", req.Email).Msg("邮箱已存在")
		utils.ErrorResponse(c, "该邮箱已被注册", http.StatusConflict)
		return
	} else if err != mongo.ErrNoDocuments {
		utils.Logger.Error().Err(err).Str("email", req.Email).Msg("检查邮箱时发生错误")
		utils.ErrorResponse(c, "创建用户失败: "+err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	newUser := models.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    utils.HashPassword(req.Password),
		Role:        req.Role,
		DailyTarget: req.DailyTarget,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result, err := collection.InsertOne(repository.GetContext(), newUser)
	if err != nil {
		utils.Logger.Error().Err(err).Str("email", req.Email).Msg("插入用户失败")
		if mongo.IsDuplicateKeyError(err) {
			utils.ErrorResponse(c, "该邮箱已被注册", http.StatusConflict)
			return
		}
		utils.ErrorResponse(c, "创建用户失败: "+err.Error(), http.StatusInternalServerError)
		return
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		utils.Logger.Error().Msg("获取插入ID失败")
		utils.ErrorResponse(c, "创建用户成功，但无法获取用户ID", http.StatusInternalServerError)
		return
	}
	newUser.ID = insertedID

	service.RecordAudit("user", insertedID.Hex(), models.AuditActionCREATE, map[string]interface{}{
		"email": newUser.Email,
		"role":  string(newUser.Role),
	}, operator)

	utils.Logger.Info().
		Str("id", insertedID.Hex()).
		Str("email", newUser.Email).
		Msg("用户创建成功")

	utils.SuccessResponse(c, gin.H{"user": newUser}, "创建用户成功", http.StatusCreated)
}

// UpdateUser 更新用户
func UpdateUser(c *gin.Context) {
	userID := c.Param("id")

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		utils.Logger.Error().Err(err).Str("id", userID).Msg("无效的ID格式")
		utils.ErrorResponse(c, "无效的ID格式", http.StatusBadRequest)
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求参数: "+err.Error(), http.StatusBadRequest)
		return
	}

	// 获取当前用户信息
	operator, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	utils.Logger.Info().
		Str("id", userID).
		Str("operator", operator.Name).
		Msg("处理更新用户请求")

	collection := repository.Collection(repository.UsersCollection)

	// 检查用户是否存在
	var existingUser models.User
	err = collection.FindOne(repository.GetContext(), bson.M{"_id": objectID}).Decode(&existingUser)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.ErrorResponse(c, "用户不存在", http.StatusNotFound)
		} else {
			utils.Logger.Error().Err(err).Str("id", userID).Msg("查询用户失败")
			utils.ErrorResponse(c, "更新用户失败: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	// 不能修改自己的角色
	isSelfUpdate := operator.ID == userID
	if isSelfUpdate && req.Role != "" && req.Role != existingUser.Role {
		utils.Logger.Error().Str("id", userID).Msg("不能修改自己的角色")
		utils.ErrorResponse(c, "不能修改自己的角色", http.StatusBadRequest)
		return
	}

	// 只有管理员可以授予管理员角色
	if req.Role == models.UserRoleADMIN && existingUser.Role != models.UserRoleADMIN &&
		operator.Role != string(models.UserRoleADMIN) {
		utils.ErrorResponse(c, "只有管理员可以授予管理员角色", http.StatusForbidden)
		return
	}

	// 如果修改了邮箱，检查是否已被占用
	if req.Email != "" && req.Email != existingUser.Email {
		var emailTaken models.User
		err := collection.FindOne(
			repository.GetContext(),
			bson.M{
				"email": req.Email,
				"_id":   bson.M{"$ne": objectID},
			},
		).Decode(&emailTaken)

		if err == nil {
			utils.Logger.Error().Str("email", req.Email).Msg("邮箱已被占用")
			utils.ErrorResponse(c, "该邮箱已被其他账号使用", http.StatusConflict)
			return
		} else if err != mongo.ErrNoDocuments {
			utils.Logger.Error().Err(err).Str("email", req.Email).Msg("检查邮箱时发生错误")
			utils.ErrorResponse(c, "更新用户失败: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	updateData := bson.M{"updatedAt": time.Now()}

	if req.Name != "" {
		updateData["name"] = req.Name
	}
	if req.Email != "" {
		updateData["email"] = req.Email
	}
	if req.Role != "" {
		updateData["role"] = req.Role
	}
	if req.Password != "" {
		updateData["password"] = utils.HashPassword(req.Password)
	}

	result, err := collection.UpdateOne(
		repository.GetContext(),
		bson.M{"_id": objectID},
		bson.M{"$set": updateData},
	)
	if err != nil {
		utils.Logger.Error().Err(err).Str("id", userID).Msg("更新用户失败")
		if mongo.IsDuplicateKeyError(err) {
			utils.ErrorResponse(c, "该邮箱已被其他账号使用", http.StatusConflict)
			return
		}
		utils.ErrorResponse(c, "更新用户失败: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if result.MatchedCount == 0 {
		utils.ErrorResponse(c, "用户不存在", http.StatusNotFound)
		return
	}

	service.RecordAudit("user", userID, models.AuditActionUPDATE, map[string]interface{}{
		"name":  req.Name,
		"email": req.Email,
		"role":  string(req.Role),
	}, operator)

	utils.Logger.Info().Str("id", userID).Msg("更新用户成功")
	utils.SuccessResponse(c, nil, "更新用户成功")
}

// PatchUser 局部更新用户(停用、每日目标、角色)
func PatchUser(c *gin.Context) {
	userID := c.Param("id")

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		utils.Logger.Error().Err(err).Str("id", userID).Msg("无效的ID格式")
		utils.ErrorResponse(c, "无效的ID格式", http.StatusBadRequest)
		return
	}

	var req models.PatchUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求参数: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Suspended == nil && req.DailyTarget == nil && req.Role == nil {
		utils.ErrorResponse(c, "更新内容不能为空", http.StatusBadRequest)
		return
	}

	// 获取当前用户信息
	operator, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	collection := repository.Collection(repository.UsersCollection)

	var existingUser models.User
	err = collection.FindOne(repository.GetContext(), bson.M{"_id": objectID}).Decode(&existingUser)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.ErrorResponse(c, "用户不存在", http.StatusNotFound)
		} else {
			utils.Logger.Error().Err(err).Str("id", userID).Msg("查询用户失败")
			utils.ErrorResponse(c, "更新用户失败: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	isSelfUpdate := operator.ID == userID

	// 不能停用当前登录账户
	if isSelfUpdate && req.Suspended != nil && *req.Suspended {
		utils.ErrorResponse(c, "不能停用当前登录账户", http.StatusBadRequest)
		return
	}

	// 不能修改自己的角色
	if isSelfUpdate && req.Role != nil && *req.Role != existingUser.Role {
		utils.ErrorResponse(c, "不能修改自己的角色", http.StatusBadRequest)
		return
	}

	// 只有管理员可以授予管理员角色
	if req.Role != nil && *req.Role == models.UserRoleADMIN &&
		existingUser.Role != models.UserRoleADMIN &&
		operator.Role != string(models.UserRoleADMIN) {
		utils.ErrorResponse(c, "只有管理员可以授予管理员角色", http.StatusForbidden)
		return
	}

	updateData := bson.M{"updatedAt": time.Now()}
	changed := map[string]interface{}{}

	if req.Suspended != nil {
		updateData["suspended"] = *req.Suspended
		changed["suspended"] = *req.Suspended
	}
	if req.DailyTarget != nil {
		updateData["dailyTarget"] = *req.DailyTarget
		changed["dailyTarget"] = *req.DailyTarget
	}
	if req.Role != nil {
		updateData["role"] = *req.Role
		changed["role"] = string(*req.Role)
	}

	result, err := collection.UpdateOne(
		repository.GetContext(),
		bson.M{"_id": objectID},
		bson.M{"$set": updateData},
	)
	if err != nil {
		utils.Logger.Error().Err(err).Str("id", userID).Msg("更新用户失败")
		utils.ErrorResponse(c, "更新用户失败: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if result.MatchedCount == 0 {
		utils.ErrorResponse(c, "用户不存在", http.StatusNotFound)
		return
	}

	service.RecordAudit("user", userID, models.AuditActionUPDATE, changed, operator)

	utils.Logger.Info().
		Str("id", userID).
		Interface("changed", changed).
		Msg("用户局部更新成功")

	utils.SuccessResponse(c, nil, "更新用户成功")
}

// DeleteUser 删除用户,名下线索的归属人置空
func DeleteUser(c *gin.Context) {
	userID := c.Param("id")

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		utils.Logger.Error().Err(err).Str("id", userID).Msg("无效的ID格式")
		utils.ErrorResponse(c, "无效的ID格式", http.StatusBadRequest)
		return
	}

	utils.Logger.Info().Str("id", userID).Msg("处理删除用户请求")

	// 获取当前用户信息
	operator, err := utils.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	// 不能删除自己
	if operator.ID == userID {
		utils.Logger.Error().Str("id", userID).Msg("不能删除当前登录账户")
		utils.ErrorResponse(c, "不能删除当前登录账户", http.StatusBadRequest)
		return
	}

	collection := repository.Collection(repository.UsersCollection)

	var userToDelete models.User
	err = collection.FindOne(repository.GetContext(), bson.M{"_id": objectID}).Decode(&userToDelete)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.ErrorResponse(c, "用户不存在", http.StatusNotFound)
		} else {
			utils.Logger.Error().Err(err).Str("id", userID).Msg("查询用户失败")
			utils.ErrorResponse(c, "删除用户失败: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	// 名下线索不跟随删除,归属人置空等待重新分配
	leadsCollection := repository.Collection(repository.LeadsCollection)
	clearResult, err := leadsCollection.UpdateMany(
		repository.GetContext(),
		bson.M{"assignedTo": userID},
		bson.M{"$set": bson.M{"assignedTo": "", "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.Logger.Error().Err(err).Str("id", userID).Msg("清空线索归属失败")
		utils.ErrorResponse(c, "删除用户失败: "+err.Error(), http.StatusInternalServerError)
		return
	}

	result, err := collection.DeleteOne(repository.GetContext(), bson.M{"_id": objectID})
	if err != nil {
		utils.Logger.Error().Err(err).Str("id", userID).Msg("删除用户失败")
		utils.ErrorResponse(c, "删除用户失败: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if result.DeletedCount == 0 {
		utils.ErrorResponse(c, "用户不存在", http.StatusNotFound)
		return
	}

	service.RecordAudit("user", userID, models.AuditActionDELETE, map[string]interface{}{
		"email":        userToDelete.Email,
		"clearedLeads": clearResult.ModifiedCount,
	}, operator)

	utils.Logger.Info().
		Str("id", userID).
		Int64("clearedLeads", clearResult.ModifiedCount).
		Msg("删除用户成功")

	utils.SuccessResponse(c, nil, "删除用户成功")
}
