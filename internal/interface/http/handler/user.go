package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/elibrary/internal/application/user"
	"github.com/xiebiao/elibrary/internal/domain/user"
	"github.com/xiebiao/elibrary/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/elibrary/internal/interface/http/dto"
	"github.com/xiebiao/elibrary/internal/interface/http/middleware"
	"github.com/xiebiao/elibrary/pkg/response"
)

// UserHandler 用户HTTP处理器
type UserHandler struct {
	registerUseCase   *appuser.RegisterUseCase
	loginUseCase      *appuser.LoginUseCase
	logoutUseCase     *appuser.LogoutUseCase
	deleteUserUseCase *appuser.DeleteUserUseCase
	userService       user.Service
	sessionStore      *redis.SessionStore
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	deleteUserUseCase *appuser.DeleteUserUseCase,
	userService user.Service,
	sessionStore *redis.SessionStore,
) *UserHandler {
	return &UserHandler{
		registerUseCase:   registerUseCase,
		loginUseCase:      loginUseCase,
		logoutUseCase:     logoutUseCase,
		deleteUserUseCase: deleteUserUseCase,
		userService:       userService,
		sessionStore:      sessionStore,
	}
}

// ProfileResponse 当前用户信息响应
type ProfileResponse struct {
	appuser.UserInfo
	LoginAt string `json:"login_at,omitempty"` // 本次会话的登录时间,会话不存在时省略
}

// Register 用户注册
// @Summary      用户注册
// @Description  注册成功默认授予User角色
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      200 {object} response.Response{data=appuser.RegisterResponse}
// @Failure      400 {object} response.Response "参数错误/密码强度不足"
// @Failure      409 {object} response.Response "邮箱已注册"
// @Router       /api/v1/users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Login 用户登录
// @Summary      用户登录
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appuser.LoginResponse}
// @Failure      401 {object} response.Response "邮箱或密码错误"
// @Router       /api/v1/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Logout 用户登出
// @Summary      用户登出
// @Description  删除会话并将当前Token加入黑名单
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/users/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	err := h.logoutUseCase.Execute(c.Request.Context(),
		middleware.MustGetUserID(c), middleware.GetAccessToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// Profile 当前用户信息
// @Summary      当前用户信息
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=handler.ProfileResponse}
// @Router       /api/v1/users/me [get]
func (h *UserHandler) Profile(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	u, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := ProfileResponse{UserInfo: appuser.UserInfo{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Roles:    u.Roles,
	}}

	// 会话信息尽力而为,Redis异常不影响基本资料返回
	if sess, sessErr := h.sessionStore.GetSession(c.Request.Context(), userID); sessErr == nil {
		if ts, convErr := strconv.ParseInt(sess["login_at"], 10, 64); convErr == nil {
			resp.LoginAt = time.Unix(ts, 0).Format(time.RFC3339)
		}
	}

	response.Success(c, resp)
}

// ListUsers 用户列表(馆员)
// @Summary      用户列表
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        role query string false "按角色过滤(User/Librarian/Admin)"
// @Success      200 {object} response.Response
// @Router       /api/v1/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var (
		users []*user.User
		err   error
	)
	if role := c.Query("role"); role != "" {
		users, err = h.userService.ListUsersByRole(c.Request.Context(), role)
	} else {
		users, err = h.userService.ListUsers(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	infos := make([]appuser.UserInfo, len(users))
	for i, u := range users {
		infos[i] = appuser.UserInfo{ID: u.ID, Email: u.Email, FullName: u.FullName, Roles: u.Roles}
	}
	response.Success(c, infos)
}

// GetUser 查询用户(馆员)
// @Summary      用户详情
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{data=appuser.UserInfo}
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	u, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, appuser.UserInfo{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Roles:    u.Roles,
	})
}

// UpdateRoles 调整用户角色(管理员)
// @Summary      调整用户角色
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Param        request body dto.UpdateRolesRequest true "角色变更"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "未知角色"
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/users/{id}/roles [put]
func (h *UserHandler) UpdateRoles(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	if err := h.userService.UpdateUserRoles(c.Request.Context(), id, req.Add, req.Remove); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// DeleteUser 删除用户(管理员)
// @Summary      删除用户
// @Description  仍有在借记录时拒绝删除(40007)
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "用户不存在"
// @Failure      409 {object} response.Response "存在未归还的借阅"
// @Router       /api/v1/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.deleteUserUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
