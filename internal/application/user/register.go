package user

import (
	"context"

	"github.com/xiebiao/elibrary/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 注册逻辑(邮箱/密码校验、bcrypt加密)在领域服务中,
// 应用层只负责DTO转换
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	FullName string
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	User UserInfo `json:"user"`
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		User: toUserInfo(u),
	}, nil
}

// UserInfo 用户信息DTO(注册/登录/查询共用)
type UserInfo struct {
	ID       uint     `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}

func toUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Roles:    u.Roles,
	}
}
