package user

import (
	"context"
	"regexp"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// Service 用户领域服务
// 设计说明：
// 1. Service包含不属于单个实体的业务逻辑（密码加密、验证、角色管理）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
// 3. 角色存储在这里维护,操作准入(谁能调用什么接口)由HTTP中间件执行
type Service interface {
	// Register 用户注册(默认角色User)
	Register(ctx context.Context, email, password, fullName string) (*User, error)

	// Login 用户登录
	Login(ctx context.Context, email, password string) (*User, error)

	// ValidatePassword 验证密码
	ValidatePassword(hashedPassword, plainPassword string) error

	// GetUserByID 查询用户
	GetUserByID(ctx context.Context, id uint) (*User, error)

	// ListUsers 全部用户
	ListUsers(ctx context.Context) ([]*User, error)

	// ListUsersByRole 按角色过滤用户
	ListUsersByRole(ctx context.Context, role string) ([]*User, error)

	// UpdateUserRoles 批量调整角色(先撤销后授予)
	UpdateUserRoles(ctx context.Context, userID uint, rolesToAdd, rolesToRemove []string) error

	// IsUserInRole 用户是否拥有角色
	IsUserInRole(ctx context.Context, userID uint, role string) (bool, error)

	// DeleteUser 删除用户(不做在借检查,调用方用例负责守卫)
	DeleteUser(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register 用户注册
// 业务规则：
// 1. 邮箱格式校验
// 2. 密码强度校验（8-20位，包含字母和数字）
// 3. 密码bcrypt加密（cost=12）
// 4. 邮箱唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	// 1. 邮箱格式校验
	if !isValidEmail(email) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	}

	// 2. 密码强度校验
	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}

	// 3. 姓名校验
	if len(fullName) < 2 || len(fullName) > 80 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "姓名长度应为2-80个字符")
	}

	// 4. 密码加密
	// bcrypt自动加盐,cost=12平衡安全性与性能
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	// 5. 创建用户实体（默认角色User）
	u := NewUser(email, string(hashedPassword), fullName)

	// 6. 持久化到数据库
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err // Repository已转换为业务错误
	}

	return u, nil
}

// Login 用户登录
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	// 1. 根据邮箱查找用户
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// 2. 验证密码
	if err := s.ValidatePassword(u.Password, password); err != nil {
		return nil, err
	}

	return u, nil
}

// ValidatePassword 验证明文密码与哈希值是否匹配
func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

func (s *service) GetUserByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *service) ListUsersByRole(ctx context.Context, role string) ([]*User, error) {
	if !isKnownRole(role) {
		return nil, ErrRoleNotFound
	}
	return s.repo.ListByRole(ctx, role)
}

// UpdateUserRoles 批量调整角色
// 先撤销后授予:同一角色同时出现在两个列表时,最终是授予状态
func (s *service) UpdateUserRoles(ctx context.Context, userID uint, rolesToAdd, rolesToRemove []string) error {
	// 1. 用户必须存在
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return err
	}

	// 2. 角色名必须是内置角色
	for _, r := range append(append([]string{}, rolesToAdd...), rolesToRemove...) {
		if !isKnownRole(r) {
			return ErrRoleNotFound
		}
	}

	// 3. 先撤销
	for _, r := range rolesToRemove {
		if err := s.repo.RevokeRole(ctx, userID, r); err != nil {
			return err
		}
	}

	// 4. 后授予
	for _, r := range rolesToAdd {
		if err := s.repo.AssignRole(ctx, userID, r); err != nil {
			return err
		}
	}

	return nil
}

// IsUserInRole 用户是否拥有角色
func (s *service) IsUserInRole(ctx context.Context, userID uint, role string) (bool, error) {
	if !isKnownRole(role) {
		return false, nil
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}

	return u.HasRole(role), nil
}

// DeleteUser 删除用户
// 在借守卫在application层用例中执行(需要跨聚合查询借阅仓储)
func (s *service) DeleteUser(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// =========================================
// 辅助函数：业务规则校验
// =========================================

// isKnownRole 是否为内置角色
func isKnownRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// isValidEmail 邮箱格式校验
// 简单的正则校验，生产环境可使用更严格的RFC 5322标准
func isValidEmail(email string) bool {
	pattern := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	matched, _ := regexp.MatchString(pattern, email)
	return matched
}

// validatePasswordStrength 密码强度校验
// 规则：8-20位，至少包含一个字母和一个数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}

	var hasLetter, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsLetter(ch):
			hasLetter = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return apperrors.ErrWeakPassword
	}

	return nil
}
