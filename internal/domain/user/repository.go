package user

import (
	"context"
)

// Repository 用户仓储接口
// 角色关联(user_roles)由仓储维护,查询用户时一并装载Roles
type Repository interface {
	// Create 创建用户(连同初始角色)
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找用户
	FindByEmail(ctx context.Context, email string) (*User, error)

	// List 按姓名排序返回全部用户
	List(ctx context.Context) ([]*User, error)

	// ListByRole 返回拥有指定角色的用户
	ListByRole(ctx context.Context, role string) ([]*User, error)

	// Delete 删除用户(调用方需先检查无在借记录)
	Delete(ctx context.Context, id uint) error

	// AssignRole 授予角色(幂等:已拥有则空操作)
	AssignRole(ctx context.Context, userID uint, role string) error

	// RevokeRole 撤销角色(幂等:未拥有则空操作)
	RevokeRole(ctx context.Context, userID uint, role string) error
}
