package user

import (
	"time"
)

// 系统内置角色
// 角色只用于网关中间件的操作准入,业务规则本身不感知角色
const (
	RoleUser      = "User"      // 普通读者
	RoleLibrarian = "Librarian" // 图书管理员
	RoleAdmin     = "Admin"     // 系统管理员
)

// Roles 全部内置角色(建库时种子化)
var Roles = []string{RoleUser, RoleLibrarian, RoleAdmin}

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 密码已加密存储（bcrypt），不暴露明文
// 2. Roles是角色名列表,仓储查询时连同用户一起装载
// 3. 领域实体不依赖GORM tag（infrastructure层处理映射）
type User struct {
	ID               uint
	Email            string
	Password         string // bcrypt哈希值
	FullName         string
	Roles            []string
	RegistrationDate time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, fullName string) *User {
	now := time.Now()
	return &User{
		Email:            email,
		Password:         hashedPassword,
		FullName:         fullName,
		Roles:            []string{RoleUser}, // 注册默认为普通读者
		RegistrationDate: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// HasRole 是否拥有指定角色
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
