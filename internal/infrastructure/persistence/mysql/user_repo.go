package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/elibrary/internal/domain/user"
	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// userRepository 用户仓储实现(MySQL)
// 设计说明:
// 1. 角色关联(user_roles)由仓储内部维护,查询用户时一并装载
// 2. 角色授予/撤销做成幂等操作,重复调用不报错
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户(连同初始角色)
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		Email:            u.Email,
		Password:         u.Password,
		FullName:         u.FullName,
		RegistrationDate: u.RegistrationDate,
	}

	err := getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		for _, role := range u.Roles {
			if err := tx.Create(&UserRoleModel{UserID: model.ID, Role: role}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateError(err) {
			return user.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	db := getDB(ctx, r.db)
	err := db.First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}

	entity := toUserEntity(&model)
	if err := r.loadRoles(db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	db := getDB(ctx, r.db)
	err := db.Where("email = ?", email).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}

	entity := toUserEntity(&model)
	if err := r.loadRoles(db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// List 按姓名排序返回全部用户
func (r *userRepository) List(ctx context.Context) ([]*user.User, error) {
	var models []UserModel
	db := getDB(ctx, r.db)
	if err := db.Order("full_name ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询用户列表失败")
	}
	return r.toEntities(db, models)
}

// ListByRole 返回拥有指定角色的用户
func (r *userRepository) ListByRole(ctx context.Context, role string) ([]*user.User, error) {
	var models []UserModel
	db := getDB(ctx, r.db)
	err := db.
		Where("EXISTS (SELECT 1 FROM user_roles ur WHERE ur.user_id = users.id AND ur.role = ?)", role).
		Order("full_name ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "按角色查询用户失败")
	}
	return r.toEntities(db, models)
}

// Delete 删除用户(软删除)
// 在借守卫由上层用例负责;角色关联一并清理
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&UserModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "删除用户失败")
		}
		if result.RowsAffected == 0 {
			return user.ErrUserNotFound
		}
		if err := tx.Where("user_id = ?", id).Delete(&UserRoleModel{}).Error; err != nil {
			return apperrors.Wrap(err, "清理用户角色失败")
		}
		return nil
	})
}

// AssignRole 授予角色(幂等)
func (r *userRepository) AssignRole(ctx context.Context, userID uint, role string) error {
	err := getDB(ctx, r.db).Create(&UserRoleModel{UserID: userID, Role: role}).Error
	if err != nil {
		// 已拥有该角色:唯一索引冲突视为成功
		if isDuplicateError(err) {
			return nil
		}
		return apperrors.Wrap(err, "授予角色失败")
	}
	return nil
}

// RevokeRole 撤销角色(幂等)
func (r *userRepository) RevokeRole(ctx context.Context, userID uint, role string) error {
	err := getDB(ctx, r.db).
		Where("user_id = ? AND role = ?", userID, role).
		Delete(&UserRoleModel{}).Error
	if err != nil {
		return apperrors.Wrap(err, "撤销角色失败")
	}
	return nil
}

func toUserEntity(model *UserModel) *user.User {
	return &user.User{
		ID:               model.ID,
		Email:            model.Email,
		Password:         model.Password,
		FullName:         model.FullName,
		RegistrationDate: model.RegistrationDate,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// loadRoles 装载用户角色列表
func (r *userRepository) loadRoles(db *gorm.DB, u *user.User) error {
	var roles []string
	err := db.Model(&UserRoleModel{}).
		Where("user_id = ?", u.ID).
		Order("role ASC").
		Pluck("role", &roles).Error
	if err != nil {
		return apperrors.Wrap(err, "查询用户角色失败")
	}
	u.Roles = roles
	return nil
}

func (r *userRepository) toEntities(db *gorm.DB, models []UserModel) ([]*user.User, error) {
	users := make([]*user.User, len(models))
	for i := range models {
		users[i] = toUserEntity(&models[i])
		if err := r.loadRoles(db, users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}
