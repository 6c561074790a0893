package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// fakeRepo 内存用户仓储,测试Service的业务规则
type fakeRepo struct {
	users  map[uint]*User
	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[uint]*User), nextID: 1}
}

func (r *fakeRepo) Create(ctx context.Context, u *User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrEmailDuplicate
		}
	}
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = u
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *fakeRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeRepo) List(ctx context.Context) ([]*User, error) {
	var result []*User
	for _, u := range r.users {
		result = append(result, u)
	}
	return result, nil
}

func (r *fakeRepo) ListByRole(ctx context.Context, role string) ([]*User, error) {
	var result []*User
	for _, u := range r.users {
		if u.HasRole(role) {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) AssignRole(ctx context.Context, userID uint, role string) error {
	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
	return nil
}

func (r *fakeRepo) RevokeRole(ctx context.Context, userID uint, role string) error {
	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	var kept []string
	for _, existing := range u.Roles {
		if existing != role {
			kept = append(kept, existing)
		}
	}
	u.Roles = kept
	return nil
}

// TestRegister 测试用户注册
func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("正常注册", func(t *testing.T) {
		svc := NewService(newFakeRepo())

		u, err := svc.Register(ctx, "reader@example.com", "passw0rd123", "张三")
		require.NoError(t, err)

		assert.NotZero(t, u.ID)
		assert.Equal(t, []string{RoleUser}, u.Roles, "注册默认为普通读者")
		assert.NotEqual(t, "passw0rd123", u.Password, "密码不能明文存储")
		assert.NoError(t, svc.ValidatePassword(u.Password, "passw0rd123"), "哈希应该能验证原密码")

		t.Logf("✓ 注册成功: id=%d, roles=%v", u.ID, u.Roles)
	})

	t.Run("邮箱格式校验", func(t *testing.T) {
		svc := NewService(newFakeRepo())

		for _, email := range []string{"", "not-an-email", "a@b", "@example.com"} {
			_, err := svc.Register(ctx, email, "passw0rd123", "张三")
			assert.Error(t, err, "非法邮箱应该被拒绝: %q", email)
		}

		t.Logf("✓ 非法邮箱正确被拒绝")
	})

	t.Run("密码强度校验", func(t *testing.T) {
		svc := NewService(newFakeRepo())

		cases := []string{
			"short1",               // 太短
			"12345678",             // 只有数字
			"abcdefgh",             // 只有字母
			"abcdefgh123456789012345", // 超长
		}
		for _, password := range cases {
			_, err := svc.Register(ctx, "reader@example.com", password, "张三")
			assert.ErrorIs(t, err, apperrors.ErrWeakPassword, "弱密码应该被拒绝: %q", password)
		}

		t.Logf("✓ 弱密码正确被拒绝")
	})

	t.Run("重复邮箱被拒绝", func(t *testing.T) {
		svc := NewService(newFakeRepo())

		_, err := svc.Register(ctx, "reader@example.com", "passw0rd123", "张三")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "reader@example.com", "passw0rd456", "李四")
		assert.ErrorIs(t, err, ErrEmailDuplicate)
	})
}

// TestLogin 测试用户登录
func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	_, err := svc.Register(ctx, "reader@example.com", "passw0rd123", "张三")
	require.NoError(t, err)

	t.Run("正常登录", func(t *testing.T) {
		u, err := svc.Login(ctx, "reader@example.com", "passw0rd123")
		require.NoError(t, err)
		assert.Equal(t, "reader@example.com", u.Email)
	})

	t.Run("密码错误", func(t *testing.T) {
		_, err := svc.Login(ctx, "reader@example.com", "wrongpass1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})

	t.Run("用户不存在", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost@example.com", "passw0rd123")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

// TestUpdateUserRoles 测试角色调整
func TestUpdateUserRoles(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	u, err := svc.Register(ctx, "reader@example.com", "passw0rd123", "张三")
	require.NoError(t, err)

	t.Run("授予角色", func(t *testing.T) {
		err := svc.UpdateUserRoles(ctx, u.ID, []string{RoleLibrarian}, nil)
		require.NoError(t, err)

		inRole, err := svc.IsUserInRole(ctx, u.ID, RoleLibrarian)
		require.NoError(t, err)
		assert.True(t, inRole)

		t.Logf("✓ 授予Librarian角色成功")
	})

	t.Run("撤销角色", func(t *testing.T) {
		err := svc.UpdateUserRoles(ctx, u.ID, nil, []string{RoleLibrarian})
		require.NoError(t, err)

		inRole, err := svc.IsUserInRole(ctx, u.ID, RoleLibrarian)
		require.NoError(t, err)
		assert.False(t, inRole)
	})

	t.Run("未知角色被拒绝", func(t *testing.T) {
		err := svc.UpdateUserRoles(ctx, u.ID, []string{"SuperUser"}, nil)
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("用户不存在", func(t *testing.T) {
		err := svc.UpdateUserRoles(ctx, 9999, []string{RoleAdmin}, nil)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
