package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/elibrary/internal/domain/loan"
	"github.com/xiebiao/elibrary/internal/domain/user"
)

type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// stubLoanRepo 只关心每个用户的在借数
type stubLoanRepo struct {
	openByUser map[uint]int64
}

func (r *stubLoanRepo) Create(ctx context.Context, l *loan.Loan) error          { return nil }
func (r *stubLoanRepo) FindByID(ctx context.Context, id uint) (*loan.Loan, error) {
	return nil, loan.ErrLoanNotFound
}
func (r *stubLoanRepo) Update(ctx context.Context, l *loan.Loan) error { return nil }
func (r *stubLoanRepo) HasOpenLoan(ctx context.Context, userID, bookID uint) (bool, error) {
	return false, nil
}
func (r *stubLoanRepo) CountOpenByUser(ctx context.Context, userID uint) (int64, error) {
	return r.openByUser[userID], nil
}
func (r *stubLoanRepo) ListActive(ctx context.Context) ([]*loan.Loan, error) { return nil, nil }
func (r *stubLoanRepo) ListOverdue(ctx context.Context, now time.Time) ([]*loan.Loan, error) {
	return nil, nil
}
func (r *stubLoanRepo) ListByUser(ctx context.Context, userID uint) ([]*loan.Loan, error) {
	return nil, nil
}
func (r *stubLoanRepo) ListOpenByUser(ctx context.Context, userID uint) ([]*loan.Loan, error) {
	return nil, nil
}

// stubUserService 只记录删除调用
type stubUserService struct {
	user.Service
	deleted []uint
}

func (s *stubUserService) DeleteUser(ctx context.Context, id uint) error {
	s.deleted = append(s.deleted, id)
	return nil
}

// TestDeleteUser 测试删除用户的在借守卫
// 借阅记录弱引用用户,删除不级联:有在借记录时必须拒绝
func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("无在借记录可以删除", func(t *testing.T) {
		userSvc := &stubUserService{}
		uc := NewDeleteUserUseCase(userSvc, &stubLoanRepo{openByUser: map[uint]int64{}}, &fakeTxManager{})

		err := uc.Execute(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, []uint{100}, userSvc.deleted)

		t.Logf("✓ 无在借记录的用户删除成功")
	})

	t.Run("有在借记录拒绝删除", func(t *testing.T) {
		userSvc := &stubUserService{}
		uc := NewDeleteUserUseCase(userSvc, &stubLoanRepo{openByUser: map[uint]int64{100: 2}}, &fakeTxManager{})

		err := uc.Execute(ctx, 100)
		assert.ErrorIs(t, err, user.ErrUserHasOpenLoans)
		assert.Empty(t, userSvc.deleted, "守卫失败不应该触达删除")

		t.Logf("✓ 有2条在借记录的用户正确被拒绝删除")
	})
}
