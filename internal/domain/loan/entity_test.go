package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 借阅实体的不变量测试
// 重点:构造约束、归还状态机、续借限制

func TestNewLoan(t *testing.T) {
	t.Run("正常创建", func(t *testing.T) {
		now := time.Now()
		l, err := NewLoan(1, 2, now, 30)
		require.NoError(t, err)

		assert.Equal(t, uint(1), l.BookID)
		assert.Equal(t, uint(2), l.UserID)
		assert.NotEmpty(t, l.LoanUID, "应生成业务UID")
		assert.True(t, l.IsOpen(), "新借阅应处于在借状态")
		assert.Equal(t, 0, l.Renewals)

		wantDue := now.AddDate(0, 0, 30)
		assert.WithinDuration(t, wantDue, l.DueDate, time.Second)
	})

	t.Run("借出日期不能在未来", func(t *testing.T) {
		future := time.Now().Add(48 * time.Hour)
		_, err := NewLoan(1, 2, future, 30)
		assert.ErrorIs(t, err, ErrLoanDateInFuture)
	})

	t.Run("借期必须为正", func(t *testing.T) {
		_, err := NewLoan(1, 2, time.Now(), 0)
		assert.ErrorIs(t, err, ErrInvalidLoanDays)

		_, err = NewLoan(1, 2, time.Now(), -7)
		assert.ErrorIs(t, err, ErrInvalidLoanDays)
	})
}

func TestLoanMarkReturned(t *testing.T) {
	t.Run("正常归还", func(t *testing.T) {
		l, err := NewLoan(1, 2, time.Now().Add(-72*time.Hour), 30)
		require.NoError(t, err)

		returnAt := time.Now()
		require.NoError(t, l.MarkReturned(returnAt))

		assert.False(t, l.IsOpen())
		require.NotNil(t, l.ReturnDate)
		assert.True(t, l.ReturnDate.Equal(returnAt))
	})

	t.Run("重复归还被拒绝", func(t *testing.T) {
		l, err := NewLoan(1, 2, time.Now().Add(-72*time.Hour), 30)
		require.NoError(t, err)

		require.NoError(t, l.MarkReturned(time.Now()))
		err = l.MarkReturned(time.Now())
		assert.ErrorIs(t, err, ErrAlreadyReturned, "第二次归还应返回业务冲突")
	})

	t.Run("归还时间不能早于借出时间", func(t *testing.T) {
		loanDate := time.Now().Add(-time.Hour)
		l, err := NewLoan(1, 2, loanDate, 30)
		require.NoError(t, err)

		err = l.MarkReturned(loanDate.Add(-time.Minute))
		assert.ErrorIs(t, err, ErrReturnBeforeLoan)
		assert.True(t, l.IsOpen(), "非法归还不应改变状态")
	})
}

func TestLoanRenew(t *testing.T) {
	t.Run("续借延长应还日期", func(t *testing.T) {
		l, err := NewLoan(1, 2, time.Now(), 30)
		require.NoError(t, err)
		dueBefore := l.DueDate

		require.NoError(t, l.Renew(14, 2))
		assert.Equal(t, 1, l.Renewals)
		assert.True(t, l.DueDate.Equal(dueBefore.AddDate(0, 0, 14)))
	})

	t.Run("超过最大续借次数", func(t *testing.T) {
		l, err := NewLoan(1, 2, time.Now(), 30)
		require.NoError(t, err)

		require.NoError(t, l.Renew(7, 2))
		require.NoError(t, l.Renew(7, 2))
		err = l.Renew(7, 2)
		assert.ErrorIs(t, err, ErrRenewLimitExceeded)
		assert.Equal(t, 2, l.Renewals)
	})

	t.Run("maxRenewals为0表示不限次数", func(t *testing.T) {
		l, err := NewLoan(1, 2, time.Now(), 30)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			require.NoError(t, l.Renew(7, 0))
		}
		assert.Equal(t, 5, l.Renewals)
	})

	t.Run("已归还不能续借", func(t *testing.T) {
		l, err := NewLoan(1, 2, time.Now().Add(-time.Hour), 30)
		require.NoError(t, err)
		require.NoError(t, l.MarkReturned(time.Now()))

		err = l.Renew(7, 2)
		assert.ErrorIs(t, err, ErrAlreadyReturned)
	})
}

func TestLoanOverdue(t *testing.T) {
	t.Run("未到期不算逾期", func(t *testing.T) {
		l, err := NewLoan(1, 2, time.Now(), 30)
		require.NoError(t, err)
		assert.False(t, l.IsOverdue())
	})

	t.Run("过了应还日期算逾期", func(t *testing.T) {
		l, err := NewLoan(1, 2, time.Now().AddDate(0, 0, -40), 30)
		require.NoError(t, err)

		assert.True(t, l.IsOverdue())
		assert.GreaterOrEqual(t, l.OverdueDays(), 9)
	})

	t.Run("归还后不再逾期", func(t *testing.T) {
		l, err := NewLoan(1, 2, time.Now().AddDate(0, 0, -40), 30)
		require.NoError(t, err)
		require.NoError(t, l.MarkReturned(time.Now()))

		assert.False(t, l.IsOverdue(), "已归还的记录不应再报逾期")
	})
}
