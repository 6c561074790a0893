package loan

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/elibrary/internal/domain/book"
	"github.com/xiebiao/elibrary/internal/domain/loan"
)

// TestBorrowBook 测试借书用例
func TestBorrowBook(t *testing.T) {
	ctx := context.Background()

	newUseCase := func(bookRepo *fakeBookRepo) (*BorrowBookUseCase, *fakeLoanRepo, *recordingPublisher, *recordingCache) {
		loanRepo := newFakeLoanRepo()
		publisher := &recordingPublisher{}
		cache := &recordingCache{}
		uc := NewBorrowBookUseCase(loanRepo, bookRepo, &fakeTxManager{}, publisher, cache, 60)
		return uc, loanRepo, publisher, cache
	}

	t.Run("正常借书", func(t *testing.T) {
		bookRepo := newFakeBookRepo(newTestBook(1, 5, 5))
		uc, loanRepo, publisher, cache := newUseCase(bookRepo)

		resp, err := uc.Execute(ctx, BorrowBookRequest{UserID: 100, BookID: 1, LoanDays: 14})
		require.NoError(t, err)

		assert.NotZero(t, resp.LoanID, "借阅ID应该大于0")
		assert.NotEmpty(t, resp.LoanUID, "借阅业务标识不应该为空")
		assert.Equal(t, "测试图书", resp.BookTitle)

		// 台账扣减
		assert.Equal(t, 4, bookRepo.available(1), "可借数应该从5减到4")

		// 借阅记录已写入且在借
		l, err := loanRepo.FindByID(ctx, resp.LoanID)
		require.NoError(t, err)
		assert.True(t, l.IsOpen())

		// 旁路操作：缓存失效+事件发布
		assert.Equal(t, 1, cache.count(), "应该失效一次可借数缓存")
		assert.Equal(t, []string{EventLoanIssued}, publisher.published())

		t.Logf("✓ 借书成功: loan_id=%d, due=%s", resp.LoanID, resp.DueDate)
	})

	t.Run("无可借副本被拒绝", func(t *testing.T) {
		bookRepo := newFakeBookRepo(newTestBook(1, 3, 0))
		uc, _, publisher, cache := newUseCase(bookRepo)

		_, err := uc.Execute(ctx, BorrowBookRequest{UserID: 100, BookID: 1, LoanDays: 14})
		assert.ErrorIs(t, err, book.ErrNoAvailableCopies)

		assert.Equal(t, 0, bookRepo.available(1), "台账不应该变化")
		assert.Zero(t, cache.count(), "失败不应该触碰缓存")
		assert.Empty(t, publisher.published(), "失败不应该发布事件")

		t.Logf("✓ 无可借副本正确被拒绝")
	})

	t.Run("重复借阅被拒绝", func(t *testing.T) {
		bookRepo := newFakeBookRepo(newTestBook(1, 5, 5))
		uc, _, _, _ := newUseCase(bookRepo)

		_, err := uc.Execute(ctx, BorrowBookRequest{UserID: 100, BookID: 1, LoanDays: 14})
		require.NoError(t, err)

		// 同一人再借同一本书
		_, err = uc.Execute(ctx, BorrowBookRequest{UserID: 100, BookID: 1, LoanDays: 14})
		assert.ErrorIs(t, err, loan.ErrDuplicateLoan)
		assert.Equal(t, 4, bookRepo.available(1), "第二次借阅不应该扣减台账")

		// 别人可以借
		_, err = uc.Execute(ctx, BorrowBookRequest{UserID: 200, BookID: 1, LoanDays: 14})
		assert.NoError(t, err, "其他用户借同一本书应该成功")

		t.Logf("✓ 同一人同一本书的重复借阅正确被拒绝")
	})

	t.Run("图书不存在", func(t *testing.T) {
		bookRepo := newFakeBookRepo()
		uc, _, _, _ := newUseCase(bookRepo)

		_, err := uc.Execute(ctx, BorrowBookRequest{UserID: 100, BookID: 999, LoanDays: 14})
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("借期校验", func(t *testing.T) {
		bookRepo := newFakeBookRepo(newTestBook(1, 5, 5))
		uc, _, _, _ := newUseCase(bookRepo)

		_, err := uc.Execute(ctx, BorrowBookRequest{UserID: 100, BookID: 1, LoanDays: 0})
		assert.ErrorIs(t, err, loan.ErrInvalidLoanDays, "借期为0应该被拒绝")

		_, err = uc.Execute(ctx, BorrowBookRequest{UserID: 100, BookID: 1, LoanDays: -7})
		assert.ErrorIs(t, err, loan.ErrInvalidLoanDays, "负数借期应该被拒绝")

		_, err = uc.Execute(ctx, BorrowBookRequest{UserID: 100, BookID: 1, LoanDays: 90})
		assert.ErrorIs(t, err, loan.ErrInvalidLoanDays, "超过最长借期应该被拒绝")

		assert.Equal(t, 5, bookRepo.available(1), "参数校验失败不应该触碰台账")
	})
}

// TestBorrowBookConcurrency 测试并发借书不会超借
//
// 场景：可借数只剩1本，两个用户同时借。
// 期望：恰好一个成功，另一个收到"无可借副本"，台账最终为0。
// 这是防超借的核心性质，真实现靠SELECT FOR UPDATE串行化，
// 假实现靠fakeTxManager的互斥锁，被测的用例编排逻辑是同一份。
func TestBorrowBookConcurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("最后一本被并发争抢", func(t *testing.T) {
		bookRepo := newFakeBookRepo(newTestBook(1, 1, 1))
		loanRepo := newFakeLoanRepo()
		uc := NewBorrowBookUseCase(loanRepo, bookRepo, &fakeTxManager{}, nil, nil, 0)

		const workers = 2
		errs := make([]error, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				_, errs[idx] = uc.Execute(ctx, BorrowBookRequest{
					UserID:   uint(100 + idx), // 不同用户,排除重复借阅干扰
					BookID:   1,
					LoanDays: 14,
				})
			}(i)
		}
		wg.Wait()

		var succeeded, rejected int
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, book.ErrNoAvailableCopies):
				rejected++
			}
		}

		assert.Equal(t, 1, succeeded, "应该恰好一人借到")
		assert.Equal(t, 1, rejected, "另一人应该收到无可借副本")
		assert.Equal(t, 0, bookRepo.available(1), "台账应该为0而不是负数")

		active, err := loanRepo.ListActive(ctx)
		require.NoError(t, err)
		assert.Len(t, active, 1, "应该只产生一条在借记录")

		t.Logf("✓ 并发借阅最后一本: 1人成功, 1人被拒, 台账=0")
	})

	t.Run("十人争抢三本", func(t *testing.T) {
		bookRepo := newFakeBookRepo(newTestBook(1, 3, 3))
		loanRepo := newFakeLoanRepo()
		uc := NewBorrowBookUseCase(loanRepo, bookRepo, &fakeTxManager{}, nil, nil, 0)

		const workers = 10
		errs := make([]error, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				_, errs[idx] = uc.Execute(ctx, BorrowBookRequest{
					UserID:   uint(1000 + idx),
					BookID:   1,
					LoanDays: 14,
				})
			}(i)
		}
		wg.Wait()

		var succeeded int
		for _, err := range errs {
			if err == nil {
				succeeded++
			}
		}

		assert.Equal(t, 3, succeeded, "应该恰好3人借到")
		assert.Equal(t, 0, bookRepo.available(1), "台账应该正好扣到0")

		t.Logf("✓ 10人并发争抢3本: %d人成功", succeeded)
	})
}
