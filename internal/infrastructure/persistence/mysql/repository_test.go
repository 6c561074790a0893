package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/elibrary/internal/domain/book"
	"github.com/xiebiao/elibrary/internal/domain/loan"
	"github.com/xiebiao/elibrary/internal/domain/reservation"
)

// 教学说明：仓储层测试
//
// 用SQLite内存库跑真实SQL,验证仓储实现的语义:
// 守卫条件、唯一约束映射、投影查询、事务回滚。
// 注意:LockByID的FOR UPDATE是MySQL语法,SQLite不支持,
// 行锁语义由集成环境验证,这里不覆盖

// newTestDB 创建SQLite内存测试库
// SetMaxOpenConns(1):内存库按连接隔离,多连接会各自看到空库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "打开SQLite内存库失败")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db), "建表失败")
	return db
}

// seedBook 插入一本测试图书并返回ID
func seedBook(t *testing.T, db *gorm.DB, isbn string, total, available int) uint {
	t.Helper()
	model := &BookModel{
		ISBN:            isbn,
		Title:           "测试图书",
		TotalCopies:     total,
		AvailableCopies: available,
	}
	require.NoError(t, db.Create(model).Error)
	return model.ID
}

// TestBookRepositoryCreate 测试图书创建与唯一约束
func TestBookRepositoryCreate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewBookRepository(db)

	t.Run("创建并回查", func(t *testing.T) {
		b, err := book.NewBook("9787111544937", "测试驱动开发", "机械工业出版社", 2014, 180, "中文", "", 3)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, b, nil, nil))
		assert.NotZero(t, b.ID, "创建后应该回填自增ID")

		found, err := repo.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "测试驱动开发", found.Title)
		assert.Equal(t, 3, found.TotalCopies)
		assert.Equal(t, 3, found.AvailableCopies, "新书全部副本可借")

		byISBN, err := repo.FindByISBN(ctx, "9787111544937")
		require.NoError(t, err)
		assert.Equal(t, b.ID, byISBN.ID)

		t.Logf("✓ 图书创建成功: id=%d", b.ID)
	})

	t.Run("重复ISBN被拒绝", func(t *testing.T) {
		b, err := book.NewBook("9787111544937", "另一本书", "", 2020, 100, "中文", "", 1)
		require.NoError(t, err)

		err = repo.Create(ctx, b, nil, nil)
		assert.ErrorIs(t, err, book.ErrISBNDuplicate)

		t.Logf("✓ 重复ISBN正确映射为业务错误")
	})

	t.Run("不存在的图书", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}

// TestUpdateAvailableGuard 测试台账守卫条件
// 核心不变量: 0 <= available_copies <= total_copies
func TestUpdateAvailableGuard(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewBookRepository(db)

	bookID := seedBook(t, db, "9787115549440", 2, 2)

	available := func() int {
		var model BookModel
		require.NoError(t, db.First(&model, bookID).Error)
		return model.AvailableCopies
	}

	t.Run("扣减到0", func(t *testing.T) {
		require.NoError(t, repo.UpdateAvailable(ctx, bookID, -1))
		require.NoError(t, repo.UpdateAvailable(ctx, bookID, -1))
		assert.Equal(t, 0, available())
	})

	t.Run("扣到负数被守卫条件拦截", func(t *testing.T) {
		err := repo.UpdateAvailable(ctx, bookID, -1)
		assert.ErrorIs(t, err, book.ErrNoAvailableCopies)
		assert.Equal(t, 0, available(), "失败不应该改变台账")

		t.Logf("✓ 可借数为0时扣减被拒绝")
	})

	t.Run("加回到总数", func(t *testing.T) {
		require.NoError(t, repo.UpdateAvailable(ctx, bookID, +1))
		require.NoError(t, repo.UpdateAvailable(ctx, bookID, +1))
		assert.Equal(t, 2, available())
	})

	t.Run("超过总数被守卫条件拦截", func(t *testing.T) {
		err := repo.UpdateAvailable(ctx, bookID, +1)
		assert.ErrorIs(t, err, book.ErrCopiesExceedTotal)
		assert.Equal(t, 2, available())

		t.Logf("✓ 超过馆藏总数的加回被拒绝")
	})

	t.Run("图书不存在", func(t *testing.T) {
		err := repo.UpdateAvailable(ctx, 9999, -1)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}

// TestLoanRepository 测试借阅仓储
func TestLoanRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewLoanRepository(db)

	bookID := seedBook(t, db, "9787115549440", 5, 5)

	t.Run("创建与投影查询", func(t *testing.T) {
		l, err := loan.NewLoan(bookID, 100, time.Now(), 14)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, l))

		found, err := repo.FindByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, "测试图书", found.BookTitle, "查询应该回填书名快照")
		assert.True(t, found.IsOpen())

		hasOpen, err := repo.HasOpenLoan(ctx, 100, bookID)
		require.NoError(t, err)
		assert.True(t, hasOpen)

		count, err := repo.CountOpenByUser(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		t.Logf("✓ 借阅记录创建与投影查询正常")
	})

	t.Run("归还后在借检查变化", func(t *testing.T) {
		found, err := repo.ListOpenByUser(ctx, 100)
		require.NoError(t, err)
		require.Len(t, found, 1)

		l := found[0]
		require.NoError(t, l.MarkReturned(time.Now()))
		require.NoError(t, repo.Update(ctx, l))

		hasOpen, err := repo.HasOpenLoan(ctx, 100, bookID)
		require.NoError(t, err)
		assert.False(t, hasOpen, "归还后不应该再算在借")

		history, err := repo.ListByUser(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, history, 1, "归还的记录保留在历史里")

		t.Logf("✓ 归还后在借状态正确翻转")
	})

	t.Run("逾期查询", func(t *testing.T) {
		// 借出日期20天前,借期14天 → 已逾期约6天
		overdue, err := loan.NewLoan(bookID, 200, time.Now().AddDate(0, 0, -20), 14)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, overdue))

		// 在借但未逾期的记录
		open, err := loan.NewLoan(bookID, 300, time.Now(), 14)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, open))

		list, err := repo.ListOverdue(ctx, time.Now())
		require.NoError(t, err)
		require.Len(t, list, 1, "只有逾期记录出现在逾期列表里")
		assert.Equal(t, overdue.ID, list[0].ID)

		active, err := repo.ListActive(ctx)
		require.NoError(t, err)
		assert.Len(t, active, 2, "在借列表包含逾期与未逾期")

		t.Logf("✓ 逾期/在借投影查询正常")
	})

	t.Run("更新不存在的记录", func(t *testing.T) {
		ghost := &loan.Loan{ID: 9999, DueDate: time.Now()}
		err := repo.Update(ctx, ghost)
		assert.ErrorIs(t, err, loan.ErrLoanNotFound)
	})
}

// TestReservationRepository 测试预约仓储
func TestReservationRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewReservationRepository(db)

	bookID := seedBook(t, db, "9787115549440", 5, 5)

	t.Run("创建与生效检查", func(t *testing.T) {
		r, err := reservation.NewReservation(bookID, 100, 7)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, r))

		hasActive, err := repo.HasActive(ctx, 100, bookID)
		require.NoError(t, err)
		assert.True(t, hasActive)

		found, err := repo.FindByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "测试图书", found.BookTitle)
		assert.True(t, found.IsActive)

		t.Logf("✓ 预约创建成功: id=%d", r.ID)
	})

	t.Run("置失效后生效检查变化", func(t *testing.T) {
		list, err := repo.ListActive(ctx, 100)
		require.NoError(t, err)
		require.Len(t, list, 1)

		r := list[0]
		r.Deactivate()
		require.NoError(t, repo.Update(ctx, r))

		hasActive, err := repo.HasActive(ctx, 100, bookID)
		require.NoError(t, err)
		assert.False(t, hasActive, "失效后不应该算生效预约")

		history, err := repo.ListByUser(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, history, 1, "失效记录保留在历史里")

		t.Logf("✓ 预约置失效正常")
	})

	t.Run("ListActive不过滤用户", func(t *testing.T) {
		for _, userID := range []uint{100, 200} {
			r, err := reservation.NewReservation(bookID, userID, 7)
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, r))
		}

		all, err := repo.ListActive(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 2, "userID=0应该返回全部生效预约")
	})
}

// TestTxManagerRollback 测试事务回滚
// 事务内任意一步失败,此前的写入全部回滚,不留半成品
func TestTxManagerRollback(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	txManager := NewTxManager(db)
	bookRepo := NewBookRepository(db)
	loanRepo := NewLoanRepository(db)

	bookID := seedBook(t, db, "9787115549440", 1, 1)

	t.Run("失败回滚", func(t *testing.T) {
		// 模拟借出流程走到一半失败:
		// 借阅记录已写入、台账已扣减,然后守卫条件拒绝二次扣减
		err := txManager.Transaction(ctx, func(txCtx context.Context) error {
			l, err := loan.NewLoan(bookID, 100, time.Now(), 14)
			if err != nil {
				return err
			}
			if err := loanRepo.Create(txCtx, l); err != nil {
				return err
			}
			if err := bookRepo.UpdateAvailable(txCtx, bookID, -1); err != nil {
				return err
			}
			// 第二次扣减触发守卫条件,整个事务回滚
			return bookRepo.UpdateAvailable(txCtx, bookID, -1)
		})
		require.ErrorIs(t, err, book.ErrNoAvailableCopies)

		// 借阅记录与台账扣减都应该被回滚
		hasOpen, err := loanRepo.HasOpenLoan(ctx, 100, bookID)
		require.NoError(t, err)
		assert.False(t, hasOpen, "借阅记录应该被回滚")

		found, err := bookRepo.FindByID(ctx, bookID)
		require.NoError(t, err)
		assert.Equal(t, 1, found.AvailableCopies, "台账扣减应该被回滚")

		t.Logf("✓ 事务失败后写入全部回滚")
	})

	t.Run("成功提交", func(t *testing.T) {
		err := txManager.Transaction(ctx, func(txCtx context.Context) error {
			l, err := loan.NewLoan(bookID, 100, time.Now(), 14)
			if err != nil {
				return err
			}
			if err := loanRepo.Create(txCtx, l); err != nil {
				return err
			}
			return bookRepo.UpdateAvailable(txCtx, bookID, -1)
		})
		require.NoError(t, err)

		found, err := bookRepo.FindByID(ctx, bookID)
		require.NoError(t, err)
		assert.Equal(t, 0, found.AvailableCopies)

		t.Logf("✓ 事务提交后写入生效")
	})
}
