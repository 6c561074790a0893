package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/elibrary/internal/domain/loan"
	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// loanRepository 借阅仓储实现(MySQL)
// 设计说明:
// 1. 借阅记录是历史档案,只有Create和Update,没有Delete
// 2. 列表查询JOIN图书表填充BookTitle快照(展示用途)
// 3. Create/Update通过getDB(ctx)参与借出/归还事务
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository 创建借阅仓储
func NewLoanRepository(db *gorm.DB) loan.Repository {
	return &loanRepository{db: db}
}

// Create 创建借阅记录
func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	model := &LoanModel{
		LoanUID:    l.LoanUID,
		BookID:     l.BookID,
		UserID:     l.UserID,
		LoanDate:   l.LoanDate,
		DueDate:    l.DueDate,
		ReturnDate: l.ReturnDate,
		Renewals:   l.Renewals,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrDuplicateEntry
		}
		return apperrors.Wrap(err, "创建借阅记录失败")
	}

	l.ID = model.ID
	l.CreatedAt = model.CreatedAt
	l.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找借阅记录
func (r *loanRepository) FindByID(ctx context.Context, id uint) (*loan.Loan, error) {
	var row loanRow
	err := r.joinBooks(getDB(ctx, r.db)).Where("loans.id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}
	return row.toEntity(), nil
}

// Update 更新借阅记录(归还/续借)
func (r *loanRepository) Update(ctx context.Context, l *loan.Loan) error {
	result := getDB(ctx, r.db).Model(&LoanModel{}).
		Where("id = ?", l.ID).
		Updates(map[string]interface{}{
			"due_date":    l.DueDate,
			"return_date": l.ReturnDate,
			"renewals":    l.Renewals,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新借阅记录失败")
	}
	if result.RowsAffected == 0 {
		return loan.ErrLoanNotFound
	}
	return nil
}

// HasOpenLoan 用户是否持有该图书的在借记录
// 借出事务内调用:前置的LockByID已锁定图书行,此处的检查不会
// 与并发借出竞争
func (r *loanRepository) HasOpenLoan(ctx context.Context, userID, bookID uint) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&LoanModel{}).
		Where("user_id = ? AND book_id = ? AND return_date IS NULL", userID, bookID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询在借记录失败")
	}
	return count > 0, nil
}

// CountOpenByUser 用户在借记录数
func (r *loanRepository) CountOpenByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&LoanModel{}).
		Where("user_id = ? AND return_date IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计在借记录失败")
	}
	return count, nil
}

// ListActive 全部在借记录,按应还日期升序
func (r *loanRepository) ListActive(ctx context.Context) ([]*loan.Loan, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("loans.return_date IS NULL").Order("loans.due_date ASC")
	})
}

// ListOverdue 逾期记录(在借且应还日期早于now),按应还日期升序
func (r *loanRepository) ListOverdue(ctx context.Context, now time.Time) ([]*loan.Loan, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("loans.return_date IS NULL AND loans.due_date < ?", now).
			Order("loans.due_date ASC")
	})
}

// ListByUser 用户全部借阅历史,按借出日期降序
func (r *loanRepository) ListByUser(ctx context.Context, userID uint) ([]*loan.Loan, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("loans.user_id = ?", userID).Order("loans.loan_date DESC, loans.id DESC")
	})
}

// ListOpenByUser 用户当前在借记录,按应还日期升序
func (r *loanRepository) ListOpenByUser(ctx context.Context, userID uint) ([]*loan.Loan, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("loans.user_id = ? AND loans.return_date IS NULL", userID).
			Order("loans.due_date ASC")
	})
}

// =========================================
// 辅助:带图书标题的查询投影
// =========================================

// loanRow 借阅记录+图书标题的查询投影
type loanRow struct {
	LoanModel
	BookTitle string
}

func (row *loanRow) toEntity() *loan.Loan {
	return &loan.Loan{
		ID:         row.ID,
		LoanUID:    row.LoanUID,
		BookID:     row.BookID,
		UserID:     row.UserID,
		LoanDate:   row.LoanDate,
		DueDate:    row.DueDate,
		ReturnDate: row.ReturnDate,
		Renewals:   row.Renewals,
		BookTitle:  row.BookTitle,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

// joinBooks LEFT JOIN图书表取标题
// 用LEFT JOIN而非JOIN:图书被软删除后借阅历史仍需可查
func (r *loanRepository) joinBooks(db *gorm.DB) *gorm.DB {
	return db.Model(&LoanModel{}).
		Select("loans.*, books.title AS book_title").
		Joins("LEFT JOIN books ON books.id = loans.book_id")
}

func (r *loanRepository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]*loan.Loan, error) {
	var rows []loanRow
	if err := scope(r.joinBooks(getDB(ctx, r.db))).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询借阅列表失败")
	}
	loans := make([]*loan.Loan, len(rows))
	for i := range rows {
		loans[i] = rows[i].toEntity()
	}
	return loans, nil
}
