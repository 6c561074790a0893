package loan

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/elibrary/internal/domain/book"
	"github.com/xiebiao/elibrary/internal/domain/loan"
	"github.com/xiebiao/elibrary/pkg/metrics"
)

// BorrowBookUseCase 借书用例
// 教学要点:这是整个项目最核心的用例
// 涉及:事务处理、并发控制、业务规则校验
type BorrowBookUseCase struct {
	loanRepo    loan.Repository
	bookRepo    book.Repository
	txManager   TxManager
	publisher   EventPublisher
	cache       AvailabilityInvalidator
	maxLoanDays int
}

// NewBorrowBookUseCase 创建借书用例
func NewBorrowBookUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	txManager TxManager,
	publisher EventPublisher,
	cache AvailabilityInvalidator,
	maxLoanDays int,
) *BorrowBookUseCase {
	return &BorrowBookUseCase{
		loanRepo:    loanRepo,
		bookRepo:    bookRepo,
		txManager:   txManager,
		publisher:   publisher,
		cache:       cache,
		maxLoanDays: maxLoanDays,
	}
}

// BorrowBookRequest 借书请求DTO
type BorrowBookRequest struct {
	UserID   uint // 借阅人ID(从JWT中提取)
	BookID   uint // 图书ID
	LoanDays int  // 借期天数
}

// BorrowBookResponse 借书响应DTO
type BorrowBookResponse struct {
	LoanID    uint   `json:"loan_id"`
	LoanUID   string `json:"loan_uid"`
	BookID    uint   `json:"book_id"`
	BookTitle string `json:"book_title"`
	LoanDate  string `json:"loan_date"`
	DueDate   string `json:"due_date"`
}

// Execute 执行借书用例
// 教学重点:防止超借的完整流程
//
// 核心问题:可借数只剩1本,两人同时借
// 错误实现:
//  1. 查询可借数 → 1本
//  2. 判断够不够 → 够
//  3. 扣减可借数 → available = available - 1
//     结果:两个请求都通过了步骤2,最后借出2本(台账为负!)
//
// 正确实现:悲观锁
//  1. SELECT FOR UPDATE 锁定图书行
//  2. 检查可借数、检查重复借阅
//  3. 创建借阅记录
//  4. 原子扣减可借数(守卫条件兜底)
//  5. COMMIT释放锁
func (uc *BorrowBookUseCase) Execute(ctx context.Context, req BorrowBookRequest) (*BorrowBookResponse, error) {
	timer := time.Now()

	// 1. 参数校验
	if req.LoanDays <= 0 {
		return nil, loan.ErrInvalidLoanDays
	}
	if uc.maxLoanDays > 0 && req.LoanDays > uc.maxLoanDays {
		return nil, loan.ErrInvalidLoanDays
	}

	var (
		newLoan   *loan.Loan
		bookTitle string
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// ========================================
		// 步骤1:锁定图书行(悲观锁,防止并发超借)
		// ========================================
		// LockByID执行:SELECT * FROM books WHERE id = ? FOR UPDATE
		// 其他借出/归还事务必须等待当前事务COMMIT或ROLLBACK
		b, err := uc.bookRepo.LockByID(txCtx, req.BookID)
		if err != nil {
			return err
		}
		bookTitle = b.Title

		// ========================================
		// 步骤2:业务规则检查(必须在锁内)
		// ========================================
		// 检查可借数
		if !b.IsAvailable() {
			return book.ErrNoAvailableCopies
		}

		// 检查重复借阅:同一人同一本书最多一条在借记录
		// 教学要点:图书行已锁定,这个检查不会与并发借出竞争
		hasOpen, err := uc.loanRepo.HasOpenLoan(txCtx, req.UserID, req.BookID)
		if err != nil {
			return err
		}
		if hasOpen {
			return loan.ErrDuplicateLoan
		}

		// ========================================
		// 步骤3:创建借阅记录
		// ========================================
		l, err := loan.NewLoan(req.BookID, req.UserID, time.Now(), req.LoanDays)
		if err != nil {
			return err
		}
		if err := uc.loanRepo.Create(txCtx, l); err != nil {
			return err
		}

		// ========================================
		// 步骤4:原子扣减可借数
		// ========================================
		// UPDATE的守卫条件(available_copies + delta >= 0)是第二道防线,
		// 即便锁内检查被绕过,台账也不会变负
		if err := uc.bookRepo.UpdateAvailable(txCtx, req.BookID, -1); err != nil {
			return err
		}

		newLoan = l
		return nil // 事务自动COMMIT
	})

	if err != nil {
		metrics.LoansFailedTotal.WithLabelValues(failReason(err)).Inc()
		return nil, err
	}

	// 事务已提交:失效缓存、发布事件、记录指标
	// 这些都是尽力而为的旁路操作,失败不影响借书结果
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, req.BookID)
	}
	uc.publishEvent(ctx, EventLoanIssued, newLoan)
	metrics.LoansIssuedTotal.Inc()
	metrics.LoansOpen.Inc()
	metrics.LoanIssueDuration.Observe(time.Since(timer).Seconds())

	return &BorrowBookResponse{
		LoanID:    newLoan.ID,
		LoanUID:   newLoan.LoanUID,
		BookID:    newLoan.BookID,
		BookTitle: bookTitle,
		LoanDate:  newLoan.LoanDate.Format("2006-01-02"),
		DueDate:   newLoan.DueDate.Format("2006-01-02"),
	}, nil
}

// publishEvent 发布借阅事件(发布失败只记日志)
func (uc *BorrowBookUseCase) publishEvent(ctx context.Context, routingKey string, l *loan.Loan) {
	if uc.publisher == nil {
		return
	}
	event := LoanEvent{
		LoanUID:   l.LoanUID,
		BookID:    l.BookID,
		UserID:    l.UserID,
		DueDate:   l.DueDate.Format(time.RFC3339),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err := uc.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("发布事件失败 [%s]: %v", routingKey, err)
	}
}

// failReason 借书失败原因(指标标签,低基数)
func failReason(err error) string {
	switch {
	case err == book.ErrNoAvailableCopies:
		return "unavailable"
	case err == loan.ErrDuplicateLoan:
		return "duplicate"
	case err == book.ErrBookNotFound:
		return "not_found"
	default:
		return "other"
	}
}
