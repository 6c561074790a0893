package loan

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/elibrary/internal/domain/book"
	"github.com/xiebiao/elibrary/internal/domain/loan"
	"github.com/xiebiao/elibrary/pkg/metrics"
)

// ReturnBookUseCase 还书用例
// 教学要点:归还是借出的镜像操作
// 1. 同样要锁定图书行,与并发借出串行化
// 2. 重复归还返回业务冲突,不改台账(幂等性边界)
// 3. 可借数+1有守卫条件兜底,不会超过馆藏总数
type ReturnBookUseCase struct {
	loanRepo  loan.Repository
	bookRepo  book.Repository
	txManager TxManager
	publisher EventPublisher
	cache     AvailabilityInvalidator
}

// NewReturnBookUseCase 创建还书用例
func NewReturnBookUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	txManager TxManager,
	publisher EventPublisher,
	cache AvailabilityInvalidator,
) *ReturnBookUseCase {
	return &ReturnBookUseCase{
		loanRepo:  loanRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		publisher: publisher,
		cache:     cache,
	}
}

// ReturnBookRequest 还书请求DTO
// AsStaff为true时跳过归属检查(馆员代还)
type ReturnBookRequest struct {
	LoanID  uint
	UserID  uint
	AsStaff bool
}

// ReturnBookResponse 还书响应DTO
type ReturnBookResponse struct {
	LoanID      uint   `json:"loan_id"`
	BookID      uint   `json:"book_id"`
	ReturnDate  string `json:"return_date"`
	WasOverdue  bool   `json:"was_overdue"`
	OverdueDays int    `json:"overdue_days,omitempty"`
}

// Execute 执行还书用例
func (uc *ReturnBookUseCase) Execute(ctx context.Context, req ReturnBookRequest) (*ReturnBookResponse, error) {
	var (
		returned    *loan.Loan
		wasOverdue  bool
		overdueDays int
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 查找借阅记录
		l, err := uc.loanRepo.FindByID(txCtx, req.LoanID)
		if err != nil {
			return err
		}

		// 2. 归属检查:只能还自己的书(馆员除外)
		if !req.AsStaff && !l.IsOwnedBy(req.UserID) {
			return loan.ErrNotLoanOwner
		}

		// 3. 锁定图书行,与并发借出串行化
		// 教学要点:先锁图书再改借阅记录,与借出用例的加锁顺序
		// 一致(都是先books后loans),避免交叉死锁
		if _, err := uc.bookRepo.LockByID(txCtx, l.BookID); err != nil {
			return err
		}

		// 4. 标记归还(重复归还在这里被拒绝)
		wasOverdue = l.IsOverdue()
		if wasOverdue {
			overdueDays = l.OverdueDays()
		}
		if err := l.MarkReturned(time.Now()); err != nil {
			return err
		}
		if err := uc.loanRepo.Update(txCtx, l); err != nil {
			return err
		}

		// 5. 可借数+1(守卫条件保证不超过馆藏总数)
		if err := uc.bookRepo.UpdateAvailable(txCtx, l.BookID, +1); err != nil {
			return err
		}

		returned = l
		return nil
	})

	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		uc.cache.Invalidate(ctx, returned.BookID)
	}
	uc.publishEvent(ctx, EventLoanReturned, returned)
	metrics.LoansReturnedTotal.Inc()
	metrics.LoansOpen.Dec()

	resp := &ReturnBookResponse{
		LoanID:     returned.ID,
		BookID:     returned.BookID,
		ReturnDate: returned.ReturnDate.Format("2006-01-02"),
		WasOverdue: wasOverdue,
	}
	if wasOverdue {
		resp.OverdueDays = overdueDays
	}
	return resp, nil
}

func (uc *ReturnBookUseCase) publishEvent(ctx context.Context, routingKey string, l *loan.Loan) {
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
	// 发布失败不回滚业务,只能靠对账补偿
	if err := uc.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("发布事件失败 [%s]: %v", routingKey, err)
	}
}
