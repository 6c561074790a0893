package loan

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/elibrary/internal/domain/loan"
)

// RenewLoanUseCase 续借用例
// 设计说明:
// 1. 续借不改台账(书还在借阅人手里),只延长应还日期
// 2. 不需要锁图书行,只在事务里更新借阅记录
// 3. 续借天数与次数上限来自配置
type RenewLoanUseCase struct {
	loanRepo    loan.Repository
	txManager   TxManager
	publisher   EventPublisher
	maxRenewals int
	maxLoanDays int
}

// NewRenewLoanUseCase 创建续借用例
func NewRenewLoanUseCase(
	loanRepo loan.Repository,
	txManager TxManager,
	publisher EventPublisher,
	maxRenewals int,
	maxLoanDays int,
) *RenewLoanUseCase {
	return &RenewLoanUseCase{
		loanRepo:    loanRepo,
		txManager:   txManager,
		publisher:   publisher,
		maxRenewals: maxRenewals,
		maxLoanDays: maxLoanDays,
	}
}

// RenewLoanRequest 续借请求DTO
type RenewLoanRequest struct {
	LoanID         uint
	UserID         uint
	AdditionalDays int
	AsStaff        bool
}

// RenewLoanResponse 续借响应DTO
type RenewLoanResponse struct {
	LoanID   uint   `json:"loan_id"`
	DueDate  string `json:"due_date"`
	Renewals int    `json:"renewals"`
}

// Execute 执行续借用例
func (uc *RenewLoanUseCase) Execute(ctx context.Context, req RenewLoanRequest) (*RenewLoanResponse, error) {
	if req.AdditionalDays <= 0 {
		return nil, loan.ErrInvalidLoanDays
	}
	if uc.maxLoanDays > 0 && req.AdditionalDays > uc.maxLoanDays {
		return nil, loan.ErrInvalidLoanDays
	}

	var renewed *loan.Loan
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		l, err := uc.loanRepo.FindByID(txCtx, req.LoanID)
		if err != nil {
			return err
		}

		if !req.AsStaff && !l.IsOwnedBy(req.UserID) {
			return loan.ErrNotLoanOwner
		}

		// 已归还/超次数的检查在实体方法内完成
		if err := l.Renew(req.AdditionalDays, uc.maxRenewals); err != nil {
			return err
		}
		if err := uc.loanRepo.Update(txCtx, l); err != nil {
			return err
		}

		renewed = l
		return nil
	})

	if err != nil {
		return nil, err
	}

	if uc.publisher != nil {
		event := LoanEvent{
			LoanUID:   renewed.LoanUID,
			BookID:    renewed.BookID,
			UserID:    renewed.UserID,
			DueDate:   renewed.DueDate.Format(time.RFC3339),
			Timestamp: time.Now().Format(time.RFC3339),
		}
		if err := uc.publisher.Publish(ctx, EventLoanRenewed, event); err != nil {
			log.Printf("发布事件失败 [%s]: %v", EventLoanRenewed, err)
		}
	}

	return &RenewLoanResponse{
		LoanID:   renewed.ID,
		DueDate:  renewed.DueDate.Format("2006-01-02"),
		Renewals: renewed.Renewals,
	}, nil
}
