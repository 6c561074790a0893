package loan

import (
	"context"
	"time"
)

// Service 借阅查询服务
// 设计说明:
// 1. 这里只有只读投影:借出/归还/续借涉及台账扣减,
//    必须在事务内编排,放在application层用例中
// 2. 查询结果按仓储约定排序,不在内存二次排序
type Service interface {
	// GetLoanByID 查询单条借阅记录
	GetLoanByID(ctx context.Context, id uint) (*Loan, error)

	// GetActiveLoans 全部在借记录
	GetActiveLoans(ctx context.Context) ([]*Loan, error)

	// GetOverdueLoans 逾期记录
	GetOverdueLoans(ctx context.Context) ([]*Loan, error)

	// GetUserLoans 用户全部借阅历史(含已归还)
	GetUserLoans(ctx context.Context, userID uint) ([]*Loan, error)

	// GetUserCurrentLoans 用户当前在借记录
	GetUserCurrentLoans(ctx context.Context, userID uint) ([]*Loan, error)
}

type service struct {
	repo Repository
}

// NewService 创建借阅查询服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetLoanByID(ctx context.Context, id uint) (*Loan, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetActiveLoans(ctx context.Context) ([]*Loan, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) GetOverdueLoans(ctx context.Context) ([]*Loan, error) {
	return s.repo.ListOverdue(ctx, time.Now())
}

func (s *service) GetUserLoans(ctx context.Context, userID uint) ([]*Loan, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetUserCurrentLoans(ctx context.Context, userID uint) ([]*Loan, error) {
	return s.repo.ListOpenByUser(ctx, userID)
}
