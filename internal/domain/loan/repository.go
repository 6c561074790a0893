package loan

import (
	"context"
	"time"
)

// Repository 借阅仓储接口
// 设计说明:
// 1. Create/Update会在借出/归还事务内调用,实现需参与context事务
// 2. 查询方法是只读投影,允许弱一致读(展示用途容忍短暂过期)
type Repository interface {
	// Create 创建借阅记录
	Create(ctx context.Context, loan *Loan) error

	// FindByID 根据ID查找借阅记录
	FindByID(ctx context.Context, id uint) (*Loan, error)

	// Update 更新借阅记录(归还/续借)
	Update(ctx context.Context, loan *Loan) error

	// HasOpenLoan 用户是否持有该图书的在借记录
	// 借出事务内调用,用于重复借阅检查
	HasOpenLoan(ctx context.Context, userID, bookID uint) (bool, error)

	// CountOpenByUser 用户在借记录数(删除用户前的守卫检查)
	CountOpenByUser(ctx context.Context, userID uint) (int64, error)

	// ListActive 全部在借记录,按应还日期升序
	ListActive(ctx context.Context) ([]*Loan, error)

	// ListOverdue 逾期记录(在借且应还日期早于now),按应还日期升序
	ListOverdue(ctx context.Context, now time.Time) ([]*Loan, error)

	// ListByUser 用户全部借阅历史,按借出日期降序
	ListByUser(ctx context.Context, userID uint) ([]*Loan, error)

	// ListOpenByUser 用户当前在借记录,按应还日期升序
	ListOpenByUser(ctx context.Context, userID uint) ([]*Loan, error)
}
