package loan

import (
	"context"
)

// TxManager 事务管理器接口(消费方定义)
// 生产实现是mysql.TxManager,测试用假实现直接调用fn
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 领域事件发布接口
// 生产实现是pkg/mq的Publisher,未配置MQ时注入nil
// 教学要点:事件在事务提交后发布(尽最大努力投递),
// 发布失败只记日志,绝不回滚已提交的业务事务
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// AvailabilityInvalidator 可借数缓存失效接口
// 生产实现是redis.AvailabilityCache,未配置缓存时注入nil
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, bookID uint)
}

// 借阅领域事件路由键
const (
	EventLoanIssued   = "loan.issued"
	EventLoanReturned = "loan.returned"
	EventLoanRenewed  = "loan.renewed"
)

// LoanEvent 借阅事件载荷
type LoanEvent struct {
	LoanUID   string `json:"loan_uid"`
	BookID    uint   `json:"book_id"`
	UserID    uint   `json:"user_id"`
	DueDate   string `json:"due_date"`
	Timestamp string `json:"timestamp"`
}
