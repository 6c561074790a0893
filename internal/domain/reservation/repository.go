package reservation

import (
	"context"
)

// Repository 预约仓储接口
type Repository interface {
	// Create 创建预约记录
	Create(ctx context.Context, r *Reservation) error

	// FindByID 根据ID查找预约记录
	FindByID(ctx context.Context, id uint) (*Reservation, error)

	// Update 更新预约记录(置失效)
	Update(ctx context.Context, r *Reservation) error

	// HasActive 用户是否已有该图书的生效预约
	// 预约事务内调用,用于重复预约检查
	HasActive(ctx context.Context, userID, bookID uint) (bool, error)

	// ListActive 生效中的预约,userID=0表示不过滤用户
	// 按失效日期升序(最先到期的排前面)
	ListActive(ctx context.Context, userID uint) ([]*Reservation, error)

	// ListByUser 用户全部预约记录,按预约日期降序(最近的排前面)
	ListByUser(ctx context.Context, userID uint) ([]*Reservation, error)
}

// Service 预约查询服务
// 预约创建/取消涉及可借性检查与事务,编排在application层用例中
type Service interface {
	// GetReservationByID 查询单条预约记录
	GetReservationByID(ctx context.Context, id uint) (*Reservation, error)

	// GetActiveReservations 生效中的预约(userID=0表示全部用户)
	GetActiveReservations(ctx context.Context, userID uint) ([]*Reservation, error)

	// GetUserReservations 用户全部预约记录
	GetUserReservations(ctx context.Context, userID uint) ([]*Reservation, error)
}

type service struct {
	repo Repository
}

// NewService 创建预约查询服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetReservationByID(ctx context.Context, id uint) (*Reservation, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetActiveReservations(ctx context.Context, userID uint) ([]*Reservation, error) {
	return s.repo.ListActive(ctx, userID)
}

func (s *service) GetUserReservations(ctx context.Context, userID uint) ([]*Reservation, error) {
	return s.repo.ListByUser(ctx, userID)
}
