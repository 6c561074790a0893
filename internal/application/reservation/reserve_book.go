package reservation

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/elibrary/internal/domain/book"
	"github.com/xiebiao/elibrary/internal/domain/reservation"
	"github.com/xiebiao/elibrary/pkg/metrics"
)

// TxManager 事务管理器接口(消费方定义)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// 预约领域事件路由键
const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent 预约事件载荷
type ReservationEvent struct {
	ReservationUID string `json:"reservation_uid"`
	BookID         uint   `json:"book_id"`
	UserID         uint   `json:"user_id"`
	ExpiryDate     string `json:"expiry_date"`
	Timestamp      string `json:"timestamp"`
}

// ReserveBookUseCase 预约用例
// 设计说明:
// 1. 预约不扣可借数:预约是排队意向,不是持有副本
//    (可借数只在借出/归还时变化,语义清晰且不会凭空蒸发副本)
// 2. 仍然锁图书行:同一人对同一本书的并发预约请求
//    被串行化后,第二个请求在重复检查处被拒绝
type ReserveBookUseCase struct {
	resRepo     reservation.Repository
	bookRepo    book.Repository
	txManager   TxManager
	publisher   EventPublisher
	reserveDays int
}

// NewReserveBookUseCase 创建预约用例
func NewReserveBookUseCase(
	resRepo reservation.Repository,
	bookRepo book.Repository,
	txManager TxManager,
	publisher EventPublisher,
	reserveDays int,
) *ReserveBookUseCase {
	return &ReserveBookUseCase{
		resRepo:     resRepo,
		bookRepo:    bookRepo,
		txManager:   txManager,
		publisher:   publisher,
		reserveDays: reserveDays,
	}
}

// ReserveBookRequest 预约请求DTO
type ReserveBookRequest struct {
	UserID uint
	BookID uint
}

// ReserveBookResponse 预约响应DTO
type ReserveBookResponse struct {
	ReservationID  uint   `json:"reservation_id"`
	ReservationUID string `json:"reservation_uid"`
	BookID         uint   `json:"book_id"`
	BookTitle      string `json:"book_title"`
	ExpiryDate     string `json:"expiry_date"`
}

// Execute 执行预约用例
func (uc *ReserveBookUseCase) Execute(ctx context.Context, req ReserveBookRequest) (*ReserveBookResponse, error) {
	var (
		created   *reservation.Reservation
		bookTitle string
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定图书行:确认图书存在,并串行化同一本书的并发预约
		b, err := uc.bookRepo.LockByID(txCtx, req.BookID)
		if err != nil {
			return err
		}
		bookTitle = b.Title

		// 2. 可借性检查:只能预约当前有可借副本的图书
		// 注意这只是创建时刻的快照检查,预约本身不占用副本
		if !b.IsAvailable() {
			return book.ErrNoAvailableCopies
		}

		// 3. 重复预约检查:同一人同一本书最多一条生效预约
		hasActive, err := uc.resRepo.HasActive(txCtx, req.UserID, req.BookID)
		if err != nil {
			return err
		}
		if hasActive {
			return reservation.ErrDuplicateReservation
		}

		// 4. 创建预约记录(注意:不扣可借数)
		r, err := reservation.NewReservation(req.BookID, req.UserID, uc.reserveDays)
		if err != nil {
			return err
		}
		if err := uc.resRepo.Create(txCtx, r); err != nil {
			return err
		}

		created = r
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.publishEvent(ctx, EventReservationCreated, created)
	metrics.ReservationsCreatedTotal.Inc()

	return &ReserveBookResponse{
		ReservationID:  created.ID,
		ReservationUID: created.ReservationUID,
		BookID:         created.BookID,
		BookTitle:      bookTitle,
		ExpiryDate:     created.ExpiryDate.Format("2006-01-02"),
	}, nil
}

func (uc *ReserveBookUseCase) publishEvent(ctx context.Context, routingKey string, r *reservation.Reservation) {
	if uc.publisher == nil {
		return
	}
	event := ReservationEvent{
		ReservationUID: r.ReservationUID,
		BookID:         r.BookID,
		UserID:         r.UserID,
		ExpiryDate:     r.ExpiryDate.Format(time.RFC3339),
		Timestamp:      time.Now().Format(time.RFC3339),
	}
	if err := uc.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("发布事件失败 [%s]: %v", routingKey, err)
	}
}
