package reservation

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/elibrary/internal/domain/reservation"
)

// CancelReservationUseCase 取消预约用例
// 设计说明:
// 1. 取消是幂等操作:预约已失效时再取消直接成功,不报错
//    (Active→Inactive是单向终态,重复取消无副作用)
// 2. 预约从不占副本,取消自然也不碰台账
type CancelReservationUseCase struct {
	resRepo   reservation.Repository
	txManager TxManager
	publisher EventPublisher
}

// NewCancelReservationUseCase 创建取消预约用例
func NewCancelReservationUseCase(
	resRepo reservation.Repository,
	txManager TxManager,
	publisher EventPublisher,
) *CancelReservationUseCase {
	return &CancelReservationUseCase{
		resRepo:   resRepo,
		txManager: txManager,
		publisher: publisher,
	}
}

// CancelReservationRequest 取消预约请求DTO
type CancelReservationRequest struct {
	ReservationID uint
	UserID        uint
	AsStaff       bool
}

// Execute 执行取消预约用例
func (uc *CancelReservationUseCase) Execute(ctx context.Context, req CancelReservationRequest) error {
	var (
		cancelled    *reservation.Reservation
		stateChanged bool
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		r, err := uc.resRepo.FindByID(txCtx, req.ReservationID)
		if err != nil {
			return err
		}

		// 归属检查:只能取消自己的预约(馆员除外)
		if !req.AsStaff && !r.IsOwnedBy(req.UserID) {
			return reservation.ErrNotReservationOwner
		}

		// 已失效:幂等返回成功,不再写库
		if !r.IsActive {
			return nil
		}

		r.Deactivate()
		if err := uc.resRepo.Update(txCtx, r); err != nil {
			return err
		}

		cancelled = r
		stateChanged = true
		return nil
	})

	if err != nil {
		return err
	}

	if stateChanged && uc.publisher != nil {
		event := ReservationEvent{
			ReservationUID: cancelled.ReservationUID,
			BookID:         cancelled.BookID,
			UserID:         cancelled.UserID,
			ExpiryDate:     cancelled.ExpiryDate.Format(time.RFC3339),
			Timestamp:      time.Now().Format(time.RFC3339),
		}
		if err := uc.publisher.Publish(ctx, EventReservationCancelled, event); err != nil {
			log.Printf("发布事件失败 [%s]: %v", EventReservationCancelled, err)
		}
	}

	return nil
}
