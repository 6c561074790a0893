package reservation

import (
	"time"

	"github.com/google/uuid"
)

// Reservation 预约记录实体(聚合根)
// DDD设计说明:
// 1. 状态机只有一条转移: Active -> Inactive(终态)
//    取消、履约、过期都收敛到Inactive,记录不删除
// 2. 预约只在创建时检查可借性,不扣减台账
//    (与借出不同:预约不占用副本,存在超额预约的可能)
type Reservation struct {
	ID              uint
	ReservationUID  string // 业务唯一标识(UUID)
	BookID          uint
	UserID          uint
	ReservationDate time.Time // 预约日期
	ExpiryDate      time.Time // 预约失效日期
	IsActive        bool
	BookTitle       string // 展示快照,仓储查询时回填
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewReservation 创建预约(工厂方法)
// reserveDays为预约保留天数,须为正数(调用方先校验,这里防御)
func NewReservation(bookID, userID uint, reserveDays int) (*Reservation, error) {
	if reserveDays <= 0 {
		return nil, ErrInvalidReserveDays
	}

	now := time.Now()
	return &Reservation{
		ReservationUID:  uuid.NewString(),
		BookID:          bookID,
		UserID:          userID,
		ReservationDate: now,
		ExpiryDate:      now.AddDate(0, 0, reserveDays),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsExpired 是否已过失效日期(仍可能IsActive=true,过期不自动落库)
func (r *Reservation) IsExpired() bool {
	return time.Now().After(r.ExpiryDate)
}

// IsOwnedBy 预约是否属于指定用户
func (r *Reservation) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}

// Deactivate 置为失效(Active -> Inactive,终态)
// 取消与履约共用该转移;重复失效是幂等的空操作
func (r *Reservation) Deactivate() {
	if !r.IsActive {
		return
	}
	r.IsActive = false
	r.UpdatedAt = time.Now()
}
