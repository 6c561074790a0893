package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/elibrary/internal/domain/reservation"
	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// reservationRepository 预约仓储实现(MySQL)
type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建预约仓储
func NewReservationRepository(db *gorm.DB) reservation.Repository {
	return &reservationRepository{db: db}
}

// Create 创建预约记录
func (r *reservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	model := &ReservationModel{
		ReservationUID:  res.ReservationUID,
		BookID:          res.BookID,
		UserID:          res.UserID,
		ReservationDate: res.ReservationDate,
		ExpiryDate:      res.ExpiryDate,
		IsActive:        res.IsActive,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return reservation.ErrDuplicateReservation
		}
		return apperrors.Wrap(err, "创建预约记录失败")
	}

	res.ID = model.ID
	res.CreatedAt = model.CreatedAt
	res.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找预约记录
func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*reservation.Reservation, error) {
	var row reservationRow
	err := r.joinBooks(getDB(ctx, r.db)).Where("reservations.id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, apperrors.Wrap(err, "查询预约记录失败")
	}
	return row.toEntity(), nil
}

// Update 更新预约记录(置失效)
func (r *reservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	result := getDB(ctx, r.db).Model(&ReservationModel{}).
		Where("id = ?", res.ID).
		Updates(map[string]interface{}{
			"is_active":   res.IsActive,
			"expiry_date": res.ExpiryDate,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新预约记录失败")
	}
	if result.RowsAffected == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// HasActive 用户是否已有该图书的生效预约
// 预约事务内调用,前置的LockByID已串行化同一本书的并发预约
func (r *reservationRepository) HasActive(ctx context.Context, userID, bookID uint) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&ReservationModel{}).
		Where("user_id = ? AND book_id = ? AND is_active = ?", userID, bookID, true).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询生效预约失败")
	}
	return count > 0, nil
}

// ListActive 生效中的预约,userID=0表示不过滤用户,按失效日期升序
func (r *reservationRepository) ListActive(ctx context.Context, userID uint) ([]*reservation.Reservation, error) {
	query := r.joinBooks(getDB(ctx, r.db)).Where("reservations.is_active = ?", true)
	if userID > 0 {
		query = query.Where("reservations.user_id = ?", userID)
	}
	return r.scan(query.Order("reservations.expiry_date ASC"))
}

// ListByUser 用户全部预约记录,按预约日期降序
func (r *reservationRepository) ListByUser(ctx context.Context, userID uint) ([]*reservation.Reservation, error) {
	query := r.joinBooks(getDB(ctx, r.db)).
		Where("reservations.user_id = ?", userID).
		Order("reservations.reservation_date DESC, reservations.id DESC")
	return r.scan(query)
}

// reservationRow 预约记录+图书标题的查询投影
type reservationRow struct {
	ReservationModel
	BookTitle string
}

func (row *reservationRow) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		ID:              row.ID,
		ReservationUID:  row.ReservationUID,
		BookID:          row.BookID,
		UserID:          row.UserID,
		ReservationDate: row.ReservationDate,
		ExpiryDate:      row.ExpiryDate,
		IsActive:        row.IsActive,
		BookTitle:       row.BookTitle,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func (r *reservationRepository) joinBooks(db *gorm.DB) *gorm.DB {
	return db.Model(&ReservationModel{}).
		Select("reservations.*, books.title AS book_title").
		Joins("LEFT JOIN books ON books.id = reservations.book_id")
}

func (r *reservationRepository) scan(query *gorm.DB) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询预约列表失败")
	}
	reservations := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		reservations[i] = rows[i].toEntity()
	}
	return reservations, nil
}
