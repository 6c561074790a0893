package reservation

import (
	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// 预约领域错误定义
var (
	// ErrReservationNotFound 预约记录不存在
	ErrReservationNotFound = apperrors.New(apperrors.ErrCodeReservationNotFound, "预约记录不存在")

	// ErrDuplicateReservation 已存在生效中的预约
	ErrDuplicateReservation = apperrors.New(apperrors.ErrCodeDuplicateReservation, "您已预约该图书")

	// ErrInvalidReserveDays 预约天数不合法
	ErrInvalidReserveDays = apperrors.New(apperrors.ErrCodeInvalidParams, "预约天数必须大于0")

	// ErrNotReservationOwner 操作他人的预约记录
	ErrNotReservationOwner = apperrors.New(apperrors.ErrCodeForbidden, "只能操作自己的预约记录")
)
