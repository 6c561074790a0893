package book

import (
	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrInvalidCopies 无效的副本数
	ErrInvalidCopies = apperrors.New(apperrors.ErrCodeInvalidParams, "副本数不能为负数")

	// ErrNoAvailableCopies 无可借副本
	ErrNoAvailableCopies = apperrors.New(apperrors.ErrCodeNoAvailableCopies, "该图书暂无可借副本")

	// ErrCopiesExceedTotal 可借数超过总数(台账不变量被破坏)
	ErrCopiesExceedTotal = apperrors.New(apperrors.ErrCodeCopiesExceedTotal, "可借副本数不能超过馆藏总数")

	// ErrBookCopiesOnLoan 仍有副本在外借
	ErrBookCopiesOnLoan = apperrors.New(apperrors.ErrCodeBookCopiesOnLoan, "仍有副本在外借中,无法执行此操作")
)
