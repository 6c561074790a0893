package loan

import (
	"errors"

	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// 借阅领域业务错误
// 说明: 借阅失败是合法的业务结果,同步返回调用方,不做自动重试
var (
	// ErrLoanNotFound 借阅记录不存在
	ErrLoanNotFound = apperrors.New(apperrors.ErrCodeLoanNotFound, "借阅记录不存在")

	// ErrDuplicateLoan 用户已持有该图书的在借记录
	ErrDuplicateLoan = apperrors.New(apperrors.ErrCodeDuplicateLoan, "您已借阅该图书且尚未归还")

	// ErrAlreadyReturned 重复归还/续借已归还的记录
	ErrAlreadyReturned = apperrors.New(apperrors.ErrCodeAlreadyReturned, "该借阅记录已归还")

	// ErrNotLoanOwner 操作他人的借阅记录
	ErrNotLoanOwner = apperrors.New(apperrors.ErrCodeForbidden, "只能操作自己的借阅记录")

	// ErrInvalidLoanDays 借期/续借天数不合法
	ErrInvalidLoanDays = apperrors.New(apperrors.ErrCodeInvalidParams, "借阅天数必须大于0")

	// ErrRenewLimitExceeded 超过最大续借次数
	ErrRenewLimitExceeded = apperrors.New(apperrors.ErrCodeRenewLimitExceeded, "已达到最大续借次数")
)

// 构造期不变量错误
// 与业务错误区分: 触发这些错误说明调用方代码有bug,
// 不应转换为业务错误码返回给客户端
var (
	// ErrLoanDateInFuture 借出日期在未来
	ErrLoanDateInFuture = errors.New("loan: 借出日期不能在未来")

	// ErrReturnBeforeLoan 归还时间不晚于借出时间
	ErrReturnBeforeLoan = errors.New("loan: 归还时间必须晚于借出时间")
)
