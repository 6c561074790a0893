package user

import (
	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// 用户领域错误定义
var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "用户不存在")

	// ErrEmailDuplicate 邮箱已被注册
	ErrEmailDuplicate = apperrors.New(apperrors.ErrCodeEmailDuplicate, "邮箱已被注册")

	// ErrRoleNotFound 角色不存在
	ErrRoleNotFound = apperrors.New(apperrors.ErrCodeRoleNotFound, "角色不存在")

	// ErrUserHasOpenLoans 用户存在未归还的借阅,拒绝删除
	// 借阅记录弱引用用户,删除不做级联,先还清再删
	ErrUserHasOpenLoans = apperrors.New(apperrors.ErrCodeUserHasOpenLoans, "该用户存在未归还的借阅,无法删除")
)
