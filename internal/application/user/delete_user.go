package user

import (
	"context"

	"github.com/xiebiao/elibrary/internal/domain/loan"
	"github.com/xiebiao/elibrary/internal/domain/user"
)

// TxManager 事务管理器接口(消费方定义)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DeleteUserUseCase 删除用户用例
// 设计说明:
// 1. 删除守卫:用户还有在借记录时拒绝删除
//    (先还书再销户,避免台账上的副本失去归属)
// 2. 检查与删除放在同一事务,防止检查后又借书的竞争窗口
// 3. 预约不阻止删除:生效预约随用户一起作废即可,不占副本
type DeleteUserUseCase struct {
	userService user.Service
	loanRepo    loan.Repository
	txManager   TxManager
}

// NewDeleteUserUseCase 创建删除用户用例
func NewDeleteUserUseCase(
	userService user.Service,
	loanRepo loan.Repository,
	txManager TxManager,
) *DeleteUserUseCase {
	return &DeleteUserUseCase{
		userService: userService,
		loanRepo:    loanRepo,
		txManager:   txManager,
	}
}

// Execute 执行删除用户
func (uc *DeleteUserUseCase) Execute(ctx context.Context, userID uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 在借守卫检查
		open, err := uc.loanRepo.CountOpenByUser(txCtx, userID)
		if err != nil {
			return err
		}
		if open > 0 {
			return user.ErrUserHasOpenLoans
		}

		// 2. 删除用户(软删除,连同角色关联)
		return uc.userService.DeleteUser(txCtx, userID)
	})
}
