package book

import (
	"context"

	"github.com/xiebiao/elibrary/internal/domain/book"
)

// AvailabilityCache 可借数缓存接口(消费方定义)
// 生产实现是redis.AvailabilityCache,未配置缓存时注入nil
type AvailabilityCache interface {
	Get(ctx context.Context, bookID uint) (int, bool)
	Set(ctx context.Context, bookID uint, available int)
}

// CheckAvailabilityUseCase 可借性查询用例
// 设计说明:
// 1. Cache-Aside读路径:缓存命中直接返回,未命中回源数据库并回填
// 2. 查询结果是时点快照:高并发下返回"可借"后仍可能借不到,
//    真正的判定在借出事务的锁内完成
type CheckAvailabilityUseCase struct {
	bookRepo book.Repository
	cache    AvailabilityCache
}

// NewCheckAvailabilityUseCase 创建可借性查询用例
func NewCheckAvailabilityUseCase(bookRepo book.Repository, cache AvailabilityCache) *CheckAvailabilityUseCase {
	return &CheckAvailabilityUseCase{
		bookRepo: bookRepo,
		cache:    cache,
	}
}

// CheckAvailabilityResponse 可借性查询响应DTO
type CheckAvailabilityResponse struct {
	BookID          uint `json:"book_id"`
	Available       bool `json:"available"`
	AvailableCopies int  `json:"available_copies"`
}

// Execute 执行可借性查询
func (uc *CheckAvailabilityUseCase) Execute(ctx context.Context, bookID uint) (*CheckAvailabilityResponse, error) {
	// 1. 先查缓存
	if uc.cache != nil {
		if avail, ok := uc.cache.Get(ctx, bookID); ok {
			return &CheckAvailabilityResponse{
				BookID:          bookID,
				Available:       avail > 0,
				AvailableCopies: avail,
			}, nil
		}
	}

	// 2. 回源数据库
	b, err := uc.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// 3. 回填缓存
	if uc.cache != nil {
		uc.cache.Set(ctx, bookID, b.AvailableCopies)
	}

	return &CheckAvailabilityResponse{
		BookID:          bookID,
		Available:       b.AvailableCopies > 0,
		AvailableCopies: b.AvailableCopies,
	}, nil
}
