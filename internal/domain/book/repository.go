package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
// 3. 台账相关方法(LockByID/UpdateAvailable)必须在事务内调用,
//    实现通过context获取事务句柄
type Repository interface {
	// Create 创建图书并建立作者/分类关联
	Create(ctx context.Context, book *Book, authorIDs, genreIDs []uint) error

	// FindByID 根据ID查找图书(含作者/分类快照)
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// Update 更新图书并按差集维护作者/分类关联
	Update(ctx context.Context, book *Book, authorIDs, genreIDs []uint) error

	// Delete 删除图书(调用方需先保证无副本在外借)
	Delete(ctx context.Context, id uint) error

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByID 悲观锁查询图书(SELECT FOR UPDATE)
	// 借出/归还事务中锁定台账行,防止并发检查-写入竞争
	LockByID(ctx context.Context, id uint) (*Book, error)

	// UpdateAvailable 原子更新可借副本数
	// delta为-1表示借出,+1表示归还
	// 内部以守卫条件保证 0 <= available_copies <= total_copies,
	// 越界时返回ErrNoAvailableCopies或ErrCopiesExceedTotal
	UpdateAvailable(ctx context.Context, id uint, delta int) error

	// IsAvailable 是否有可借副本
	IsAvailable(ctx context.Context, id uint) (bool, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索关键词(标题、ISBN、出版社、作者名)
	GenreID  uint   // 按分类过滤(0表示不过滤)
	SortBy   string // 排序字段(title_asc, year_desc, created_at_desc)
}
