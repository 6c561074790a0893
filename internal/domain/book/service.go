package book

import (
	"context"
	"regexp"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 封装书目CRUD的业务规则校验(ISBN格式、唯一性、删除守卫)
// 2. 台账流转(借出扣减/归还增加)不在这里,由借阅用例在事务内编排
type Service interface {
	// AddBook 新增图书
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字)
	// - 副本数必须>=0
	// - ISBN不能重复
	AddBook(ctx context.Context, isbn, title, publisher string, year, pages int, language, description string, totalCopies int, authorIDs, genreIDs []uint) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// GetBookByISBN 根据ISBN获取图书
	GetBookByISBN(ctx context.Context, isbn string) (*Book, error)

	// UpdateBook 更新书目信息与馆藏总数
	// 业务规则: 总数不能低于在外借数量;ISBN不可修改
	UpdateBook(ctx context.Context, id uint, title, publisher string, year, pages int, language, description string, totalCopies int, authorIDs, genreIDs []uint) error

	// DeleteBook 删除图书
	// 业务规则: 有副本在外借时拒绝删除(历史借阅记录不受影响)
	DeleteBook(ctx context.Context, id uint) error

	// ListBooks 分页查询图书列表
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// IsAvailable 查询是否有可借副本
	IsAvailable(ctx context.Context, id uint) (bool, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// AddBook 新增图书
func (s *service) AddBook(ctx context.Context, isbn, title, publisher string, year, pages int, language, description string, totalCopies int, authorIDs, genreIDs []uint) (*Book, error) {
	// 1. ISBN格式校验
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}

	// 2. 检查ISBN是否已存在
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && err != ErrBookNotFound {
		return nil, err
	}

	// 3. 创建图书实体(副本数在工厂方法中校验)
	b, err := NewBook(isbn, title, publisher, year, pages, language, description, totalCopies)
	if err != nil {
		return nil, err
	}

	// 4. 持久化(连同作者/分类关联)
	if err := s.repo.Create(ctx, b, authorIDs, genreIDs); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// GetBookByISBN 根据ISBN获取图书
func (s *service) GetBookByISBN(ctx context.Context, isbn string) (*Book, error) {
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	return s.repo.FindByISBN(ctx, isbn)
}

// UpdateBook 更新书目信息与馆藏总数
func (s *service) UpdateBook(ctx context.Context, id uint, title, publisher string, year, pages int, language, description string, totalCopies int, authorIDs, genreIDs []uint) error {
	// 1. 查询图书
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	// 2. 更新书目字段
	b.UpdateInfo(title, publisher, year, pages, language, description)

	// 3. 调整馆藏总数(实体保证在外借副本不受影响)
	if totalCopies != b.TotalCopies {
		if err := b.AdjustTotalCopies(totalCopies); err != nil {
			return err
		}
	}

	// 4. 持久化
	return s.repo.Update(ctx, b, authorIDs, genreIDs)
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id uint) error {
	// 1. 查询图书
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	// 2. 删除守卫: 有副本在外借时拒绝
	if b.CopiesOnLoan() > 0 {
		return ErrBookCopiesOnLoan
	}

	// 3. 执行删除
	return s.repo.Delete(ctx, id)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// IsAvailable 查询是否有可借副本
func (s *service) IsAvailable(ctx context.Context, id uint) (bool, error) {
	return s.repo.IsAvailable(ctx, id)
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

// isValidISBN 校验ISBN格式
// 支持ISBN-10和ISBN-13,允许分隔符(978-7-111-54742-6)
// 简化实现:只检查位数(生产环境应校验校验位)
func isValidISBN(isbn string) bool {
	re := regexp.MustCompile(`[^0-9Xx]`)
	clean := re.ReplaceAllString(isbn, "")

	length := len(clean)
	return length == 10 || length == 13
}
