// Package author 作者聚合:目录维度实体,唯一键为姓名
package author

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// Author 作者实体
type Author struct {
	ID        uint
	FullName  string
	Biography string
	BookIDs   []uint // 该作者名下的图书(多对多,只读快照)
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	// ErrAuthorNotFound 作者不存在
	ErrAuthorNotFound = apperrors.New(apperrors.ErrCodeAuthorNotFound, "作者不存在")

	// ErrAuthorNameDuplicate 作者姓名已存在
	ErrAuthorNameDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "作者已存在")

	// ErrInvalidAuthorName 作者姓名不合法
	ErrInvalidAuthorName = apperrors.New(apperrors.ErrCodeInvalidParams, "作者姓名不能为空")
)

// Repository 作者仓储接口
type Repository interface {
	Create(ctx context.Context, author *Author) error
	FindByID(ctx context.Context, id uint) (*Author, error)
	Update(ctx context.Context, author *Author) error
	Delete(ctx context.Context, id uint) error

	// List 按姓名排序返回全部作者,keyword非空时搜索姓名/简介
	List(ctx context.Context, keyword string) ([]*Author, error)
}

// Service 作者领域服务
type Service interface {
	AddAuthor(ctx context.Context, fullName, biography string) (*Author, error)
	GetAuthorByID(ctx context.Context, id uint) (*Author, error)
	UpdateAuthor(ctx context.Context, id uint, fullName, biography string) error
	DeleteAuthor(ctx context.Context, id uint) error
	ListAuthors(ctx context.Context, keyword string) ([]*Author, error)
}

type service struct {
	repo Repository
}

// NewService 创建作者领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// AddAuthor 新增作者
// 业务规则: 姓名非空且唯一(唯一性由数据库UNIQUE索引兜底)
func (s *service) AddAuthor(ctx context.Context, fullName, biography string) (*Author, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, ErrInvalidAuthorName
	}

	now := time.Now()
	a := &Author{
		FullName:  fullName,
		Biography: biography,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) GetAuthorByID(ctx context.Context, id uint) (*Author, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateAuthor 更新作者信息
func (s *service) UpdateAuthor(ctx context.Context, id uint, fullName, biography string) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if fullName = strings.TrimSpace(fullName); fullName != "" {
		a.FullName = fullName
	}
	if biography != "" {
		a.Biography = biography
	}
	a.UpdatedAt = time.Now()

	return s.repo.Update(ctx, a)
}

func (s *service) DeleteAuthor(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) ListAuthors(ctx context.Context, keyword string) ([]*Author, error) {
	return s.repo.List(ctx, keyword)
}
