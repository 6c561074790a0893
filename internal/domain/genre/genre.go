// Package genre 分类聚合:目录维度实体,唯一键为分类名
package genre

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// Genre 分类实体
type Genre struct {
	ID          uint
	Name        string
	Description string
	BookIDs     []uint // 该分类下的图书(多对多,只读快照)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	// ErrGenreNotFound 分类不存在
	ErrGenreNotFound = apperrors.New(apperrors.ErrCodeGenreNotFound, "分类不存在")

	// ErrGenreNameDuplicate 分类名已存在
	ErrGenreNameDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "分类已存在")

	// ErrInvalidGenreName 分类名不合法
	ErrInvalidGenreName = apperrors.New(apperrors.ErrCodeInvalidParams, "分类名不能为空")
)

// Repository 分类仓储接口
type Repository interface {
	Create(ctx context.Context, genre *Genre) error
	FindByID(ctx context.Context, id uint) (*Genre, error)
	Update(ctx context.Context, genre *Genre) error
	Delete(ctx context.Context, id uint) error

	// List 按名称排序返回全部分类,keyword非空时按名称搜索
	List(ctx context.Context, keyword string) ([]*Genre, error)
}

// Service 分类领域服务
type Service interface {
	AddGenre(ctx context.Context, name, description string) (*Genre, error)
	GetGenreByID(ctx context.Context, id uint) (*Genre, error)
	UpdateGenre(ctx context.Context, id uint, name, description string) error
	DeleteGenre(ctx context.Context, id uint) error
	ListGenres(ctx context.Context, keyword string) ([]*Genre, error)
}

type service struct {
	repo Repository
}

// NewService 创建分类领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// AddGenre 新增分类
func (s *service) AddGenre(ctx context.Context, name, description string) (*Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidGenreName
	}

	now := time.Now()
	g := &Genre{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *service) GetGenreByID(ctx context.Context, id uint) (*Genre, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateGenre 更新分类信息
func (s *service) UpdateGenre(ctx context.Context, id uint, name, description string) error {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if name = strings.TrimSpace(name); name != "" {
		g.Name = name
	}
	if description != "" {
		g.Description = description
	}
	g.UpdatedAt = time.Now()

	return s.repo.Update(ctx, g)
}

func (s *service) DeleteGenre(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) ListGenres(ctx context.Context, keyword string) ([]*Genre, error) {
	return s.repo.List(ctx, keyword)
}
