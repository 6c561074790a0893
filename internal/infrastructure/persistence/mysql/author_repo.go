package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/elibrary/internal/domain/author"
	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// authorRepository 作者仓储实现(MySQL)
type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository 创建作者仓储
func NewAuthorRepository(db *gorm.DB) author.Repository {
	return &authorRepository{db: db}
}

// Create 创建作者
func (r *authorRepository) Create(ctx context.Context, a *author.Author) error {
	model := &AuthorModel{
		FullName:  a.FullName,
		Biography: a.Biography,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return author.ErrAuthorNameDuplicate
		}
		return apperrors.Wrap(err, "创建作者失败")
	}

	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	a.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找作者
func (r *authorRepository) FindByID(ctx context.Context, id uint) (*author.Author, error) {
	var model AuthorModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, author.ErrAuthorNotFound
		}
		return nil, apperrors.Wrap(err, "查询作者失败")
	}
	return toAuthorEntity(&model), nil
}

// Update 更新作者信息
func (r *authorRepository) Update(ctx context.Context, a *author.Author) error {
	model := &AuthorModel{
		ID:        a.ID,
		FullName:  a.FullName,
		Biography: a.Biography,
		CreatedAt: a.CreatedAt,
	}

	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		if isDuplicateError(err) {
			return author.ErrAuthorNameDuplicate
		}
		return apperrors.Wrap(err, "更新作者失败")
	}

	a.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除作者(软删除),关联行一并清理
func (r *authorRepository) Delete(ctx context.Context, id uint) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&AuthorModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "删除作者失败")
		}
		if result.RowsAffected == 0 {
			return author.ErrAuthorNotFound
		}
		if err := tx.Where("author_id = ?", id).Delete(&BookAuthorModel{}).Error; err != nil {
			return apperrors.Wrap(err, "清理图书作者关联失败")
		}
		return nil
	})
}

// List 作者列表,支持按姓名模糊搜索
func (r *authorRepository) List(ctx context.Context, keyword string) ([]*author.Author, error) {
	var models []AuthorModel
	query := getDB(ctx, r.db).Model(&AuthorModel{})
	if keyword != "" {
		query = query.Where("full_name LIKE ?", "%"+keyword+"%")
	}
	if err := query.Order("full_name ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询作者列表失败")
	}

	authors := make([]*author.Author, len(models))
	for i := range models {
		authors[i] = toAuthorEntity(&models[i])
	}
	return authors, nil
}

func toAuthorEntity(model *AuthorModel) *author.Author {
	return &author.Author{
		ID:        model.ID,
		FullName:  model.FullName,
		Biography: model.Biography,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
