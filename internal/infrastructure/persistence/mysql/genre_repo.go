package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/elibrary/internal/domain/genre"
	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// genreRepository 分类仓储实现(MySQL)
type genreRepository struct {
	db *gorm.DB
}

// NewGenreRepository 创建分类仓储
func NewGenreRepository(db *gorm.DB) genre.Repository {
	return &genreRepository{db: db}
}

// Create 创建分类
func (r *genreRepository) Create(ctx context.Context, g *genre.Genre) error {
	model := &GenreModel{
		Name:        g.Name,
		Description: g.Description,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return genre.ErrGenreNameDuplicate
		}
		return apperrors.Wrap(err, "创建分类失败")
	}

	g.ID = model.ID
	g.CreatedAt = model.CreatedAt
	g.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找分类
func (r *genreRepository) FindByID(ctx context.Context, id uint) (*genre.Genre, error) {
	var model GenreModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, genre.ErrGenreNotFound
		}
		return nil, apperrors.Wrap(err, "查询分类失败")
	}
	return toGenreEntity(&model), nil
}

// Update 更新分类信息
func (r *genreRepository) Update(ctx context.Context, g *genre.Genre) error {
	model := &GenreModel{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
	}

	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		if isDuplicateError(err) {
			return genre.ErrGenreNameDuplicate
		}
		return apperrors.Wrap(err, "更新分类失败")
	}

	g.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除分类(软删除),关联行一并清理
func (r *genreRepository) Delete(ctx context.Context, id uint) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&GenreModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "删除分类失败")
		}
		if result.RowsAffected == 0 {
			return genre.ErrGenreNotFound
		}
		if err := tx.Where("genre_id = ?", id).Delete(&BookGenreModel{}).Error; err != nil {
			return apperrors.Wrap(err, "清理图书分类关联失败")
		}
		return nil
	})
}

// List 分类列表,支持按名称模糊搜索
func (r *genreRepository) List(ctx context.Context, keyword string) ([]*genre.Genre, error) {
	var models []GenreModel
	query := getDB(ctx, r.db).Model(&GenreModel{})
	if keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}
	if err := query.Order("name ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询分类列表失败")
	}

	genres := make([]*genre.Genre, len(models))
	for i := range models {
		genres[i] = toGenreEntity(&models[i])
	}
	return genres, nil
}

func toGenreEntity(model *GenreModel) *genre.Genre {
	return &genre.Genre{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
