package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/elibrary/internal/domain/book"
	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
// 4. 作者/分类关联表由仓储内部维护,领域层只看到ID列表和快照
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书并建立作者/分类关联
// 图书行与关联行在同一事务内写入,保证不出现半成品记录
func (r *bookRepository) Create(ctx context.Context, b *book.Book, authorIDs, genreIDs []uint) error {
	model := &BookModel{
		ISBN:            b.ISBN,
		Title:           b.Title,
		Publisher:       b.Publisher,
		Year:            b.Year,
		Pages:           b.Pages,
		Language:        b.Language,
		Description:     b.Description,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
	}

	err := getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		return replaceBookLinks(tx, model.ID, authorIDs, genreIDs)
	})
	if err != nil {
		// 检查是否为ISBN重复错误
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找图书(含作者/分类快照)
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	db := getDB(ctx, r.db)
	err := db.First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	entity := toBookEntity(&model)
	if err := r.loadLinks(db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	db := getDB(ctx, r.db)
	err := db.Where("isbn = ?", isbn).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	entity := toBookEntity(&model)
	if err := r.loadLinks(db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// Update 更新图书并重建作者/分类关联
func (r *bookRepository) Update(ctx context.Context, b *book.Book, authorIDs, genreIDs []uint) error {
	model := &BookModel{
		ID:              b.ID,
		ISBN:            b.ISBN,
		Title:           b.Title,
		Publisher:       b.Publisher,
		Year:            b.Year,
		Pages:           b.Pages,
		Language:        b.Language,
		Description:     b.Description,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		CreatedAt:       b.CreatedAt,
	}

	err := getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		// 使用Save更新所有字段
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		// nil表示不改关联,空切片表示清空
		if authorIDs == nil && genreIDs == nil {
			return nil
		}
		return replaceBookLinks(tx, model.ID, authorIDs, genreIDs)
	})
	if err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "更新图书失败")
	}

	b.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除图书(软删除)
// 关联行一并清理;外借守卫由上层用例负责
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&BookModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "删除图书失败")
		}
		if result.RowsAffected == 0 {
			return book.ErrBookNotFound
		}
		if err := tx.Where("book_id = ?", id).Delete(&BookAuthorModel{}).Error; err != nil {
			return apperrors.Wrap(err, "清理图书作者关联失败")
		}
		if err := tx.Where("book_id = ?", id).Delete(&BookGenreModel{}).Error; err != nil {
			return apperrors.Wrap(err, "清理图书分类关联失败")
		}
		return nil
	})
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var models []BookModel
	var total int64

	db := getDB(ctx, r.db)
	query := db.Model(&BookModel{})

	// 关键词搜索(标题、ISBN、出版社、作者名)
	// 作者名通过EXISTS子查询匹配,避免JOIN导致的行重复
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where(
			"title LIKE ? OR isbn LIKE ? OR publisher LIKE ? OR EXISTS ("+
				"SELECT 1 FROM book_authors ba JOIN authors a ON a.id = ba.author_id "+
				"WHERE ba.book_id = books.id AND a.full_name LIKE ?)",
			keyword, keyword, keyword, keyword,
		)
	}

	// 按分类过滤
	if params.GenreID > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM book_genres bg WHERE bg.book_id = books.id AND bg.genre_id = ?)",
			params.GenreID,
		)
	}

	// 查询总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	// 排序
	switch params.SortBy {
	case "title_asc":
		query = query.Order("title ASC")
	case "year_desc":
		query = query.Order("year DESC")
	case "created_at_desc":
		query = query.Order("created_at DESC")
	default:
		query = query.Order("created_at DESC") // 默认按创建时间降序
	}

	// 分页
	offset := (params.Page - 1) * params.PageSize
	query = query.Limit(params.PageSize).Offset(offset)

	// 查询数据
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	// 转换为领域实体并批量装载关联快照
	books := make([]*book.Book, len(models))
	for i, model := range models {
		books[i] = toBookEntity(&model)
		if err := r.loadLinks(db, books[i]); err != nil {
			return nil, 0, err
		}
	}

	return books, total, nil
}

// LockByID 悲观锁查询图书(用于借出/归还事务)
// 教学要点:必须使用getDB(ctx)从context获取事务DB,
// 否则SELECT FOR UPDATE不在事务内,锁立即释放,失去串行化意义
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	db := getDB(ctx, r.db)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}

	return toBookEntity(&model), nil
}

// UpdateAvailable 原子更新可借副本数
// UPDATE books SET available_copies = available_copies + delta
// WHERE id = ? AND available_copies + delta BETWEEN 0 AND total_copies
// 教学要点:
// 1. 守卫条件写在WHERE里,检查与更新是同一条语句,天然原子
// 2. RowsAffected=0时需要再查一次区分三种原因:
//    图书不存在 / 可借数不足 / 超过馆藏总数
func (r *bookRepository) UpdateAvailable(ctx context.Context, id uint, delta int) error {
	db := getDB(ctx, r.db)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("available_copies + ? >= 0", delta).
		Where("available_copies + ? <= total_copies", delta).
		Update("available_copies", gorm.Expr("available_copies + ?", delta))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新可借数失败")
	}

	if result.RowsAffected == 0 {
		// 可能是图书不存在,或者守卫条件不满足,再查一次确定原因
		var model BookModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
		if delta < 0 {
			return book.ErrNoAvailableCopies
		}
		return book.ErrCopiesExceedTotal
	}

	return nil
}

// IsAvailable 是否有可借副本(只读快照,不加锁)
func (r *bookRepository) IsAvailable(ctx context.Context, id uint) (bool, error) {
	var model BookModel
	err := getDB(ctx, r.db).Select("id", "available_copies").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, book.ErrBookNotFound
		}
		return false, apperrors.Wrap(err, "查询图书失败")
	}
	return model.AvailableCopies > 0, nil
}

// =========================================
// 辅助函数:模型转换与关联维护
// =========================================

// toBookEntity GORM模型 → 领域实体(不含关联快照)
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:              model.ID,
		ISBN:            model.ISBN,
		Title:           model.Title,
		Publisher:       model.Publisher,
		Year:            model.Year,
		Pages:           model.Pages,
		Language:        model.Language,
		Description:     model.Description,
		TotalCopies:     model.TotalCopies,
		AvailableCopies: model.AvailableCopies,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// loadLinks 装载作者/分类快照
func (r *bookRepository) loadLinks(db *gorm.DB, b *book.Book) error {
	var authors []book.AuthorInfo
	err := db.Table("authors").
		Select("authors.id", "authors.full_name").
		Joins("JOIN book_authors ON book_authors.author_id = authors.id").
		Where("book_authors.book_id = ?", b.ID).
		Order("authors.full_name ASC").
		Scan(&authors).Error
	if err != nil {
		return apperrors.Wrap(err, "查询图书作者失败")
	}
	b.Authors = authors

	var genres []book.GenreInfo
	err = db.Table("genres").
		Select("genres.id", "genres.name").
		Joins("JOIN book_genres ON book_genres.genre_id = genres.id").
		Where("book_genres.book_id = ?", b.ID).
		Order("genres.name ASC").
		Scan(&genres).Error
	if err != nil {
		return apperrors.Wrap(err, "查询图书分类失败")
	}
	b.Genres = genres
	return nil
}

// replaceBookLinks 重建图书的作者/分类关联(先删后插)
func replaceBookLinks(tx *gorm.DB, bookID uint, authorIDs, genreIDs []uint) error {
	if err := tx.Where("book_id = ?", bookID).Delete(&BookAuthorModel{}).Error; err != nil {
		return err
	}
	for _, aid := range authorIDs {
		if err := tx.Create(&BookAuthorModel{BookID: bookID, AuthorID: aid}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("book_id = ?", bookID).Delete(&BookGenreModel{}).Error; err != nil {
		return err
	}
	for _, gid := range genreIDs {
		if err := tx.Create(&BookGenreModel{BookID: bookID, GenreID: gid}).Error; err != nil {
			return err
		}
	}
	return nil
}
