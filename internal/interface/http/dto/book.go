package dto

import (
	"github.com/xiebiao/elibrary/internal/domain/book"
)

// CreateBookRequest 创建图书请求
type CreateBookRequest struct {
	ISBN        string `json:"isbn" binding:"required" example:"9787111213826"`
	Title       string `json:"title" binding:"required" example:"深入理解计算机系统"`
	Publisher   string `json:"publisher" example:"机械工业出版社"`
	Year        int    `json:"year" example:"2016"`
	Pages       int    `json:"pages" example:"737"`
	Language    string `json:"language" example:"zh"`
	Description string `json:"description"`
	TotalCopies int    `json:"total_copies" binding:"required,min=1" example:"5"`
	AuthorIDs   []uint `json:"author_ids"`
	GenreIDs    []uint `json:"genre_ids"`
}

// UpdateBookRequest 更新图书请求
// 零值字段不更新;TotalCopies变化时按"在借数不变"调整可借数
type UpdateBookRequest struct {
	Title       string `json:"title"`
	Publisher   string `json:"publisher"`
	Year        int    `json:"year"`
	Pages       int    `json:"pages"`
	Language    string `json:"language"`
	Description string `json:"description"`
	TotalCopies int    `json:"total_copies"`
	AuthorIDs   []uint `json:"author_ids"`
	GenreIDs    []uint `json:"genre_ids"`
}

// BookResponse 图书详情响应
type BookResponse struct {
	ID              uint              `json:"id"`
	ISBN            string            `json:"isbn"`
	Title           string            `json:"title"`
	Publisher       string            `json:"publisher"`
	Year            int               `json:"year"`
	Pages           int               `json:"pages"`
	Language        string            `json:"language"`
	Description     string            `json:"description"`
	TotalCopies     int               `json:"total_copies"`
	AvailableCopies int               `json:"available_copies"`
	CopiesOnLoan    int               `json:"copies_on_loan"`
	Authors         []book.AuthorInfo `json:"authors"`
	Genres          []book.GenreInfo  `json:"genres"`
	CreatedAt       string            `json:"created_at"`
}

// ToBookResponse 领域实体 → HTTP响应DTO
func ToBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
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
		CopiesOnLoan:    b.CopiesOnLoan(),
		Authors:         b.Authors,
		Genres:          b.Genres,
		CreatedAt:       b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// AuthorRequest 创建/更新作者请求
type AuthorRequest struct {
	FullName  string `json:"full_name" binding:"required" example:"Randal E. Bryant"`
	Biography string `json:"biography"`
}

// GenreRequest 创建/更新分类请求
type GenreRequest struct {
	Name        string `json:"name" binding:"required" example:"计算机科学"`
	Description string `json:"description"`
}
