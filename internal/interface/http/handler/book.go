package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/elibrary/internal/application/book"
	"github.com/xiebiao/elibrary/internal/domain/book"
	"github.com/xiebiao/elibrary/internal/interface/http/dto"
	"github.com/xiebiao/elibrary/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	bookService       book.Service
	listBooks         *appbook.ListBooksUseCase
	checkAvailability *appbook.CheckAvailabilityUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	bookService book.Service,
	listBooks *appbook.ListBooksUseCase,
	checkAvailability *appbook.CheckAvailabilityUseCase,
) *BookHandler {
	return &BookHandler{
		bookService:       bookService,
		listBooks:         listBooks,
		checkAvailability: checkAvailability,
	}
}

// CreateBook 创建图书
// @Summary      创建图书
// @Description  馆员录入新书,初始可借数等于馆藏总数
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	b, err := h.bookService.AddBook(c.Request.Context(),
		req.ISBN, req.Title, req.Publisher, req.Year, req.Pages,
		req.Language, req.Description, req.TotalCopies,
		req.AuthorIDs, req.GenreIDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponse(b))
}

// GetBook 查询图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	b, err := h.bookService.GetBookByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponse(b))
}

// GetBookByISBN 按ISBN查询图书
// @Summary      按ISBN查询图书
// @Description  ISBN精确匹配,适合扫码枪录入场景
// @Tags         图书
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/isbn/{isbn} [get]
func (h *BookHandler) GetBookByISBN(c *gin.Context) {
	b, err := h.bookService.GetBookByISBN(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponse(b))
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  支持分页、关键词搜索(标题/ISBN/出版社/作者名)、分类过滤
// @Tags         图书
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        keyword query string false "搜索关键词"
// @Param        genre_id query int false "分类ID"
// @Param        sort_by query string false "排序(title_asc/year_desc/created_at_desc)"
// @Success      200 {object} response.Response{data=appbook.ListBooksResponse}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	genreID, _ := strconv.ParseUint(c.DefaultQuery("genre_id", "0"), 10, 32)

	result, err := h.listBooks.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		GenreID:  uint(genreID),
		SortBy:   c.Query("sort_by"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CheckAvailability 查询图书可借性
// @Summary      图书可借性
// @Description  返回时点快照;真正的可借判定在借出事务内完成
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.CheckAvailabilityResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/availability [get]
func (h *BookHandler) CheckAvailability(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.checkAvailability.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateBook 更新图书
// @Summary      更新图书
// @Description  馆员更新图书信息;调整馆藏总数时保持在借数不变
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "图书信息"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "馆藏总数小于在借数"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	err := h.bookService.UpdateBook(c.Request.Context(), id,
		req.Title, req.Publisher, req.Year, req.Pages,
		req.Language, req.Description, req.TotalCopies,
		req.AuthorIDs, req.GenreIDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  仍有副本在外借时拒绝删除
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "仍有副本在外借"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.bookService.DeleteBook(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// parseIDParam 解析路径中的:id参数,非法时写入400响应并返回false
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, 40900, "无效的ID")
		return 0, false
	}
	return uint(id), true
}
