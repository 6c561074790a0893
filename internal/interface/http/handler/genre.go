package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/elibrary/internal/domain/genre"
	"github.com/xiebiao/elibrary/internal/interface/http/dto"
	"github.com/xiebiao/elibrary/pkg/response"
)

// GenreHandler 分类HTTP处理器
type GenreHandler struct {
	genreService genre.Service
}

// NewGenreHandler 创建分类处理器
func NewGenreHandler(genreService genre.Service) *GenreHandler {
	return &GenreHandler{genreService: genreService}
}

// CreateGenre 创建分类
// @Summary      创建分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.GenreRequest true "分类信息"
// @Success      200 {object} response.Response
// @Failure      409 {object} response.Response "分类已存在"
// @Router       /api/v1/genres [post]
func (h *GenreHandler) CreateGenre(c *gin.Context) {
	var req dto.GenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	g, err := h.genreService.AddGenre(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, g)
}

// GetGenre 查询分类
// @Summary      分类详情
// @Tags         分类
// @Produce      json
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /api/v1/genres/{id} [get]
func (h *GenreHandler) GetGenre(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	g, err := h.genreService.GetGenreByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, g)
}

// ListGenres 分类列表
// @Summary      分类列表
// @Tags         分类
// @Produce      json
// @Param        keyword query string false "按名称搜索"
// @Success      200 {object} response.Response
// @Router       /api/v1/genres [get]
func (h *GenreHandler) ListGenres(c *gin.Context) {
	genres, err := h.genreService.ListGenres(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, genres)
}

// UpdateGenre 更新分类
// @Summary      更新分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Param        request body dto.GenreRequest true "分类信息"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /api/v1/genres/{id} [put]
func (h *GenreHandler) UpdateGenre(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.GenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	if err := h.genreService.UpdateGenre(c.Request.Context(), id, req.Name, req.Description); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// DeleteGenre 删除分类
// @Summary      删除分类
// @Tags         分类
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /api/v1/genres/{id} [delete]
func (h *GenreHandler) DeleteGenre(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.genreService.DeleteGenre(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
