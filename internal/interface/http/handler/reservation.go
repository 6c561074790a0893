package handler

import (
	"github.com/gin-gonic/gin"

	appres "github.com/xiebiao/elibrary/internal/application/reservation"
	"github.com/xiebiao/elibrary/internal/domain/reservation"
	"github.com/xiebiao/elibrary/internal/interface/http/dto"
	"github.com/xiebiao/elibrary/internal/interface/http/middleware"
	"github.com/xiebiao/elibrary/pkg/response"
)

// ReservationHandler 预约HTTP处理器
type ReservationHandler struct {
	reserveBook       *appres.ReserveBookUseCase
	cancelReservation *appres.CancelReservationUseCase
	resService        reservation.Service
}

// NewReservationHandler 创建预约处理器
func NewReservationHandler(
	reserveBook *appres.ReserveBookUseCase,
	cancelReservation *appres.CancelReservationUseCase,
	resService reservation.Service,
) *ReservationHandler {
	return &ReservationHandler{
		reserveBook:       reserveBook,
		cancelReservation: cancelReservation,
		resService:        resService,
	}
}

// ReserveBook 预约图书
// @Summary      预约图书
// @Description  预约不占副本,不改可借数;重复预约返回40004
// @Tags         预约
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ReserveBookRequest true "预约请求"
// @Success      200 {object} response.Response{data=appres.ReserveBookResponse}
// @Failure      400 {object} response.Response "重复预约"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/reservations [post]
func (h *ReservationHandler) ReserveBook(c *gin.Context) {
	var req dto.ReserveBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.reserveBook.Execute(c.Request.Context(), appres.ReserveBookRequest{
		UserID: middleware.MustGetUserID(c),
		BookID: req.BookID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelReservation 取消预约
// @Summary      取消预约
// @Description  幂等操作:已失效的预约再取消直接成功
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "不是本人的预约"
// @Failure      404 {object} response.Response "预约不存在"
// @Router       /api/v1/reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	err := h.cancelReservation.Execute(c.Request.Context(), appres.CancelReservationRequest{
		ReservationID: id,
		UserID:        middleware.MustGetUserID(c),
		AsStaff:       middleware.IsStaff(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// GetReservation 查询预约记录
// @Summary      预约记录详情
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Success      200 {object} response.Response{data=dto.ReservationResponse}
// @Failure      404 {object} response.Response "预约不存在"
// @Router       /api/v1/reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	r, err := h.resService.GetReservationByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 读者只能看自己的预约,馆员不受限
	if !r.IsOwnedBy(middleware.MustGetUserID(c)) && !middleware.IsStaff(c) {
		response.ErrorWithCode(c, 40104, "无权限访问")
		return
	}

	response.Success(c, dto.ToReservationResponse(r))
}

// MyReservations 我的预约记录
// @Summary      我的预约记录
// @Description  按预约日期降序;active=true时只返回生效中的(按失效日期升序)
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Param        active query bool false "只看生效中"
// @Success      200 {object} response.Response{data=[]dto.ReservationResponse}
// @Router       /api/v1/reservations/my [get]
func (h *ReservationHandler) MyReservations(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var (
		rs  []*reservation.Reservation
		err error
	)
	if c.Query("active") == "true" {
		rs, err = h.resService.GetActiveReservations(c.Request.Context(), userID)
	} else {
		rs, err = h.resService.GetUserReservations(c.Request.Context(), userID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToReservationResponses(rs))
}

// ActiveReservations 全部生效预约(馆员)
// @Summary      全部生效预约
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.ReservationResponse}
// @Router       /api/v1/reservations/active [get]
func (h *ReservationHandler) ActiveReservations(c *gin.Context) {
	rs, err := h.resService.GetActiveReservations(c.Request.Context(), 0)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToReservationResponses(rs))
}
