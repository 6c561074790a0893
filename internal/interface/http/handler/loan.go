package handler

import (
	"github.com/gin-gonic/gin"

	apploan "github.com/xiebiao/elibrary/internal/application/loan"
	"github.com/xiebiao/elibrary/internal/domain/loan"
	"github.com/xiebiao/elibrary/internal/interface/http/dto"
	"github.com/xiebiao/elibrary/internal/interface/http/middleware"
	"github.com/xiebiao/elibrary/pkg/response"
)

// LoanHandler 借阅HTTP处理器
type LoanHandler struct {
	borrowBook  *apploan.BorrowBookUseCase
	returnBook  *apploan.ReturnBookUseCase
	renewLoan   *apploan.RenewLoanUseCase
	loanService loan.Service
}

// NewLoanHandler 创建借阅处理器
func NewLoanHandler(
	borrowBook *apploan.BorrowBookUseCase,
	returnBook *apploan.ReturnBookUseCase,
	renewLoan *apploan.RenewLoanUseCase,
	loanService loan.Service,
) *LoanHandler {
	return &LoanHandler{
		borrowBook:  borrowBook,
		returnBook:  returnBook,
		renewLoan:   renewLoan,
		loanService: loanService,
	}
}

// BorrowBook 借书
// @Summary      借书
// @Description  可借数不足返回40001,重复借阅返回40002
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BorrowBookRequest true "借书请求"
// @Success      200 {object} response.Response{data=apploan.BorrowBookResponse}
// @Failure      400 {object} response.Response "可借数不足/重复借阅"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/loans [post]
func (h *LoanHandler) BorrowBook(c *gin.Context) {
	var req dto.BorrowBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.borrowBook.Execute(c.Request.Context(), apploan.BorrowBookRequest{
		UserID:   middleware.MustGetUserID(c),
		BookID:   req.BookID,
		LoanDays: req.LoanDays,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ReturnBook 还书
// @Summary      还书
// @Description  重复归还返回40003;馆员可代任何人归还
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅记录ID"
// @Success      200 {object} response.Response{data=apploan.ReturnBookResponse}
// @Failure      400 {object} response.Response "已归还"
// @Failure      403 {object} response.Response "不是本人的借阅"
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Router       /api/v1/loans/{id}/return [post]
func (h *LoanHandler) ReturnBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.returnBook.Execute(c.Request.Context(), apploan.ReturnBookRequest{
		LoanID:  id,
		UserID:  middleware.MustGetUserID(c),
		AsStaff: middleware.IsStaff(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RenewLoan 续借
// @Summary      续借
// @Description  延长应还日期,不改台账;超过最大续借次数返回40008
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅记录ID"
// @Param        request body dto.RenewLoanRequest true "续借请求"
// @Success      200 {object} response.Response{data=apploan.RenewLoanResponse}
// @Failure      400 {object} response.Response "已归还/超过续借次数"
// @Router       /api/v1/loans/{id}/renew [post]
func (h *LoanHandler) RenewLoan(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.RenewLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.renewLoan.Execute(c.Request.Context(), apploan.RenewLoanRequest{
		LoanID:         id,
		UserID:         middleware.MustGetUserID(c),
		AdditionalDays: req.AdditionalDays,
		AsStaff:        middleware.IsStaff(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetLoan 查询借阅记录
// @Summary      借阅记录详情
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅记录ID"
// @Success      200 {object} response.Response{data=dto.LoanResponse}
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Router       /api/v1/loans/{id} [get]
func (h *LoanHandler) GetLoan(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	l, err := h.loanService.GetLoanByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 读者只能看自己的记录,馆员不受限
	if !l.IsOwnedBy(middleware.MustGetUserID(c)) && !middleware.IsStaff(c) {
		response.ErrorWithCode(c, 40104, "无权限访问")
		return
	}

	response.Success(c, dto.ToLoanResponse(l))
}

// MyLoans 我的借阅历史
// @Summary      我的借阅历史
// @Description  按借出日期降序;open=true时只返回在借记录(按应还日期升序)
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        open query bool false "只看在借"
// @Success      200 {object} response.Response{data=[]dto.LoanResponse}
// @Router       /api/v1/loans/my [get]
func (h *LoanHandler) MyLoans(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var (
		loans []*loan.Loan
		err   error
	)
	if c.Query("open") == "true" {
		loans, err = h.loanService.GetUserCurrentLoans(c.Request.Context(), userID)
	} else {
		loans, err = h.loanService.GetUserLoans(c.Request.Context(), userID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToLoanResponses(loans))
}

// ActiveLoans 全部在借记录(馆员)
// @Summary      全部在借记录
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.LoanResponse}
// @Router       /api/v1/loans/active [get]
func (h *LoanHandler) ActiveLoans(c *gin.Context) {
	loans, err := h.loanService.GetActiveLoans(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToLoanResponses(loans))
}

// OverdueLoans 逾期记录(馆员)
// @Summary      逾期记录
// @Description  在借且应还日期已过,按应还日期升序
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.LoanResponse}
// @Router       /api/v1/loans/overdue [get]
func (h *LoanHandler) OverdueLoans(c *gin.Context) {
	loans, err := h.loanService.GetOverdueLoans(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToLoanResponses(loans))
}

// UserLoans 指定用户的借阅历史(馆员)
// @Summary      指定用户的借阅历史
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{data=[]dto.LoanResponse}
// @Router       /api/v1/users/{id}/loans [get]
func (h *LoanHandler) UserLoans(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	loans, err := h.loanService.GetUserLoans(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToLoanResponses(loans))
}
