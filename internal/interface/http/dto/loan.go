package dto

import (
	"github.com/xiebiao/elibrary/internal/domain/loan"
	"github.com/xiebiao/elibrary/internal/domain/reservation"
)

// BorrowBookRequest 借书请求
type BorrowBookRequest struct {
	BookID   uint `json:"book_id" binding:"required" example:"1"`
	LoanDays int  `json:"loan_days" binding:"required,min=1" example:"30"`
}

// RenewLoanRequest 续借请求
type RenewLoanRequest struct {
	AdditionalDays int `json:"additional_days" binding:"required,min=1" example:"14"`
}

// LoanResponse 借阅记录响应
type LoanResponse struct {
	ID          uint   `json:"id"`
	LoanUID     string `json:"loan_uid"`
	BookID      uint   `json:"book_id"`
	BookTitle   string `json:"book_title"`
	UserID      uint   `json:"user_id"`
	LoanDate    string `json:"loan_date"`
	DueDate     string `json:"due_date"`
	ReturnDate  string `json:"return_date,omitempty"`
	Renewals    int    `json:"renewals"`
	IsOverdue   bool   `json:"is_overdue"`
	DueInDays   int    `json:"due_in_days,omitempty"`
	OverdueDays int    `json:"overdue_days,omitempty"`
}

// ToLoanResponse 领域实体 → HTTP响应DTO
func ToLoanResponse(l *loan.Loan) *LoanResponse {
	resp := &LoanResponse{
		ID:        l.ID,
		LoanUID:   l.LoanUID,
		BookID:    l.BookID,
		BookTitle: l.BookTitle,
		UserID:    l.UserID,
		LoanDate:  l.LoanDate.Format("2006-01-02"),
		DueDate:   l.DueDate.Format("2006-01-02"),
		Renewals:  l.Renewals,
		IsOverdue: l.IsOverdue(),
	}
	if l.ReturnDate != nil {
		resp.ReturnDate = l.ReturnDate.Format("2006-01-02")
	}
	if resp.IsOverdue {
		resp.OverdueDays = l.OverdueDays()
	} else if l.IsOpen() {
		resp.DueInDays = l.DaysUntilDue()
	}
	return resp
}

// ToLoanResponses 批量转换
func ToLoanResponses(loans []*loan.Loan) []*LoanResponse {
	out := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		out[i] = ToLoanResponse(l)
	}
	return out
}

// ReserveBookRequest 预约请求
type ReserveBookRequest struct {
	BookID uint `json:"book_id" binding:"required" example:"1"`
}

// ReservationResponse 预约记录响应
type ReservationResponse struct {
	ID              uint   `json:"id"`
	ReservationUID  string `json:"reservation_uid"`
	BookID          uint   `json:"book_id"`
	BookTitle       string `json:"book_title"`
	UserID          uint   `json:"user_id"`
	ReservationDate string `json:"reservation_date"`
	ExpiryDate      string `json:"expiry_date"`
	IsActive        bool   `json:"is_active"`
	IsExpired       bool   `json:"is_expired"`
}

// ToReservationResponse 领域实体 → HTTP响应DTO
func ToReservationResponse(r *reservation.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:              r.ID,
		ReservationUID:  r.ReservationUID,
		BookID:          r.BookID,
		BookTitle:       r.BookTitle,
		UserID:          r.UserID,
		ReservationDate: r.ReservationDate.Format("2006-01-02"),
		ExpiryDate:      r.ExpiryDate.Format("2006-01-02"),
		IsActive:        r.IsActive,
		IsExpired:       r.IsExpired(),
	}
}

// ToReservationResponses 批量转换
func ToReservationResponses(rs []*reservation.Reservation) []*ReservationResponse {
	out := make([]*ReservationResponse, len(rs))
	for i, r := range rs {
		out[i] = ToReservationResponse(r)
	}
	return out
}
