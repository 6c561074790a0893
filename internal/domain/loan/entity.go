package loan

import (
	"time"

	"github.com/google/uuid"
)

// Loan 借阅记录实体(聚合根)
// DDD设计说明:
// 1. 状态机只有一条转移: Open -> Returned(终态),无其他流转
// 2. 借阅记录是历史档案,只会被追加和标记归还,永不删除
// 3. 只保存BookID/UserID弱引用,不跨聚合持有对象
//    (BookTitle是仓储回填的展示快照,不参与业务规则)
// 4. 构造期不变量由实体自己守卫(见NewLoan/MarkReturned):
//    借出日期不能在未来、归还日期必须晚于借出日期。
//    违反属于调用方编码错误,返回普通error而非业务错误码
type Loan struct {
	ID         uint
	LoanUID    string // 业务唯一标识(UUID)
	BookID     uint
	UserID     uint
	LoanDate   time.Time  // 借出日期
	DueDate    time.Time  // 应还日期 = 借出日期 + 借期
	ReturnDate *time.Time // 归还日期(nil表示在借)
	Renewals   int        // 已续借次数
	BookTitle  string     // 展示快照,仓储查询时回填
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewLoan 创建借阅记录(工厂方法)
// 参数:
//   - loanDate: 借出日期,不能在未来(构造期硬性约束)
//   - loanDays: 借期天数,须为正数(业务前置条件,由调用方先校验,
//     这里再做一次防御)
func NewLoan(bookID, userID uint, loanDate time.Time, loanDays int) (*Loan, error) {
	if loanDate.After(time.Now()) {
		return nil, ErrLoanDateInFuture
	}
	if loanDays <= 0 {
		return nil, ErrInvalidLoanDays
	}

	now := time.Now()
	return &Loan{
		LoanUID:   uuid.NewString(),
		BookID:    bookID,
		UserID:    userID,
		LoanDate:  loanDate,
		DueDate:   loanDate.AddDate(0, 0, loanDays),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsOpen 是否在借(未归还)
func (l *Loan) IsOpen() bool {
	return l.ReturnDate == nil
}

// IsOverdue 是否逾期(在借且已过应还日期)
func (l *Loan) IsOverdue() bool {
	return l.ReturnDate == nil && time.Now().After(l.DueDate)
}

// DaysUntilDue 距应还日期的天数(已逾期时为负数)
func (l *Loan) DaysUntilDue() int {
	return int(time.Until(l.DueDate).Hours() / 24)
}

// OverdueDays 逾期天数(未到期时为负数)
func (l *Loan) OverdueDays() int {
	return int(time.Since(l.DueDate).Hours() / 24)
}

// IsOwnedBy 借阅记录是否属于指定用户
func (l *Loan) IsOwnedBy(userID uint) bool {
	return l.UserID == userID
}

// MarkReturned 标记归还(Open -> Returned,终态)
// 业务规则: 重复归还返回ErrAlreadyReturned
// 构造期不变量: 归还时间必须严格晚于借出时间(硬性错误)
func (l *Loan) MarkReturned(at time.Time) error {
	if l.ReturnDate != nil {
		return ErrAlreadyReturned
	}
	if !at.After(l.LoanDate) {
		return ErrReturnBeforeLoan
	}

	l.ReturnDate = &at
	l.UpdatedAt = time.Now()
	return nil
}

// Renew 续借(延长应还日期)
// 业务规则:
// 1. 已归还的记录不能续借
// 2. 续借天数必须为正数
// 3. maxRenewals>0时限制续借次数(0表示不限,见配置loan.max_renewals)
func (l *Loan) Renew(additionalDays, maxRenewals int) error {
	if additionalDays <= 0 {
		return ErrInvalidLoanDays
	}
	if l.ReturnDate != nil {
		return ErrAlreadyReturned
	}
	if maxRenewals > 0 && l.Renewals >= maxRenewals {
		return ErrRenewLimitExceeded
	}

	l.DueDate = l.DueDate.AddDate(0, 0, additionalDays)
	l.Renewals++
	l.UpdatedAt = time.Now()
	return nil
}
