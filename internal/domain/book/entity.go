package book

import (
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根实体,包含书目信息与馆藏台账
// 2. TotalCopies是馆藏总数,AvailableCopies是当前可借数
// 3. 核心不变量: 0 <= AvailableCopies <= TotalCopies
//    AvailableCopies只能通过借出/归还流转变化,禁止直接赋值
// 4. ISBN作为业务唯一标识(数据库层保证唯一性)
// 5. Authors/Genres是关联快照(多对多),只用于展示,不是聚合成员
type Book struct {
	ID              uint
	ISBN            string // ISBN号(国际标准书号)
	Title           string // 书名
	Publisher       string // 出版社
	Year            int    // 出版年份
	Pages           int    // 页数
	Language        string // 语言
	Description     string // 图书描述
	TotalCopies     int    // 馆藏总数
	AvailableCopies int    // 当前可借数
	Authors         []AuthorInfo
	Genres          []GenreInfo
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AuthorInfo 关联作者快照(跨聚合只读引用)
type AuthorInfo struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
}

// GenreInfo 关联分类快照
type GenreInfo struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// NewBook 创建新图书(工厂方法)
// 新书所有副本都可借: AvailableCopies = TotalCopies
func NewBook(isbn, title, publisher string, year, pages int, language, description string, totalCopies int) (*Book, error) {
	if totalCopies < 0 {
		return nil, ErrInvalidCopies
	}

	now := time.Now()
	return &Book{
		ISBN:            isbn,
		Title:           title,
		Publisher:       publisher,
		Year:            year,
		Pages:           pages,
		Language:        language,
		Description:     description,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsAvailable 是否有可借副本
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// CopiesOnLoan 在外借副本数
func (b *Book) CopiesOnLoan() int {
	return b.TotalCopies - b.AvailableCopies
}

// DecrAvailable 扣减可借副本(借出时调用)
// 业务规则: 可借数为0时借出失败,返回ErrNoAvailableCopies
func (b *Book) DecrAvailable() error {
	if b.AvailableCopies <= 0 {
		return ErrNoAvailableCopies
	}
	b.AvailableCopies--
	b.UpdatedAt = time.Now()
	return nil
}

// IncrAvailable 增加可借副本(归还时调用)
// 业务规则: 可借数不能超过馆藏总数
// 正确的调用方不可能触发该错误,这里做防御性检查
func (b *Book) IncrAvailable() error {
	if b.AvailableCopies >= b.TotalCopies {
		return ErrCopiesExceedTotal
	}
	b.AvailableCopies++
	b.UpdatedAt = time.Now()
	return nil
}

// AdjustTotalCopies 调整馆藏总数(补充/剔除副本)
// 业务规则:
// 1. 在外借的副本数保持不变,可借数随总数同步调整
// 2. 不能把总数调到低于在外借数量(那些副本收不回来)
func (b *Book) AdjustTotalCopies(newTotal int) error {
	if newTotal < 0 {
		return ErrInvalidCopies
	}

	onLoan := b.CopiesOnLoan()
	if newTotal < onLoan {
		return ErrBookCopiesOnLoan
	}

	b.TotalCopies = newTotal
	b.AvailableCopies = newTotal - onLoan
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateInfo 更新书目信息(不触碰台账字段)
func (b *Book) UpdateInfo(title, publisher string, year, pages int, language, description string) {
	if title != "" {
		b.Title = title
	}
	if publisher != "" {
		b.Publisher = publisher
	}
	if year != 0 {
		b.Year = year
	}
	if pages != 0 {
		b.Pages = pages
	}
	if language != "" {
		b.Language = language
	}
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = time.Now()
}
