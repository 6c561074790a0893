package loan

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/xiebiao/elibrary/internal/domain/book"
	"github.com/xiebiao/elibrary/internal/domain/loan"
	"github.com/xiebiao/elibrary/pkg/metrics"
)

// 教学说明：借阅用例测试
//
// 用例依赖的都是接口(loan.Repository/book.Repository/TxManager)，
// 这里用内存假实现替代MySQL，测试只关注用例编排逻辑：
// 1. fakeTxManager用互斥锁串行执行事务，模拟行锁的串行化效果
// 2. fakeBookRepo的UpdateAvailable带守卫条件，与真实现语义一致
// 3. 事件/缓存用记录型假实现，断言旁路操作确实发生

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

// fakeTxManager 以互斥锁模拟事务串行化
// 说明：真实现里LockByID的行锁让借出/归还互相等待，
// 这里粗化为整体互斥，对用例逻辑的观察是等价的
type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// fakeBookRepo 内存图书仓储
type fakeBookRepo struct {
	mu    sync.Mutex
	books map[uint]*book.Book
}

func newFakeBookRepo(books ...*book.Book) *fakeBookRepo {
	r := &fakeBookRepo{books: make(map[uint]*book.Book)}
	for _, b := range books {
		r.books[b.ID] = b
	}
	return r
}

func (r *fakeBookRepo) Create(ctx context.Context, b *book.Book, authorIDs, genreIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = uint(len(r.books) + 1)
	r.books[b.ID] = b
	return nil
}

func (r *fakeBookRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.books {
		if b.ISBN == isbn {
			copied := *b
			return &copied, nil
		}
	}
	return nil, book.ErrBookNotFound
}

func (r *fakeBookRepo) Update(ctx context.Context, b *book.Book, authorIDs, genreIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	r.books[b.ID] = b
	return nil
}

func (r *fakeBookRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.books, id)
	return nil
}

func (r *fakeBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*book.Book
	for _, b := range r.books {
		copied := *b
		result = append(result, &copied)
	}
	return result, int64(len(result)), nil
}

func (r *fakeBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	// 事务已被fakeTxManager串行化，这里等价于FindByID
	return r.FindByID(ctx, id)
}

func (r *fakeBookRepo) UpdateAvailable(ctx context.Context, id uint, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	next := b.AvailableCopies + delta
	if next < 0 {
		return book.ErrNoAvailableCopies
	}
	if next > b.TotalCopies {
		return book.ErrCopiesExceedTotal
	}
	b.AvailableCopies = next
	return nil
}

func (r *fakeBookRepo) IsAvailable(ctx context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return false, book.ErrBookNotFound
	}
	return b.AvailableCopies > 0, nil
}

func (r *fakeBookRepo) available(id uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.books[id].AvailableCopies
}

// fakeLoanRepo 内存借阅仓储
type fakeLoanRepo struct {
	mu     sync.Mutex
	loans  map[uint]*loan.Loan
	nextID uint
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[uint]*loan.Loan), nextID: 1}
}

func (r *fakeLoanRepo) Create(ctx context.Context, l *loan.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = r.nextID
	r.nextID++
	copied := *l
	r.loans[l.ID] = &copied
	return nil
}

func (r *fakeLoanRepo) FindByID(ctx context.Context, id uint) (*loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok {
		return nil, loan.ErrLoanNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *fakeLoanRepo) Update(ctx context.Context, l *loan.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[l.ID]; !ok {
		return loan.ErrLoanNotFound
	}
	copied := *l
	r.loans[l.ID] = &copied
	return nil
}

func (r *fakeLoanRepo) HasOpenLoan(ctx context.Context, userID, bookID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.loans {
		if l.UserID == userID && l.BookID == bookID && l.ReturnDate == nil {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLoanRepo) CountOpenByUser(ctx context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, l := range r.loans {
		if l.UserID == userID && l.ReturnDate == nil {
			count++
		}
	}
	return count, nil
}

func (r *fakeLoanRepo) ListActive(ctx context.Context) ([]*loan.Loan, error) {
	return r.filter(func(l *loan.Loan) bool { return l.ReturnDate == nil }), nil
}

func (r *fakeLoanRepo) ListOverdue(ctx context.Context, now time.Time) ([]*loan.Loan, error) {
	return r.filter(func(l *loan.Loan) bool {
		return l.ReturnDate == nil && l.DueDate.Before(now)
	}), nil
}

func (r *fakeLoanRepo) ListByUser(ctx context.Context, userID uint) ([]*loan.Loan, error) {
	return r.filter(func(l *loan.Loan) bool { return l.UserID == userID }), nil
}

func (r *fakeLoanRepo) ListOpenByUser(ctx context.Context, userID uint) ([]*loan.Loan, error) {
	return r.filter(func(l *loan.Loan) bool {
		return l.UserID == userID && l.ReturnDate == nil
	}), nil
}

func (r *fakeLoanRepo) filter(keep func(*loan.Loan) bool) []*loan.Loan {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*loan.Loan
	for _, l := range r.loans {
		if keep(l) {
			copied := *l
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []string // routingKey
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, routingKey)
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// recordingCache 记录缓存失效调用
type recordingCache struct {
	mu          sync.Mutex
	invalidated []uint
}

func (c *recordingCache) Invalidate(ctx context.Context, bookID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, bookID)
}

func (c *recordingCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.invalidated)
}

// newTestBook 构造指定馆藏/可借数的图书
func newTestBook(id uint, total, available int) *book.Book {
	return &book.Book{
		ID:              id,
		ISBN:            "9787115549440",
		Title:           "测试图书",
		TotalCopies:     total,
		AvailableCopies: available,
	}
}
