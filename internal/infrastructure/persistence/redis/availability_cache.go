package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AvailabilityCache 图书可借数缓存
// 设计说明:
// 1. Cache-Aside模式:读时回填,写后失效
// 2. 只服务列表/详情等展示读路径;借出/归还事务
//    只信数据库行,绝不读缓存做决策
// 3. 缓存故障静默降级,调用方拿到miss后回源数据库
// Key设计: book:avail:{book_id} → 可借数,短TTL兜底
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache 创建可借数缓存
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{
		client: client,
		ttl:    30 * time.Second,
	}
}

// Get 读取缓存的可借数
// 返回(值, 是否命中):miss和redis故障统一按未命中处理
func (c *AvailabilityCache) Get(ctx context.Context, bookID uint) (int, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, availKey(bookID)).Int()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// 故障降级,不阻塞读路径
			return 0, false
		}
		return 0, false
	}
	return val, true
}

// Set 回填可借数
func (c *AvailabilityCache) Set(ctx context.Context, bookID uint, available int) {
	if c == nil || c.client == nil {
		return
	}
	// 写失败忽略:缓存是加速层,数据库才是事实来源
	_ = c.client.Set(ctx, availKey(bookID), available, c.ttl).Err()
}

// Invalidate 借出/归还/调整馆藏后失效缓存
// 先失效后短TTL兜底,避免借出成功但展示层长时间读到旧值
func (c *AvailabilityCache) Invalidate(ctx context.Context, bookID uint) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, availKey(bookID)).Err()
}

func availKey(bookID uint) string {
	return fmt.Sprintf("book:avail:%d", bookID)
}
