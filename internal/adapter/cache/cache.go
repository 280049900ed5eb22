package cache

import (
	"time"

	"github-repo-scorer/internal/domain"
	"github-repo-scorer/internal/port"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultTTL 缓存项默认存活时间
const DefaultTTL = time.Hour

// TTLCache 实现了 port.Cache 接口，基于 ttlcache 的进程内缓存
// 命中不会刷新过期时间
type TTLCache struct {
	items *ttlcache.Cache[string, domain.ScoredRepository]
}

// NewTTLCache 创建缓存，ttl <= 0 时使用 DefaultTTL，maxEntries 为 0 表示不限容量
func NewTTLCache(ttl time.Duration, maxEntries uint64) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	opts := []ttlcache.Option[string, domain.ScoredRepository]{
		ttlcache.WithTTL[string, domain.ScoredRepository](ttl),
		ttlcache.WithDisableTouchOnHit[string, domain.ScoredRepository](),
	}
	if maxEntries > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, domain.ScoredRepository](maxEntries))
	}

	return &TTLCache{items: ttlcache.New[string, domain.ScoredRepository](opts...)}
}

// Start 启动过期清理循环，阻塞直到 Stop 被调用
func (c *TTLCache) Start() {
	c.items.Start()
}

// Stop 停止过期清理循环
func (c *TTLCache) Stop() {
	c.items.Stop()
}

func (c *TTLCache) Get(key string) (domain.ScoredRepository, bool) {
	item := c.items.Get(key)
	if item == nil {
		return domain.ScoredRepository{}, false
	}
	return item.Value(), true
}

// Set ttl 为 0 时使用默认过期时间
func (c *TTLCache) Set(key string, value domain.ScoredRepository, ttl time.Duration) {
	if ttl <= 0 {
		ttl = ttlcache.DefaultTTL
	}
	c.items.Set(key, value, ttl)
}

// SetMany 批量写入，每项的 ttl 规则与 Set 相同
func (c *TTLCache) SetMany(entries []port.CacheEntry) {
	for _, e := range entries {
		c.Set(e.Key, e.Value, e.TTL)
	}
}

// Take 原子地读取并删除
func (c *TTLCache) Take(key string) (domain.ScoredRepository, bool) {
	item, ok := c.items.GetAndDelete(key)
	if !ok || item == nil {
		return domain.ScoredRepository{}, false
	}
	return item.Value(), true
}

func (c *TTLCache) Delete(key string) {
	c.items.Delete(key)
}

// Keys 返回所有未过期的 key
func (c *TTLCache) Keys() []string {
	keys := make([]string, 0, c.items.Len())
	for key, item := range c.items.Items() {
		if item.IsExpired() {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// Len 当前条目数 (可能包含尚未清理的过期项)
func (c *TTLCache) Len() int {
	return c.items.Len()
}
