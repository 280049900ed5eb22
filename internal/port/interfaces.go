package port

import (
	"context"
	"time"

	"github-repo-scorer/internal/domain"
)

// Searcher (侦察兵): 调用上游搜索接口
type Searcher interface {
	// q 例如 "language:go created:>=2024-01-01"，分页参数为零值时不传给上游
	SearchRepositories(ctx context.Context, q string, page domain.Pagination) ([]domain.RepositoryRecord, error)
}

// Getter 按 owner/name 获取单个仓库
type Getter interface {
	GetRepository(ctx context.Context, owner, name string) (domain.RepositoryRecord, error)
}

// Upstream 上游仓库托管平台 (GitHub)
type Upstream interface {
	Searcher
	Getter
}

// Scorer (鉴定师): 把原始仓库数据转换成带评分的扁平结构
type Scorer interface {
	Score(record domain.RepositoryRecord, excluded domain.Exclusions) domain.ScoredRepository
	ScoreAll(records []domain.RepositoryRecord, excluded domain.Exclusions) []domain.ScoredRepository
}

// CacheEntry 批量写缓存时的一项，TTL <= 0 时使用缓存默认过期时间
type CacheEntry struct {
	Key   string
	Value domain.ScoredRepository
	TTL   time.Duration
}

// Cache (仓库管理员): 进程内带过期时间的缓存，key 为仓库的 git_url
// 所有方法在 key 不存在时都不报错
type Cache interface {
	Get(key string) (domain.ScoredRepository, bool)
	// ttl 为 0 时使用缓存的默认过期时间
	Set(key string, value domain.ScoredRepository, ttl time.Duration)
	SetMany(entries []CacheEntry)
	// Take 读取并删除，必须是原子操作
	Take(key string) (domain.ScoredRepository, bool)
	Delete(key string)
	Keys() []string
}
