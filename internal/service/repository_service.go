package service

import (
	"context"
	"time"

	"github-repo-scorer/internal/common"
	"github-repo-scorer/internal/domain"
	"github-repo-scorer/internal/logging"
	"github-repo-scorer/internal/port"
	"github-repo-scorer/internal/scoring"

	"github.com/sirupsen/logrus"
)

// RepositoryService 编排 上游拉取 -> 评分 -> 写缓存
type RepositoryService struct {
	upstream port.Upstream
	scorer   port.Scorer
	cache    port.Cache
	ttl      time.Duration
	logger   logrus.FieldLogger
}

// NewRepositoryService 创建仓库服务，ttl 为 0 时使用缓存自身的默认过期时间
func NewRepositoryService(
	upstream port.Upstream,
	scorer port.Scorer,
	cache port.Cache,
	ttl time.Duration,
	logger logrus.FieldLogger,
) *RepositoryService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RepositoryService{
		upstream: upstream,
		scorer:   scorer,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// BuildSearchQuery 生成上游搜索语句，例如 "language:go created:>=2024-01-01"
// createdAfter 为空时不加日期条件
func BuildSearchQuery(language, createdAfter string) string {
	q := "language:" + language
	if createdAfter != "" {
		q += " created:>=" + createdAfter
	}
	return q
}

// FetchAllRepositories 搜索一页仓库并逐个评分，结果按上游顺序返回
// 所有结果以 git_url 为 key 批量写入缓存
func (s *RepositoryService) FetchAllRepositories(
	ctx context.Context,
	language, createdAfter string,
	page domain.Pagination,
	excluded domain.Exclusions,
) ([]domain.ScoredRepository, error) {
	log := logging.FromContext(ctx, s.logger)
	q := BuildSearchQuery(language, createdAfter)

	records, err := s.upstream.SearchRepositories(ctx, q, page)
	if err != nil {
		log.WithError(err).WithField("query", q).Error("Error fetching repositories")
		return nil, upstreamError("Error fetching repositories", err)
	}

	scored := s.scorer.ScoreAll(records, excluded)
	if scored == nil {
		scored = []domain.ScoredRepository{}
	}

	entries := make([]port.CacheEntry, 0, len(scored))
	for _, repo := range scored {
		entries = append(entries, port.CacheEntry{Key: repo.GitURL, Value: repo, TTL: s.ttl})
	}
	s.cache.SetMany(entries)

	log.WithFields(logrus.Fields{
		"query": q,
		"count": len(scored),
	}).Debug("repositories scored")

	return scored, nil
}

// FetchRepositoryInfo 获取单个仓库并评分，与上一次缓存的结果对比得到漂移
// 缓存项先取出再写回最新结果，两次调用之间只有一个能拿到旧值
func (s *RepositoryService) FetchRepositoryInfo(
	ctx context.Context,
	owner, name string,
	excluded domain.Exclusions,
) (domain.ScoredRepositoryWithDrift, error) {
	log := logging.FromContext(ctx, s.logger).WithField("repository", owner+"/"+name)

	record, err := s.upstream.GetRepository(ctx, owner, name)
	if err != nil {
		log.WithError(err).Error("Error fetching repository data")
		return domain.ScoredRepositoryWithDrift{}, upstreamError("Error fetching repository data", err)
	}

	fresh := s.scorer.Score(record, excluded)

	cached, found := s.cache.Take(fresh.GitURL)
	s.cache.Set(fresh.GitURL, fresh, s.ttl)

	result := domain.ScoredRepositoryWithDrift{ScoredRepository: fresh}
	if !found {
		log.Debug("no cached score, drift unavailable")
		return result, nil
	}

	// 用同样的剔除条件重新给旧数据评分
	oldScore := s.scorer.Score(cached.RepositoryRecord, excluded).Score
	result.OldScore = &oldScore
	result.DiffPercentage = scoring.PercentageDifference(fresh.Score, oldScore)

	log.WithFields(logrus.Fields{
		"score":     fresh.Score,
		"old_score": oldScore,
	}).Debug("drift computed")

	return result, nil
}

// upstreamError 保证返回的错误带有 UPSTREAM_FETCH_ERROR 错误码
func upstreamError(message string, err error) error {
	if common.CodeOf(err) == common.ErrCodeUpstreamFetch {
		return err
	}
	return common.WrapError(common.ErrCodeUpstreamFetch, message, err)
}
