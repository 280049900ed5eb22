package analyzer

import (
	"math"
	"time"

	"github-repo-scorer/internal/domain"
	"github-repo-scorer/internal/scoring"
)

// RepoScorer 实现了 port.Scorer 接口
type RepoScorer struct {
	nowFunc func() time.Time
}

// NewRepoScorer 创建新的评分器实例
func NewRepoScorer() *RepoScorer {
	return &RepoScorer{
		nowFunc: time.Now, // 便于测试注入当前时间
	}
}

// NewRepoScorerWithClock 使用指定时钟创建评分器
func NewRepoScorerWithClock(nowFunc func() time.Time) *RepoScorer {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &RepoScorer{nowFunc: nowFunc}
}

// Score 计算单个仓库的总分与明细
// 调用方负责校验 excluded，这里不再重复校验
// updated_at 缺失 (零值) 时年龄视为无穷大，recency 得分为 0
func (s *RepoScorer) Score(record domain.RepositoryRecord, excluded domain.Exclusions) domain.ScoredRepository {
	current := time.Now()
	if s != nil && s.nowFunc != nil {
		current = s.nowFunc()
	}

	breakdown := scoring.ComputeScore(
		record.StargazersCount,
		record.ForksCount,
		record.UpdatedAt,
		current,
		excluded,
	)

	return domain.ScoredRepository{
		RepositoryRecord: domain.Project(record),
		Score:            math.Min(100, scoring.Round2(breakdown.Sum())),
		Breakdown:        breakdown,
	}
}

// ScoreAll 逐个评分，保持输入顺序
func (s *RepoScorer) ScoreAll(records []domain.RepositoryRecord, excluded domain.Exclusions) []domain.ScoredRepository {
	scored := make([]domain.ScoredRepository, 0, len(records))
	for _, record := range records {
		scored = append(scored, s.Score(record, excluded))
	}
	return scored
}
