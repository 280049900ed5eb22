// Package scoring 仓库热度评分引擎：纯函数，不读时钟，不做 IO
package scoring

import (
	"math"
	"time"

	"github-repo-scorer/internal/domain"
)

const (
	MaxStars   = 400000
	MaxForks   = 250000
	MaxAgeDays = 365 * 2 // 两年
)

// baseWeights 初始权重，合计为 1
var baseWeights = map[domain.Metric]float64{
	domain.MetricStars:   0.5,
	domain.MetricForks:   0.3,
	domain.MetricRecency: 0.2,
}

// Weights 各维度调整后的权重
type Weights map[domain.Metric]float64

// ComputeWeights 根据剔除集合重新分配权重
// 剩余维度按原比例放大到合计为 1，每个权重四舍五入到两位小数
func ComputeWeights(excluded domain.Exclusions) Weights {
	weights := Weights{
		domain.MetricStars:   0,
		domain.MetricForks:   0,
		domain.MetricRecency: 0,
	}

	var included []domain.Metric
	for _, m := range domain.AllMetrics {
		if !excluded.Contains(m) {
			included = append(included, m)
		}
	}
	// 全部剔除时直接返回全 0，不做除法
	if len(included) == 0 {
		return weights
	}

	totalWeight := 0.0
	for _, m := range included {
		totalWeight += baseWeights[m]
	}
	for _, m := range included {
		weights[m] = Round2(baseWeights[m] / totalWeight)
	}
	return weights
}

// ComputeScore 计算单个仓库的各维度得分
// lastUpdated 在未来时 age 为负数，只截断上限不截断下限
func ComputeScore(stars, forks int, lastUpdated, now time.Time, excluded domain.Exclusions) domain.ScoreBreakdown {
	ageDays := now.Sub(lastUpdated).Hours() / 24

	normalizedStars := math.Min(float64(stars)/MaxStars, 1)
	normalizedForks := math.Min(float64(forks)/MaxForks, 1)
	normalizedAge := math.Min(ageDays/MaxAgeDays, 1)

	weights := ComputeWeights(excluded)

	return domain.ScoreBreakdown{
		Stars: domain.MetricScore{
			Weight: weights[domain.MetricStars],
			Value:  Round2(normalizedStars * weights[domain.MetricStars] * 100),
		},
		Forks: domain.MetricScore{
			Weight: weights[domain.MetricForks],
			Value:  Round2(normalizedForks * weights[domain.MetricForks] * 100),
		},
		// 越近更新得分越高
		Recency: domain.MetricScore{
			Weight: weights[domain.MetricRecency],
			Value:  Round2((1 - normalizedAge) * weights[domain.MetricRecency] * 100),
		},
	}
}

// Round2 四舍五入 (远离零) 到两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
