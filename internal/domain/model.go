package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Metric 评分维度
type Metric string

const (
	MetricStars   Metric = "stars"
	MetricForks   Metric = "forks"
	MetricRecency Metric = "recency"
)

// AllMetrics 固定顺序的全部评分维度，权重求和必须按这个顺序进行
var AllMetrics = []Metric{MetricStars, MetricForks, MetricRecency}

// ParseMetric 解析单个维度名称
func ParseMetric(s string) (Metric, error) {
	for _, m := range AllMetrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Exclusions 调用方希望剔除的维度集合
type Exclusions []Metric

// Contains 判断维度是否被剔除
func (e Exclusions) Contains(m Metric) bool {
	for _, x := range e {
		if x == m {
			return true
		}
	}
	return false
}

// ParseExclusions 解析 "stars,forks" 形式的参数，空字符串返回空集合
func ParseExclusions(raw string) (Exclusions, error) {
	if strings.TrimSpace(raw) == "" {
		return Exclusions{}, nil
	}
	var out Exclusions
	for _, part := range strings.Split(raw, ",") {
		m, err := ParseMetric(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// MaxExclusions 一次最多剔除的维度数，至少保留一个维度参与评分
const MaxExclusions = 2

// ErrTooManyExclusions 剔除的维度超过 MaxExclusions
var ErrTooManyExclusions = errors.New("At most two values are allowed")

// ParseLimitedExclusions 在 ParseExclusions 基础上限制数量
func ParseLimitedExclusions(raw string) (Exclusions, error) {
	excluded, err := ParseExclusions(raw)
	if err != nil {
		return nil, err
	}
	if len(excluded) > MaxExclusions {
		return nil, ErrTooManyExclusions
	}
	return excluded, nil
}

// RepositoryRecord 上游返回的仓库原始数据 (只保留我们关心的字段)
type RepositoryRecord struct {
	ID              int64     `json:"id"`
	GitURL          string    `json:"git_url"`
	FullName        string    `json:"full_name"` // 例如 "gohugoio/hugo"
	Description     string    `json:"description"`
	Language        string    `json:"language"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
}

// MetricScore 单个维度的权重与得分
type MetricScore struct {
	Weight float64 `json:"weight"`
	Value  float64 `json:"value"`
}

// ScoreBreakdown 各维度得分明细
type ScoreBreakdown struct {
	Recency MetricScore `json:"recency"`
	Forks   MetricScore `json:"forks"`
	Stars   MetricScore `json:"stars"`
}

// Get 按维度取得分
func (b ScoreBreakdown) Get(m Metric) MetricScore {
	switch m {
	case MetricStars:
		return b.Stars
	case MetricForks:
		return b.Forks
	case MetricRecency:
		return b.Recency
	}
	return MetricScore{}
}

// Sum 三个维度得分之和 (未取整)
func (b ScoreBreakdown) Sum() float64 {
	return b.Stars.Value + b.Forks.Value + b.Recency.Value
}

// ScoredRepository 评分后的仓库，每次评分都新建，不做原地修改
type ScoredRepository struct {
	RepositoryRecord
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// ScoredRepositoryWithDrift 带有与上一次缓存结果对比的评分
type ScoredRepositoryWithDrift struct {
	ScoredRepository
	OldScore       *float64 `json:"oldScore"`
	DiffPercentage *int     `json:"diffPercentage"`
}

// Pagination 透传给上游搜索接口的分页与排序参数，零值表示不传
type Pagination struct {
	Page    int
	PerPage int
	Sort    string
	Order   string
}

// Project 显式列出输出字段，上游多余的字段一律丢弃
func Project(r RepositoryRecord) RepositoryRecord {
	return RepositoryRecord{
		ID:              r.ID,
		GitURL:          r.GitURL,
		FullName:        r.FullName,
		Description:     r.Description,
		Language:        r.Language,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		StargazersCount: r.StargazersCount,
		ForksCount:      r.ForksCount,
	}
}
