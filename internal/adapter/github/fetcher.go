package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github-repo-scorer/internal/common"
	"github-repo-scorer/internal/domain"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// Options 上游客户端配置，零值可用
type Options struct {
	BaseURL    string        // 为空时使用 https://api.github.com/
	Timeout    time.Duration // HTTP 客户端超时，0 表示不限
	MaxRetries int           // 0 表示只调用一次
}

// Fetcher 实现了 port.Upstream 接口
type Fetcher struct {
	client     *github.Client
	maxRetries int
}

// NewFetcher 初始化 GitHub 客户端
func NewFetcher(token string, opts Options) (*Fetcher, error) {
	var httpClient *http.Client
	if token == "" {
		httpClient = &http.Client{}
	} else {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	httpClient.Timeout = opts.Timeout

	client := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base url %q: %w", opts.BaseURL, err)
		}
		client.BaseURL = baseURL
	}

	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Fetcher{client: client, maxRetries: maxRetries}, nil
}

// SearchRepositories 调用 /search/repositories
// page 中的零值字段不会出现在请求参数里
func (f *Fetcher) SearchRepositories(ctx context.Context, q string, page domain.Pagination) ([]domain.RepositoryRecord, error) {
	opts := &github.SearchOptions{
		Sort:  page.Sort,
		Order: page.Order,
		ListOptions: github.ListOptions{
			Page:    page.Page,
			PerPage: page.PerPage,
		},
	}

	var result *github.RepositoriesSearchResult
	err := f.withRetry(ctx, func() error {
		var apiErr error
		result, _, apiErr = f.client.Search.Repositories(ctx, q, opts)
		return apiErr
	})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeUpstreamFetch, "GitHub API 调用失败", err)
	}

	records := make([]domain.RepositoryRecord, 0, len(result.Repositories))
	for _, item := range result.Repositories {
		records = append(records, toRecord(item))
	}
	return records, nil
}

// GetRepository 调用 /repos/{owner}/{repo}
func (f *Fetcher) GetRepository(ctx context.Context, owner, name string) (domain.RepositoryRecord, error) {
	var repo *github.Repository
	err := f.withRetry(ctx, func() error {
		var apiErr error
		repo, _, apiErr = f.client.Repositories.Get(ctx, owner, name)
		return apiErr
	})
	if err != nil {
		return domain.RepositoryRecord{}, common.WrapError(common.ErrCodeUpstreamFetch, "GitHub API 调用失败", err)
	}
	return toRecord(repo), nil
}

func (f *Fetcher) withRetry(ctx context.Context, fn common.RetryableFunc) error {
	return common.Do(ctx, fn,
		common.WithMaxRetries(f.maxRetries),
		common.WithInitialDelay(time.Second),
		common.WithRetryIf(isRetryable),
	)
}

// isRetryable 只重试网络错误和 5xx，限流与其它 4xx 直接失败
func isRetryable(err error) bool {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return false
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return false
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func toRecord(item *github.Repository) domain.RepositoryRecord {
	return domain.RepositoryRecord{
		ID:              item.GetID(),
		GitURL:          item.GetGitURL(),
		FullName:        item.GetFullName(),
		Description:     item.GetDescription(),
		Language:        item.GetLanguage(),
		CreatedAt:       item.GetCreatedAt().Time,
		UpdatedAt:       item.GetUpdatedAt().Time,
		StargazersCount: item.GetStargazersCount(),
		ForksCount:      item.GetForksCount(),
	}
}
