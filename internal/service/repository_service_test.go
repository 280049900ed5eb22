package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github-repo-scorer/internal/adapter/analyzer"
	"github-repo-scorer/internal/adapter/cache"
	"github-repo-scorer/internal/common"
	"github-repo-scorer/internal/domain"
	"github-repo-scorer/internal/logging"
	"github-repo-scorer/internal/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations for testing
type MockUpstream struct {
	mock.Mock
}

func (m *MockUpstream) SearchRepositories(ctx context.Context, q string, page domain.Pagination) ([]domain.RepositoryRecord, error) {
	args := m.Called(ctx, q, page)
	records, _ := args.Get(0).([]domain.RepositoryRecord)
	return records, args.Error(1)
}

func (m *MockUpstream) GetRepository(ctx context.Context, owner, name string) (domain.RepositoryRecord, error) {
	args := m.Called(ctx, owner, name)
	return args.Get(0).(domain.RepositoryRecord), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string) (domain.ScoredRepository, bool) {
	args := m.Called(key)
	return args.Get(0).(domain.ScoredRepository), args.Bool(1)
}

func (m *MockCache) Set(key string, value domain.ScoredRepository, ttl time.Duration) {
	m.Called(key, value, ttl)
}

func (m *MockCache) SetMany(entries []port.CacheEntry) {
	m.Called(entries)
}

func (m *MockCache) Take(key string) (domain.ScoredRepository, bool) {
	args := m.Called(key)
	return args.Get(0).(domain.ScoredRepository), args.Bool(1)
}

func (m *MockCache) Delete(key string) {
	m.Called(key)
}

func (m *MockCache) Keys() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func record(gitURL string, stars, forks int) domain.RepositoryRecord {
	return domain.RepositoryRecord{
		ID:              1,
		GitURL:          gitURL,
		FullName:        "repo1",
		Description:     "desc1",
		Language:        "JavaScript",
		CreatedAt:       time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		StargazersCount: stars,
		ForksCount:      forks,
	}
}

func newService(up port.Upstream, c port.Cache) *RepositoryService {
	return NewRepositoryService(up, analyzer.NewRepoScorer(), c, time.Hour, logging.Discard())
}

func TestBuildSearchQuery(t *testing.T) {
	assert.Equal(t, "language:JavaScript created:>=2021-01-01", BuildSearchQuery("JavaScript", "2021-01-01"))
	assert.Equal(t, "language:go", BuildSearchQuery("go", ""))
}

func TestRepositoryService_FetchAllRepositories(t *testing.T) {
	page := domain.Pagination{Page: 1, PerPage: 10, Sort: "stars", Order: "desc"}

	tests := []struct {
		name       string
		records    []domain.RepositoryRecord
		excluded   domain.Exclusions
		setupCache func(*MockCache)
		verify     func(*testing.T, []domain.ScoredRepository)
	}{
		{
			name:     "评分并批量写缓存",
			records:  []domain.RepositoryRecord{record("git_url_1", 100000, 50000)},
			excluded: domain.Exclusions{domain.MetricRecency},
			setupCache: func(c *MockCache) {
				c.On("SetMany", mock.MatchedBy(func(entries []port.CacheEntry) bool {
					return len(entries) == 1 && entries[0].Key == "git_url_1" && entries[0].Value.Score == 23.15 && entries[0].TTL == time.Hour
				})).Return().Once()
			},
			verify: func(t *testing.T, got []domain.ScoredRepository) {
				require.Equal(t, 1, len(got))
				assert.InDelta(t, 23.15, got[0].Score, 1e-9)
				assert.Equal(t, domain.MetricScore{}, got[0].Breakdown.Recency)
				assert.Equal(t, "repo1", got[0].FullName)
			},
		},
		{
			name: "保持上游顺序",
			records: []domain.RepositoryRecord{
				record("git://c", 1, 1),
				record("git://a", 400000, 250000),
				record("git://b", 100, 100),
			},
			setupCache: func(c *MockCache) {
				c.On("SetMany", mock.AnythingOfType("[]port.CacheEntry")).Return().Once()
			},
			verify: func(t *testing.T, got []domain.ScoredRepository) {
				require.Equal(t, 3, len(got))
				assert.Equal(t, "git://c", got[0].GitURL)
				assert.Equal(t, "git://a", got[1].GitURL)
				assert.Equal(t, "git://b", got[2].GitURL)
			},
		},
		{
			name:    "空结果",
			records: []domain.RepositoryRecord{},
			setupCache: func(c *MockCache) {
				c.On("SetMany", []port.CacheEntry{}).Return().Once()
			},
			verify: func(t *testing.T, got []domain.ScoredRepository) {
				assert.NotNil(t, got)
				assert.Equal(t, 0, len(got))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := new(MockUpstream)
			c := new(MockCache)
			up.On("SearchRepositories", mock.Anything, "language:JavaScript created:>=2021-01-01", page).
				Return(tt.records, nil).Once()
			tt.setupCache(c)

			got, err := newService(up, c).FetchAllRepositories(context.Background(), "JavaScript", "2021-01-01", page, tt.excluded)

			require.NoError(t, err)
			tt.verify(t, got)
			up.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestRepositoryService_FetchAllRepositories_Error(t *testing.T) {
	up := new(MockUpstream)
	c := new(MockCache)
	networkErr := errors.New("Network Error")
	up.On("SearchRepositories", mock.Anything, "language:JavaScript created:>=2021-01-01", domain.Pagination{}).
		Return(nil, networkErr).Once()

	got, err := newService(up, c).FetchAllRepositories(context.Background(), "JavaScript", "2021-01-01", domain.Pagination{}, nil)

	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, networkErr)
	assert.Equal(t, common.ErrCodeUpstreamFetch, common.CodeOf(err))
	c.AssertNotCalled(t, "SetMany", mock.Anything)
}

func TestRepositoryService_FetchRepositoryInfo_NoCache(t *testing.T) {
	up := new(MockUpstream)
	c := new(MockCache)
	up.On("GetRepository", mock.Anything, "owner", "repo").Return(record("git_url_1", 100, 50), nil).Once()
	c.On("Take", "git_url_1").Return(domain.ScoredRepository{}, false).Once()
	c.On("Set", "git_url_1", mock.AnythingOfType("domain.ScoredRepository"), time.Hour).Return().Once()

	got, err := newService(up, c).FetchRepositoryInfo(context.Background(), "owner", "repo", domain.Exclusions{})

	require.NoError(t, err)
	assert.Equal(t, "git_url_1", got.GitURL)
	assert.Nil(t, got.OldScore)
	assert.Nil(t, got.DiffPercentage)
	up.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestRepositoryService_FetchRepositoryInfo_WithCache(t *testing.T) {
	up := new(MockUpstream)
	c := new(MockCache)

	cachedRecord := record("git_url_1", 200000, 100000)
	// 缓存里的分数与剔除条件无关，会被重新计算
	cached := domain.ScoredRepository{RepositoryRecord: cachedRecord, Score: 0.02}

	up.On("GetRepository", mock.Anything, "owner", "repo").Return(record("git_url_1", 10000, 50000), nil).Once()
	c.On("Take", "git_url_1").Return(cached, true).Once()
	c.On("Set", "git_url_1", mock.MatchedBy(func(v domain.ScoredRepository) bool {
		return v.StargazersCount == 10000
	}), time.Hour).Return().Once()

	got, err := newService(up, c).FetchRepositoryInfo(context.Background(), "owner", "repo", domain.Exclusions{domain.MetricRecency})

	require.NoError(t, err)
	assert.Equal(t, "git_url_1", got.GitURL)
	require.NotNil(t, got.OldScore)
	assert.InDelta(t, 46.3, *got.OldScore, 1e-9)
	require.NotNil(t, got.DiffPercentage)
	assert.Equal(t, -81, *got.DiffPercentage)
	c.AssertExpectations(t)
}

func TestRepositoryService_FetchRepositoryInfo_ZeroOldScore(t *testing.T) {
	up := new(MockUpstream)
	c := new(MockCache)

	up.On("GetRepository", mock.Anything, "owner", "repo").Return(record("git_url_1", 1000, 0), nil).Once()
	c.On("Take", "git_url_1").Return(domain.ScoredRepository{RepositoryRecord: record("git_url_1", 0, 0)}, true).Once()
	c.On("Set", "git_url_1", mock.Anything, time.Hour).Return().Once()

	got, err := newService(up, c).FetchRepositoryInfo(context.Background(), "owner", "repo", domain.Exclusions{domain.MetricRecency})

	require.NoError(t, err)
	require.NotNil(t, got.OldScore)
	assert.Equal(t, 0.0, *got.OldScore)
	assert.Nil(t, got.DiffPercentage)
}

func TestRepositoryService_FetchRepositoryInfo_Error(t *testing.T) {
	up := new(MockUpstream)
	c := new(MockCache)
	upstreamErr := common.WrapError(common.ErrCodeUpstreamFetch, "GitHub API 调用失败", errors.New("Network Error"))
	up.On("GetRepository", mock.Anything, "owner", "repo").Return(domain.RepositoryRecord{}, upstreamErr).Once()

	_, err := newService(up, c).FetchRepositoryInfo(context.Background(), "owner", "repo", nil)

	assert.Same(t, upstreamErr, err)
	c.AssertNotCalled(t, "Take", mock.Anything)
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestRepositoryService_ListThenSingleFetchReportsDrift(t *testing.T) {
	up := new(MockUpstream)
	store := cache.NewTTLCache(time.Hour, 0)
	svc := newService(up, store)

	up.On("SearchRepositories", mock.Anything, "language:go", domain.Pagination{}).
		Return([]domain.RepositoryRecord{record("git://x", 200000, 100000)}, nil).Once()
	up.On("GetRepository", mock.Anything, "octo", "x").
		Return(record("git://x", 10000, 50000), nil).Twice()

	_, err := svc.FetchAllRepositories(context.Background(), "go", "", domain.Pagination{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"git://x"}, store.Keys())

	first, err := svc.FetchRepositoryInfo(context.Background(), "octo", "x", domain.Exclusions{domain.MetricRecency})
	require.NoError(t, err)
	require.NotNil(t, first.DiffPercentage)
	assert.Equal(t, -81, *first.DiffPercentage)

	// 第二次对比的是刚写回的最新结果
	second, err := svc.FetchRepositoryInfo(context.Background(), "octo", "x", domain.Exclusions{domain.MetricRecency})
	require.NoError(t, err)
	require.NotNil(t, second.OldScore)
	assert.Equal(t, first.Score, *second.OldScore)
	require.NotNil(t, second.DiffPercentage)
	assert.Equal(t, 0, *second.DiffPercentage)

	up.AssertExpectations(t)
}
