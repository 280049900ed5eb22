package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github-repo-scorer/internal/adapter/analyzer"
	"github-repo-scorer/internal/adapter/cache"
	"github-repo-scorer/internal/adapter/github"
	"github-repo-scorer/internal/config"
	"github-repo-scorer/internal/domain"
	"github-repo-scorer/internal/logging"
	"github-repo-scorer/internal/service"

	"github.com/spf13/cobra"
)

// 调试工具：直接调用搜索并以表格打印评分明细，不启动 HTTP 服务
func main() {
	if err := debugCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func debugCmd() *cobra.Command {
	var (
		language string
		created  string
		limit    int
		exclude  string
	)

	cmd := &cobra.Command{
		Use:          "repo-scorer-debug",
		Short:        "🔍 调试模式：搜索仓库并打印评分明细",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("")
			if err != nil {
				return err
			}
			excluded, err := domain.ParseLimitedExclusions(exclude)
			if err != nil {
				return err
			}

			fetcher, err := github.NewFetcher(cfg.GitHub.Token, github.Options{
				BaseURL:    cfg.GitHub.BaseURL,
				Timeout:    cfg.GitHub.Timeout.Std(),
				MaxRetries: cfg.GitHub.MaxRetries,
			})
			if err != nil {
				return err
			}
			logger := logging.New("warn", "text")
			svc := service.NewRepositoryService(fetcher, analyzer.NewRepoScorer(),
				cache.NewTTLCache(cfg.Cache.TTL.Std(), cfg.Cache.MaxEntries), cfg.Cache.TTL.Std(), logger)

			fmt.Fprintf(cmd.ErrOrStderr(), "📥 正在搜索 language=%s created>=%s ...\n", language, created)
			start := time.Now()
			repos, err := svc.FetchAllRepositories(cmd.Context(), language, created,
				domain.Pagination{PerPage: limit, Sort: "stars", Order: "desc"}, excluded)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✅ 获取 %d 个项目，耗时 %s\n\n", len(repos), time.Since(start).Round(time.Millisecond))

			printTable(cmd.OutOrStdout(), repos)
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "go", "编程语言")
	cmd.Flags().StringVar(&created, "created", time.Now().AddDate(0, -1, 0).Format(time.DateOnly), "创建日期下限 (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "每页数量")
	cmd.Flags().StringVarP(&exclude, "exclude", "e", "", "剔除的评分维度，最多两个")
	return cmd
}

func printTable(out io.Writer, repos []domain.ScoredRepository) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REPO\tSTARS\tFORKS\tUPDATED\tSTARS_PTS\tFORKS_PTS\tRECENCY_PTS\tSCORE")
	for _, r := range repos {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%.2f\t%.2f\t%.2f\t%.2f\n",
			r.FullName, r.StargazersCount, r.ForksCount, r.UpdatedAt.Format(time.DateOnly),
			r.Breakdown.Stars.Value, r.Breakdown.Forks.Value, r.Breakdown.Recency.Value, r.Score)
	}
	w.Flush()
}
