package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github-repo-scorer/internal/config"
	"github-repo-scorer/internal/logging"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "repo-scorer",
		Short:         "GitHub 仓库热度评分服务",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径 (默认读取 "+config.EnvConfigPath+")")

	root.AddCommand(serveCmd())
	root.AddCommand(scoreCmd())

	return root
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP API 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			logger := logging.New(cfg.Log.Level, cfg.Log.Format)

			// 收到 SIGINT/SIGTERM 后优雅关闭
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return runServe(ctx, cfg, logger)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "监听端口 (默认读取配置)")
	return cmd
}

func scoreCmd() *cobra.Command {
	var exclude string

	cmd := &cobra.Command{
		Use:     "score <owner>/<name>",
		Short:   "获取单个仓库并输出评分 (JSON)",
		Example: "  repo-scorer score golang/go --exclude recency",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := logging.New(cfg.Log.Level, cfg.Log.Format)
			logger.SetOutput(cmd.ErrOrStderr())

			return runScore(cmd.Context(), cmd.OutOrStdout(), cfg, logger, args[0], exclude)
		},
	}

	cmd.Flags().StringVarP(&exclude, "exclude", "e", "", "剔除的评分维度，逗号分隔 (stars,forks,recency，最多两个)")
	return cmd
}
