package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rushteam/feedrank/config"
	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:           "feedrank",
	Short:         "Post recommendation service",
	Long:          "feedrank serves user, post and feed records and ranks posts for a user with a pre-trained classifier.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default $"+config.ConfigPathEnvVar+" or ./config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "feedrank %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// loadConfig 读取配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.Log)
	return cfg, nil
}

// Execute 执行根命令；启动失败与其他错误都以非零状态退出
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var se *core.StartupError
		if errors.As(err, &se) {
			logging.Error().Err(se.Err).Str("stage", se.Stage).Msg("startup failed")
			os.Exit(2)
		}
		logging.Error().Err(err).Msg("feedrank failed")
		os.Exit(1)
	}
}
