package cmd

import (
	"fmt"
	"log/slog"
	"os"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/pixtrix-kit/internal/config"
)

var appConfig *config.Config

// preRunAppE は設定を読み込み、環境に合わせたロガーを用意するのだ。
// --config と --verbose は clibase の共通フラグをそのまま使うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(clibase.Flags.ConfigFile)
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	appConfig = cfg
	slog.SetDefault(setupLogger(cfg.Env, clibase.Flags.Verbose))
	return nil
}

func setupLogger(env string, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch env {
	case config.EnvLocal, config.EnvDev:
		level = slog.LevelDebug
	case config.EnvProd:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
func Execute() {
	clibase.Execute(
		"pixtrix",
		nil,
		preRunAppE,
		generateCmd,
		accountCmd,
		codeCmd,
		signupCmd,
		serveCmd,
	)
}
