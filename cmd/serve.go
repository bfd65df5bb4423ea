package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/pixtrix-kit/internal/builder"
)

var serveAddr string

// serveCmd は開発用の生成エンドポイントを起動するのだ。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "開発用の生成エンドポイントを起動するのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.Server.GeminiAPIKey == "" {
			return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv, err := builder.BuildServer(ctx, appConfig)
		if err != nil {
			return err
		}
		addr := appConfig.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "待ち受けるアドレスなのだ（省略時は server.addr）。")
}
