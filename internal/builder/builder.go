package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"google.golang.org/genai"

	"github.com/shouni/pixtrix-kit/internal/config"
	"github.com/shouni/pixtrix-kit/internal/server"
	"github.com/shouni/pixtrix-kit/pkg/account"
	"github.com/shouni/pixtrix-kit/pkg/controller"
	"github.com/shouni/pixtrix-kit/pkg/download"
	"github.com/shouni/pixtrix-kit/pkg/imgutil"
	"github.com/shouni/pixtrix-kit/pkg/transport"
)

// BuildEndpoint はセッションを保持する Endpoint を構築します。
func BuildEndpoint(cfg *config.Config) (*transport.Endpoint, error) {
	ep, err := transport.New(cfg.BaseURL, transport.WithCookieJar())
	if err != nil {
		return nil, fmt.Errorf("エンドポイントの初期化に失敗しました: %w", err)
	}
	return ep, nil
}

// BuildController は生成フォーム1つ分のコントローラーを構築します。
func BuildController(ep *transport.Endpoint, cfg *config.Config, view controller.View) (*controller.Controller, error) {
	gen, err := transport.NewGenerationEndpoint(ep, controller.Mode(cfg.Mode))
	if err != nil {
		return nil, err
	}
	return controller.New(gen, view, cfg.Credits, cfg.ControllerOptions()...)
}

// BuildAccountClient はアカウント管理用のクライアントを構築します。
func BuildAccountClient(ep *transport.Endpoint, cfg *config.Config) (*account.Client, error) {
	return account.New(ep, account.WithLoginPath(cfg.LoginPath))
}

// BuildSaver は画像保存用の Saver を構築します。
// 保存先が gs:// のときだけ GCS の OutputWriter を用意するのだ。
func BuildSaver(ctx context.Context, cfg *config.Config, jpeg bool) (*download.Saver, error) {
	writer := download.RoutingWriter{Local: download.LocalWriter{}}
	if download.IsRemote(cfg.OutputDir) {
		factory, err := gcsfactory.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
		}
		remote, err := factory.OutputWriter()
		if err != nil {
			return nil, fmt.Errorf("OutputWriterの取得に失敗しました: %w", err)
		}
		writer.Remote = remote
	}

	opts := []download.Option{
		download.WithBaseURL(cfg.BaseURL),
		download.WithAllowPrivate(cfg.AllowPrivate),
	}
	if jpeg {
		opts = append(opts, download.WithJPEG(imgutil.DefaultJPEGQuality))
	}
	// allow_private のときは httpkit 側の接続時検証も外す
	fetcher := httpkit.New(cfg.HTTPTimeout, httpkit.WithSkipNetworkValidation(cfg.AllowPrivate))
	return download.NewSaver(fetcher, writer, opts...)
}

// InitializeAIClient は gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	const defaultGeminiTemperature = float32(0.8)
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// BuildHistory は設定に応じて履歴の保存先を選びます。
// MongoDB に接続できなければメモリにフォールバックします。
func BuildHistory(ctx context.Context, cfg config.MongoConfig) server.HistoryStore {
	if !cfg.Enabled {
		slog.InfoContext(ctx, "using in-memory history")
		return server.NewMemoryHistory()
	}
	store, err := server.NewMongoHistory(ctx, cfg.URI, cfg.Database)
	if err != nil {
		slog.ErrorContext(ctx, "falling back to memory", "db", cfg.Database, "error", err)
		return server.NewMemoryHistory()
	}
	slog.InfoContext(ctx, "using MongoDB history", "db", cfg.Database)
	return store
}

// BuildServer は開発用の生成エンドポイントを構築します。
func BuildServer(ctx context.Context, cfg *config.Config) (*server.Server, error) {
	aiClient, err := InitializeAIClient(ctx, cfg.Server.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	gen, err := server.NewGeminiGenerator(aiClient, cfg.Server.GeminiImageModel)
	if err != nil {
		return nil, fmt.Errorf("GeminiGeneratorの初期化に失敗しました: %w", err)
	}

	return server.New(gen, BuildHistory(ctx, cfg.Server.Mongo), server.Options{
		GuestCredits:      cfg.Server.GuestCredits,
		GuestCreditTTL:    cfg.Server.GuestCreditTTL,
		GenerationTimeout: cfg.Server.GenerationTimeout,
	})
}
