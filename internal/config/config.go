package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shouni/go-utils/envutil"
	"github.com/shouni/pixtrix-kit/pkg/controller"
)

// デフォルト値の定義なのだ
const (
	DefaultImageModel  = "gemini-3-pro-image-preview"
	DefaultHTTPTimeout = 30 * time.Second
)

// 実行環境の名前です。ログレベルの切り替えに使います。
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config はクライアントと開発用サーバーの設定です。
type Config struct {
	Env          string        `yaml:"env" env:"PIXTRIX_ENV" env-default:"local" env-description:"local, dev or prod"`
	BaseURL      string        `yaml:"base_url" env:"PIXTRIX_BASE_URL" env-default:"http://127.0.0.1:8080" env-description:"backend base URL"`
	Mode         string        `yaml:"mode" env:"PIXTRIX_MODE" env-default:"member" env-description:"guest or member"`
	Credits      int           `yaml:"credits" env:"PIXTRIX_CREDITS" env-default:"2" env-description:"cached credit balance shown on the badge"`
	LoginPath    string        `yaml:"login_path" env:"PIXTRIX_LOGIN_PATH" env-default:"/login"`
	PurchasePath string        `yaml:"purchase_path" env:"PIXTRIX_PURCHASE_PATH" env-default:"/add_credits"`
	OutputDir    string        `yaml:"output_dir" env:"PIXTRIX_OUTPUT_DIR" env-default:"output/images" env-description:"local directory or gs:// prefix"`
	HTTPTimeout  time.Duration `yaml:"http_timeout" env:"PIXTRIX_HTTP_TIMEOUT" env-default:"30s" env-description:"timeout for image downloads"`
	AllowPrivate bool          `yaml:"allow_private" env:"PIXTRIX_ALLOW_PRIVATE" env-default:"false" env-description:"allow downloading images from private networks"`

	Server ServerConfig `yaml:"server"`
}

// ServerConfig は開発用の生成エンドポイントの設定です。
type ServerConfig struct {
	Addr              string        `yaml:"addr" env:"PIXTRIX_SERVER_ADDR" env-default:":8080"`
	GuestCredits      int           `yaml:"guest_credits" env:"PIXTRIX_GUEST_CREDITS" env-default:"2"`
	GuestCreditTTL    time.Duration `yaml:"guest_credit_ttl" env:"PIXTRIX_GUEST_CREDIT_TTL" env-default:"24h"`
	GenerationTimeout time.Duration `yaml:"generation_timeout" env:"PIXTRIX_GENERATION_TIMEOUT" env-default:"2m"`
	Mongo             MongoConfig   `yaml:"mongo"`

	// Gemini の認証情報は設定ファイルに書かず、環境変数から読むのだ。
	GeminiAPIKey     string `yaml:"-"`
	GeminiImageModel string `yaml:"-"`
}

// MongoConfig は生成履歴を MongoDB に保存するときの接続設定です。
type MongoConfig struct {
	Enabled  bool   `yaml:"enabled" env:"PIXTRIX_MONGO_ENABLED" env-default:"false"`
	URI      string `yaml:"uri" env:"PIXTRIX_MONGO_URI" env-default:"mongodb://127.0.0.1:27017"`
	Database string `yaml:"database" env:"PIXTRIX_MONGO_DATABASE" env-default:"pixtrix"`
}

// Load は設定ファイル（省略可）と環境変数から Config を読み込みます。
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("config: %w; %s", err, desc)
	}

	cfg.Server.GeminiAPIKey = envutil.GetEnv("GEMINI_API_KEY", "")
	cfg.Server.GeminiImageModel = envutil.GetEnv("GEMINI_IMAGE_MODEL", DefaultImageModel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は値の組み合わせを検証します。
func (c *Config) Validate() error {
	switch controller.Mode(c.Mode) {
	case controller.ModeGuest, controller.ModeMember:
	default:
		return fmt.Errorf("config: mode must be %q or %q, got %q", controller.ModeGuest, controller.ModeMember, c.Mode)
	}
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("config: unknown env %q", c.Env)
	}
	if c.Credits < 0 {
		return fmt.Errorf("config: credits must not be negative")
	}
	if c.Server.GuestCredits < 0 {
		return fmt.Errorf("config: server.guest_credits must not be negative")
	}
	return nil
}

// ControllerOptions は設定をコントローラーのオプションへ変換します。
func (c *Config) ControllerOptions() []controller.Option {
	return []controller.Option{
		controller.WithMode(controller.Mode(c.Mode)),
		controller.WithLoginURL(c.LoginPath),
		controller.WithPurchaseURL(c.PurchasePath),
	}
}
