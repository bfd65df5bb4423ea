package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/pixtrix-kit/pkg/domain"
	"github.com/shouni/pixtrix-kit/pkg/transport"
	"golang.org/x/time/rate"
)

// 補助エンドポイントのパスです。
const (
	PathUsername = "/api/account/username"
	PathAccount  = "/api/account"
	PathSendCode = "/send_verification_code"
	PathSignup   = "/signup"
)

// ユーザー向けの既定メッセージです。
const (
	MsgUnknown      = "An unknown error occurred."
	MsgCodeSent     = "Verification code sent to your email"
	MsgCodeFailed   = "Failed to send code"
	MsgSignupFailed = "An error occurred. Please try again."
)

// DefaultCooldown は認証コード再送までの待ち時間です。
const DefaultCooldown = 60 * time.Second

// ErrEmptyUsername は空のユーザー名で変更しようとしたときのエラーです。
var ErrEmptyUsername = errors.New("username must not be empty")

// CooldownError は認証コードの再送待ち中であることを示します。
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("Resend after %ds", int(e.Remaining.Round(time.Second).Seconds()))
}

// Client はアカウント管理系のエンドポイントを呼び出します。
type Client struct {
	endpoint *transport.Endpoint
	limiter  *rate.Limiter
	now      func() time.Time

	loginPath string
	homePath  string
}

// Option は Client の設定を変更します。
type Option func(*Client)

// WithCooldown は認証コード再送の待ち時間を設定します。
func WithCooldown(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithClock は時刻の取得元を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLoginPath は登録完了後の遷移先を設定します。
func WithLoginPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.loginPath = path
		}
	}
}

// New は Client を初期化します。
func New(endpoint *transport.Endpoint, opts ...Option) (*Client, error) {
	if endpoint == nil {
		return nil, fmt.Errorf("endpoint is required")
	}
	c := &Client{
		endpoint:  endpoint,
		limiter:   rate.NewLimiter(rate.Every(DefaultCooldown), 1),
		now:       time.Now,
		loginPath: "/login",
		homePath:  "/",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ChangeUsername はユーザー名を変更します。前後の空白は取り除きます。
func (c *Client) ChangeUsername(ctx context.Context, name string) (*domain.APIResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyUsername
	}

	resp, err := c.endpoint.SendJSON(ctx, http.MethodPut, PathUsername, map[string]string{"username": name})
	if err != nil {
		return nil, err
	}
	result, err := decodeResult(resp)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		result.Message = result.MessageOr(MsgUnknown)
	}
	slog.InfoContext(ctx, "ユーザー名の変更を要求しました", "success", result.Success)
	return result, nil
}

// DeleteAccount はアカウントを削除します。成功時はトップへの遷移先を付けて返します。
func (c *Client) DeleteAccount(ctx context.Context) (*domain.APIResult, error) {
	resp, err := c.endpoint.SendJSON(ctx, http.MethodDelete, PathAccount, nil)
	if err != nil {
		return nil, err
	}
	result, err := decodeResult(resp)
	if err != nil {
		return nil, err
	}
	if result.Success {
		result.RedirectURL = c.homePath
	} else {
		result.Message = result.MessageOr(MsgUnknown)
	}
	slog.InfoContext(ctx, "アカウント削除を要求しました", "success", result.Success)
	return result, nil
}

// CooldownRemaining は認証コードを再送できるまでの残り時間を返します。
func (c *Client) CooldownRemaining() time.Duration {
	now := c.now()
	r := c.limiter.ReserveN(now, 1)
	defer r.CancelAt(now)
	return r.DelayFrom(now)
}

// SendVerificationCode は認証コードをメールで送信します。
// 成功、またはサーバーが待機を求めたときは再送待ちを開始します。
// それ以外の失敗では再送待ちを開始しません。
func (c *Client) SendVerificationCode(ctx context.Context, email string) (*domain.APIResult, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	now := c.now()
	r := c.limiter.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return nil, &CooldownError{Remaining: d}
	}

	resp, err := c.endpoint.SendJSON(ctx, http.MethodPost, PathSendCode, map[string]string{"email": email})
	if err != nil {
		r.CancelAt(now)
		return nil, err
	}
	result, err := decodeResult(resp)
	if err != nil {
		r.CancelAt(now)
		return nil, err
	}

	if resp.StatusCode < 300 && result.Success {
		result.Message = result.MessageOr(MsgCodeSent)
		slog.InfoContext(ctx, "認証コードを送信しました")
		return result, nil
	}

	result.Success = false
	result.Message = result.MessageOr(MsgCodeFailed)
	if !strings.Contains(strings.ToLower(result.Message), "wait") {
		r.CancelAt(now)
	}
	slog.WarnContext(ctx, "認証コードの送信に失敗しました", "status", resp.StatusCode, "message", result.Message)
	return result, nil
}

// Signup は入力を検証してから新規登録を行います。
// 成功時はログイン画面への遷移先を付けて返します。
func (c *Client) Signup(ctx context.Context, form SignupForm) (*domain.APIResult, error) {
	form = form.normalized()
	if err := ValidateSignup(form); err != nil {
		return nil, err
	}

	resp, err := c.endpoint.PostMultipart(ctx, PathSignup, form.Fields())
	if err != nil {
		return nil, err
	}
	result, err := decodeResult(resp)
	if err != nil {
		return nil, err
	}
	if result.Success {
		result.RedirectURL = c.loginPath
	} else {
		result.Message = result.MessageOr(MsgSignupFailed)
	}
	slog.InfoContext(ctx, "新規登録を要求しました", "success", result.Success)
	return result, nil
}

func decodeResult(resp *transport.Response) (*domain.APIResult, error) {
	var result domain.APIResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("応答の解析に失敗しました (status %d): %w", resp.StatusCode, err)
	}
	return &result, nil
}
