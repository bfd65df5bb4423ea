package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shouni/pixtrix-kit/pkg/domain"
)

// SessionCookie はゲストのセッションIDを保持するクッキー名です。
const SessionCookie = "pixtrix_session"

const sessionKey = "session_id"

// 応答メッセージです。
const (
	MsgPromptRequired   = "Prompt is required."
	MsgUnsupportedRatio = "Unsupported aspect ratio."
	MsgNoGuestCredit    = "You have used all your free credits. Please log in to continue."
	MsgInProgress       = "Generation already in progress"
	MsgGenerationFailed = "An error occurred while generating images."
)

// DefaultAspect はアスペクト比が省略されたときの値です。
const DefaultAspect = "1:1"

var supportedAspects = map[string]bool{
	"1:1": true, "16:9": true, "9:16": true, "4:3": true, "3:4": true,
}

// Options は Server の設定です。
type Options struct {
	GuestCredits      int
	GuestCreditTTL    time.Duration
	GenerationTimeout time.Duration
	LibraryLimit      int
}

// Server は開発用の生成エンドポイントです。本番のバックエンドと同じ応答契約を守ります。
type Server struct {
	engine    *gin.Engine
	ledger    *Ledger
	generator Generator
	history   HistoryStore
	opts      Options
}

type generateRequest struct {
	Prompt string `form:"prompt"`
	Aspect string `form:"aspect"`
}

// New は依存関係を注入して Server を初期化します。
func New(generator Generator, history HistoryStore, opts Options) (*Server, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator (Generator) is required")
	}
	if history == nil {
		history = NewMemoryHistory()
	}
	if opts.GuestCreditTTL <= 0 {
		opts.GuestCreditTTL = 24 * time.Hour
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 2 * time.Minute
	}
	if opts.LibraryLimit <= 0 {
		opts.LibraryLimit = 20
	}

	s := &Server{
		ledger:    NewLedger(opts.GuestCredits, opts.GuestCreditTTL, opts.GenerationTimeout+time.Minute),
		generator: generator,
		history:   history,
		opts:      opts,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.session)
	// ゲスト用とメンバー用のフォームは同じ処理で受けるのだ
	r.POST("/", s.handleGenerate)
	r.POST("/home", s.handleGenerate)
	r.GET("/credits", s.handleCredits)
	r.GET("/library", s.handleLibrary)
	s.engine = r
	return s, nil
}

// Handler は HTTP ハンドラーを返します。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run は addr で待ち受け、ctx がキャンセルされると穏やかに停止します。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "生成エンドポイントを起動しました", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.InfoContext(ctx, "生成エンドポイントを停止します")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return s.history.Close(shutdownCtx)
}

// session はセッションクッキーを読み、無ければ新しく発行します。
func (s *Server) session(c *gin.Context) {
	id, err := c.Cookie(SessionCookie)
	if err != nil || !validSession(id) {
		id = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, int(s.opts.GuestCreditTTL.Seconds()), "/", "", false, true)
	}
	c.Set(sessionKey, id)
	c.Next()
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

func (s *Server) handleGenerate(c *gin.Context) {
	ctx := c.Request.Context()
	sid := sessionID(c)

	var req generateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgPromptRequired})
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgPromptRequired})
		return
	}
	if req.Aspect == "" {
		req.Aspect = DefaultAspect
	}
	if !supportedAspects[req.Aspect] {
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgUnsupportedRatio})
		return
	}

	remaining, ok := s.ledger.Take(sid)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": MsgNoGuestCredit})
		return
	}
	if !s.ledger.Begin(sid) {
		s.ledger.Refund(sid)
		c.JSON(http.StatusTooManyRequests, gin.H{"error": MsgInProgress})
		return
	}
	defer s.ledger.End(sid)

	genCtx, cancel := context.WithTimeout(ctx, s.opts.GenerationTimeout)
	defer cancel()

	images, err := s.generator.Generate(genCtx, req.Prompt, req.Aspect)
	if err != nil {
		s.ledger.Refund(sid)
		slog.ErrorContext(ctx, "画像生成に失敗したためクレジットを戻しました", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": MsgGenerationFailed})
		return
	}
	if len(images) > domain.SlotCount {
		images = images[:domain.SlotCount]
	}

	record := Generation{
		ID:        uuid.NewString(),
		SessionID: sid,
		Prompt:    req.Prompt,
		Aspect:    req.Aspect,
		Images:    images,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.history.Add(ctx, record); err != nil {
		slog.WarnContext(ctx, "生成履歴の保存に失敗しました", "error", err)
	}

	slog.InfoContext(ctx, "画像を生成しました", "images", len(images), "remaining", remaining)
	c.JSON(http.StatusOK, domain.GenerationPayload{Images: images})
}

func (s *Server) handleCredits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"credits": s.ledger.Remaining(sessionID(c))})
}

func (s *Server) handleLibrary(c *gin.Context) {
	list, err := s.history.List(c.Request.Context(), sessionID(c), s.opts.LibraryLimit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "生成履歴の取得に失敗しました", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history error"})
		return
	}
	if list == nil {
		list = []Generation{}
	}
	c.JSON(http.StatusOK, gin.H{"generations": list})
}

func validSession(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
