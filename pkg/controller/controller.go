package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shouni/pixtrix-kit/pkg/domain"
)

// noticeTitle はダイアログの見出しです。
const noticeTitle = "SYSTEM ALERT"

// Status は Submit の結果種別です。
type Status int

const (
	// StatusSkipped は別の送信が処理中だったため何もしなかったことを示します。
	StatusSkipped Status = iota
	// StatusBlocked は残高不足で送信前に止めたことを示します。
	StatusBlocked
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusBlocked:
		return "blocked"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome は1回の Submit で起きたことをまとめたものです。
type Outcome struct {
	Status     Status
	Kind       domain.ErrorKind
	StatusCode int
	// Slots は処理後の各スロットの状態です。Skipped のときは nil です。
	Slots  []domain.Slot
	Notice *domain.Notice
	Err    *GenerationError
}

// Filled は画像が入ったスロットだけを返します。
func (o Outcome) Filled() []domain.Slot {
	var filled []domain.Slot
	for _, s := range o.Slots {
		if s.State == domain.SlotFilled {
			filled = append(filled, s)
		}
	}
	return filled
}

// Controller は1つの生成フォームに紐づく生成リクエストの制御役です。
// 処理中フラグはインスタンスごとに持つため、複数のコントローラーは互いに干渉しません。
type Controller struct {
	client GenerationClient
	view   View
	opts   Options

	inFlight atomic.Bool

	mu      sync.Mutex
	balance int
}

// New は依存関係を注入して Controller を初期化します。
// balance はサーバーから受け取ったクレジット残高のキャッシュ値です。
func New(client GenerationClient, view View, balance int, opts ...Option) (*Controller, error) {
	if client == nil {
		return nil, fmt.Errorf("client (GenerationClient) is required")
	}
	if view == nil {
		return nil, fmt.Errorf("view (View) is required")
	}
	if balance < 0 {
		balance = 0
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Controller{
		client:  client,
		view:    view,
		opts:    o,
		balance: balance,
	}
	view.SetCreditBadge(balance)
	view.SetFormEnabled(true)
	view.SetSubmitLabel(IdleLabel)
	for i := 0; i < domain.SlotCount; i++ {
		view.SetSlot(domain.EmptySlot(i))
	}
	return c, nil
}

// Balance はキャッシュしているクレジット残高を返します。
// 表示用の値であり、認可判断には使えません。
func (c *Controller) Balance() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance
}

// SetBalance はサーバーから得た残高でキャッシュとバッジを更新します。
func (c *Controller) SetBalance(n int) {
	if n < 0 {
		n = 0
	}
	c.mu.Lock()
	c.balance = n
	c.mu.Unlock()
	c.view.SetCreditBadge(n)
}

// InFlight は生成リクエストが処理中かどうかを返します。
func (c *Controller) InFlight() bool {
	return c.inFlight.Load()
}

// Submit はフォームを生成エンドポイントへ送信し、結果を画面に反映します。
// 処理中の二重送信は何もせず StatusSkipped を返します。
// 失敗はすべてここで回収され、呼び出し元へは Outcome として返るのだ。
func (c *Controller) Submit(ctx context.Context, form domain.GenerationForm) Outcome {
	if !c.inFlight.CompareAndSwap(false, true) {
		slog.DebugContext(ctx, "生成処理中のため送信を無視します")
		return Outcome{Status: StatusSkipped}
	}

	c.mu.Lock()
	prev := c.balance
	if prev <= 0 {
		c.mu.Unlock()
		c.inFlight.Store(false)
		return c.block(ctx)
	}
	c.balance = prev - 1
	c.mu.Unlock()

	// 楽観的更新: 応答を待たずに画面を進めます。
	c.view.SetCreditBadge(prev - 1)
	for i := 0; i < domain.SlotCount; i++ {
		c.view.SetSlot(domain.EmptySlot(i))
		c.view.SetSlot(domain.LoadingSlot(i))
	}
	c.view.SetFormEnabled(false)
	c.view.SetSubmitLabel(BusyLabel)
	defer c.cleanup()

	slog.InfoContext(ctx, "生成リクエストを送信します", "balance", prev-1, "aspect", form.AspectRatio)

	reply, err := c.client.Generate(ctx, form)
	if err != nil {
		return c.fail(ctx, prev, &GenerationError{
			Kind:    domain.KindTransport,
			Message: MsgTransport,
			Cause:   err,
		})
	}

	images, gerr := interpret(reply)
	if gerr != nil {
		return c.fail(ctx, prev, gerr)
	}

	slots := c.applyImages(ctx, images)
	out := Outcome{
		Status:     StatusSucceeded,
		StatusCode: reply.StatusCode,
		Slots:      slots,
	}
	slog.InfoContext(ctx, "生成が完了しました", "status", reply.StatusCode, "images", len(out.Filled()))
	return out
}

// block は残高不足を通知します。ネットワークには一切触れません。
func (c *Controller) block(ctx context.Context) Outcome {
	notice := domain.Notice{
		Kind:        domain.KindInsufficientCredit,
		Title:       noticeTitle,
		Message:     MsgNoCreditMember,
		RedirectURL: c.opts.PurchaseURL,
	}
	if c.opts.Mode == ModeGuest {
		notice.Message = MsgNoCreditGuest
		notice.RedirectURL = c.opts.LoginURL
	}
	c.view.ShowNotice(notice)

	slog.InfoContext(ctx, "クレジット不足のため送信を中止しました", "redirect", notice.RedirectURL)
	return Outcome{
		Status: StatusBlocked,
		Kind:   domain.KindInsufficientCredit,
		Notice: &notice,
		Err:    &GenerationError{Kind: domain.KindInsufficientCredit, Message: notice.Message},
	}
}

// fail は楽観的更新を巻き戻し、通知を表示します。
func (c *Controller) fail(ctx context.Context, prev int, gerr *GenerationError) Outcome {
	c.mu.Lock()
	c.balance = prev
	c.mu.Unlock()
	c.view.SetCreditBadge(prev)

	slots := make([]domain.Slot, domain.SlotCount)
	for i := range slots {
		slots[i] = domain.EmptySlot(i)
		c.view.SetSlot(slots[i])
	}

	notice := domain.Notice{
		Kind:    gerr.Kind,
		Title:   noticeTitle,
		Message: gerr.Message,
	}
	if gerr.Kind == domain.KindAuthorization {
		notice.RedirectURL = c.opts.LoginURL
	}
	c.view.ShowNotice(notice)

	slog.WarnContext(ctx, "生成に失敗したためクレジットを戻しました",
		"kind", gerr.Kind.String(),
		"status", gerr.StatusCode,
		"balance", prev,
		"error", gerr)

	return Outcome{
		Status:     StatusFailed,
		Kind:       gerr.Kind,
		StatusCode: gerr.StatusCode,
		Slots:      slots,
		Notice:     &notice,
		Err:        gerr,
	}
}

// applyImages は先頭から順に画像をスロットへ割り当てます。
// 画像の無いスロットは明示的に空へ戻すのだ。
func (c *Controller) applyImages(ctx context.Context, images []string) []domain.Slot {
	if len(images) > domain.SlotCount {
		slog.WarnContext(ctx, "スロット数を超える画像は無視します", "received", len(images), "slots", domain.SlotCount)
	}

	slots := make([]domain.Slot, domain.SlotCount)
	for i := range slots {
		if i < len(images) && images[i] != "" {
			slots[i] = domain.FilledSlot(i, images[i])
		} else {
			slots[i] = domain.EmptySlot(i)
		}
		c.view.SetSlot(slots[i])
	}
	return slots
}

// cleanup は成功・失敗にかかわらずフォームを操作可能な状態へ戻します。
// 画面を戻してからフラグを下ろすことで、次の送信と後始末が交錯しないようにしています。
func (c *Controller) cleanup() {
	c.view.SetFormEnabled(true)
	c.view.SetSubmitLabel(IdleLabel)
	c.inFlight.Store(false)
}
