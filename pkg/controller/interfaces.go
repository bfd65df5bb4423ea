package controller

import (
	"context"

	"github.com/shouni/pixtrix-kit/pkg/domain"
)

// View はコントローラーが操作する画面状態（ビューモデル）の窓口です。
// 描画面を持たない実装に差し替えることで、コアロジックを単体でテストできます。
type View interface {
	// SetCreditBadge はクレジットバッジの表示値を更新します。
	SetCreditBadge(n int)
	// SetSlot は指定スロットの状態を更新します。
	SetSlot(slot domain.Slot)
	// SetFormEnabled は送信ボタンと入力欄の有効・無効を切り替えます。
	SetFormEnabled(enabled bool)
	// SetSubmitLabel は送信ボタンのラベルを更新します。
	SetSubmitLabel(label string)
	// ShowNotice は確認ダイアログを表示します。
	ShowNotice(notice domain.Notice)
}

// GenerationClient は生成エンドポイントへの送信を担当します。
// error が返るのはサーバーから応答が得られなかった場合だけです。
// 4xx/5xx は Reply として返します。
type GenerationClient interface {
	Generate(ctx context.Context, form domain.GenerationForm) (*Reply, error)
}

// Reply は生成エンドポイントの生の応答です。
type Reply struct {
	StatusCode int
	Body       []byte
}

// OK は成功ステータスかどうかを返します。
func (r *Reply) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
