package domain

// マルチパートフォームのフィールド名です。バックエンドの request.form と一致させます。
const (
	FieldPrompt = "prompt"
	FieldAspect = "aspect"
)

// GenerationForm はユーザーが送信する画像生成フォームの内容です。
type GenerationForm struct {
	Prompt      string
	AspectRatio string
}

// Fields はフォームをマルチパートのフィールドへ展開します。
// 空のアスペクト比はフィールドごと省略するのだ。
func (f GenerationForm) Fields() map[string]string {
	fields := map[string]string{FieldPrompt: f.Prompt}
	if f.AspectRatio != "" {
		fields[FieldAspect] = f.AspectRatio
	}
	return fields
}

// GenerationPayload は生成エンドポイントの成功レスポンスです。
// Images は 0〜2 件の画像URL（data URL を含む）を順序どおりに保持します。
type GenerationPayload struct {
	Images []string `json:"images"`
}

// ErrorPayload は生成エンドポイントの失敗レスポンスです。
// 補助エンドポイントは message を使うため、両方を受け付けます。
type ErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Text はサーバーが返した人間向けメッセージを返します。無ければ空文字です。
func (p ErrorPayload) Text() string {
	if p.Error != "" {
		return p.Error
	}
	return p.Message
}

// APIResult はアカウント管理系エンドポイントの共通レスポンスです。
type APIResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	// RedirectURL はクライアント側で決まる遷移先です（サーバーは返しません）。
	RedirectURL string `json:"-"`
}

// MessageOr はサーバーのメッセージ、無ければ fallback を返します。
func (r APIResult) MessageOr(fallback string) string {
	if r.Message != "" {
		return r.Message
	}
	return fallback
}
