package controller

// Mode は利用者の種別です。残高不足時の案内先が変わります。
type Mode string

const (
	ModeMember Mode = "member"
	ModeGuest  Mode = "guest"
)

// 送信ボタンのラベルです。
const (
	IdleLabel = "Generate"
	BusyLabel = "Generating.."
)

// ユーザー向けの既定メッセージです。
const (
	MsgNoCreditMember = "You don't have enough credits to generate images."
	MsgNoCreditGuest  = "You have used all your free generations. Please log in to continue."
	MsgTransport      = "An error occurred while generating images."
	MsgUnknown        = "An unknown error occurred."
)

const (
	DefaultLoginURL    = "/login"
	DefaultPurchaseURL = "/add_credits"
)

// Options はコントローラーの挙動を調整します。
type Options struct {
	Mode        Mode
	LoginURL    string
	PurchaseURL string
}

// Option は Options を変更する関数です。
type Option func(*Options)

// WithMode は利用者の種別を設定します。
func WithMode(m Mode) Option {
	return func(o *Options) {
		o.Mode = m
	}
}

// WithLoginURL は認可エラー時の遷移先を設定します。
func WithLoginURL(u string) Option {
	return func(o *Options) {
		if u != "" {
			o.LoginURL = u
		}
	}
}

// WithPurchaseURL は残高不足時の購入画面を設定します。
func WithPurchaseURL(u string) Option {
	return func(o *Options) {
		if u != "" {
			o.PurchaseURL = u
		}
	}
}

func defaultOptions() Options {
	return Options{
		Mode:        ModeMember,
		LoginURL:    DefaultLoginURL,
		PurchaseURL: DefaultPurchaseURL,
	}
}
