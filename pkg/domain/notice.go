package domain

// ErrorKind は生成ワークフローの失敗分類です。
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindInsufficientCredit は送信前にクライアントが検出する残高不足です。
	KindInsufficientCredit
	// KindValidation はサーバーが返すフィールド単位の入力エラーです。
	KindValidation
	// KindAuthorization はログイン画面への遷移を伴う認可エラーです。
	KindAuthorization
	// KindTransport はサーバーから応答が得られなかった通信エラーです。
	KindTransport
	// KindUnknownServer は想定外または解析できないサーバー応答です。
	KindUnknownServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInsufficientCredit:
		return "insufficient-credit"
	case KindValidation:
		return "validation-error"
	case KindAuthorization:
		return "authorization-error"
	case KindTransport:
		return "transport-error"
	case KindUnknownServer:
		return "unknown-server-error"
	default:
		return "unknown"
	}
}

// Notice は確認ボタン付きのブロッキングダイアログです。
// RedirectURL が設定されていれば、確認時にその画面へ遷移します。
type Notice struct {
	Kind        ErrorKind
	Title       string
	Message     string
	RedirectURL string
}

// HasRedirect は確認時に画面遷移が必要かどうかを返します。
func (n Notice) HasRedirect() bool {
	return n.RedirectURL != ""
}
