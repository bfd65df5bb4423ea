package download

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shouni/netarmor/securenet"
)

// IsSafeURL は SSRF 対策として取得先の URL を検証します。
// 取得できるのは http と https だけで、ネットワークの制限は securenet に任せるのだ。
// allowPrivate が true のときはネットワークの制限を行いません（ローカル開発用）。
func IsSafeURL(rawURL string, allowPrivate bool) (bool, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false, fmt.Errorf("URLパース失敗: %w", err)
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != securenet.SchemeHTTP && scheme != securenet.SchemeHTTPS {
		return false, fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}
	if allowPrivate {
		return true, nil
	}
	return securenet.IsSafeURL(rawURL)
}
