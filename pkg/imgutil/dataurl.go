package imgutil

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

const dataURLPrefix = "data:"

// IsDataURL は s が data URL かどうかを返します。
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, dataURLPrefix)
}

// EncodeDataURL は画像データを base64 の data URL にします。
// mimeType が空ならデータから推定するのだ。
func EncodeDataURL(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return dataURLPrefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL は data URL を MIME タイプと中身に分解します。
// base64 以外のエンコードは受け付けません。
func DecodeDataURL(s string) (mimeType string, data []byte, err error) {
	if !IsDataURL(s) {
		return "", nil, fmt.Errorf("data URL ではありません")
	}
	header, payload, ok := strings.Cut(s[len(dataURLPrefix):], ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL の区切りがありません")
	}

	mimeType, enc, ok := strings.Cut(header, ";")
	if !ok || enc != "base64" {
		return "", nil, fmt.Errorf("base64 以外の data URL は未対応です: %q", header)
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("data URL のデコードに失敗しました: %w", err)
	}
	return mimeType, data, nil
}
