package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shouni/pixtrix-kit/pkg/domain"
)

// GenerationError は生成ワークフローの失敗を分類付きで表します。
type GenerationError struct {
	Kind       domain.ErrorKind
	StatusCode int
	// Message は画面に表示する文言です。
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// interpret はエンドポイントの応答を解析し、画像URLの一覧か分類済みエラーを返します。
func interpret(reply *Reply) ([]string, *GenerationError) {
	if reply == nil {
		return nil, &GenerationError{Kind: domain.KindUnknownServer, Message: MsgUnknown}
	}

	if reply.OK() {
		var payload *domain.GenerationPayload
		err := json.Unmarshal(reply.Body, &payload)
		if err == nil && payload == nil {
			err = fmt.Errorf("レスポンスが JSON オブジェクトではありません")
		}
		if err != nil {
			return nil, &GenerationError{
				Kind:       domain.KindUnknownServer,
				StatusCode: reply.StatusCode,
				Message:    MsgUnknown,
				Cause:      fmt.Errorf("成功レスポンスの解析に失敗しました: %w", err),
			}
		}
		return payload.Images, nil
	}

	var payload domain.ErrorPayload
	if err := json.Unmarshal(reply.Body, &payload); err != nil {
		return nil, &GenerationError{
			Kind:       domain.KindUnknownServer,
			StatusCode: reply.StatusCode,
			Message:    MsgUnknown,
			Cause:      fmt.Errorf("エラーレスポンスの解析に失敗しました: %w", err),
		}
	}

	msg := payload.Text()
	display := msg
	if display == "" {
		display = MsgUnknown
	}
	return nil, &GenerationError{
		Kind:       classify(reply.StatusCode, msg),
		StatusCode: reply.StatusCode,
		Message:    display,
	}
}

// classify はステータスコードとメッセージからエラー分類を決めます。
func classify(status int, msg string) domain.ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return domain.KindAuthorization
	case status == http.StatusForbidden && mentionsLogin(msg):
		return domain.KindAuthorization
	case status >= 400 && status < 500:
		return domain.KindValidation
	default:
		return domain.KindUnknownServer
	}
}

func mentionsLogin(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "log in") || strings.Contains(m, "login") || strings.Contains(m, "logged in")
}
