package transport

import (
	"context"
	"fmt"

	"github.com/shouni/pixtrix-kit/pkg/controller"
	"github.com/shouni/pixtrix-kit/pkg/domain"
)

// 利用者の種別ごとの生成エンドポイントのパスです。
const (
	GuestGenerationPath  = "/"
	MemberGenerationPath = "/home"
)

// GenerationEndpoint は controller.GenerationClient の HTTP 実装です。
type GenerationEndpoint struct {
	endpoint *Endpoint
	path     string
}

// NewGenerationEndpoint は利用者の種別に応じた送信先で GenerationEndpoint を作成します。
func NewGenerationEndpoint(endpoint *Endpoint, mode controller.Mode) (*GenerationEndpoint, error) {
	if endpoint == nil {
		return nil, fmt.Errorf("endpoint is required")
	}
	path := MemberGenerationPath
	if mode == controller.ModeGuest {
		path = GuestGenerationPath
	}
	return &GenerationEndpoint{endpoint: endpoint, path: path}, nil
}

// Path は送信先のパスを返します。
func (g *GenerationEndpoint) Path() string {
	return g.path
}

// Generate はフォームを multipart で送信します。
// 応答があればステータスにかかわらず Reply を返し、分類はコントローラーに任せるのだ。
func (g *GenerationEndpoint) Generate(ctx context.Context, form domain.GenerationForm) (*controller.Reply, error) {
	resp, err := g.endpoint.PostMultipart(ctx, g.path, form.Fields())
	if err != nil {
		return nil, err
	}
	return &controller.Reply{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}
