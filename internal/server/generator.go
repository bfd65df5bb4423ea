package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/pixtrix-kit/pkg/domain"
	"github.com/shouni/pixtrix-kit/pkg/imgutil"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

// Generator はプロンプトから画像を生成し、data URL の一覧を返します。
type Generator interface {
	Generate(ctx context.Context, prompt, aspect string) ([]string, error)
}

// ImageModel は画像生成に使う Gemini クライアントの機能です。gemini.GenerativeModel が満たします。
type ImageModel interface {
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

// GeminiGenerator は Gemini の画像モデルでスロット数ぶんの画像を並列に生成します。
type GeminiGenerator struct {
	aiClient ImageModel
	model    string
	count    int
}

// NewGeminiGenerator は GeminiGenerator を初期化するのだ。
func NewGeminiGenerator(aiClient ImageModel, model string) (*GeminiGenerator, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (ImageModel) is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &GeminiGenerator{aiClient: aiClient, model: model, count: domain.SlotCount}, nil
}

// Generate は画像を生成します。一部だけ失敗した場合は成功した分を順序どおり返します。
func (g *GeminiGenerator) Generate(ctx context.Context, prompt, aspect string) ([]string, error) {
	results := make([]string, g.count)
	var (
		mu   sync.Mutex
		errs []error
	)

	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < g.count; i++ {
		eg.Go(func() error {
			url, err := g.generateOne(egCtx, prompt, aspect)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				slog.WarnContext(ctx, "画像生成に失敗しました", "index", i, "error", err)
				return nil
			}
			results[i] = url
			return nil
		})
	}
	_ = eg.Wait()

	images := make([]string, 0, g.count)
	for _, u := range results {
		if u != "" {
			images = append(images, u)
		}
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("Gemini画像生成エラー: %w", errors.Join(errs...))
	}
	return images, nil
}

func (g *GeminiGenerator) generateOne(ctx context.Context, prompt, aspect string) (string, error) {
	parts := []*genai.Part{{Text: prompt}}
	resp, err := g.aiClient.GenerateWithParts(ctx, g.model, parts, gemini.GenerateOptions{AspectRatio: aspect})
	if err != nil {
		return "", err
	}
	data, mimeType, err := parseImage(resp)
	if err != nil {
		return "", err
	}
	return imgutil.EncodeDataURL(data, mimeType), nil
}

// parseImage は応答の候補から最初のインライン画像を取り出します。
func parseImage(resp *gemini.Response) ([]byte, string, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, "", fmt.Errorf("invalid response")
	}
	for _, candidate := range resp.RawResponse.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, part.InlineData.MIMEType, nil
			}
		}
	}
	return nil, "", fmt.Errorf("no image data")
}
