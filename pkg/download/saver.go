package download

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/shouni/pixtrix-kit/pkg/domain"
	"github.com/shouni/pixtrix-kit/pkg/imgutil"
	"golang.org/x/sync/errgroup"
)

// Fetcher は URL から画像を取得します。httpkit.Requester が満たします。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Options は保存処理の挙動を調整します。
type Options struct {
	// ConvertJPEG が true なら保存前に JPEG へ再エンコードします。
	ConvertJPEG bool
	Quality     int
	// AllowPrivate はプライベートネットワーク上の画像取得を許可します。
	AllowPrivate bool
	// BaseURL は相対URLの解決に使います。
	BaseURL     string
	Concurrency int
}

// Option は Options を変更する関数です。
type Option func(*Options)

func WithJPEG(quality int) Option {
	return func(o *Options) {
		o.ConvertJPEG = true
		o.Quality = quality
	}
}

func WithAllowPrivate(allow bool) Option {
	return func(o *Options) { o.AllowPrivate = allow }
}

func WithBaseURL(base string) Option {
	return func(o *Options) { o.BaseURL = base }
}

func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// Saved は保存した1枚の情報です。
type Saved struct {
	Slot        domain.Slot
	Path        string
	ContentType string
	Size        int
}

// Saver は生成済みスロットの画像をダウンロード名で保存します。
type Saver struct {
	fetcher Fetcher
	writer  Writer
	opts    Options
}

// NewSaver は Saver を初期化します。fetcher は http(s) の画像を扱うときだけ使います。
func NewSaver(fetcher Fetcher, writer Writer, opts ...Option) (*Saver, error) {
	if writer == nil {
		return nil, fmt.Errorf("writer is required")
	}
	o := Options{Quality: imgutil.DefaultJPEGQuality, Concurrency: domain.SlotCount}
	for _, opt := range opts {
		opt(&o)
	}
	return &Saver{fetcher: fetcher, writer: writer, opts: o}, nil
}

// SaveAll は画像の入ったスロットをすべて dir 以下に並列で保存します。
// 1枚でも失敗すれば残りを中断してエラーを返すのだ。
func (s *Saver) SaveAll(ctx context.Context, slots []domain.Slot, dir string) ([]Saved, error) {
	results := make([]Saved, len(slots))
	saved := make([]bool, len(slots))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.opts.Concurrency)

	for i, slot := range slots {
		if slot.State != domain.SlotFilled || slot.URL == "" {
			continue
		}
		eg.Go(func() error {
			res, err := s.save(egCtx, slot, dir)
			if err != nil {
				return fmt.Errorf("画像 %d の保存に失敗しました: %w", slot.Number(), err)
			}
			results[i] = *res
			saved[i] = true
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]Saved, 0, len(slots))
	for i, ok := range saved {
		if ok {
			out = append(out, results[i])
		}
	}
	slog.InfoContext(ctx, "画像を保存しました", "count", len(out), "dir", dir)
	return out, nil
}

func (s *Saver) save(ctx context.Context, slot domain.Slot, dir string) (*Saved, error) {
	data, contentType, err := s.load(ctx, slot.URL)
	if err != nil {
		return nil, err
	}

	name := slot.DownloadName()
	if s.opts.ConvertJPEG {
		converted, err := imgutil.CompressToJPEG(data, s.opts.Quality)
		if err != nil {
			return nil, err
		}
		data = converted
		contentType = "image/jpeg"
		name = imgutil.JPEGName(name)
	}

	path := joinPath(dir, name)
	if err := s.writer.Write(ctx, path, bytes.NewReader(data), contentType); err != nil {
		return nil, err
	}
	return &Saved{Slot: slot, Path: path, ContentType: contentType, Size: len(data)}, nil
}

// load は data URL ならその場で展開し、それ以外は検証したうえで取得します。
func (s *Saver) load(ctx context.Context, rawURL string) ([]byte, string, error) {
	if imgutil.IsDataURL(rawURL) {
		mimeType, data, err := imgutil.DecodeDataURL(rawURL)
		if err != nil {
			return nil, "", err
		}
		return data, mimeType, nil
	}

	target, err := s.resolve(rawURL)
	if err != nil {
		return nil, "", err
	}
	if safe, err := IsSafeURL(target, s.opts.AllowPrivate); err != nil || !safe {
		return nil, "", fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}
	if s.fetcher == nil {
		return nil, "", fmt.Errorf("リモート画像の取得が構成されていません: %s", target)
	}

	data, err := s.fetcher.FetchBytes(ctx, target)
	if err != nil {
		return nil, "", fmt.Errorf("画像の取得に失敗しました: %w", err)
	}
	return data, http.DetectContentType(data), nil
}

func (s *Saver) resolve(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("URLパース失敗: %w", err)
	}
	if u.IsAbs() || s.opts.BaseURL == "" {
		return rawURL, nil
	}
	base, err := url.Parse(s.opts.BaseURL)
	if err != nil {
		return "", fmt.Errorf("ベースURLのパース失敗: %w", err)
	}
	return base.ResolveReference(u).String(), nil
}
