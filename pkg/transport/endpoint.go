package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
)

const (
	// HeaderRequestedWith はプログラムからの呼び出しであることをバックエンドへ伝えるヘッダーです。
	HeaderRequestedWith = "X-Requested-With"
	requestedWithValue  = "XMLHttpRequest"
)

// Response はバックエンドの生の応答です。4xx/5xx もそのまま保持します。
type Response struct {
	StatusCode int
	Body       []byte
}

// Endpoint はバックエンドのベースURLに対するリクエストをまとめて扱います。
// タイムアウトは設定しません。中断は ctx のキャンセルで行うのだ。
type Endpoint struct {
	base   *url.URL
	client *http.Client
}

// Option は Endpoint の設定を変更します。
type Option func(*Endpoint) error

// WithHTTPClient は利用する http.Client を差し替えます。
func WithHTTPClient(c *http.Client) Option {
	return func(e *Endpoint) error {
		if c == nil {
			return fmt.Errorf("http client is required")
		}
		e.client = c
		return nil
	}
}

// WithCookieJar はセッションクッキーを保持する CookieJar を有効にします。
// ゲストのクレジットはセッション単位で数えられるため、連続生成ではこれが必要です。
func WithCookieJar() Option {
	return func(e *Endpoint) error {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return fmt.Errorf("cookie jar の作成に失敗しました: %w", err)
		}
		c := *e.client
		c.Jar = jar
		e.client = &c
		return nil
	}
}

// New はベースURLを検証して Endpoint を作成します。
func New(baseURL string, opts ...Option) (*Endpoint, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("baseURL の解析に失敗しました: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("不許可スキーム: %s", u.Scheme)
	}

	e := &Endpoint{base: u, client: &http.Client{}}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// URL はベースURL（サブパスを含む）に path を連結した絶対URLを返します。
func (e *Endpoint) URL(path string) string {
	u := *e.base
	u.Path = strings.TrimSuffix(e.base.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	return u.String()
}

// Do はリクエストを送信し、ステータスと本文を返します。
// error が返るのは応答が得られなかったときだけです。
func (e *Endpoint) Do(ctx context.Context, method, path string, body io.Reader, contentType string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, e.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set(HeaderRequestedWith, requestedWithValue)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s の送信に失敗しました: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("応答本文の読み込みに失敗しました: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// PostMultipart はフィールドを multipart/form-data で POST します。
func (e *Endpoint) PostMultipart(ctx context.Context, path string, fields map[string]string) (*Response, error) {
	body, contentType, err := EncodeMultipart(fields)
	if err != nil {
		return nil, err
	}
	return e.Do(ctx, http.MethodPost, path, body, contentType)
}

// SendJSON は v を JSON にして送信します。v が nil なら本文なしです。
func (e *Endpoint) SendJSON(ctx context.Context, method, path string, v any) (*Response, error) {
	if v == nil {
		return e.Do(ctx, method, path, nil, "")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("リクエスト本文のエンコードに失敗しました: %w", err)
	}
	return e.Do(ctx, method, path, bytes.NewReader(data), "application/json")
}

// EncodeMultipart はフィールドをキー順に multipart 本文へ書き出します。
func EncodeMultipart(fields map[string]string) (io.Reader, string, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", fmt.Errorf("フィールド %s の書き込みに失敗しました: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("multipart 本文の作成に失敗しました: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
