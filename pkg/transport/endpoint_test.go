package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shouni/pixtrix-kit/pkg/controller"
	"github.com/shouni/pixtrix-kit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("ベースURLは必須", func(t *testing.T) {
		_, err := New("  ")
		assert.Error(t, err)
	})

	t.Run("http(s) 以外は拒否", func(t *testing.T) {
		_, err := New("ftp://example.com")
		assert.Error(t, err)
	})

	t.Run("nil の http.Client は拒否", func(t *testing.T) {
		_, err := New("http://example.com", WithHTTPClient(nil))
		assert.Error(t, err)
	})
}

func TestEndpoint_URL(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"http://localhost:8080", "/", "http://localhost:8080/"},
		{"http://localhost:8080", "/home", "http://localhost:8080/home"},
		{"http://localhost:8080/", "home", "http://localhost:8080/home"},
		{"https://example.com/app", "/api/account", "https://example.com/app/api/account"},
		{"https://example.com/app/", "/", "https://example.com/app/"},
	}
	for _, tt := range tests {
		t.Run(tt.base+tt.path, func(t *testing.T) {
			e, err := New(tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.URL(tt.path))
		})
	}
}

func TestGenerationEndpoint_Generate(t *testing.T) {
	t.Run("multipart とヘッダーを付けて送信する", func(t *testing.T) {
		var gotPath, gotPrompt, gotAspect, gotHeader, gotAccept string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotHeader = r.Header.Get(HeaderRequestedWith)
			gotAccept = r.Header.Get("Accept")
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			gotPrompt = r.FormValue(domain.FieldPrompt)
			gotAspect = r.FormValue(domain.FieldAspect)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(domain.GenerationPayload{Images: []string{"a.png", "b.png"}})
		}))
		defer srv.Close()

		ep, err := New(srv.URL)
		require.NoError(t, err)
		g, err := NewGenerationEndpoint(ep, controller.ModeMember)
		require.NoError(t, err)

		reply, err := g.Generate(context.Background(), domain.GenerationForm{Prompt: "neon cat", AspectRatio: "16:9"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, reply.StatusCode)
		assert.JSONEq(t, `{"images":["a.png","b.png"]}`, string(reply.Body))
		assert.Equal(t, "/home", gotPath)
		assert.Equal(t, "XMLHttpRequest", gotHeader)
		assert.Equal(t, "application/json", gotAccept)
		assert.Equal(t, "neon cat", gotPrompt)
		assert.Equal(t, "16:9", gotAspect)
	})

	t.Run("ゲストはルートへ送信し、エラー応答もそのまま返す", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"error":"Please log in"}`)
		}))
		defer srv.Close()

		ep, _ := New(srv.URL)
		g, _ := NewGenerationEndpoint(ep, controller.ModeGuest)

		reply, err := g.Generate(context.Background(), domain.GenerationForm{Prompt: "x"})
		require.NoError(t, err)
		assert.Equal(t, "/", gotPath)
		assert.Equal(t, http.StatusForbidden, reply.StatusCode)
		assert.Equal(t, `{"error":"Please log in"}`, string(reply.Body))
	})

	t.Run("接続できなければエラー", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		ep, _ := New(url)
		g, _ := NewGenerationEndpoint(ep, controller.ModeMember)

		reply, err := g.Generate(context.Background(), domain.GenerationForm{Prompt: "x"})
		assert.Error(t, err)
		assert.Nil(t, reply)
	})

	t.Run("CookieJar でセッションを維持する", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
				return
			}
			c, err := r.Cookie("session")
			if assert.NoError(t, err) {
				assert.Equal(t, "abc", c.Value)
			}
		}))
		defer srv.Close()

		ep, err := New(srv.URL, WithCookieJar())
		require.NoError(t, err)
		g, _ := NewGenerationEndpoint(ep, controller.ModeGuest)

		_, err = g.Generate(context.Background(), domain.GenerationForm{Prompt: "1"})
		require.NoError(t, err)
		_, err = g.Generate(context.Background(), domain.GenerationForm{Prompt: "2"})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})
}

func TestEndpoint_SendJSON(t *testing.T) {
	var gotMethod, gotType string
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	ep, _ := New(srv.URL)
	resp, err := ep.SendJSON(context.Background(), http.MethodPut, "/api/account/username", map[string]string{"username": "neo"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "neo", got["username"])
}
