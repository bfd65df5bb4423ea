package server

import (
	"context"
	"errors"
	"sync"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// --- Mocks ---

type stubGenerator struct {
	mu       sync.Mutex
	calls    int
	images   []string
	err      error
	started  chan struct{}
	release  chan struct{}
	lastArgs [2]string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt, aspect string) ([]string, error) {
	g.mu.Lock()
	g.calls++
	g.lastArgs = [2]string{prompt, aspect}
	started, release := g.started, g.release
	g.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	return g.images, g.err
}

type mockImageModel struct {
	mu    sync.Mutex
	calls int
	fail  map[int]bool
	data  []byte
}

func (m *mockImageModel) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	m.mu.Lock()
	m.calls++
	n := m.calls
	m.mu.Unlock()

	if m.fail[n] || m.fail[0] {
		return nil, errors.New("quota exceeded")
	}
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "here you go"},
						{InlineData: &genai.Blob{MIMEType: "image/png", Data: m.data}},
					},
				},
			}},
		},
	}, nil
}

type failingHistory struct{ *MemoryHistory }

func (f *failingHistory) Add(ctx context.Context, g Generation) error {
	return errors.New("db down")
}
