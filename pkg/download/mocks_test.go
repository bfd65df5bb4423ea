package download

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// --- Mocks ---

type mockFetcher struct {
	mu    sync.Mutex
	data  map[string][]byte
	calls []string
}

func (m *mockFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)
	d, ok := m.data[url]
	if !ok {
		return nil, fmt.Errorf("404: %s", url)
	}
	return d, nil
}

type written struct {
	data        []byte
	contentType string
}

type memWriter struct {
	mu    sync.Mutex
	files map[string]written
	err   error
}

func newMemWriter() *memWriter {
	return &memWriter{files: map[string]written{}}
}

func (w *memWriter) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	if w.err != nil {
		return w.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path] = written{data: data, contentType: contentType}
	return nil
}
