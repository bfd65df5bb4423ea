package server

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Generation は1回の生成の記録です。
type Generation struct {
	ID        string    `json:"id" bson:"_id"`
	SessionID string    `json:"-" bson:"session_id"`
	Prompt    string    `json:"prompt" bson:"prompt"`
	Aspect    string    `json:"aspect" bson:"aspect"`
	Images    []string  `json:"images" bson:"images"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// HistoryStore は生成履歴の保存先です。
type HistoryStore interface {
	Add(ctx context.Context, g Generation) error
	List(ctx context.Context, sessionID string, limit int) ([]Generation, error)
	Close(ctx context.Context) error
}

// maxMemoryHistory はセッションごとに保持する件数の上限です。
const maxMemoryHistory = 50

// MemoryHistory はプロセス内に履歴を保持します。
type MemoryHistory struct {
	mu      sync.RWMutex
	records map[string][]Generation
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{records: make(map[string][]Generation)}
}

func (m *MemoryHistory) Add(ctx context.Context, g Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := append(m.records[g.SessionID], g)
	if len(list) > maxMemoryHistory {
		list = list[len(list)-maxMemoryHistory:]
	}
	m.records[g.SessionID] = list
	return nil
}

// List は新しい順に最大 limit 件を返します。limit が 0 以下なら全件です。
func (m *MemoryHistory) List(ctx context.Context, sessionID string, limit int) ([]Generation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.records[sessionID]
	out := make([]Generation, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryHistory) Close(ctx context.Context) error {
	return nil
}
