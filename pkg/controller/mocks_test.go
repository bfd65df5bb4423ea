package controller

import (
	"context"
	"sync"

	"github.com/shouni/pixtrix-kit/pkg/domain"
)

// --- Mocks ---

// recordingView は View の呼び出しを記録するテスト用ビューなのだ。
type recordingView struct {
	mu          sync.Mutex
	badge       int
	badgeLog    []int
	slots       [domain.SlotCount]domain.Slot
	enabled     bool
	label       string
	notices     []domain.Notice
	slotHistory [domain.SlotCount][]domain.SlotState
}

func newRecordingView() *recordingView {
	return &recordingView{}
}

func (v *recordingView) SetCreditBadge(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.badge = n
	v.badgeLog = append(v.badgeLog, n)
}

func (v *recordingView) SetSlot(slot domain.Slot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.slots[slot.Index] = slot
	v.slotHistory[slot.Index] = append(v.slotHistory[slot.Index], slot.State)
}

func (v *recordingView) SetFormEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = enabled
}

func (v *recordingView) SetSubmitLabel(label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.label = label
}

func (v *recordingView) ShowNotice(notice domain.Notice) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, notice)
}

func (v *recordingView) state() (badge int, slots [domain.SlotCount]domain.Slot, enabled bool, label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.badge, v.slots, v.enabled, v.label
}

func (v *recordingView) lastNotice() (domain.Notice, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.notices) == 0 {
		return domain.Notice{}, false
	}
	return v.notices[len(v.notices)-1], true
}

// mockClient は GenerationClient のテスト用モックなのだ。
type mockClient struct {
	mu           sync.Mutex
	calls        int
	lastForm     domain.GenerationForm
	generateFunc func(ctx context.Context, form domain.GenerationForm) (*Reply, error)
}

func (m *mockClient) Generate(ctx context.Context, form domain.GenerationForm) (*Reply, error) {
	m.mu.Lock()
	m.calls++
	m.lastForm = form
	m.mu.Unlock()
	if m.generateFunc != nil {
		return m.generateFunc(ctx, form)
	}
	return &Reply{StatusCode: 200, Body: []byte(`{"images":[]}`)}, nil
}

func (m *mockClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func replyWith(status int, body string) func(context.Context, domain.GenerationForm) (*Reply, error) {
	return func(context.Context, domain.GenerationForm) (*Reply, error) {
		return &Reply{StatusCode: status, Body: []byte(body)}, nil
	}
}
