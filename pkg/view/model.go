package view

import (
	"fmt"
	"sync"

	"github.com/shouni/pixtrix-kit/pkg/domain"
)

// Navigator は確認ダイアログの OK で遷移する先を受け取ります。
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc は関数を Navigator として使うためのアダプターです。
type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

// Snapshot はある時点の画面状態です。
type Snapshot struct {
	Credits     int
	Slots       [domain.SlotCount]domain.Slot
	FormEnabled bool
	SubmitLabel string
	Notice      *domain.Notice
}

// Model は描画面を持たないビューモデルです。controller.View を実装します。
type Model struct {
	mu        sync.RWMutex
	state     Snapshot
	navigator Navigator
}

// NewModel は Model を作成します。navigator は nil でも構いません。
func NewModel(navigator Navigator) *Model {
	m := &Model{navigator: navigator}
	for i := range m.state.Slots {
		m.state.Slots[i] = domain.EmptySlot(i)
	}
	return m
}

func (m *Model) SetCreditBadge(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Credits = n
}

func (m *Model) SetSlot(slot domain.Slot) {
	if slot.Index < 0 || slot.Index >= domain.SlotCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Slots[slot.Index] = slot
}

func (m *Model) SetFormEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.FormEnabled = enabled
}

func (m *Model) SetSubmitLabel(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.SubmitLabel = label
}

// ShowNotice は確認ダイアログを開きます。開いているものがあれば置き換えます。
func (m *Model) ShowNotice(notice domain.Notice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := notice
	m.state.Notice = &n
}

// Snapshot は現在の状態のコピーを返します。
func (m *Model) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	if s.Notice != nil {
		n := *s.Notice
		s.Notice = &n
	}
	return s
}

// Notice は表示中の確認ダイアログを返します。
func (m *Model) Notice() (domain.Notice, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state.Notice == nil {
		return domain.Notice{}, false
	}
	return *m.state.Notice, true
}

// Acknowledge はダイアログを閉じ、遷移先があれば Navigator に渡します。
// 遷移した場合はその URL を返します。
func (m *Model) Acknowledge() string {
	m.mu.Lock()
	notice := m.state.Notice
	m.state.Notice = nil
	m.mu.Unlock()

	if notice == nil || !notice.HasRedirect() {
		return ""
	}
	if m.navigator != nil {
		m.navigator.Navigate(notice.RedirectURL)
	}
	return notice.RedirectURL
}

// CreditTooltip はクレジットバッジのツールチップ文言を返します。
func (m *Model) CreditTooltip() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("You have %d credits left.", m.state.Credits)
}
