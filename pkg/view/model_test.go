package view

import (
	"context"
	"testing"

	"github.com/shouni/pixtrix-kit/pkg/controller"
	"github.com/shouni/pixtrix-kit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	reply *controller.Reply
	err   error
}

func (s *stubClient) Generate(ctx context.Context, form domain.GenerationForm) (*controller.Reply, error) {
	return s.reply, s.err
}

func TestModel(t *testing.T) {
	t.Run("初期状態は空スロット", func(t *testing.T) {
		m := NewModel(nil)
		snap := m.Snapshot()
		for i, s := range snap.Slots {
			assert.Equal(t, domain.EmptySlot(i), s)
		}
		_, ok := m.Notice()
		assert.False(t, ok)
	})

	t.Run("範囲外のスロットは無視する", func(t *testing.T) {
		m := NewModel(nil)
		m.SetSlot(domain.FilledSlot(5, "x.png"))
		m.SetSlot(domain.FilledSlot(-1, "x.png"))
		for _, s := range m.Snapshot().Slots {
			assert.Equal(t, domain.SlotEmpty, s.State)
		}
	})

	t.Run("スナップショットは内部状態と切り離されている", func(t *testing.T) {
		m := NewModel(nil)
		m.ShowNotice(domain.Notice{Message: "hello"})
		snap := m.Snapshot()
		snap.Notice.Message = "changed"

		n, ok := m.Notice()
		require.True(t, ok)
		assert.Equal(t, "hello", n.Message)
	})

	t.Run("ツールチップ", func(t *testing.T) {
		m := NewModel(nil)
		m.SetCreditBadge(7)
		assert.Equal(t, "You have 7 credits left.", m.CreditTooltip())
	})
}

func TestModel_Acknowledge(t *testing.T) {
	t.Run("遷移先があれば Navigator を呼ぶ", func(t *testing.T) {
		var navigated []string
		m := NewModel(NavigatorFunc(func(url string) { navigated = append(navigated, url) }))
		m.ShowNotice(domain.Notice{Kind: domain.KindAuthorization, Message: "Please log in", RedirectURL: "/login"})

		assert.Equal(t, "/login", m.Acknowledge())
		assert.Equal(t, []string{"/login"}, navigated)
		_, ok := m.Notice()
		assert.False(t, ok)

		// 二度目は何もしない
		assert.Empty(t, m.Acknowledge())
		assert.Len(t, navigated, 1)
	})

	t.Run("遷移先が無ければ閉じるだけ", func(t *testing.T) {
		called := false
		m := NewModel(NavigatorFunc(func(string) { called = true }))
		m.ShowNotice(domain.Notice{Kind: domain.KindTransport, Message: controller.MsgTransport})

		assert.Empty(t, m.Acknowledge())
		assert.False(t, called)
	})
}

func TestModel_WithController(t *testing.T) {
	t.Run("ゲストの残高切れはログイン画面へ", func(t *testing.T) {
		var navigated string
		m := NewModel(NavigatorFunc(func(url string) { navigated = url }))
		c, err := controller.New(&stubClient{}, m, 0, controller.WithMode(controller.ModeGuest))
		require.NoError(t, err)

		out := c.Submit(context.Background(), domain.GenerationForm{Prompt: "x"})
		assert.Equal(t, controller.StatusBlocked, out.Status)

		m.Acknowledge()
		assert.Equal(t, "/login", navigated)
	})

	t.Run("成功後の画面状態", func(t *testing.T) {
		m := NewModel(nil)
		client := &stubClient{reply: &controller.Reply{StatusCode: 200, Body: []byte(`{"images":["a.png"]}`)}}
		c, err := controller.New(client, m, 2)
		require.NoError(t, err)

		c.Submit(context.Background(), domain.GenerationForm{Prompt: "x"})

		snap := m.Snapshot()
		assert.Equal(t, 1, snap.Credits)
		assert.True(t, snap.FormEnabled)
		assert.Equal(t, controller.IdleLabel, snap.SubmitLabel)
		assert.Equal(t, domain.FilledSlot(0, "a.png"), snap.Slots[0])
		assert.Equal(t, domain.EmptySlot(1), snap.Slots[1])
		assert.Nil(t, snap.Notice)
	})
}
