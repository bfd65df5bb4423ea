package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlot_DownloadName(t *testing.T) {
	tests := []struct {
		name string
		slot Slot
		want string
	}{
		{"1番目のスロット", FilledSlot(0, "a.png"), "pixtrix_1.png"},
		{"2番目のスロット", FilledSlot(1, "b.png"), "pixtrix_2.png"},
		{"読み込み中は名前なし", LoadingSlot(0), ""},
		{"空スロットは名前なし", EmptySlot(1), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.slot.DownloadName())
		})
	}
}

func TestSlot_Alt(t *testing.T) {
	assert.Equal(t, "Generated image 2", FilledSlot(1, "x").Alt())
}

func TestSlotState_String(t *testing.T) {
	assert.Equal(t, "empty", SlotEmpty.String())
	assert.Equal(t, "loading", SlotLoading.String())
	assert.Equal(t, "filled", SlotFilled.String())
	assert.Equal(t, "SlotState(9)", SlotState(9).String())
}
