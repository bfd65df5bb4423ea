package domain

import "fmt"

// SlotCount は画面上の画像スロット数です。
const SlotCount = 2

// SlotState は画像スロットの状態です。
type SlotState int

const (
	SlotEmpty SlotState = iota
	SlotLoading
	SlotFilled
)

func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotLoading:
		return "loading"
	case SlotFilled:
		return "filled"
	default:
		return fmt.Sprintf("SlotState(%d)", int(s))
	}
}

// Slot は生成画像を表示する1領域です。Index は 0 始まりです。
type Slot struct {
	Index int
	State SlotState
	URL   string
}

// EmptySlot は初期状態のスロットを返します。
func EmptySlot(i int) Slot { return Slot{Index: i, State: SlotEmpty} }

// LoadingSlot は生成待ちのスロットを返します。
func LoadingSlot(i int) Slot { return Slot{Index: i, State: SlotLoading} }

// FilledSlot は画像URLで埋まったスロットを返します。
func FilledSlot(i int, url string) Slot { return Slot{Index: i, State: SlotFilled, URL: url} }

// Number は画面表示用の 1 始まりの番号です。
func (s Slot) Number() int { return s.Index + 1 }

// DownloadName はダウンロードリンクのファイル名です。スロット番号だけで決まります。
// 画像が無いスロットでは空文字を返します。
func (s Slot) DownloadName() string {
	if s.State != SlotFilled {
		return ""
	}
	return fmt.Sprintf("pixtrix_%d.png", s.Number())
}

// Alt は画像の代替テキストです。
func (s Slot) Alt() string {
	return fmt.Sprintf("Generated image %d", s.Number())
}
