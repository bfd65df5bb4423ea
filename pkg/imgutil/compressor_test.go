package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// テスト用のダミー画像（10x10の緑の正方形）を作成するヘルパー
func createDummyImageData(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			img.Set(x, y, color.RGBA{0, 255, 65, 255})
		}
	}

	buf := new(bytes.Buffer)
	var err error
	switch format {
	case "png":
		err = png.Encode(buf, img)
	case "jpeg":
		err = jpeg.Encode(buf, img, nil)
	default:
		t.Fatalf("unsupported format: %s", format)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func TestCompressToJPEG(t *testing.T) {
	t.Run("PNG画像をJPEGに変換できること", func(t *testing.T) {
		got, err := CompressToJPEG(createDummyImageData(t, "png"), DefaultJPEGQuality)
		require.NoError(t, err)

		_, format, err := image.Decode(bytes.NewReader(got))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
	})

	t.Run("不正なデータはエラー", func(t *testing.T) {
		_, err := CompressToJPEG([]byte("this is not an image"), 75)
		assert.Error(t, err)
	})

	t.Run("範囲外の品質は丸められる", func(t *testing.T) {
		input := createDummyImageData(t, "png")

		_, err := CompressToJPEG(input, 0)
		assert.NoError(t, err)
		_, err = CompressToJPEG(input, 500)
		assert.NoError(t, err)
	})
}

func TestJPEGName(t *testing.T) {
	assert.Equal(t, "pixtrix_1.jpg", JPEGName("pixtrix_1.png"))
	assert.Equal(t, "noext.jpg", JPEGName("noext"))
}

func TestDataURL(t *testing.T) {
	pngData := createDummyImageData(t, "png")

	t.Run("エンコードしてデコードすると元に戻る", func(t *testing.T) {
		u := EncodeDataURL(pngData, "")
		assert.True(t, IsDataURL(u))
		assert.Contains(t, u, "data:image/png;base64,")

		mime, data, err := DecodeDataURL(u)
		require.NoError(t, err)
		assert.Equal(t, "image/png", mime)
		assert.Equal(t, pngData, data)
	})

	tests := []struct {
		name string
		in   string
	}{
		{"data URL でない", "https://example.com/a.png"},
		{"カンマが無い", "data:image/png;base64"},
		{"base64 以外", "data:text/plain,hello"},
		{"壊れた base64", "data:image/png;base64,!!!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeDataURL(tt.in)
			assert.Error(t, err)
		})
	}
}
