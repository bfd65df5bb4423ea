package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"path"
	"strings"
)

// DefaultJPEGQuality は保存時にJPEGへ変換するときの既定品質です。
const DefaultJPEGQuality = 85

// CompressToJPEG は画像データ（PNG, GIF, JPEG）をJPEG形式に再エンコードします。
// quality は 1〜100 に丸めます。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}

	switch {
	case quality < 1:
		quality = 1
	case quality > 100:
		quality = 100
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("JPEGエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// JPEGName はファイル名の拡張子を .jpg に置き換えます。
func JPEGName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ".jpg"
}
