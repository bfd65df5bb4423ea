package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Writer は保存先への書き込みを担当します。remoteio.OutputWriter と同じ形です。
type Writer interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// LocalWriter はローカルファイルシステムへ書き込みます。
type LocalWriter struct{}

// Write は親ディレクトリを作成してからファイルを書き込みます。
func (LocalWriter) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ディレクトリの作成に失敗しました: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ファイルの作成に失敗しました: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("ファイルの書き込みに失敗しました: %w", err)
	}
	return f.Close()
}

// RemotePrefix は GCS 上のパスを示す接頭辞です。
const RemotePrefix = "gs://"

// IsRemote は path が GCS 上のパスかどうかを返します。
func IsRemote(path string) bool {
	return strings.HasPrefix(path, RemotePrefix)
}

// RoutingWriter は gs:// のパスを Remote へ、それ以外を Local へ振り分けます。
type RoutingWriter struct {
	Local  Writer
	Remote Writer
}

func (w RoutingWriter) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	if IsRemote(path) {
		if w.Remote == nil {
			return fmt.Errorf("GCS への書き込みが構成されていません: %s", path)
		}
		return w.Remote.Write(ctx, path, r, contentType)
	}
	local := w.Local
	if local == nil {
		local = LocalWriter{}
	}
	return local.Write(ctx, path, r, contentType)
}

// joinPath は保存先ディレクトリとファイル名を連結します。gs:// は "/" で連結します。
func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if IsRemote(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}
