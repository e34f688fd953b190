// Package logger はslogによるJSON構造化ログの初期化を提供する。
// APIサーバーとクリーンアップワーカーの両方が起動時に設定する。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
// 出力レベルはInfo固定とし、リクエストログの4xx/5xxの昇格は
// ミドルウェア側で行う。
func Setup(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// writerが指定された場合はそのwriterに出力する。
// 本番ではos.Stdoutを渡すことを想定している。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	logger := Setup(w)
	slog.SetDefault(logger)
}
