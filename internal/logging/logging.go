// 各Lambda関数で共通のJSONロガー
package logging

import (
	"context"
	"io"
	"log/slog"
)

type ctxKey struct{}

// 関数名付きのJSONロガーを作成（CloudWatchで1行ずつ構造化ログとして扱われる）
func New(w io.Writer, function string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, nil)).With("function", function)
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
