package ports

import "context"

// Logger — логгер приложения. ctx нужен, чтобы реализация могла добавить
// request_id/shop из ctxmeta.
type Logger interface {
	Infof(ctx context.Context, format string, args ...any)
	Warnf(ctx context.Context, format string, args ...any)
	Errorf(ctx context.Context, format string, args ...any)
}
