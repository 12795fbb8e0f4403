//go:build integration

package testutil

import "context"

// NopLogger — ports.Logger для миграций и вспомогательного кода тестов.
type NopLogger struct{}

func (NopLogger) Infof(context.Context, string, ...any)  {}
func (NopLogger) Warnf(context.Context, string, ...any)  {}
func (NopLogger) Errorf(context.Context, string, ...any) {}
