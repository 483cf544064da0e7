// Package panicerr converts panics in long-running workers into errors, so a
// panicking worker fails its conc pool instead of killing the daemon.
package panicerr

import (
	"context"
	"log/slog"

	"github.com/sourcegraph/conc/panics"

	"github.com/kazz187/taskbounty/pkg/cerr"
)

// Safe runs fn and reports a panic as an Internal error carrying the
// panicking goroutine's stack.
func Safe(name string, fn func() error) func() error {
	return func() error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() { err = fn() })
		if rec := catcher.Recovered(); rec != nil {
			return recovered(context.Background(), name, rec)
		}
		return err
	}
}

// SafeContext is Safe for workers that take a context.
func SafeContext(name string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() { err = fn(ctx) })
		if rec := catcher.Recovered(); rec != nil {
			return recovered(ctx, name, rec)
		}
		return err
	}
}

func recovered(ctx context.Context, name string, rec *panics.Recovered) error {
	slog.ErrorContext(ctx, "worker panicked", "worker", name, "panic", rec.Value)
	e := cerr.NewError(cerr.Internal, name+" panicked", rec.AsError())
	e.Stack = string(rec.Stack)
	return e
}
