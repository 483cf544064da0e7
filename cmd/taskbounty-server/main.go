package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"

	"github.com/kazz187/taskbounty/internal/config"
	"github.com/kazz187/taskbounty/internal/daemon"
	"github.com/kazz187/taskbounty/pkg/clog"
	"github.com/kazz187/taskbounty/pkg/sentinel"
)

var (
	app = kingpin.New("taskbounty-server", "Wallet session and task bounty API server")

	startCmd = app.Command("start", "Supervise the server, restarting it on crash, reload or binary update").Default()
	runCmd   = app.Command("run", "Run the server in the foreground")
)

func main() {
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case startCmd.FullCommand():
		os.Exit(runSentinel())
	case runCmd.FullCommand():
		os.Exit(run())
	}
}

func runSentinel() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	s, err := sentinel.New("")
	if err != nil {
		slog.Error("failed to create sentinel", "error", err)
		return 1
	}
	if err := s.Run(ctx); err != nil {
		slog.Error("sentinel failed", "error", err)
		return 1
	}
	return 0
}

func run() int {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		return 1
	}
	setupLogger(&env.BaseEnv)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	d, err := daemon.New(ctx, env)
	if err != nil {
		slog.Error("failed to set up daemon", "error", err)
		return 1
	}
	defer d.Close()

	err = d.Start(ctx)
	switch {
	case errors.Is(err, daemon.ErrReload):
		return sentinel.ExitCodeReload
	case err != nil:
		slog.Error("daemon failed", "error", err)
		return 1
	}
	slog.Info("server stopped")
	return 0
}

func setupLogger(env *config.BaseEnv) {
	level := env.SlogLevel()
	var handler slog.Handler
	if env.IsLocal() {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))
}
