// Package sentinel supervises the daemon's "run" subcommand. The child is
// restarted after crashes with exponential backoff, immediately when it asks
// for a reload by exiting with ExitCodeReload, and after its binary changes on
// disk.
package sentinel

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ExitCodeReload is the exit status a child uses to ask for an immediate
// restart, e.g. after the wallet switched chains.
const ExitCodeReload = 75

const (
	DefaultGracePeriod    = 10 * time.Second
	DefaultInitialBackoff = 5 * time.Second
	DefaultMaxBackoff     = 10 * time.Minute
	BackoffFactor         = 2.0
	SuccessRunTime        = 30 * time.Second
	DebounceInterval      = 100 * time.Millisecond
)

type outcome int

const (
	outcomeStopped outcome = iota
	outcomeCrashed
	outcomeExited
	outcomeReload
	outcomeUpdated
)

func (o outcome) String() string {
	switch o {
	case outcomeStopped:
		return "stopped"
	case outcomeCrashed:
		return "crashed"
	case outcomeExited:
		return "exited"
	case outcomeReload:
		return "reload"
	case outcomeUpdated:
		return "updated"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Sentinel struct {
	binaryPath     string
	args           []string
	gracePeriod    time.Duration
	initialBackoff time.Duration
	maxBackoff     time.Duration

	lastHash [sha256.Size]byte
	backoff  time.Duration
}

type Option func(*Sentinel)

// WithArgs overrides the child arguments. Defaults to "run".
func WithArgs(args ...string) Option {
	return func(s *Sentinel) { s.args = args }
}

func WithGracePeriod(d time.Duration) Option {
	return func(s *Sentinel) { s.gracePeriod = d }
}

func WithBackoff(initial, limit time.Duration) Option {
	return func(s *Sentinel) {
		s.initialBackoff = initial
		s.maxBackoff = limit
	}
}

// New builds a Sentinel for binaryPath. An empty path resolves to the
// running executable.
func New(binaryPath string, opts ...Option) (*Sentinel, error) {
	if binaryPath == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve executable path: %w", err)
		}
		binaryPath = exe
	}
	resolved, err := filepath.EvalSymlinks(binaryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve symlinks for binary: %w", err)
	}
	s := &Sentinel{
		binaryPath:     resolved,
		args:           []string{"run"},
		gracePeriod:    DefaultGracePeriod,
		initialBackoff: DefaultInitialBackoff,
		maxBackoff:     DefaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.backoff = s.initialBackoff
	return s, nil
}

// Run supervises the child until ctx is done. The child is stopped before
// Run returns.
func (s *Sentinel) Run(ctx context.Context) error {
	h, err := HashFile(s.binaryPath)
	if err != nil {
		return err
	}
	s.lastHash = h
	slog.Info("starting sentinel", "binary", s.binaryPath, "hash", fmt.Sprintf("%x", h[:8]))

	updateCh := make(chan struct{}, 1)
	go s.watchBinary(ctx, updateCh)

	for {
		started := time.Now()
		out, err := s.runOnce(ctx, updateCh)
		elapsed := time.Since(started)

		switch out {
		case outcomeStopped:
			slog.Info("sentinel exiting")
			return nil
		case outcomeReload:
			slog.Info("child requested reload", "uptime", elapsed)
			s.backoff = s.initialBackoff
		case outcomeUpdated:
			if h, err := HashFile(s.binaryPath); err == nil {
				s.lastHash = h
				slog.Info("binary updated", "hash", fmt.Sprintf("%x", h[:8]))
			}
			s.backoff = s.initialBackoff
		case outcomeExited:
			slog.Warn("child exited cleanly", "uptime", elapsed)
			s.backoff = s.initialBackoff
			if !sleep(ctx, time.Second) {
				return nil
			}
		case outcomeCrashed:
			slog.Error("child failed", "uptime", elapsed, "error", err)
			if elapsed >= SuccessRunTime {
				s.backoff = s.initialBackoff
			}
			slog.Info("waiting before restart", "backoff", s.backoff)
			if !sleep(ctx, s.backoff) {
				return nil
			}
			s.backoff = nextBackoff(s.backoff, s.maxBackoff)
		}
	}
}

// runOnce starts one child and waits for it to exit, for the binary to
// change or for ctx to be done.
func (s *Sentinel) runOnce(ctx context.Context, updateCh <-chan struct{}) (outcome, error) {
	cmd := exec.Command(s.binaryPath, s.args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if err := cmd.Start(); err != nil {
		return outcomeCrashed, fmt.Errorf("exec %s: %w", s.binaryPath, err)
	}
	slog.Info("started child process", "pid", cmd.Process.Pid)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return classifyExit(err)
	case <-updateCh:
		s.stop(cmd, done)
		return outcomeUpdated, nil
	case <-ctx.Done():
		s.stop(cmd, done)
		return outcomeStopped, nil
	}
}

func classifyExit(err error) (outcome, error) {
	if err == nil {
		return outcomeExited, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == ExitCodeReload {
		return outcomeReload, nil
	}
	return outcomeCrashed, err
}

// stop sends SIGTERM and escalates to SIGKILL after the grace period. It
// returns once the child has been reaped.
func (s *Sentinel) stop(cmd *exec.Cmd, done <-chan error) {
	pid := cmd.Process.Pid
	slog.Info("stopping child", "pid", pid)
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		slog.Warn("failed to send SIGTERM", "pid", pid, "error", err)
	}
	select {
	case <-done:
	case <-time.After(s.gracePeriod):
		slog.Warn("grace period expired, killing child", "pid", pid)
		if err := cmd.Process.Kill(); err != nil {
			slog.Error("failed to kill child", "pid", pid, "error", err)
		}
		<-done
	}
}

// watchBinary watches the binary's directory so atomic replacements
// (write temp file, rename) are seen too.
func (s *Sentinel) watchBinary(ctx context.Context, updateCh chan<- struct{}) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("failed to create fsnotify watcher", "error", err)
		return
	}
	defer watcher.Close()

	dir, name := filepath.Dir(s.binaryPath), filepath.Base(s.binaryPath)
	if err := watcher.Add(dir); err != nil {
		slog.Error("failed to watch binary directory", "dir", dir, "error", err)
		return
	}

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(DebounceInterval, func() {
				h, err := HashFile(s.binaryPath)
				if err != nil || h == s.lastHash {
					return
				}
				select {
				case updateCh <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("fsnotify error", "error", err)
		}
	}
}

// HashFile computes the SHA256 of the file at path.
func HashFile(path string) ([sha256.Size]byte, error) {
	var sum [sha256.Size]byte
	f, err := os.Open(path)
	if err != nil {
		return sum, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum, fmt.Errorf("hash %s: %w", path, err)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

func nextBackoff(cur, limit time.Duration) time.Duration {
	next := time.Duration(float64(cur) * BackoffFactor)
	if next > limit {
		return limit
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
