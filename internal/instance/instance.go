// Package instance keeps a single daemon running per user session.
package instance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrAlreadyRunning is returned when another daemon holds the lock and
// KeepRunning is set.
var ErrAlreadyRunning = errors.New("traycast is already running")

// Peer is the running daemon as seen over IPC.
type Peer interface {
	Ping() error
	Shutdown() error
}

// Options configures Acquire.
type Options struct {
	PIDPath    string
	SocketPath string
	// Peer talks to a previous daemon. Nil skips the IPC check.
	Peer Peer
	// KeepRunning leaves a running daemon alone and fails with
	// ErrAlreadyRunning. By default the running daemon is stopped.
	KeepRunning bool
	// ExitTimeout bounds the wait for a replaced daemon. Defaults to 2s.
	ExitTimeout time.Duration
	Logger      *slog.Logger
}

// Lock is the PID file held by this process.
type Lock struct {
	path string
	pid  int
}

// Acquire claims the PID file. A live daemon is asked to exit, or
// terminated when it no longer answers; a dead one is cleaned up after.
func Acquire(ctx context.Context, opts Options) (*Lock, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.ExitTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	prev, _ := ReadPID(opts.PIDPath)
	alive := prev > 0 && prev != os.Getpid() && pidAlive(ctx, prev)

	if opts.Peer != nil && opts.Peer.Ping() == nil {
		if opts.KeepRunning {
			return nil, ErrAlreadyRunning
		}
		logger.Info("asking running daemon to exit", "pid", prev)
		if err := opts.Peer.Shutdown(); err != nil {
			return nil, fmt.Errorf("failed to stop running daemon: %w", err)
		}
		if prev > 0 {
			if err := waitExit(ctx, prev, timeout); err != nil {
				return nil, err
			}
		}
	} else if alive {
		// The PID is in use but nothing answers on the socket: either the
		// daemon is wedged or the PID was recycled by something else.
		switch {
		case !isTraycast(ctx, prev):
			logger.Warn("ignoring stale pid file", "pid", prev)
		case opts.KeepRunning:
			return nil, ErrAlreadyRunning
		default:
			logger.Warn("terminating unresponsive daemon", "pid", prev)
			if err := terminate(ctx, prev); err != nil {
				return nil, err
			}
			if err := waitExit(ctx, prev, timeout); err != nil {
				return nil, err
			}
		}
	}

	if opts.SocketPath != "" {
		if err := os.Remove(opts.SocketPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	lock := &Lock{path: opts.PIDPath, pid: os.Getpid()}
	if err := lock.write(); err != nil {
		return nil, err
	}
	return lock, nil
}

// Release removes the PID file if it still names this process.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	pid, err := ReadPID(l.path)
	if err != nil || pid != l.pid {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove pid file: %w", err)
	}
	return nil
}

func (l *Lock) write() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return fmt.Errorf("failed to create runtime dir: %w", err)
	}
	data := []byte(strconv.Itoa(l.pid) + "\n")
	if err := os.WriteFile(l.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

// ReadPID returns the PID stored at path.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid file %s", path)
	}
	return pid, nil
}

func pidAlive(ctx context.Context, pid int) bool {
	ok, err := process.PidExistsWithContext(ctx, int32(pid))
	return err == nil && ok
}

func isTraycast(ctx context.Context, pid int) bool {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return false
	}
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return false
	}
	return strings.HasPrefix(name, "traycast")
}

func terminate(ctx context.Context, pid int) error {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil
	}
	if err := p.TerminateWithContext(ctx); err != nil {
		return fmt.Errorf("failed to terminate daemon (pid %d): %w", pid, err)
	}
	return nil
}

func waitExit(ctx context.Context, pid int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for pidAlive(ctx, pid) {
		if time.Now().After(deadline) {
			return fmt.Errorf("daemon (pid %d) did not exit within %s", pid, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
