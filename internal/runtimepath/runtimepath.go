// Package runtimepath locates the per-session files the daemon and its
// clients rendezvous on.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	socketName = "traycast.sock"
	pidName    = "traycast.pid"
)

// Dir returns the directory holding the control socket and PID file.
//
// The session runtime dir wins when it exists: XDG_RUNTIME_DIR as seen now,
// then the location xdg resolved at startup (normally /run/user/<uid>).
// Without one, a private traycast-<uid> directory under the system temp dir
// is created.
func Dir() (string, error) {
	for _, dir := range []string{os.Getenv("XDG_RUNTIME_DIR"), xdg.RuntimeDir} {
		if isDir(dir) {
			return dir, nil
		}
	}

	dir := privateDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return dir, nil
}

// SocketPath is where the daemon listens for IPC clients.
func SocketPath() (string, error) {
	return join(socketName)
}

// PIDPath is the single-instance PID file.
func PIDPath() (string, error) {
	return join(pidName)
}

func join(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func privateDir() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("traycast-%d", os.Getuid()))
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
