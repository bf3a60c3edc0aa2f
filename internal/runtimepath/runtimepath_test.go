package runtimepath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

func TestDir_PrefersSessionRuntimeDir(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_SkipsMissingSessionRuntimeDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	t.Setenv("XDG_RUNTIME_DIR", missing)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got == missing {
		t.Fatalf("Dir() returned a directory that does not exist")
	}
	if got != xdg.RuntimeDir && got != privateDir() {
		t.Fatalf("Dir() = %q, want %q or %q", got, xdg.RuntimeDir, privateDir())
	}
	if !isDir(got) {
		t.Fatalf("Dir() = %q is not a directory", got)
	}
}

func TestSocketPathAndPIDPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if socket != filepath.Join(td, "traycast.sock") {
		t.Fatalf("SocketPath() = %q", socket)
	}

	pid, err := PIDPath()
	if err != nil {
		t.Fatalf("PIDPath() error: %v", err)
	}
	if pid != filepath.Join(td, "traycast.pid") {
		t.Fatalf("PIDPath() = %q", pid)
	}
}

func TestPrivateDir_UnderTempDir(t *testing.T) {
	dir := privateDir()
	if filepath.Dir(dir) != filepath.Clean(os.TempDir()) {
		t.Fatalf("privateDir() = %q, want it under %q", dir, os.TempDir())
	}
}
