package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSync_CreatesAndRemoves(t *testing.T) {
	e := Entry{
		Path: filepath.Join(t.TempDir(), "autostart", "traycast.desktop"),
		Exec: "/usr/local/bin/traycast",
	}

	if e.Enabled() {
		t.Fatalf("expected no entry initially")
	}
	if err := e.Sync(true); err != nil {
		t.Fatalf("sync(true): %v", err)
	}
	data, err := os.ReadFile(e.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "Exec=/usr/local/bin/traycast run\n") {
		t.Fatalf("unexpected entry:\n%s", data)
	}

	// Idempotent.
	if err := e.Sync(true); err != nil {
		t.Fatalf("second sync(true): %v", err)
	}

	if err := e.Sync(false); err != nil {
		t.Fatalf("sync(false): %v", err)
	}
	if e.Enabled() {
		t.Fatalf("expected entry removed")
	}
	if err := e.Sync(false); err != nil {
		t.Fatalf("removing a missing entry should succeed: %v", err)
	}
}

func TestQuoteExec(t *testing.T) {
	tests := map[string]string{
		"/usr/bin/traycast":           "/usr/bin/traycast",
		"/home/a b/traycast":          `"/home/a b/traycast"`,
		`/opt/$weird/"name"/traycast`: `"/opt/\$weird/\"name\"/traycast"`,
	}
	for in, want := range tests {
		if got := quoteExec(in); got != want {
			t.Errorf("quoteExec(%q) = %q, want %q", in, got, want)
		}
	}
}
