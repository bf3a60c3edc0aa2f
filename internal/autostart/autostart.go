// Package autostart maintains the XDG autostart entry that launches the
// daemon at login.
package autostart

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const entryRelPath = "autostart/traycast.desktop"

// DefaultPath returns $XDG_CONFIG_HOME/autostart/traycast.desktop.
func DefaultPath() (string, error) {
	path, err := xdg.ConfigFile(entryRelPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve autostart path: %w", err)
	}
	return path, nil
}

// Entry is one desktop entry file.
type Entry struct {
	Path string
	// Exec is the absolute path of the traycast binary.
	Exec string
}

// Render returns the desktop entry contents.
func (e Entry) Render() []byte {
	var b bytes.Buffer
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=traycast\n")
	b.WriteString("Comment=Weather beside the system tray\n")
	fmt.Fprintf(&b, "Exec=%s run\n", quoteExec(e.Exec))
	b.WriteString("Terminal=false\n")
	b.WriteString("NoDisplay=true\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.Bytes()
}

// Enabled reports whether the entry file exists.
func (e Entry) Enabled() bool {
	_, err := os.Stat(e.Path)
	return err == nil
}

// Sync creates or removes the entry. Writing is skipped when the file
// already has the expected contents.
func (e Entry) Sync(enabled bool) error {
	if !enabled {
		if err := os.Remove(e.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove autostart entry: %w", err)
		}
		return nil
	}

	want := e.Render()
	if have, err := os.ReadFile(e.Path); err == nil && bytes.Equal(have, want) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(e.Path), 0755); err != nil {
		return fmt.Errorf("create autostart directory: %w", err)
	}
	if err := os.WriteFile(e.Path, want, 0644); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}
	return nil
}

// quoteExec applies the desktop entry Exec quoting rules.
func quoteExec(path string) string {
	if !strings.ContainsAny(path, " \t\"'\\$`") {
		return path
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(path) + `"`
}
