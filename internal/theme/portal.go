package theme

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	portalDest       = "org.freedesktop.portal.Desktop"
	portalPath       = "/org/freedesktop/portal/desktop"
	portalReadOne    = "org.freedesktop.portal.Settings.ReadOne"
	portalRead       = "org.freedesktop.portal.Settings.Read"
	appearanceNS     = "org.freedesktop.appearance"
	colorSchemeKey   = "color-scheme"
	gnomeInterfaceNS = "org.gnome.desktop.interface"
	gtkThemeKey      = "gtk-theme"
)

// portalTimeout bounds the portal reads of one CurrentIsDark call.
const portalTimeout = 200 * time.Millisecond

// Values of org.freedesktop.appearance color-scheme.
const (
	schemeNoPreference uint32 = 0
	schemeDark         uint32 = 1
	schemeLight        uint32 = 2
)

// settingsReader reads one portal setting.
type settingsReader interface {
	read(ctx context.Context, namespace, key string) (dbus.Variant, error)
}

// PortalWatcher reads the color scheme from the XDG desktop portal over
// the session bus.
type PortalWatcher struct {
	fallback bool
	timeout  time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	reader settingsReader
}

var _ Watcher = (*PortalWatcher)(nil)

// NewPortalWatcher returns a watcher that reports fallback whenever the
// portal cannot answer.
func NewPortalWatcher(fallback bool, logger *slog.Logger) *PortalWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortalWatcher{fallback: fallback, timeout: portalTimeout, logger: logger}
}

// CurrentIsDark implements Watcher.
func (w *PortalWatcher) CurrentIsDark() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.reader == nil {
		r, err := newBusReader()
		if err != nil {
			w.logger.Debug("theme portal unavailable", "error", err)
			return w.fallback
		}
		w.reader = r
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	dark, err := resolveDark(ctx, w.reader, w.fallback)
	if err != nil {
		w.logger.Debug("theme portal read failed", "error", err)
		// Reconnect on the next poll; the bus may have restarted.
		if c, ok := w.reader.(*busReader); ok {
			c.close(w.logger)
		}
		w.reader = nil
		return w.fallback
	}
	return dark
}

// Close releases the session bus connection.
func (w *PortalWatcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.reader.(*busReader); ok {
		c.close(w.logger)
	}
	w.reader = nil
}

// resolveDark asks for color-scheme first and falls back to the GTK theme
// name when the user expressed no preference.
func resolveDark(ctx context.Context, r settingsReader, fallback bool) (bool, error) {
	v, err := r.read(ctx, appearanceNS, colorSchemeKey)
	if err != nil {
		return fallback, err
	}
	switch scheme, ok := decodeScheme(v); {
	case ok && scheme == schemeDark:
		return true, nil
	case ok && scheme == schemeLight:
		return false, nil
	}

	v, err = r.read(ctx, gnomeInterfaceNS, gtkThemeKey)
	if err != nil {
		// Having no gtk-theme setting is not a portal failure.
		return fallback, nil
	}
	if name, ok := unwrap(v).(string); ok && name != "" {
		return strings.HasSuffix(strings.ToLower(name), "-dark"), nil
	}
	return fallback, nil
}

// decodeScheme extracts the color-scheme enum from a portal reply.
func decodeScheme(v dbus.Variant) (uint32, bool) {
	switch n := unwrap(v).(type) {
	case uint32:
		return n, true
	case int32:
		return uint32(n), n >= 0
	case uint8:
		return uint32(n), true
	default:
		return schemeNoPreference, false
	}
}

// unwrap strips nested variants. The deprecated Read method wraps its
// answer in an extra variant layer.
func unwrap(v dbus.Variant) any {
	val := v.Value()
	for {
		inner, ok := val.(dbus.Variant)
		if !ok {
			return val
		}
		val = inner.Value()
	}
}

type busReader struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

func newBusReader() (*busReader, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &busReader{conn: conn, obj: conn.Object(portalDest, portalPath)}, nil
}

func (b *busReader) read(ctx context.Context, namespace, key string) (dbus.Variant, error) {
	var v dbus.Variant
	err := b.obj.CallWithContext(ctx, portalReadOne, 0, namespace, key).Store(&v)
	if err == nil {
		return v, nil
	}
	if ctx.Err() != nil {
		return dbus.Variant{}, fmt.Errorf("read %s %s: %w", namespace, key, ctx.Err())
	}
	// Portals older than version 2 only implement Read.
	if err2 := b.obj.CallWithContext(ctx, portalRead, 0, namespace, key).Store(&v); err2 != nil {
		return dbus.Variant{}, fmt.Errorf("read %s %s: %w", namespace, key, err2)
	}
	return v, nil
}

func (b *busReader) close(logger *slog.Logger) {
	if err := b.conn.Close(); err != nil {
		logger.Debug("failed to close D-Bus connection", "error", err)
	}
}
