package theme

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
)

type fakeReader map[string]any

func (f fakeReader) read(_ context.Context, namespace, key string) (dbus.Variant, error) {
	v, ok := f[namespace+"/"+key]
	if !ok {
		return dbus.Variant{}, errors.New("no such setting")
	}
	if err, ok := v.(error); ok {
		return dbus.Variant{}, err
	}
	return dbus.MakeVariant(v), nil
}

func TestResolveDark(t *testing.T) {
	tests := []struct {
		name     string
		settings fakeReader
		fallback bool
		want     bool
		wantErr  bool
	}{
		{
			name:     "prefers dark",
			settings: fakeReader{"org.freedesktop.appearance/color-scheme": uint32(1)},
			want:     true,
		},
		{
			name:     "prefers light",
			settings: fakeReader{"org.freedesktop.appearance/color-scheme": uint32(2)},
			fallback: true,
			want:     false,
		},
		{
			name:     "nested variant from Read",
			settings: fakeReader{"org.freedesktop.appearance/color-scheme": dbus.MakeVariant(uint32(1))},
			want:     true,
		},
		{
			name: "no preference uses gtk theme",
			settings: fakeReader{
				"org.freedesktop.appearance/color-scheme": uint32(0),
				"org.gnome.desktop.interface/gtk-theme":   "Adwaita-dark",
			},
			want: true,
		},
		{
			name: "no preference light gtk theme",
			settings: fakeReader{
				"org.freedesktop.appearance/color-scheme": uint32(0),
				"org.gnome.desktop.interface/gtk-theme":   "Adwaita",
			},
			fallback: true,
			want:     false,
		},
		{
			name:     "no preference no gtk theme",
			settings: fakeReader{"org.freedesktop.appearance/color-scheme": uint32(0)},
			fallback: true,
			want:     true,
		},
		{
			name:     "portal failure",
			settings: fakeReader{"org.freedesktop.appearance/color-scheme": errors.New("ServiceUnknown")},
			fallback: true,
			want:     true,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveDark(context.Background(), tt.settings, tt.fallback)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveDark() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("resolveDark() = %v, want %v", got, tt.want)
			}
		})
	}
}

// stalledReader never answers until its context gives up.
type stalledReader struct{}

func (stalledReader) read(ctx context.Context, namespace, key string) (dbus.Variant, error) {
	<-ctx.Done()
	return dbus.Variant{}, ctx.Err()
}

func TestPortalWatcher_StalledPortalReturnsFallback(t *testing.T) {
	w := NewPortalWatcher(true, nil)
	w.timeout = 20 * time.Millisecond
	w.reader = stalledReader{}

	start := time.Now()
	if !w.CurrentIsDark() {
		t.Fatalf("CurrentIsDark() = false, want fallback true")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("CurrentIsDark() took %v, want it bounded by the read timeout", elapsed)
	}
	if w.reader != nil {
		t.Fatalf("reader should be dropped after a failed read")
	}
}

func TestDecodeScheme(t *testing.T) {
	if s, ok := decodeScheme(dbus.MakeVariant("dark")); ok {
		t.Fatalf("string should not decode, got %d", s)
	}
	if s, ok := decodeScheme(dbus.MakeVariant(int32(-1))); ok {
		t.Fatalf("negative value should not decode, got %d", s)
	}
	if s, ok := decodeScheme(dbus.MakeVariant(dbus.MakeVariant(uint32(2)))); !ok || s != schemeLight {
		t.Fatalf("nested light = (%d, %v)", s, ok)
	}
}

func TestStaticAndPalette(t *testing.T) {
	if !Static(true).CurrentIsDark() || Static(false).CurrentIsDark() {
		t.Fatalf("Static should report its own value")
	}
	fg, bg := Palette(true)
	if fg != DarkForeground || bg != DarkBackground {
		t.Fatalf("dark palette = %06x/%06x", fg, bg)
	}
	if Name(false) != "light" {
		t.Fatalf("Name(false) = %q", Name(false))
	}
}
