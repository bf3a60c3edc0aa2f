// Package theme reports whether the desktop prefers a dark color scheme.
package theme

// Watcher is polled by the controller. Implementations do no diffing or
// caching of their own.
type Watcher interface {
	CurrentIsDark() bool
}

// Static always reports the same preference. It backs the "dark" and
// "light" theme settings.
type Static bool

// CurrentIsDark implements Watcher.
func (s Static) CurrentIsDark() bool { return bool(s) }

// Colors used for companion and detail content.
const (
	DarkForeground  uint32 = 0xf5f7fa
	DarkBackground  uint32 = 0x1f2933
	LightForeground uint32 = 0x1f2933
	LightBackground uint32 = 0xf5f7fa
)

// Palette returns foreground and background colors for a scheme.
func Palette(dark bool) (fg, bg uint32) {
	if dark {
		return DarkForeground, DarkBackground
	}
	return LightForeground, LightBackground
}

// Name returns "dark" or "light".
func Name(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}
