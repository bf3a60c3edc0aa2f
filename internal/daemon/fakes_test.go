package daemon

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/1broseidon/traycast/internal/platform"
	"github.com/1broseidon/traycast/internal/weather"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// surfaceLog records the calls made on a fakeSurface.
type surfaceLog struct {
	moves     []platform.Point
	resizes   []platform.Size
	renders   []platform.Content
	opacities []float64
	shows     int
	hides     int
	raises    int
	focuses   int
	destroyed bool
	calls     []string
}

type fakeSurface struct {
	id platform.WindowID

	mu      sync.Mutex
	log     surfaceLog
	moveErr error
}

func (s *fakeSurface) ID() platform.WindowID { return s.id }

func (s *fakeSurface) Move(p platform.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moveErr != nil {
		return s.moveErr
	}
	s.log.moves = append(s.log.moves, p)
	s.log.calls = append(s.log.calls, "move")
	return nil
}

func (s *fakeSurface) Resize(sz platform.Size) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.resizes = append(s.log.resizes, sz)
	s.log.calls = append(s.log.calls, "resize")
	return nil
}

func (s *fakeSurface) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.shows++
	s.log.calls = append(s.log.calls, "show")
	return nil
}

func (s *fakeSurface) Hide() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.hides++
	s.log.calls = append(s.log.calls, "hide")
	return nil
}

func (s *fakeSurface) Raise() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.raises++
	s.log.calls = append(s.log.calls, "raise")
	return nil
}

func (s *fakeSurface) SetOpacity(o float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.opacities = append(s.log.opacities, o)
	s.log.calls = append(s.log.calls, "opacity")
	return nil
}

func (s *fakeSurface) Render(c platform.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.renders = append(s.log.renders, c)
	s.log.calls = append(s.log.calls, "render")
	return nil
}

func (s *fakeSurface) Focus() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.focuses++
	return nil
}

func (s *fakeSurface) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.destroyed = true
	return nil
}

func (s *fakeSurface) setMoveErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveErr = err
}

// snapshot returns a copy of the call log.
func (s *fakeSurface) snapshot() surfaceLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.log
	l.moves = append([]platform.Point(nil), l.moves...)
	l.resizes = append([]platform.Size(nil), l.resizes...)
	l.renders = append([]platform.Content(nil), l.renders...)
	l.opacities = append([]float64(nil), l.opacities...)
	l.calls = append([]string(nil), l.calls...)
	return l
}

func (s *fakeSurface) lastRender() platform.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.log.renders) == 0 {
		return platform.Content{}
	}
	return s.log.renders[len(s.log.renders)-1]
}

type fakeFactory struct {
	mu        sync.Mutex
	companion *fakeSurface
	details   []*fakeSurface
	nextID    platform.WindowID
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{companion: &fakeSurface{id: 1}, nextID: 100}
}

func (f *fakeFactory) NewCompanion() (platform.Surface, error) {
	return f.companion, nil
}

func (f *fakeFactory) NewDetail() (platform.DetailSurface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s := &fakeSurface{id: f.nextID}
	f.details = append(f.details, s)
	return s, nil
}

func (f *fakeFactory) liveDetails() []*fakeSurface {
	f.mu.Lock()
	defer f.mu.Unlock()
	var live []*fakeSurface
	for _, d := range f.details {
		if !d.snapshot().destroyed {
			live = append(live, d)
		}
	}
	return live
}

type fakeProbe struct {
	mu sync.Mutex

	geom       platform.ShellGeometry
	probeErr   error
	visibility platform.Visibility
	visErr     error

	probes    int
	visChecks int
}

func (p *fakeProbe) Probe() (platform.ShellGeometry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes++
	if p.probeErr != nil {
		return platform.ShellGeometry{}, p.probeErr
	}
	return p.geom, nil
}

func (p *fakeProbe) IsShellVisible(platform.Edge) (platform.Visibility, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visChecks++
	if p.visErr != nil {
		return platform.VisibilityHidden, p.visErr
	}
	return p.visibility, nil
}

func (p *fakeProbe) set(fn func(p *fakeProbe)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

func (p *fakeProbe) probeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.probes
}

type fakeTheme struct {
	mu   sync.Mutex
	dark bool
}

func (t *fakeTheme) CurrentIsDark() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dark
}

func (t *fakeTheme) set(dark bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dark = dark
}

type fakeLoader struct {
	mu     sync.Mutex
	result weather.Result
	block  chan struct{}
	calls  int
	cached []*weather.Location
}

func (l *fakeLoader) Load(ctx context.Context, cached *weather.Location) weather.Result {
	l.mu.Lock()
	l.calls++
	l.cached = append(l.cached, cached)
	res := l.result
	block := l.block
	l.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return weather.Result{Err: ctx.Err()}
		}
	}
	return res
}

func (l *fakeLoader) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// bottomShell is a 1920x1080 screen with a 40px bottom panel and its tray
// starting at x=1800.
func bottomShell() platform.ShellGeometry {
	return platform.ShellGeometry{
		Tray:     platform.Rect{X: 1800, Y: 1040, Width: 120, Height: 40},
		Taskbar:  platform.Rect{X: 0, Y: 1040, Width: 1920, Height: 40},
		Edge:     platform.EdgeBottom,
		Scale:    1,
		Screen:   platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
		WorkArea: platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1040},
	}
}

func sampleSnapshot() *weather.Snapshot {
	return &weather.Snapshot{
		Location:    weather.Location{City: "Memphis, TN", Latitude: 35.1, Longitude: -90},
		Units:       weather.Fahrenheit,
		Temperature: 72,
		High:        75,
		Low:         60,
		Condition:   "Clear",
		Humidity:    40,
		WindSpeed:   5,
		Sunrise:     "2026-10-17T07:05",
		Sunset:      "2026-10-17T18:20",
		Hourly: []weather.ForecastItem{
			{Label: "3PM", High: 73, Code: 0},
		},
		Daily: []weather.ForecastItem{
			{Label: "Sat", High: 70, Low: 55, Code: 61, Precip: 40},
		},
	}
}
