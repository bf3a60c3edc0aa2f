package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultLocationTimeout bounds how long Load waits for a location.
const DefaultLocationTimeout = 5 * time.Second

// ErrLocationTimeout is reported when the lookup exceeded the timeout.
var ErrLocationTimeout = errors.New("location timeout")

// Locator resolves the current location.
type Locator interface {
	FetchLocation(ctx context.Context) (Location, error)
}

// Fetcher retrieves a forecast for coordinates.
type Fetcher interface {
	FetchWeather(ctx context.Context, lat, lon float64) (*Snapshot, error)
}

// Source is the full external data collaborator.
type Source interface {
	Locator
	Fetcher
}

// Result is the outcome of one Load. Snapshot is nil when the forecast
// could not be fetched; Location is always usable.
type Result struct {
	Location    Location
	Snapshot    *Snapshot
	LocationErr error
	Err         error
}

// Error returns the most relevant failure for display, or "".
func (r Result) Error() string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case r.LocationErr != nil:
		return r.LocationErr.Error()
	default:
		return ""
	}
}

// Loader combines location lookup and forecast fetch.
type Loader struct {
	source          Source
	locationTimeout time.Duration
	logger          *slog.Logger
}

// NewLoader returns a Loader. A non-positive timeout uses DefaultLocationTimeout.
func NewLoader(source Source, locationTimeout time.Duration, logger *slog.Logger) *Loader {
	if locationTimeout <= 0 {
		locationTimeout = DefaultLocationTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, locationTimeout: locationTimeout, logger: logger}
}

// Load resolves the location (unless cached is non-nil) and fetches the
// forecast for it. It never blocks on the location lookup for longer than
// the configured timeout; on timeout TimeoutLocation is used.
func (l *Loader) Load(ctx context.Context, cached *Location) Result {
	var res Result
	if cached != nil {
		res.Location = *cached
	} else {
		res.Location, res.LocationErr = l.locate(ctx)
	}
	if ctx.Err() != nil {
		res.Err = ctx.Err()
		return res
	}

	snap, err := l.source.FetchWeather(ctx, res.Location.Latitude, res.Location.Longitude)
	if err != nil {
		res.Err = err
		return res
	}
	snap.Location = res.Location
	res.Snapshot = snap
	return res
}

type locateResult struct {
	loc Location
	err error
}

func (l *Loader) locate(ctx context.Context) (Location, error) {
	lctx, cancel := context.WithTimeout(ctx, l.locationTimeout)
	defer cancel()

	// Buffered so an abandoned lookup can still complete.
	done := make(chan locateResult, 1)
	go func() {
		loc, err := l.source.FetchLocation(lctx)
		done <- locateResult{loc: loc, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) && ctx.Err() == nil {
				l.logger.Warn("location lookup timed out", "timeout", l.locationTimeout)
				return TimeoutLocation, ErrLocationTimeout
			}
			l.logger.Warn("location lookup failed, using fallback", "error", r.err)
			return FallbackLocation, r.err
		}
		return r.loc, nil
	case <-lctx.Done():
		if ctx.Err() != nil {
			return TimeoutLocation, ctx.Err()
		}
		l.logger.Warn("location lookup timed out", "timeout", l.locationTimeout)
		return TimeoutLocation, fmt.Errorf("%w after %s", ErrLocationTimeout, l.locationTimeout)
	}
}
