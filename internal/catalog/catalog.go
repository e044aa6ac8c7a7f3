// Package catalog supplies option catalogs to autocomplete widgets.
//
// A Source is shaped like a paginated data provider: the caller asks for a
// catalog with a request id and gets the same id back, so late responses
// for an abandoned request can be recognised and dropped.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/runger/autocomplete/internal/option"
)

// ErrUnsupported is returned by Open for unrecognised catalog locations.
var ErrUnsupported = errors.New("unsupported catalog source")

// Source supplies options.
type Source interface {
	Fetch(ctx context.Context, req Request) (Response, error)
}

// Request describes what the caller wants from a Source.
type Request struct {
	RequestID uint64 // Monotonically increasing, for stale response detection
	Query     string // Optional pre-filter; sources may ignore it
	Limit     int    // Zero means no limit
}

// Response carries options back from a Source.
type Response struct {
	RequestID uint64 // Echoes Request.RequestID
	Options   []option.Option
}

// Static is an in-memory Source. It ignores Query.
type Static []option.Option

// Fetch implements Source.
func (s Static) Fetch(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	return Response{RequestID: req.RequestID, Options: limit(s, req.Limit)}, nil
}

// Fruits is the demo catalog.
func Fruits() Static {
	return Static{
		option.String("Apple"),
		option.String("Banana"),
		option.Pair("Orange", "orange"),
		option.Pair("Grapes", "grapes"),
	}
}

// Delayed wraps a Source and waits before every fetch, honouring
// cancellation. The demo uses it to show the loading state.
type Delayed struct {
	Source Source
	Delay  time.Duration
}

// Fetch implements Source.
func (d Delayed) Fetch(ctx context.Context, req Request) (Response, error) {
	if d.Delay > 0 {
		timer := time.NewTimer(d.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}
	return d.Source.Fetch(ctx, req)
}

// Open resolves a catalog location: "fruits" (or empty) for the demo
// catalog, a .yaml/.yml/.toml/.json file, or a SQLite database given as
// "sqlite:<path>[#table]" or a .db/.sqlite file.
func Open(location string) (Source, error) {
	switch {
	case location == "" || location == "fruits":
		return Fruits(), nil
	case strings.HasPrefix(location, "sqlite:"):
		path, table, _ := strings.Cut(strings.TrimPrefix(location, "sqlite:"), "#")
		return OpenSQLite(path, table)
	}

	switch strings.ToLower(filepath.Ext(location)) {
	case ".yaml", ".yml", ".toml", ".json":
		return File(location), nil
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(location, "")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, location)
	}
}

// Load fetches everything from src in one request.
func Load(ctx context.Context, src Source) ([]option.Option, error) {
	resp, err := src.Fetch(ctx, Request{})
	if err != nil {
		return nil, err
	}
	return resp.Options, nil
}

// Close releases src if it holds resources.
func Close(src Source) error {
	if c, ok := src.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func limit(opts []option.Option, n int) []option.Option {
	if n > 0 && len(opts) > n {
		opts = opts[:n]
	}
	return append([]option.Option(nil), opts...)
}
