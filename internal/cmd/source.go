package cmd

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/runger/autocomplete/internal/catalog"
	"github.com/runger/autocomplete/internal/config"
	"github.com/runger/autocomplete/internal/option"
)

// maxQueryLen is the maximum length of a query string in bytes.
const maxQueryLen = 4096

// loadOptions resolves the catalog for pick and filter. An inline
// --options list wins over --catalog, which wins over catalog.source.
func loadOptions(ctx context.Context, cfg *config.Config, location, inline string) ([]option.Option, error) {
	if strings.TrimSpace(inline) != "" {
		return option.ParseList(inline)
	}
	if location == "" {
		location = cfg.Catalog.Source
	}
	src, err := catalog.Open(location)
	if err != nil {
		return nil, err
	}
	defer catalog.Close(src) //nolint:errcheck // read-only use
	opts, err := catalog.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %q: %w", location, err)
	}
	return opts, nil
}

// sanitizeQuery strips control characters and validates the query string.
func sanitizeQuery(q string) (string, error) {
	if q == "" {
		return "", nil
	}
	if strings.ContainsAny(q, "\n\r") {
		return "", fmt.Errorf("query must not contain newlines")
	}

	// Strip control characters (0x00-0x1F) except tab (0x09).
	var b strings.Builder
	b.Grow(len(q))
	for _, r := range q {
		if r <= 0x1F && r != 0x09 {
			continue
		}
		b.WriteRune(r)
	}
	result := b.String()

	if len(result) > maxQueryLen {
		cut := maxQueryLen
		for cut > 0 && !utf8.RuneStart(result[cut]) {
			cut--
		}
		result = result[:cut]
	}
	return result, nil
}

// formatSelection renders options one per line, as labels or values.
func formatSelection(opts option.Options, values bool) string {
	lines := opts.Labels()
	if values {
		lines = opts.Values()
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
