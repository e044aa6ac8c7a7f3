// Package filter derives the visible option list from a catalog and a query.
package filter

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/runger/autocomplete/internal/option"
)

// Func maps a catalog and the current query to the visible list. A
// host-supplied Func is trusted: its result is shown verbatim.
type Func func(catalog []option.Option, query string) []option.Option

// Filter names accepted by ByName.
const (
	NameSubstring = "substring"
	NamePrefix    = "prefix"
	NameFuzzy     = "fuzzy"
)

// Substring keeps options whose label contains query, ignoring case, in
// catalog order. It is the default policy.
func Substring(catalog []option.Option, query string) []option.Option {
	return matchLabel(catalog, query, strings.Contains)
}

// Prefix keeps options whose label starts with query, ignoring case.
func Prefix(catalog []option.Option, query string) []option.Option {
	return matchLabel(catalog, query, strings.HasPrefix)
}

func matchLabel(catalog []option.Option, query string, match func(s, sub string) bool) []option.Option {
	out := make([]option.Option, 0, len(catalog))
	if query == "" {
		return append(out, catalog...)
	}
	q := strings.ToLower(query)
	for _, o := range catalog {
		if match(strings.ToLower(o.Label()), q) {
			out = append(out, o)
		}
	}
	return out
}

// Fuzzy ranks options by fuzzy match quality against their labels. Unlike
// Substring it reorders the catalog: best matches first.
func Fuzzy(catalog []option.Option, query string) []option.Option {
	if query == "" {
		return append(make([]option.Option, 0, len(catalog)), catalog...)
	}
	labels := make([]string, len(catalog))
	for i, o := range catalog {
		labels[i] = o.Label()
	}
	matches := fuzzy.Find(query, labels)
	out := make([]option.Option, 0, len(matches))
	for _, m := range matches {
		out = append(out, catalog[m.Index])
	}
	return out
}

// ByName resolves a filter policy by name. The empty name selects Substring.
func ByName(name string) (Func, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameSubstring:
		return Substring, nil
	case NamePrefix:
		return Prefix, nil
	case NameFuzzy:
		return Fuzzy, nil
	default:
		return nil, fmt.Errorf("unknown filter %q (want substring, prefix, or fuzzy)", name)
	}
}

// Names lists the accepted filter names.
func Names() []string {
	return []string{NameSubstring, NamePrefix, NameFuzzy}
}
