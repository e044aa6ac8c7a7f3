// Package option defines the selectable units offered by an autocomplete
// widget and the values it reports back to its host.
package option

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
	"github.com/samber/lo"
)

// kind distinguishes bare labels from label/value pairs.
type kind uint8

const (
	kindString kind = iota
	kindPair
)

// Option is either a bare label or a (label, value) pair.
// The zero Option is an empty bare label.
type Option struct {
	label string
	value string
	kind  kind
}

// String returns a bare-label Option.
func String(label string) Option {
	return Option{label: label, kind: kindString}
}

// Pair returns a structured Option with a display label and a machine value.
func Pair(label, value string) Option {
	return Option{label: label, value: value, kind: kindPair}
}

// Strings builds bare-label options in order.
func Strings(labels ...string) []Option {
	return lo.Map(labels, func(l string, _ int) Option { return String(l) })
}

// Label returns the display text.
func (o Option) Label() string { return o.label }

// Value returns the machine value for pairs and the label for bare strings.
func (o Option) Value() string {
	if o.kind == kindPair {
		return o.value
	}
	return o.label
}

// IsPair reports whether o was built with Pair.
func (o Option) IsPair() bool { return o.kind == kindPair }

// Key returns the membership key used for selection toggling. Pairs are
// keyed by their machine value, bare strings by their label, and the two
// kinds never share a key.
func (o Option) Key() string {
	if o.kind == kindPair {
		return "v:" + o.value
	}
	return "s:" + o.label
}

// String implements fmt.Stringer.
func (o Option) String() string {
	if o.kind == kindPair {
		return fmt.Sprintf("%s (%s)", o.label, o.value)
	}
	return o.label
}

// Equal reports whether a and b select the same thing.
func Equal(a, b Option) bool { return a.Key() == b.Key() }

// Value is what a widget reports to its host on change: an Option in
// single-select mode, Options in multi-select mode.
type Value interface {
	isValue()
}

func (Option) isValue() {}

// Options is an ordered collection of options.
type Options []Option

func (Options) isValue() {}

// Contains reports whether o holds an option equal to opt.
func (o Options) Contains(opt Option) bool {
	return lo.ContainsBy(o, func(x Option) bool { return Equal(x, opt) })
}

// Toggle returns a new collection with opt removed if present, or appended
// otherwise. The receiver is not modified.
func (o Options) Toggle(opt Option) Options {
	if o.Contains(opt) {
		return lo.Filter(o, func(x Option, _ int) bool { return !Equal(x, opt) })
	}
	out := make(Options, 0, len(o)+1)
	out = append(out, o...)
	return append(out, opt)
}

// Labels returns the display labels in order.
func (o Options) Labels() []string {
	return lo.Map(o, func(x Option, _ int) string { return x.Label() })
}

// Values returns the machine values in order.
func (o Options) Values() []string {
	return lo.Map(o, func(x Option, _ int) string { return x.Value() })
}

// Selected flattens a Value into an ordered slice. A nil Value yields nil.
func Selected(v Value) Options {
	switch v := v.(type) {
	case Option:
		return Options{v}
	case Options:
		return v
	default:
		return nil
	}
}

// Parse builds an Option from "Label" or "Label=value".
func Parse(s string) (Option, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Option{}, fmt.Errorf("empty option")
	}
	label, value, ok := strings.Cut(s, "=")
	if !ok {
		return String(s), nil
	}
	label = strings.TrimSpace(label)
	value = strings.TrimSpace(value)
	if label == "" {
		return Option{}, fmt.Errorf("option %q: missing label", s)
	}
	if value == "" {
		return Option{}, fmt.Errorf("option %q: missing value", s)
	}
	return Pair(label, value), nil
}

// ParseList splits s with shell quoting rules and parses each word, so
// `Apple "Blood Orange=blood-orange"` yields two options.
func ParseList(s string) ([]Option, error) {
	words, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("failed to split options: %w", err)
	}
	opts := make([]Option, 0, len(words))
	for _, w := range words {
		o, err := Parse(w)
		if err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, nil
}
