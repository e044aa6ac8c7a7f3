package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/autocomplete/internal/filter"
	"github.com/runger/autocomplete/internal/option"
)

// filterOpts holds the parsed flags of the filter command.
type filterOpts struct {
	catalog string
	options string
	filter  string
	query   string
	limit   int
	values  bool
}

var filterFlags filterOpts

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Print the options a query would show, without a UI",
	Long: `Apply a filter policy to a catalog and print the visible options, one per
line, in the order the dropdown would list them.

Examples:
  autocomplete filter --query an
  autocomplete filter --options 'Apple Banana Orange=orange' --query ap --values
  autocomplete filter --catalog fruits.yaml --filter fuzzy --query grp`,
	Args: cobra.NoArgs,
	RunE: runFilter,
}

func init() {
	f := filterCmd.Flags()
	f.StringVar(&filterFlags.catalog, "catalog", "", "catalog location (default catalog.source)")
	f.StringVar(&filterFlags.options, "options", "", "inline options: space separated, Label=value for pairs")
	f.StringVar(&filterFlags.filter, "filter", "", "filter policy: substring, prefix, fuzzy (default ui.filter)")
	f.StringVar(&filterFlags.query, "query", "", "search query")
	f.IntVar(&filterFlags.limit, "limit", 0, "print at most this many options (0 = all)")
	f.BoolVar(&filterFlags.values, "values", false, "print option values instead of labels")
}

func runFilter(cmd *cobra.Command, args []string) error {
	opts := filterFlags
	if opts.limit < 0 {
		return fmt.Errorf("--limit must be non-negative")
	}
	query, err := sanitizeQuery(opts.query)
	if err != nil {
		return fmt.Errorf("--query: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.filter == "" {
		opts.filter = cfg.UI.Filter
	}
	filterFn, err := filter.ByName(opts.filter)
	if err != nil {
		return err
	}

	choices, err := loadOptions(cmd.Context(), cfg, opts.catalog, opts.options)
	if err != nil {
		return err
	}

	visible := option.Options(filterFn(choices, query))
	if opts.limit > 0 && len(visible) > opts.limit {
		visible = visible[:opts.limit]
	}
	fmt.Fprint(cmd.OutOrStdout(), formatSelection(visible, opts.values))
	return nil
}
