package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/runger/autocomplete/internal/catalog"
	"github.com/runger/autocomplete/internal/config"
)

var (
	exportCatalog string
	exportFormat  string
	importDB      string
	importTable   string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Convert and import option catalogs",
	Long: `Work with option catalogs.

A catalog location is one of:
  fruits                     the built-in demo catalog
  <file>.yaml|.yml|.toml|.json  a document with an "options" list
  <file>.db|.sqlite          a SQLite database (table "options")
  sqlite:<path>[#table]      a SQLite database and table`,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print a catalog as YAML, TOML or JSON",
	Args:  cobra.NoArgs,
	RunE:  runCatalogExport,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <location>",
	Short: "Copy a catalog into a SQLite database",
	Long: `Copy a catalog into a SQLite table, replacing its contents.

The database defaults to catalog.db in the data directory
($XDG_DATA_HOME/autocomplete). Point catalog.source at it with:
  autocomplete config catalog.source sqlite:<path>`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

func init() {
	catalogExportCmd.Flags().StringVar(&exportCatalog, "catalog", "", "catalog location (default catalog.source)")
	catalogExportCmd.Flags().StringVar(&exportFormat, "format", "yaml", "output format: yaml, toml or json")

	catalogImportCmd.Flags().StringVar(&importDB, "db", "", "SQLite database path (default in the data directory)")
	catalogImportCmd.Flags().StringVar(&importTable, "table", catalog.DefaultTable, "table name")

	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.AddCommand(catalogImportCmd)
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts, err := loadOptions(cmd.Context(), cfg, exportCatalog, "")
	if err != nil {
		return err
	}
	data, err := catalog.Encode(strings.ToLower(exportFormat), opts)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts, err := loadOptions(cmd.Context(), cfg, args[0], "")
	if err != nil {
		return err
	}

	dbPath := importDB
	if dbPath == "" {
		dbPath = config.DefaultPaths().CatalogFile()
	}
	dst, err := catalog.OpenSQLite(dbPath, importTable)
	if err != nil {
		return err
	}
	defer dst.Close()

	if err := dst.Save(cmd.Context(), opts); err != nil {
		return err
	}

	size := "unknown size"
	if info, err := os.Stat(dbPath); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	abs, _ := filepath.Abs(dbPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s into %s%s%s (table %s, %s)\n",
		english.Plural(len(opts), "option", ""), colorCyan, abs, colorReset, importTable, size)
	return nil
}
