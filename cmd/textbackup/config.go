package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gorewood/textbackup/internal/config"
	"github.com/gorewood/textbackup/internal/output"
)

// newConfigCmd creates the config command and its subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the backup configuration",
		Long: `Inspect and create the configuration file.

The file is JSON by default; a path ending in .yaml, .yml or .toml is read
and written in that format. Keys present in the file replace the defaults
one top-level key at a time.`,
	}

	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer := newPrinter(cmd)
			store := configStore(cmd)
			if printer.IsJSON() {
				return printer.Success(map[string]any{"path": store.Path(), "format": string(config.FormatForPath(store.Path()))})
			}
			printer.Println(store.Path())
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var forceFlag bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Long: `Write the default configuration to the configuration file.

An existing file is left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, forceFlag)
		},
	}

	cmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing configuration file")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	printer := newPrinter(cmd)
	store := configStore(cmd)

	if _, err := os.Stat(store.Path()); err == nil && !force {
		return fail(printer, output.NewConflictError(fmt.Sprintf("%s already exists; use --force to overwrite", store.Path())))
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fail(printer, output.NewSystemErrorWithCause(err.Error(), err))
	}

	if err := store.Save(config.Defaults()); err != nil {
		return fail(printer, output.NewSystemErrorWithCause(err.Error(), err))
	}

	return printer.Success(map[string]any{
		"message": "Wrote default configuration to " + store.Path(),
		"path":    store.Path(),
	})
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration a backup would use: the stored file merged over
the defaults. Validation problems and warnings are reported on stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd)
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	printer := newPrinter(cmd)
	cfg, _ := loadConfig(cmd, printer)

	if err := validateConfig(printer, cfg); err != nil {
		printer.Warn("%v", err)
	}

	if printer.IsJSON() {
		return printer.WriteJSON(cfg)
	}

	rows, err := configRows(cfg)
	if err != nil {
		return fail(printer, err)
	}
	printer.Table([]string{"key", "value"}, rows)
	return nil
}

// configRows flattens cfg into sorted key/value rows. Strings are shown
// as is; everything else as compact JSON.
func configRows(cfg config.Config) ([][]string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode configuration: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		if s, ok := doc[key].(string); ok {
			rows = append(rows, []string{key, s})
			continue
		}
		raw, err := json.Marshal(doc[key])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		rows = append(rows, []string{key, string(raw)})
	}
	return rows, nil
}
