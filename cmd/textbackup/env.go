package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gorewood/textbackup/internal/collection"
	"github.com/gorewood/textbackup/internal/config"
	"github.com/gorewood/textbackup/internal/envfile"
	"github.com/gorewood/textbackup/internal/logging"
	"github.com/gorewood/textbackup/internal/output"
)

// Persistent flag names.
const (
	flagConfig     = "config"
	flagCollection = "collection"
	flagLogLevel   = "log-level"
	flagLogFormat  = "log-format"
	flagColor      = "color"
)

// envCollection names the collection file when --collection is not given.
// It is read from the environment, then from envFileName next to the
// configuration file.
const (
	envCollection = "TEXTBACKUP_COLLECTION"
	envFileName   = "env"
)

func defaultConfigHint() string {
	if path := config.DefaultPath(); path != "" {
		return path
	}
	return config.DefaultFileName
}

// stringFlag reads a string flag from the command or its persistent parents.
func stringFlag(cmd *cobra.Command, name string) string {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup(name)
	}
	if flag == nil {
		return ""
	}
	return flag.Value.String()
}

// newPrinter builds the printer for cmd honoring --json and --color.
func newPrinter(cmd *cobra.Command) *output.Printer {
	out := cmd.OutOrStdout()
	styled := output.ResolveColorMode(stringFlag(cmd, flagColor), output.IsTTY(out))
	return output.NewPrinter(out, isJSONMode(cmd), styled).WithStderr(cmd.ErrOrStderr())
}

// newLogger builds the run logger from --log-level and --log-format. Logs
// always go to stderr so stdout stays parseable.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:  stringFlag(cmd, flagLogLevel),
		Format: stringFlag(cmd, flagLogFormat),
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, output.NewUserErrorWithCause(err.Error(), err)
	}
	return logger, nil
}

// configStore returns the file store named by --config.
func configStore(cmd *cobra.Command) *config.FileStore {
	return config.NewFileStore(config.ExpandHome(stringFlag(cmd, flagConfig)))
}

// loadConfig loads the merged configuration. Problems with the stored file
// are printed as warnings and the defaults are used.
func loadConfig(cmd *cobra.Command, printer *output.Printer) (config.Config, *config.FileStore) {
	store := configStore(cmd)
	cfg, persisted, err := config.Load(store)
	if err != nil {
		printer.Warn("%v; using defaults", err)
	}
	if persisted {
		printer.Stderr("Wrote default configuration to %s\n", store.Path())
	}
	return cfg, store
}

// validateConfig rejects configurations that would fail during a run and
// prints the warnings for the rest.
func validateConfig(printer *output.Printer, cfg config.Config) error {
	warnings, err := config.Validate(cfg)
	if err != nil {
		return output.NewUserErrorWithCause(err.Error(), err)
	}
	for _, w := range warnings {
		printer.Warn("%s", w)
	}
	return nil
}

// lockDir is where the backup run lock lives: next to the configuration.
func configDir(store *config.FileStore) string {
	return filepath.Dir(store.Path())
}

// openStore returns injected when set, otherwise opens the collection named
// by --collection or TEXTBACKUP_COLLECTION. The returned func closes it.
func openStore(ctx context.Context, cmd *cobra.Command, injected collection.Store) (collection.Store, func(), error) {
	if injected != nil {
		return injected, func() {}, nil
	}

	path := stringFlag(cmd, flagCollection)
	if path == "" {
		envPath := filepath.Join(configDir(configStore(cmd)), envFileName)
		var err error
		if path, err = envfile.Lookup(envCollection, envPath); err != nil {
			return nil, nil, output.NewSystemErrorWithCause(err.Error(), err)
		}
	}
	if path == "" {
		return nil, nil, output.NewUserError(fmt.Sprintf("no collection given; pass --%s or set $%s", flagCollection, envCollection))
	}

	col, err := collection.Open(ctx, config.ExpandHome(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, output.NewUserErrorWithCause(err.Error(), err)
		}
		return nil, nil, output.NewSystemErrorWithCause(err.Error(), err)
	}
	return col, func() { _ = col.Close() }, nil
}
