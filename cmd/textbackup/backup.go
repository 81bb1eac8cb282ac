package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/textbackup/internal/backup"
	"github.com/gorewood/textbackup/internal/collection"
	"github.com/gorewood/textbackup/internal/config"
	"github.com/gorewood/textbackup/internal/hook"
	"github.com/gorewood/textbackup/internal/output"
)

// newBackupCmd creates the backup command.
func newBackupCmd() *cobra.Command {
	return newBackupCmdInternal(nil, nil)
}

// newBackupCmdInternal creates the backup command with optional store and
// hook runner injection. Nil values are replaced by the real collection
// and child processes when the command runs.
func newBackupCmdInternal(store collection.Store, hooks hook.Runner) *cobra.Command {
	var queryFlag, outFlag string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export matching notes as text",
		Long: `Render every note matching the configured search and write the backup.

The search, templates, export location and hooks come from the
configuration file. Previous backup files with the same names are
overwritten.

Examples:
  textbackup backup                          # Back up with the configuration
  textbackup backup --query 'deck:Japanese'  # Override the search
  textbackup backup --out /tmp/anki --json   # Override the export directory`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBackup(cmd, store, hooks, queryFlag, outFlag)
		},
	}

	cmd.Flags().StringVar(&queryFlag, "query", "", "Search to run instead of the configured searchTerm")
	cmd.Flags().StringVar(&outFlag, "out", "", "Export directory instead of the configured exportPath")

	return cmd
}

func runBackup(cmd *cobra.Command, store collection.Store, hooks hook.Runner, query, out string) error {
	printer := newPrinter(cmd)

	cfg, cfgStore := loadConfig(cmd, printer)
	if cmd.Flags().Changed("query") {
		cfg.SearchTerm = query
	}
	if out != "" {
		cfg.ExportPath = out
	}
	if err := validateConfig(printer, cfg); err != nil {
		return fail(printer, err)
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return fail(printer, err)
	}

	store, closeStore, err := openStore(cmd.Context(), cmd, store)
	if err != nil {
		return fail(printer, err)
	}
	defer closeStore()
	warnUnknownNoteTypes(printer, cfg, store)

	if hooks == nil {
		hooks = &hook.ExecRunner{Stdout: cmd.ErrOrStderr()}
	}
	runner := &backup.Runner{
		Store:    store,
		Hooks:    hooks,
		Logger:   logger,
		Location: time.Local,
		LockDir:  configDir(cfgStore),
	}

	res, err := runner.Run(cmd.Context(), cfg)
	if err != nil {
		return fail(printer, err)
	}

	if printer.IsJSON() {
		return printer.WriteJSON(res)
	}
	for _, w := range res.HookWarnings {
		printer.Warn("%s", w)
	}
	return printer.Success(map[string]any{"message": backupSummary(res)})
}

// noteTypeLister is implemented by stores that know their note types.
type noteTypeLister interface {
	NoteTypeNames() []string
}

// warnUnknownNoteTypes reports noteTypeExceptions entries for note types
// the collection does not have. Such entries never apply.
func warnUnknownNoteTypes(printer *output.Printer, cfg config.Config, store collection.Store) {
	lister, ok := store.(noteTypeLister)
	if !ok {
		return
	}
	known := make(map[string]bool)
	for _, name := range lister.NoteTypeNames() {
		known[name] = true
	}
	var unknown []string
	for name := range cfg.NoteTypeExceptions {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		printer.Warn("%s lists note type %q, which the collection does not have", config.KeyNoteTypeExceptions, name)
	}
}

func backupSummary(res *backup.Result) string {
	noun := "notes"
	if res.Notes == 1 {
		noun = "note"
	}
	if len(res.Files) == 1 {
		return fmt.Sprintf("Backed up %d %s to %s", res.Notes, noun, res.Files[0])
	}
	return fmt.Sprintf("Backed up %d %s to %d files in %s", res.Notes, noun, len(res.Files), res.Dir)
}
