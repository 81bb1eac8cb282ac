// Package main provides the entry point for the textbackup CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gorewood/textbackup/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the textbackup CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "textbackup",
		Short: "Back up Anki notes as plain text",
		Long: `textbackup - Back up the notes of an Anki collection as plain text.

Every note matching the configured search is rendered through a template
built from the configuration:
  - the note id and creation date, always
  - optional sections: note type, deck, tags, review history, next due
  - the note's fields, joined or one per line

Snippets go to one combined file or to one file per note. Commands can be
run before and after each export (for example to commit the backup to git).

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'textbackup --help' for usage")
				printer.Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	addPersistentFlags(cmd)

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// addPersistentFlags registers the flags shared by every subcommand.
func addPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.Bool("json", false, "Output in JSON format")
	flags.String(flagConfig, "", "Configuration file (default "+defaultConfigHint()+")")
	flags.String(flagCollection, "", "Anki collection file (default $"+envCollection+")")
	flags.String(flagLogLevel, "warn", "Log level: debug, info, warn, error")
	flags.String(flagLogFormat, "console", "Log format: console or json")
	flags.String(flagColor, output.ColorAuto, "Color output: auto, always, never")
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "admin", Title: "Admin Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	addGroupedCommand(cmd, newBackupCmd(), "core")
	addGroupedCommand(cmd, newListCmd(), "core")
	addGroupedCommand(cmd, newShowCmd(), "core")

	addGroupedCommand(cmd, newConfigCmd(), "admin")
	addGroupedCommand(cmd, newServeCmd(), "admin")
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
