package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gorewood/textbackup/internal/collection"
	"github.com/gorewood/textbackup/internal/output"
	"github.com/gorewood/textbackup/internal/record"
	"github.com/gorewood/textbackup/internal/snippet"
)

// showResult is the JSON shape of the show command.
type showResult struct {
	snippet.Meta
	Snippet string `json:"snippet"`
}

// newShowCmd creates the show command.
func newShowCmd() *cobra.Command {
	return newShowCmdInternal(nil)
}

// newShowCmdInternal creates the show command with optional store injection.
// If store is nil, the collection is opened when the command runs.
func newShowCmdInternal(store collection.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "show <nid>",
		Short: "Render one note as it would be backed up",
		Long: `Render a single note through the configured template and print the snippet.

Examples:
  textbackup show 1500000000001         # Print the snippet
  textbackup show 1500000000001 --json  # Snippet with note details`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, store, args[0])
		},
	}
}

func runShow(cmd *cobra.Command, store collection.Store, arg string) error {
	printer := newPrinter(cmd)

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fail(printer, output.NewUserError("not a note id: "+strconv.Quote(arg)))
	}

	cfg, _ := loadConfig(cmd, printer)
	if err := validateConfig(printer, cfg); err != nil {
		return fail(printer, err)
	}

	store, closeStore, err := openStore(cmd.Context(), cmd, store)
	if err != nil {
		return fail(printer, err)
	}
	defer closeStore()

	projector := record.NewProjector(store, cfg)
	text, meta, err := projector.Snippet(cmd.Context(), snippet.Assemble(cfg), id)
	if err != nil {
		return fail(printer, err)
	}

	if printer.IsJSON() {
		return printer.WriteJSON(showResult{Meta: meta, Snippet: text})
	}
	printer.Snippet(meta.NID+"  "+meta.NoteType, text)
	return nil
}
