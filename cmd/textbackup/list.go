package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gorewood/textbackup/internal/collection"
	"github.com/gorewood/textbackup/internal/output"
	"github.com/gorewood/textbackup/internal/record"
	"github.com/gorewood/textbackup/internal/snippet"
)

// listResult is the JSON shape of the list command.
type listResult struct {
	Query string         `json:"query"`
	Total int            `json:"total"`
	Notes []snippet.Meta `json:"notes"`
}

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	return newListCmdInternal(nil)
}

// newListCmdInternal creates the list command with optional store injection.
func newListCmdInternal(store collection.Store) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "list [query...]",
		Short: "List the notes a backup would export",
		Long: `List notes matching a search, oldest first.

Without a query the configured searchTerm is used, so the list shows
exactly what the next backup will contain.

Search terms (ANDed, "-" negates, quotes group):
  tag:name  deck:name  note:type  nid:1,2  is:new  is:suspended  text

Examples:
  textbackup list                             # Notes of the next backup
  textbackup list -- tag:verbs -is:suspended  # Negated terms after --
  textbackup list deck:Default --limit 5      # First five notes of a deck`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, store, args, limitFlag)
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 0, "Show at most this many notes (0 for all)")

	return cmd
}

func runList(cmd *cobra.Command, store collection.Store, args []string, limit int) error {
	printer := newPrinter(cmd)
	cfg, _ := loadConfig(cmd, printer)

	query := cfg.SearchTerm
	if len(args) > 0 {
		query = strings.Join(args, " ")
	}

	store, closeStore, err := openStore(cmd.Context(), cmd, store)
	if err != nil {
		return fail(printer, err)
	}
	defer closeStore()

	ids, err := store.FindRecordIDs(cmd.Context(), query)
	if err != nil {
		return fail(printer, err)
	}

	shown := ids
	if limit > 0 && limit < len(ids) {
		shown = ids[:limit]
	}

	projector := record.NewProjector(store, cfg)
	metas := make([]snippet.Meta, 0, len(shown))
	for _, id := range shown {
		_, meta, err := projector.Project(cmd.Context(), id)
		if err != nil {
			return fail(printer, err)
		}
		metas = append(metas, meta)
	}

	if printer.IsJSON() {
		return printer.WriteJSON(listResult{Query: query, Total: len(ids), Notes: metas})
	}

	if len(ids) == 0 {
		printer.Println("No notes match.")
		return nil
	}

	rows := make([][]string, 0, len(metas))
	for _, m := range metas {
		rows = append(rows, []string{m.NID, m.NoteType, m.Deck, m.Created})
	}
	printer.Table([]string{"nid", "note type", "deck", "created"}, rows,
		output.AlignRight, output.AlignLeft, output.AlignLeft, output.AlignLeft)
	if len(metas) < len(ids) {
		printer.Stderr("%d of %d notes shown\n", len(metas), len(ids))
	}
	return nil
}
