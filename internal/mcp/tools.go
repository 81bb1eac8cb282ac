package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/textbackup/internal/record"
	"github.com/gorewood/textbackup/internal/snippet"
)

const defaultListLimit = 100

// NoteSummary identifies a note for listing.
type NoteSummary struct {
	NID      string `json:"nid"      jsonschema:"note id (creation time in epoch milliseconds)"`
	NoteType string `json:"notetype" jsonschema:"note type name"`
	Deck     string `json:"deck"     jsonschema:"deck of the note's first card"`
	Created  string `json:"created"  jsonschema:"creation date in the configured date format"`
}

func summaryFromMeta(m snippet.Meta) NoteSummary {
	return NoteSummary{NID: m.NID, NoteType: m.NoteType, Deck: m.Deck, Created: m.Created}
}

func (b *Backend) projector() *record.Projector {
	return &record.Projector{Store: b.Store, Config: b.Config, Location: b.Location}
}

// --- list_notes ---

// ListNotesInput is the input for the list_notes tool.
type ListNotesInput struct {
	Query string `json:"query,omitempty" jsonschema:"Anki search string; omitted uses the configured searchTerm"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum notes to return (default 100)"`
}

// ListNotesOutput is the output for the list_notes tool.
type ListNotesOutput struct {
	Query string        `json:"query" jsonschema:"search string that was run"`
	Total int           `json:"total" jsonschema:"number of matching notes"`
	Notes []NoteSummary `json:"notes" jsonschema:"matching notes, oldest first"`
}

func handleListNotes(b *Backend) mcp.ToolHandlerFor[ListNotesInput, ListNotesOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListNotesInput) (*mcp.CallToolResult, ListNotesOutput, error) {
		query := input.Query
		if query == "" {
			query = b.Config.SearchTerm
		}
		limit := input.Limit
		if limit <= 0 {
			limit = defaultListLimit
		}

		ids, err := b.Store.FindRecordIDs(ctx, query)
		if err != nil {
			return nil, ListNotesOutput{}, fmt.Errorf("searching notes: %w", err)
		}

		out := ListNotesOutput{Query: query, Total: len(ids), Notes: []NoteSummary{}}
		p := b.projector()
		for _, id := range ids[:min(limit, len(ids))] {
			_, meta, err := p.Project(ctx, id)
			if err != nil {
				return nil, ListNotesOutput{}, err
			}
			out.Notes = append(out.Notes, summaryFromMeta(meta))
		}
		return nil, out, nil
	}
}

// --- render_note ---

// RenderNoteInput is the input for the render_note tool.
type RenderNoteInput struct {
	NID string `json:"nid" jsonschema:"note id to render"`
}

// RenderNoteOutput is the output for the render_note tool.
type RenderNoteOutput struct {
	Note NoteSummary `json:"note"    jsonschema:"the rendered note"`
	Text string      `json:"snippet" jsonschema:"snippet text as it would appear in the backup"`
}

func handleRenderNote(b *Backend) mcp.ToolHandlerFor[RenderNoteInput, RenderNoteOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RenderNoteInput) (*mcp.CallToolResult, RenderNoteOutput, error) {
		if input.NID == "" {
			return nil, RenderNoteOutput{}, errors.New("nid is required")
		}
		id, err := strconv.ParseInt(input.NID, 10, 64)
		if err != nil {
			return nil, RenderNoteOutput{}, fmt.Errorf("nid %q is not a note id", input.NID)
		}

		text, meta, err := b.projector().Snippet(ctx, snippet.Assemble(b.Config), id)
		if err != nil {
			return nil, RenderNoteOutput{}, err
		}
		return nil, RenderNoteOutput{Note: summaryFromMeta(meta), Text: text}, nil
	}
}

// --- backup ---

// BackupInput is the input for the backup tool (no parameters needed).
type BackupInput struct{}

// BackupOutput is the output for the backup tool.
type BackupOutput struct {
	RunID        string   `json:"run_id"                  jsonschema:"identifier of this run"`
	Dir          string   `json:"dir"                     jsonschema:"export directory"`
	Files        []string `json:"files"                   jsonschema:"files written"`
	Notes        int      `json:"notes"                   jsonschema:"number of notes exported"`
	HookWarnings []string `json:"hook_warnings,omitempty" jsonschema:"failures of execBeforeExport or execAfterExport"`
}

func handleBackup(b *Backend) mcp.ToolHandlerFor[BackupInput, BackupOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ BackupInput) (*mcp.CallToolResult, BackupOutput, error) {
		if b.Runner == nil {
			return nil, BackupOutput{}, errors.New("backups are not available from this server")
		}
		res, err := b.Runner.Run(ctx, b.Config)
		if err != nil {
			return nil, BackupOutput{}, fmt.Errorf("backup failed: %w", err)
		}
		return nil, BackupOutput{
			RunID:        res.RunID,
			Dir:          res.Dir,
			Files:        res.Files,
			Notes:        res.Notes,
			HookWarnings: res.HookWarnings,
		}, nil
	}
}
