// Package mcp provides a Model Context Protocol server for textbackup.
// It exposes note listing, rendering and backup runs as MCP tools that any
// MCP-capable agent can use.
package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/textbackup/internal/backup"
	"github.com/gorewood/textbackup/internal/collection"
	"github.com/gorewood/textbackup/internal/config"
)

// BackupRunner performs a backup run.
type BackupRunner interface {
	Run(ctx context.Context, cfg config.Config) (*backup.Result, error)
}

// Backend is what the tools operate on.
type Backend struct {
	Store    collection.Store
	Config   config.Config
	Runner   BackupRunner
	Location *time.Location
}

// NewServer creates an MCP server with all textbackup tools registered.
func NewServer(version string, backend *Backend) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "textbackup",
		Version: version,
	}, nil)
	registerTools(server, backend)
	return server
}

func boolPtr(b bool) *bool {
	return &b
}

func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations marks tools that overwrite export files.
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(true),
		IdempotentHint:  true,
		OpenWorldHint:   boolPtr(false),
	}
}

func registerTools(server *mcp.Server, backend *Backend) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_notes",
		Description: "List notes matching an Anki search (tag:, deck:, note:, nid:, is:new, is:suspended, text). Omit query to use the configured search term.",
		Annotations: readOnlyAnnotations(),
	}, handleListNotes(backend))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_note",
		Description: "Render one note through the configured backup template and return the snippet text.",
		Annotations: readOnlyAnnotations(),
	}, handleRenderNote(backend))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "backup",
		Description: "Run a full text backup with the loaded configuration. Overwrites previous export files.",
		Annotations: writeAnnotations(),
	}, handleBackup(backend))
}
