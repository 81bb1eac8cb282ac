package main

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/gorewood/textbackup/internal/backup"
	"github.com/gorewood/textbackup/internal/hook"
	textbackupmcp "github.com/gorewood/textbackup/internal/mcp"
	"github.com/gorewood/textbackup/internal/output"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run textbackup as a Model Context Protocol (MCP) server over stdio.

The configuration and collection are loaded once at startup. Configure
in your agent's MCP settings:
  {
    "mcpServers": {
      "textbackup": {
        "command": "textbackup",
        "args": ["serve", "--collection", "/path/to/collection.anki2"]
      }
    }
  }

Available tools: list_notes, render_note, backup`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// stdout carries the protocol; everything else goes to stderr.
	printer := output.NewPrinter(cmd.ErrOrStderr(), false, false)

	cfg, cfgStore := loadConfig(cmd, printer)
	if err := validateConfig(printer, cfg); err != nil {
		return fail(printer, err)
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return fail(printer, err)
	}

	store, closeStore, err := openStore(cmd.Context(), cmd, nil)
	if err != nil {
		return fail(printer, err)
	}
	defer closeStore()
	warnUnknownNoteTypes(printer, cfg, store)

	backend := &textbackupmcp.Backend{
		Store:  store,
		Config: cfg,
		Runner: &backup.Runner{
			Store:    store,
			Hooks:    &hook.ExecRunner{Stdout: cmd.ErrOrStderr()},
			Logger:   logger,
			Location: time.Local,
			LockDir:  configDir(cfgStore),
		},
		Location: time.Local,
	}

	logger.Info("mcp server starting", "version", buildVersion())
	server := textbackupmcp.NewServer(buildVersion(), backend)
	return server.Run(cmd.Context(), &mcp.StdioTransport{})
}
