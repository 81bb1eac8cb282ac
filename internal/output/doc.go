// Package output provides structured output handling for the textbackup CLI.
//
// Every command can print for a person or, with --json, for a script.
//
// # Printer
//
// The Printer switches format based on the --json flag and TTY detection:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonFlag, output.IsTTY(cmd.OutOrStdout()))
//
//	printer.Success(map[string]any{"message": "Backup written", "notes": 12})
//	printer.Error(err)
//	printer.Table([]string{"nid", "deck"}, rows, output.AlignRight, output.AlignLeft)
//
// # JSON Mode
//
//	// Success: {"message": "...", ...}
//	// Error:   {"error": "message", "code": N}
//
// # Styling
//
// Human output uses lipgloss styles which are cleared when output is piped
// or --color=never is given. Tables are drawn with go-pretty; piped tables
// are tab separated.
//
// # Exit Codes
//
//	output.ExitSuccess     // 0
//	output.ExitUserError   // 1: bad flags, invalid configuration or search
//	output.ExitSystemError // 2: collection or file system failures
//	output.ExitConflict    // 3: another backup run is in progress
package output
