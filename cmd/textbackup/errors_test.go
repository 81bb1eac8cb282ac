package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gorewood/textbackup/internal/backup"
	"github.com/gorewood/textbackup/internal/collection"
	"github.com/gorewood/textbackup/internal/config"
	"github.com/gorewood/textbackup/internal/output"
	"github.com/gorewood/textbackup/internal/snippet"
)

func TestExitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"exit error passes through", output.NewConflictError("x"), output.ExitConflict},
		{"run in progress", backup.ErrRunInProgress, output.ExitConflict},
		{"missing note", fmt.Errorf("note 1: %w", collection.ErrRecordNotFound), output.ExitUserError},
		{"bad query", &collection.QueryError{Query: `"`, Reason: "unclosed quote"}, output.ExitUserError},
		{"invalid config", &config.ValidationError{Problems: []string{"exportPath is empty"}}, output.ExitUserError},
		{"bad file name", &backup.NameError{NID: "1", Source: "///"}, output.ExitUserError},
		{"cancelled", context.Canceled, output.ExitUserError},
		{"directory", &backup.DirectoryError{Path: "/x", Err: errors.New("denied")}, output.ExitSystemError},
		{"template bug", &snippet.MissingFieldError{Field: "deck"}, output.ExitSystemError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitError(tt.err)
			if got.Code != tt.want {
				t.Errorf("Code = %d, want %d", got.Code, tt.want)
			}
			if got.Message != tt.err.Error() {
				t.Errorf("Message = %q, want %q", got.Message, tt.err.Error())
			}
		})
	}
}
