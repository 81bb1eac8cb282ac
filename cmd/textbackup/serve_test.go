package main

import (
	"testing"

	"github.com/gorewood/textbackup/internal/output"
)

func TestNewServeCmd(t *testing.T) {
	cmd := newServeCmd()

	if cmd.Use != "serve" {
		t.Errorf("Use = %q, want %q", cmd.Use, "serve")
	}
	if cmd.RunE == nil {
		t.Error("RunE is nil")
	}
}

func TestServe_RequiresCollection(t *testing.T) {
	t.Setenv(envCollection, "")
	cfgPath := writeConfig(t, nil)

	stdout, _, err := execute(newTestRoot(newServeCmd()), "serve", "--config", cfgPath)
	if got := output.GetExitCode(err); got != output.ExitUserError {
		t.Errorf("exit code = %d, want %d (%v)", got, output.ExitUserError, err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want nothing on the protocol stream", stdout)
	}
}
