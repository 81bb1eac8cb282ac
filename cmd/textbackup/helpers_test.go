package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/gorewood/textbackup/internal/collection"
)

// Note ids fall mid-month so the "%Y-%m" test date format is stable in
// every local time zone.
const (
	nidOne = int64(1579089600000) // 2020-01-15T12:00:00Z
	nidTwo = int64(1581768000000) // 2020-02-15T12:00:00Z
)

type fakeStore struct {
	records map[int64]*collection.Record
	ids     []int64
	queries []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ids: []int64{nidOne, nidTwo},
		records: map[int64]*collection.Record{
			nidOne: {ID: nidOne, TypeName: "Basic", FieldNames: []string{"Front", "Back"}, FieldValues: []string{"Q1", "A1"}},
			nidTwo: {ID: nidTwo, TypeName: "Basic", FieldNames: []string{"Front", "Back"}, FieldValues: []string{"Q2", "A2"}},
		},
	}
}

func (f *fakeStore) FindRecordIDs(_ context.Context, query string) ([]int64, error) {
	f.queries = append(f.queries, query)
	if strings.Count(query, `"`)%2 == 1 {
		return nil, &collection.QueryError{Query: query, Reason: "unclosed quote"}
	}
	return f.ids, nil
}

func (f *fakeStore) GetRecord(_ context.Context, id int64) (*collection.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("note %d: %w", id, collection.ErrRecordNotFound)
	}
	return rec, nil
}

func (f *fakeStore) ContainerName(context.Context, int64) (string, error) {
	return "Default", nil
}

func (f *fakeStore) RevisionTimestamps(context.Context, int64) ([]int64, error) {
	return nil, nil
}

func (f *fakeStore) SchedulingState(context.Context, int64) (collection.SchedulingState, error) {
	return collection.SchedulingState{Queue: collection.QueueNew}, nil
}

func (f *fakeStore) NoteTypeNames() []string {
	return []string{"Basic"}
}

type fakeHooks struct {
	calls [][]string
	subs  []map[string]string
}

func (f *fakeHooks) Run(_ context.Context, args []string, subs map[string]string) error {
	f.calls = append(f.calls, args)
	f.subs = append(f.subs, subs)
	return nil
}

// writeConfig writes a JSON configuration into a temp directory and
// returns its path. Values in overrides replace the test defaults.
func writeConfig(t *testing.T, overrides map[string]any) string {
	t.Helper()
	dir := t.TempDir()
	doc := map[string]any{
		"noteTypeExceptions": map[string]any{},
		"dateFormat":         "%Y-%m",
		"fieldStarter":       "<S>",
		"fieldCloser":        "<E>",
		"fieldSeparator":     "|",
		"noteSeparator":      "----",
		"exportPath":         filepath.Join(dir, "out"),
	}
	for key, val := range overrides {
		doc[key] = val
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// newTestRoot wraps child in a root carrying the persistent flags.
func newTestRoot(child *cobra.Command) *cobra.Command {
	root := &cobra.Command{Use: "textbackup", SilenceUsage: true, SilenceErrors: true}
	addPersistentFlags(root)
	root.AddCommand(child)
	return root
}

// execute runs root with args and returns stdout and stderr.
func execute(root *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
