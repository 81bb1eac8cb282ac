package envfile

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `# collection for the MCP server
TEXTBACKUP_COLLECTION=/home/u/Anki2/User 1/collection.anki2
export QUOTED="a # b"
SINGLE='x'
TRAILING=value # comment
NOEQUALS
=nokey
EMPTY=
TRAILING=again
`
	got, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := map[string]string{
		"TEXTBACKUP_COLLECTION": "/home/u/Anki2/User 1/collection.anki2",
		"QUOTED":                "a # b",
		"SINGLE":                "x",
		"TRAILING":              "again",
		"EMPTY":                 "",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %v, want %v", got, want)
	}
}

func TestRead_MissingFile(t *testing.T) {
	vars, err := Read(filepath.Join(t.TempDir(), "env"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(vars) != 0 {
		t.Errorf("Read() = %v, want empty", vars)
	}
}

func TestLookup(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first")
	second := filepath.Join(dir, "second")
	if err := os.WriteFile(first, []byte("ONLY_SECOND_NOT=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("TEST_ENVFILE_KEY=from_file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		env  string
		want string
	}{
		{"environment wins", "from_env", "from_env"},
		{"falls back to files", "", "from_file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENVFILE_KEY", tt.env)
			got, err := Lookup("TEST_ENVFILE_KEY", filepath.Join(dir, "missing"), first, second)
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Lookup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLookup_Undefined(t *testing.T) {
	t.Setenv("TEST_ENVFILE_NOPE", "")
	got, err := Lookup("TEST_ENVFILE_NOPE")
	if err != nil || got != "" {
		t.Errorf("Lookup() = %q, %v; want empty", got, err)
	}
}
