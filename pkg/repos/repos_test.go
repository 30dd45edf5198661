package repos

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFromIdentifier(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want Repo
	}{
		{
			name: "owner/name shorthand",
			id:   "lowRISC/ibex",
			want: Repo{Name: "lowRISC/ibex", CloneURL: "https://github.com/lowRISC/ibex.git"},
		},
		{
			name: "full https URL",
			id:   "https://github.com/lowRISC/ibex.git",
			want: Repo{Name: "lowRISC/ibex", CloneURL: "https://github.com/lowRISC/ibex.git"},
		},
		{
			name: "URL without .git suffix",
			id:   "https://gitlab.com/librecores/fifo",
			want: Repo{Name: "librecores/fifo", CloneURL: "https://gitlab.com/librecores/fifo"},
		},
		{
			name: "nested gitlab namespace",
			id:   "https://gitlab.com/group/subgroup/core.git",
			want: Repo{Name: "group/subgroup/core", CloneURL: "https://gitlab.com/group/subgroup/core.git"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromIdentifier(tt.id); got != tt.want {
				t.Errorf("FromIdentifier(%q) = %+v, want %+v", tt.id, got, tt.want)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	input := `# harvest targets
lowRISC/ibex

openhwgroup/cva6
  # indented comment
https://gitlab.com/librecores/fifo.git
`

	repos, err := ParseList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	want := []string{"lowRISC/ibex", "openhwgroup/cva6", "librecores/fifo"}
	if len(repos) != len(want) {
		t.Fatalf("got %d repos, want %d", len(repos), len(want))
	}
	for i, name := range want {
		if repos[i].Name != name {
			t.Errorf("repos[%d].Name = %q, want %q", i, repos[i].Name, name)
		}
	}
}

func TestParseList_OnlyCommentsAndBlanks(t *testing.T) {
	repos, err := ParseList(strings.NewReader("# nothing\n\n\n# here\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(repos) != 0 {
		t.Errorf("got %d repos, want 0", len(repos))
	}
}

func TestReadList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repos.txt")
	if err := os.WriteFile(path, []byte("lowRISC/ibex\nopenhwgroup/cva6\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	repos, err := ReadList(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(repos) != 2 {
		t.Errorf("got %d repos, want 2", len(repos))
	}
}

func TestReadList_MissingFile(t *testing.T) {
	if _, err := ReadList(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
