package fsops

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewIgnoreMatcher(t *testing.T) {
	t.Run("skips blank lines and comments", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"", "  ", "# comment", "*.log"})
		// The ignore file itself is always a pattern.
		if len(m.patterns) != 2 {
			t.Fatalf("expected 2 patterns, got %d", len(m.patterns))
		}
		if m.patterns[1].pattern != "*.log" {
			t.Errorf("expected *.log, got %s", m.patterns[1].pattern)
		}
	})

	t.Run("classifies path vs basename patterns", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"*.log", "build/output"})
		if m.patterns[1].matchPath {
			t.Error("*.log should not be a path pattern")
		}
		if !m.patterns[2].matchPath {
			t.Error("build/output should be a path pattern")
		}
	})

	t.Run("always ignores the ignore file itself", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher(nil)
		if !m.Match(IgnoreFileName) {
			t.Errorf("%s should always be ignored", IgnoreFileName)
		}
	})
}

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name         string
		patterns     []string
		relativePath string
		want         bool
	}{
		{
			name:         "basename glob matches file in root",
			patterns:     []string{"*.log"},
			relativePath: "app.log",
			want:         true,
		},
		{
			name:         "basename glob matches file in subdirectory",
			patterns:     []string{"*.log"},
			relativePath: filepath.Join("sub", "app.log"),
			want:         true,
		},
		{
			name:         "basename glob does not match different extension",
			patterns:     []string{"*.log"},
			relativePath: "app.txt",
			want:         false,
		},
		{
			name:         "hidden files pattern",
			patterns:     []string{".*"},
			relativePath: filepath.Join("sub", ".DS_Store"),
			want:         true,
		},
		{
			name:         "partial download pattern",
			patterns:     []string{"*.part"},
			relativePath: "movie.mkv.part",
			want:         true,
		},
		{
			name:         "path pattern matches exact relative path",
			patterns:     []string{"staging/incoming"},
			relativePath: filepath.Join("staging", "incoming"),
			want:         true,
		},
		{
			name:         "path pattern does not match wrong path",
			patterns:     []string{"staging/incoming"},
			relativePath: filepath.Join("src", "incoming"),
			want:         false,
		},
		{
			name:         "path glob matches",
			patterns:     []string{"tmp/*"},
			relativePath: filepath.Join("tmp", "scratch.bin"),
			want:         true,
		},
		{
			name:         "no patterns matches nothing",
			patterns:     nil,
			relativePath: "anything.txt",
			want:         false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewIgnoreMatcher(tt.patterns)
			if got := m.Match(tt.relativePath); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.relativePath, got, tt.want)
			}
		})
	}
}

func TestIgnoreMatcher_Extend(t *testing.T) {
	t.Parallel()
	base := NewIgnoreMatcher([]string{"*.log"})
	extended := base.Extend([]string{"*.tmp"})

	if !extended.Match("a.log") {
		t.Error("extended matcher lost base pattern")
	}
	if !extended.Match("a.tmp") {
		t.Error("extended matcher missing new pattern")
	}
	if base.Match("a.tmp") {
		t.Error("Extend mutated the base matcher")
	}
}

func TestParseIgnoreFile(t *testing.T) {
	t.Run("reads patterns", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, IgnoreFileName)
		if err := os.WriteFile(path, []byte("*.bak\n# comment\nthumbs.db\n"), 0644); err != nil {
			t.Fatalf("writing ignore file: %v", err)
		}

		patterns, err := ParseIgnoreFile(path)
		if err != nil {
			t.Fatalf("ParseIgnoreFile: %v", err)
		}
		if len(patterns) != 3 {
			t.Fatalf("expected 3 raw lines, got %d", len(patterns))
		}
		if patterns[0] != "*.bak" {
			t.Errorf("expected *.bak, got %s", patterns[0])
		}
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		t.Parallel()
		patterns, err := ParseIgnoreFile(filepath.Join(t.TempDir(), "absent"))
		if err != nil {
			t.Fatalf("ParseIgnoreFile: %v", err)
		}
		if patterns != nil {
			t.Errorf("expected nil patterns, got %v", patterns)
		}
	})
}
