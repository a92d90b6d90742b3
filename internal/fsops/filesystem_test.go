package fsops

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"vaultorg/internal/organize"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func names(paths []*organize.Path) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p.String())
	}
	sort.Strings(out)
	return out
}

func TestResolve(t *testing.T) {
	m := NewOSFilesystemManager(nil)

	t.Run("regular file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "hello")

		p, err := m.Resolve(filepath.Join(dir, "a.txt"))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if p.IsDir() {
			t.Error("expected file, got directory")
		}
		if p.Info().Size() != 5 {
			t.Errorf("Size = %d, want 5", p.Info().Size())
		}
	})

	t.Run("directory", func(t *testing.T) {
		dir := t.TempDir()
		p, err := m.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !p.IsDir() {
			t.Error("expected directory")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := m.Resolve(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("expected error for missing path")
		}
	})
}

func TestOpen(t *testing.T) {
	m := NewOSFilesystemManager(nil)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "content")

	p, err := m.Resolve(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	r, err := m.Open(p)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("read %q, want %q", data, "content")
	}

	dp, err := m.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve dir: %v", err)
	}
	if _, err := m.Open(dp); err == nil {
		t.Error("expected error opening directory")
	}
}

func TestFindFiles(t *testing.T) {
	t.Run("flat discovery honors ignore patterns", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "keep.jpg"), "x")
		writeFile(t, filepath.Join(dir, "skip.tmp"), "x")
		writeFile(t, filepath.Join(dir, ".hidden"), "x")
		writeFile(t, filepath.Join(dir, "nested", "deep.pdf"), "x")

		m := NewOSFilesystemManager([]string{".*", "*.tmp"})
		p, err := m.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}

		found, err := m.FindFiles(p, false)
		if err != nil {
			t.Fatalf("FindFiles: %v", err)
		}
		got := names(found)
		want := []string{"keep.jpg"}
		if len(got) != len(want) || got[0] != want[0] {
			t.Errorf("found %v, want %v", got, want)
		}
	})

	t.Run("recursive discovery", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.jpg"), "x")
		writeFile(t, filepath.Join(dir, "sub", "b.pdf"), "x")
		writeFile(t, filepath.Join(dir, "sub", "deeper", "c.mp3"), "x")

		m := NewOSFilesystemManager(nil)
		p, err := m.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}

		found, err := m.FindFiles(p, true)
		if err != nil {
			t.Fatalf("FindFiles: %v", err)
		}
		got := names(found)
		want := []string{"a.jpg", "b.pdf", "c.mp3"}
		if len(got) != 3 {
			t.Fatalf("found %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("found %v, want %v", got, want)
				break
			}
		}
	})

	t.Run("ignore file in root extends patterns", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "keep.jpg"), "x")
		writeFile(t, filepath.Join(dir, "skip.bak"), "x")
		writeFile(t, filepath.Join(dir, IgnoreFileName), "*.bak\n")

		m := NewOSFilesystemManager(nil)
		p, err := m.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}

		found, err := m.FindFiles(p, false)
		if err != nil {
			t.Fatalf("FindFiles: %v", err)
		}
		got := names(found)
		if len(got) != 1 || got[0] != "keep.jpg" {
			t.Errorf("found %v, want [keep.jpg]", got)
		}
	})

	t.Run("ignored directories are pruned", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.jpg"), "x")
		writeFile(t, filepath.Join(dir, "tmp", "b.jpg"), "x")

		m := NewOSFilesystemManager([]string{"tmp"})
		p, err := m.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}

		found, err := m.FindFiles(p, true)
		if err != nil {
			t.Fatalf("FindFiles: %v", err)
		}
		got := names(found)
		if len(got) != 1 || got[0] != "a.jpg" {
			t.Errorf("found %v, want [a.jpg]", got)
		}
	})

	t.Run("non-directory is an error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "x")

		m := NewOSFilesystemManager(nil)
		p, err := m.Resolve(filepath.Join(dir, "a.txt"))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if _, err := m.FindFiles(p, false); err == nil {
			t.Error("expected error for non-directory")
		}
	})
}

func TestStatExtractor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	writeFile(t, path, "pdf bytes")

	e := NewStatExtractor()
	if e.Source() != "filesystem" {
		t.Errorf("Source = %q, want filesystem", e.Source())
	}

	meta, err := e.Extract(context.Background(), organize.FileRecord{SourcePath: path}, organize.DetectedType{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	mods, ok := meta.Fields[organize.FieldModifiedTime]
	if !ok || len(mods) != 1 {
		t.Fatalf("expected one %s value, got %v", organize.FieldModifiedTime, mods)
	}
	if !mods[0].HasTime {
		t.Error("modification time should carry a time component")
	}
	if mods[0].Time.IsZero() {
		t.Error("modification time is zero")
	}

	// Creation time only appears when the platform records one. When it
	// does, it must be a plausible instant, not a zero sentinel.
	if created, ok := meta.Fields[organize.FieldCreatedTime]; ok {
		if len(created) != 1 || created[0].Time.IsZero() {
			t.Errorf("creation time present but invalid: %v", created)
		}
	}
}

func TestStatExtractorMissingFile(t *testing.T) {
	e := NewStatExtractor()
	_, err := e.Extract(context.Background(), organize.FileRecord{SourcePath: filepath.Join(t.TempDir(), "gone")}, organize.DetectedType{})
	if err == nil {
		t.Error("expected error for missing file")
	}
}
