package storage

import (
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempStore(t)
	content := []byte("title: Hello\n")
	if err := s.Write("hello.yaml", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("hello.yaml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempStore(t)
	if err := s.Write("submissions/a.yaml", []byte("x: 1")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.Read("submissions/a.yaml"); err != nil {
		t.Fatalf("Read: %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("del.yaml", []byte("bye: true"))
	if err := s.Delete("del.yaml"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.yaml"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestListOnlyTopLevelYAML(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("a.yaml", []byte("a: 1"))
	_ = s.Write("b.yml", []byte("b: 1"))
	_ = s.Write("notes.txt", []byte("skip"))
	_ = s.Write(".hidden.yaml", []byte("skip"))
	_ = s.Write("submissions/c.yaml", []byte("skip"))

	entries, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v, want 2", entries)
	}
	for _, e := range entries {
		if e.Checksum == "" || e.UpdatedAt.IsZero() {
			t.Errorf("incomplete entry %+v", e)
		}
	}
}

func TestSafePathRejectsTraversal(t *testing.T) {
	s := tempStore(t)
	for _, p := range []string{"../escape.yaml", "a/../../escape.yaml", filepath.Join(string(filepath.Separator), "etc", "passwd")} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("Read(%q) should fail", p)
		}
	}
}
