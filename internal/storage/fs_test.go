package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("a/b/syllabus.pdf", []byte("%PDF")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/syllabus.pdf")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "%PDF" {
		t.Errorf("content = %q", got)
	}
}

func TestArchiveIsContentAddressed(t *testing.T) {
	s := tempRoot(t)
	data := []byte("Midterm on October 5, 2024")

	p1, created, err := s.Archive(data, ".pdf")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if !created {
		t.Error("first Archive should create the file")
	}
	sum := Checksum(data)
	if want := filepath.Join(sum[:2], sum+".pdf"); p1 != want {
		t.Errorf("path = %q, want %q", p1, want)
	}
	p2, created, err := s.Archive(data, ".pdf")
	if err != nil {
		t.Fatalf("second Archive: %v", err)
	}
	if created {
		t.Error("second Archive should reuse the file")
	}
	if p1 != p2 {
		t.Errorf("paths differ: %q vs %q", p1, p2)
	}
	got, _ := s.Read(p1)
	if string(got) != string(data) {
		t.Errorf("archived content = %q", got)
	}
}

func TestMoveIntoNewDir(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("msg.eml", []byte("Subject: hi"))
	if err := s.Move("msg.eml", "processed/msg.eml"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := s.Read("processed/msg.eml"); err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if _, err := s.Read("msg.eml"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestListFiltersByExtension(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("b.eml", []byte("b"))
	_ = s.Write("a.EML", []byte("a"))
	_ = s.Write("notes.txt", []byte("x"))
	_ = s.Write("processed/c.eml", []byte("c"))

	items, err := s.List("", ".eml")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2 (%+v)", len(items), items)
	}
	if items[0].Path != "a.EML" || items[1].Path != "b.eml" {
		t.Errorf("order = %q, %q", items[0].Path, items[1].Path)
	}

	missing, err := s.List("nope", ".eml")
	if err != nil || len(missing) != 0 {
		t.Errorf("missing dir = %v, %v", missing, err)
	}
}

func TestDelete(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("del.pdf", []byte("bye"))
	if err := s.Delete("del.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.pdf"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)
	for _, p := range []string{"../../etc/passwd", "../outside.pdf", "/etc/shadow"} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTemp(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("doc.pdf", []byte("original"))
	if err := s.Write("doc.pdf", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("doc.pdf")
	if string(got) != "updated" {
		t.Errorf("content = %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".scholarsync-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFSCreatesMissingRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads", "nested")
	if _, err := NewFS(dir); err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("root not created: %v", err)
	}
}

func TestNewFSFileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "scholarsync-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
