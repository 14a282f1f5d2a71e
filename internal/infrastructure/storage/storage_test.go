package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bravo68web/confdash/internal/config"
)

func TestFilesystemPut(t *testing.T) {
	base := t.TempDir()
	fs, err := NewFilesystemStorage(base)
	if err != nil {
		t.Fatalf("NewFilesystemStorage() error = %v", err)
	}

	loc, err := fs.Put(context.Background(), "dev/20240101T000000Z/services/app.yaml", []byte("a: 1\n"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	want := filepath.Join(fs.GetBasePath(), "dev", "20240101T000000Z", "services", "app.yaml")
	if loc != want {
		t.Errorf("Put() location = %q, want %q", loc, want)
	}
	got, err := os.ReadFile(loc)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "a: 1\n" {
		t.Errorf("content = %q", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(loc))
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want 1 (temp file left behind?)", len(entries))
	}
}

func TestFilesystemPutRejectsEscape(t *testing.T) {
	fs, err := NewFilesystemStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemStorage() error = %v", err)
	}
	for _, key := range []string{"../outside.yaml", "a/../../outside.yaml", ""} {
		if _, err := fs.Put(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("Put(%q) error = nil, want error", key)
		}
	}
}

func TestFactoryFilesystem(t *testing.T) {
	f := NewFactory(&config.StorageConfig{BasePath: t.TempDir()})
	s, err := f.Create(context.Background())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if s.Type() != "filesystem" {
		t.Errorf("Type() = %q", s.Type())
	}

	if _, err := NewFactory(&config.StorageConfig{Type: "ftp"}).Create(context.Background()); err == nil {
		t.Error("Create() with unknown type error = nil")
	}
}

func TestGitStorageCommitsExport(t *testing.T) {
	base := t.TempDir()
	gs, err := NewGitStorage(base, "exporter")
	if err != nil {
		t.Fatalf("NewGitStorage() error = %v", err)
	}
	ctx := context.Background()

	for key, body := range map[string]string{
		"dev/20240101T000000Z/app.yaml":         "a: 1\n",
		"dev/20240101T000000Z/services/db.yaml": "b: 2\n",
	} {
		if _, err := gs.Put(ctx, key, []byte(body)); err != nil {
			t.Fatalf("Put(%q) error = %v", key, err)
		}
	}

	rev, err := gs.Commit(ctx, "Export dev", "ana@example.com")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if len(rev) != 40 {
		t.Fatalf("revision = %q, want a 40 character hash", rev)
	}

	head, err := gs.repo.Head()
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	if head.Hash().String() != rev {
		t.Errorf("HEAD = %s, want %s", head.Hash(), rev)
	}
	commit, err := gs.repo.CommitObject(head.Hash())
	if err != nil {
		t.Fatalf("CommitObject() error = %v", err)
	}
	if commit.Message != "Export dev" || commit.Author.Name != "exporter" || commit.Author.Email != "ana@example.com" {
		t.Errorf("commit = %q by %s <%s>", commit.Message, commit.Author.Name, commit.Author.Email)
	}

	again, err := gs.Commit(ctx, "Nothing new", "")
	if err != nil {
		t.Fatalf("second Commit() error = %v", err)
	}
	if again != "" {
		t.Errorf("second Commit() = %q, want empty for a clean worktree", again)
	}
}

func TestGitStorageReopens(t *testing.T) {
	base := t.TempDir()
	if _, err := NewGitStorage(base, ""); err != nil {
		t.Fatalf("first NewGitStorage() error = %v", err)
	}
	gs, err := NewGitStorage(base, "")
	if err != nil {
		t.Fatalf("second NewGitStorage() error = %v", err)
	}
	if gs.Type() != "git" {
		t.Errorf("Type() = %q", gs.Type())
	}
}

func TestGitStoragePutRejectsEscape(t *testing.T) {
	gs, err := NewGitStorage(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewGitStorage() error = %v", err)
	}
	for _, key := range []string{"../outside.yaml", "a/../../outside.yaml", "", ".git/config"} {
		if _, err := gs.Put(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("Put(%q) error = nil, want error", key)
		}
	}
}
