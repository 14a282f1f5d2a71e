package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/domain/repository"
	apperror "github.com/bravo68web/confdash/pkg/errors"
)

func TestFileCredentialRepo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	repo := NewFileCredentialRepository(path)

	creds, err := repo.Load()
	if err != nil || creds != nil {
		t.Fatalf("Load() on missing file = %v, %v; want nil, nil", creds, err)
	}

	want := &models.Credentials{Token: "tok", User: &models.User{Username: "ana", Email: "ana@example.com"}}
	if err := repo.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	got, err := repo.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), `"authToken"`) {
		t.Errorf("stored JSON lacks authToken: %s", raw)
	}

	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := repo.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
	if creds, _ := repo.Load(); creds != nil {
		t.Errorf("Load() after Clear = %+v", creds)
	}
}

func exerciseSessionRepo(t *testing.T, repo repository.SessionRepository) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	old := &models.Session{ID: "old", Token: "t1", User: models.User{Username: "ana"}, CreatedAt: base, LastSeen: base}
	fresh := &models.Session{ID: "fresh", Token: "t2", CreatedAt: base.Add(time.Minute), LastSeen: base.Add(time.Hour)}
	for _, s := range []*models.Session{old, fresh} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create(%s) error = %v", s.ID, err)
		}
	}

	got, err := repo.FindByID(ctx, "old")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Token != "t1" || got.User.Username != "ana" {
		t.Errorf("FindByID() = %+v", got)
	}

	got.Flash = []models.Notification{{ID: "n1", Severity: models.SeveritySuccess, Message: "Saved"}}
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	again, _ := repo.FindByID(ctx, "old")
	if len(again.Flash) != 1 || again.Flash[0].Message != "Saved" {
		t.Errorf("Flash after Update = %+v", again.Flash)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 2 || list[0].ID != "old" {
		t.Fatalf("List() = %v, %v", list, err)
	}

	n, err := repo.DeleteIdleSince(ctx, base.Add(30*time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("DeleteIdleSince() = %d, %v; want 1", n, err)
	}
	if _, err := repo.FindByID(ctx, "old"); !apperror.IsNotFound(err) {
		t.Errorf("FindByID(old) error = %v, want not found", err)
	}

	if err := repo.Delete(ctx, "fresh"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if list, _ := repo.List(ctx); len(list) != 0 {
		t.Errorf("List() after Delete = %d sessions", len(list))
	}
}

func TestMemorySessionRepo(t *testing.T) {
	exerciseSessionRepo(t, NewMemorySessionRepository())
}

func TestGormSessionRepo(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sessions.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	exerciseSessionRepo(t, NewSessionRepository(db))
}
