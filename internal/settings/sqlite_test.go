package settings

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_Roundtrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	got, err := s.Get(ctx, 12345)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for unknown chat")
	}

	updated := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	row := ChatSettings{
		ChatID:        12345,
		LanguageCodes: "en,es",
		LanguageNames: "English, Spanish",
		UpdatedAt:     updated,
	}
	if err := s.Upsert(ctx, row); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err = s.Get(ctx, 12345)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected row")
	}
	if got.LanguageNames != "English, Spanish" || got.LanguageCodes != "en,es" {
		t.Errorf("unexpected row %+v", got)
	}
	if !got.UpdatedAt.Equal(updated) {
		t.Errorf("expected timestamp %s, got %s", updated, got.UpdatedAt)
	}
}

func TestSQLiteStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	s.Upsert(ctx, ChatSettings{ChatID: 1, LanguageNames: "English", UpdatedAt: time.Now()})
	s.Upsert(ctx, ChatSettings{ChatID: 1, LanguageNames: "German, French", UpdatedAt: time.Now()})

	got, err := s.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LanguageNames != "German, French" {
		t.Errorf("expected replacement, got %+v", got)
	}

	rows, err := s.DumpAll(ctx)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected single row after replace, got %d", len(rows))
	}
}

func TestSQLiteStore_DeleteAndDump(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	for _, id := range []int64{10, 20, 30} {
		s.Upsert(ctx, ChatSettings{ChatID: id, LanguageNames: "English", UpdatedAt: time.Now()})
	}
	if err := s.Delete(ctx, 20); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rows, err := s.DumpAll(ctx)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ChatID != 10 || rows[1].ChatID != 30 {
		t.Errorf("unexpected rows %+v", rows)
	}

	// deleting a missing chat is not an error
	if err := s.Delete(ctx, 999); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}
