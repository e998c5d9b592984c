package settings

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_Roundtrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	got, err := m.Get(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for unknown chat")
	}

	row := ChatSettings{
		ChatID:        1,
		LanguageNames: "English, Spanish",
		UpdatedAt:     time.Now().UTC(),
	}
	if err := m.Upsert(ctx, row); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err = m.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.LanguageNames != "English, Spanish" {
		t.Errorf("unexpected row %+v", got)
	}

	row.LanguageNames = "French"
	if err := m.Upsert(ctx, row); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _ = m.Get(ctx, 1)
	if got.LanguageNames != "French" {
		t.Errorf("expected overwrite, got %+v", got)
	}

	if err := m.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = m.Get(ctx, 1)
	if got != nil {
		t.Error("expected row removed")
	}
}

func TestMemoryStore_DumpAllSorted(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	for _, id := range []int64{3, 1, 2} {
		m.Upsert(ctx, ChatSettings{ChatID: id, LanguageNames: "English"})
	}

	rows, err := m.DumpAll(ctx)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, want := range []int64{1, 2, 3} {
		if rows[i].ChatID != want {
			t.Errorf("row %d: expected chat %d, got %d", i, want, rows[i].ChatID)
		}
	}
}
