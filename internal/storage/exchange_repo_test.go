package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestNewExchangeRepo(t *testing.T) {
	repo := NewExchangeRepo(newTestDB(t))
	if repo == nil {
		t.Fatal("NewExchangeRepo() returned nil")
	}
}

func TestExchangeRepo_Record(t *testing.T) {
	repo := NewExchangeRepo(newTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		ex      Exchange
		wantErr bool
	}{
		{
			name: "ok exchange",
			ex: Exchange{
				ID: "a", Model: "gemma3", HistoryLen: 2, MessageChars: 5, ReplyChars: 8,
				Status: StatusOK, Duration: 120 * time.Millisecond,
			},
		},
		{
			name: "failed exchange",
			ex: Exchange{
				ID: "b", Model: "gemma3", MessageChars: 5,
				Status: StatusError, Error: "bad status 500", Duration: 30 * time.Millisecond,
			},
		},
		{
			name:    "missing id",
			ex:      Exchange{Model: "gemma3", Status: StatusOK},
			wantErr: true,
		},
		{
			name:    "invalid status",
			ex:      Exchange{ID: "c", Model: "gemma3", Status: "pending"},
			wantErr: true,
		},
		{
			name:    "duplicate id",
			ex:      Exchange{ID: "a", Model: "gemma3", Status: StatusOK},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Record(ctx, tt.ex)
			if tt.wantErr && err == nil {
				t.Error("Record() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Record() unexpected error: %v", err)
			}
		})
	}
}

func TestExchangeRepo_Summary(t *testing.T) {
	repo := NewExchangeRepo(newTestDB(t))
	ctx := context.Background()

	empty, err := repo.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if empty.Total != 0 || empty.MeanDuration != 0 || !empty.LastAt.IsZero() {
		t.Errorf("Summary() on empty ledger = %+v, want zero", empty)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []Exchange{
		{ID: "1", Model: "gemma3", Status: StatusOK, Duration: 100 * time.Millisecond, CreatedAt: base},
		{ID: "2", Model: "gemma3", Status: StatusOK, Duration: 300 * time.Millisecond, CreatedAt: base.Add(time.Minute)},
		{ID: "3", Model: "gemma3", Status: StatusError, Duration: 200 * time.Millisecond, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, ex := range records {
		if err := repo.Record(ctx, ex); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	summary, err := repo.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.Total != 3 || summary.OK != 2 || summary.Failed != 1 {
		t.Errorf("Summary() counts = %+v, want total 3, ok 2, failed 1", summary)
	}
	if summary.MeanDuration != 200*time.Millisecond {
		t.Errorf("Summary() MeanDuration = %v, want 200ms", summary.MeanDuration)
	}
	if !summary.LastAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("Summary() LastAt = %v, want %v", summary.LastAt, base.Add(2*time.Minute))
	}
}

func TestExchangeRepo_Recent(t *testing.T) {
	repo := NewExchangeRepo(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		ex := Exchange{
			ID: id, Model: "gemma3", HistoryLen: i, MessageChars: 10, ReplyChars: 20,
			Status: StatusOK, Duration: 1500 * time.Millisecond, CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Record(ctx, ex); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent() returned %d rows, want 2", len(got))
	}
	if got[0].ID != "new" || got[1].ID != "mid" {
		t.Errorf("Recent() order = [%s %s], want [new mid]", got[0].ID, got[1].ID)
	}
	if got[0].HistoryLen != 2 || got[0].Duration != 1500*time.Millisecond {
		t.Errorf("Recent() row = %+v", got[0])
	}
	if !got[0].CreatedAt.Equal(base.Add(2 * time.Second)) {
		t.Errorf("Recent() CreatedAt = %v, want %v", got[0].CreatedAt, base.Add(2*time.Second))
	}

	none, err := repo.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent(0) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Recent(0) returned %d rows, want 0", len(none))
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	for _, s := range []string{"2026-03-01 12:00:05.000", "2026-03-01 12:00:05", "2026-03-01T12:00:05Z"} {
		got, err := parseTimestamp(s)
		if err != nil {
			t.Errorf("parseTimestamp(%q) error = %v", s, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := parseTimestamp("yesterday"); err == nil {
		t.Error("parseTimestamp() expected error for garbage input")
	}
}
