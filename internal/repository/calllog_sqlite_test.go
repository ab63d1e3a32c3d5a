package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"catalog-proxy-api/internal/model"
)

func newTestRepo(t *testing.T) *SQLiteCallLogRepository {
	t.Helper()

	repo, err := NewSQLiteCallLogRepository(filepath.Join(t.TempDir(), "calllog.db"))
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestInsertAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entries := []*model.CallLog{
		{Method: "GET", URL: "https://catalog.roblox.com/v1/assets/1/bundles", Status: 200, DurationMs: 45},
		{Method: "POST", URL: "https://catalog.roblox.com/v1/catalog/items/details", Status: 403, DurationMs: 120, Error: "forbidden"},
	}
	for _, e := range entries {
		if err := repo.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, total, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("List returned %d entries, total %d, want 2/2", len(got), total)
	}

	for _, e := range got {
		if e.Method == "POST" && e.Error != "forbidden" {
			t.Errorf("POST entry error = %q, want %q", e.Error, "forbidden")
		}
		if e.CreatedAt.IsZero() {
			t.Error("CreatedAt not populated")
		}
	}
}

func TestListPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		err := repo.Insert(ctx, &model.CallLog{
			Method:    "GET",
			URL:       "https://example.test/x",
			Status:    200,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	page, total, err := repo.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
	// Newest first, so offset 2 of 5 lands on the middle entry.
	if !page[0].CreatedAt.After(page[1].CreatedAt) {
		t.Errorf("entries not ordered newest first: %v, %v", page[0].CreatedAt, page[1].CreatedAt)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	old := &model.CallLog{Method: "GET", URL: "https://example.test/old", Status: 200,
		CreatedAt: time.Now().UTC().Add(-48 * time.Hour)}
	fresh := &model.CallLog{Method: "GET", URL: "https://example.test/fresh", Status: 200,
		CreatedAt: time.Now().UTC()}
	for _, e := range []*model.CallLog{old, fresh} {
		if err := repo.Insert(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := repo.DeleteOlderThan(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	got, total, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(got) != 1 || got[0].URL != "https://example.test/fresh" {
		t.Errorf("surviving entries = %+v, total %d", got, total)
	}
}

func TestStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, e := range []*model.CallLog{
		{Method: "GET", URL: "https://example.test/a", Status: 200},
		{Method: "GET", URL: "https://example.test/b", Status: 502},
		{Method: "GET", URL: "https://example.test/c", Status: 0, Error: "timeout"},
	} {
		if err := repo.Insert(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats["total_calls"] != int64(3) {
		t.Errorf("total_calls = %v, want 3", stats["total_calls"])
	}
	if stats["failed_calls"] != int64(2) {
		t.Errorf("failed_calls = %v, want 2", stats["failed_calls"])
	}
	if _, ok := stats["last_call"]; !ok {
		t.Error("last_call missing from stats")
	}
}
