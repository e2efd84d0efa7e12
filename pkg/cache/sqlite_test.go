package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteBackend(t *testing.T) *SQLiteBackend {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cache.db")
	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("NewSQLiteBackend failed: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })

	return b
}

func TestSQLiteBackendRoundTrip(t *testing.T) {
	b := newTestSQLiteBackend(t)
	ctx := context.Background()

	if err := b.Set(ctx, "k1", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := b.Get(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if string(got) != "v1" {
		t.Errorf("unexpected value: %q", got)
	}

	if _, ok, _ := b.Get(ctx, "missing"); ok {
		t.Error("absent key should be a miss")
	}
}

func TestSQLiteBackendOverwrite(t *testing.T) {
	b := newTestSQLiteBackend(t)
	ctx := context.Background()

	_ = b.Set(ctx, "k", []byte("old"), time.Minute)
	_ = b.Set(ctx, "k", []byte("new"), time.Minute)

	got, ok, _ := b.Get(ctx, "k")
	if !ok || string(got) != "new" {
		t.Errorf("expected upsert, got %q ok=%v", got, ok)
	}
}

func TestSQLiteBackendExpiry(t *testing.T) {
	b := newTestSQLiteBackend(t)
	ctx := context.Background()

	// Expiry is stored in whole seconds; a negative TTL is already past due.
	if err := b.Set(ctx, "k1", []byte("v1"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, ok, _ := b.Get(ctx, "k1"); ok {
		t.Error("expired row should be a miss")
	}
}

func TestSQLiteBackendDeleteAndClear(t *testing.T) {
	b := newTestSQLiteBackend(t)
	ctx := context.Background()

	_ = b.Set(ctx, "a", []byte("1"), time.Minute)
	_ = b.Set(ctx, "b", []byte("2"), time.Minute)

	if err := b.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "a"); ok {
		t.Error("deleted key should be absent")
	}

	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "b"); ok {
		t.Error("Clear should remove every row")
	}
}

func TestSQLiteBackendPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("NewSQLiteBackend failed: %v", err)
	}
	if err := b.Set(ctx, "k1", []byte("survives"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	b2, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer b2.Close()

	got, ok, err := b2.Get(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("Get after reopen failed: ok=%v err=%v", ok, err)
	}
	if string(got) != "survives" {
		t.Errorf("unexpected value after reopen: %q", got)
	}
}

func TestSQLiteBackendCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deeper")
	path := filepath.Join(dir, "cache.db")

	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("NewSQLiteBackend failed: %v", err)
	}
	defer b.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("backend should create its directory: %v", err)
	}
}

func TestNewSQLiteBackendEmptyPath(t *testing.T) {
	if _, err := NewSQLiteBackend(""); err == nil {
		t.Error("expected an error for an empty path")
	}
}
