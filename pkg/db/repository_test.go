package db

import (
	"context"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	database, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return NewRepository(database)
}

func TestKV(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	// Missing key
	got, ok, err := repo.Get(ctx, "semester4_sys_v3")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if ok || got != nil {
		t.Fatalf("expected missing key, got %q", got)
	}

	// Insert
	if err := repo.Put(ctx, "semester4_sys_v3", []byte(`{"currentWeek":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err = repo.Get(ctx, "semester4_sys_v3")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(got) != `{"currentWeek":1}` {
		t.Errorf("value = %q", got)
	}

	// Overwrite
	if err := repo.Put(ctx, "semester4_sys_v3", []byte(`{"currentWeek":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = repo.Get(ctx, "semester4_sys_v3")
	if string(got) != `{"currentWeek":2}` {
		t.Errorf("expected overwritten value, got %q", got)
	}

	// Delete
	if err := repo.Delete(ctx, "semester4_sys_v3"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "semester4_sys_v3"); ok {
		t.Error("expected key to be deleted")
	}
}

func TestRollovers(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	latest, err := repo.GetLatestRollover(ctx)
	if err != nil {
		t.Fatalf("latest on empty: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil, got %+v", latest)
	}

	if err := repo.LogRollover(ctx, 1, 50, 20, 40); err != nil {
		t.Fatalf("log week 1: %v", err)
	}
	if err := repo.LogRollover(ctx, 2, 75, 30, 40); err != nil {
		t.Fatalf("log week 2: %v", err)
	}

	latest, err = repo.GetLatestRollover(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Week != 2 || latest.Score != 75 || latest.Completed != 30 || latest.Total != 40 {
		t.Errorf("unexpected latest rollover: %+v", latest)
	}

	logs, err := repo.ListRollovers(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].Week != 2 || logs[1].Week != 1 {
		t.Errorf("expected newest first, got weeks %d, %d", logs[0].Week, logs[1].Week)
	}
}

func TestBackups(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	rec, err := repo.GetLatestBackup(ctx, "drive")
	if err != nil || rec != nil {
		t.Fatalf("expected no backup, got %+v, %v", rec, err)
	}

	if err := repo.LogBackup(ctx, "drive", "file-1"); err != nil {
		t.Fatalf("log: %v", err)
	}
	if err := repo.LogBackup(ctx, "git", "abc123"); err != nil {
		t.Fatalf("log: %v", err)
	}

	rec, err = repo.GetLatestBackup(ctx, "drive")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rec == nil || rec.Location != "file-1" {
		t.Errorf("expected drive backup file-1, got %+v", rec)
	}
}

func TestNewDBCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "sempilot.db")
	database, err := NewDB(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()
	if err := database.InitSchema(); err != nil {
		t.Fatalf("init: %v", err)
	}
}

func TestInitSchemaVersion(t *testing.T) {
	database, err := NewDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	if err := database.InitSchema(); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if err := database.InitSchema(); err != nil {
		t.Fatalf("second init: %v", err)
	}
	var v int
	if err := database.QueryRow(`PRAGMA user_version`).Scan(&v); err != nil || v != schemaVersion {
		t.Fatalf("user_version = %d, %v", v, err)
	}

	if _, err := database.Exec(`PRAGMA user_version = 99`); err != nil {
		t.Fatal(err)
	}
	if err := database.InitSchema(); err == nil {
		t.Error("expected newer schema to be refused")
	}
}

func TestCompareAndPut(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	const key = "semester4_sys_v3"

	rev, ok, err := repo.CompareAndPut(ctx, key, []byte(`{"currentWeek":1}`), 0)
	if err != nil || !ok || rev != 1 {
		t.Fatalf("first write: rev=%d ok=%v err=%v", rev, ok, err)
	}

	// A second creator loses.
	if _, ok, err := repo.CompareAndPut(ctx, key, []byte(`{"currentWeek":9}`), 0); err != nil || ok {
		t.Fatalf("expected insert conflict, ok=%v err=%v", ok, err)
	}

	rev, ok, err = repo.CompareAndPut(ctx, key, []byte(`{"currentWeek":2}`), 1)
	if err != nil || !ok || rev != 2 {
		t.Fatalf("update: rev=%d ok=%v err=%v", rev, ok, err)
	}

	// Writing against an old revision changes nothing.
	if _, ok, err := repo.CompareAndPut(ctx, key, []byte(`{"currentWeek":3}`), 1); err != nil || ok {
		t.Fatalf("expected stale write to be refused, ok=%v err=%v", ok, err)
	}
	got, rev, err := repo.GetWithRevision(ctx, key)
	if err != nil || rev != 2 || string(got) != `{"currentWeek":2}` {
		t.Fatalf("got %q rev=%d err=%v", got, rev, err)
	}

	// Unconditional writes bump the revision too.
	if err := repo.Put(ctx, key, []byte(`{"currentWeek":4}`)); err != nil {
		t.Fatal(err)
	}
	if rev, err := repo.Revision(ctx, key); err != nil || rev != 3 {
		t.Fatalf("revision = %d, %v", rev, err)
	}
	if rev, err := repo.Revision(ctx, "missing"); err != nil || rev != 0 {
		t.Fatalf("missing revision = %d, %v", rev, err)
	}
}

func TestInitSchemaMigratesRevision(t *testing.T) {
	database, err := NewDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	legacy := `
	CREATE TABLE kv (key TEXT PRIMARY KEY, value BLOB NOT NULL, updated_at DATETIME DEFAULT CURRENT_TIMESTAMP);
	INSERT INTO kv (key, value) VALUES ('semester4_sys_v3', '{"currentWeek":3}');
	PRAGMA user_version = 1;`
	if _, err := database.Exec(legacy); err != nil {
		t.Fatal(err)
	}
	if err := database.InitSchema(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := NewRepository(database)
	got, rev, err := repo.GetWithRevision(context.Background(), "semester4_sys_v3")
	if err != nil || rev != 1 || string(got) != `{"currentWeek":3}` {
		t.Fatalf("got %q rev=%d err=%v", got, rev, err)
	}
}
