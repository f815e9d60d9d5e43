package backup_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/billagee/dropbox-to-s3/internal/backup"
	"github.com/billagee/dropbox-to-s3/internal/remote"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSyncer_Plan(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads files missing from the bucket", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "08/iPhone6s/b.jpg", "bb")
		writeFile(t, dir, "08/iPhone6s/a.jpg", "aa")

		store := remote.NewMemoryStore()
		syncer := backup.NewSyncer(store, nil, backup.NopLogger{})

		plan, err := syncer.Plan(ctx, dir, "bucket", "photos/2016/")
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if len(plan) != 2 {
			t.Fatalf("plan has %d ops, want 2: %v", len(plan), plan)
		}
		// Ordered by key.
		if plan[0].Key != "photos/2016/08/iPhone6s/a.jpg" {
			t.Errorf("plan[0].Key = %q", plan[0].Key)
		}
		if plan[1].Key != "photos/2016/08/iPhone6s/b.jpg" {
			t.Errorf("plan[1].Key = %q", plan[1].Key)
		}
		if plan[0].Size != 2 {
			t.Errorf("plan[0].Size = %d, want 2", plan[0].Size)
		}
	})

	t.Run("skips files already in sync", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "08/iPhone6s/a.jpg", "aa")

		store := remote.NewMemoryStore()
		// Remote copy is newer than the local file and has the same size.
		store.Put("bucket", "photos/2016/08/iPhone6s/a.jpg", []byte("aa"), time.Now().Add(time.Hour))

		syncer := backup.NewSyncer(store, nil, backup.NopLogger{})
		plan, err := syncer.Plan(ctx, dir, "bucket", "photos/2016/")
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if len(plan) != 0 {
			t.Errorf("plan = %v, want empty", plan)
		}
	})

	t.Run("re-uploads when size differs", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "08/iPhone6s/a.jpg", "aa-grown")

		store := remote.NewMemoryStore()
		store.Put("bucket", "photos/2016/08/iPhone6s/a.jpg", []byte("aa"), time.Now().Add(time.Hour))

		syncer := backup.NewSyncer(store, nil, backup.NopLogger{})
		plan, err := syncer.Plan(ctx, dir, "bucket", "photos/2016/")
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if len(plan) != 1 {
			t.Errorf("plan = %v, want one op", plan)
		}
	})

	t.Run("re-uploads when local file is newer", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "08/iPhone6s/a.jpg", "aa")

		store := remote.NewMemoryStore()
		store.Put("bucket", "photos/2016/08/iPhone6s/a.jpg", []byte("aa"), time.Now().Add(-time.Hour))

		syncer := backup.NewSyncer(store, nil, backup.NopLogger{})
		plan, err := syncer.Plan(ctx, dir, "bucket", "photos/2016/")
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if len(plan) != 1 {
			t.Errorf("plan = %v, want one op", plan)
		}
	})

	t.Run("always excludes OS metadata files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "08/iPhone6s/.DS_Store", "junk")
		writeFile(t, dir, "08/iPhone6s/a.jpg", "aa")

		store := remote.NewMemoryStore()
		syncer := backup.NewSyncer(store, nil, backup.NopLogger{})
		plan, err := syncer.Plan(ctx, dir, "bucket", "photos/2016/")
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if len(plan) != 1 || plan[0].Key != "photos/2016/08/iPhone6s/a.jpg" {
			t.Errorf("plan = %v, want only a.jpg", plan)
		}
	})

	t.Run("honors configured exclusions", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "08/iPhone6s/Thumbs.db", "junk")
		writeFile(t, dir, "08/iPhone6s/a.jpg", "aa")

		store := remote.NewMemoryStore()
		syncer := backup.NewSyncer(store, []string{"Thumbs.db"}, backup.NopLogger{})
		plan, err := syncer.Plan(ctx, dir, "bucket", "photos/2016/")
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if len(plan) != 1 || plan[0].Key != "photos/2016/08/iPhone6s/a.jpg" {
			t.Errorf("plan = %v, want only a.jpg", plan)
		}
	})

	t.Run("missing local dir is an error", func(t *testing.T) {
		store := remote.NewMemoryStore()
		syncer := backup.NewSyncer(store, nil, backup.NopLogger{})
		if _, err := syncer.Plan(ctx, filepath.Join(t.TempDir(), "missing"), "bucket", "p/"); err == nil {
			t.Fatal("expected error for missing local dir")
		}
	})
}

func TestSyncer_Apply(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "08/iPhone6s/a.jpg", "aa")
	writeFile(t, dir, "08/iPhone6s/b.jpg", "bbb")

	store := remote.NewMemoryStore()
	syncer := backup.NewSyncer(store, nil, backup.NopLogger{})

	plan, err := syncer.Plan(ctx, dir, "bucket", "photos/2016/")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if err := syncer.Apply(ctx, "bucket", plan); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	keys := store.Keys("bucket")
	if len(keys) != 2 {
		t.Fatalf("uploaded %v, want 2 objects", keys)
	}

	// A second plan over the unchanged tree finds nothing to do.
	plan, err = syncer.Plan(ctx, dir, "bucket", "photos/2016/")
	if err != nil {
		t.Fatalf("second Plan() error = %v", err)
	}
	if len(plan) != 0 {
		t.Errorf("second plan = %v, want empty", plan)
	}
}
