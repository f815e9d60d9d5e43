package backup_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/billagee/dropbox-to-s3/internal/backup"
)

func TestService_Mkdir(t *testing.T) {
	t.Run("creates the image staging dir", func(t *testing.T) {
		f := newFixture(t, confirmAll)

		dir, err := f.svc.Mkdir(f.request())
		if err != nil {
			t.Fatalf("Mkdir() error = %v", err)
		}
		if dir != f.stagingDir() {
			t.Errorf("dir = %q, want %q", dir, f.stagingDir())
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("staging dir not created: %v", err)
		}
	})

	t.Run("creates the video subdirectory for video targets", func(t *testing.T) {
		f := newFixture(t, confirmAll)
		req := f.request()
		req.Target.Kind = backup.KindVideo

		dir, err := f.svc.Mkdir(req)
		if err != nil {
			t.Fatalf("Mkdir() error = %v", err)
		}
		want := filepath.Join(f.stagingDir(), "video")
		if dir != want {
			t.Errorf("dir = %q, want %q", dir, want)
		}
	})
}

func TestService_VideoWorkflowUsesVideoSubdir(t *testing.T) {
	f := newFixture(t, confirmScript(t, true, true))
	f.seedSource(t, "2016-08-05 10.00.00.mov", "video bytes")

	req := f.request()
	req.Target.Kind = backup.KindVideo

	res, err := f.svc.Workflow(context.Background(), req)
	if err != nil {
		t.Fatalf("Workflow() error = %v", err)
	}

	want := filepath.Join(f.stagingDir(), "video", "2016-08-05 10.00.00.mov")
	if len(res.Moved) != 1 || res.Moved[0] != want {
		t.Errorf("moved = %v, want [%s]", res.Moved, want)
	}

	keys := f.store.Keys("bucket")
	if len(keys) != 1 || keys[0] != "photos/2016/08/iPhone6s/video/2016-08-05 10.00.00.mov" {
		t.Errorf("keys = %v", keys)
	}
}

func TestService_CatalogRecords(t *testing.T) {
	f := newFixture(t, confirmAll)

	// One file in every location, one source-only, one staged-only, one
	// remote-only, plus a video clip in source.
	f.seedSource(t, "2016-08-01 09.00.00.jpg", "everywhere")
	f.seedStaged(t, "2016-08-01 09.00.00.jpg", "everywhere")
	f.store.Put("bucket", "photos/2016/08/iPhone6s/2016-08-01 09.00.00.jpg", []byte("everywhere"), time.Now())

	f.seedSource(t, "2016-08-02 09.00.00.jpg", "source only")
	f.seedStaged(t, "2016-08-03 09.00.00.jpg", "staged only")
	f.store.Put("bucket", "photos/2016/08/iPhone6s/2016-08-04 09.00.00.jpg", []byte("remote only"), time.Now())
	f.seedSource(t, "2016-08-05 10.00.00.mov", "video source")

	records, err := f.svc.CatalogRecords(context.Background(), f.request())
	if err != nil {
		t.Fatalf("CatalogRecords() error = %v", err)
	}

	byName := make(map[string]*backup.FileRecord, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}

	tests := []struct {
		name                          string
		inSource, inStaging, inRemote bool
	}{
		{"2016-08-01 09.00.00.jpg", true, true, true},
		{"2016-08-02 09.00.00.jpg", true, false, false},
		{"2016-08-03 09.00.00.jpg", false, true, false},
		{"2016-08-04 09.00.00.jpg", false, false, true},
		{"2016-08-05 10.00.00.mov", true, false, false},
	}
	for _, tt := range tests {
		rec := byName[tt.name]
		if rec == nil {
			t.Errorf("no record for %s", tt.name)
			continue
		}
		if rec.InSource != tt.inSource || rec.InStaging != tt.inStaging || rec.InRemote != tt.inRemote {
			t.Errorf("%s = source:%v staging:%v remote:%v, want %v/%v/%v",
				tt.name, rec.InSource, rec.InStaging, rec.InRemote,
				tt.inSource, tt.inStaging, tt.inRemote)
		}
	}

	// Ordered by filename.
	for i := 1; i < len(records); i++ {
		if records[i-1].Name > records[i].Name {
			t.Errorf("records out of order: %q before %q", records[i-1].Name, records[i].Name)
		}
	}
}

func TestService_Listings(t *testing.T) {
	ctx := context.Background()

	t.Run("source listing", func(t *testing.T) {
		f := newFixture(t, confirmAll)
		f.seedSource(t, "2016-08-01 09.00.00.jpg", "a")
		f.seedSource(t, "2016-09-01 09.00.00.jpg", "other month")

		files, err := f.svc.ListSource(f.request())
		if err != nil {
			t.Fatalf("ListSource() error = %v", err)
		}
		if len(files) != 1 || filepath.Base(files[0]) != "2016-08-01 09.00.00.jpg" {
			t.Errorf("files = %v", files)
		}
	})

	t.Run("staging listing tolerates a missing tree", func(t *testing.T) {
		f := newFixture(t, confirmAll)

		files, err := f.svc.ListStaging(f.request())
		if err != nil {
			t.Fatalf("ListStaging() error = %v", err)
		}
		if len(files) != 0 {
			t.Errorf("files = %v, want none", files)
		}
	})

	t.Run("bucket listing is sorted and scoped to the device prefix", func(t *testing.T) {
		f := newFixture(t, confirmAll)
		f.store.Put("bucket", "photos/2016/08/iPhone6s/b.jpg", []byte("b"), time.Now())
		f.store.Put("bucket", "photos/2016/08/iPhone6s/a.jpg", []byte("a"), time.Now())
		f.store.Put("bucket", "photos/2016/08/OtherCam/c.jpg", []byte("c"), time.Now())

		keys, err := f.svc.ListBucket(ctx, f.request())
		if err != nil {
			t.Fatalf("ListBucket() error = %v", err)
		}
		want := []string{
			"photos/2016/08/iPhone6s/a.jpg",
			"photos/2016/08/iPhone6s/b.jpg",
		}
		if len(keys) != len(want) {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
		for i := range want {
			if keys[i] != want[i] {
				t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
			}
		}
	})
}
