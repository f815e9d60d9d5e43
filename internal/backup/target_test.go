package backup

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		raw     string
		want    Kind
		wantErr bool
	}{
		{raw: "image", want: KindImage},
		{raw: "video", want: KindVideo},
		{raw: "", wantErr: true},
		{raw: "movie", wantErr: true},
		{raw: "Image", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseKind(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseKind(%q) expected error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtensions_ForKind(t *testing.T) {
	exts := Extensions{Image: "jpg", Video: "mov"}
	if got := exts.ForKind(KindImage); got != "jpg" {
		t.Errorf("ForKind(image) = %q, want jpg", got)
	}
	if got := exts.ForKind(KindVideo); got != "mov" {
		t.Errorf("ForKind(video) = %q, want mov", got)
	}
}

func TestTarget_Validate(t *testing.T) {
	valid := Target{Bucket: "b", Device: "iPhone6s", Year: "2016", Month: "08", Kind: KindImage}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error = %v for valid target", err)
	}

	tests := []struct {
		name   string
		mutate func(*Target)
	}{
		{name: "empty bucket", mutate: func(t *Target) { t.Bucket = "" }},
		{name: "empty device", mutate: func(t *Target) { t.Device = "" }},
		{name: "short year", mutate: func(t *Target) { t.Year = "16" }},
		{name: "non-numeric year", mutate: func(t *Target) { t.Year = "20x6" }},
		{name: "unpadded month", mutate: func(t *Target) { t.Month = "8" }},
		{name: "month zero", mutate: func(t *Target) { t.Month = "00" }},
		{name: "month thirteen", mutate: func(t *Target) { t.Month = "13" }},
		{name: "empty kind", mutate: func(t *Target) { t.Kind = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := valid
			tt.mutate(&bad)
			if err := bad.Validate(); err == nil {
				t.Errorf("Validate() expected error for %s", tt.name)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	exts := DefaultExtensions()

	t.Run("image layout", func(t *testing.T) {
		r, err := Resolve("/base", Target{Bucket: "mybucket", Device: "iPhone6s", Year: "2016", Month: "08", Kind: KindImage}, exts)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		wantDir := filepath.Join("/base", "mybucket", "photos", "2016", "08", "iPhone6s")
		if r.StagingDir != wantDir {
			t.Errorf("StagingDir = %q, want %q", r.StagingDir, wantDir)
		}
		if r.Extension != "jpg" {
			t.Errorf("Extension = %q, want jpg", r.Extension)
		}
		if r.RemotePrefix != "photos/2016/08/iPhone6s/" {
			t.Errorf("RemotePrefix = %q", r.RemotePrefix)
		}
		if r.SyncPrefix != "photos/2016/" {
			t.Errorf("SyncPrefix = %q", r.SyncPrefix)
		}
		wantSync := filepath.Join("/base", "mybucket", "photos", "2016")
		if r.SyncLocalDir != wantSync {
			t.Errorf("SyncLocalDir = %q, want %q", r.SyncLocalDir, wantSync)
		}
	})

	t.Run("video goes to the video subdirectory", func(t *testing.T) {
		r, err := Resolve("/base", Target{Bucket: "mybucket", Device: "iPhone6s", Year: "2016", Month: "08", Kind: KindVideo}, exts)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !strings.HasSuffix(r.StagingDir, filepath.Join("iPhone6s", "video")) {
			t.Errorf("StagingDir = %q, want video subdirectory", r.StagingDir)
		}
		if r.RemotePrefix != "photos/2016/08/iPhone6s/video/" {
			t.Errorf("RemotePrefix = %q", r.RemotePrefix)
		}
		if r.Extension != "mov" {
			t.Errorf("Extension = %q, want mov", r.Extension)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		target := Target{Bucket: "b", Device: "d", Year: "2020", Month: "01", Kind: KindImage}
		a, err := Resolve("/base", target, exts)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		b, err := Resolve("/base", target, exts)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if *a != *b {
			t.Errorf("Resolve() not deterministic: %+v vs %+v", a, b)
		}
	})

	t.Run("rejects invalid target", func(t *testing.T) {
		if _, err := Resolve("/base", Target{}, exts); err == nil {
			t.Error("Resolve() expected error for empty target")
		}
	})

	t.Run("rejects empty staging base", func(t *testing.T) {
		target := Target{Bucket: "b", Device: "d", Year: "2020", Month: "01", Kind: KindImage}
		if _, err := Resolve("", target, exts); err == nil {
			t.Error("Resolve() expected error for empty staging base")
		}
	})
}
