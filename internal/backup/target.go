package backup

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
)

// Kind classifies the media files a backup target operates on.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// ParseKind converts a raw string (e.g. a CLI flag value) into a Kind.
func ParseKind(raw string) (Kind, error) {
	switch raw {
	case "image":
		return KindImage, nil
	case "video":
		return KindVideo, nil
	default:
		return "", fmt.Errorf("unknown media kind %q (must be \"image\" or \"video\")", raw)
	}
}

// Extensions maps each media kind to the file extension it operates on.
// One extension per kind is a fixed policy inherited from the upload layout
// of the camera sync client; it is configurable but never scanned dynamically.
type Extensions struct {
	Image string
	Video string
}

// DefaultExtensions matches the camera upload formats handled by default.
func DefaultExtensions() Extensions {
	return Extensions{Image: "jpg", Video: "mov"}
}

// ForKind returns the extension configured for the given kind.
func (e Extensions) ForKind(k Kind) string {
	if k == KindVideo {
		return e.Video
	}
	return e.Image
}

var (
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
	monthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
)

// Target identifies one backup run: which bucket, which device, and which
// year/month slice of the camera uploads to operate on.
// A Target is immutable once constructed; all derived paths are pure
// functions of this tuple.
type Target struct {
	Bucket string
	Device string
	Year   string // 4-digit, e.g. "2016"
	Month  string // 2-digit zero-padded, e.g. "08"
	Kind   Kind
}

// Validate rejects malformed targets before any filesystem or network work.
func (t Target) Validate() error {
	if t.Bucket == "" {
		return fmt.Errorf("bucket name is required")
	}
	if t.Device == "" {
		return fmt.Errorf("device name is required")
	}
	if !yearPattern.MatchString(t.Year) {
		return fmt.Errorf("year must be a 4-digit string, got %q", t.Year)
	}
	if !monthPattern.MatchString(t.Month) {
		return fmt.Errorf("month must be a 2-digit zero-padded string 01-12, got %q", t.Month)
	}
	if t.Kind != KindImage && t.Kind != KindVideo {
		return fmt.Errorf("kind must be image or video, got %q", t.Kind)
	}
	return nil
}

// Resolved holds the paths and extension derived from a Target.
//
// The local staging tree mirrors the bucket layout exactly, so for bucket
// "mybucket", year 2016, month 08, device iPhone6s the staging dir is
//
//	<base>/mybucket/photos/2016/08/iPhone6s[/video]
//
// and its contents sync to s3://mybucket/photos/2016/...
type Resolved struct {
	// StagingDir is where discovered source files are moved to.
	StagingDir string

	// Extension (without dot) selects which source files are discovered.
	Extension string

	// SyncLocalDir is the root of the local tree compared against the
	// bucket during sync: <base>/<bucket>/photos/<year>.
	SyncLocalDir string

	// SyncPrefix is the object key prefix the sync compares against:
	// photos/<year>/.
	SyncPrefix string

	// RemotePrefix is the key prefix this target's files end up under:
	// photos/<year>/<month>/<device>[/video]/.
	RemotePrefix string
}

// Resolve derives the staging directory, remote prefixes and extension for a
// target. It is deterministic and total for all valid targets.
func Resolve(stagingBase string, t Target, exts Extensions) (*Resolved, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if stagingBase == "" {
		return nil, fmt.Errorf("staging base directory is required")
	}

	devicePrefix := path.Join("photos", t.Year, t.Month, t.Device)
	remotePrefix := devicePrefix
	if t.Kind == KindVideo {
		remotePrefix = path.Join(remotePrefix, "video")
	}

	bucketRoot := filepath.Join(stagingBase, t.Bucket)
	return &Resolved{
		StagingDir:   filepath.Join(bucketRoot, filepath.FromSlash(remotePrefix)),
		Extension:    exts.ForKind(t.Kind),
		SyncLocalDir: filepath.Join(bucketRoot, "photos", t.Year),
		SyncPrefix:   path.Join("photos", t.Year) + "/",
		RemotePrefix: remotePrefix + "/",
	}, nil
}
