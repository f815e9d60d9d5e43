package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

func isNoMatch(err error) bool { return errors.Is(err, ErrNoMatchingFiles) }

// ConfirmFunc is a suspension point in the pipeline: it presents a question
// and blocks for a yes/no decision. The CLI installs an interactive stdin
// prompter; tests inject scripted deciders so the pipeline runs headless.
type ConfirmFunc func(prompt string) (bool, error)

// Request carries the inputs for one service operation: where the camera
// uploads live, where the staging tree is rooted, and the target tuple.
type Request struct {
	SourceDir   string
	StagingBase string
	Target      Target
	Extensions  Extensions
}

// Service orchestrates the backup pipeline across the filesystem, the
// object store, and the catalog. All operations are strictly sequential;
// the only suspension points are the confirmation prompts.
type Service struct {
	store   ObjectStore
	syncer  *Syncer
	catalog Catalog
	confirm ConfirmFunc
	logger  Logger
	out     io.Writer
}

// NewService creates a Service with the provided dependencies.
func NewService(store ObjectStore, syncer *Syncer, catalog Catalog, confirm ConfirmFunc, logger Logger, out io.Writer) *Service {
	return &Service{
		store:   store,
		syncer:  syncer,
		catalog: catalog,
		confirm: confirm,
		logger:  logger,
		out:     out,
	}
}

// resolve derives paths for the request and validates the target.
func (s *Service) resolve(req Request) (*Resolved, error) {
	return Resolve(req.StagingBase, req.Target, req.Extensions)
}

// Mkdir creates the staging directory for the target, with all ancestors.
func (s *Service) Mkdir(req Request) (string, error) {
	r, err := s.resolve(req)
	if err != nil {
		return "", err
	}
	if err := EnsureDir(r.StagingDir); err != nil {
		return "", err
	}
	s.logger.Info("staging directory ready", "dir", r.StagingDir)
	return r.StagingDir, nil
}

// stagingDirFor returns the staging directory for a filename of either
// kind, routing video extensions into the video subdirectory.
func (s *Service) stagingDirFor(req Request, name string) (string, error) {
	kind := KindImage
	if strings.TrimPrefix(filepath.Ext(name), ".") == req.Extensions.Video {
		kind = KindVideo
	}
	t := req.Target
	t.Kind = kind
	r, err := Resolve(req.StagingBase, t, req.Extensions)
	if err != nil {
		return "", err
	}
	return r.StagingDir, nil
}

// devicePrefix is the bucket prefix holding all of this target's files,
// including the video subdirectory: photos/<year>/<month>/<device>/.
func devicePrefix(t Target) string {
	return path.Join("photos", t.Year, t.Month, t.Device) + "/"
}

// BuildCatalog scans the source folder, the staging tree, and the bucket
// for the target's year/month and records every filename seen. Both the
// image and the video extension are scanned, whatever the target kind.
func (s *Service) BuildCatalog(ctx context.Context, req Request) error {
	for _, kind := range []Kind{KindImage, KindVideo} {
		t := req.Target
		t.Kind = kind
		r, err := Resolve(req.StagingBase, t, req.Extensions)
		if err != nil {
			return err
		}

		sourceFiles, err := DiscoverSource(req.SourceDir, t, r.Extension)
		if err != nil && !isNoMatch(err) {
			return err
		}
		for _, f := range sourceFiles {
			if err := s.catalog.MarkSource(filepath.Base(f)); err != nil {
				return fmt.Errorf("recording source file: %w", err)
			}
		}

		stagedFiles, err := globStaged(r.StagingDir, t, r.Extension)
		if err != nil {
			return err
		}
		for _, f := range stagedFiles {
			if err := s.catalog.MarkStaging(filepath.Base(f)); err != nil {
				return fmt.Errorf("recording staged file: %w", err)
			}
		}
	}

	remote, err := s.store.List(ctx, req.Target.Bucket, devicePrefix(req.Target))
	if err != nil {
		return fmt.Errorf("listing bucket %s: %w", req.Target.Bucket, err)
	}
	for key := range remote {
		// Folder-marker keys end in a slash; skip them.
		if strings.HasSuffix(key, "/") {
			continue
		}
		if err := s.catalog.MarkRemote(path.Base(key)); err != nil {
			return fmt.Errorf("recording remote object: %w", err)
		}
	}
	return nil
}

// CatalogRecords builds the catalog for the target and returns every
// record, ordered by filename. Backs the diff subcommands.
func (s *Service) CatalogRecords(ctx context.Context, req Request) ([]*FileRecord, error) {
	if err := s.BuildCatalog(ctx, req); err != nil {
		return nil, err
	}
	return s.catalog.All()
}

// ListSource returns source files matching the target pattern.
func (s *Service) ListSource(req Request) ([]string, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	return DiscoverSource(req.SourceDir, req.Target, r.Extension)
}

// ListStaging returns staged files matching the target pattern.
func (s *Service) ListStaging(req Request) ([]string, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	return globStaged(r.StagingDir, req.Target, r.Extension)
}

// ListBucket returns the object keys stored under the target's device
// prefix, sorted.
func (s *Service) ListBucket(ctx context.Context, req Request) ([]string, error) {
	if err := req.Target.Validate(); err != nil {
		return nil, err
	}
	remote, err := s.store.List(ctx, req.Target.Bucket, devicePrefix(req.Target))
	if err != nil {
		return nil, fmt.Errorf("listing bucket %s: %w", req.Target.Bucket, err)
	}
	keys := make([]string, 0, len(remote))
	for key := range remote {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
