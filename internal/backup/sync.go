package backup

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// osMetadataFiles are always excluded from sync, regardless of config.
var osMetadataFiles = []string{".DS_Store"}

// TransferOp is one planned upload: a local file and the object key it
// will be stored under.
type TransferOp struct {
	Key       string
	LocalPath string
	Size      int64
}

// Syncer mirrors a local directory tree to a bucket prefix, upload-only.
// Plan enumerates the exact transfer set without side effects; Apply
// performs a previously computed plan. Given an unchanged local tree,
// Plan is deterministic, so a dry run and the subsequent real sync
// operate on the same set.
type Syncer struct {
	store   ObjectStore
	exclude map[string]struct{}
	logger  Logger
}

// NewSyncer creates a Syncer over the given store. exclude lists extra
// basenames to skip; OS metadata files are always skipped.
func NewSyncer(store ObjectStore, exclude []string, logger Logger) *Syncer {
	skip := make(map[string]struct{}, len(exclude)+len(osMetadataFiles))
	for _, name := range osMetadataFiles {
		skip[name] = struct{}{}
	}
	for _, name := range exclude {
		skip[name] = struct{}{}
	}
	return &Syncer{store: store, exclude: skip, logger: logger}
}

// Plan compares the tree under localDir against the objects under
// bucket/prefix and returns the uploads needed to bring the bucket up to
// date, ordered by key. A file is uploaded when it is missing remotely,
// differs in size, or has been modified since the remote copy was written.
func (s *Syncer) Plan(ctx context.Context, localDir, bucket, prefix string) ([]TransferOp, error) {
	remote, err := s.store.List(ctx, bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing bucket %s: %w", bucket, err)
	}

	var plan []TransferOp
	err = filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if _, skip := s.exclude[d.Name()]; skip {
			s.logger.Debug("excluded from sync", "path", p)
			return nil
		}

		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return fmt.Errorf("calculating relative path for %s: %w", p, err)
		}
		key := prefix + filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}

		obj, ok := remote[key]
		if ok && obj.Size == info.Size() && !obj.ModTime.Before(info.ModTime()) {
			s.logger.Debug("in sync, no action required", "key", key)
			return nil
		}
		plan = append(plan, TransferOp{Key: key, LocalPath: p, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", localDir, err)
	}

	sort.Slice(plan, func(i, j int) bool { return plan[i].Key < plan[j].Key })
	return plan, nil
}

// Apply uploads every file in the plan. The first failure aborts the
// remaining transfers; already-uploaded objects stay uploaded.
func (s *Syncer) Apply(ctx context.Context, bucket string, plan []TransferOp) error {
	for _, op := range plan {
		if err := s.uploadOne(ctx, bucket, op); err != nil {
			return err
		}
		s.logger.Info("uploaded", "key", op.Key, "bucket", bucket)
	}
	return nil
}

func (s *Syncer) uploadOne(ctx context.Context, bucket string, op TransferOp) error {
	f, err := os.Open(op.LocalPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", op.LocalPath, err)
	}
	defer f.Close()

	if err := s.store.Upload(ctx, bucket, op.Key, f, op.Size); err != nil {
		return fmt.Errorf("uploading %s: %w", op.Key, err)
	}
	return nil
}
