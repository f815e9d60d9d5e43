package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// WorkflowResult summarizes what a completed pipeline run did.
type WorkflowResult struct {
	StagingDir string
	Moved      []string     // destination paths of moved files
	Plan       []TransferOp // the confirmed transfer set
	Synced     bool         // false when the plan was empty
}

// Workflow runs the full backup pipeline for one target:
//
//	resolve paths → ensure staging dir → discover source files →
//	confirm → move → dry-run sync → confirm → sync
//
// Zero discovered files returns ErrNoMatchingFiles before anything is
// moved. Declining either confirmation returns ErrUserAborted; files
// already moved stay moved, but no transfer is attempted. Moves are atomic
// per file; a mid-batch failure aborts the rest of the pipeline without
// rolling back completed moves.
func (s *Service) Workflow(ctx context.Context, req Request) (*WorkflowResult, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	if err := EnsureDir(r.StagingDir); err != nil {
		return nil, err
	}

	moved, err := s.moveFiles(req, r)
	if err != nil {
		return nil, err
	}

	result := &WorkflowResult{StagingDir: r.StagingDir, Moved: moved}

	plan, err := s.syncer.Plan(ctx, r.SyncLocalDir, req.Target.Bucket, r.SyncPrefix)
	if err != nil {
		return result, err
	}
	result.Plan = plan

	if len(plan) == 0 {
		fmt.Fprintln(s.out, "Bucket is already in sync; nothing to upload.")
		return result, nil
	}

	s.presentPlan(plan, req.Target.Bucket)
	ok, err := s.confirm(fmt.Sprintf("OK to sync the %d file(s) above to s3://%s?", len(plan), req.Target.Bucket))
	if err != nil {
		return result, fmt.Errorf("reading confirmation: %w", err)
	}
	if !ok {
		return result, ErrUserAborted
	}

	if err := s.syncer.Apply(ctx, req.Target.Bucket, plan); err != nil {
		return result, err
	}
	result.Synced = true
	s.logger.Info("workflow complete", "moved", len(moved), "uploaded", len(plan))
	return result, nil
}

// Move runs the discovery/confirm/move portion of the pipeline without
// touching the bucket. Backs the mv subcommand.
func (s *Service) Move(req Request) ([]string, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	if err := EnsureDir(r.StagingDir); err != nil {
		return nil, err
	}
	return s.moveFiles(req, r)
}

// moveFiles discovers matching source files, confirms, and relocates them
// into the staging directory, preserving filenames.
func (s *Service) moveFiles(req Request, r *Resolved) ([]string, error) {
	files, err := DiscoverSource(req.SourceDir, req.Target, r.Extension)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(s.out, "Files in %s that match your pattern:\n", req.SourceDir)
	for _, f := range files {
		fmt.Fprintf(s.out, "  %s\n", filepath.Base(f))
	}
	fmt.Fprintf(s.out, "These files will be moved to:\n  %s\n", r.StagingDir)

	ok, err := s.confirm(fmt.Sprintf("OK to move the %d file(s) above?", len(files)))
	if err != nil {
		return nil, fmt.Errorf("reading confirmation: %w", err)
	}
	if !ok {
		return nil, ErrUserAborted
	}

	moved := make([]string, 0, len(files))
	for _, f := range files {
		dest, err := moveFile(f, r.StagingDir)
		if err != nil {
			return moved, err
		}
		s.logger.Info("moved", "file", filepath.Base(f), "dest", r.StagingDir)
		moved = append(moved, dest)
	}
	return moved, nil
}

// SyncStaging plans a sync of the existing staging tree against the
// bucket and, unless dryRun is set, confirms and applies it. Backs the
// sync subcommand; the workflow uses the same planner so a dry run and
// the following real sync see the same transfer set.
func (s *Service) SyncStaging(ctx context.Context, req Request, dryRun bool) ([]TransferOp, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	plan, err := s.syncer.Plan(ctx, r.SyncLocalDir, req.Target.Bucket, r.SyncPrefix)
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		fmt.Fprintln(s.out, "Bucket is already in sync; nothing to upload.")
		return plan, nil
	}

	s.presentPlan(plan, req.Target.Bucket)
	if dryRun {
		return plan, nil
	}

	ok, err := s.confirm(fmt.Sprintf("OK to sync the %d file(s) above to s3://%s?", len(plan), req.Target.Bucket))
	if err != nil {
		return plan, fmt.Errorf("reading confirmation: %w", err)
	}
	if !ok {
		return plan, ErrUserAborted
	}

	if err := s.syncer.Apply(ctx, req.Target.Bucket, plan); err != nil {
		return plan, err
	}
	return plan, nil
}

func (s *Service) presentPlan(plan []TransferOp, bucket string) {
	fmt.Fprintf(s.out, "Planned transfers to s3://%s:\n", bucket)
	for _, op := range plan {
		fmt.Fprintf(s.out, "  upload %s (%d bytes)\n", op.Key, op.Size)
	}
}

// Clean deletes source files that have been fully backed up: present in
// both the staging tree and the bucket, and byte-identical to the staged
// copy. A content mismatch aborts immediately so nothing is lost. The
// deletions are presented and confirmed as a batch before any file is
// removed; declining returns ErrUserAborted with the source untouched.
// Returns the deleted (or, in a dry run, deletable) source paths.
func (s *Service) Clean(ctx context.Context, req Request, dryRun bool) ([]string, error) {
	if err := s.BuildCatalog(ctx, req); err != nil {
		return nil, err
	}

	candidates, err := s.cleanCandidates(req)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		fmt.Fprintln(s.out, "No source files are fully backed up; nothing to delete.")
		return nil, nil
	}

	if dryRun {
		for _, src := range candidates {
			fmt.Fprintf(s.out, "Dry run; would delete %s\n", src)
		}
		return candidates, nil
	}

	fmt.Fprintln(s.out, "These source files are present in both the staging dir and the bucket:")
	for _, src := range candidates {
		fmt.Fprintf(s.out, "  %s\n", filepath.Base(src))
	}
	ok, err := s.confirm(fmt.Sprintf("OK to delete the %d file(s) above from the source folder?", len(candidates)))
	if err != nil {
		return nil, fmt.Errorf("reading confirmation: %w", err)
	}
	if !ok {
		return nil, ErrUserAborted
	}

	deleted := make([]string, 0, len(candidates))
	for _, src := range candidates {
		if err := os.Remove(src); err != nil {
			return deleted, fmt.Errorf("deleting %s: %w", src, err)
		}
		s.logger.Info("deleted source file", "file", filepath.Base(src))
		deleted = append(deleted, src)
	}
	return deleted, nil
}

// cleanCandidates returns the source files safe to delete: catalogued in
// both staging and the bucket, with the staged copy byte-identical.
func (s *Service) cleanCandidates(req Request) ([]string, error) {
	var candidates []string
	for _, kind := range []Kind{KindImage, KindVideo} {
		t := req.Target
		t.Kind = kind
		ext := req.Extensions.ForKind(kind)

		files, err := DiscoverSource(req.SourceDir, t, ext)
		if err != nil {
			if isNoMatch(err) {
				continue
			}
			return nil, err
		}

		for _, src := range files {
			name := filepath.Base(src)
			rec, err := s.catalog.Get(name)
			if err != nil {
				return nil, err
			}
			if rec == nil || !rec.InStaging || !rec.InRemote {
				fmt.Fprintf(s.out, "Skipping %s; not present in both staging dir and bucket.\n", name)
				continue
			}

			stagingDir, err := s.stagingDirFor(req, name)
			if err != nil {
				return nil, err
			}
			staged := filepath.Join(stagingDir, name)
			same, err := sameContent(src, staged)
			if err != nil {
				return nil, err
			}
			if !same {
				return nil, fmt.Errorf("content mismatch between %s and %s; aborting clean", src, staged)
			}
			candidates = append(candidates, src)
		}
	}
	return candidates, nil
}

// Pull downloads objects under the target's device prefix that are missing
// from the local staging layout. Returns the local paths written (or, in a
// dry run, the paths that would be written).
func (s *Service) Pull(ctx context.Context, req Request, dryRun bool) ([]string, error) {
	if err := req.Target.Validate(); err != nil {
		return nil, err
	}

	remote, err := s.store.List(ctx, req.Target.Bucket, devicePrefix(req.Target))
	if err != nil {
		return nil, fmt.Errorf("listing bucket %s: %w", req.Target.Bucket, err)
	}

	keys := make([]string, 0, len(remote))
	for key := range remote {
		// Folder-marker keys end in a slash; real objects never do,
		// whatever their name.
		if strings.HasSuffix(key, "/") {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var pulled []string
	for _, key := range keys {
		dest := filepath.Join(req.StagingBase, req.Target.Bucket, filepath.FromSlash(key))
		if _, err := os.Stat(dest); err == nil {
			continue
		}
		if dryRun {
			fmt.Fprintf(s.out, "Dry run; would download %s to %s\n", key, dest)
			pulled = append(pulled, dest)
			continue
		}

		if err := EnsureDir(filepath.Dir(dest)); err != nil {
			return pulled, err
		}
		if err := s.downloadTo(ctx, req.Target.Bucket, key, dest); err != nil {
			return pulled, err
		}
		s.logger.Info("downloaded", "key", key, "dest", dest)
		pulled = append(pulled, dest)
	}
	return pulled, nil
}

func (s *Service) downloadTo(ctx context.Context, bucket, key, dest string) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer f.Close()

	if err := s.store.Download(ctx, bucket, key, f); err != nil {
		os.Remove(dest)
		return fmt.Errorf("downloading %s: %w", key, err)
	}
	return nil
}

// sameContent reports whether two files have identical bytes.
func sameContent(a, b string) (bool, error) {
	da, err := os.ReadFile(a)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", a, err)
	}
	db, err := os.ReadFile(b)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", b, err)
	}
	return bytes.Equal(da, db), nil
}
