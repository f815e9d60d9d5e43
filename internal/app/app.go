// Package app is the application layer between the CLI and the backup
// service. It constructs all dependencies from config and exposes one
// method per CLI command.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/billagee/dropbox-to-s3/internal/backup"
	"github.com/billagee/dropbox-to-s3/internal/catalog"
	"github.com/billagee/dropbox-to-s3/internal/config"
	"github.com/billagee/dropbox-to-s3/internal/notify"
	"github.com/billagee/dropbox-to-s3/internal/remote"
)

// App wires config, object store, catalog, notifier and service together.
// The caller must call Close when done.
type App struct {
	cfg      *config.Config
	store    backup.ObjectStore
	catalog  backup.Catalog
	notifier notify.Notifier
	service  *backup.Service
	runID    string
	logger   *slog.Logger
	logFile  *os.File
	out      io.Writer
}

// Options controls interactive behavior of a run.
type Options struct {
	// Yes answers every confirmation prompt affirmatively.
	Yes bool
	// In and Out are the prompt streams; they default to stdin/stdout.
	In  io.Reader
	Out io.Writer
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "workflow", "sync") and is
// recorded in every log line of the run.
func NewApp(ctx context.Context, cfg *config.Config, operation string, opts Options) (*App, error) {
	store, err := remote.NewS3Store(ctx, cfg.AWS.Profile, cfg.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("creating object store: %w", err)
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notify.SNSTopic != "" {
		n, err := notify.NewSNSNotifier(ctx, cfg.Notify.SNSTopic, cfg.Notify.Profile, cfg.Notify.Region)
		if err != nil {
			return nil, fmt.Errorf("creating notifier: %w", err)
		}
		notifier = n
	}

	return newApp(cfg, operation, store, notifier, opts)
}

// newApp finishes construction with the store and notifier already built,
// so tests can substitute in-memory implementations.
func newApp(cfg *config.Config, operation string, store backup.ObjectStore, notifier notify.Notifier, opts Options) (*App, error) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	runID := uuid.NewString()
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger = logger.With("operation", operation)

	cat, err := catalog.NewMemoryCatalog()
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating catalog: %w", err)
	}

	var confirm backup.ConfirmFunc
	if opts.Yes {
		confirm = AlwaysYes(opts.Out)
	} else {
		confirm = TerminalConfirm(opts.In, opts.Out)
	}

	adapted := &slogAdapter{l: logger}
	syncer := backup.NewSyncer(store, cfg.Sync.Exclude, adapted)
	svc := backup.NewService(store, syncer, cat, confirm, adapted, opts.Out)

	return &App{
		cfg:      cfg,
		store:    store,
		catalog:  cat,
		notifier: notifier,
		service:  svc,
		runID:    runID,
		logger:   logger,
		logFile:  logFile,
		out:      opts.Out,
	}, nil
}

// RunID returns the unique identifier of this invocation.
func (a *App) RunID() string { return a.runID }

// request assembles a service request from the config and the target tuple.
func (a *App) request(t backup.Target) backup.Request {
	return backup.Request{
		SourceDir:   a.cfg.SourceDir,
		StagingBase: a.cfg.StagingBase,
		Target:      t,
		Extensions: backup.Extensions{
			Image: a.cfg.Extensions.Image,
			Video: a.cfg.Extensions.Video,
		},
	}
}

// Workflow runs the full pipeline: stage source files, then sync the
// staging tree to the bucket. A configured notifier is told the outcome
// either way.
func (a *App) Workflow(ctx context.Context, t backup.Target) error {
	a.logger.Info("workflow started", "bucket", t.Bucket, "year", t.Year, "month", t.Month, "device", t.Device, "kind", t.Kind)

	res, err := a.service.Workflow(ctx, a.request(t))

	summary := notify.Summary{
		RunID:  a.runID,
		Bucket: t.Bucket,
		Target: fmt.Sprintf("%s-%s %s %s", t.Year, t.Month, t.Device, t.Kind),
		Err:    err,
	}
	if res != nil {
		summary.Moved = len(res.Moved)
		if res.Synced {
			summary.Uploaded = len(res.Plan)
		}
	}
	if nerr := a.notifier.NotifyWorkflowResult(summary); nerr != nil {
		a.logger.Warn("notification failed", "error", nerr)
	}

	if err != nil {
		a.logger.Error("workflow failed", "error", err)
		return err
	}
	a.logger.Info("workflow finished", "moved", summary.Moved, "uploaded", summary.Uploaded)
	return nil
}

// Mkdir creates the staging directory for the target and prints its path.
func (a *App) Mkdir(t backup.Target) error {
	dir, err := a.service.Mkdir(a.request(t))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, dir)
	return nil
}

// Move stages matching source files without syncing.
func (a *App) Move(t backup.Target) error {
	moved, err := a.service.Move(a.request(t))
	if err != nil {
		return err
	}
	a.logger.Info("files moved to staging", "count", len(moved))
	fmt.Fprintf(a.out, "Moved %d file(s) to staging.\n", len(moved))
	return nil
}

// Sync uploads the staging tree for the target's year to the bucket.
// With dryRun the plan is printed and nothing is transferred.
func (a *App) Sync(ctx context.Context, t backup.Target, dryRun bool) error {
	plan, err := a.service.SyncStaging(ctx, a.request(t), dryRun)
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Fprintf(a.out, "Dry run: %d file(s) would be uploaded.\n", len(plan))
		return nil
	}
	a.logger.Info("sync finished", "uploaded", len(plan))
	fmt.Fprintf(a.out, "Uploaded %d file(s).\n", len(plan))
	return nil
}

// Diff prints a presence report for the target. which selects the
// comparison: "local" lists source files not yet staged, "bucket" lists
// staged files not yet in the bucket.
func (a *App) Diff(ctx context.Context, t backup.Target, which string) error {
	records, err := a.service.CatalogRecords(ctx, a.request(t))
	if err != nil {
		return err
	}

	var missing []string
	switch which {
	case "local":
		for _, rec := range records {
			if rec.InSource && !rec.InStaging {
				missing = append(missing, rec.Name)
			}
		}
		a.printDiff(missing, "source files not yet staged")
	case "bucket":
		for _, rec := range records {
			if rec.InStaging && !rec.InRemote {
				missing = append(missing, rec.Name)
			}
		}
		a.printDiff(missing, "staged files not yet in bucket")
	default:
		return fmt.Errorf("unknown diff target %q (want local or bucket)", which)
	}
	return nil
}

func (a *App) printDiff(names []string, label string) {
	if len(names) == 0 {
		fmt.Fprintf(a.out, "No %s.\n", label)
		return
	}
	fmt.Fprintf(a.out, "%d %s:\n", len(names), label)
	for _, name := range names {
		fmt.Fprintf(a.out, "  %s\n", name)
	}
}

// List prints the files for the target in one location: "source",
// "staging" or "bucket" — or every catalogued file with its location
// flags when which is "catalog".
func (a *App) List(ctx context.Context, t backup.Target, which string) error {
	if which == "catalog" {
		return a.listCatalog(ctx, t)
	}

	var names []string
	var err error
	switch which {
	case "source":
		names, err = a.service.ListSource(a.request(t))
	case "staging":
		names, err = a.service.ListStaging(a.request(t))
	case "bucket":
		names, err = a.service.ListBucket(ctx, a.request(t))
	default:
		return fmt.Errorf("unknown listing %q (want source, staging, bucket or catalog)", which)
	}
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(a.out, name)
	}
	return nil
}

// listCatalog prints every catalogued filename with an indicator per
// location: S in source, W in the staging dir (working tree), B in the
// bucket.
func (a *App) listCatalog(ctx context.Context, t backup.Target) error {
	records, err := a.service.CatalogRecords(ctx, a.request(t))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No files found.")
		return nil
	}

	for _, rec := range records {
		ind := []byte("---")
		if rec.InSource {
			ind[0] = 'S'
		}
		if rec.InStaging {
			ind[1] = 'W'
		}
		if rec.InRemote {
			ind[2] = 'B'
		}
		fmt.Fprintf(a.out, "%s %s\n", ind, rec.Name)
	}
	return nil
}

// Clean deletes source files that are verified present in both staging
// and the bucket. With dryRun it only reports what would be removed.
func (a *App) Clean(ctx context.Context, t backup.Target, dryRun bool) error {
	removed, err := a.service.Clean(ctx, a.request(t), dryRun)
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Fprintf(a.out, "Dry run: %d file(s) would be removed from source.\n", len(removed))
		return nil
	}
	a.logger.Info("source files cleaned", "count", len(removed))
	fmt.Fprintf(a.out, "Removed %d file(s) from source.\n", len(removed))
	return nil
}

// Pull downloads objects under the target's remote prefix that are
// missing from the local staging tree.
func (a *App) Pull(ctx context.Context, t backup.Target, dryRun bool) error {
	pulled, err := a.service.Pull(ctx, a.request(t), dryRun)
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Fprintf(a.out, "Dry run: %d object(s) would be downloaded.\n", len(pulled))
		return nil
	}
	a.logger.Info("objects pulled", "count", len(pulled))
	fmt.Fprintf(a.out, "Downloaded %d object(s).\n", len(pulled))
	return nil
}

// DetectYearMonths scans the source folder for the year/month groups
// present, for prompting when --month is omitted.
func (a *App) DetectYearMonths() ([]backup.YearMonth, error) {
	return backup.DetectYearMonths(a.cfg.SourceDir)
}

// Close releases the catalog and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.catalog.Close(); err != nil {
		firstErr = fmt.Errorf("closing catalog: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
