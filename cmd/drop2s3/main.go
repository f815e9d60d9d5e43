package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/billagee/dropbox-to-s3/internal/app"
	"github.com/billagee/dropbox-to-s3/internal/backup"
	"github.com/billagee/dropbox-to-s3/internal/config"
)

// Exit codes, distinguishable for cron and scripting:
// 2 means "nothing to do", 3 means the user declined a prompt.
const (
	exitOK      = 0
	exitErr     = 1
	exitNoFiles = 2
	exitAborted = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		switch {
		case errors.Is(err, backup.ErrNoMatchingFiles):
			return exitNoFiles
		case errors.Is(err, backup.ErrUserAborted):
			return exitAborted
		}
		return exitErr
	}
	return exitOK
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "workflow", "sync").
func newApp(cmd *cobra.Command, operation string) (*app.App, *config.Config, error) {
	defaults, err := app.LoadDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	yes, _ := cmd.Flags().GetBool("yes")
	a, err := app.NewApp(cmd.Context(), cfg, operation, app.Options{Yes: yes})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, cfg, nil
}

// ensurePromptable rejects prompting commands when there is nobody to
// answer. Dry runs never prompt and are always fine.
func ensurePromptable(cmd *cobra.Command, dryRun bool) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if dryRun || yes || app.StdinIsTerminal() {
		return nil
	}
	return fmt.Errorf("stdin is not a terminal; pass --yes to skip confirmation prompts")
}

// targetFromFlags assembles the target tuple from the persistent flags and
// the config. When --month (or --year) is omitted, the source folder is
// scanned and the user picks from the year/month groups found there.
func targetFromFlags(cmd *cobra.Command, a *app.App, cfg *config.Config) (backup.Target, error) {
	var t backup.Target
	t.Bucket, _ = cmd.Flags().GetString("bucket-name")
	t.Device, _ = cmd.Flags().GetString("device")
	t.Year, _ = cmd.Flags().GetString("year")
	t.Month, _ = cmd.Flags().GetString("month")

	if t.Device == "" {
		t.Device = cfg.Device
	}

	rawKind, _ := cmd.Flags().GetString("kind")
	kind, err := backup.ParseKind(rawKind)
	if err != nil {
		return t, err
	}
	t.Kind = kind

	if t.Year == "" || t.Month == "" {
		ym, err := detectYearMonth(cmd, a, t.Year)
		if err != nil {
			return t, err
		}
		t.Year, t.Month = ym.Year, ym.Month
	}

	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// detectYearMonth scans the source folder and resolves the missing year
// and month, prompting when more than one group matches.
func detectYearMonth(cmd *cobra.Command, a *app.App, year string) (backup.YearMonth, error) {
	all, err := a.DetectYearMonths()
	if err != nil {
		return backup.YearMonth{}, fmt.Errorf("scanning source folder: %w", err)
	}

	choices := all
	if year != "" {
		choices = nil
		for _, ym := range all {
			if ym.Year == year {
				choices = append(choices, ym)
			}
		}
	}
	if len(choices) == 0 {
		return backup.YearMonth{}, fmt.Errorf("%w: no dated files in source folder", backup.ErrNoMatchingFiles)
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if len(choices) > 1 && (yes || !app.StdinIsTerminal()) {
		return backup.YearMonth{}, fmt.Errorf("multiple year/month groups in source folder; pass --year and --month")
	}
	return app.SelectYearMonth(os.Stdin, os.Stdout, choices)
}

var rootCmd = &cobra.Command{
	Use:          "drop2s3",
	Short:        "Back up camera uploads to S3 via a local staging tree",
	SilenceUsage: true,
}

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Move matching source files to staging, then sync staging to the bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensurePromptable(cmd, false); err != nil {
			return err
		}
		a, cfg, err := newApp(cmd, "workflow")
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := targetFromFlags(cmd, a, cfg)
		if err != nil {
			return err
		}
		return a.Workflow(cmd.Context(), t)
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir",
	Short: "Create the staging directory for the target",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := newApp(cmd, "mkdir")
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := targetFromFlags(cmd, a, cfg)
		if err != nil {
			return err
		}
		return a.Mkdir(t)
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv",
	Short: "Move matching source files into the staging directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensurePromptable(cmd, false); err != nil {
			return err
		}
		a, cfg, err := newApp(cmd, "mv")
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := targetFromFlags(cmd, a, cfg)
		if err != nil {
			return err
		}
		return a.Move(t)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload staged files missing from the bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dryrun")
		if err := ensurePromptable(cmd, dryRun); err != nil {
			return err
		}
		a, cfg, err := newApp(cmd, "sync")
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := targetFromFlags(cmd, a, cfg)
		if err != nil {
			return err
		}
		return a.Sync(cmd.Context(), t, dryRun)
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff {local|bucket}",
	Short: "Report files present in one location but not the next",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := newApp(cmd, "diff")
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := targetFromFlags(cmd, a, cfg)
		if err != nil {
			return err
		}
		return a.Diff(cmd.Context(), t, args[0])
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls {source|staging|bucket|catalog}",
	Short: "List the target's files in one location, or the full catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := newApp(cmd, "ls")
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := targetFromFlags(cmd, a, cfg)
		if err != nil {
			return err
		}
		return a.List(cmd.Context(), t, args[0])
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete source files verified present in both staging and the bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dryrun")
		if err := ensurePromptable(cmd, dryRun); err != nil {
			return err
		}
		a, cfg, err := newApp(cmd, "clean")
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := targetFromFlags(cmd, a, cfg)
		if err != nil {
			return err
		}
		return a.Clean(cmd.Context(), t, dryRun)
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download bucket objects missing from the local staging tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dryrun")
		a, cfg, err := newApp(cmd, "pull")
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := targetFromFlags(cmd, a, cfg)
		if err != nil {
			return err
		}
		return a.Pull(cmd.Context(), t, dryRun)
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.LoadDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}

		cfg := config.NewConfig(homeDir, defaults.LogDir)
		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Source Dir:   %s\n", cfg.SourceDir)
		fmt.Printf("Staging Base: %s\n", cfg.StagingBase)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.LoadDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Printf("Source Dir:   %s\n", cfg.SourceDir)
		fmt.Printf("Staging Base: %s\n", cfg.StagingBase)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Device:       %s\n", cfg.Device)
		fmt.Printf("Extensions:   image=%s video=%s\n", cfg.Extensions.Image, cfg.Extensions.Video)
		if cfg.AWS.Profile != "" || cfg.AWS.Region != "" {
			fmt.Printf("AWS:          profile=%s region=%s\n", cfg.AWS.Profile, cfg.AWS.Region)
		}
		if cfg.Notify.SNSTopic != "" {
			fmt.Printf("SNS Topic:    %s\n", cfg.Notify.SNSTopic)
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("bucket-name", "", "Destination S3 bucket (required)")
	pf.String("device", "", "Device name, e.g. iPhone6s (defaults to config)")
	pf.String("year", "", "Four-digit year, e.g. 2016 (detected from source when omitted)")
	pf.String("month", "", "Two-digit month, e.g. 08 (detected from source when omitted)")
	pf.String("kind", "image", "Media kind: image or video")
	pf.BoolP("yes", "y", false, "Answer yes to all confirmation prompts")

	syncCmd.Flags().Bool("dryrun", false, "Show the transfer plan without uploading")
	cleanCmd.Flags().Bool("dryrun", false, "Show what would be removed without deleting")
	pullCmd.Flags().Bool("dryrun", false, "Show what would be downloaded without transferring")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(workflowCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(configCmd)
}
