package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jamesainslie/tidy/pkg/tidy/classify"
	"github.com/jamesainslie/tidy/pkg/tidy/config"
	"github.com/jamesainslie/tidy/pkg/tidy/fingerprint"
	"github.com/jamesainslie/tidy/pkg/tidy/index"
	"github.com/jamesainslie/tidy/pkg/tidy/logging"
	"github.com/jamesainslie/tidy/pkg/tidy/prune"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
	"github.com/jamesainslie/tidy/pkg/tidy/walker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errNothingToDo is returned when neither a scan path nor an index file
// plus prune path were supplied.
var errNothingToDo = errors.New("nothing useful to do: need --scan, or --file and --prune")

// options carries the resolved invocation settings.
type options struct {
	ScanDir   string
	PruneDir  string
	IndexPath string
	DryRun    bool
	Verbose   bool
	Workers   int
	Exclude   []string
}

// optionsFromViper resolves flag and config values into options.
func optionsFromViper() options {
	workers := viper.GetInt("workers")
	if workers < 1 {
		workers = config.DefaultWorkers
	}

	return options{
		ScanDir:   viper.GetString("scan"),
		PruneDir:  viper.GetString("prune"),
		IndexPath: viper.GetString("file"),
		DryRun:    viper.GetBool("dry_run"),
		Verbose:   viper.GetBool("verbose"),
		Workers:   workers,
		Exclude:   viper.GetStringSlice("exclude"),
	}
}

// validate rejects invocations with nothing actionable, before any
// filesystem traversal.
func (o options) validate() error {
	if o.ScanDir == "" && (o.PruneDir == "" || o.IndexPath == "") {
		return errNothingToDo
	}
	return nil
}

// runTidy is the root command handler: scan phase, optional index
// persistence, then optional prune phase.
func runTidy(_ *cobra.Command, _ []string) error {
	opts := optionsFromViper()
	if err := opts.validate(); err != nil {
		return err
	}

	if err := logging.Init(viper.GetString("log_level")); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var idx *index.Index

	if opts.ScanDir != "" {
		var err error
		idx, err = runScanPhase(ctx, opts)
		if err != nil {
			return err
		}

		if opts.IndexPath != "" {
			if err := writeIndex(idx, opts.IndexPath, confirmStdin); err != nil {
				return err
			}
		}
	} else {
		var err error
		idx, err = loadIndex(opts.IndexPath)
		if err != nil {
			return err
		}
		printInfo("Read %d checksums from %s.", idx.Len(), opts.IndexPath)
	}

	if opts.PruneDir != "" {
		if err := runPrunePhase(ctx, idx, opts); err != nil {
			return err
		}
	}

	return nil
}

// runScanPhase enumerates and classifies the scan directory.
func runScanPhase(ctx context.Context, opts options) (*index.Index, error) {
	absDir, err := resolveDir(opts.ScanDir)
	if err != nil {
		return nil, err
	}

	walkResult, err := walker.Walk(ctx, absDir, opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	printInfo("Found %d files in %q (%s).",
		len(walkResult.Files), absDir, types.FormatSize(walkResult.TotalBytes()))

	result := classify.Run(ctx, walkResult.Files, fingerprint.XXHash, classify.Options{
		Workers: opts.Workers,
		OnFile:  scanTrace(opts.Verbose),
	})

	printInfo("Found %d unique files (%s) and %d duplicates (%s).",
		result.Stats.Unique, types.FormatSize(result.Stats.UniqueBytes),
		result.Stats.Duplicates, types.FormatSize(result.Stats.DuplicateBytes))

	return result.Index, nil
}

// scanTrace returns the per-file trace callback for verbose scans.
func scanTrace(verbose bool) func(types.FileRecord, types.Fingerprint, bool) {
	if !verbose {
		return nil
	}
	return func(rec types.FileRecord, fp types.Fingerprint, duplicate bool) {
		if duplicate {
			printInfo("%s (%s) -> %x (DUPLICATE)", rec.Path, types.FormatSize(rec.Size), fp.Sum)
			return
		}
		printInfo("%s (%s) -> %x", rec.Path, types.FormatSize(rec.Size), fp.Sum)
	}
}

// writeIndex persists the index, asking confirm before overwriting an
// existing store. Declining the overwrite skips the write, leaving the
// store as it was; it is not an error.
func writeIndex(idx *index.Index, path string, confirm prune.ConfirmFunc) error {
	if index.Exists(path) {
		if !confirm(fmt.Sprintf("%s exists -- overwrite", path)) {
			return nil
		}
	}

	store, err := index.OpenStore(path)
	if err != nil {
		return fmt.Errorf("open index %s: %w", path, err)
	}
	defer store.Close()

	printInfo("Writing %d checksums to %s.", idx.Len(), path)
	if err := store.WriteAll(idx); err != nil {
		return fmt.Errorf("write index %s: %w", path, err)
	}

	return nil
}

// loadIndex reads a previously written index store.
func loadIndex(path string) (*index.Index, error) {
	if !index.Exists(path) {
		return nil, fmt.Errorf("index not found: %s", path)
	}

	store, err := index.OpenStore(path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	defer store.Close()

	return store.LoadAll()
}

// runPrunePhase deletes confirmed duplicates under the prune directory.
func runPrunePhase(ctx context.Context, idx *index.Index, opts options) error {
	absDir, err := resolveDir(opts.PruneDir)
	if err != nil {
		return err
	}

	stats, err := prune.Run(ctx, absDir, idx, fingerprint.XXHash, prune.Options{
		DryRun:  opts.DryRun,
		Workers: opts.Workers,
		Exclude: opts.Exclude,
		Confirm: confirmStdin,
		OnEnumerated: func(files int, totalBytes int64) {
			printInfo("Found %d files in %q (%s).", files, absDir, types.FormatSize(totalBytes))
		},
		OnFile: pruneTrace(opts.Verbose),
	})
	if err != nil {
		return err
	}

	if stats.Aborted {
		printInfo("Prune aborted.")
		return nil
	}

	if stats.DryRun {
		printInfo("Found %d files to prune (%s).", stats.Pruned, types.FormatSize(stats.PrunedBytes))
	} else {
		printInfo("Deleted %d files (%s).", stats.Pruned, types.FormatSize(stats.PrunedBytes))
	}

	return nil
}

// pruneTrace returns the per-file trace callback for verbose prunes.
func pruneTrace(verbose bool) func(types.FileRecord, types.Fingerprint, prune.Action) {
	if !verbose {
		return nil
	}
	return func(rec types.FileRecord, fp types.Fingerprint, action prune.Action) {
		if action == prune.ActionKept {
			printInfo("%s (%s) -> %x", rec.Path, types.FormatSize(rec.Size), fp.Sum)
			return
		}
		printInfo("%s (%s) -> %x (%s)", rec.Path, types.FormatSize(rec.Size), fp.Sum, action)
	}
}

// resolveDir expands ~ and resolves a directory argument to an
// absolute path, verifying it exists.
func resolveDir(path string) (string, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path: %w", err)
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("path does not exist: %s", abs)
		}
		return "", fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", abs)
	}

	return abs, nil
}
