// Package prune deletes files under a target tree whose contents are
// already represented in a checksum index.
//
// Deletion is gated two ways. First, a non-dry run requires two
// sequential affirmative confirmations before the target is even
// enumerated; declining either aborts with zero side effects. Second,
// every candidate must match an index entry on BOTH checksum and size:
// the checksum is a narrow non-cryptographic digest, so a checksum
// match with a differing size is treated as a collision and the file is
// left untouched.
package prune

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jamesainslie/tidy/pkg/tidy/fingerprint"
	"github.com/jamesainslie/tidy/pkg/tidy/index"
	"github.com/jamesainslie/tidy/pkg/tidy/logging"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
	"github.com/jamesainslie/tidy/pkg/tidy/walker"
)

// ConfirmFunc answers an interactive yes/no prompt. Injecting it keeps
// the executor testable without a terminal: tests supply a fixed
// answer sequence.
type ConfirmFunc func(prompt string) bool

// ErrNoConfirmer is returned when a non-dry run is attempted without a
// confirmation capability.
var ErrNoConfirmer = errors.New("prune: non-dry run requires a confirmer")

// Action classifies what the executor did with one file.
type Action string

// Actions reported through Options.OnFile.
const (
	// ActionDeleted means the file matched checksum and size and was removed.
	ActionDeleted Action = "DELETED"

	// ActionWouldDelete is the dry-run equivalent of ActionDeleted.
	ActionWouldDelete Action = "WOULD DELETE"

	// ActionCollision means the checksum matched but the size did not.
	// The file is never deleted.
	ActionCollision Action = "SIZES DO NOT MATCH, NOT DELETED"

	// ActionKept means the checksum is not in the index.
	ActionKept Action = "KEPT"
)

// Options configures a prune pass.
type Options struct {
	// DryRun computes and reports deletions without performing them or
	// asking for confirmation.
	DryRun bool

	// Workers is the number of concurrent fingerprint workers.
	Workers int

	// Exclude contains patterns for paths to skip during enumeration.
	Exclude []string

	// Confirm answers the two confirmation prompts. Required unless
	// DryRun is set.
	Confirm ConfirmFunc

	// OnEnumerated, if set, is called once after the target tree has
	// been walked, before any matching starts.
	OnEnumerated func(files int, totalBytes int64)

	// OnFile, if set, is called for every successfully fingerprinted
	// file with the action taken. Calls are sequential.
	OnFile func(rec types.FileRecord, fp types.Fingerprint, action Action)
}

// Run prunes every file under root that is a confirmed duplicate of an
// index entry.
//
// A file is deleted iff its checksum is a key in idx AND its size
// equals the entry's stored size. Fingerprint failures are logged and
// skipped. Cancelling ctx stops the pass early; deletions performed so
// far are final and require no rollback.
func Run(ctx context.Context, root string, idx *index.Index, fn fingerprint.Func, opts Options) (types.PruneStats, error) {
	stats := types.PruneStats{DryRun: opts.DryRun}

	// Make sure this is really what we want.
	if !opts.DryRun {
		if opts.Confirm == nil {
			return stats, ErrNoConfirmer
		}
		if !opts.Confirm(fmt.Sprintf("Continue pruning files in %s", root)) {
			stats.Aborted = true
			return stats, nil
		}
		if !opts.Confirm("This will irrevocably delete files. Are you sure") {
			stats.Aborted = true
			return stats, nil
		}
	}

	walkResult, err := walker.Walk(ctx, root, opts.Exclude)
	if err != nil {
		return stats, err
	}

	stats.FilesFound = len(walkResult.Files)
	stats.TotalBytes = walkResult.TotalBytes()
	if opts.OnEnumerated != nil {
		opts.OnEnumerated(stats.FilesFound, stats.TotalBytes)
	}

	e := &executor{
		idx:    idx,
		opts:   opts,
		stats:  &stats,
		logger: logging.Get("prune"),
	}
	e.matchAll(ctx, walkResult.Files, fn)

	return stats, nil
}

type executor struct {
	idx    *index.Index
	opts   Options
	stats  *types.PruneStats
	logger *log.Logger
}

type matchJob struct {
	rec types.FileRecord
}

type matchResult struct {
	rec types.FileRecord
	fp  types.Fingerprint
	err error
}

// matchAll fingerprints files concurrently and applies the match and
// delete logic in a single collector loop, so the delete decision has
// one writer regardless of worker count.
func (e *executor) matchAll(ctx context.Context, files []types.FileRecord, fn fingerprint.Func) {
	workers := e.opts.Workers
	if workers < 1 {
		workers = 1
	}

	if len(files) == 0 {
		return
	}

	jobs := make(chan matchJob)
	results := make(chan matchResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				fp, err := fn(job.rec.Path)
				results <- matchResult{rec: job.rec, fp: fp, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, rec := range files {
			select {
			case jobs <- matchJob{rec: rec}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.err != nil {
			e.logger.Warn("no checksum, skipping", "path", res.rec.Path, "error", res.err)
			e.stats.Skipped++
			continue
		}
		e.match(res.rec, res.fp)
	}
}

// match applies the two-factor check to one fingerprinted file and
// deletes it when both factors agree.
func (e *executor) match(rec types.FileRecord, fp types.Fingerprint) {
	entry, ok := e.idx.Lookup(fp.Sum)
	if !ok {
		e.report(rec, fp, ActionKept)
		return
	}

	if entry.Size != fp.Size {
		// Checksum matched but size did not: a collision, not a
		// duplicate. Never deleted.
		e.logger.Warn("checksum collision, not deleted",
			"path", rec.Path, "size", fp.Size, "index_size", entry.Size)
		e.stats.Collisions++
		e.report(rec, fp, ActionCollision)
		return
	}

	if e.opts.DryRun {
		e.stats.Pruned++
		e.stats.PrunedBytes += fp.Size
		e.report(rec, fp, ActionWouldDelete)
		return
	}

	if err := os.Remove(rec.Path); err != nil {
		if os.IsNotExist(err) {
			// Already gone; nothing to count.
			return
		}
		e.logger.Error("failed to delete", "path", rec.Path, "error", err)
		e.stats.Skipped++
		return
	}

	e.stats.Pruned++
	e.stats.PrunedBytes += fp.Size
	e.report(rec, fp, ActionDeleted)
}

func (e *executor) report(rec types.FileRecord, fp types.Fingerprint, action Action) {
	if e.opts.OnFile != nil {
		e.opts.OnFile(rec, fp, action)
	}
}
