// Package classify builds a checksum index from enumerated files and
// records duplicates.
//
// Fingerprinting fans out across a bounded worker pool; classification
// itself is sequential in enumeration order, so index insertion is the
// sole synchronization point and the representative for a checksum is
// always the first file the enumerator yielded with it.
package classify

import (
	"context"
	"sync"

	"github.com/jamesainslie/tidy/pkg/tidy/fingerprint"
	"github.com/jamesainslie/tidy/pkg/tidy/index"
	"github.com/jamesainslie/tidy/pkg/tidy/logging"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

// Options configures a classification pass.
type Options struct {
	// Workers is the number of concurrent fingerprint workers.
	// Values below 1 are treated as 1.
	Workers int

	// OnFile, if set, is called for every successfully fingerprinted
	// file with its classification. Calls happen sequentially in
	// enumeration order.
	OnFile func(rec types.FileRecord, fp types.Fingerprint, duplicate bool)
}

// Result is the outcome of a classification pass.
type Result struct {
	// Index holds one representative per checksum.
	Index *index.Index

	// Duplicates lists every file after the first sharing a checksum,
	// in enumeration order. Informational only.
	Duplicates []types.DuplicateRecord

	// Stats aggregates counts and byte totals for the pass.
	Stats types.ScanStats
}

// Run fingerprints every file and classifies it against the index.
//
// The first file seen with a checksum becomes that checksum's
// representative; later files with the same checksum are recorded as
// duplicates and never replace it. Files whose fingerprint fails are
// logged and skipped. Two files sharing a checksum but differing in
// size are still classified as duplicates here: disambiguating a
// collision is the prune phase's job.
//
// Cancelling ctx stops fingerprinting early; everything classified so
// far is returned and remains valid.
func Run(ctx context.Context, files []types.FileRecord, fn fingerprint.Func, opts Options) *Result {
	result := &Result{
		Index:      index.New(),
		Duplicates: make([]types.DuplicateRecord, 0),
	}

	result.Stats.FilesFound = len(files)
	for _, f := range files {
		result.Stats.TotalBytes += f.Size
	}

	prints, skipped := fingerprintAll(ctx, files, fn, opts.Workers)
	result.Stats.Skipped = skipped

	// Classification is sequential in enumeration order so that the
	// first-write-wins invariant is deterministic for a fixed walk.
	for _, rec := range files {
		fp, ok := prints[rec.Path]
		if !ok {
			continue
		}

		if result.Index.Add(fp.Sum, types.IndexEntry{Size: fp.Size, Path: rec.Path}) {
			result.Stats.Unique++
			result.Stats.UniqueBytes += fp.Size
			if opts.OnFile != nil {
				opts.OnFile(rec, fp, false)
			}
			continue
		}

		result.Duplicates = append(result.Duplicates, types.DuplicateRecord{
			Sum:  fp.Sum,
			Size: fp.Size,
			Path: rec.Path,
		})
		result.Stats.Duplicates++
		result.Stats.DuplicateBytes += fp.Size
		if opts.OnFile != nil {
			opts.OnFile(rec, fp, true)
		}
	}

	return result
}

type printJob struct {
	rec types.FileRecord
}

type printResult struct {
	path string
	fp   types.Fingerprint
	err  error
}

// fingerprintAll computes fingerprints for all files using a bounded
// worker pool. It returns the successful fingerprints keyed by path and
// the number of files skipped due to fingerprint failures.
func fingerprintAll(ctx context.Context, files []types.FileRecord, fn fingerprint.Func, workers int) (map[string]types.Fingerprint, int) {
	logger := logging.Get("scan")

	if workers < 1 {
		workers = 1
	}

	prints := make(map[string]types.Fingerprint, len(files))
	if len(files) == 0 {
		return prints, 0
	}

	jobs := make(chan printJob)
	results := make(chan printResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				fp, err := fn(job.rec.Path)
				results <- printResult{path: job.rec.Path, fp: fp, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, rec := range files {
			select {
			case jobs <- printJob{rec: rec}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	skipped := 0
	for res := range results {
		if res.err != nil {
			logger.Warn("no checksum, skipping", "path", res.path, "error", res.err)
			skipped++
			continue
		}
		prints[res.path] = res.fp
	}

	return prints, skipped
}
