// Package types provides core data types for the tidy duplicate pruner.
// It includes structures for enumerated files, content fingerprints,
// index entries, and per-phase statistics, along with size formatting
// helpers shared by all components.
package types

import (
	"github.com/dustin/go-humanize"
)

// FileRecord is a single file yielded by the enumerator.
// Records are transient: they are produced by a walk and consumed
// immediately by the classifier or pruner, never persisted.
type FileRecord struct {
	// Path is the absolute path to the file.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`
}

// Fingerprint identifies a file's contents.
//
// Sum is a fast non-cryptographic digest and carries a meaningful
// collision probability at scale. Size is always kept alongside it as
// the second verification factor: no component treats a Sum match
// alone as proof of identical content.
type Fingerprint struct {
	// Sum is the content checksum.
	Sum uint64 `json:"sum"`

	// Size is the number of bytes that produced Sum.
	Size int64 `json:"size"`
}

// IndexEntry is the value stored in the checksum index for one checksum.
// It records the first file seen with that checksum (the representative)
// and its size.
type IndexEntry struct {
	// Size is the representative's size in bytes.
	Size int64 `json:"size"`

	// Path is the representative's path at scan time.
	Path string `json:"path"`
}

// DuplicateRecord describes a file whose checksum was already present
// in the index when it was classified. Duplicates are reported only;
// they never drive deletion during a scan.
type DuplicateRecord struct {
	Sum  uint64 `json:"sum"`
	Size int64  `json:"size"`
	Path string `json:"path"`
}

// ScanStats aggregates the results of a classification pass.
type ScanStats struct {
	// FilesFound is the number of regular files enumerated.
	FilesFound int `json:"files_found"`

	// TotalBytes is the combined size of all enumerated files.
	TotalBytes int64 `json:"total_bytes"`

	// Unique is the number of index representatives.
	Unique int `json:"unique"`

	// UniqueBytes is the combined size of all representatives.
	UniqueBytes int64 `json:"unique_bytes"`

	// Duplicates is the number of files classified as duplicates.
	Duplicates int `json:"duplicates"`

	// DuplicateBytes is the combined size of all duplicates.
	DuplicateBytes int64 `json:"duplicate_bytes"`

	// Skipped is the number of files whose fingerprint failed.
	Skipped int `json:"skipped"`
}

// PruneStats aggregates the results of a prune pass. The same counters
// are used for dry and real runs so the two are directly comparable.
type PruneStats struct {
	// FilesFound is the number of regular files enumerated under the target.
	FilesFound int `json:"files_found"`

	// TotalBytes is the combined size of all enumerated files.
	TotalBytes int64 `json:"total_bytes"`

	// Pruned is the number of files deleted (or, in a dry run, that
	// would have been deleted).
	Pruned int `json:"pruned"`

	// PrunedBytes is the combined size of pruned files.
	PrunedBytes int64 `json:"pruned_bytes"`

	// Collisions is the number of files whose checksum matched an index
	// entry but whose size did not. These are never deleted.
	Collisions int `json:"collisions"`

	// Skipped is the number of files passed over for a per-file
	// failure: the fingerprint failed, or the delete itself did.
	Skipped int `json:"skipped"`

	// DryRun records which mode produced these counters.
	DryRun bool `json:"dry_run"`

	// Aborted is true when a confirmation prompt was declined before
	// any file was touched.
	Aborted bool `json:"aborted"`
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units (KiB, MiB, GiB).
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
