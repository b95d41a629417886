package classify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/tidy/pkg/tidy/fingerprint"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree writes the given name->content files under a temp root and
// returns records in name order.
func writeTree(t *testing.T, files map[string]string, order []string) []types.FileRecord {
	t.Helper()
	root := t.TempDir()

	records := make([]types.FileRecord, 0, len(order))
	for _, name := range order {
		content := files[name]
		path := filepath.Join(root, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		records = append(records, types.FileRecord{Path: path, Size: int64(len(content))})
	}
	return records
}

func TestRunFirstWriteWins(t *testing.T) {
	records := writeTree(t,
		map[string]string{"f1": "hello", "f2": "hello", "f3": "world!!"},
		[]string{"f1", "f2", "f3"})

	result := Run(context.Background(), records, fingerprint.XXHash, Options{Workers: 4})

	assert.Equal(t, 2, result.Index.Len())
	require.Len(t, result.Duplicates, 1)

	// The representative for the shared checksum is the first file
	// enumerated; f2 is the duplicate.
	assert.Equal(t, records[1].Path, result.Duplicates[0].Path)

	entry, ok := result.Index.Lookup(result.Duplicates[0].Sum)
	require.True(t, ok)
	assert.Equal(t, records[0].Path, entry.Path)
	assert.Equal(t, int64(5), entry.Size)
}

func TestRunStats(t *testing.T) {
	records := writeTree(t,
		map[string]string{"f1": "hello", "f2": "hello", "f3": "world!!"},
		[]string{"f1", "f2", "f3"})

	result := Run(context.Background(), records, fingerprint.XXHash, Options{Workers: 2})

	assert.Equal(t, 3, result.Stats.FilesFound)
	assert.Equal(t, int64(17), result.Stats.TotalBytes)
	assert.Equal(t, 2, result.Stats.Unique)
	assert.Equal(t, int64(12), result.Stats.UniqueBytes)
	assert.Equal(t, 1, result.Stats.Duplicates)
	assert.Equal(t, int64(5), result.Stats.DuplicateBytes)
	assert.Equal(t, 0, result.Stats.Skipped)
}

func TestRunIdempotent(t *testing.T) {
	records := writeTree(t,
		map[string]string{"a": "one", "b": "two", "c": "one", "d": "three"},
		[]string{"a", "b", "c", "d"})

	first := Run(context.Background(), records, fingerprint.XXHash, Options{Workers: 4})
	second := Run(context.Background(), records, fingerprint.XXHash, Options{Workers: 4})

	assert.Equal(t, first.Index.Entries(), second.Index.Entries())
	assert.Equal(t, first.Duplicates, second.Duplicates)
	assert.Equal(t, first.Stats, second.Stats)
}

func TestRunSkipsFingerprintFailures(t *testing.T) {
	records := []types.FileRecord{
		{Path: "/x/good", Size: 3},
		{Path: "/x/bad", Size: 3},
	}

	fn := func(path string) (types.Fingerprint, error) {
		if path == "/x/bad" {
			return types.Fingerprint{}, errors.New("tool unavailable")
		}
		return types.Fingerprint{Sum: 11, Size: 3}, nil
	}

	result := Run(context.Background(), records, fn, Options{Workers: 2})

	assert.Equal(t, 1, result.Stats.Skipped)
	assert.Equal(t, 1, result.Index.Len())
	assert.Empty(t, result.Duplicates)
}

func TestRunCollisionStillClassifiedAsDuplicate(t *testing.T) {
	// Same checksum, different sizes: the scan phase records a
	// duplicate without disambiguating; the prune phase's size check
	// is what prevents deletion.
	records := []types.FileRecord{
		{Path: "/x/a", Size: 5},
		{Path: "/x/b", Size: 7},
	}

	fn := func(path string) (types.Fingerprint, error) {
		if path == "/x/a" {
			return types.Fingerprint{Sum: 99, Size: 5}, nil
		}
		return types.Fingerprint{Sum: 99, Size: 7}, nil
	}

	result := Run(context.Background(), records, fn, Options{Workers: 1})

	assert.Equal(t, 1, result.Index.Len())
	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, "/x/b", result.Duplicates[0].Path)
	assert.Equal(t, int64(7), result.Duplicates[0].Size)

	entry, _ := result.Index.Lookup(99)
	assert.Equal(t, int64(5), entry.Size)
}

func TestRunOnFileOrder(t *testing.T) {
	records := writeTree(t,
		map[string]string{"f1": "same", "f2": "same", "f3": "other"},
		[]string{"f1", "f2", "f3"})

	var seen []string
	var dups []bool
	result := Run(context.Background(), records, fingerprint.XXHash, Options{
		Workers: 4,
		OnFile: func(rec types.FileRecord, fp types.Fingerprint, duplicate bool) {
			seen = append(seen, filepath.Base(rec.Path))
			dups = append(dups, duplicate)
		},
	})

	require.NotNil(t, result)
	assert.Equal(t, []string{"f1", "f2", "f3"}, seen)
	assert.Equal(t, []bool{false, true, false}, dups)
}

func TestRunEmptyInput(t *testing.T) {
	result := Run(context.Background(), nil, fingerprint.XXHash, Options{})

	assert.Equal(t, 0, result.Index.Len())
	assert.Empty(t, result.Duplicates)
	assert.Equal(t, types.ScanStats{}, result.Stats)
}

func TestRunCancelledContextKeepsPartialResultValid(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := writeTree(t,
		map[string]string{"f1": "hello"},
		[]string{"f1"})

	result := Run(ctx, records, fingerprint.XXHash, Options{Workers: 1})

	// With the context already cancelled, anything from zero to all
	// files may have been fingerprinted; the invariants still hold.
	assert.LessOrEqual(t, result.Index.Len(), 1)
	assert.Equal(t, 1, result.Stats.FilesFound)
}

func TestRunManyDuplicatesOneRepresentative(t *testing.T) {
	files := map[string]string{}
	order := []string{}
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("copy%02d", i)
		files[name] = "identical content"
		order = append(order, name)
	}
	records := writeTree(t, files, order)

	result := Run(context.Background(), records, fingerprint.XXHash, Options{Workers: 4})

	assert.Equal(t, 1, result.Index.Len())
	assert.Len(t, result.Duplicates, 9)

	entry, _ := result.Index.Lookup(result.Duplicates[0].Sum)
	assert.Equal(t, records[0].Path, entry.Path)
}
