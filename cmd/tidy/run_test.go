package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/tidy/pkg/tidy/index"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    options
		wantErr bool
	}{
		{
			name:    "nothing supplied",
			opts:    options{},
			wantErr: true,
		},
		{
			name:    "scan only",
			opts:    options{ScanDir: "/photos"},
			wantErr: false,
		},
		{
			name:    "scan with index file",
			opts:    options{ScanDir: "/photos", IndexPath: "idx"},
			wantErr: false,
		},
		{
			name:    "prune with index file",
			opts:    options{PruneDir: "/backup", IndexPath: "idx"},
			wantErr: false,
		},
		{
			name:    "prune without index file",
			opts:    options{PruneDir: "/backup"},
			wantErr: true,
		},
		{
			name:    "index file without prune or scan",
			opts:    options{IndexPath: "idx"},
			wantErr: true,
		},
		{
			name:    "combined scan and prune",
			opts:    options{ScanDir: "/photos", PruneDir: "/backup", IndexPath: "idx"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.wantErr {
				if !errors.Is(err, errNothingToDo) {
					t.Errorf("expected errNothingToDo, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// loadStore reads the full mapping back from a store on disk.
func loadStore(t *testing.T, path string) *index.Index {
	t.Helper()

	store, err := index.OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer store.Close()

	loaded, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	return loaded
}

func TestWriteIndexNewPathAsksNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	idx := index.New()
	idx.Add(1, types.IndexEntry{Size: 5, Path: "/a"})

	err := writeIndex(idx, path, func(string) bool {
		t.Error("confirmation asked for a fresh path")
		return false
	})
	if err != nil {
		t.Fatalf("writeIndex failed: %v", err)
	}

	if got := loadStore(t, path).Len(); got != 1 {
		t.Errorf("Len: got %d, want 1", got)
	}
}

func TestWriteIndexOverwriteGate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	old := index.New()
	old.Add(1, types.IndexEntry{Size: 5, Path: "/old"})
	if err := writeIndex(old, path, func(string) bool { return true }); err != nil {
		t.Fatal(err)
	}

	fresh := index.New()
	fresh.Add(2, types.IndexEntry{Size: 9, Path: "/new"})

	// Declining the overwrite is a no-op, not an error: the store on
	// disk keeps its previous contents.
	if err := writeIndex(fresh, path, func(string) bool { return false }); err != nil {
		t.Fatalf("declined overwrite returned an error: %v", err)
	}

	loaded := loadStore(t, path)
	if _, ok := loaded.Lookup(1); !ok {
		t.Error("declined overwrite lost the existing entry")
	}
	if _, ok := loaded.Lookup(2); ok {
		t.Error("declined overwrite still wrote the new index")
	}

	// Accepting replaces the contents.
	if err := writeIndex(fresh, path, func(string) bool { return true }); err != nil {
		t.Fatal(err)
	}

	loaded = loadStore(t, path)
	if _, ok := loaded.Lookup(2); !ok {
		t.Error("accepted overwrite did not write the new index")
	}
	if _, ok := loaded.Lookup(1); ok {
		t.Error("stale entry survived an accepted overwrite")
	}
}
