// Package datastore manages a harvest directory on disk: the corpus of
// extracted modules under rtl/, transient checkouts under scratch/, and
// the run database.
package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rtlharvest/rtlharvest/pkg/corpus"
	"github.com/rtlharvest/rtlharvest/pkg/store"
)

// Options configures datastore behavior.
type Options struct {
	// StorePath overrides where run records go. Empty keeps them in
	// harvest.db inside the datastore; a postgres:// DSN sends them to a
	// shared server while the corpus stays local.
	StorePath string
}

// Datastore is an opened harvest directory.
type Datastore struct {
	Path      string
	StorePath string
	Corpus    *corpus.Corpus
	Store     store.Store
}

// Open opens or creates a harvest directory at the given path.
func Open(path string, opts Options) (*Datastore, error) {
	if path == "" {
		return nil, fmt.Errorf("datastore path is required")
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating datastore directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(path, "scratch"), 0755); err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}

	// Everything under the datastore is generated output.
	gitignorePath := filepath.Join(path, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("*\n"), 0644); err != nil {
		return nil, fmt.Errorf("writing datastore .gitignore: %w", err)
	}

	c, err := corpus.Open(filepath.Join(path, "rtl"))
	if err != nil {
		return nil, err
	}

	storePath := opts.StorePath
	if storePath == "" {
		storePath = filepath.Join(path, "harvest.db")
	}
	s, err := store.New(store.Config{Path: storePath})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	return &Datastore{
		Path:      path,
		StorePath: storePath,
		Corpus:    c,
		Store:     s,
	}, nil
}

// ScratchDir returns the directory used for transient repository checkouts.
func (d *Datastore) ScratchDir() string {
	return filepath.Join(d.Path, "scratch")
}

// Close releases the datastore's resources.
func (d *Datastore) Close() error {
	if d.Store != nil {
		return d.Store.Close()
	}
	return nil
}
