// Package corpus owns the shared output directory where accepted modules
// accumulate, one file per module, across every scanned repository.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

const prefixLength = 5

// Corpus is the append-only output directory for a run. The scanning thread
// is its only writer; names reserved here are never reused within a run.
type Corpus struct {
	dir string
}

// Open opens or creates the corpus directory.
func Open(dir string) (*Corpus, error) {
	if dir == "" {
		return nil, fmt.Errorf("corpus directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating corpus directory: %w", err)
	}
	return &Corpus{dir: dir}, nil
}

// Dir returns the corpus directory path.
func (c *Corpus) Dir() string {
	return c.dir
}

// Reserve picks a free path for the desired filename. While the name is
// taken, a fresh five-letter prefix is prepended to the desired name and the
// check repeats. The returned path does not exist at return time; with the
// single-writer discipline that is enough to keep names collision-free.
func (c *Corpus) Reserve(desired string) (string, error) {
	if desired == "" || strings.ContainsAny(desired, `/\`) {
		return "", fmt.Errorf("invalid artifact name: %q", desired)
	}

	path := filepath.Join(c.dir, desired)
	for {
		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("probing %s: %w", path, err)
		}
		path = filepath.Join(c.dir, randomPrefix()+desired)
	}
}

// WriteArtifact writes a flattened artifact to a reserved path.
func (c *Corpus) WriteArtifact(path string, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	return nil
}

// Discard removes an artifact that failed re-validation.
func (c *Corpus) Discard(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("discarding artifact: %w", err)
	}
	return nil
}

// randomPrefix returns five random ASCII letters and a separator, e.g.
// "kQzpW_".
func randomPrefix() string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	b := make([]byte, prefixLength+1)
	for i := 0; i < prefixLength; i++ {
		b[i] = letters[rand.Intn(len(letters))]
	}
	b[prefixLength] = '_'
	return string(b)
}
