// Package store persists the file-based bronze and silver dataset artifacts.
// Each artifact is a single self-describing JSON file embedding the dataset's
// provenance alongside its rows.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/hcanalytics/hdw-app/hdw/constants"
	ers "github.com/hcanalytics/hdw-app/hdw/errors"
	"github.com/hcanalytics/hdw-app/hdw/models"
)

// Envelope is the on-disk artifact format: one dataset plus the provenance
// record describing where it came from.
type Envelope[T any] struct {
	Provenance models.Provenance `json:"provenance"`
	Columns    []string          `json:"columns"`
	Rows       []T               `json:"rows"`
}

// Store reads and writes artifacts under a single layer directory (bronze or
// silver).
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, errors.Wrapf(err, "could not create artifact directory %s", dir)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// RawName is the bronze artifact name for an entity, e.g. claims_raw.
func RawName(entity models.EntityType) string {
	return entity.String() + constants.RawSuffix
}

// CleanName is the silver artifact name for an entity, e.g. claims_clean.
func CleanName(entity models.EntityType) string {
	return entity.String() + constants.CleanSuffix
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Save writes an artifact, replacing any previous artifact of the same name.
// The write goes through a temp file and rename so a killed run never leaves
// a truncated artifact behind.
func Save[T any](s *Store, name string, env Envelope[T]) error {
	data, err := json.Marshal(env)
	if err != nil {
		return errors.Wrapf(err, "could not encode artifact %s", name)
	}

	tmp, err := os.CreateTemp(s.dir, name+"-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "could not create temp file for artifact %s", name)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "could not write artifact %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "could not close artifact %s", name)
	}

	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return errors.Wrapf(err, "could not replace artifact %s", name)
	}
	return nil
}

// Load reads an artifact back. A missing artifact is reported as an
// ArtifactNotFoundError so callers can tell "stage never ran" apart from a
// corrupt file.
func Load[T any](s *Store, name string) (Envelope[T], error) {
	var env Envelope[T]

	data, err := os.ReadFile(filepath.Clean(s.path(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return env, &ers.ArtifactNotFoundError{Err: err, Name: name}
		}
		return env, errors.Wrapf(err, "could not read artifact %s", name)
	}

	if err := json.Unmarshal(data, &env); err != nil {
		return env, errors.Wrapf(err, "could not decode artifact %s", name)
	}
	return env, nil
}
