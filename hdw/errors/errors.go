package errors

import (
	"fmt"
	"strings"
)

// SourceUnavailableError indicates an entity's configured input could not be
// read. The extractor recovers locally by generating a synthetic fixture.
type SourceUnavailableError struct {
	Err    error
	Entity string
	Source string
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s for entity %s unavailable: %s", e.Source, e.Entity, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// ValidationError indicates a required column was missing after
// transformation. It is fatal to that entity's transform and is not retried
// in-process.
type ValidationError struct {
	Entity         string
	MissingColumns []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: missing required columns [%s]",
		e.Entity, strings.Join(e.MissingColumns, ", "))
}

// ConnectionError indicates the warehouse was unreachable. Fatal to the
// entire load.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to warehouse: %s", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// EntityLoadError wraps a failure to load a single entity. Other entities are
// still attempted.
type EntityLoadError struct {
	Err    error
	Entity string
}

func (e *EntityLoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %s", e.Entity, e.Err)
}

func (e *EntityLoadError) Unwrap() error {
	return e.Err
}

// PartialLoadError aggregates per-entity load failures. Entities that loaded
// successfully stay loaded; callers must inspect the per-entity result map to
// know what is safely queryable.
type PartialLoadError struct {
	FailedEntities []string
}

func (e *PartialLoadError) Error() string {
	return fmt.Sprintf("load completed with failures for: %s", strings.Join(e.FailedEntities, ", "))
}

// TransformError aggregates per-entity transform failures. The remaining
// entities were still transformed.
type TransformError struct {
	FailedEntities []string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform completed with failures for: %s", strings.Join(e.FailedEntities, ", "))
}

// ArtifactNotFoundError indicates a bronze or silver artifact was missing
// when a stage tried to read it, usually because an earlier stage never ran.
type ArtifactNotFoundError struct {
	Err  error
	Name string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("artifact %s not found: %s", e.Name, e.Err)
}

func (e *ArtifactNotFoundError) Unwrap() error {
	return e.Err
}

// QualityCheckError indicates one or more post-load data quality checks
// failed.
type QualityCheckError struct {
	FailedChecks []string
}

func (e *QualityCheckError) Error() string {
	return fmt.Sprintf("data quality checks failed: %s", strings.Join(e.FailedChecks, ", "))
}
