// Package extract obtains raw per-entity datasets and persists them, tagged
// with provenance, to the bronze store.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dimchansky/utfbom"
	"github.com/go-gota/gota/dataframe"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hcanalytics/hdw-app/hdw/constants"
	ers "github.com/hcanalytics/hdw-app/hdw/errors"
	"github.com/hcanalytics/hdw-app/hdw/models"
	"github.com/hcanalytics/hdw-app/hdw/store"
)

// Extractor reads entity sources (CSV files or HTTP endpoints) into bronze
// artifacts. When an entity has no usable source, the synthetic fixture
// generator supplies a deterministic dataset instead; that fallback is always
// logged, never silent.
type Extractor struct {
	Logger logrus.FieldLogger
	Bronze *store.Store

	httpClient *retryablehttp.Client
	generator  *Generator
	now        func() time.Time
}

func NewExtractor(logger logrus.FieldLogger, bronze *store.Store) *Extractor {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	return &Extractor{
		Logger:     logger,
		Bronze:     bronze,
		httpClient: client,
		generator:  NewGenerator(),
		now:        time.Now,
	}
}

// Extract obtains one entity's raw dataset, stamps it with provenance and
// writes it to the bronze store, overwriting any prior bronze artifact for
// that entity.
func (e *Extractor) Extract(ctx context.Context, entity models.EntityType, source string) (store.Envelope[models.RawRecord], error) {
	e.Logger.WithField("entity", entity).Info("Starting extraction...")

	var (
		columns []string
		rows    []models.RawRecord
		origin  = source
		err     error
	)

	switch {
	case source == "":
		origin = constants.SourceGenerated
		columns, rows = e.generator.Generate(entity)
		e.Logger.WithField("entity", entity).Info("No source configured, generated synthetic dataset")
	default:
		columns, rows, err = e.readSource(ctx, source)
		if err != nil {
			srcErr := &ers.SourceUnavailableError{Err: err, Entity: entity.String(), Source: source}
			if !isUnavailable(err) {
				// The source exists but could not be parsed. That is a real
				// failure, not a missing input.
				return store.Envelope[models.RawRecord]{}, srcErr
			}
			e.Logger.WithFields(logrus.Fields{"entity": entity, "source": source}).
				Warnf("Source unavailable, falling back to synthetic dataset: %s", err)
			origin = constants.SourceGenerated
			columns, rows = e.generator.Generate(entity)
		}
	}

	env := store.Envelope[models.RawRecord]{
		Provenance: models.Provenance{
			DatasetID: uuid.New(),
			Source:    origin,
			Stage:     constants.StageBronze,
			Version:   constants.ETLVersion,
			Timestamp: e.now(),
		},
		Columns: columns,
		Rows:    rows,
	}

	if err := store.Save(e.Bronze, store.RawName(entity), env); err != nil {
		return store.Envelope[models.RawRecord]{}, err
	}

	e.Logger.WithFields(logrus.Fields{
		"entity":  entity,
		"source":  origin,
		"rows":    len(rows),
		"columns": len(columns),
	}).Info("Extraction complete")

	return env, nil
}

// ExtractAll runs all four entity extractions. The first failure propagates;
// there is no partial aggregation at this level.
func (e *Extractor) ExtractAll(ctx context.Context, sources map[models.EntityType]string) (map[models.EntityType]store.Envelope[models.RawRecord], error) {
	e.Logger.Info("Starting full data extraction...")

	results := make(map[models.EntityType]store.Envelope[models.RawRecord], len(models.AllEntities))
	for _, entity := range models.AllEntities {
		env, err := e.Extract(ctx, entity, sources[entity])
		if err != nil {
			return nil, errors.Wrapf(err, "extraction failed for %s", entity)
		}
		results[entity] = env
	}

	e.Logger.Info("Data extraction completed successfully")
	return results, nil
}

func (e *Extractor) readSource(ctx context.Context, source string) ([]string, []models.RawRecord, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return e.fetchCSV(ctx, source)
	}
	return readCSVFile(source)
}

// isUnavailable reports whether the source simply was not there, which is the
// one condition that triggers the synthetic fallback.
func isUnavailable(err error) bool {
	return os.IsNotExist(errors.Cause(err)) || errors.Cause(err) == errNotFound
}

var errNotFound = fmt.Errorf("source returned 404")

func readCSVFile(path string) ([]string, []models.RawRecord, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	return parseCSV(utfbom.SkipOnly(f))
}

func (e *Extractor) fetchCSV(ctx context.Context, url string) ([]string, []models.RawRecord, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return nil, nil, errNotFound
	}
	if resp.StatusCode != 200 {
		return nil, nil, fmt.Errorf("source returned unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	return parseCSV(utfbom.SkipOnly(bytes.NewReader(body)))
}

// parseCSV reads the source into a dataframe without type detection; cells
// stay strings until the transformer's tolerant parses run.
func parseCSV(r io.Reader) ([]string, []models.RawRecord, error) {
	df := dataframe.ReadCSV(r, dataframe.HasHeader(true), dataframe.DetectTypes(false))
	if df.Err != nil {
		return nil, nil, errors.Wrap(df.Err, "failed to read CSV source")
	}

	records := df.Records()
	if len(records) == 0 {
		return nil, nil, errors.New("empty CSV source")
	}

	columns := records[0]
	rows := make([]models.RawRecord, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, models.RawRecord(rec))
	}
	return columns, rows, nil
}
