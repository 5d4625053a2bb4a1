// Package transform turns bronze artifacts into cleaned, enriched silver
// artifacts. Each entity runs independently: rows are coerced and
// deduplicated, enrichment columns are derived, and the required-column gate
// is enforced before anything is written to the silver store.
package transform

import (
	"time"

	"github.com/pborman/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hcanalytics/hdw-app/hdw/constants"
	ers "github.com/hcanalytics/hdw-app/hdw/errors"
	"github.com/hcanalytics/hdw-app/hdw/models"
	"github.com/hcanalytics/hdw-app/hdw/store"
)

type Transformer struct {
	Logger logrus.FieldLogger
	Bronze *store.Store
	Silver *store.Store

	now func() time.Time
}

func NewTransformer(logger logrus.FieldLogger, bronze, silver *store.Store) *Transformer {
	return &Transformer{
		Logger: logger,
		Bronze: bronze,
		Silver: silver,
		now:    time.Now,
	}
}

// Transform runs one entity's bronze artifact through clean, derive and
// validate, then writes the silver artifact. The returned count is the
// number of rows that survived cleaning.
func (t *Transformer) Transform(entity models.EntityType) (int, error) {
	t.Logger.WithField("entity", entity).Info("Starting transformation...")

	var (
		count int
		err   error
	)
	switch entity {
	case models.EntityClaims:
		count, err = t.transformClaims()
	case models.EntityPatients:
		count, err = t.transformPatients()
	case models.EntityProviders:
		count, err = t.transformProviders()
	case models.EntityPrescriptions:
		count, err = t.transformPrescriptions()
	}
	if err != nil {
		return 0, err
	}

	t.Logger.WithFields(logrus.Fields{"entity": entity, "rows": count}).Info("Transformation complete")
	return count, nil
}

// TransformAll runs every entity and keeps going past failures so one bad
// source cannot block the others. Failures are aggregated.
func (t *Transformer) TransformAll() (map[models.EntityType]int, error) {
	t.Logger.Info("Starting data transformation...")

	counts := make(map[models.EntityType]int, len(models.AllEntities))
	var failed []string
	for _, entity := range models.AllEntities {
		count, err := t.Transform(entity)
		if err != nil {
			t.Logger.WithField("entity", entity).Errorf("Transformation failed: %s", err)
			failed = append(failed, entity.String())
			continue
		}
		counts[entity] = count
	}

	if len(failed) > 0 {
		return counts, &ers.TransformError{FailedEntities: failed}
	}

	t.Logger.Info("Data transformation completed successfully")
	return counts, nil
}

func (t *Transformer) transformClaims() (int, error) {
	raw, err := store.Load[models.RawRecord](t.Bronze, store.RawName(models.EntityClaims))
	if err != nil {
		return 0, err
	}
	if err := requireColumns(models.EntityClaims, raw.Columns); err != nil {
		return 0, err
	}

	rows, stats := cleanClaims(indexColumns(raw.Columns), raw.Rows)
	t.logStats(models.EntityClaims, stats)
	for i := range rows {
		deriveClaim(&rows[i])
	}
	warnClaims(t.Logger, rows)

	env := store.Envelope[models.Claim]{
		Provenance: t.derivedProvenance(raw.Provenance),
		Columns:    silverColumns[models.EntityClaims],
		Rows:       rows,
	}
	if err := store.Save(t.Silver, store.CleanName(models.EntityClaims), env); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (t *Transformer) transformPatients() (int, error) {
	raw, err := store.Load[models.RawRecord](t.Bronze, store.RawName(models.EntityPatients))
	if err != nil {
		return 0, err
	}
	if err := requireColumns(models.EntityPatients, raw.Columns); err != nil {
		return 0, err
	}

	rows, stats := cleanPatients(indexColumns(raw.Columns), raw.Rows)
	t.logStats(models.EntityPatients, stats)
	now := t.now()
	for i := range rows {
		derivePatient(&rows[i], now)
	}
	warnPatients(t.Logger, rows)

	env := store.Envelope[models.Patient]{
		Provenance: t.derivedProvenance(raw.Provenance),
		Columns:    silverColumns[models.EntityPatients],
		Rows:       rows,
	}
	if err := store.Save(t.Silver, store.CleanName(models.EntityPatients), env); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (t *Transformer) transformProviders() (int, error) {
	raw, err := store.Load[models.RawRecord](t.Bronze, store.RawName(models.EntityProviders))
	if err != nil {
		return 0, err
	}
	if err := requireColumns(models.EntityProviders, raw.Columns); err != nil {
		return 0, err
	}

	rows, stats := cleanProviders(indexColumns(raw.Columns), raw.Rows)
	t.logStats(models.EntityProviders, stats)
	for i := range rows {
		deriveProvider(&rows[i])
	}

	env := store.Envelope[models.Provider]{
		Provenance: t.derivedProvenance(raw.Provenance),
		Columns:    silverColumns[models.EntityProviders],
		Rows:       rows,
	}
	if err := store.Save(t.Silver, store.CleanName(models.EntityProviders), env); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (t *Transformer) transformPrescriptions() (int, error) {
	raw, err := store.Load[models.RawRecord](t.Bronze, store.RawName(models.EntityPrescriptions))
	if err != nil {
		return 0, err
	}
	if err := requireColumns(models.EntityPrescriptions, raw.Columns); err != nil {
		return 0, err
	}

	rows, stats := cleanPrescriptions(indexColumns(raw.Columns), raw.Rows)
	t.logStats(models.EntityPrescriptions, stats)
	for i := range rows {
		derivePrescription(&rows[i])
	}

	env := store.Envelope[models.Prescription]{
		Provenance: t.derivedProvenance(raw.Provenance),
		Columns:    silverColumns[models.EntityPrescriptions],
		Rows:       rows,
	}
	if err := store.Save(t.Silver, store.CleanName(models.EntityPrescriptions), env); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// derivedProvenance stamps a silver provenance that chains back to the
// bronze artifact it was derived from.
func (t *Transformer) derivedProvenance(source models.Provenance) models.Provenance {
	return models.Provenance{
		DatasetID:        uuid.New(),
		Source:           source.Source,
		Stage:            constants.StageSilver,
		Version:          constants.TransformVersion,
		Timestamp:        t.now(),
		SourceProvenance: &source,
	}
}

func (t *Transformer) logStats(entity models.EntityType, stats CleanStats) {
	t.Logger.WithFields(logrus.Fields{
		"entity":     entity,
		"input":      stats.Input,
		"duplicates": stats.Duplicates,
		"dropped":    stats.Dropped,
		"output":     stats.Output,
	}).Info("Cleaning complete")
}

// silverColumns names the serialized columns of each silver artifact, in
// struct field order.
var silverColumns = map[models.EntityType][]string{
	models.EntityClaims: {
		"claim_id", "patient_id", "provider_id", "admission_date",
		"discharge_date", "readmission_date", "diagnosis_code",
		"procedure_code", "cost", "insurance_type", "length_of_stay",
		"readmission_flag", "cost_per_day", "cost_category", "los_category",
		"admission_month", "admission_quarter", "admission_year",
		"admission_dow",
	},
	models.EntityPatients: {
		"patient_id", "age", "gender", "race", "zip_code", "insurance_type",
		"chronic_conditions", "last_visit_date", "age_category", "risk_level",
		"days_since_last_visit", "patient_status",
	},
	models.EntityProviders: {
		"provider_id", "hospital_name", "provider_type", "state", "city",
		"beds", "teaching_hospital", "hospital_size", "full_address",
		"avg_cost", "readmission_rate", "patient_volume",
	},
	models.EntityPrescriptions: {
		"prescription_id", "patient_id", "provider_id", "medication_name",
		"medication_id", "medication_category", "prescription_date",
		"days_supplied", "days_prescribed", "quantity", "cost",
		"adherence_rate", "adherence_category", "cost_per_day",
		"prescription_month", "prescription_quarter", "prescription_year",
	},
}
