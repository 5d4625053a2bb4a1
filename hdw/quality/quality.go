// Package quality runs the post-load data quality checks: row counts,
// completeness, referential integrity and business-rule bounds. Checks are
// read-only and run against the warehouse after a load.
package quality

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hcanalytics/hdw-app/hdw/database"
	ers "github.com/hcanalytics/hdw-app/hdw/errors"
	"github.com/hcanalytics/hdw-app/hdw/models"
)

// Check is one quality check outcome.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

type Checker struct {
	Logger logrus.FieldLogger

	db database.Queryable
}

func NewChecker(logger logrus.FieldLogger, db *sql.DB) *Checker {
	return &Checker{Logger: logger, db: &database.DB{DB: db}}
}

// RunAll executes every check. A failing check does not stop the rest; the
// aggregate error reports all failures. A query error aborts immediately
// since remaining results would be meaningless.
func (c *Checker) RunAll(ctx context.Context) ([]Check, error) {
	c.Logger.Info("Running data quality checks...")

	var checks []Check
	for _, run := range []func(context.Context) ([]Check, error){
		c.rowCounts,
		c.claimsCompleteness,
		c.orphanedClaims,
		c.patientAgeBounds,
	} {
		results, err := run(ctx)
		if err != nil {
			return nil, err
		}
		checks = append(checks, results...)
	}

	var failed []string
	for _, check := range checks {
		entry := c.Logger.WithFields(logrus.Fields{"check": check.Name, "detail": check.Detail})
		if check.Passed {
			entry.Info("Quality check passed")
			continue
		}
		entry.Error("Quality check failed")
		failed = append(failed, check.Name)
	}

	if len(failed) > 0 {
		return checks, &ers.QualityCheckError{FailedChecks: failed}
	}
	return checks, nil
}

func (c *Checker) count(ctx context.Context, query string) (int, error) {
	var count int
	if err := c.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "quality query failed: %s", query)
	}
	return count, nil
}

// rowCounts verifies every warehouse table has rows at all.
func (c *Checker) rowCounts(ctx context.Context) ([]Check, error) {
	tables := map[models.EntityType]string{
		models.EntityPatients:      "healthcare.patients",
		models.EntityProviders:     "healthcare.providers",
		models.EntityClaims:        "healthcare.claims",
		models.EntityPrescriptions: "healthcare.prescriptions",
	}

	var checks []Check
	for _, entity := range models.AllEntities {
		count, err := c.count(ctx, "SELECT COUNT(1) FROM "+tables[entity])
		if err != nil {
			return nil, err
		}
		checks = append(checks, Check{
			Name:   fmt.Sprintf("%s_row_count", entity),
			Passed: count > 0,
			Detail: fmt.Sprintf("%d rows", count),
		})
	}
	return checks, nil
}

// claimsCompleteness verifies no loaded claim carries an unusable cost or a
// missing admission date.
func (c *Checker) claimsCompleteness(ctx context.Context) ([]Check, error) {
	badCosts, err := c.count(ctx, "SELECT COUNT(1) FROM healthcare.claims WHERE cost IS NULL OR cost <= 0")
	if err != nil {
		return nil, err
	}
	missingDates, err := c.count(ctx, "SELECT COUNT(1) FROM healthcare.claims WHERE admission_date IS NULL")
	if err != nil {
		return nil, err
	}

	return []Check{
		{Name: "claims_valid_costs", Passed: badCosts == 0, Detail: fmt.Sprintf("%d invalid costs", badCosts)},
		{Name: "claims_admission_dates", Passed: missingDates == 0, Detail: fmt.Sprintf("%d missing dates", missingDates)},
	}, nil
}

// orphanedClaims verifies every claim references a loaded patient.
func (c *Checker) orphanedClaims(ctx context.Context) ([]Check, error) {
	orphans, err := c.count(ctx, `SELECT COUNT(1) FROM healthcare.claims c
		LEFT JOIN healthcare.patients p ON c.patient_id = p.patient_id
		WHERE p.patient_id IS NULL`)
	if err != nil {
		return nil, err
	}

	return []Check{
		{Name: "claims_referential_integrity", Passed: orphans == 0, Detail: fmt.Sprintf("%d orphaned claims", orphans)},
	}, nil
}

// patientAgeBounds verifies the age business rule held through the load.
func (c *Checker) patientAgeBounds(ctx context.Context) ([]Check, error) {
	outOfRange, err := c.count(ctx, "SELECT COUNT(1) FROM healthcare.patients WHERE age < 0 OR age > 120")
	if err != nil {
		return nil, err
	}

	return []Check{
		{Name: "patients_age_bounds", Passed: outOfRange == 0, Detail: fmt.Sprintf("%d out of range", outOfRange)},
	}, nil
}
