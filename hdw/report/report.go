// Package report produces the post-load analytics summaries from the
// warehouse views: cost drivers, hospital performance, readmission rankings
// and medication adherence.
package report

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hcanalytics/hdw-app/hdw/models"
	"github.com/hcanalytics/hdw-app/hdw/models/postgres"
)

const (
	// DefaultLimit caps ranked report rows.
	DefaultLimit = 10
	// MinClaimsForRanking excludes providers with too few claims from the
	// readmission ranking so small denominators cannot dominate it.
	MinClaimsForRanking = 10
)

type Reporter struct {
	Logger logrus.FieldLogger

	repository *postgres.Repository
}

func NewReporter(logger logrus.FieldLogger, db *sql.DB) *Reporter {
	return &Reporter{Logger: logger, repository: postgres.NewRepository(db)}
}

// Summary is the full analytics output of one reporting run.
type Summary struct {
	TopCostDrivers      []models.DiagnosisCost      `json:"top_cost_drivers"`
	HospitalPerformance []models.HospitalPerformance `json:"hospital_performance"`
	ReadmissionRanking  []models.HospitalPerformance `json:"readmission_ranking"`
	AdherenceByCategory []models.AdherenceSummary    `json:"adherence_by_category"`
}

// GenerateAll runs every report. Reports are read-only; a query failure
// aborts the run.
func (r *Reporter) GenerateAll(ctx context.Context) (*Summary, error) {
	r.Logger.Info("Generating analytics reports...")

	costDrivers, err := r.repository.GetTopCostDrivers(ctx, DefaultLimit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate cost driver report")
	}
	for _, row := range costDrivers {
		r.Logger.WithFields(logrus.Fields{
			"diagnosis_code": row.DiagnosisCode,
			"claims":         row.ClaimCount,
			"total_cost":     row.TotalCost,
		}).Info("Top cost driver")
	}

	performance, err := r.repository.GetHospitalPerformance(ctx, DefaultLimit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate hospital performance report")
	}
	for _, row := range performance {
		r.Logger.WithFields(logrus.Fields{
			"hospital":      row.HospitalName,
			"state":         row.State,
			"total_revenue": row.TotalRevenue,
		}).Info("Hospital by revenue")
	}

	readmissions, err := r.repository.GetReadmissionRanking(ctx, MinClaimsForRanking, DefaultLimit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate readmission ranking")
	}
	for _, row := range readmissions {
		r.Logger.WithFields(logrus.Fields{
			"hospital":             row.HospitalName,
			"readmission_rate_pct": row.ReadmissionRate,
			"total_claims":         row.TotalClaims,
		}).Info("Readmission ranking")
	}

	adherence, err := r.repository.GetAdherenceByCategory(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate adherence report")
	}
	for _, row := range adherence {
		r.Logger.WithFields(logrus.Fields{
			"category":      row.MedicationCategory,
			"prescriptions": row.PrescriptionCount,
			"avg_adherence": row.AvgAdherenceRate,
		}).Info("Medication adherence")
	}

	r.Logger.Info("Analytics reports generated")
	return &Summary{
		TopCostDrivers:      costDrivers,
		HospitalPerformance: performance,
		ReadmissionRanking:  readmissions,
		AdherenceByCategory: adherence,
	}, nil
}
