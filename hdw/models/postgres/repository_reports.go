package postgres

import (
	"context"
	"database/sql"

	"github.com/hcanalytics/hdw-app/hdw/models"
)

// Report queries read the analysis views created by the migrations; the
// views keep the aggregation SQL in the schema where the dashboards also use
// it.

func (r *Repository) GetTopCostDrivers(ctx context.Context, limit int) ([]models.DiagnosisCost, error) {
	sb := sqlFlavor.NewSelectBuilder().
		Select("diagnosis_code", "claim_count", "total_cost", "avg_cost").
		From("healthcare.diagnosis_cost_analysis")
	sb.OrderBy("total_cost").Desc().Limit(limit)
	query, args := sb.Build()

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.DiagnosisCost
	for rows.Next() {
		var row models.DiagnosisCost
		if err := rows.Scan(&row.DiagnosisCode, &row.ClaimCount, &row.TotalCost, &row.AvgCost); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

func (r *Repository) GetHospitalPerformance(ctx context.Context, limit int) ([]models.HospitalPerformance, error) {
	sb := sqlFlavor.NewSelectBuilder().
		Select("provider_id", "hospital_name", "state", "total_claims", "total_revenue",
			"avg_cost_per_claim", "readmission_rate_pct", "total_readmissions").
		From("healthcare.provider_performance")
	sb.OrderBy("total_revenue").Desc().Limit(limit)
	query, args := sb.Build()

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHospitalPerformance(rows)
}

// GetReadmissionRanking ranks providers by readmission rate. Providers with
// fewer claims than minClaims are excluded so small denominators cannot
// dominate the ranking.
func (r *Repository) GetReadmissionRanking(ctx context.Context, minClaims, limit int) ([]models.HospitalPerformance, error) {
	sb := sqlFlavor.NewSelectBuilder().
		Select("provider_id", "hospital_name", "state", "total_claims", "total_revenue",
			"avg_cost_per_claim", "readmission_rate_pct", "total_readmissions").
		From("healthcare.provider_performance")
	sb.Where(sb.GreaterEqualThan("total_claims", minClaims))
	sb.OrderBy("readmission_rate_pct").Desc().Limit(limit)
	query, args := sb.Build()

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHospitalPerformance(rows)
}

func (r *Repository) GetAdherenceByCategory(ctx context.Context) ([]models.AdherenceSummary, error) {
	sb := sqlFlavor.NewSelectBuilder().
		Select("medication_category", "COUNT(1) AS prescription_count",
			"ROUND(AVG(adherence_rate)::numeric, 4) AS avg_adherence_rate",
			"ROUND(AVG(cost)::numeric, 2) AS avg_cost").
		From(tablePrescriptions)
	sb.GroupBy("medication_category").OrderBy("avg_adherence_rate").Desc()
	query, args := sb.Build()

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.AdherenceSummary
	for rows.Next() {
		var row models.AdherenceSummary
		if err := rows.Scan(&row.MedicationCategory, &row.PrescriptionCount,
			&row.AvgAdherenceRate, &row.AvgCost); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

func scanHospitalPerformance(rows *sql.Rows) ([]models.HospitalPerformance, error) {
	var results []models.HospitalPerformance
	for rows.Next() {
		var row models.HospitalPerformance
		if err := rows.Scan(&row.ProviderID, &row.HospitalName, &row.State, &row.TotalClaims,
			&row.TotalRevenue, &row.AvgCostPerClaim, &row.ReadmissionRate,
			&row.TotalReadmissions); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
