package models

// DiagnosisCost is one row of the diagnosis cost analysis: total and average
// spend per diagnosis code across all loaded claims.
type DiagnosisCost struct {
	DiagnosisCode string  `json:"diagnosis_code"`
	ClaimCount    int     `json:"claim_count"`
	TotalCost     float64 `json:"total_cost"`
	AvgCost       float64 `json:"avg_cost"`
}

// HospitalPerformance is one row of the provider performance summary.
type HospitalPerformance struct {
	ProviderID        int     `json:"provider_id"`
	HospitalName      string  `json:"hospital_name"`
	State             string  `json:"state"`
	TotalClaims       int     `json:"total_claims"`
	TotalRevenue      float64 `json:"total_revenue"`
	AvgCostPerClaim   float64 `json:"avg_cost_per_claim"`
	ReadmissionRate   float64 `json:"readmission_rate_pct"`
	TotalReadmissions int     `json:"total_readmissions"`
}

// AdherenceSummary aggregates prescription adherence per medication
// category.
type AdherenceSummary struct {
	MedicationCategory string  `json:"medication_category"`
	PrescriptionCount  int     `json:"prescription_count"`
	AvgAdherenceRate   float64 `json:"avg_adherence_rate"`
	AvgCost            float64 `json:"avg_cost"`
}
