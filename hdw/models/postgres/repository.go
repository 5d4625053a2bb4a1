// Package postgres contains the PostgreSQL implementation of the warehouse
// repository. All statements target the healthcare schema created by the
// migrations under db/migrations.
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/huandu/go-sqlbuilder"

	"github.com/hcanalytics/hdw-app/hdw/models"
)

type queryable interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type executable interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const (
	sqlFlavor = sqlbuilder.PostgreSQL
)

const (
	tableClaims        = "healthcare.claims"
	tablePatients      = "healthcare.patients"
	tableProviders     = "healthcare.providers"
	tablePrescriptions = "healthcare.prescriptions"
	tableMedications   = "healthcare.medications"
)

// WarehouseTable maps an entity to its fully qualified warehouse table.
var WarehouseTable = map[models.EntityType]string{
	models.EntityClaims:        tableClaims,
	models.EntityPatients:      tablePatients,
	models.EntityProviders:     tableProviders,
	models.EntityPrescriptions: tablePrescriptions,
}

type Repository struct {
	queryable
	executable
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db, db}
}

func NewRepositoryTx(tx *sql.Tx) *Repository {
	return &Repository{tx, tx}
}

// DeleteEntityRows clears an entity's warehouse table ahead of a replace
// load.
func (r *Repository) DeleteEntityRows(ctx context.Context, entity models.EntityType) error {
	db := sqlFlavor.NewDeleteBuilder().DeleteFrom(WarehouseTable[entity])
	query, args := db.Build()
	_, err := r.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) InsertPatients(ctx context.Context, patients []models.Patient) error {
	if len(patients) == 0 {
		return nil
	}

	ib := sqlFlavor.NewInsertBuilder().InsertInto(tablePatients).
		Cols("patient_id", "age", "gender", "race", "zip_code", "insurance_type",
			"chronic_conditions", "last_visit_date", "age_category", "risk_level",
			"days_since_last_visit", "patient_status")
	for _, p := range patients {
		ib.Values(p.PatientID, p.Age, string(p.Gender), p.Race, p.ZipCode, p.InsuranceType,
			p.ChronicConditions, nullableTime(p.LastVisitDate), string(p.AgeCategory),
			string(p.RiskLevel), p.DaysSinceLastVisit, string(p.PatientStatus))
	}

	query, args := ib.Build()
	_, err := r.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) InsertProviders(ctx context.Context, providers []models.Provider) error {
	if len(providers) == 0 {
		return nil
	}

	ib := sqlFlavor.NewInsertBuilder().InsertInto(tableProviders).
		Cols("provider_id", "hospital_name", "provider_type", "state", "city", "beds",
			"teaching_hospital", "hospital_size", "full_address", "avg_cost",
			"readmission_rate", "patient_volume")
	for _, p := range providers {
		ib.Values(p.ProviderID, p.HospitalName, p.ProviderType, p.State, p.City, p.Beds,
			p.TeachingHospital, string(p.HospitalSize), p.FullAddress, p.AvgCost,
			p.ReadmissionRate, p.PatientVolume)
	}

	query, args := ib.Build()
	_, err := r.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) InsertClaims(ctx context.Context, claims []models.Claim) error {
	if len(claims) == 0 {
		return nil
	}

	ib := sqlFlavor.NewInsertBuilder().InsertInto(tableClaims).
		Cols("claim_id", "patient_id", "provider_id", "admission_date", "discharge_date",
			"readmission_date", "diagnosis_code", "procedure_code", "cost", "insurance_type",
			"length_of_stay", "readmission_flag", "cost_per_day", "cost_category",
			"los_category", "admission_month", "admission_quarter", "admission_year",
			"admission_dow")
	for _, c := range claims {
		ib.Values(c.ClaimID, c.PatientID, c.ProviderID, c.AdmissionDate, c.DischargeDate,
			c.ReadmissionDate, c.DiagnosisCode, c.ProcedureCode, c.Cost, c.InsuranceType,
			c.LengthOfStay, c.ReadmissionFlag, c.CostPerDay, string(c.CostCategory),
			string(c.LOSCategory), c.AdmissionMonth, c.AdmissionQuarter, c.AdmissionYear,
			c.AdmissionDayOfWeek)
	}

	query, args := ib.Build()
	_, err := r.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) InsertPrescriptions(ctx context.Context, prescriptions []models.Prescription) error {
	if len(prescriptions) == 0 {
		return nil
	}

	ib := sqlFlavor.NewInsertBuilder().InsertInto(tablePrescriptions).
		Cols("prescription_id", "patient_id", "provider_id", "medication_id",
			"medication_name", "medication_category", "prescription_date", "days_supplied",
			"days_prescribed", "quantity", "cost", "adherence_rate", "adherence_category",
			"cost_per_day", "prescription_month", "prescription_quarter", "prescription_year")
	for _, rx := range prescriptions {
		ib.Values(rx.PrescriptionID, rx.PatientID, rx.ProviderID, rx.MedicationID,
			rx.MedicationName, rx.MedicationCategory, nullableTime(rx.PrescriptionDate),
			rx.DaysSupplied, rx.DaysPrescribed, rx.Quantity, rx.Cost, rx.AdherenceRate,
			string(rx.AdherenceCategory), rx.CostPerDay, rx.RxMonth, rx.RxQuarter, rx.RxYear)
	}

	query, args := ib.Build()
	_, err := r.ExecContext(ctx, query, args...)
	return err
}

// GetMedicationMap returns the medications reference table as a name to id
// lookup, used to resolve prescription medication_ids before loading.
func (r *Repository) GetMedicationMap(ctx context.Context) (map[string]int, error) {
	sb := sqlFlavor.NewSelectBuilder().Select("medication_name", "medication_id").From(tableMedications)
	query, args := sb.Build()

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	medications := make(map[string]int)
	for rows.Next() {
		var (
			name string
			id   int
		)
		if err := rows.Scan(&name, &id); err != nil {
			return nil, err
		}
		medications[name] = id
	}
	return medications, rows.Err()
}

// UpdateProviderMetrics recomputes each provider's average claim cost,
// readmission rate and distinct patient volume from the claims currently in
// the warehouse. Providers with no claims keep their previous values.
func (r *Repository) UpdateProviderMetrics(ctx context.Context) (int64, error) {
	const query = `
		UPDATE healthcare.providers p
		SET avg_cost = m.avg_cost,
		    readmission_rate = m.readmission_rate,
		    patient_volume = m.patient_volume
		FROM (
		    SELECT provider_id,
		           AVG(cost) AS avg_cost,
		           AVG(CASE WHEN readmission_flag THEN 1.0 ELSE 0.0 END) AS readmission_rate,
		           COUNT(DISTINCT patient_id) AS patient_volume
		    FROM healthcare.claims
		    GROUP BY provider_id
		) m
		WHERE p.provider_id = m.provider_id`

	result, err := r.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetRowCount counts the rows currently loaded for one entity.
func (r *Repository) GetRowCount(ctx context.Context, entity models.EntityType) (int, error) {
	sb := sqlFlavor.NewSelectBuilder().Select("COUNT(1)").From(WarehouseTable[entity])
	query, args := sb.Build()

	var count int
	if err := r.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetRowCounts counts every entity table in one pass.
func (r *Repository) GetRowCounts(ctx context.Context) (map[models.EntityType]int, error) {
	counts := make(map[models.EntityType]int, len(models.AllEntities))
	for _, entity := range models.AllEntities {
		count, err := r.GetRowCount(ctx, entity)
		if err != nil {
			return nil, err
		}
		counts[entity] = count
	}
	return counts, nil
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
