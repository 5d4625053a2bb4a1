package models

import (
	"time"
)

// EntityType identifies one of the four warehouse entities moving through the
// pipeline.
type EntityType string

const (
	EntityClaims        EntityType = "claims"
	EntityPatients      EntityType = "patients"
	EntityProviders     EntityType = "providers"
	EntityPrescriptions EntityType = "prescriptions"
)

// AllEntities lists every entity in warehouse dependency order: dimensions
// (patients, providers) before facts (claims, prescriptions).
var AllEntities = []EntityType{EntityPatients, EntityProviders, EntityClaims, EntityPrescriptions}

func (e EntityType) String() string {
	return string(e)
}

// Provenance records where a dataset came from and when/how it was last
// processed. It accompanies every artifact across stage boundaries; a silver
// artifact's provenance references the bronze provenance it was derived from.
type Provenance struct {
	DatasetID        string      `json:"dataset_id"`
	Source           string      `json:"source"`
	Stage            string      `json:"stage"`
	Version          string      `json:"version"`
	Timestamp        time.Time   `json:"timestamp"`
	SourceProvenance *Provenance `json:"source_provenance,omitempty"`
}

// RawRecord is a single uncoerced row as extracted from a source. Cells stay
// strings until the transformer's tolerant parses run.
type RawRecord []string

type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = "Unknown"
)

type CostCategory string

const (
	CostLow      CostCategory = "Low"
	CostMedium   CostCategory = "Medium"
	CostHigh     CostCategory = "High"
	CostVeryHigh CostCategory = "Very High"
)

type LOSCategory string

const (
	LOSSameDay LOSCategory = "Same Day"
	LOSShort   LOSCategory = "Short"
	LOSMedium  LOSCategory = "Medium"
	LOSLong    LOSCategory = "Long"
)

type AgeCategory string

const (
	AgePediatric  AgeCategory = "Pediatric"
	AgeYoungAdult AgeCategory = "Young Adult"
	AgeAdult      AgeCategory = "Adult"
	AgeMiddleAge  AgeCategory = "Middle Age"
	AgeSenior     AgeCategory = "Senior"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

type AdherenceCategory string

const (
	AdherencePoor AdherenceCategory = "Poor"
	AdherenceFair AdherenceCategory = "Fair"
	AdherenceGood AdherenceCategory = "Good"
)

type PatientStatus string

const (
	PatientActive   PatientStatus = "Active"
	PatientInactive PatientStatus = "Inactive"
	PatientDormant  PatientStatus = "Dormant"
)

type HospitalSize string

const (
	HospitalSmall     HospitalSize = "Small"
	HospitalMedium    HospitalSize = "Medium"
	HospitalLarge     HospitalSize = "Large"
	HospitalVeryLarge HospitalSize = "Very Large"
)

// Claim is a cleaned and enriched claim row as it appears in a silver
// artifact and the warehouse claims table.
type Claim struct {
	ClaimID            int          `json:"claim_id"`
	PatientID          int          `json:"patient_id"`
	ProviderID         int          `json:"provider_id"`
	AdmissionDate      time.Time    `json:"admission_date"`
	DischargeDate      time.Time    `json:"discharge_date"`
	ReadmissionDate    *time.Time   `json:"readmission_date,omitempty"`
	DiagnosisCode      string       `json:"diagnosis_code"`
	ProcedureCode      string       `json:"procedure_code"`
	Cost               float64      `json:"cost"`
	InsuranceType      string       `json:"insurance_type"`
	LengthOfStay       int          `json:"length_of_stay"`
	ReadmissionFlag    bool         `json:"readmission_flag"`
	CostPerDay         float64      `json:"cost_per_day"`
	CostCategory       CostCategory `json:"cost_category"`
	LOSCategory        LOSCategory  `json:"los_category"`
	AdmissionMonth     int          `json:"admission_month"`
	AdmissionQuarter   int          `json:"admission_quarter"`
	AdmissionYear      int          `json:"admission_year"`
	AdmissionDayOfWeek string       `json:"admission_dow"`
}

// Patient is a cleaned and enriched patient row.
type Patient struct {
	PatientID          int           `json:"patient_id"`
	Age                int           `json:"age"`
	Gender             Gender        `json:"gender"`
	Race               string        `json:"race"`
	ZipCode            string        `json:"zip_code"`
	InsuranceType      string        `json:"insurance_type"`
	ChronicConditions  int           `json:"chronic_conditions"`
	LastVisitDate      time.Time     `json:"last_visit_date"`
	AgeCategory        AgeCategory   `json:"age_category"`
	RiskLevel          RiskLevel     `json:"risk_level"`
	DaysSinceLastVisit int           `json:"days_since_last_visit"`
	PatientStatus      PatientStatus `json:"patient_status"`
}

// Provider is a cleaned and enriched provider row. AvgCost, ReadmissionRate
// and PatientVolume are zero until the loader recomputes them from loaded
// claims.
type Provider struct {
	ProviderID       int          `json:"provider_id"`
	HospitalName     string       `json:"hospital_name"`
	ProviderType     string       `json:"provider_type"`
	State            string       `json:"state"`
	City             string       `json:"city"`
	Beds             int          `json:"beds"`
	TeachingHospital bool         `json:"teaching_hospital"`
	HospitalSize     HospitalSize `json:"hospital_size"`
	FullAddress      string       `json:"full_address"`
	AvgCost          float64      `json:"avg_cost"`
	ReadmissionRate  float64      `json:"readmission_rate"`
	PatientVolume    int          `json:"patient_volume"`
}

// Prescription is a cleaned and enriched prescription row. MedicationID is
// resolved against the warehouse medications reference table at load time; 0
// is the documented sentinel for unresolved names.
type Prescription struct {
	PrescriptionID     int               `json:"prescription_id"`
	PatientID          int               `json:"patient_id"`
	ProviderID         int               `json:"provider_id"`
	MedicationName     string            `json:"medication_name"`
	MedicationID       int               `json:"medication_id"`
	MedicationCategory string            `json:"medication_category"`
	PrescriptionDate   time.Time         `json:"prescription_date"`
	DaysSupplied       int               `json:"days_supplied"`
	DaysPrescribed     int               `json:"days_prescribed"`
	Quantity           int               `json:"quantity"`
	Cost               float64           `json:"cost"`
	AdherenceRate      float64           `json:"adherence_rate"`
	AdherenceCategory  AdherenceCategory `json:"adherence_category"`
	CostPerDay         float64           `json:"cost_per_day"`
	RxMonth            int               `json:"prescription_month"`
	RxQuarter          int               `json:"prescription_quarter"`
	RxYear             int               `json:"prescription_year"`
}
