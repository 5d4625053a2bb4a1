package transform

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hcanalytics/hdw-app/hdw/models"
)

func date(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCostCategory(t *testing.T) {
	tests := []struct {
		cost     float64
		expected models.CostCategory
	}{
		{0, models.CostLow},
		{1000, models.CostLow},
		{1000.01, models.CostMedium},
		{5000, models.CostMedium},
		{5000.01, models.CostHigh},
		{15000, models.CostHigh},
		{15000.01, models.CostVeryHigh},
		{2000000, models.CostVeryHigh},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.cost), func(t *testing.T) {
			assert.Equal(t, tt.expected, costCategory(tt.cost))
		})
	}
}

func TestLOSCategory(t *testing.T) {
	tests := []struct {
		days     int
		expected models.LOSCategory
	}{
		{0, models.LOSSameDay},
		{1, models.LOSSameDay},
		{2, models.LOSShort},
		{3, models.LOSShort},
		{4, models.LOSMedium},
		{7, models.LOSMedium},
		{8, models.LOSLong},
		{60, models.LOSLong},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.days), func(t *testing.T) {
			assert.Equal(t, tt.expected, losCategory(tt.days))
		})
	}
}

func TestAgeCategory(t *testing.T) {
	tests := []struct {
		age      int
		expected models.AgeCategory
	}{
		{1, models.AgePediatric},
		{18, models.AgePediatric},
		{19, models.AgeYoungAdult},
		{35, models.AgeYoungAdult},
		{36, models.AgeAdult},
		{50, models.AgeAdult},
		{51, models.AgeMiddleAge},
		{65, models.AgeMiddleAge},
		{66, models.AgeSenior},
		{100, models.AgeSenior},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.age), func(t *testing.T) {
			assert.Equal(t, tt.expected, ageCategory(tt.age))
		})
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		conditions int
		expected   models.RiskLevel
	}{
		{0, models.RiskLow},
		{1, models.RiskMedium},
		{2, models.RiskMedium},
		{3, models.RiskHigh},
		{4, models.RiskHigh},
		{5, models.RiskVeryHigh},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.conditions), func(t *testing.T) {
			assert.Equal(t, tt.expected, riskLevel(tt.conditions))
		})
	}
}

func TestAdherenceCategory(t *testing.T) {
	tests := []struct {
		rate     float64
		expected models.AdherenceCategory
	}{
		{0, models.AdherencePoor},
		{0.5, models.AdherencePoor},
		{0.51, models.AdherenceFair},
		{0.8, models.AdherenceFair},
		{0.81, models.AdherenceGood},
		{1.0, models.AdherenceGood},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.rate), func(t *testing.T) {
			assert.Equal(t, tt.expected, adherenceCategory(tt.rate))
		})
	}
}

func TestPatientStatus(t *testing.T) {
	tests := []struct {
		days     int
		expected models.PatientStatus
	}{
		{0, models.PatientActive},
		{90, models.PatientActive},
		{91, models.PatientInactive},
		{365, models.PatientInactive},
		{366, models.PatientDormant},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.days), func(t *testing.T) {
			assert.Equal(t, tt.expected, patientStatus(tt.days))
		})
	}
}

func TestHospitalSize(t *testing.T) {
	tests := []struct {
		beds     int
		expected models.HospitalSize
	}{
		{50, models.HospitalSmall},
		{100, models.HospitalSmall},
		{101, models.HospitalMedium},
		{300, models.HospitalMedium},
		{301, models.HospitalLarge},
		{600, models.HospitalLarge},
		{601, models.HospitalVeryLarge},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.beds), func(t *testing.T) {
			assert.Equal(t, tt.expected, hospitalSize(tt.beds))
		})
	}
}

func TestDeriveClaimReadmissionWindow(t *testing.T) {
	within := date("2023-03-15")
	outside := date("2023-04-09")

	sameDay := date("2023-02-28")

	tests := []struct {
		name        string
		readmission *time.Time
		expected    bool
	}{
		{"within 30 days", &within, true},
		{"after 30 days", &outside, false},
		{"same day as discharge", &sameDay, false},
		{"no readmission", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := models.Claim{
				AdmissionDate:   date("2023-02-25"),
				DischargeDate:   date("2023-02-28"),
				ReadmissionDate: tt.readmission,
				Cost:            4000,
				LengthOfStay:    3,
			}
			deriveClaim(&c)
			assert.Equal(t, tt.expected, c.ReadmissionFlag)
		})
	}
}

func TestDeriveClaimEnrichment(t *testing.T) {
	c := models.Claim{
		AdmissionDate: date("2023-02-25"),
		DischargeDate: date("2023-02-28"),
		Cost:          4000,
		LengthOfStay:  3,
	}
	deriveClaim(&c)

	assert.Equal(t, 1000.0, c.CostPerDay)
	assert.Equal(t, models.CostMedium, c.CostCategory)
	assert.Equal(t, models.LOSShort, c.LOSCategory)
	assert.Equal(t, 2, c.AdmissionMonth)
	assert.Equal(t, 1, c.AdmissionQuarter)
	assert.Equal(t, 2023, c.AdmissionYear)
	assert.Equal(t, "Saturday", c.AdmissionDayOfWeek)
}

func TestDeriveClaimSameDayStay(t *testing.T) {
	c := models.Claim{
		AdmissionDate: date("2023-06-01"),
		DischargeDate: date("2023-06-01"),
		Cost:          500,
	}
	deriveClaim(&c)

	assert.Equal(t, 500.0, c.CostPerDay)
	assert.Equal(t, models.LOSSameDay, c.LOSCategory)
}

func TestDerivePatient(t *testing.T) {
	now := date("2023-06-01")

	p := models.Patient{Age: 72, ChronicConditions: 5, LastVisitDate: date("2023-05-15")}
	derivePatient(&p, now)
	assert.Equal(t, models.AgeSenior, p.AgeCategory)
	assert.Equal(t, models.RiskVeryHigh, p.RiskLevel)
	assert.Equal(t, 17, p.DaysSinceLastVisit)
	assert.Equal(t, models.PatientActive, p.PatientStatus)

	dormant := models.Patient{Age: 40, LastVisitDate: date("2021-01-01")}
	derivePatient(&dormant, now)
	assert.Equal(t, models.PatientDormant, dormant.PatientStatus)

	noVisit := models.Patient{Age: 40}
	derivePatient(&noVisit, now)
	assert.Equal(t, models.PatientDormant, noVisit.PatientStatus)
}

func TestDeriveProvider(t *testing.T) {
	p := models.Provider{City: "Springfield", State: "IL", Beds: 450}
	deriveProvider(&p)

	assert.Equal(t, "Springfield, IL", p.FullAddress)
	assert.Equal(t, models.HospitalLarge, p.HospitalSize)
}

func TestDerivePrescriptionAdherence(t *testing.T) {
	tests := []struct {
		name       string
		supplied   int
		prescribed int
		rate       float64
		category   models.AdherenceCategory
	}{
		{"full adherence", 90, 90, 1.0, models.AdherenceGood},
		{"oversupplied clips to one", 90, 30, 1.0, models.AdherenceGood},
		{"partial", 21, 30, 0.7, models.AdherenceFair},
		{"poor", 10, 30, 0.33, models.AdherencePoor},
		{"unknown prescribed counts as zero", 30, 0, 0, models.AdherencePoor},
		{"just above good boundary buckets before rounding", 801, 1000, 0.8, models.AdherenceGood},
		{"just above fair boundary buckets before rounding", 501, 1000, 0.5, models.AdherenceFair},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rx := models.Prescription{
				DaysSupplied:     tt.supplied,
				DaysPrescribed:   tt.prescribed,
				Cost:             60,
				PrescriptionDate: date("2023-08-10"),
			}
			derivePrescription(&rx)
			assert.Equal(t, tt.rate, rx.AdherenceRate)
			assert.Equal(t, tt.category, rx.AdherenceCategory)
		})
	}
}

func TestDerivePrescriptionEnrichment(t *testing.T) {
	rx := models.Prescription{
		MedicationName:   "Metformin",
		DaysSupplied:     30,
		DaysPrescribed:   30,
		Quantity:         60,
		Cost:             45,
		PrescriptionDate: date("2023-08-10"),
	}
	derivePrescription(&rx)

	assert.Equal(t, "Diabetes", rx.MedicationCategory)
	assert.Equal(t, 1.5, rx.CostPerDay)
	assert.Equal(t, 8, rx.RxMonth)
	assert.Equal(t, 3, rx.RxQuarter)
	assert.Equal(t, 2023, rx.RxYear)

	unknown := models.Prescription{MedicationName: "Experimentazol", PrescriptionDate: date("2023-08-10")}
	derivePrescription(&unknown)
	assert.Equal(t, models.MedicationCategoryOther, unknown.MedicationCategory)
}
