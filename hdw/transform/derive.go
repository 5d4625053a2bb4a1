package transform

import (
	"fmt"
	"math"
	"time"

	"github.com/hcanalytics/hdw-app/hdw/constants"
	"github.com/hcanalytics/hdw-app/hdw/models"
)

// costCategory buckets a claim cost. Negative costs never reach this point;
// they are dropped during cleaning.
func costCategory(cost float64) models.CostCategory {
	switch {
	case cost <= 1000:
		return models.CostLow
	case cost <= 5000:
		return models.CostMedium
	case cost <= 15000:
		return models.CostHigh
	}
	return models.CostVeryHigh
}

func losCategory(days int) models.LOSCategory {
	switch {
	case days <= 1:
		return models.LOSSameDay
	case days <= 3:
		return models.LOSShort
	case days <= 7:
		return models.LOSMedium
	}
	return models.LOSLong
}

func ageCategory(age int) models.AgeCategory {
	switch {
	case age <= 18:
		return models.AgePediatric
	case age <= 35:
		return models.AgeYoungAdult
	case age <= 50:
		return models.AgeAdult
	case age <= 65:
		return models.AgeMiddleAge
	}
	return models.AgeSenior
}

func riskLevel(chronicConditions int) models.RiskLevel {
	switch {
	case chronicConditions <= 0:
		return models.RiskLow
	case chronicConditions <= 2:
		return models.RiskMedium
	case chronicConditions <= 4:
		return models.RiskHigh
	}
	return models.RiskVeryHigh
}

func adherenceCategory(rate float64) models.AdherenceCategory {
	switch {
	case rate <= 0.5:
		return models.AdherencePoor
	case rate <= 0.8:
		return models.AdherenceFair
	}
	return models.AdherenceGood
}

func patientStatus(daysSinceLastVisit int) models.PatientStatus {
	switch {
	case daysSinceLastVisit <= 90:
		return models.PatientActive
	case daysSinceLastVisit <= 365:
		return models.PatientInactive
	}
	return models.PatientDormant
}

func hospitalSize(beds int) models.HospitalSize {
	switch {
	case beds <= 100:
		return models.HospitalSmall
	case beds <= 300:
		return models.HospitalMedium
	case beds <= 600:
		return models.HospitalLarge
	}
	return models.HospitalVeryLarge
}

func quarter(month time.Month) int {
	return (int(month)-1)/3 + 1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// deriveClaim computes the enrichment columns for one cleaned claim. The
// readmission flag is set only when a readmission happened after discharge
// and within the 30-day window.
func deriveClaim(c *models.Claim) {
	// +1 keeps same-day stays from dividing by zero
	c.CostPerDay = round2(c.Cost / float64(c.LengthOfStay+1))
	c.CostCategory = costCategory(c.Cost)
	c.LOSCategory = losCategory(c.LengthOfStay)

	c.ReadmissionFlag = false
	if c.ReadmissionDate != nil && !c.DischargeDate.IsZero() {
		gap := c.ReadmissionDate.Sub(c.DischargeDate).Hours() / 24
		c.ReadmissionFlag = gap > 0 && gap <= constants.ReadmissionWindowDays
	}

	if !c.AdmissionDate.IsZero() {
		c.AdmissionMonth = int(c.AdmissionDate.Month())
		c.AdmissionQuarter = quarter(c.AdmissionDate.Month())
		c.AdmissionYear = c.AdmissionDate.Year()
		c.AdmissionDayOfWeek = c.AdmissionDate.Weekday().String()
	}
}

// derivePatient computes the enrichment columns for one cleaned patient.
// Recency is measured against the supplied reference time so runs are
// reproducible in tests; a zero last_visit_date classifies as dormant.
func derivePatient(p *models.Patient, now time.Time) {
	p.AgeCategory = ageCategory(p.Age)
	p.RiskLevel = riskLevel(p.ChronicConditions)

	if p.LastVisitDate.IsZero() {
		p.DaysSinceLastVisit = int(now.Sub(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)).Hours() / 24)
	} else {
		p.DaysSinceLastVisit = int(now.Sub(p.LastVisitDate).Hours() / 24)
	}
	if p.DaysSinceLastVisit < 0 {
		p.DaysSinceLastVisit = 0
	}
	p.PatientStatus = patientStatus(p.DaysSinceLastVisit)
}

func deriveProvider(p *models.Provider) {
	p.HospitalSize = hospitalSize(p.Beds)
	p.FullAddress = fmt.Sprintf("%s, %s", p.City, p.State)
}

// derivePrescription computes adherence and cost enrichment for one cleaned
// prescription. The adherence rate is days supplied over days prescribed,
// clipped to [0, 1]; an unknown prescribed duration counts as zero adherence.
func derivePrescription(rx *models.Prescription) {
	rate := 0.0
	if rx.DaysPrescribed > 0 {
		rate = float64(rx.DaysSupplied) / float64(rx.DaysPrescribed)
		if rate > 1 {
			rate = 1
		}
		if rate < 0 {
			rate = 0
		}
	}
	// Bucket on the exact rate; rounding is presentation only and must not
	// move a rate across a category boundary.
	rx.AdherenceCategory = adherenceCategory(rate)
	rx.AdherenceRate = round2(rate)

	rx.CostPerDay = 0
	if rx.DaysSupplied > 0 {
		rx.CostPerDay = round2(rx.Cost / float64(rx.DaysSupplied))
	}

	if category, ok := models.MedicationCategories[rx.MedicationName]; ok {
		rx.MedicationCategory = category
	} else {
		rx.MedicationCategory = models.MedicationCategoryOther
	}

	if !rx.PrescriptionDate.IsZero() {
		rx.RxMonth = int(rx.PrescriptionDate.Month())
		rx.RxQuarter = quarter(rx.PrescriptionDate.Month())
		rx.RxYear = rx.PrescriptionDate.Year()
	}
}
