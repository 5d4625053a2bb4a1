package transform

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/hcanalytics/hdw-app/hdw/models"
)

const dateLayout = "2006-01-02"

// CleanStats summarizes what a clean pass did to one entity's rows.
type CleanStats struct {
	Input      int
	Duplicates int
	Dropped    int
	Output     int
}

// columnIndex maps a raw header to cell positions. Lookups for columns the
// source never carried return -1 through cell().
type columnIndex map[string]int

func indexColumns(columns []string) columnIndex {
	idx := make(columnIndex, len(columns))
	for i, c := range columns {
		idx[strings.TrimSpace(c)] = i
	}
	return idx
}

func (idx columnIndex) cell(row models.RawRecord, column string) string {
	i, ok := idx[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseIntCell(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Sources sometimes carry integer columns as "3.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, false
		}
		return int(f), true
	}
	return v, true
}

func parseFloatCell(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseDateCell(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{dateLayout, time.RFC3339, "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseBoolCell(s string) bool {
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y", "1":
		return true
	}
	return false
}

// cleanDiagnosisCode normalizes ICD-10 codes: uppercase, alphanumerics and
// dots only, and a dot inserted after the category (e.g. E119 -> E11.9) when
// the source dropped it.
func cleanDiagnosisCode(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' {
			b.WriteRune(r)
		}
	}
	code := b.String()

	if len(code) > 3 && unicode.IsLetter(rune(code[0])) && !strings.Contains(code, ".") {
		code = code[:3] + "." + code[3:]
	}
	return code
}

func standardizeGender(s string) models.Gender {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M", "MALE", "1":
		return models.GenderMale
	case "F", "FEMALE", "0":
		return models.GenderFemale
	}
	return models.GenderUnknown
}

// titleCase uppercases the first letter of each word, the way hospital and
// city names are normalized.
func titleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// orUnknown fills a missing categorical value.
func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// seen tracks primary keys during deduplication; the first occurrence wins.
type seen map[int]struct{}

func (s seen) duplicate(id int) bool {
	if _, ok := s[id]; ok {
		return true
	}
	s[id] = struct{}{}
	return false
}

// cleanClaims coerces raw claim rows into typed ones. Hard constraints drop
// a row: unrecoverable identifiers, a non-positive cost, or a length of stay
// outside 0-365 days. Dates are tolerant; an unparseable date becomes the
// zero time and the row survives. Duplicate claim_ids keep their first
// occurrence.
func cleanClaims(idx columnIndex, raw []models.RawRecord) ([]models.Claim, CleanStats) {
	stats := CleanStats{Input: len(raw)}
	keys := make(seen, len(raw))
	out := make([]models.Claim, 0, len(raw))

	for _, row := range raw {
		id, ok := parseIntCell(idx.cell(row, "claim_id"))
		if !ok {
			stats.Dropped++
			continue
		}
		if keys.duplicate(id) {
			stats.Duplicates++
			continue
		}

		patientID, okP := parseIntCell(idx.cell(row, "patient_id"))
		providerID, okV := parseIntCell(idx.cell(row, "provider_id"))
		cost, okC := parseFloatCell(idx.cell(row, "cost"))
		los, okL := parseIntCell(idx.cell(row, "length_of_stay"))
		if !okP || !okV || !okC || cost <= 0 || !okL || los < 0 || los > 365 {
			stats.Dropped++
			continue
		}

		admission, _ := parseDateCell(idx.cell(row, "admission_date"))
		discharge, _ := parseDateCell(idx.cell(row, "discharge_date"))

		claim := models.Claim{
			ClaimID:       id,
			PatientID:     patientID,
			ProviderID:    providerID,
			AdmissionDate: admission,
			DischargeDate: discharge,
			DiagnosisCode: cleanDiagnosisCode(idx.cell(row, "diagnosis_code")),
			ProcedureCode: strings.ToUpper(idx.cell(row, "procedure_code")),
			Cost:          cost,
			InsuranceType: orUnknown(idx.cell(row, "insurance_type")),
			LengthOfStay:  los,
		}
		if readmission, ok := parseDateCell(idx.cell(row, "readmission_date")); ok {
			claim.ReadmissionDate = &readmission
		}
		out = append(out, claim)
	}

	stats.Output = len(out)
	return out, stats
}

// cleanPatients drops rows whose patient_id cannot be recovered or whose age
// falls outside 0-120, and standardizes gender. Missing last_visit_date is
// kept as a zero time; the enrichment pass classifies those patients as
// dormant. Zip codes keep their first five digits.
func cleanPatients(idx columnIndex, raw []models.RawRecord) ([]models.Patient, CleanStats) {
	stats := CleanStats{Input: len(raw)}
	keys := make(seen, len(raw))
	out := make([]models.Patient, 0, len(raw))

	for _, row := range raw {
		id, ok := parseIntCell(idx.cell(row, "patient_id"))
		if !ok {
			stats.Dropped++
			continue
		}
		if keys.duplicate(id) {
			stats.Duplicates++
			continue
		}

		age, okA := parseIntCell(idx.cell(row, "age"))
		if !okA || age < 0 || age > 120 {
			stats.Dropped++
			continue
		}

		zip := idx.cell(row, "zip_code")
		if len(zip) > 5 {
			zip = zip[:5]
		}

		chronic, _ := parseIntCell(idx.cell(row, "chronic_conditions"))
		lastVisit, _ := parseDateCell(idx.cell(row, "last_visit_date"))

		out = append(out, models.Patient{
			PatientID:         id,
			Age:               age,
			Gender:            standardizeGender(idx.cell(row, "gender")),
			Race:              orUnknown(idx.cell(row, "race")),
			ZipCode:           zip,
			InsuranceType:     orUnknown(idx.cell(row, "insurance_type")),
			ChronicConditions: chronic,
			LastVisitDate:     lastVisit,
		})
	}

	stats.Output = len(out)
	return out, stats
}

func cleanProviders(idx columnIndex, raw []models.RawRecord) ([]models.Provider, CleanStats) {
	stats := CleanStats{Input: len(raw)}
	keys := make(seen, len(raw))
	out := make([]models.Provider, 0, len(raw))

	for _, row := range raw {
		id, ok := parseIntCell(idx.cell(row, "provider_id"))
		if !ok {
			stats.Dropped++
			continue
		}
		if keys.duplicate(id) {
			stats.Duplicates++
			continue
		}

		beds, okB := parseIntCell(idx.cell(row, "beds"))
		if !okB || beds <= 0 {
			stats.Dropped++
			continue
		}

		out = append(out, models.Provider{
			ProviderID:       id,
			HospitalName:     titleCase(idx.cell(row, "hospital_name")),
			ProviderType:     titleCase(idx.cell(row, "provider_type")),
			State:            strings.ToUpper(idx.cell(row, "state")),
			City:             titleCase(idx.cell(row, "city")),
			Beds:             beds,
			TeachingHospital: parseBoolCell(idx.cell(row, "teaching_hospital")),
		})
	}

	stats.Output = len(out)
	return out, stats
}

// cleanPrescriptions drops rows whose identifiers cannot be recovered or
// whose numeric supply columns (days supplied, days prescribed, quantity,
// cost) are missing or non-positive. Medication names are title-cased to
// match the reference table.
func cleanPrescriptions(idx columnIndex, raw []models.RawRecord) ([]models.Prescription, CleanStats) {
	stats := CleanStats{Input: len(raw)}
	keys := make(seen, len(raw))
	out := make([]models.Prescription, 0, len(raw))

	for _, row := range raw {
		id, ok := parseIntCell(idx.cell(row, "prescription_id"))
		if !ok {
			stats.Dropped++
			continue
		}
		if keys.duplicate(id) {
			stats.Duplicates++
			continue
		}

		patientID, okP := parseIntCell(idx.cell(row, "patient_id"))
		cost, okC := parseFloatCell(idx.cell(row, "cost"))
		supplied, okS := parseIntCell(idx.cell(row, "days_supplied"))
		prescribed, okD := parseIntCell(idx.cell(row, "days_prescribed"))
		quantity, okQ := parseIntCell(idx.cell(row, "quantity"))
		if !okP || !okC || !okS || !okD || !okQ ||
			cost <= 0 || supplied <= 0 || prescribed <= 0 || quantity <= 0 {
			stats.Dropped++
			continue
		}

		providerID, _ := parseIntCell(idx.cell(row, "provider_id"))
		rxDate, _ := parseDateCell(idx.cell(row, "prescription_date"))

		out = append(out, models.Prescription{
			PrescriptionID:   id,
			PatientID:        patientID,
			ProviderID:       providerID,
			MedicationName:   titleCase(idx.cell(row, "medication_name")),
			PrescriptionDate: rxDate,
			DaysSupplied:     supplied,
			DaysPrescribed:   prescribed,
			Quantity:         quantity,
			Cost:             cost,
		})
	}

	stats.Output = len(out)
	return out, stats
}
