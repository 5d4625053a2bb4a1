package extract

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/hcanalytics/hdw-app/hdw/models"
)

// The generator is a fixture capability for environments without live data.
// It is only invoked when an entity has no usable source, and it is seeded so
// that repeated runs produce identical datasets.
const generatorSeed = 42

// Default record volumes, matching the reference fixtures consumed by the
// reporting dashboards.
const (
	defaultClaimCount        = 10000
	defaultPatientCount      = 5000
	defaultProviderCount     = 100
	defaultPrescriptionCount = 15000
)

const dateLayout = "2006-01-02"

var (
	diagnosisCodes = []string{
		"E11.9", "I25.10", "F32.9", "M79.3", "K21.9", "G43.909", "M25.561",
		"R06.02", "Z87.891", "I10", "E78.5", "M54.5", "R50.9", "K59.00",
		"J44.1", "N18.6", "I48.91", "G47.00", "R10.9",
	}
	procedureCodes = []string{
		"99213", "99214", "99215", "99281", "99282", "99283", "99284", "99285",
		"99201", "99202", "99203", "99204", "99205", "99211", "99212",
	}
	insuranceTypes = []string{"Medicare", "Medicaid", "Private", "Self-Pay"}
	races          = []string{"White", "Black", "Hispanic", "Asian", "Other"}
	hospitalNames  = []string{
		"General Hospital", "City Medical Center", "Regional Health System",
		"University Hospital", "Community Health Center", "Metro General",
		"St. Mary's Hospital", "Children's Hospital", "Memorial Medical",
		"Valley Regional Hospital", "Central Medical", "Northside Hospital",
		"Southwest Medical", "Eastside Health", "Westside Medical Center",
	}
	providerTypes = []string{"Hospital", "Clinic", "Emergency", "Specialty"}
	providerState = []string{
		"CA", "NY", "TX", "FL", "IL", "PA", "OH", "GA", "NC", "MI",
		"VA", "WA", "AZ", "CO", "TN",
	}
	medicationNames = []string{
		"Metformin", "Lisinopril", "Atorvastatin", "Metoprolol", "Omeprazole",
		"Amlodipine", "Hydrochlorothiazide", "Simvastatin", "Losartan", "Albuterol",
		"Levothyroxine", "Gabapentin", "Hydrocodone", "Tramadol", "Furosemide",
		"Pantoprazole", "Sertraline", "Trazodone", "Montelukast", "Clonazepam",
	}
)

// Generator produces deterministic synthetic datasets for each entity. Record
// counts are exposed so tests can scale them down.
type Generator struct {
	ClaimCount        int
	PatientCount      int
	ProviderCount     int
	PrescriptionCount int
}

func NewGenerator() *Generator {
	return &Generator{
		ClaimCount:        defaultClaimCount,
		PatientCount:      defaultPatientCount,
		ProviderCount:     defaultProviderCount,
		PrescriptionCount: defaultPrescriptionCount,
	}
}

// Generate returns the raw column set and rows for one entity. Each call
// reseeds, so generation is reproducible per entity regardless of call order.
func (g *Generator) Generate(entity models.EntityType) ([]string, []models.RawRecord) {
	rng := rand.New(rand.NewSource(generatorSeed))

	switch entity {
	case models.EntityClaims:
		return models.RawColumns[entity], g.claims(rng)
	case models.EntityPatients:
		return models.RawColumns[entity], g.patients(rng)
	case models.EntityProviders:
		return models.RawColumns[entity], g.providers(rng)
	case models.EntityPrescriptions:
		return models.RawColumns[entity], g.prescriptions(rng)
	}
	return nil, nil
}

func (g *Generator) claims(rng *rand.Rand) []models.RawRecord {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	rows := make([]models.RawRecord, 0, g.ClaimCount)
	for i := 1; i <= g.ClaimCount; i++ {
		admission := spread(start, end, i-1, g.ClaimCount)
		los := poisson(rng, 3)
		discharge := admission.AddDate(0, 0, maxInt(los, 1))

		readmission := ""
		if rng.Float64() < 0.15 {
			readmission = discharge.AddDate(0, 0, 1+rng.Intn(29)).Format(dateLayout)
		}

		rows = append(rows, models.RawRecord{
			strconv.Itoa(i),
			strconv.Itoa(1 + rng.Intn(g.PatientCount)),
			strconv.Itoa(1 + rng.Intn(g.ProviderCount)),
			admission.Format(dateLayout),
			discharge.Format(dateLayout),
			pick(rng, diagnosisCodes),
			pick(rng, procedureCodes),
			money(rng.ExpFloat64() * 5000),
			pick(rng, insuranceTypes),
			strconv.Itoa(los),
			readmission,
		})
	}
	return rows
}

func (g *Generator) patients(rng *rand.Rand) []models.RawRecord {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	rows := make([]models.RawRecord, 0, g.PatientCount)
	for i := 1; i <= g.PatientCount; i++ {
		gender := "Male"
		if rng.Intn(2) == 1 {
			gender = "Female"
		}

		rows = append(rows, models.RawRecord{
			strconv.Itoa(i),
			strconv.Itoa(18 + rng.Intn(82)),
			gender,
			pick(rng, races),
			strconv.Itoa(10000 + rng.Intn(89999)),
			pick(rng, insuranceTypes),
			strconv.Itoa(rng.Intn(6)),
			spread(start, end, i-1, g.PatientCount).Format(dateLayout),
		})
	}
	return rows
}

func (g *Generator) providers(rng *rand.Rand) []models.RawRecord {
	rows := make([]models.RawRecord, 0, g.ProviderCount)
	for i := 1; i <= g.ProviderCount; i++ {
		rows = append(rows, models.RawRecord{
			strconv.Itoa(i),
			pick(rng, hospitalNames),
			pick(rng, providerTypes),
			pick(rng, providerState),
			fmt.Sprintf("City_%d", i),
			strconv.Itoa(50 + rng.Intn(950)),
			strconv.FormatBool(rng.Intn(2) == 1),
		})
	}
	return rows
}

func (g *Generator) prescriptions(rng *rand.Rand) []models.RawRecord {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	rows := make([]models.RawRecord, 0, g.PrescriptionCount)
	for i := 1; i <= g.PrescriptionCount; i++ {
		rows = append(rows, models.RawRecord{
			strconv.Itoa(i),
			strconv.Itoa(1 + rng.Intn(g.PatientCount)),
			strconv.Itoa(1 + rng.Intn(g.ProviderCount)),
			pick(rng, medicationNames),
			spread(start, end, i-1, g.PrescriptionCount).Format(dateLayout),
			strconv.Itoa(7 + rng.Intn(83)),
			strconv.Itoa(7 + rng.Intn(83)),
			strconv.Itoa(30 + rng.Intn(470)),
			money(rng.ExpFloat64() * 50),
		})
	}
	return rows
}

// spread places the i-th of n records evenly across [start, end], mirroring
// the evenly spaced date ranges of the reference fixtures.
func spread(start, end time.Time, i, n int) time.Time {
	if n <= 1 {
		return start
	}
	step := end.Sub(start) / time.Duration(n-1)
	return start.Add(step * time.Duration(i))
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func money(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}

// poisson draws from a Poisson distribution via Knuth's method; lambda is
// small here so the loop stays short.
func poisson(rng *rand.Rand, lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
