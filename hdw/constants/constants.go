package constants

// This is set during compilation. See build_and_package.sh in the ops repo.
var Version = "latest"

// Pipeline stages stamped into dataset provenance.
const (
	StageBronze = "bronze"
	StageSilver = "silver"
)

// ETLVersion is recorded in bronze provenance; TransformVersion tags every
// silver artifact produced by this build of the transformer.
const (
	ETLVersion       = "1.0.0"
	TransformVersion = "1.0.0"
)

// Bronze and silver artifact name suffixes, e.g. claims_raw.json.
const (
	RawSuffix   = "_raw"
	CleanSuffix = "_clean"
)

// SourceGenerated is recorded as the provenance source when an entity had no
// configured input and the synthetic fixture generator produced its rows.
const SourceGenerated = "generated"

// DefaultBatchSize bounds fact-table load transactions.
const DefaultBatchSize = 1000

// ReadmissionWindowDays is the qualifying window between discharge and
// readmission.
const ReadmissionWindowDays = 30

// UnresolvedMedicationID is the documented sentinel for prescription rows
// whose medication name has no match in the medications reference table.
const UnresolvedMedicationID = 0

// WarehouseSchema is the Postgres schema holding all warehouse tables and
// views.
const WarehouseSchema = "healthcare"

// Step results reported to the scheduler.
const (
	StepSuccess = "Completed"
	StepFailure = "Failed"
)
