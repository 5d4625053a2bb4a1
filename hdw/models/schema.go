package models

// Canonical raw column names per entity. Sources may carry extra columns;
// these are the ones the pipeline reads.
var RawColumns = map[EntityType][]string{
	EntityClaims: {
		"claim_id", "patient_id", "provider_id", "admission_date",
		"discharge_date", "diagnosis_code", "procedure_code", "cost",
		"insurance_type", "length_of_stay", "readmission_date",
	},
	EntityPatients: {
		"patient_id", "age", "gender", "race", "zip_code", "insurance_type",
		"chronic_conditions", "last_visit_date",
	},
	EntityProviders: {
		"provider_id", "hospital_name", "provider_type", "state", "city",
		"beds", "teaching_hospital",
	},
	EntityPrescriptions: {
		"prescription_id", "patient_id", "provider_id", "medication_name",
		"prescription_date", "days_supplied", "days_prescribed", "quantity",
		"cost",
	},
}

// RequiredColumns is the hard validation gate applied after each entity's
// transform. A missing column aborts that entity's transform.
var RequiredColumns = map[EntityType][]string{
	EntityClaims:        {"claim_id", "patient_id", "provider_id", "diagnosis_code", "cost"},
	EntityPatients:      {"patient_id", "age", "gender"},
	EntityProviders:     {"provider_id", "hospital_name", "state"},
	EntityPrescriptions: {"prescription_id", "patient_id", "medication_name", "cost"},
}

// PrimaryKey names the deduplication key per entity.
var PrimaryKey = map[EntityType]string{
	EntityClaims:        "claim_id",
	EntityPatients:      "patient_id",
	EntityProviders:     "provider_id",
	EntityPrescriptions: "prescription_id",
}
