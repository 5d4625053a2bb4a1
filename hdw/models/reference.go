package models

// MedicationCategories maps medication names to their therapeutic category.
// Names not present here derive a medication_category of "Other". The same
// mapping seeds the warehouse medications reference table (see
// db/migrations).
var MedicationCategories = map[string]string{
	"Metformin":           "Diabetes",
	"Lisinopril":          "Cardiovascular",
	"Atorvastatin":        "Cardiovascular",
	"Metoprolol":          "Cardiovascular",
	"Omeprazole":          "Gastrointestinal",
	"Amlodipine":          "Cardiovascular",
	"Hydrochlorothiazide": "Cardiovascular",
	"Simvastatin":         "Cardiovascular",
	"Losartan":            "Cardiovascular",
	"Albuterol":           "Respiratory",
	"Levothyroxine":       "Endocrine",
	"Gabapentin":          "Neurological",
	"Hydrocodone":         "Pain Management",
	"Tramadol":            "Pain Management",
	"Furosemide":          "Cardiovascular",
	"Pantoprazole":        "Gastrointestinal",
	"Sertraline":          "Mental Health",
	"Trazodone":           "Mental Health",
	"Montelukast":         "Respiratory",
	"Clonazepam":          "Neurological",
}

// MedicationCategoryOther is derived for any medication name without a
// reference entry.
const MedicationCategoryOther = "Other"
