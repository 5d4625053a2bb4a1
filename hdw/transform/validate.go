package transform

import (
	"github.com/sirupsen/logrus"

	ers "github.com/hcanalytics/hdw-app/hdw/errors"
	"github.com/hcanalytics/hdw-app/hdw/models"
)

// Costs above this are legal but suspicious enough to warn about.
const softCostCeiling = 1_000_000

// requireColumns is the hard validation gate: every required column for the
// entity must be present in the extracted header or the transform aborts.
func requireColumns(entity models.EntityType, columns []string) error {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}

	var missing []string
	for _, c := range models.RequiredColumns[entity] {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &ers.ValidationError{Entity: entity.String(), MissingColumns: missing}
	}
	return nil
}

// warnClaims flags data that is valid but implausible. Warnings never fail
// the transform.
func warnClaims(logger logrus.FieldLogger, claims []models.Claim) {
	var extreme int
	for _, c := range claims {
		if c.Cost > softCostCeiling {
			extreme++
		}
	}
	if extreme > 0 {
		logger.WithFields(logrus.Fields{"entity": models.EntityClaims, "rows": extreme}).
			Warnf("Found %d claims with cost above $%d", extreme, softCostCeiling)
	}
}

func warnPatients(logger logrus.FieldLogger, patients []models.Patient) {
	var outOfRange int
	for _, p := range patients {
		if p.Age < 0 || p.Age > 120 {
			outOfRange++
		}
	}
	if outOfRange > 0 {
		logger.WithFields(logrus.Fields{"entity": models.EntityPatients, "rows": outOfRange}).
			Warnf("Found %d patients with age outside 0-120", outOfRange)
	}
}
