package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcanalytics/hdw-app/hdw/constants"
	ers "github.com/hcanalytics/hdw-app/hdw/errors"
	"github.com/hcanalytics/hdw-app/hdw/models"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	env := Envelope[models.RawRecord]{
		Provenance: models.Provenance{
			DatasetID: "abc-123",
			Source:    "claims.csv",
			Stage:     constants.StageBronze,
			Version:   constants.TransformVersion,
			Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		Columns: []string{"claim_id", "cost"},
		Rows: []models.RawRecord{
			{"1", "1500.00"},
			{"2", "not-a-number"},
		},
	}

	require.NoError(t, Save(s, RawName(models.EntityClaims), env))

	got, err := Load[models.RawRecord](s, RawName(models.EntityClaims))
	require.NoError(t, err)
	assert.Equal(t, env.Provenance, got.Provenance)
	assert.Equal(t, env.Columns, got.Columns)
	assert.Equal(t, env.Rows, got.Rows)
}

func TestSaveOverwritesPriorArtifact(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	first := Envelope[models.RawRecord]{
		Columns: []string{"patient_id"},
		Rows:    []models.RawRecord{{"1"}, {"2"}, {"3"}},
	}
	second := Envelope[models.RawRecord]{
		Columns: []string{"patient_id"},
		Rows:    []models.RawRecord{{"9"}},
	}

	require.NoError(t, Save(s, RawName(models.EntityPatients), first))
	require.NoError(t, Save(s, RawName(models.EntityPatients), second))

	got, err := Load[models.RawRecord](s, RawName(models.EntityPatients))
	require.NoError(t, err)
	assert.Len(t, got.Rows, 1)

	// No temp files should survive the save
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadMissingArtifact(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = Load[models.RawRecord](s, CleanName(models.EntityProviders))
	var notFound *ers.ArtifactNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "providers_clean", notFound.Name)
}

func TestLoadCorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "claims_raw.json"), []byte("{not json"), 0600))

	_, err = Load[models.RawRecord](s, RawName(models.EntityClaims))
	require.Error(t, err)
	var notFound *ers.ArtifactNotFoundError
	assert.False(t, errors.As(err, &notFound))
}

func TestArtifactNames(t *testing.T) {
	assert.Equal(t, "claims_raw", RawName(models.EntityClaims))
	assert.Equal(t, "prescriptions_clean", CleanName(models.EntityPrescriptions))
}
