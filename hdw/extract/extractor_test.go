package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/hcanalytics/hdw-app/hdw/constants"
	ers "github.com/hcanalytics/hdw-app/hdw/errors"
	"github.com/hcanalytics/hdw-app/hdw/models"
	"github.com/hcanalytics/hdw-app/hdw/store"
)

type ExtractorTestSuite struct {
	suite.Suite

	bronze    *store.Store
	extractor *Extractor
	logHook   *test.Hook
}

func (s *ExtractorTestSuite) SetupTest() {
	var err error
	s.bronze, err = store.New(s.T().TempDir())
	require.NoError(s.T(), err)

	logger, hook := test.NewNullLogger()
	s.logHook = hook
	s.extractor = NewExtractor(logger, s.bronze)

	// Keep the synthetic datasets small for test runs
	s.extractor.generator = &Generator{
		ClaimCount:        50,
		PatientCount:      25,
		ProviderCount:     10,
		PrescriptionCount: 40,
	}
}

func TestExtractorTestSuite(t *testing.T) {
	suite.Run(t, new(ExtractorTestSuite))
}

func (s *ExtractorTestSuite) TestExtractFromFile() {
	assert := assert.New(s.T())

	path := filepath.Join(s.T().TempDir(), "claims.csv")
	csv := "claim_id,patient_id,provider_id,cost\n1,10,5,1500.00\n2,11,6,200.50\n"
	require.NoError(s.T(), os.WriteFile(path, []byte(csv), 0600))

	env, err := s.extractor.Extract(context.Background(), models.EntityClaims, path)
	assert.Nil(err)
	assert.Equal([]string{"claim_id", "patient_id", "provider_id", "cost"}, env.Columns)
	assert.Len(env.Rows, 2)
	assert.Equal(path, env.Provenance.Source)
	assert.Equal(constants.StageBronze, env.Provenance.Stage)
	assert.NotEmpty(env.Provenance.DatasetID)
	assert.False(env.Provenance.Timestamp.IsZero())

	// The bronze artifact must match what was returned
	saved, err := store.Load[models.RawRecord](s.bronze, store.RawName(models.EntityClaims))
	assert.Nil(err)
	assert.Equal(env.Rows, saved.Rows)
}

func (s *ExtractorTestSuite) TestExtractFromFileWithBOM() {
	assert := assert.New(s.T())

	path := filepath.Join(s.T().TempDir(), "patients.csv")
	csv := "\xEF\xBB\xBFpatient_id,age,gender\n1,40,Male\n"
	require.NoError(s.T(), os.WriteFile(path, []byte(csv), 0600))

	env, err := s.extractor.Extract(context.Background(), models.EntityPatients, path)
	assert.Nil(err)
	assert.Equal([]string{"patient_id", "age", "gender"}, env.Columns)
	assert.Len(env.Rows, 1)
}

func (s *ExtractorTestSuite) TestExtractGeneratedWhenNoSource() {
	assert := assert.New(s.T())

	env, err := s.extractor.Extract(context.Background(), models.EntityProviders, "")
	assert.Nil(err)
	assert.Equal(constants.SourceGenerated, env.Provenance.Source)
	assert.Equal(models.RawColumns[models.EntityProviders], env.Columns)
	assert.Len(env.Rows, 10)
}

func (s *ExtractorTestSuite) TestExtractFallsBackWhenSourceMissing() {
	assert := assert.New(s.T())

	env, err := s.extractor.Extract(context.Background(), models.EntityPatients, "/does/not/exist.csv")
	assert.Nil(err)
	assert.Equal(constants.SourceGenerated, env.Provenance.Source)
	assert.Len(env.Rows, 25)

	// The fallback must be visible in the logs
	var warned bool
	for _, entry := range s.logHook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(warned)
}

func (s *ExtractorTestSuite) TestExtractMalformedSourceFails() {
	assert := assert.New(s.T())

	path := filepath.Join(s.T().TempDir(), "claims.csv")
	// Unbalanced quote makes the CSV unreadable; the source exists so this is
	// a real failure, not a fallback.
	require.NoError(s.T(), os.WriteFile(path, []byte("claim_id,cost\n\"1,100\n2"), 0600))

	_, err := s.extractor.Extract(context.Background(), models.EntityClaims, path)
	assert.NotNil(err)
	var srcErr *ers.SourceUnavailableError
	assert.ErrorAs(err, &srcErr)
}

func (s *ExtractorTestSuite) TestExtractFromHTTPSource() {
	assert := assert.New(s.T())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("provider_id,hospital_name,state\n1,General Hospital,CA\n"))
	}))
	defer server.Close()

	env, err := s.extractor.Extract(context.Background(), models.EntityProviders, server.URL)
	assert.Nil(err)
	assert.Equal(server.URL, env.Provenance.Source)
	assert.Len(env.Rows, 1)
}

func (s *ExtractorTestSuite) TestExtractHTTPNotFoundFallsBack() {
	assert := assert.New(s.T())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	env, err := s.extractor.Extract(context.Background(), models.EntityClaims, server.URL)
	assert.Nil(err)
	assert.Equal(constants.SourceGenerated, env.Provenance.Source)
}

func (s *ExtractorTestSuite) TestExtractAll() {
	assert := assert.New(s.T())

	results, err := s.extractor.ExtractAll(context.Background(), nil)
	assert.Nil(err)
	assert.Len(results, 4)
	for _, entity := range models.AllEntities {
		env, ok := results[entity]
		assert.True(ok)
		assert.Equal(constants.SourceGenerated, env.Provenance.Source)
		assert.NotEmpty(env.Rows)
	}
}

func (s *ExtractorTestSuite) TestExtractAllPropagatesFailure() {
	assert := assert.New(s.T())

	path := filepath.Join(s.T().TempDir(), "patients.csv")
	require.NoError(s.T(), os.WriteFile(path, []byte("patient_id\n\"1"), 0600))

	_, err := s.extractor.ExtractAll(context.Background(), map[models.EntityType]string{
		models.EntityPatients: path,
	})
	assert.NotNil(err)
}
