package migrations

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var migrationName = regexp.MustCompile(`^(\d{6})_([a-z_]+)\.(up|down)\.sql$`)

// Every migration must have a matching up/down pair and versions must be
// sequential from 1; golang-migrate silently misbehaves otherwise.
func TestMigrationFilesArePairedAndSequential(t *testing.T) {
	entries, err := os.ReadDir(".")
	require.NoError(t, err)

	ups := make(map[int]string)
	downs := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		m := migrationName.FindStringSubmatch(entry.Name())
		require.NotNil(t, m, "migration %s does not match the naming convention", entry.Name())

		version, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		if m[3] == "up" {
			ups[version] = m[2]
		} else {
			downs[version] = m[2]
		}
	}
	require.NotEmpty(t, ups)

	var versions []int
	for v := range ups {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	for i, v := range versions {
		assert.Equal(t, i+1, v, "migration versions must be sequential")
		assert.Equal(t, ups[v], downs[v], "up/down names must match for version %d", v)
	}
}

func TestMigrationsAreTransactional(t *testing.T) {
	files, err := filepath.Glob("*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		content, err := os.ReadFile(file)
		require.NoError(t, err)

		sql := string(content)
		assert.True(t, strings.HasPrefix(sql, "BEGIN;"), "%s must open a transaction", file)
		assert.Contains(t, sql, "COMMIT;", "%s must commit", file)
	}
}

func TestSchemaDownIsComplete(t *testing.T) {
	up, err := os.ReadFile("000001_create_healthcare_schema.up.sql")
	require.NoError(t, err)
	down, err := os.ReadFile("000001_create_healthcare_schema.down.sql")
	require.NoError(t, err)

	createdTables := regexp.MustCompile(`CREATE TABLE (healthcare\.\w+)`).FindAllStringSubmatch(string(up), -1)
	require.NotEmpty(t, createdTables)
	for _, m := range createdTables {
		assert.Contains(t, string(down), "DROP TABLE IF EXISTS "+m[1], "table %s is not dropped on down", m[1])
	}
}
