package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hcanalytics/hdw-app/conf"
)

func TestGetEnvInt(t *testing.T) {
	conf.SetEnv(t, "UTEST_INT", "42")
	defer conf.UnsetEnv(t, "UTEST_INT")
	assert.Equal(t, 42, GetEnvInt("UTEST_INT", 7))
	assert.Equal(t, 7, GetEnvInt("UTEST_INT_MISSING", 7))

	conf.SetEnv(t, "UTEST_INT_BAD", "not-a-number")
	defer conf.UnsetEnv(t, "UTEST_INT_BAD")
	assert.Equal(t, 7, GetEnvInt("UTEST_INT_BAD", 7))
}

func TestGetEnvString(t *testing.T) {
	conf.SetEnv(t, "UTEST_STR", "silver")
	defer conf.UnsetEnv(t, "UTEST_STR")
	assert.Equal(t, "silver", GetEnvString("UTEST_STR", "bronze"))
	assert.Equal(t, "bronze", GetEnvString("UTEST_STR_MISSING", "bronze"))
}
