package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func resetConfig(t *testing.T) {
	origToken := APIToken
	origBaseURL := APIBaseURL
	origDBFile := DBFile
	origPerPage := PerPage

	t.Cleanup(func() {
		APIToken = origToken
		APIBaseURL = origBaseURL
		DBFile = origDBFile
		PerPage = origPerPage
		viper.Reset()
	})

	viper.Reset()
}

func TestInitConfigDefaults(t *testing.T) {
	resetConfig(t)

	InitConfig()

	assert.Equal(t, "", APIToken)
	assert.Equal(t, "https://joinposter.com/api/", APIBaseURL)
	assert.Equal(t, "./cohort.db", DBFile)
	assert.Equal(t, 500, PerPage)
}

func TestInitConfigReadsViper(t *testing.T) {
	resetConfig(t)

	viper.Set("poster.apikey", "abc123")
	viper.Set("dbfile", "/data/cohort.db")
	viper.Set("perpage", 100)

	InitConfig()

	assert.Equal(t, "abc123", APIToken)
	assert.Equal(t, "/data/cohort.db", DBFile)
	assert.Equal(t, 100, PerPage)
}

func TestSetters(t *testing.T) {
	resetConfig(t)

	SetAPIToken("tok")
	assert.Equal(t, "tok", APIToken)

	SetDBFile("/tmp/other.db")
	assert.Equal(t, "/tmp/other.db", DBFile)
}
