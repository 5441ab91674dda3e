package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// APIToken is the Poster API access token
	APIToken string
	// APIBaseURL is the Poster API base URL
	APIBaseURL string
	// DBFile is the path to the SQLite cache database
	DBFile string
	// PerPage is the page size used for transaction fetches
	PerPage int
)

// InitConfig initializes the global configuration
func InitConfig() {
	// Set default values
	viper.SetDefault("poster.baseurl", "https://joinposter.com/api/")
	viper.SetDefault("dbfile", "./cohort.db")
	viper.SetDefault("perpage", 500)

	// Get values from viper
	APIToken = viper.GetString("poster.apikey")
	APIBaseURL = viper.GetString("poster.baseurl")
	DBFile = viper.GetString("dbfile")
	PerPage = viper.GetInt("perpage")
}

// SetAPIToken sets the Poster API token
func SetAPIToken(token string) {
	APIToken = token
}

// SetDBFile sets the cache database path
func SetDBFile(path string) {
	DBFile = path
}
