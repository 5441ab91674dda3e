package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lepinkainen/cohort/cmd/crr"
	"github.com/lepinkainen/cohort/internal/config"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

var (
	runPeriod   = crr.RunPeriod
	runStep     = crr.RunStep
	runDBInfo   = crr.RunDBInfo
	runCalendar = crr.RunCalendar
)

// CLI represents the complete command structure for the cohort application
type CLI struct {
	// Global flags
	APIKey  string `help:"Poster API access token"`
	DBFile  string `help:"Path to SQLite cache database file" default:"./cohort.db"`
	PerPage int    `help:"Page size for transaction fetches" default:"500"`

	Crr      CrrCmd      `cmd:"" help:"Compute customer retention for a single period"`
	CrrStep  CrrStepCmd  `cmd:"" name:"crr-step" help:"Compute customer retention in monthly or fixed-day steps"`
	DBInfo   DBInfoCmd   `cmd:"" name:"db-info" help:"Show counts and time ranges of the cached data"`
	Calendar CalendarCmd `cmd:"" help:"Print a month calendar for the given date"`
}

// CrrCmd computes retention for one exact period
type CrrCmd struct {
	DateFrom string `arg:"" help:"Period start date (YYYY-MM-DD)"`
	DateTo   string `arg:"" help:"Period end date (YYYY-MM-DD)"`
	Refresh  bool   `help:"Fetch fresh data from the Poster API before computing"`
}

// CrrStepCmd computes retention over stepped sub-periods
type CrrStepCmd struct {
	DateFrom string `arg:"" help:"Range start date (YYYY-MM-DD)"`
	DateTo   string `arg:"" help:"Range end date (YYYY-MM-DD)"`
	Monthly  bool   `help:"Step by true calendar months" xor:"step" required:""`
	Daily    int    `help:"Step by a fixed number of days" xor:"step" required:""`
	Refresh  bool   `help:"Fetch fresh data from the Poster API before computing"`
}

// DBInfoCmd summarizes the cached stores
type DBInfoCmd struct{}

// CalendarCmd prints a month calendar
type CalendarCmd struct {
	Date string `arg:"" help:"Any date inside the month to print (YYYY-MM-DD)"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("cohort"),
		kong.Description("A tool to compute customer retention from Poster POS data."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	err := ctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	// A .env file in the working directory is optional
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env file")
	}

	viper.SetDefault("poster.baseurl", "https://joinposter.com/api/")
	viper.SetDefault("dbfile", "./cohort.db")
	viper.SetDefault("perpage", 500)

	// Enable environment variable support
	viper.AutomaticEnv()
	if err := viper.BindEnv("poster.apikey", "POSTER_API_TOKEN"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("Config file not found, using defaults")
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	if cli.APIKey != "" {
		config.SetAPIToken(cli.APIKey)
	}
	if cli.DBFile != "" {
		config.SetDBFile(cli.DBFile)
	}
	if cli.PerPage > 0 {
		config.PerPage = cli.PerPage
	}
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return t, nil
}

func reportOptions(refresh bool) crr.Options {
	return crr.Options{
		APIKey:  config.APIToken,
		BaseURL: config.APIBaseURL,
		DBFile:  config.DBFile,
		PerPage: config.PerPage,
		Refresh: refresh,
	}
}

// Run methods for each command

func (c *CrrCmd) Run() error {
	start, err := parseDate(c.DateFrom)
	if err != nil {
		return err
	}
	end, err := parseDate(c.DateTo)
	if err != nil {
		return err
	}

	return runPeriod(start, end, reportOptions(c.Refresh))
}

func (c *CrrStepCmd) Run() error {
	start, err := parseDate(c.DateFrom)
	if err != nil {
		return err
	}
	end, err := parseDate(c.DateTo)
	if err != nil {
		return err
	}

	return runStep(start, end, c.Monthly, c.Daily, reportOptions(c.Refresh))
}

func (c *DBInfoCmd) Run() error {
	return runDBInfo(config.DBFile)
}

func (c *CalendarCmd) Run() error {
	date, err := parseDate(c.Date)
	if err != nil {
		return err
	}
	return runCalendar(date)
}

func initLogging() {
	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: slog.LevelInfo,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
