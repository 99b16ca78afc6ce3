package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/manuiageek/CruiseWatch-Tahiti/internal/export"
	"github.com/manuiageek/CruiseWatch-Tahiti/internal/schedule"
)

var version = "dev"

const defaultURL = "https://www.portdepapeete.pf/fr/previsions-navires"

var (
	targetURL    string
	timeoutMS    int
	headful      bool
	csvPath      string
	jsonPath     string
	printOut     bool
	typeOnly     string
	noTypeFilter bool
	logLevel     string
	proxyURL     string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:     "cruisewatch",
		Short:   "Ship forecast scraper for the Port de Papeete",
		Version: version,
		Long: `cruisewatch extracts the ship forecast table from the Port de Papeete
public page (including when the table lives inside an iframe), normalizes it
into records and exports the result as JSON or CSV.`,
		Example: `  # Print the schedule as JSON on stdout
  cruisewatch

  # Export both files
  cruisewatch --json out.json --csv out.csv

  # Keep every vessel type, verbose logs, visible browser
  cruisewatch --no-type-filter --log-level DEBUG --headful`,
		Args:          cobra.NoArgs,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVar(&targetURL, "url", defaultURL, "Page to scrape")
	rootCmd.Flags().IntVar(&timeoutMS, "timeout", 45000, "Navigation timeout in milliseconds")
	rootCmd.Flags().BoolVar(&headful, "headful", false, "Run the browser with a visible window")
	rootCmd.Flags().StringVar(&csvPath, "csv", "", "CSV output file path")
	rootCmd.Flags().StringVar(&jsonPath, "json", "", "JSON output file path")
	rootCmd.Flags().BoolVar(&printOut, "print", false, "Print records to stdout even when files are written")
	rootCmd.Flags().StringVar(&typeOnly, "type-only", "PAQUEBOT", "Keep only records of this vessel type")
	rootCmd.Flags().BoolVar(&noTypeFilter, "no-type-filter", false, "Disable the vessel type filter")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	rootCmd.Flags().StringVar(&proxyURL, "proxy", os.Getenv("CRUISEWATCH_PROXY"), "Proxy URL (e.g. http://127.0.0.1:7890), defaults to CRUISEWATCH_PROXY env var")

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, schedule.ErrNoTable) {
			os.Exit(2)
		}
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		return err
	}
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(level)

	log.Debug().
		Str("url", targetURL).
		Int("timeout_ms", timeoutMS).
		Bool("headful", headful).
		Str("type_only", typeOnly).
		Bool("no_type_filter", noTypeFilter).
		Msg("arguments")

	opts := schedule.Options{
		URL:          targetURL,
		Timeout:      time.Duration(timeoutMS) * time.Millisecond,
		Headful:      headful,
		ProxyURL:     proxyURL,
		TypeOnly:     typeOnly,
		NoTypeFilter: noTypeFilter,
	}

	bundle, err := schedule.Scrape(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonPath != "" {
		log.Info().Str("path", jsonPath).Msg("writing JSON")
		if err := export.WriteJSON(jsonPath, *bundle); err != nil {
			return fmt.Errorf("failed to write JSON file: %w", err)
		}
	}
	if csvPath != "" {
		log.Info().Str("path", csvPath).Msg("writing CSV")
		if err := export.WriteCSV(csvPath, *bundle); err != nil {
			return fmt.Errorf("failed to write CSV file: %w", err)
		}
	}
	if printOut || (jsonPath == "" && csvPath == "") {
		log.Debug().Msg("printing JSON to stdout")
		if err := export.Print(os.Stdout, *bundle); err != nil {
			return fmt.Errorf("failed to print records: %w", err)
		}
	}

	return nil
}

// parseLogLevel maps the CLI level names onto zerolog levels. CRITICAL maps
// to fatal, the closest zerolog severity.
func parseLogLevel(s string) (zerolog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "INFO":
		return zerolog.InfoLevel, nil
	case "WARNING":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	case "CRITICAL":
		return zerolog.FatalLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("invalid log level: %s", s)
	}
}
