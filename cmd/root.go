package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/agroapi/agro"
	"github.com/s0up4200/agroapi/config"
	"github.com/s0up4200/agroapi/filter"
	"github.com/s0up4200/agroapi/provider"
)

var (
	cfgFile  string
	cfg      *config.Config
	logger   zerolog.Logger
	client   *agro.Client
	prov     *provider.Provider
	compiler *filter.Compiler
	registry *prometheus.Registry

	// Command flags
	outputFormat string
	filterExpr   string
	showMetrics  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "agroapi",
	Short: "A command line client for the Agro monitoring API",
	Long: `agroapi manages Agro API polygons and queries satellite imagery,
vegetation index history and weather for them.

The API key is read from the config file (api.api_key) or from AGRO_API_KEY.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table or json (overrides output.format)")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print Agro API request metrics to stderr when done")

	rootCmd.AddCommand(testCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Override output format from command line if specified
	if cmd.Flags().Changed("output") {
		if outputFormat != "table" && outputFormat != "json" {
			return fmt.Errorf("invalid output format: %s (must be 'table' or 'json')", outputFormat)
		}
		cfg.Output.Format = outputFormat
	}

	opts := []agro.Option{
		agro.WithBaseURL(cfg.API.BaseURL),
		agro.WithTimeout(cfg.API.Timeout),
		agro.WithUserAgent(cfg.API.UserAgent + "/" + appVersion),
	}
	if cfg.API.LenientDecoding {
		opts = append(opts, agro.WithLenientDecoding())
	}
	if showMetrics {
		registry = prometheus.NewRegistry()
		opts = append(opts, agro.WithMetrics(agro.NewMetrics(registry)))
	}

	client, err = agro.NewClient(cfg.API.Key, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create Agro API client: %w", err)
	}

	prov = provider.New(client, logger)
	compiler = filter.NewCompiler()

	// Abort in-flight calls on interrupt
	ctx := cmd.Context()
	go func() {
		<-ctx.Done()
		prov.CancelAll()
	}()

	return nil
}

// shutdownApp stops the provider once a command has finished
func shutdownApp(cmd *cobra.Command, args []string) error {
	if prov == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := prov.Close(ctx); err != nil {
		return err
	}

	if registry != nil {
		return writeMetrics(os.Stderr, registry)
	}
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, colored only on a terminal
	fd := os.Stderr.Fd()
	terminal := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !terminal,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to the Agro API",
	Long:  `Test the API key against the Agro API and display basic account information.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to Agro API at %s...\n", cfg.API.BaseURL)

	polys, err := prov.ListPolygons().Await(cmd.Context())
	if err != nil {
		var apiErr *agro.Error
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			return fmt.Errorf("API key rejected: %w", err)
		}
		return fmt.Errorf("failed to connect to Agro API: %w", err)
	}

	fmt.Println("✓ Connection successful!")

	var area float64
	for _, p := range polys {
		area += p.Area
	}

	fmt.Printf("\nAgro API Statistics:\n")
	fmt.Printf("- Total polygons: %d\n", len(polys))
	fmt.Printf("- Total area: %.2f ha\n", area)

	return nil
}

// compileFilter resolves a named filter from config or compiles the expression as given
func compileFilter(kind filter.Kind, nameOrExpr string) (*filter.Filter, error) {
	if nameOrExpr == "" {
		return nil, nil
	}

	expr := cfg.Filters.Expression(nameOrExpr)
	f, err := compiler.Compile(kind, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	logger.Debug().Str("kind", string(kind)).Str("filter", expr).Msg("Compiled filter")
	return f, nil
}

// printJSON writes v as indented JSON to stdout
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// jsonOutput reports whether results should be printed as JSON
func jsonOutput() bool {
	return cfg.Output.Format == "json"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// truncate shortens s to at most n characters, ending in "..." when cut
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
