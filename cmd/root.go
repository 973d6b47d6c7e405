package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nyayadrishti/casemetrics/internal/config"
	"nyayadrishti/casemetrics/internal/db"
	"nyayadrishti/casemetrics/internal/logging"
	"nyayadrishti/casemetrics/internal/metrics"
)

var (
	configPath   string
	dbPath       string
	casesPath    string
	hearingsPath string
	logLevel     string
	logFormat    string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "casemetrics",
	Short:         "Judicial case metrics: disposal prediction, health scores, anomaly detection",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Discover(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		applyPersistentFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		if path != "" {
			logger.Debug("loaded config", zap.String("path", path))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to "+config.FileName)
	pf.StringVar(&dbPath, "db", "", "Path to the notes/reminders/sessions database")
	pf.StringVar(&casesPath, "cases", "", "Path to the cases CSV")
	pf.StringVar(&hearingsPath, "hearings", "", "Path to the hearings CSV (empty disables hearing views)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "Log format: json or console")
}

// applyPersistentFlags lets explicitly set flags beat the config file and environment.
func applyPersistentFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("db", &c.DBPath, dbPath)
	set("cases", &c.Data.Cases, casesPath)
	set("hearings", &c.Data.Hearings, hearingsPath)
	set("log-level", &c.Log.Level, logLevel)
	set("log-format", &c.Log.Format, logFormat)
}

// DiscoverDB finds the store path using priority: flag/env/config > walk-up > XDG default.
// Unlike the input tables the store is created when missing.
func DiscoverDB() (string, error) {
	// 1. Flag, CASEMETRICS_DB or db_path, already merged into cfg
	if cfg.DBPath != "" && cfg.DBPath != config.DefaultConfig().DBPath {
		return cfg.DBPath, nil
	}

	// 2. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ".casemetrics.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 3. XDG default, created on first use
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return "", fmt.Errorf("creating database directory: %w", err)
	}
	return cfg.DBPath, nil
}

// OpenDatabase discovers and opens the store
func OpenDatabase() (*db.DB, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	logger.Debug("opening store", zap.String("path", path))
	return db.OpenDB(path)
}

// loadDataset reads the configured case and hearing tables. A missing
// hearings file at the default path disables hearing views instead of failing.
func loadDataset(ctx context.Context) (metrics.Dataset, error) {
	hearings := cfg.Data.Hearings
	if hearings == config.DefaultConfig().Data.Hearings {
		if _, err := os.Stat(hearings); err != nil {
			logger.Debug("hearings file not found, hearing views disabled", zap.String("path", hearings))
			hearings = ""
		}
	}
	return metrics.LoadDataset(ctx, logger, cfg.Data.Cases, hearings)
}

func newPipeline() *metrics.Pipeline {
	return metrics.NewPipeline(logger, metrics.NewCache(cfg.CacheSize))
}

// runPipeline loads the data and runs the pipeline with the command's query flags.
func runPipeline(cmd *cobra.Command) (*metrics.Result, metrics.Dataset, *metrics.Pipeline, error) {
	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return nil, ds, nil, err
	}
	q, err := buildQuery(cmd)
	if err != nil {
		return nil, ds, nil, err
	}
	p := newPipeline()
	res, err := p.Run(ds, q)
	if err != nil {
		return nil, ds, nil, err
	}
	return res, ds, p, nil
}

// noCases prints the empty-scope outcome of a year filter. It reports whether
// err was that outcome.
func noCases(err error) bool {
	if !errors.Is(err, metrics.ErrNoCases) {
		return false
	}
	fmt.Printf("No cases found for filing years %v\n", qYears)
	return true
}

// Query flags shared by every command that runs the pipeline.
var (
	qHearingWeight int
	qYearWeight    int
	qBaselineDelay int
	qContamination float64
	qYears         []int
	qToday         string
)

func addQueryFlags(cmd *cobra.Command) {
	d := metrics.DefaultParams()
	f := cmd.Flags()
	f.IntVar(&qHearingWeight, "hearing-weight", d.HearingWeight, "Days added per hearing (10-50)")
	f.IntVar(&qYearWeight, "year-weight", d.YearWeight, "Days added per filing year after the earliest (5-30)")
	f.IntVar(&qBaselineDelay, "baseline-delay", d.BaselineDelay, "Fixed baseline days (50-200)")
	f.Float64Var(&qContamination, "contamination", d.Contamination, "Expected anomaly share (0.01-0.20)")
	f.IntSliceVar(&qYears, "year", nil, "Filing years to include (repeatable; default all)")
	addTodayFlag(cmd)
}

func addTodayFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&qToday, "today", "", "Reference date YYYY-MM-DD (default: today)")
}

// referenceDay is --today, or the current date.
func referenceDay() (time.Time, error) {
	if qToday == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.DateOnly, qToday)
	if err != nil {
		return t, fmt.Errorf("--today must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// buildQuery starts from the configured params and applies changed flags.
func buildQuery(cmd *cobra.Command) (metrics.Query, error) {
	today, err := referenceDay()
	if err != nil {
		return metrics.Query{}, err
	}
	q := metrics.Query{Params: cfg.Params, Years: qYears, Today: today}
	f := cmd.Flags()
	if f.Changed("hearing-weight") {
		q.Params.HearingWeight = qHearingWeight
	}
	if f.Changed("year-weight") {
		q.Params.YearWeight = qYearWeight
	}
	if f.Changed("baseline-delay") {
		q.Params.BaselineDelay = qBaselineDelay
	}
	if f.Changed("contamination") {
		q.Params.Contamination = qContamination
	}
	return q, nil
}

// sessionFlags identify the caller of the per-user commands.
var (
	sessUser  string
	sessToken string
)

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sessUser, "user", "", "User id the token was issued to")
	cmd.Flags().StringVar(&sessToken, "token", "", "Session token from 'casemetrics login' (or CASEMETRICS_TOKEN)")
	_ = cmd.MarkFlagRequired("user")
}

// authenticate validates --user/--token against the store.
func authenticate(store *db.DB) (metrics.Session, error) {
	token := sessToken
	if token == "" {
		token = os.Getenv("CASEMETRICS_TOKEN")
	}
	rec, err := store.ValidateToken(sessUser, token)
	if err != nil {
		return metrics.Session{}, err
	}
	role, ok := metrics.ParseRole(rec.Role)
	if !ok {
		return metrics.Session{}, metrics.ErrForbidden
	}
	return metrics.Session{UserID: rec.UserID, Role: role, Token: rec.Token}, nil
}

func printJSON(v any) error {
	return encodeJSON(os.Stdout, v)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
