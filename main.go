package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	recoverware "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/robfig/cron"
	"github.com/rs/zerolog"

	"github.com/fincheckhq/fincheck/internal/api"
	"github.com/fincheckhq/fincheck/internal/categorize"
	"github.com/fincheckhq/fincheck/internal/config"
	"github.com/fincheckhq/fincheck/internal/detect"
	"github.com/fincheckhq/fincheck/internal/logger"
	"github.com/fincheckhq/fincheck/internal/parser"
	"github.com/fincheckhq/fincheck/internal/store"
	"github.com/fincheckhq/fincheck/internal/writer"
)

const version = "1.0.0"

func main() {
	// CLI flags
	outputFlag := flag.String("output", "", "Output CSV file path (export command)")
	findingsFlag := flag.Bool("findings", false, "Export findings instead of transactions")
	headerFlag := flag.Bool("header", true, "Include statement metadata header rows in CSV")
	dismissedFlag := flag.Bool("dismissed", false, "Include dismissed findings")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Fincheck - statement extraction and grift detection

Parses bank and credit card statement PDFs into normalized transactions,
stores them in PostgreSQL, and scans the history for wasteful spending:
forgotten subscriptions, duplicate charges, price creep, and merchants
you can't identify.

Usage:
  fincheck [flags] <command> [args]

Commands:
  ingest <statement.pdf> [more.pdf ...]   Parse statements and store them
  scan                                    Run all grift detectors
  findings                                List open findings
  export                                  Write transactions (or findings) as CSV
  stats                                   Show corpus statistics
  serve                                   Start the HTTP API server

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Ingest a statement and scan it
  fincheck ingest chase-jan.pdf
  fincheck scan

  # Export everything to CSV
  fincheck export --output=transactions.csv
  fincheck export --findings --output=findings.csv

  # Serve the HTTP API
  FINCHECK_ADDR=:8080 fincheck serve

Configuration is read from the environment (and a .env file when present):
DATABASE_URL or FINCHECK_DB_* for PostgreSQL, FINCHECK_ADDR for the server,
FINCHECK_SCAN_SCHEDULE for periodic re-scans in serve mode.
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("fincheck %s\n", version)
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		if !*helpFlag {
			os.Exit(2)
		}
		return
	}

	// A missing .env is fine; the environment itself may carry everything.
	_ = godotenv.Load()

	log := logger.New()
	cfg, err := config.Load()
	if err != nil {
		fatal(log, err)
	}

	app := &application{
		cfg:         cfg,
		log:         log,
		parser:      parser.New(cfg.Detector.MinTableTransactions, log),
		detector:    detect.New(cfg.Detector, log),
		categorizer: categorize.NewRuleBased(),
	}

	ctx := context.Background()
	switch cmd := flag.Arg(0); cmd {
	case "ingest":
		if flag.NArg() < 2 {
			fatal(log, fmt.Errorf("ingest requires at least one PDF path"))
		}
		err = app.runIngest(ctx, flag.Args()[1:])
	case "scan":
		err = app.runScan(ctx)
	case "findings":
		err = app.runFindings(ctx, *dismissedFlag)
	case "export":
		err = app.runExport(ctx, *outputFlag, *findingsFlag, *headerFlag, *dismissedFlag)
	case "stats":
		err = app.runStats(ctx)
	case "serve":
		err = app.runServe(ctx)
	default:
		flag.Usage()
		fatal(log, fmt.Errorf("unknown command %q", cmd))
	}
	if err != nil {
		fatal(log, err)
	}
}

func fatal(log zerolog.Logger, err error) {
	log.Error().Err(err).Msg("fincheck failed")
	os.Exit(1)
}

// application wires the pipeline stages together for the CLI commands.
type application struct {
	cfg         *config.Config
	log         zerolog.Logger
	parser      *parser.Engine
	detector    *detect.Engine
	categorizer categorize.Categorizer
}

func (a *application) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Connect(a.cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func (a *application) runIngest(ctx context.Context, paths []string) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	failed := 0
	for _, path := range paths {
		res, err := a.parser.ParseStatement(path)
		if err != nil {
			a.log.Error().Err(err).Str("file", path).Msg("statement rejected")
			failed++
			continue
		}

		categorize.Apply(a.categorizer, res.Transactions)

		existed, err := st.InsertStatement(ctx, res.Metadata)
		if err != nil {
			return err
		}
		if existed {
			fmt.Printf("%s: already ingested (%s %s), skipping\n",
				path, res.Metadata.Institution, res.Metadata.Period)
			continue
		}
		if err := st.InsertTransactions(ctx, res.Metadata.ID, res.Transactions); err != nil {
			return err
		}
		fmt.Printf("%s: %s %s, %d transactions stored (%d rows skipped)\n",
			path, res.Metadata.Institution, res.Metadata.Period,
			len(res.Transactions), len(res.Skipped))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d statements failed", failed, len(paths))
	}
	return nil
}

func (a *application) runScan(ctx context.Context) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	findings, err := a.detector.Run(ctx, st)
	if err != nil {
		return err
	}
	if err := st.ClearFindings(ctx); err != nil {
		return err
	}
	if err := st.SaveFindings(ctx, findings); err != nil {
		return err
	}

	counts := map[string]int{}
	for _, f := range findings {
		counts[string(f.Severity)]++
	}
	fmt.Printf("%d findings (%d high, %d medium, %d low)\n",
		len(findings), counts["high"], counts["medium"], counts["low"])
	return nil
}

func (a *application) runFindings(ctx context.Context, includeDismissed bool) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	findings, err := st.GetFindingDetails(ctx, includeDismissed)
	if err != nil {
		return err
	}
	if len(findings) == 0 {
		fmt.Println("no findings")
		return nil
	}
	for _, f := range findings {
		fmt.Printf("[%-6s] %-14s %s  %s ($%.2f)\n  %s\n",
			f.Severity, f.Kind, f.Date, f.Merchant, f.Amount, f.Description)
	}
	return nil
}

func (a *application) runExport(ctx context.Context, output string, findings, header, includeDismissed bool) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file %q: %w", output, err)
		}
		defer f.Close()
		out = f
	}

	w := &writer.CSVWriter{IncludeHeader: header}
	if findings {
		rows, err := st.GetFindings(ctx, includeDismissed)
		if err != nil {
			return err
		}
		return w.WriteFindings(out, rows)
	}

	txns, err := st.GetAllTransactions(ctx)
	if err != nil {
		return err
	}
	// Corpus-wide export spans many statements; no single metadata header
	// applies.
	return w.WriteTransactions(out, nil, txns)
}

func (a *application) runStats(ctx context.Context) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.GetStats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("statements:    %d\n", stats.Statements)
	fmt.Printf("transactions:  %d\n", stats.Transactions)
	fmt.Printf("open findings: %d\n", stats.Findings)
	fmt.Printf("total expense: $%.2f\n", stats.TotalExpense)
	if stats.DateStart != "" {
		fmt.Printf("date range:    %s .. %s\n", stats.DateStart, stats.DateEnd)
	}
	return nil
}

func (a *application) runServe(ctx context.Context) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	handler := &api.Handler{
		Store:       st,
		Parser:      a.parser,
		Detector:    a.detector,
		Categorizer: a.categorizer,
		Log:         a.log,
		Version:     version,
	}

	srv := fiber.New(fiber.Config{
		AppName:   "fincheck " + version,
		BodyLimit: 32 << 20, // statement PDFs run large when scanned
	})
	srv.Use(recoverware.New())
	handler.RegisterRoutes(srv)

	if spec := a.cfg.Server.ScanSchedule; spec != "" {
		c := cron.New()
		err := c.AddFunc(spec, func() {
			findings, err := a.detector.Run(ctx, st)
			if err != nil {
				a.log.Error().Err(err).Msg("scheduled scan failed")
				return
			}
			if err := st.ClearFindings(ctx); err != nil {
				a.log.Error().Err(err).Msg("scheduled scan failed")
				return
			}
			if err := st.SaveFindings(ctx, findings); err != nil {
				a.log.Error().Err(err).Msg("scheduled scan failed")
				return
			}
			a.log.Info().Int("findings", len(findings)).Msg("scheduled scan complete")
		})
		if err != nil {
			return fmt.Errorf("invalid scan schedule %q: %w", spec, err)
		}
		c.Start()
		defer c.Stop()
		a.log.Info().Str("schedule", spec).Msg("periodic re-scan enabled")
	}

	a.log.Info().Str("addr", a.cfg.Server.Addr).Msg("fincheck API listening")
	return srv.Listen(a.cfg.Server.Addr)
}
