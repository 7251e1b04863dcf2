package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/vamshi205/reconcilation-credit-sub001/pkg/config"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/csv"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/ledger"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/matcher"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/models"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/parser"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/server"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/store"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/store/memory"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/store/postgres"
)

var (
	cliFilters filters
	cfgFile    string
	typeFilter string
	doResolve  bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "recon",
	Short: "Normalize bank statements and resolve party names",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func newLogger() *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    verbose,
		ReportTimestamp: true,
		Prefix:          "recon",
		Level:           level,
	})
}

type runtime struct {
	cfg    *config.Config
	logger *log.Logger
	parser *parser.Parser
	engine *matcher.Engine
	ledger *ledger.Store
}

func buildRuntime(cmd *cobra.Command) (*runtime, error) {
	logger := newLogger()

	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	var kv store.KV
	if cfg.PostgresDSN != "" {
		pg, err := postgres.Open(context.Background(), cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		kv = pg
	} else {
		kv = memory.New()
	}
	kv = store.WithRetry(kv, cfg.Store.RetryAttempts, cfg.Store.RetryBase)

	p := parser.New(logger).
		WithAliases(cfg.Rules.ColumnAliases).
		WithCategoryRules(cfg.Rules.Categories).
		WithMaxHeaderScan(cfg.Parser.MaxHeaderScan)

	return &runtime{
		cfg:    cfg,
		logger: logger,
		parser: p,
		engine: matcher.NewEngine(logger, kv, cfg.Matcher),
		ledger: ledger.NewStore(kv),
	}, nil
}

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <input_path>",
	Short: "Convert bank statements to canonical transaction CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}

		matches, err := filepath.Glob(args[0])
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("no files found matching pattern %s", args[0])
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				rt.logger.Warn("failed to stat file", "error", err, "file", match)
				continue
			}
			if info.IsDir() {
				if err := processDirectory(rt, match); err != nil {
					rt.logger.Warn("failed to process directory", "error", err, "dir", match)
				}
				continue
			}
			if err := processFile(rt, match); err != nil {
				rt.logger.Warn("failed to process file", "error", err, "file", match)
			}
		}
		return nil
	},
}

func processDirectory(rt *runtime, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := processFile(rt, filepath.Join(dir, entry.Name())); err != nil {
			rt.logger.Warn("error processing file", "error", err, "file", entry.Name())
		}
	}
	return nil
}

func processFile(rt *runtime, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	result, err := rt.parser.NormalizeStatement(data, formatFromName(path), parser.TypeFilter(typeFilter))
	if err != nil {
		var diag *parser.NoTransactionsError
		if errors.As(err, &diag) {
			fmt.Fprintln(os.Stderr, "No transactions matched. Detected columns and a sample row:")
			pp.Fprintln(os.Stderr, diag.DetectedColumns)
			pp.Fprintln(os.Stderr, diag.SampleRow)
		}
		return err
	}
	rt.logger.Info("normalized statement", "file", filepath.Base(path),
		"transactions", len(result.Transactions), "skipped", result.Skipped, "errors", result.Errors)

	if doResolve {
		resolveAll(rt, result.Transactions)
	}

	fmt.Print(string(csv.Create(models.CSVHeader(), result.Transactions, cliFilters.toFilterFunc())))
	return nil
}

func resolveAll(rt *runtime, txs []*models.Transaction) {
	resolved := lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	pending := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))   // gray

	ctx := context.Background()
	for _, tx := range txs {
		name, ok := rt.engine.Suggest(ctx, tx.Description)
		if ok {
			tx.PartyName = name
			line := fmt.Sprintf("= %s | %-40s -> %s", tx.Date.Format("2006-01-02"), truncate(tx.Description, 40), name)
			fmt.Fprintln(os.Stderr, resolved.Render(line))
			continue
		}
		line := fmt.Sprintf("? %s | %-40s -> (no suggestion)", tx.Date.Format("2006-01-02"), truncate(tx.Description, 40))
		fmt.Fprintln(os.Stderr, pending.Render(line))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func formatFromName(path string) parser.Format {
	switch filepath.Ext(path) {
	case ".xls":
		return parser.FormatXLS
	case ".csv", ".txt":
		return parser.FormatCSV
	default:
		return parser.FormatAuto
	}
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <text>",
	Short: "Suggest a canonical party name for narration text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}
		name, ok := rt.engine.Suggest(context.Background(), args[0])
		if !ok {
			if mined := matcher.FirstCandidate(args[0]); mined != "" {
				fmt.Printf("(no learned mapping; extracted %q)\n", mined)
			} else {
				fmt.Println("(no suggestion)")
			}
			return nil
		}
		fmt.Println(name)
		return nil
	},
}

var learnCmd = &cobra.Command{
	Use:   "learn <original> <corrected>",
	Short: "Record a party name correction",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}
		return rt.engine.Learn(context.Background(), args[0], args[1])
	},
}

var trainCmd = &cobra.Command{
	Use:   "train <narration> <corrected>",
	Short: "Mine a narration and learn every candidate pattern",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}
		return rt.engine.AutoTrain(context.Background(), args[0], args[1])
	},
}

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "List learned name mappings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}
		mappings, err := rt.engine.Mappings(context.Background())
		if err != nil {
			return err
		}
		for _, m := range mappings {
			fmt.Printf("%-40s -> %-30s confidence=%d last_used=%s\n",
				m.OriginalName, m.CorrectedName, m.Confidence, m.LastUsed.Format("2006-01-02"))
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}
		srv := server.New(rt.logger, rt.parser, rt.engine, rt.ledger)
		return srv.Listen(rt.cfg.ListenAddr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.PersistentFlags().StringVar(&cliFilters.startDate, "start", "", "Start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.endDate, "end", "", "End date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().Float64Var(&cliFilters.minAmount, "min", 0, "Minimum amount")
	rootCmd.PersistentFlags().Float64Var(&cliFilters.maxAmount, "max", 0, "Maximum amount")
	rootCmd.PersistentFlags().StringVar(&cliFilters.party, "party", "", "Filter by party or narration (case insensitive)")

	convertCmd.Flags().StringVarP(&typeFilter, "type", "t", "both", "Type filter: credit, debit or both")
	convertCmd.Flags().BoolVar(&doResolve, "resolve", false, "Resolve party names through learned mappings")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(mappingsCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
