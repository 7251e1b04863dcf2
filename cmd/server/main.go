package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/subosito/gotenv"

	"github.com/vamshi205/reconcilation-credit-sub001/pkg/config"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/ledger"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/matcher"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/parser"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/server"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/store"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/store/memory"
	"github.com/vamshi205/reconcilation-credit-sub001/pkg/store/postgres"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "recon-server",
	})

	_ = gotenv.Load()

	flags := pflag.NewFlagSet("recon-server", pflag.ExitOnError)
	cfgFile := flags.StringP("config", "c", "", "Config file (default is config.yaml)")
	flags.String("listen_addr", ":8080", "HTTP listen address")
	flags.String("postgres_dsn", "", "Postgres DSN; in-memory store when empty")
	if err := flags.Parse(os.Args[1:]); err != nil {
		logger.Fatal("failed to parse flags", "error", err)
	}

	cfg, err := config.Build(*cfgFile, flags)
	if err != nil {
		logger.Fatal("failed to build config", "error", err)
	}

	var kv store.KV
	if cfg.PostgresDSN != "" {
		pg, err := postgres.Open(context.Background(), cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("failed to open postgres", "error", err)
		}
		defer pg.Close()
		kv = pg
		logger.Info("mapping store backed by postgres")
	} else {
		kv = memory.New()
		logger.Info("mapping store in memory; learned mappings will not survive restarts")
	}
	kv = store.WithRetry(kv, cfg.Store.RetryAttempts, cfg.Store.RetryBase)

	p := parser.New(logger).
		WithAliases(cfg.Rules.ColumnAliases).
		WithCategoryRules(cfg.Rules.Categories).
		WithMaxHeaderScan(cfg.Parser.MaxHeaderScan)
	engine := matcher.NewEngine(logger, kv, cfg.Matcher)

	srv := server.New(logger, p, engine, ledger.NewStore(kv))
	if err := srv.Listen(cfg.ListenAddr); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
}
