package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/goliatone/go-formreader/internal/config"
	"github.com/goliatone/go-formreader/internal/log"
	"github.com/goliatone/go-formreader/pkg/orchestrator"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (formreader.yaml in the working directory if empty)")
	eventID := flag.String("event", "", "event identifier to open directly")
	logLevel := flag.String("log-level", "", "override log.level")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	level := cfg.Log.Level
	if *logLevel != "" {
		level = *logLevel
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(log.ParseLevel(level))

	st, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Backend, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warnf("close store: %v", err)
		}
	}()

	o, err := orchestrator.New(st,
		orchestrator.WithTables(cfg.Store.QuestionsTable, cfg.Store.AnswersTable),
		orchestrator.WithTranslator(nil, cfg.Locale),
		orchestrator.WithOutput(os.Stdout),
	)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := o.Run(ctx, *eventID); err != nil {
		log.Errorf("Session ended: %v", err)
		stop()
		os.Exit(1)
	}
}
