// Package main provides a CLI for seeding the knowledge base.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/edubot/edubot-go/internal/config"
	"github.com/edubot/edubot-go/internal/knowledge"
	"github.com/edubot/edubot-go/internal/logger"
	"github.com/edubot/edubot-go/internal/storage"
)

var listFlag = flag.Bool("list", false, "List knowledge entries after seeding")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting seed tool")

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	ctx := context.Background()

	created, updated, err := knowledge.Seed(ctx, db)
	if err != nil {
		log.WithError(err).Fatal("Seeding failed")
	}

	log.WithField("created", created).
		WithField("updated", updated).
		Info("Knowledge base seeded")

	if *listFlag {
		entries, err := db.ListKnowledgeEntries(ctx)
		if err != nil {
			log.WithError(err).Fatal("Failed to list knowledge entries")
		}
		for _, e := range entries {
			fmt.Printf("%3d  %-10s %s\n", e.ID, e.Category, e.Pattern)
		}
	}
}
