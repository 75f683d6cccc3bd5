// Command migrate runs schema operations for the backend.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"agora/internal/config"
	"agora/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <auto|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "auto":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("automigrations applied")
	case "status":
		missing := 0
		for _, model := range database.PersistentModels() {
			present := db.Migrator().HasTable(model)
			if !present {
				missing++
			}
			log.Printf("%-30T present=%t", model, present)
		}
		log.Printf("driver=%s env=%s missing=%d", db.Dialector.Name(), cfg.Env, missing)
	default:
		return usage()
	}
	return nil
}
