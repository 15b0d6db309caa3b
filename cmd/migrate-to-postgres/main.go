package main

import (
	"flag"
	"log"
	"os"

	"github.com/jsamit27/ava/internal"
)

func main() {
	sqlitePath := flag.String("sqlite", "", "path to the source SQLite database (default: $SQLITE_PATH or sandbox_lead_3.db)")
	flag.Parse()

	application, err := internal.NewMigrationApp(*sqlitePath, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to initialize migration: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}
