// Command migrate applies the schema and reports its state.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"inkwell/internal/config"
	"inkwell/internal/database"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|status>")
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

	// Open without Connect so that status never migrates as a side effect.
	db, err := gorm.Open(postgres.Open(database.DSN(cfg)), database.GormConfig())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	switch cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0))); cmd {
	case "up":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("schema is up to date")
	case "status":
		for _, model := range database.PersistentModels() {
			stmt := &gorm.Statement{DB: db}
			if err := stmt.Parse(model); err != nil {
				return fmt.Errorf("parse model: %w", err)
			}
			table := stmt.Schema.Table
			if !db.Migrator().HasTable(table) {
				log.Printf("%-10s missing", table)
				continue
			}
			var missing []string
			for _, field := range stmt.Schema.Fields {
				if field.DBName != "" && !db.Migrator().HasColumn(model, field.DBName) {
					missing = append(missing, field.DBName)
				}
			}
			if len(missing) > 0 {
				log.Printf("%-10s missing columns: %s", table, strings.Join(missing, ", "))
				continue
			}
			log.Printf("%-10s ok", table)
		}
	default:
		return usage()
	}
	return nil
}
