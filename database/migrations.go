package database

import (
	"fmt"
	"log"

	"studybuddy/backend/migrations"
)

// Migrate applies pending migrations to the shared pool and returns the names
// applied by this call, in order.
func Migrate() ([]string, error) {
	before, err := appliedSet()
	if err != nil {
		return nil, err
	}
	if err := migrations.RunMigrations(DB); err != nil {
		log.Printf("Error running migrations: %v", err)
		return nil, err
	}

	all, err := migrations.Applied(DB)
	if err != nil {
		return nil, err
	}
	var applied []string
	for _, name := range all {
		if !before[name] {
			applied = append(applied, name)
		}
	}

	if len(applied) == 0 {
		log.Printf("Database schema up to date (%d migrations)", len(all))
	} else {
		log.Printf("Applied %d of %d migrations: %v", len(applied), len(all), applied)
	}
	return applied, nil
}

// appliedSet returns the migrations recorded so far. A fresh database has no
// migrations table yet.
func appliedSet() (map[string]bool, error) {
	var exists int
	err := DB.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'migrations'").Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect schema: %w", err)
	}
	set := make(map[string]bool)
	if exists == 0 {
		return set, nil
	}

	names, err := migrations.Applied(DB)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		set[name] = true
	}
	return set, nil
}
