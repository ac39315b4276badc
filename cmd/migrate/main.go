package main

import (
	"fmt"
	"log"

	"studybuddy/backend/config"
	"studybuddy/backend/database"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	database.DB = db
	defer database.Close()

	applied, err := database.Migrate()
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if len(applied) == 0 {
		fmt.Println("Nothing to migrate")
	}
	for _, name := range applied {
		fmt.Println("applied:", name)
	}

	fmt.Println("Migrations completed successfully!")
}
