package main

import (
	"flag"
	"log"
	"os"

	"nano-banana/internal/config"
	"nano-banana/internal/db"
	"nano-banana/internal/game"
)

func main() {
	filePath := flag.String("file", "categories.csv", "path to categories csv")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	store := db.NewStore(conn)

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("failed to open csv: %v", err)
	}
	defer file.Close()

	rows, err := game.ParseCategoriesCSV(file)
	if err != nil {
		log.Fatalf("failed to parse csv: %v", err)
	}

	inserted := 0
	for start := 0; start < len(rows); start += cfg.ImportBatchSize {
		end := start + cfg.ImportBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := store.InsertCategories(rows[start:end]); err != nil {
			log.Fatalf("failed to insert batch starting at row %d (inserted %d): %v", start, inserted, err)
		}
		inserted += end - start
	}

	log.Printf("loaded %d categories", inserted)
}
