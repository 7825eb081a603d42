package main

import (
	"log"
	"net/http"
	"os"

	"nano-banana/internal/config"
	"nano-banana/internal/db"
	"nano-banana/internal/game"
	"nano-banana/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	var store game.Store
	if os.Getenv("DATABASE_URL") != "" {
		conn, err := db.Open(cfg)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		store = db.NewStore(conn)
	} else {
		log.Println("DATABASE_URL is not set, using in-memory store")
		store = game.NewMemStore()
	}

	engine := game.NewEngine(store, game.Config{
		CreateSeconds:   cfg.CreateDurationSeconds,
		VoteSeconds:     cfg.VoteDurationSeconds,
		CodeAttempts:    cfg.SessionCodeAttempts,
		MediumPoolSize:  cfg.MediumPoolSize,
		ImportBatchSize: cfg.ImportBatchSize,
	})

	blobs, err := server.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		log.Fatalf("upload storage setup failed: %v", err)
	}

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}

	srv := server.New(engine, blobs, cfg)
	log.Printf("nano-banana server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
