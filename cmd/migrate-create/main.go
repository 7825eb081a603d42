package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const migrationsDir = "db/migrations"

func main() {
	name := flag.String("name", "", "migration name")
	flag.Parse()

	if *name == "" {
		log.Fatal("migration name is required")
	}
	if strings.ContainsAny(*name, " ") {
		log.Fatal("migration name must not contain spaces")
	}

	version := time.Now().UTC().Format("20060102150405")
	base := filepath.Join(migrationsDir, fmt.Sprintf("%s_%s", version, *name))

	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		log.Fatalf("create migrations dir: %v", err)
	}
	for suffix, stub := range map[string]string{
		".up.sql":   "-- up migration\n",
		".down.sql": "-- down migration\n",
	} {
		path := base + suffix
		if _, err := os.Stat(path); err == nil {
			log.Fatalf("file already exists: %s", path)
		} else if !os.IsNotExist(err) {
			log.Fatalf("stat %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(stub), 0o644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
	}

	log.Printf("created %s.up.sql and %s.down.sql", base, base)
}
