package main

import (
	"log"
	"net/http"
	"os"

	"whodunit/internal/config"
	"whodunit/internal/content"
	"whodunit/internal/db"
	"whodunit/internal/server"
	"whodunit/internal/store"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	var st store.Store
	if os.Getenv("DATABASE_URL") != "" {
		conn, err := db.Open(cfg)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		st = store.NewGorm(conn)
	} else {
		log.Println("DATABASE_URL not set; using in-memory store")
		st = store.NewMemory()
	}

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}

	srv := server.New(st, content.Default(), cfg)
	log.Printf("whodunit server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
