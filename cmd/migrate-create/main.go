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

func main() {
	name := flag.String("name", "", "migration name (required)")
	dir := flag.String("dir", filepath.Join("db", "migrations"), "migrations directory")
	flag.Parse()

	if *name == "" || strings.ContainsAny(*name, " ") {
		log.Fatal("a migration name without spaces is required")
	}

	version := time.Now().UTC().Format("20060102150405")
	base := fmt.Sprintf("%s_%s", version, *name)

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatalf("create migrations dir: %v", err)
	}
	for _, suffix := range []string{".up.sql", ".down.sql"} {
		path := filepath.Join(*dir, base+suffix)
		if _, err := os.Stat(path); err == nil {
			log.Fatalf("file already exists: %s", path)
		} else if !os.IsNotExist(err) {
			log.Fatalf("stat %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte("-- "+base+suffix+"\n"), 0o644); err != nil {
			log.Fatalf("create %s: %v", path, err)
		}
		log.Printf("created %s", path)
	}
}
