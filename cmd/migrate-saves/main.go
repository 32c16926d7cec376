// migrate-saves copies save slots, expedition history and boss kills from
// a SQLite store into PostgreSQL (or another SQLite file).
//
// Usage:
//
//	go run ./cmd/migrate-saves \
//	    -sqlite data/abyssforge.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user abyss \
//	    -pg-password abyss \
//	    -pg-database abyssforge
package main

import (
	"flag"
	"log"
	"time"

	"github.com/lawnchairsociety/abyssforge/internal/database"
)

func main() {
	sqlitePath := flag.String("sqlite", "data/abyssforge.db", "Path to the source SQLite database")
	toSQLite := flag.String("to-sqlite", "", "Copy into this SQLite file instead of PostgreSQL")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "abyss", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "abyss", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "abyssforge", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("Abyss Forge Save Migration Tool")
	log.Println("===============================")

	log.Printf("Opening source database: %s", *sqlitePath)
	src, err := database.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open source database: %v", err)
	}
	defer src.Close()

	target := database.Config{Driver: "sqlite", SQLitePath: *toSQLite}
	if *toSQLite == "" {
		pg := database.DefaultPostgresConfig()
		pg.Host = *pgHost
		pg.Port = *pgPort
		pg.User = *pgUser
		pg.Password = *pgPassword
		pg.Database = *pgDatabase
		pg.SSLMode = *pgSSLMode
		pg.ConnMaxLifetime = 5 * time.Minute
		target = database.Config{Driver: "postgres", Postgres: pg}
		log.Printf("Opening PostgreSQL database: %s", pg.Redacted())
	} else {
		log.Printf("Opening target SQLite database: %s", *toSQLite)
	}

	dst, err := database.OpenWithConfig(target)
	if err != nil {
		log.Fatalf("Failed to open target database: %v", err)
	}
	defer dst.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	sum, err := migrate(src, dst, *dryRun)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("===============================")
	log.Printf("Saves:       %d copied, %d skipped (slot exists), %d with bad checksums", sum.Saves, sum.SkippedSaves, sum.Corrupt)
	log.Printf("Expeditions: %d copied", sum.Expeditions)
	log.Printf("Boss kills:  %d copied", sum.BossKills)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}
