package main

import (
	"errors"
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"hmy-wallet/pkg/config"
)

func main() {
	var (
		command string
		dir     string
		steps   int
	)
	flag.StringVar(&command, "cmd", "up", "Command to run: up, down, steps, version")
	flag.StringVar(&dir, "dir", "migrations", "Migration files directory")
	flag.IntVar(&steps, "n", 1, "Number of steps for -cmd steps (negative rolls back)")
	flag.Parse()

	// 加载配置
	config.Init()

	m, err := migrate.New("file://"+dir, config.Global.DB.MigrateURL())
	if err != nil {
		log.Fatalf("Migration init failed: %v", err)
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("Migration up done")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("Migration down done")
	case "steps":
		if err := m.Steps(steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Migration steps failed: %v", err)
		}
		log.Printf("Migrated %d steps", steps)
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatalf("Read version failed: %v", err)
		}
		log.Printf("Version: %d, dirty: %v", version, dirty)
	default:
		log.Fatalf("Unknown command: %s", command)
	}
}
