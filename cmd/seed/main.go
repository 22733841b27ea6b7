package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"dataroom/internal/auth"
	"dataroom/internal/config"
	"dataroom/internal/domain/repositories"
	"dataroom/internal/repository/memory"
	"dataroom/internal/repository/postgres"
	"dataroom/internal/seed"
	"dataroom/internal/service"
	"dataroom/internal/storage"
)

func main() {
	// Parse command-line flags
	fixturePath := flag.String("file", "", "Seed fixture YAML (defaults to the embedded demo fixture)")
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables) in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	var (
		fixture *seed.Fixture
		err     error
	)
	if *fixturePath != "" {
		fixture, err = seed.LoadFixture(*fixturePath)
	} else {
		fixture, err = seed.DefaultFixture()
	}
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	log.Printf("🌱 Seeding database (environment: %s, upload root: %s)", cfg.Environment, cfg.UploadRoot)

	ctx := context.Background()

	var repos repositories.Set
	if cfg.DatabaseURL == config.MemoryDatabaseURL {
		log.Printf("⚠️  DATABASE_URL=%s: seeding an in-memory database, nothing is persisted", config.MemoryDatabaseURL)
		repos = memory.NewRepositorySet(memory.NewStore())
	} else {
		if *dropTables {
			log.Println("🗑️  Dropping all tables...")
			if err := postgres.DropAll(ctx, cfg.DatabaseURL, logger); err != nil {
				log.Fatalf("Failed to drop tables: %v", err)
			}
			log.Println("✅ Tables dropped")
		}

		if err := postgres.RunMigrations(ctx, cfg.DatabaseURL, logger); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("✅ Schema up to date")

		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()

		repos = postgres.NewRepositorySet(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(),
			Logger: logger,
		})
	}

	contentStore, err := storage.NewLocalStore(cfg.UploadRoot, logger, nil)
	if err != nil {
		log.Fatalf("Failed to create content store: %v", err)
	}

	tokens, err := auth.NewHMACTokenService(cfg.JWTSecret, cfg.JWTTTL, logger)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	svc := service.NewServices(repos, contentStore, tokens, logger)

	sum, err := seed.NewSeeder(svc, logger).Seed(ctx, fixture)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	log.Printf("✅ Seeded %d users, %d data rooms, %d folders, %d files (%d already existed)",
		sum.Users, sum.DataRooms, sum.Folders, sum.Files, sum.Skipped)
}
