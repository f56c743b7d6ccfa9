package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gostatcheck/internal"
	"gostatcheck/internal/api"
	"gostatcheck/internal/config"
	"gostatcheck/internal/container"
	"gostatcheck/internal/errors"
	"gostatcheck/internal/migration"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects to Postgres and brings the schema up to date
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Close()

	// Document endpoints answer 503 without a key; record endpoints still work
	if appConfig.AI.OpenAIKey != "" {
		if err := appContainer.InitExtraction(nil); err != nil {
			log.Fatalf("Failed to initialize extraction: %v", err)
		}
	} else {
		log.Println("OPENAI_API_KEY not set, document extraction disabled")
	}

	if appConfig.StorageEnabled() {
		db, err := initDatabase(ctx, appConfig)
		if err != nil {
			log.Fatal("Failed to initialize database:", err)
		}
		if err := appContainer.InitWithDatabase(db); err != nil {
			log.Fatalf("Failed to initialize container: %v", err)
		}
	} else {
		log.Println("DATABASE_URL not set, reports will not be stored")
	}

	gin.SetMode(appConfig.Server.GinMode)
	server := api.NewServer(api.Deps{
		Statcheck: appContainer.Statcheck,
		GRIM:      appContainer.GRIM,
		Runs:      appContainer.Runs,
	})

	log.Printf("Starting gostatcheck server on port %s", appConfig.Server.Port)
	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
