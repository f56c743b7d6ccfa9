package container

import (
	"fmt"
	"log"

	"gostatcheck/adapters/document"
	"gostatcheck/adapters/llm"
	"gostatcheck/adapters/postgres"
	"gostatcheck/app"
	"gostatcheck/internal/config"
	"gostatcheck/internal/statcheck"
	"gostatcheck/internal/validation"
	"gostatcheck/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB  *sqlx.DB
	LLM ports.LLMClient

	// Core
	Checker  *statcheck.Checker
	Executor *validation.Executor

	// Adapters
	Reader             *document.Reader
	Runs               ports.RunRepository
	StatcheckExtractor ports.TestExtractor
	GrimExtractor      ports.MeanExtractor

	// Services, rebuilt whenever a dependency is added
	Statcheck *app.StatcheckService
	GRIM      *app.GrimService
}

// New creates a container that can check records; storage and extraction are
// added with InitWithDatabase and InitExtraction
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	checker, err := statcheck.NewChecker(cfg.Analysis.SignificanceLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create checker: %w", err)
	}

	c := &Container{
		Config:   cfg,
		Checker:  checker,
		Executor: validation.NewExecutor(cfg.Analysis.Workers),
		Reader:   document.NewReader(),
	}
	c.buildServices()
	return c, nil
}

// InitWithDatabase stores every report in Postgres
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.DB = db
	c.Runs = postgres.NewRunRepository(db)
	c.buildServices()

	log.Printf("Container initialized with database connection")
	return nil
}

// InitExtraction wires the LLM extractors. A nil client means an OpenAI
// client built from the AI config.
func (c *Container) InitExtraction(client ports.LLMClient) error {
	if client == nil {
		if err := c.Config.RequireExtraction(); err != nil {
			return err
		}
		openAI, err := llm.NewClient(llm.Config{
			APIKey:     c.Config.AI.OpenAIKey,
			BaseURL:    c.Config.AI.BaseURL,
			Timeout:    c.Config.AI.Timeout,
			MaxRetries: c.Config.AI.MaxRetries,
		})
		if err != nil {
			return err
		}
		client = openAI
	}

	c.LLM = client
	c.StatcheckExtractor = llm.NewStatcheckExtractor(client, llm.ExtractorConfig{
		Model:       c.Config.Statcheck.Model,
		Temperature: c.Config.Statcheck.Temperature,
	})
	c.GrimExtractor = llm.NewGrimExtractor(client, llm.ExtractorConfig{
		Model:       c.Config.GRIM.Model,
		Temperature: c.Config.GRIM.Temperature,
	})
	c.buildServices()

	log.Printf("Extraction initialized (statcheck: %s, GRIM: %s)", c.Config.Statcheck.Model, c.Config.GRIM.Model)
	return nil
}

// Close releases the database connection, if any
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func (c *Container) buildServices() {
	c.Statcheck = app.NewStatcheckService(app.StatcheckDeps{
		Checker:   c.Checker,
		Executor:  c.Executor,
		Extractor: c.StatcheckExtractor,
		Reader:    c.Reader,
		Segmenter: segmenter(c.Config.Statcheck),
		Runs:      c.Runs,
	})
	c.GRIM = app.NewGrimService(app.GrimDeps{
		Executor:  c.Executor,
		Extractor: c.GrimExtractor,
		Reader:    c.Reader,
		Segmenter: segmenter(c.Config.GRIM),
		Runs:      c.Runs,
	})
}

func segmenter(cfg config.ExtractionConfig) app.Segmenter {
	return func(text string) ([]string, error) {
		return document.Segment(text, cfg.MaxWords, cfg.OverlapWords)
	}
}
