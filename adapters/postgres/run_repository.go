package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gostatcheck/domain/core"
	"gostatcheck/domain/verdict"
	"gostatcheck/ports"

	"github.com/jmoiron/sqlx"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// runRow is one check_runs row
type runRow struct {
	ID          string    `db:"id"`
	Kind        string    `db:"kind"`
	Source      string    `db:"source"`
	Summary     []byte    `db:"summary"`
	Rows        []byte    `db:"rows"`
	Fingerprint string    `db:"fingerprint"`
	Frequency   int       `db:"frequency"`
	Runs        int       `db:"runs"`
	CreatedAt   time.Time `db:"created_at"`
}

// runPayload is what the rows column holds
type runPayload struct {
	Statcheck []verdict.StatcheckOutcome `json:"statcheck,omitempty"`
	GRIM      []verdict.GrimOutcome      `json:"grim,omitempty"`
}

// Save inserts a report, or replaces it when the id already exists
func (r *RunRepositoryImpl) Save(ctx context.Context, report *verdict.Report) error {
	row, err := toRow(report)
	if err != nil {
		return err
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO check_runs (id, kind, source, summary, rows, fingerprint, frequency, runs, created_at)
		VALUES (:id, :kind, :source, :summary, :rows, :fingerprint, :frequency, :runs, :created_at)
		ON CONFLICT (id) DO UPDATE SET
			summary = EXCLUDED.summary,
			rows = EXCLUDED.rows,
			fingerprint = EXCLUDED.fingerprint,
			frequency = EXCLUDED.frequency,
			runs = EXCLUDED.runs
	`, row)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", report.ID, err)
	}
	return nil
}

// Get loads one report with all its outcomes
func (r *RunRepositoryImpl) Get(ctx context.Context, id core.RunID) (*verdict.Report, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, kind, source, summary, rows, fingerprint, frequency, runs, created_at
		FROM check_runs
		WHERE id = $1
	`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return fromRow(row)
}

// List returns the newest runs first, without their outcomes
func (r *RunRepositoryImpl) List(ctx context.Context, limit, offset int) ([]verdict.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rows []runRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, kind, source, summary, created_at
		FROM check_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	summaries := make([]verdict.RunSummary, 0, len(rows))
	for _, row := range rows {
		s := verdict.RunSummary{
			ID:        core.RunID(row.ID),
			Kind:      verdict.Kind(row.Kind),
			Source:    row.Source,
			CreatedAt: core.NewTimestamp(row.CreatedAt),
		}
		if err := json.Unmarshal(row.Summary, &s.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode summary of run %s: %w", row.ID, err)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func toRow(report *verdict.Report) (runRow, error) {
	summary, err := json.Marshal(report.Summary)
	if err != nil {
		return runRow{}, fmt.Errorf("failed to encode summary: %w", err)
	}
	rows, err := json.Marshal(runPayload{Statcheck: report.Statcheck, GRIM: report.GRIM})
	if err != nil {
		return runRow{}, fmt.Errorf("failed to encode outcomes: %w", err)
	}
	createdAt := report.CreatedAt.Time()
	if report.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return runRow{
		ID:          report.ID.String(),
		Kind:        string(report.Kind),
		Source:      report.Source,
		Summary:     summary,
		Rows:        rows,
		Fingerprint: report.Fingerprint.String(),
		Frequency:   report.Frequency,
		Runs:        report.Runs,
		CreatedAt:   createdAt,
	}, nil
}

func fromRow(row runRow) (*verdict.Report, error) {
	report := &verdict.Report{
		ID:          core.RunID(row.ID),
		Kind:        verdict.Kind(row.Kind),
		Source:      row.Source,
		CreatedAt:   core.NewTimestamp(row.CreatedAt),
		Fingerprint: core.Hash(row.Fingerprint),
		Frequency:   row.Frequency,
		Runs:        row.Runs,
	}
	if err := json.Unmarshal(row.Summary, &report.Summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary of run %s: %w", row.ID, err)
	}
	var payload runPayload
	if err := json.Unmarshal(row.Rows, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode outcomes of run %s: %w", row.ID, err)
	}
	report.Statcheck = payload.Statcheck
	report.GRIM = payload.GRIM
	return report, nil
}
