package storage

// sqlite.go — archivo de barridos de convergencia.
//
// Estrategia:
//   - `sweeps`: una fila por barrido con el resumen ya calculado, para que
//     ListSweeps no tenga que reconstruir series completas.
//   - `sweep_profiles`: los perfiles de entrada en su orden original (el
//     orden decide los empates, así que se guarda explícitamente).
//   - `sweep_counts`: una fila por (paso, estrategia). Es lo único que crece.
//   - La semilla es uint64; SQLite solo tiene INTEGER con signo, se guarda
//     con cast de bits y se recupera igual.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/offtake/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Resumen por barrido
CREATE TABLE IF NOT EXISTS sweeps (
    id                TEXT PRIMARY KEY,
    created_at        TEXT    NOT NULL,
    seed              INTEGER NOT NULL,
    steps             INTEGER NOT NULL DEFAULT 0,
    final_sample_size INTEGER NOT NULL DEFAULT 0,
    dominant          TEXT    NOT NULL DEFAULT '',
    dominant_share    REAL    NOT NULL DEFAULT 0
);

-- Perfiles de entrada, en orden
CREATE TABLE IF NOT EXISTS sweep_profiles (
    sweep_id   TEXT    NOT NULL,
    position   INTEGER NOT NULL,
    name       TEXT    NOT NULL,
    mean_value REAL    NOT NULL,
    spread     REAL    NOT NULL,
    PRIMARY KEY (sweep_id, position)
);

-- Conteos por paso y estrategia
CREATE TABLE IF NOT EXISTS sweep_counts (
    sweep_id    TEXT    NOT NULL,
    step        INTEGER NOT NULL,
    position    INTEGER NOT NULL,
    sample_size INTEGER NOT NULL,
    strategy    TEXT    NOT NULL,
    count       INTEGER NOT NULL,
    mean_value  REAL    NOT NULL DEFAULT 0,
    PRIMARY KEY (sweep_id, step, position)
);

CREATE INDEX IF NOT EXISTS idx_sweeps_created ON sweeps(created_at DESC);
`

// Ancho fijo para que el orden lexicográfico coincida con el temporal.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound se devuelve cuando el barrido pedido no existe.
var ErrNotFound = errors.New("not found")

// SQLiteStorage implementa ports.SweepStore usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// SaveSweep persiste el barrido en una única transacción.
func (s *SQLiteStorage) SaveSweep(ctx context.Context, sweep domain.Sweep) error {
	if sweep.ID == "" {
		return fmt.Errorf("storage.SaveSweep: empty id: %w", domain.ErrInvalidArgument)
	}
	sum := sweep.Summary()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSweep: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sweeps (id, created_at, seed, steps, final_sample_size, dominant, dominant_share)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sweep.ID,
		sweep.CreatedAt.UTC().Format(timeLayout),
		int64(sweep.Seed),
		sum.Steps,
		sum.FinalSampleSize,
		sum.Dominant,
		sum.DominantShare,
	); err != nil {
		return fmt.Errorf("storage.SaveSweep: insert sweep %s: %w", sweep.ID, err)
	}

	for i, p := range sweep.Profiles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sweep_profiles (sweep_id, position, name, mean_value, spread) VALUES (?, ?, ?, ?, ?)`,
			sweep.ID, i, p.Name, p.MeanValue, p.Spread,
		); err != nil {
			return fmt.Errorf("storage.SaveSweep: insert profile %s: %w", p.Name, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sweep_counts (sweep_id, step, position, sample_size, strategy, count, mean_value)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveSweep: prepare: %w", err)
	}
	defer stmt.Close()

	for step, run := range sweep.Series {
		for pos, name := range run.Order {
			if _, err := stmt.ExecContext(ctx,
				sweep.ID, step, pos, run.SampleSize, name, run.Counts[name], run.MeanValues[name],
			); err != nil {
				return fmt.Errorf("storage.SaveSweep: insert count step=%d %s: %w", step, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSweep: commit: %w", err)
	}
	return nil
}

// GetSweep reconstruye un barrido completo desde las tres tablas.
func (s *SQLiteStorage) GetSweep(ctx context.Context, id string) (domain.Sweep, error) {
	var (
		sweep     domain.Sweep
		createdAt string
		seed      int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, seed FROM sweeps WHERE id = ?`, id,
	).Scan(&sweep.ID, &createdAt, &seed)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sweep{}, fmt.Errorf("storage.GetSweep: %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Sweep{}, fmt.Errorf("storage.GetSweep: query sweep: %w", err)
	}
	sweep.Seed = uint64(seed)
	if sweep.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return domain.Sweep{}, fmt.Errorf("storage.GetSweep: parse created_at: %w", err)
	}

	if sweep.Profiles, err = s.loadProfiles(ctx, id); err != nil {
		return domain.Sweep{}, err
	}
	if sweep.Series, err = s.loadSeries(ctx, id, domain.ProfileNames(sweep.Profiles)); err != nil {
		return domain.Sweep{}, err
	}
	return sweep, nil
}

// ListSweeps devuelve los resúmenes ordenados del más reciente al más antiguo.
// limit <= 0 significa sin límite.
func (s *SQLiteStorage) ListSweeps(ctx context.Context, limit int) ([]domain.SweepSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: LIMIT -1 = sin límite
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, seed, steps, final_sample_size, dominant, dominant_share
		FROM sweeps
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.ListSweeps: query: %w", err)
	}
	defer rows.Close()

	var out []domain.SweepSummary
	for rows.Next() {
		var (
			sum       domain.SweepSummary
			createdAt string
			seed      int64
		)
		if err := rows.Scan(
			&sum.ID,
			&createdAt,
			&seed,
			&sum.Steps,
			&sum.FinalSampleSize,
			&sum.Dominant,
			&sum.DominantShare,
		); err != nil {
			return nil, fmt.Errorf("storage.ListSweeps: scan row: %w", err)
		}
		sum.Seed = uint64(seed)
		sum.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func (s *SQLiteStorage) loadProfiles(ctx context.Context, id string) ([]domain.StrategyProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, mean_value, spread FROM sweep_profiles WHERE sweep_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.GetSweep: query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.StrategyProfile
	for rows.Next() {
		var p domain.StrategyProfile
		if err := rows.Scan(&p.Name, &p.MeanValue, &p.Spread); err != nil {
			return nil, fmt.Errorf("storage.GetSweep: scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *SQLiteStorage) loadSeries(ctx context.Context, id string, names []string) (domain.ConvergenceSeries, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, sample_size, strategy, count, mean_value
		FROM sweep_counts
		WHERE sweep_id = ?
		ORDER BY step, position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("storage.GetSweep: query counts: %w", err)
	}
	defer rows.Close()

	var series domain.ConvergenceSeries
	for rows.Next() {
		var (
			step, sampleSize, count int
			strategy                string
			mean                    float64
		)
		if err := rows.Scan(&step, &sampleSize, &strategy, &count, &mean); err != nil {
			return nil, fmt.Errorf("storage.GetSweep: scan count: %w", err)
		}
		for len(series) <= step {
			series = append(series, domain.NewSimulationRun(sampleSize, names))
		}
		series[step].SampleSize = sampleSize
		series[step].Counts[strategy] = count
		series[step].MeanValues[strategy] = mean
	}
	return series, rows.Err()
}
