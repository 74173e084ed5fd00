package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/impact-cli/internal/model"
	"github.com/sells-group/impact-cli/internal/resilience"
)

// SQLiteStore implements Store using modernc.org/sqlite. Writes retry on
// lock contention.
type SQLiteStore struct {
	db    *sql.DB
	retry resilience.RetryConfig
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("sqlite", "write")
	return &SQLiteStore{db: db, retry: retry}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS calculations (
	id                  TEXT PRIMARY KEY,
	company_name        TEXT NOT NULL,
	industry            TEXT NOT NULL DEFAULT '',
	methodology_id      TEXT NOT NULL,
	methodology_version TEXT NOT NULL,
	input               TEXT NOT NULL,
	assumptions         TEXT,
	result              TEXT NOT NULL,
	created_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_calculations_company ON calculations(company_name);
CREATE INDEX IF NOT EXISTS idx_calculations_methodology ON calculations(methodology_id, methodology_version);
CREATE INDEX IF NOT EXISTS idx_calculations_created_at ON calculations(created_at);
`

// Migrate creates the schema if needed.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCalculation implements Store.
func (s *SQLiteStore) SaveCalculation(ctx context.Context, calc *model.Calculation) error {
	enc, err := prepare(calc)
	if err != nil {
		return err
	}
	var assumptions sql.NullString
	if enc.assumptions != nil {
		assumptions = sql.NullString{String: string(enc.assumptions), Valid: true}
	}
	err = resilience.Do(ctx, s.retry, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO calculations (id, company_name, industry, methodology_id, methodology_version, input, assumptions, result, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			calc.ID, calc.CompanyName, calc.Industry, calc.MethodologyID, calc.MethodologyVersion,
			string(enc.input), assumptions, string(enc.result), calc.CreatedAt,
		)
		return err
	})
	return eris.Wrapf(err, "sqlite: insert calculation %s", calc.ID)
}

const sqliteSelect = `SELECT id, company_name, industry, methodology_id, methodology_version, input, assumptions, result, created_at FROM calculations`

// GetCalculation implements Store.
func (s *SQLiteStore) GetCalculation(ctx context.Context, id string) (*model.Calculation, error) {
	row := s.db.QueryRowContext(ctx, sqliteSelect+` WHERE id = ?`, id)
	calc, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get calculation %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get calculation %s", id)
	}
	return calc, nil
}

// ListCalculations implements Store.
func (s *SQLiteStore) ListCalculations(ctx context.Context, filter CalculationFilter) ([]model.Calculation, error) {
	query := sqliteSelect + ` WHERE 1=1`
	var args []any

	if filter.Company != "" {
		query += ` AND company_name = ?`
		args = append(args, filter.Company)
	}
	if filter.MethodologyID != "" {
		query += ` AND methodology_id = ?`
		args = append(args, filter.MethodologyID)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, filter.limit())
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list calculations")
	}
	defer rows.Close() //nolint:errcheck

	out := make([]model.Calculation, 0)
	for rows.Next() {
		calc, err := scanSQLite(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan calculation")
		}
		out = append(out, *calc)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list calculations iterate")
}

// DeleteCalculation implements Store.
func (s *SQLiteStore) DeleteCalculation(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM calculations WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete calculation %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: delete calculation %s", id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSQLite(row scannable) (*model.Calculation, error) {
	var calc model.Calculation
	var input, result string
	var assumptions sql.NullString
	err := row.Scan(&calc.ID, &calc.CompanyName, &calc.Industry, &calc.MethodologyID, &calc.MethodologyVersion,
		&input, &assumptions, &result, &calc.CreatedAt)
	if err != nil {
		return nil, err
	}
	var a []byte
	if assumptions.Valid {
		a = []byte(assumptions.String)
	}
	if err := decode(&calc, []byte(input), a, []byte(result)); err != nil {
		return nil, err
	}
	return &calc, nil
}
