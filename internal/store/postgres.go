package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/impact-cli/internal/db"
	"github.com/sells-group/impact-cli/internal/model"
	"github.com/sells-group/impact-cli/internal/resilience"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var preparedStatements = map[string]string{
	"insert_calculation": `INSERT INTO calculations (id, company_name, industry, methodology_id, methodology_version, input, assumptions, result, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
	"get_calculation":    postgresSelect + ` WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = 5
	retry.OnRetry = resilience.RetryLogger("postgres", "connect")
	pool, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pool, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS calculations (
	id                  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_name        TEXT NOT NULL,
	industry            TEXT NOT NULL DEFAULT '',
	methodology_id      TEXT NOT NULL,
	methodology_version TEXT NOT NULL,
	input               JSONB NOT NULL,
	assumptions         JSONB,
	result              JSONB NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_calculations_company ON calculations(company_name);
CREATE INDEX IF NOT EXISTS idx_calculations_methodology ON calculations(methodology_id, methodology_version);
CREATE INDEX IF NOT EXISTS idx_calculations_created_at ON calculations(created_at DESC);
`

const postgresSelect = `SELECT id, company_name, industry, methodology_id, methodology_version, input, assumptions, result, created_at FROM calculations`

// Ping checks connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveCalculation(ctx context.Context, calc *model.Calculation) error {
	enc, err := prepare(calc)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, preparedStatements["insert_calculation"],
		calc.ID, calc.CompanyName, calc.Industry, calc.MethodologyID, calc.MethodologyVersion,
		enc.input, enc.assumptions, enc.result, calc.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert calculation %s", calc.ID)
}

func (s *PostgresStore) GetCalculation(ctx context.Context, id string) (*model.Calculation, error) {
	row := s.pool.QueryRow(ctx, preparedStatements["get_calculation"], id)
	calc, err := scanPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get calculation %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get calculation %s", id)
	}
	return calc, nil
}

func (s *PostgresStore) ListCalculations(ctx context.Context, filter CalculationFilter) ([]model.Calculation, error) {
	query := postgresSelect + ` WHERE 1=1`
	var args []any
	argIdx := 1

	if filter.Company != "" {
		query += fmt.Sprintf(` AND company_name = $%d`, argIdx)
		args = append(args, filter.Company)
		argIdx++
	}
	if filter.MethodologyID != "" {
		query += fmt.Sprintf(` AND methodology_id = $%d`, argIdx)
		args = append(args, filter.MethodologyID)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d`, argIdx)
	args = append(args, filter.limit())
	argIdx++
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list calculations")
	}
	defer rows.Close()

	out := make([]model.Calculation, 0)
	for rows.Next() {
		calc, err := scanPostgres(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan calculation")
		}
		out = append(out, *calc)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list calculations iterate")
}

func (s *PostgresStore) DeleteCalculation(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM calculations WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete calculation %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: delete calculation %s", id)
	}
	return nil
}

func scanPostgres(row scannable) (*model.Calculation, error) {
	var calc model.Calculation
	var input, assumptions, result []byte
	err := row.Scan(&calc.ID, &calc.CompanyName, &calc.Industry, &calc.MethodologyID, &calc.MethodologyVersion,
		&input, &assumptions, &result, &calc.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := decode(&calc, input, assumptions, result); err != nil {
		return nil, err
	}
	return &calc, nil
}
