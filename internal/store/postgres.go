package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-analytics/internal/db"
	"github.com/sells-group/geo-analytics/internal/model"
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

const pgUniqueViolation = "23505"

const (
	pgInsertUser = `INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	pgSelectUser = `SELECT id, email, password_hash, created_at FROM users`

	pgInsertAnalysis = `INSERT INTO analysis_history (
	id, user_id, latitude, longitude, aqi,
	ground_stability, flood_risk, earthquake_risk, tsunami_risk, landslide_risk,
	land_cost, model_version, created_at, location
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	pgSelectAnalysis = `SELECT id, user_id, latitude, longitude, aqi,
	ground_stability, flood_risk, earthquake_risk, tsunami_risk, landslide_risk,
	land_cost, model_version, created_at
FROM analysis_history`
)

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
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

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS analysis_history (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id          TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	latitude         DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
	longitude        DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
	aqi              INTEGER NOT NULL,
	ground_stability TEXT NOT NULL,
	flood_risk       TEXT NOT NULL,
	earthquake_risk  TEXT NOT NULL,
	tsunami_risk     TEXT NOT NULL,
	landslide_risk   TEXT NOT NULL,
	land_cost        INTEGER NOT NULL,
	model_version    TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	location         BYTEA
);

CREATE INDEX IF NOT EXISTS idx_analysis_history_user_created ON analysis_history(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS revoked_tokens (
	token_id   TEXT PRIMARY KEY,
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_revoked_tokens_expires_at ON revoked_tokens(expires_at);
`

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

func (s *PostgresStore) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.CreatedAt = u.CreatedAt.UTC()

	_, err := s.pool.Exec(ctx, pgInsertUser, u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, eris.Wrap(err, "postgres: insert user")
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, pgSelectUser+` WHERE email = $1`, email)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, pgSelectUser+` WHERE id = $1`, id)
}

func (s *PostgresStore) getUser(ctx context.Context, query, arg string) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get user")
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, rec model.AnalysisRecord) (*model.AnalysisRecord, error) {
	rec, err := stampAnalysis(rec)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: save analysis")
	}
	args, err := analysisRow(rec)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: save analysis")
	}
	if _, err := s.pool.Exec(ctx, pgInsertAnalysis, args...); err != nil {
		return nil, eris.Wrap(err, "postgres: insert analysis")
	}
	return &rec, nil
}

// SaveAnalyses writes all records with a single COPY.
func (s *PostgresStore) SaveAnalyses(ctx context.Context, recs []model.AnalysisRecord) ([]model.AnalysisRecord, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	saved := make([]model.AnalysisRecord, 0, len(recs))
	rows := make([][]any, 0, len(recs))
	for i, rec := range recs {
		rec, err := stampAnalysis(rec)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: save analysis %d", i)
		}
		row, err := analysisRow(rec)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: save analysis %d", i)
		}
		saved = append(saved, rec)
		rows = append(rows, row)
	}

	columns := append(append([]string{}, analysisColumns...), "location")
	if _, err := db.CopyFrom(ctx, s.pool, "analysis_history", columns, rows); err != nil {
		return nil, eris.Wrap(err, "postgres: save analyses")
	}
	return saved, nil
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, userID, id string) (*model.AnalysisRecord, error) {
	rec, err := scanAnalysis(s.pool.QueryRow(ctx, pgSelectAnalysis+` WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get analysis %s", id)
	}
	return rec, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.AnalysisRecord, error) {
	query := pgSelectAnalysis + ` WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	args := []any{filter.UserID, filter.limit()}
	if filter.Offset > 0 {
		query += ` OFFSET $3`
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	recs := []model.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis")
		}
		recs = append(recs, *rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list analyses iterate")
}

func (s *PostgresStore) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO revoked_tokens (token_id, expires_at) VALUES ($1, $2)
		 ON CONFLICT (token_id) DO NOTHING`,
		tokenID, expiresAt.UTC(),
	)
	return eris.Wrap(err, "postgres: revoke token")
}

func (s *PostgresStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = $1)`, tokenID,
	).Scan(&revoked)
	if err != nil {
		return false, eris.Wrap(err, "postgres: check revoked token")
	}
	return revoked, nil
}

func (s *PostgresStore) DeleteExpiredRevocations(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired revocations")
	}
	return int(tag.RowsAffected()), nil
}
