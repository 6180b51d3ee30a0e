package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/geo-analytics/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// Pragmas such as foreign_keys are per connection.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS analysis_history (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL REFERENCES users(id),
	latitude         REAL NOT NULL,
	longitude        REAL NOT NULL,
	aqi              INTEGER NOT NULL,
	ground_stability TEXT NOT NULL,
	flood_risk       TEXT NOT NULL,
	earthquake_risk  TEXT NOT NULL,
	tsunami_risk     TEXT NOT NULL,
	landslide_risk   TEXT NOT NULL,
	land_cost        INTEGER NOT NULL,
	model_version    TEXT NOT NULL,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	location         BLOB
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
	token_id   TEXT PRIMARY KEY,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analysis_history_user_created ON analysis_history(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_revoked_tokens_expires_at ON revoked_tokens(expires_at);
`

const sqliteInsertAnalysis = `INSERT INTO analysis_history (
	id, user_id, latitude, longitude, aqi,
	ground_stability, flood_risk, earthquake_risk, tsunami_risk, landslide_risk,
	land_cost, model_version, created_at, location
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const sqliteSelectAnalysis = `SELECT id, user_id, latitude, longitude, aqi,
	ground_stability, flood_risk, earthquake_risk, tsunami_risk, landslide_risk,
	land_cost, model_version, created_at
FROM analysis_history`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.CreatedAt = u.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrEmailTaken
		}
		return nil, eris.Wrap(err, "sqlite: insert user")
	}
	return &u, nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email,
	)
	return scanSQLiteUser(row)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id,
	)
	return scanSQLiteUser(row)
}

func scanSQLiteUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan user")
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, rec model.AnalysisRecord) (*model.AnalysisRecord, error) {
	rec, err := stampAnalysis(rec)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: save analysis")
	}
	args, err := analysisRow(rec)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: save analysis")
	}
	if _, err := s.db.ExecContext(ctx, sqliteInsertAnalysis, args...); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert analysis")
	}
	return &rec, nil
}

func (s *SQLiteStore) SaveAnalyses(ctx context.Context, recs []model.AnalysisRecord) ([]model.AnalysisRecord, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteInsertAnalysis)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare insert analysis")
	}
	defer stmt.Close() //nolint:errcheck

	saved := make([]model.AnalysisRecord, 0, len(recs))
	for i, rec := range recs {
		rec, err := stampAnalysis(rec)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: save analysis %d", i)
		}
		args, err := analysisRow(rec)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: save analysis %d", i)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert analysis %d", i)
		}
		saved = append(saved, rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}
	return saved, nil
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, userID, id string) (*model.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx,
		sqliteSelectAnalysis+` WHERE id = ? AND user_id = ?`, id, userID,
	)
	rec, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get analysis %s", id)
	}
	return rec, nil
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.AnalysisRecord, error) {
	query := sqliteSelectAnalysis + ` WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	args := []any{filter.UserID, filter.limit()}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	recs := []model.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis")
		}
		recs = append(recs, *rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list analyses iterate")
}

func (s *SQLiteStore) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (token_id, expires_at) VALUES (?, ?)
		 ON CONFLICT (token_id) DO NOTHING`,
		tokenID, expiresAt.Unix(),
	)
	return eris.Wrap(err, "sqlite: revoke token")
}

func (s *SQLiteStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE token_id = ?`, tokenID,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: check revoked token")
	}
	return n > 0, nil
}

func (s *SQLiteStore) DeleteExpiredRevocations(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at <= ?`, now.Unix(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired revocations")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}
