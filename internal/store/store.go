package store

import (
	"context"
	"errors"
	"time"

	"github.com/sells-group/geo-analytics/internal/model"
)

// Sentinel errors returned by every Store implementation.
var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Default and maximum page sizes for ListAnalyses.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// AnalysisFilter selects analyses for one user, newest first.
type AnalysisFilter struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// limit normalizes Limit into (0, MaxListLimit].
func (f AnalysisFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return f.Limit
	}
}

// Store defines persistence for users, analyses and token revocations.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u model.User) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// Analyses
	SaveAnalysis(ctx context.Context, rec model.AnalysisRecord) (*model.AnalysisRecord, error)
	SaveAnalyses(ctx context.Context, recs []model.AnalysisRecord) ([]model.AnalysisRecord, error)
	GetAnalysis(ctx context.Context, userID, id string) (*model.AnalysisRecord, error)
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.AnalysisRecord, error)

	// Token revocations
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	DeleteExpiredRevocations(ctx context.Context, now time.Time) (int, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
