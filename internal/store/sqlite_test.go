package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-analytics/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func createTestUser(t *testing.T, st Store, email string) *model.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), model.User{Email: email, PasswordHash: "hash"})
	require.NoError(t, err)
	return u
}

func testRecord(userID string, lat, lon float64) model.AnalysisRecord {
	return model.AnalysisRecord{
		UserID:          userID,
		Latitude:        lat,
		Longitude:       lon,
		AQI:             59,
		GroundStability: "High",
		FloodRisk:       "Medium",
		EarthquakeRisk:  "Low",
		TsunamiRisk:     "High",
		LandslideRisk:   "Low",
		LandCost:        270134,
		ModelVersion:    "sine-v1",
	}
}

// --- Users ---

func TestSQLite_CreateUser_AssignsIDAndTimestamp(t *testing.T) {
	st := newTestSQLiteStore(t)

	u := createTestUser(t, st, "ada@example.com")
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, time.UTC, u.CreatedAt.Location())
}

func TestSQLite_CreateUser_DuplicateEmail(t *testing.T) {
	st := newTestSQLiteStore(t)
	createTestUser(t, st, "ada@example.com")

	_, err := st.CreateUser(context.Background(), model.User{Email: "ada@example.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSQLite_GetUser(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	created := createTestUser(t, st, "ada@example.com")

	byEmail, err := st.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := st.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)
}

func TestSQLite_GetUser_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- Analyses ---

func TestSQLite_SaveAndGetAnalysis(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	u := createTestUser(t, st, "ada@example.com")

	saved, err := st.SaveAnalysis(ctx, testRecord(u.ID, 40.7128, -74.006))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := st.GetAnalysis(ctx, u.ID, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, u.ID, got.UserID)
	assert.InDelta(t, 40.7128, got.Latitude, 1e-12)
	assert.InDelta(t, -74.006, got.Longitude, 1e-12)
	assert.Equal(t, 59, got.AQI)
	assert.Equal(t, "High", got.GroundStability)
	assert.Equal(t, "Medium", got.FloodRisk)
	assert.Equal(t, 270134, got.LandCost)
	assert.Equal(t, "sine-v1", got.ModelVersion)
	assert.WithinDuration(t, saved.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestSQLite_SaveAnalysis_RequiresUser(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.SaveAnalysis(context.Background(), testRecord("", 1, 2))
	assert.Error(t, err)
}

func TestSQLite_GetAnalysis_OtherUser(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	owner := createTestUser(t, st, "owner@example.com")
	other := createTestUser(t, st, "other@example.com")

	saved, err := st.SaveAnalysis(ctx, testRecord(owner.ID, 10, 20))
	require.NoError(t, err)

	_, err = st.GetAnalysis(ctx, other.ID, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_ListAnalyses_NewestFirstAndLimited(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	u := createTestUser(t, st, "ada@example.com")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		rec := testRecord(u.ID, float64(i), float64(i))
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := st.SaveAnalysis(ctx, rec)
		require.NoError(t, err)
	}

	recs, err := st.ListAnalyses(ctx, AnalysisFilter{UserID: u.ID})
	require.NoError(t, err)
	require.Len(t, recs, DefaultListLimit)
	assert.InDelta(t, 11, recs[0].Latitude, 1e-12)
	assert.InDelta(t, 2, recs[len(recs)-1].Latitude, 1e-12)
	for i := 1; i < len(recs); i++ {
		assert.False(t, recs[i].CreatedAt.After(recs[i-1].CreatedAt), "row %d out of order", i)
	}

	page, err := st.ListAnalyses(ctx, AnalysisFilter{UserID: u.ID, Limit: 5, Offset: 10})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.InDelta(t, 1, page[0].Latitude, 1e-12)
	assert.InDelta(t, 0, page[1].Latitude, 1e-12)
}

func TestSQLite_ListAnalyses_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)
	u := createTestUser(t, st, "ada@example.com")

	recs, err := st.ListAnalyses(context.Background(), AnalysisFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestSQLite_ListAnalyses_ScopedToUser(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	a := createTestUser(t, st, "a@example.com")
	b := createTestUser(t, st, "b@example.com")

	_, err := st.SaveAnalysis(ctx, testRecord(a.ID, 1, 1))
	require.NoError(t, err)
	_, err = st.SaveAnalysis(ctx, testRecord(b.ID, 2, 2))
	require.NoError(t, err)

	recs, err := st.ListAnalyses(ctx, AnalysisFilter{UserID: a.ID, Limit: 50})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, a.ID, recs[0].UserID)
}

func TestSQLite_SaveAnalyses_Batch(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	u := createTestUser(t, st, "ada@example.com")

	var recs []model.AnalysisRecord
	for i := 0; i < 3; i++ {
		recs = append(recs, testRecord(u.ID, float64(i), float64(-i)))
	}

	saved, err := st.SaveAnalyses(ctx, recs)
	require.NoError(t, err)
	require.Len(t, saved, 3)
	ids := map[string]bool{}
	for _, rec := range saved {
		assert.NotEmpty(t, rec.ID)
		ids[rec.ID] = true
	}
	assert.Len(t, ids, 3)

	listed, err := st.ListAnalyses(ctx, AnalysisFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}

func TestSQLite_SaveAnalyses_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	saved, err := st.SaveAnalyses(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSQLite_SaveAnalyses_RollsBackOnInvalidRecord(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	u := createTestUser(t, st, "ada@example.com")

	_, err := st.SaveAnalyses(ctx, []model.AnalysisRecord{
		testRecord(u.ID, 1, 1),
		testRecord("", 2, 2),
	})
	require.Error(t, err)

	listed, err := st.ListAnalyses(ctx, AnalysisFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

// --- Token revocations ---

func TestSQLite_RevokeToken(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	revoked, err := st.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, st.RevokeToken(ctx, "jti-1", exp))
	// Revoking twice is a no-op.
	require.NoError(t, st.RevokeToken(ctx, "jti-1", exp))

	revoked, err = st.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestSQLite_DeleteExpiredRevocations(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, offset := range []time.Duration{-2 * time.Hour, -time.Minute, time.Hour} {
		require.NoError(t, st.RevokeToken(ctx, fmt.Sprintf("jti-%d", i), now.Add(offset)))
	}

	n, err := st.DeleteExpiredRevocations(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	revoked, err := st.IsTokenRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = st.IsTokenRevoked(ctx, "jti-0")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestSQLite_Ping(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Ping(context.Background()))
}

func TestAnalysisFilter_Limit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultListLimit},
		{-3, DefaultListLimit},
		{1, 1},
		{MaxListLimit, MaxListLimit},
		{MaxListLimit + 1, MaxListLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AnalysisFilter{Limit: tt.in}.limit(), "limit(%d)", tt.in)
	}
}
