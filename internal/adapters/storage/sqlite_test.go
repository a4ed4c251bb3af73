package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyhedge/internal/adapters/storage"
	"github.com/alejandrodnm/polyhedge/internal/domain"
)

const (
	userA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	userB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func makeReport(t *testing.T, id, user string, createdAt time.Time) domain.Report {
	t.Helper()
	trades := []domain.Trade{
		{Timestamp: 1700000000, Side: domain.SideBuy, Outcome: domain.OutcomeUp, Size: 10, Price: 0.40, TxHash: "0x1"},
		{Timestamp: 1700000060, Side: domain.SideBuy, Outcome: domain.OutcomeDown, Size: 10, Price: 0.50, TxHash: "0x2"},
		{Timestamp: 1700000120, Side: domain.SideSell, Outcome: domain.OutcomeUp, Size: 4, Price: 0.55, TxHash: "0x3"},
	}
	result, err := domain.Analyze(trades)
	require.NoError(t, err)
	return domain.Report{
		ID:        id,
		Market:    domain.Market{ConditionID: "0xcond", Question: "Will X happen?"},
		User:      user,
		CreatedAt: createdAt,
		Trades:    trades,
		Result:    result,
	}
}

func newStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteStorage_SaveAndGetHistory(t *testing.T) {
	db := newStorage(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.SaveAnalysis(ctx, makeReport(t, "a1", userA, base)))
	require.NoError(t, db.SaveAnalysis(ctx, makeReport(t, "a2", userB, base.Add(time.Minute))))
	require.NoError(t, db.SaveAnalysis(ctx, makeReport(t, "a3", userA, base.Add(2*time.Minute))))

	history, err := db.GetHistory(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Más recientes primero
	assert.Equal(t, "a3", history[0].ID)
	assert.Equal(t, "a1", history[2].ID)

	rec := history[0]
	assert.Equal(t, "0xcond", rec.ConditionID)
	assert.Equal(t, "Will X happen?", rec.Question)
	assert.Equal(t, 3, rec.TradeCount)
	assert.InDelta(t, 6, rec.UpPosition, 1e-9)
	assert.InDelta(t, 10, rec.DownPosition, 1e-9)
	assert.InDelta(t, 9, rec.TotalCost, 1e-9)
	assert.Equal(t, domain.HedgeProfitable, rec.FinalState)
	assert.Equal(t, 1, rec.ProfitableCount)
	assert.Equal(t, base.Add(2*time.Minute), rec.CreatedAt)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), rec.FirstTrade)
}

func TestSQLiteStorage_GetHistoryFiltersAndLimits(t *testing.T) {
	db := newStorage(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a1", "b1", "a2", "a3"} {
		user := userA
		if id[0] == 'b' {
			user = userB
		}
		require.NoError(t, db.SaveAnalysis(ctx, makeReport(t, id, user, base.Add(time.Duration(i)*time.Minute))))
	}

	history, err := db.GetHistory(ctx, userA, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "a3", history[0].ID)
	assert.Equal(t, "a2", history[1].ID)

	history, err = db.GetHistory(ctx, userB, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestSQLiteStorage_GetAnalysisReturnsTrades(t *testing.T) {
	db := newStorage(t)
	ctx := context.Background()
	report := makeReport(t, "a1", userA, time.Now().UTC())
	require.NoError(t, db.SaveAnalysis(ctx, report))

	rec, trades, err := db.GetAnalysis(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, userA, rec.User)
	require.Len(t, trades, 3)
	assert.Equal(t, report.Trades[2].TxHash, trades[2].TxHash)
	assert.Equal(t, domain.SideSell, trades[2].Side)

	// re-ejecutar sobre lo guardado da el mismo resultado
	replayed, err := domain.Analyze(trades)
	require.NoError(t, err)
	assert.Equal(t, report.Result.PnL, replayed.PnL)
}

func TestSQLiteStorage_GetAnalysisNotFound(t *testing.T) {
	_, _, err := newStorage(t).GetAnalysis(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLiteStorage_DuplicateIDRollsBack(t *testing.T) {
	db := newStorage(t)
	ctx := context.Background()
	report := makeReport(t, "a1", userA, time.Now().UTC())

	require.NoError(t, db.SaveAnalysis(ctx, report))
	assert.Error(t, db.SaveAnalysis(ctx, report))

	_, trades, err := db.GetAnalysis(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, trades, 3)
}

func TestSQLiteStorage_EmptyIDRejected(t *testing.T) {
	err := newStorage(t).SaveAnalysis(context.Background(), domain.Report{})
	assert.Error(t, err)
}
