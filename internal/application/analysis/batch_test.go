package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

func TestService_AnalyzeUsers(t *testing.T) {
	tr := &mockTrades{
		byUser: map[string][]domain.Trade{
			"a": hedgedTrades(),
			"c": hedgedTrades()[:1],
		},
		errUser: "b",
	}
	st := &mockStorage{}
	n := &mockNotifier{}
	svc, markets := newTestService(Config{Persist: true, Workers: 2}, tr, st, n)
	svc.newID = func() string { return "id" } // los workers corren en paralelo

	results, err := svc.AnalyzeUsers(context.Background(), "btc", []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 1, markets.calls)

	assert.Equal(t, "a", results[0].User)
	require.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].Report.Result.TradeCount)

	assert.Error(t, results[1].Err)

	require.NoError(t, results[2].Err)
	assert.Equal(t, 1, results[2].Report.Result.TradeCount)

	// notifica en el orden de entrada, sin los fallidos
	require.Len(t, n.reports, 2)
	assert.Equal(t, "a", n.reports[0].User)
	assert.Equal(t, "c", n.reports[1].User)
	assert.Len(t, st.saved, 2)
}

func TestService_AnalyzeUsersCanceled(t *testing.T) {
	tr := &mockTrades{byUser: map[string][]domain.Trade{"a": hedgedTrades()}}
	svc, _ := newTestService(Config{}, tr, nil, &mockNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.AnalyzeUsers(ctx, "btc", []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}
