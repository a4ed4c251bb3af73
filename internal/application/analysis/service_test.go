package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// --- mocks ---

type mockMarkets struct {
	market domain.Market
	err    error
	calls  int
}

func (m *mockMarkets) SearchMarket(_ context.Context, _ string) (domain.Market, error) {
	m.calls++
	return m.market, m.err
}

type mockTrades struct {
	mu       sync.Mutex
	byUser   map[string][]domain.Trade
	errUser  string
	complete bool
	verifyOK bool
	verified []int
}

func (m *mockTrades) FetchUserTrades(_ context.Context, _ string, user string) ([]domain.Trade, error) {
	if user == m.errUser {
		return nil, errors.New("boom")
	}
	return m.byUser[user], nil
}

func (m *mockTrades) VerifyComplete(_ context.Context, _ string, _ string, fetched int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verified = append(m.verified, fetched)
	if !m.verifyOK {
		return false, errors.New("verify failed")
	}
	return m.complete, nil
}

type mockStorage struct {
	mu      sync.Mutex
	saved   []domain.Report
	saveErr error
	record  domain.AnalysisRecord
	trades  []domain.Trade
}

func (m *mockStorage) SaveAnalysis(_ context.Context, r domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *mockStorage) GetHistory(_ context.Context, _ string, _ int) ([]domain.AnalysisRecord, error) {
	return []domain.AnalysisRecord{m.record}, nil
}

func (m *mockStorage) GetAnalysis(_ context.Context, id string) (domain.AnalysisRecord, []domain.Trade, error) {
	if id != m.record.ID {
		return domain.AnalysisRecord{}, nil, errors.New("not found")
	}
	return m.record, m.trades, nil
}

func (m *mockStorage) Close() error { return nil }

type mockNotifier struct {
	reports []domain.Report
}

func (m *mockNotifier) Notify(_ context.Context, r domain.Report) error {
	m.reports = append(m.reports, r)
	return nil
}

// --- helpers ---

var fixedNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func hedgedTrades() []domain.Trade {
	return []domain.Trade{
		{Timestamp: 1700000060, Side: domain.SideBuy, Outcome: domain.OutcomeDown, Size: 10, Price: 0.50},
		{Timestamp: 1700000000, Side: domain.SideBuy, Outcome: domain.OutcomeUp, Size: 10, Price: 0.40},
	}
}

func newTestService(cfg Config, tr *mockTrades, st *mockStorage, n *mockNotifier) (*Service, *mockMarkets) {
	markets := &mockMarkets{market: domain.Market{ConditionID: "0xcond", Question: "BTC Up or Down"}}
	var svc *Service
	if st == nil {
		svc = New(cfg, markets, tr, nil, n)
	} else {
		svc = New(cfg, markets, tr, st, n)
	}
	ids := 0
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}
	return svc, markets
}

// --- tests ---

func TestService_FetchSortsAndVerifies(t *testing.T) {
	tr := &mockTrades{byUser: map[string][]domain.Trade{"u": hedgedTrades()}, verifyOK: true, complete: true}
	svc, _ := newTestService(Config{Verify: true}, tr, nil, &mockNotifier{})

	res, err := svc.Fetch(context.Background(), "btc", "u")
	require.NoError(t, err)

	assert.Equal(t, "0xcond", res.Market.ConditionID)
	require.Len(t, res.Trades, 2)
	assert.Equal(t, int64(1700000000), res.Trades[0].Timestamp)
	require.NotNil(t, res.Complete)
	assert.True(t, *res.Complete)
	assert.Equal(t, []int{2}, tr.verified)
}

func TestService_FetchVerifyErrorIsNotFatal(t *testing.T) {
	tr := &mockTrades{byUser: map[string][]domain.Trade{"u": hedgedTrades()}}
	svc, _ := newTestService(Config{Verify: true}, tr, nil, &mockNotifier{})

	res, err := svc.Fetch(context.Background(), "btc", "u")
	require.NoError(t, err)
	assert.Nil(t, res.Complete)
}

func TestService_FetchSkipsVerifyWhenDisabledOrEmpty(t *testing.T) {
	tr := &mockTrades{byUser: map[string][]domain.Trade{"u": hedgedTrades()}, verifyOK: true}
	svc, _ := newTestService(Config{Verify: false}, tr, nil, &mockNotifier{})
	_, err := svc.Fetch(context.Background(), "btc", "u")
	require.NoError(t, err)

	svc, _ = newTestService(Config{Verify: true}, tr, nil, &mockNotifier{})
	_, err = svc.Fetch(context.Background(), "btc", "nobody")
	require.NoError(t, err)

	assert.Empty(t, tr.verified)
}

func TestService_FetchMarketError(t *testing.T) {
	svc, markets := newTestService(Config{}, &mockTrades{}, nil, &mockNotifier{})
	markets.err = errors.New("not found")

	_, err := svc.Fetch(context.Background(), "btc", "u")
	assert.Error(t, err)
}

func TestService_AnalyzePersistsAndNotifies(t *testing.T) {
	st := &mockStorage{}
	n := &mockNotifier{}
	svc, _ := newTestService(Config{Persist: true}, &mockTrades{}, st, n)

	report, err := svc.Analyze(context.Background(), domain.Market{ConditionID: "0xcond"}, "u", hedgedTrades())
	require.NoError(t, err)

	assert.Equal(t, "id-1", report.ID)
	assert.Equal(t, fixedNow, report.CreatedAt)
	assert.Equal(t, int64(1700000000), report.Trades[0].Timestamp)
	assert.Equal(t, domain.HedgeProfitable, report.Result.Behavior.Status.State)

	require.Len(t, st.saved, 1)
	assert.Equal(t, "id-1", st.saved[0].ID)
	require.Len(t, n.reports, 1)
}

func TestService_AnalyzeWithoutPersist(t *testing.T) {
	st := &mockStorage{}
	svc, _ := newTestService(Config{Persist: false}, &mockTrades{}, st, &mockNotifier{})

	_, err := svc.Analyze(context.Background(), domain.Market{}, "u", hedgedTrades())
	require.NoError(t, err)
	assert.Empty(t, st.saved)
}

func TestService_AnalyzeStorageErrorIsNotFatal(t *testing.T) {
	st := &mockStorage{saveErr: errors.New("disk full")}
	n := &mockNotifier{}
	svc, _ := newTestService(Config{Persist: true}, &mockTrades{}, st, n)

	_, err := svc.Analyze(context.Background(), domain.Market{}, "u", hedgedTrades())
	require.NoError(t, err)
	assert.Len(t, n.reports, 1)
}

func TestService_AnalyzeInvalidTrade(t *testing.T) {
	n := &mockNotifier{}
	svc, _ := newTestService(Config{}, &mockTrades{}, nil, n)

	bad := []domain.Trade{{Timestamp: 1, Side: domain.SideBuy, Outcome: domain.OutcomeUp, Size: 1, Price: 2}}
	_, err := svc.Analyze(context.Background(), domain.Market{}, "u", bad)
	assert.ErrorIs(t, err, domain.ErrInvalidTrade)
	assert.Empty(t, n.reports)
}

func TestService_Replay(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	st := &mockStorage{
		record: domain.AnalysisRecord{ID: "stored", ConditionID: "0xcond", Question: "Q", User: "u", CreatedAt: created},
		trades: hedgedTrades(),
	}
	n := &mockNotifier{}
	svc, _ := newTestService(Config{Persist: true}, &mockTrades{}, st, n)

	report, err := svc.Replay(context.Background(), "stored")
	require.NoError(t, err)
	assert.Equal(t, "stored", report.ID)
	assert.Equal(t, created, report.CreatedAt)
	assert.Equal(t, "Q", report.Market.Question)
	assert.Len(t, n.reports, 1)
	assert.Empty(t, st.saved)

	_, err = svc.Replay(context.Background(), "missing")
	assert.Error(t, err)
}

func TestService_HistoryRequiresStorage(t *testing.T) {
	svc, _ := newTestService(Config{}, &mockTrades{}, nil, &mockNotifier{})
	_, err := svc.History(context.Background(), "", 10)
	assert.Error(t, err)
	_, err = svc.Replay(context.Background(), "x")
	assert.Error(t, err)
}
