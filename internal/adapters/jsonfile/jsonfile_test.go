package jsonfile_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyhedge/internal/adapters/jsonfile"
	"github.com/alejandrodnm/polyhedge/internal/domain"
)

func sampleTrades() []domain.Trade {
	return []domain.Trade{
		{Timestamp: 1700000000, Side: domain.SideBuy, Outcome: domain.OutcomeUp, Size: 10, Price: 0.40, TxHash: "0xa"},
		{Timestamp: 1700000060, Side: domain.SideBuy, Outcome: domain.OutcomeDown, Size: 10, Price: 0.50, TxHash: "0xb"},
	}
}

func TestSaveAndLoadTrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "trades.json")

	require.NoError(t, jsonfile.SaveTrades(path, sampleTrades()))
	got, err := jsonfile.LoadTrades(path)
	require.NoError(t, err)
	assert.Equal(t, sampleTrades(), got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestDecodeTrades_DataAPIDump(t *testing.T) {
	in := `[
		{"proxyWallet": "0x1", "side": "BUY", "asset": "123", "conditionId": "0xc",
		 "size": 25, "price": 0.53, "timestamp": 1700000000, "title": "BTC Up or Down",
		 "outcome": "Up", "outcomeIndex": 0, "transactionHash": "0xabc", "pseudonym": "x"}
	]`
	trades, err := jsonfile.DecodeTrades(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "0xabc", trades[0].TxHash)
	assert.InDelta(t, 0.53, trades[0].Price, 1e-9)
}

func TestDecodeTrades_MissingFieldReportsIndex(t *testing.T) {
	in := `[
		{"side": "BUY", "outcome": "Up", "size": 1, "price": 0.5, "timestamp": 1},
		{"side": "BUY", "outcome": "Up", "price": 0.5, "timestamp": 2}
	]`
	_, err := jsonfile.DecodeTrades(strings.NewReader(in))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedTrade)
	assert.Contains(t, err.Error(), "record 1")
	assert.Contains(t, err.Error(), "size")
}

func TestDecodeTrades_NotAnArray(t *testing.T) {
	_, err := jsonfile.DecodeTrades(strings.NewReader(`{"trades": []}`))
	assert.Error(t, err)
}

func TestLoadTrades_MissingFile(t *testing.T) {
	_, err := jsonfile.LoadTrades(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveAnalysis_FormatsTimestamps(t *testing.T) {
	result, err := domain.Analyze(sampleTrades())
	require.NoError(t, err)

	report := domain.Report{
		ID:     "run-1",
		Market: domain.Market{ConditionID: "0xc", Question: "BTC Up or Down"},
		User:   "0xuser",
		Trades: sampleTrades(),
		Result: result,
	}
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, jsonfile.SaveAnalysis(path, report, nil))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))

	assert.Equal(t, "run-1", out["analysis_id"])
	assert.Equal(t, "2023-11-14 22:14:20", out["first_profitable"])
	assert.Nil(t, out["first_unprofitable"])
	assert.NotContains(t, out, "trades")

	timeline := out["profitability_timeline"].([]any)
	require.Len(t, timeline, 2)
	first := timeline[0].(map[string]any)
	assert.Equal(t, "2023-11-14 22:13:20", first["timestamp"])
	assert.Nil(t, first["is_profitable"])
	assert.Equal(t, true, timeline[1].(map[string]any)["is_profitable"])

	intervals := out["profitable_intervals"].([]any)
	require.Len(t, intervals, 1)
	assert.Equal(t, 0.0, intervals[0].(map[string]any)["duration_seconds"])

	pnl := out["pnl"].(map[string]any)
	assert.Nil(t, pnl["unrealized_pnl"])
}

func TestSaveAnalysis_UsesLocation(t *testing.T) {
	result, err := domain.Analyze(sampleTrades())
	require.NoError(t, err)

	loc := time.FixedZone("UTC+2", 2*60*60)
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, jsonfile.SaveAnalysis(path, domain.Report{Result: result}, loc))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"first_trade": "2023-11-15 00:13:20"`)
}
