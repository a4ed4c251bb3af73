package storage

// sqlite.go — histórico de análisis.
//
//   - `analyses`: una fila por ejecución con el resumen (posiciones, coste,
//     PnL realizado, rachas y estado final).
//   - `analysis_trades`: los trades ordenados que alimentaron el análisis,
//     para poder re-ejecutarlo sin volver a la API.
//   - Timestamps como INTEGER (epoch) para no depender del formato de fecha del driver.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
    id                 TEXT PRIMARY KEY,
    condition_id       TEXT    NOT NULL DEFAULT '',
    question           TEXT    NOT NULL DEFAULT '',
    user_address       TEXT    NOT NULL DEFAULT '',
    trade_count        INTEGER NOT NULL DEFAULT 0,
    first_trade        INTEGER NOT NULL DEFAULT 0,
    last_trade         INTEGER NOT NULL DEFAULT 0,
    up_position        REAL    NOT NULL DEFAULT 0,
    down_position      REAL    NOT NULL DEFAULT 0,
    total_cost         REAL    NOT NULL DEFAULT 0,
    realized_pnl       REAL    NOT NULL DEFAULT 0,
    profitable_count   INTEGER NOT NULL DEFAULT 0,
    unprofitable_count INTEGER NOT NULL DEFAULT 0,
    final_state        INTEGER NOT NULL DEFAULT 0,
    created_at         INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_trades (
    analysis_id  TEXT    NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
    seq          INTEGER NOT NULL,
    ts           INTEGER NOT NULL,
    side         TEXT    NOT NULL,
    outcome      TEXT    NOT NULL,
    size         REAL    NOT NULL,
    price        REAL    NOT NULL,
    tx_hash      TEXT    NOT NULL DEFAULT '',
    asset        TEXT    NOT NULL DEFAULT '',
    PRIMARY KEY (analysis_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_user    ON analyses(user_address, created_at DESC);
`

// ErrNotFound indica que no existe un análisis con ese ID.
var ErrNotFound = errors.New("analysis not found")

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// SaveAnalysis guarda el resumen y los trades del reporte en una transacción.
func (s *SQLiteStorage) SaveAnalysis(ctx context.Context, report domain.Report) error {
	if report.ID == "" {
		return fmt.Errorf("storage.SaveAnalysis: empty analysis id")
	}
	rec := recordFromReport(report)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveAnalysis: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO analyses
			(id, condition_id, question, user_address, trade_count, first_trade, last_trade,
			 up_position, down_position, total_cost, realized_pnl,
			 profitable_count, unprofitable_count, final_state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ConditionID, rec.Question, rec.User, rec.TradeCount,
		unixOrZero(rec.FirstTrade), unixOrZero(rec.LastTrade),
		rec.UpPosition, rec.DownPosition, rec.TotalCost, rec.TotalRealizedPnL,
		rec.ProfitableCount, rec.UnprofitableCount, int(rec.FinalState),
		rec.CreatedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("storage.SaveAnalysis: insert analysis %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO analysis_trades
			(analysis_id, seq, ts, side, outcome, size, price, tx_hash, asset)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveAnalysis: prepare: %w", err)
	}
	defer stmt.Close()

	for i, t := range report.Trades {
		if _, err := stmt.ExecContext(ctx,
			rec.ID, i, t.Timestamp, string(t.Side), string(t.Outcome),
			t.Size, t.Price, t.TxHash, t.Asset,
		); err != nil {
			return fmt.Errorf("storage.SaveAnalysis: insert trade %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveAnalysis: commit: %w", err)
	}
	return nil
}

const selectRecord = `
	SELECT id, condition_id, question, user_address, trade_count, first_trade, last_trade,
	       up_position, down_position, total_cost, realized_pnl,
	       profitable_count, unprofitable_count, final_state, created_at
	FROM analyses`

// GetHistory devuelve los últimos limit análisis, más recientes primero.
// user vacío no filtra.
func (s *SQLiteStorage) GetHistory(ctx context.Context, user string, limit int) ([]domain.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectRecord+`
		WHERE (? = '' OR user_address = ?)
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, user, user, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query: %w", err)
	}
	defer rows.Close()

	var records []domain.AnalysisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetAnalysis devuelve el resumen y los trades guardados de un análisis.
func (s *SQLiteStorage) GetAnalysis(ctx context.Context, id string) (domain.AnalysisRecord, []domain.Trade, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectRecord+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AnalysisRecord{}, nil, fmt.Errorf("storage.GetAnalysis: %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.AnalysisRecord{}, nil, fmt.Errorf("storage.GetAnalysis: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, side, outcome, size, price, tx_hash, asset
		FROM analysis_trades
		WHERE analysis_id = ?
		ORDER BY seq`, id)
	if err != nil {
		return domain.AnalysisRecord{}, nil, fmt.Errorf("storage.GetAnalysis: query trades: %w", err)
	}
	defer rows.Close()

	trades := make([]domain.Trade, 0, rec.TradeCount)
	for rows.Next() {
		var t domain.Trade
		var side, outcome string
		if err := rows.Scan(&t.Timestamp, &side, &outcome, &t.Size, &t.Price, &t.TxHash, &t.Asset); err != nil {
			return domain.AnalysisRecord{}, nil, fmt.Errorf("storage.GetAnalysis: scan trade: %w", err)
		}
		t.Side, t.Outcome = domain.Side(side), domain.Outcome(outcome)
		t.ConditionID, t.Title = rec.ConditionID, rec.Question
		trades = append(trades, t)
	}
	return rec, trades, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (domain.AnalysisRecord, error) {
	var (
		rec                         domain.AnalysisRecord
		first, last, createdAtMilli int64
		state                       int
	)
	if err := row.Scan(
		&rec.ID, &rec.ConditionID, &rec.Question, &rec.User, &rec.TradeCount,
		&first, &last,
		&rec.UpPosition, &rec.DownPosition, &rec.TotalCost, &rec.TotalRealizedPnL,
		&rec.ProfitableCount, &rec.UnprofitableCount, &state, &createdAtMilli,
	); err != nil {
		return domain.AnalysisRecord{}, err
	}
	rec.FinalState = domain.HedgeState(state)
	rec.CreatedAt = time.UnixMilli(createdAtMilli).UTC()
	if first > 0 {
		rec.FirstTrade = time.Unix(first, 0).UTC()
	}
	if last > 0 {
		rec.LastTrade = time.Unix(last, 0).UTC()
	}
	return rec, nil
}

// recordFromReport resume el reporte en la fila de `analyses`.
func recordFromReport(report domain.Report) domain.AnalysisRecord {
	r := report.Result
	rec := domain.AnalysisRecord{
		ID:                report.ID,
		ConditionID:       report.Market.ConditionID,
		Question:          report.Market.Question,
		User:              report.User,
		TradeCount:        r.TradeCount,
		UpPosition:        r.Up.Position,
		DownPosition:      r.Down.Position,
		TotalCost:         r.Up.CostBasis + r.Down.CostBasis,
		TotalRealizedPnL:  r.PnL.TotalRealized,
		ProfitableCount:   len(r.Profitable),
		UnprofitableCount: len(r.Unprofitable),
		FinalState:        r.Behavior.Status.State,
		CreatedAt:         report.CreatedAt,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if r.TradeCount > 0 {
		rec.FirstTrade = time.Unix(r.FirstTrade(), 0).UTC()
		rec.LastTrade = time.Unix(r.LastTrade(), 0).UTC()
	}
	return rec
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
