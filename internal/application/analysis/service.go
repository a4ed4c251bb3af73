package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polyhedge/internal/domain"
	"github.com/alejandrodnm/polyhedge/internal/ports"
)

// Config contiene la configuración del servicio.
type Config struct {
	Verify  bool // pide una página extra para confirmar que no faltan trades
	Persist bool // guarda cada análisis en storage
	Workers int  // usuarios en paralelo en AnalyzeUsers (0 = 4)
}

// Service orquesta búsqueda de mercado, descarga de trades, análisis,
// persistencia y notificación.
type Service struct {
	cfg      Config
	markets  ports.MarketProvider
	trades   ports.TradeProvider
	storage  ports.Storage
	notifier ports.Notifier

	now   func() time.Time
	newID func() string
}

// New crea un Service con todas las dependencias inyectadas.
// storage puede ser nil: el análisis se ejecuta igual, sin histórico.
func New(
	cfg Config,
	markets ports.MarketProvider,
	trades ports.TradeProvider,
	storage ports.Storage,
	notifier ports.Notifier,
) *Service {
	return &Service{
		cfg:      cfg,
		markets:  markets,
		trades:   trades,
		storage:  storage,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// FetchResult es el mercado localizado y los trades del usuario en él.
type FetchResult struct {
	Market domain.Market
	Trades []domain.Trade // ordenados por timestamp
	// Complete es nil si no se verificó o la verificación falló.
	Complete *bool
}

// Fetch localiza el mercado y descarga todos los trades del usuario.
func (s *Service) Fetch(ctx context.Context, query, user string) (FetchResult, error) {
	market, err := s.markets.SearchMarket(ctx, query)
	if err != nil {
		return FetchResult{}, fmt.Errorf("analysis.Fetch: %w", err)
	}
	slog.Info("market found",
		"question", market.Label(60),
		"condition_id", market.ConditionID,
	)

	return s.fetchTrades(ctx, market, user)
}

func (s *Service) fetchTrades(ctx context.Context, market domain.Market, user string) (FetchResult, error) {
	trades, err := s.trades.FetchUserTrades(ctx, market.ConditionID, user)
	if err != nil {
		return FetchResult{}, fmt.Errorf("analysis.Fetch: %w", err)
	}

	res := FetchResult{Market: market, Trades: domain.SortTrades(trades)}
	slog.Info("trades fetched", "user", user, "count", len(trades))

	if s.cfg.Verify && len(trades) > 0 {
		ok, err := s.trades.VerifyComplete(ctx, market.ConditionID, user, len(trades))
		switch {
		case err != nil:
			slog.Warn("could not verify trade completeness", "user", user, "err", err)
		case !ok:
			res.Complete = &ok
			slog.Warn("additional trades may exist; consider a larger page limit", "user", user)
		default:
			res.Complete = &ok
			slog.Debug("verification passed", "user", user)
		}
	}
	return res, nil
}

// Analyze ejecuta el análisis, lo persiste si hay storage y lo notifica.
func (s *Service) Analyze(ctx context.Context, market domain.Market, user string, trades []domain.Trade) (domain.Report, error) {
	report, err := s.buildReport(market, user, trades)
	if err != nil {
		return domain.Report{}, err
	}
	s.persist(ctx, report)

	if err := s.notifier.Notify(ctx, report); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	return report, nil
}

// Replay re-ejecuta un análisis guardado a partir de sus trades y lo notifica.
// No vuelve a persistirlo.
func (s *Service) Replay(ctx context.Context, id string) (domain.Report, error) {
	if s.storage == nil {
		return domain.Report{}, fmt.Errorf("analysis.Replay: storage disabled")
	}
	rec, trades, err := s.storage.GetAnalysis(ctx, id)
	if err != nil {
		return domain.Report{}, fmt.Errorf("analysis.Replay: %w", err)
	}

	market := domain.Market{ConditionID: rec.ConditionID, Question: rec.Question}
	report, err := s.buildReport(market, rec.User, trades)
	if err != nil {
		return domain.Report{}, err
	}
	report.ID, report.CreatedAt = rec.ID, rec.CreatedAt

	if err := s.notifier.Notify(ctx, report); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	return report, nil
}

// History devuelve los análisis guardados.
func (s *Service) History(ctx context.Context, user string, limit int) ([]domain.AnalysisRecord, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("analysis.History: storage disabled")
	}
	records, err := s.storage.GetHistory(ctx, user, limit)
	if err != nil {
		return nil, fmt.Errorf("analysis.History: %w", err)
	}
	return records, nil
}

func (s *Service) buildReport(market domain.Market, user string, trades []domain.Trade) (domain.Report, error) {
	start := time.Now()
	result, err := domain.Analyze(trades)
	if err != nil {
		return domain.Report{}, fmt.Errorf("analysis.Analyze: %w", err)
	}

	slog.Debug("analysis complete",
		"user", user,
		"trades", result.TradeCount,
		"profitable_intervals", len(result.Profitable),
		"unprofitable_intervals", len(result.Unprofitable),
		"elapsed", time.Since(start).Round(time.Microsecond),
	)

	return domain.Report{
		ID:        s.newID(),
		Market:    market,
		User:      user,
		CreatedAt: s.now(),
		Trades:    domain.SortTrades(trades),
		Result:    result,
	}, nil
}

// persist guarda el reporte; un fallo de storage no invalida el análisis.
func (s *Service) persist(ctx context.Context, report domain.Report) {
	if s.storage == nil || !s.cfg.Persist {
		return
	}
	if err := s.storage.SaveAnalysis(ctx, report); err != nil {
		slog.Warn("storage error", "id", report.ID, "err", err)
		return
	}
	slog.Debug("analysis stored", "id", report.ID)
}
