package analysis

// batch.go — análisis de varios usuarios sobre el mismo mercado.
//
// El mercado se busca una sola vez; la descarga y el análisis de cada usuario
// corren en paralelo (limitados por Workers y por el rate limiter del client).
// Cada usuario produce su propio reporte independiente.

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

const defaultWorkers = 4

// UserResult es el resultado de un usuario dentro de AnalyzeUsers.
type UserResult struct {
	User   string
	Report domain.Report
	Err    error
}

// AnalyzeUsers analiza cada usuario por separado en el mercado de query.
// Un fallo en un usuario no detiene a los demás; solo la cancelación del
// contexto aborta el lote. Los reportes se notifican en el orden de users.
func (s *Service) AnalyzeUsers(ctx context.Context, query string, users []string) ([]UserResult, error) {
	market, err := s.markets.SearchMarket(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("analysis.AnalyzeUsers: %w", err)
	}

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	results := make([]UserResult, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, user := range users {
		g.Go(func() error {
			results[i] = s.analyzeUser(gctx, market, user)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis.AnalyzeUsers: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			slog.Warn("user analysis failed", "user", r.User, "err", r.Err)
			continue
		}
		if err := s.notifier.Notify(ctx, r.Report); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("batch analysis complete",
		"market", market.Label(60),
		"users", len(users),
		"failed", failed,
		"workers", workers,
	)
	return results, nil
}

func (s *Service) analyzeUser(ctx context.Context, market domain.Market, user string) UserResult {
	res := UserResult{User: user}

	fetched, err := s.fetchTrades(ctx, market, user)
	if err != nil {
		res.Err = err
		return res
	}
	report, err := s.buildReport(market, user, fetched.Trades)
	if err != nil {
		res.Err = err
		return res
	}
	s.persist(ctx, report)
	res.Report = report
	return res
}
