package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/polyhedge/internal/adapters/notify"
	"github.com/alejandrodnm/polyhedge/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyhedge/internal/adapters/storage"
	"github.com/alejandrodnm/polyhedge/internal/application/analysis"
	"github.com/alejandrodnm/polyhedge/internal/ports"
)

// app agrupa los adapters construidos para un comando.
type app struct {
	loc     *time.Location
	client  *polymarket.Client // nil si el comando no usa la API
	store   *storage.SQLiteStorage
	console *notify.Console
	svc     *analysis.Service
}

// newApp construye los adapters a partir de la config. withAPI indica si el
// comando necesita el client HTTP.
func newApp(opts *rootOptions, withAPI bool) (*app, error) {
	cfg := opts.cfg

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	a := &app{loc: loc, console: notify.NewConsole(loc)}

	var (
		markets ports.MarketProvider
		trades  ports.TradeProvider
		store   ports.Storage
	)

	if withAPI {
		a.client, err = polymarket.NewClient(cfg.API.GammaBase, cfg.API.DataBase, polymarket.Options{
			PageLimit: cfg.Fetch.PageLimit,
			MaxPages:  cfg.Fetch.MaxPages,
		})
		if err != nil {
			return nil, fmt.Errorf("create client: %w", err)
		}
		markets, trades = a.client, a.client
	}

	if cfg.StorageEnabled() {
		a.store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			a.Close()
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			return nil, err
		}
		store = a.store
	}

	a.svc = analysis.New(analysis.Config{
		Verify:  cfg.VerifyEnabled(),
		Persist: store != nil,
		Workers: cfg.Fetch.Workers,
	}, markets, trades, store, a.console)

	return a, nil
}

func (a *app) Close() {
	if a.client != nil {
		a.client.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("storage close error", "err", err)
		}
	}
}
