package ports

import (
	"context"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// MarketProvider localiza mercados por texto libre.
type MarketProvider interface {
	// SearchMarket devuelve el primer mercado del primer evento que encaje con la query.
	SearchMarket(ctx context.Context, query string) (domain.Market, error)
}
