package ports

import (
	"context"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// TradeProvider obtiene los trades históricos de un usuario en un mercado.
type TradeProvider interface {
	// FetchUserTrades pagina la Data API hasta recibir una página corta.
	// Devuelve los trades deduplicados, sin orden garantizado.
	FetchUserTrades(ctx context.Context, conditionID, user string) ([]domain.Trade, error)

	// VerifyComplete comprueba que no hay trades más allá de los ya descargados.
	VerifyComplete(ctx context.Context, conditionID, user string, fetched int) (bool, error)
}
