package polymarket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

const searchPath = "/public-search"

// ErrMarketNotFound indica que la búsqueda no devolvió ningún evento con mercados.
var ErrMarketNotFound = errors.New("market not found")

// SearchMarket busca en Gamma y devuelve el primer mercado del primer evento
// que tenga mercados. Los resultados se cachean durante searchCacheTTL.
func (c *Client) SearchMarket(ctx context.Context, query string) (domain.Market, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return domain.Market{}, fmt.Errorf("polymarket.SearchMarket: empty query")
	}

	if v, ok := c.searchCache.Get(key); ok {
		if m, ok := v.(domain.Market); ok {
			slog.Debug("search cache hit", "query", query)
			return m, nil
		}
	}

	u := fmt.Sprintf("%s%s?q=%s", c.gammaBase, searchPath, url.QueryEscape(query))
	var resp searchResponse
	if err := c.get(ctx, c.gammaLimiter, u, &resp); err != nil {
		return domain.Market{}, fmt.Errorf("polymarket.SearchMarket: %w", err)
	}

	for _, ev := range resp.Events {
		if len(ev.Markets) == 0 {
			continue
		}
		m := mapMarket(ev, ev.Markets[0])
		c.searchCache.SetWithTTL(key, m, 1, searchCacheTTL)
		c.searchCache.Wait()

		slog.Debug("market found",
			"query", query,
			"condition_id", m.ConditionID,
			"events", len(resp.Events),
		)
		return m, nil
	}

	return domain.Market{}, fmt.Errorf("polymarket.SearchMarket: %q: %w", query, ErrMarketNotFound)
}
