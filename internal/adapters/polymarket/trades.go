package polymarket

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	json "github.com/goccy/go-json"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

const tradesPath = "/trades"

// ErrInvalidUser indica que el usuario no es una dirección hex de wallet.
var ErrInvalidUser = errors.New("invalid user address")

// NormalizeUser valida la dirección del usuario y la devuelve en minúsculas,
// que es como la indexa la Data API.
func NormalizeUser(user string) (string, error) {
	user = strings.TrimSpace(user)
	if !common.IsHexAddress(user) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUser, user)
	}
	return strings.ToLower(common.HexToAddress(user).Hex()), nil
}

// FetchUserTrades pagina GET /trades hasta recibir una página más corta que
// el límite o alcanzar maxPages. Devuelve los trades deduplicados en el orden
// en que llegaron.
func (c *Client) FetchUserTrades(ctx context.Context, conditionID, user string) ([]domain.Trade, error) {
	user, err := NormalizeUser(user)
	if err != nil {
		return nil, fmt.Errorf("polymarket.FetchUserTrades: %w", err)
	}

	var (
		records  []TradeRecord
		total    int
		hasTotal bool
	)

	for page := 0; ; page++ {
		if page >= c.maxPages {
			slog.Warn("reached page safety limit, stopping",
				"max_pages", c.maxPages,
				"fetched", len(records),
			)
			break
		}

		offset := page * c.pageLimit
		batch, pageTotal, ok, err := c.fetchTradesPage(ctx, conditionID, user, offset)
		if err != nil {
			return nil, fmt.Errorf("polymarket.FetchUserTrades: page %d: %w", page, err)
		}
		if ok && !hasTotal {
			total, hasTotal = pageTotal, true
		}
		records = append(records, batch...)

		slog.Debug("fetched trades page",
			"page", page+1,
			"offset", offset,
			"count", len(batch),
			"total", len(records),
		)

		if len(batch) < c.pageLimit {
			break
		}
	}

	if hasTotal && total != len(records) {
		slog.Warn("trade count mismatch",
			"expected", total,
			"fetched", len(records),
		)
	}

	trades, err := RecordsToTrades(records)
	if err != nil {
		return nil, fmt.Errorf("polymarket.FetchUserTrades: %w", err)
	}

	deduped := domain.DedupTrades(trades)
	if dropped := len(trades) - len(deduped); dropped > 0 {
		slog.Debug("dropped duplicate trades", "count", dropped)
	}
	return deduped, nil
}

// VerifyComplete pide una página más allá de lo descargado; si viene vacía
// no quedan trades pendientes.
func (c *Client) VerifyComplete(ctx context.Context, conditionID, user string, fetched int) (bool, error) {
	user, err := NormalizeUser(user)
	if err != nil {
		return false, fmt.Errorf("polymarket.VerifyComplete: %w", err)
	}

	batch, _, _, err := c.fetchTradesPage(ctx, conditionID, user, fetched)
	if err != nil {
		return false, fmt.Errorf("polymarket.VerifyComplete: %w", err)
	}
	return len(batch) == 0, nil
}

// fetchTradesPage descarga una página. La Data API responde con un array o
// con un objeto {trades, totalCount|total}; ok indica si trae total.
func (c *Client) fetchTradesPage(ctx context.Context, conditionID, user string, offset int) ([]TradeRecord, int, bool, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.pageLimit))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("takerOnly", "false")
	q.Set("market", conditionID)
	q.Set("user", user)

	var raw json.RawMessage
	if err := c.get(ctx, c.dataLimiter, c.dataBase+tradesPath+"?"+q.Encode(), &raw); err != nil {
		return nil, 0, false, err
	}

	body := bytes.TrimSpace(raw)
	switch {
	case len(body) == 0 || bytes.Equal(body, []byte("null")):
		return nil, 0, false, nil
	case body[0] == '[':
		var records []TradeRecord
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, 0, false, fmt.Errorf("decode trades array: %w", err)
		}
		return records, 0, false, nil
	case body[0] == '{':
		var env tradesEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, 0, false, fmt.Errorf("decode trades object: %w", err)
		}
		total, ok := env.total()
		return env.Trades, total, ok, nil
	}
	return nil, 0, false, fmt.Errorf("unexpected trades body: %.40s", body)
}
