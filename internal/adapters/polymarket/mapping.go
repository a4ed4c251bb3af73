package polymarket

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

const unknownMarketTitle = "Unknown Market"

// mapMarket convierte el par evento/mercado de Gamma a domain.Market.
// El título cae a question → title del mercado → title del evento.
func mapMarket(ev searchEvent, gm gammaMarket) domain.Market {
	m := domain.Market{
		ConditionID: gm.ConditionID,
		Question:    firstNonEmpty(gm.Question, gm.Title, ev.Title, unknownMarketTitle),
		Slug:        gm.Slug,
		EventTitle:  ev.Title,
	}

	if gm.EndDateISO != "" {
		if t, err := time.Parse(time.RFC3339, gm.EndDateISO); err == nil {
			m.EndDate = t
		}
	}

	m.Outcomes = parseOutcomes(gm.Outcomes)

	return m
}

// parseOutcomes acepta tanto "[\"Up\",\"Down\"]" como ["Up","Down"].
func parseOutcomes(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}
	var outcomes []string
	if err := json.Unmarshal(raw, &outcomes); err != nil {
		return nil
	}
	return outcomes
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ToTrade convierte el registro a domain.Trade.
// Un campo obligatorio ausente o no numérico devuelve domain.ErrMalformedTrade;
// valores fuera de rango devuelven domain.ErrInvalidTrade.
func (r TradeRecord) ToTrade() (domain.Trade, error) {
	required := []struct{ name, val string }{
		{"timestamp", r.Timestamp.String()},
		{"side", r.Side},
		{"outcome", r.Outcome},
		{"size", r.Size.String()},
		{"price", r.Price.String()},
	}
	for _, f := range required {
		if strings.TrimSpace(f.val) == "" {
			return domain.Trade{}, fmt.Errorf("%w: missing %s", domain.ErrMalformedTrade, f.name)
		}
	}

	ts, err := parseTradeTimestamp(r.Timestamp)
	if err != nil {
		return domain.Trade{}, err
	}
	size, err := r.Size.Float64()
	if err != nil {
		return domain.Trade{}, fmt.Errorf("%w: size %q", domain.ErrMalformedTrade, r.Size)
	}
	price, err := r.Price.Float64()
	if err != nil {
		return domain.Trade{}, fmt.Errorf("%w: price %q", domain.ErrMalformedTrade, r.Price)
	}
	side, err := domain.ParseSide(r.Side)
	if err != nil {
		return domain.Trade{}, err
	}
	outcome, err := domain.ParseOutcome(r.Outcome)
	if err != nil {
		return domain.Trade{}, err
	}

	t := domain.Trade{
		Timestamp:   ts,
		Side:        side,
		Outcome:     outcome,
		Size:        size,
		Price:       price,
		TxHash:      r.TransactionHash,
		Asset:       r.Asset,
		ConditionID: r.ConditionID,
		Title:       r.Title,
	}
	if err := t.Validate(); err != nil {
		return domain.Trade{}, err
	}
	return t, nil
}

// RecordFromTrade es la inversa de ToTrade.
func RecordFromTrade(t domain.Trade) TradeRecord {
	return TradeRecord{
		Side:            string(t.Side),
		Asset:           t.Asset,
		ConditionID:     t.ConditionID,
		Size:            Number(strconv.FormatFloat(t.Size, 'f', -1, 64)),
		Price:           Number(strconv.FormatFloat(t.Price, 'f', -1, 64)),
		Timestamp:       Number(strconv.FormatInt(t.Timestamp, 10)),
		Title:           t.Title,
		Outcome:         string(t.Outcome),
		TransactionHash: t.TxHash,
	}
}

// RecordsToTrades mapea una lista de registros. El primer registro inválido
// aborta la conversión y el error lleva su índice.
func RecordsToTrades(records []TradeRecord) ([]domain.Trade, error) {
	trades := make([]domain.Trade, 0, len(records))
	for i, r := range records {
		t, err := r.ToTrade()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// parseTradeTimestamp acepta epoch en segundos, milisegundos o con decimales.
func parseTradeTimestamp(n Number) (int64, error) {
	s := n.String()
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		if sec > 1e12 {
			return sec / 1000, nil
		}
		return sec, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f > 1e12 {
			f /= 1000
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("%w: timestamp %q", domain.ErrMalformedTrade, s)
}
