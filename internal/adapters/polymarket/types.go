package polymarket

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// DTOs raw de la API de Polymarket. Solo se usan dentro de este paquete,
// salvo TradeRecord, que también es el formato del fichero de trades.

// --- Gamma API ---

// searchResponse es la respuesta de GET /public-search.
type searchResponse struct {
	Events []searchEvent `json:"events"`
}

// searchEvent agrupa los mercados de un evento.
type searchEvent struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Slug    string        `json:"slug"`
	Markets []gammaMarket `json:"markets"`
}

// gammaMarket es un mercado dentro de un evento de Gamma.
// Gamma devuelve outcomes normalmente como un string JSON ("[\"Up\", \"Down\"]"),
// a veces como array.
type gammaMarket struct {
	ConditionID string          `json:"conditionId"`
	Question    string          `json:"question"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	EndDateISO  string          `json:"endDate"`
	Outcomes    json.RawMessage `json:"outcomes"`
}

// --- Data API ---

// tradesEnvelope es la variante objeto de GET /trades.
type tradesEnvelope struct {
	Trades     []TradeRecord `json:"trades"`
	TotalCount *int          `json:"totalCount"`
	Total      *int          `json:"total"`
}

// total devuelve totalCount o, si falta, total.
func (e tradesEnvelope) total() (int, bool) {
	if e.TotalCount != nil {
		return *e.TotalCount, true
	}
	if e.Total != nil {
		return *e.Total, true
	}
	return 0, false
}

// Number es un numérico de la Data API. Acepta tanto 0.45 como "0.45";
// vacío significa que el campo no venía.
type Number string

// UnmarshalJSON guarda el literal sin comillas.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "null" {
		s = ""
	}
	*n = Number(s)
	return nil
}

// MarshalJSON escribe el número sin comillas.
func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(string(n), 64); err != nil {
		return nil, err
	}
	return []byte(n), nil
}

func (n Number) String() string { return string(n) }

// Float64 parsea el número.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// TradeRecord es un trade tal como lo devuelve la Data API.
type TradeRecord struct {
	ProxyWallet     string `json:"proxyWallet,omitempty"`
	Side            string `json:"side"`
	Asset           string `json:"asset,omitempty"`
	ConditionID     string `json:"conditionId,omitempty"`
	Size            Number `json:"size"`
	Price           Number `json:"price"`
	Timestamp       Number `json:"timestamp"`
	Title           string `json:"title,omitempty"`
	Outcome         string `json:"outcome"`
	TransactionHash string `json:"transactionHash,omitempty"`
}
