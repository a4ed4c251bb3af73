package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

var (
	// ErrMalformedTrade indica que un registro no trae todos los campos obligatorios.
	ErrMalformedTrade = errors.New("malformed trade")
	// ErrInvalidTrade indica que un trade trae valores fuera de rango.
	ErrInvalidTrade = errors.New("invalid trade")
)

// Side es la dirección de la ejecución.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Outcome es uno de los dos lados complementarios del mercado binario.
type Outcome string

const (
	OutcomeUp   Outcome = "Up"
	OutcomeDown Outcome = "Down"
)

// ParseSide normaliza "buy"/"BUY"/"Sell"...
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	}
	return "", fmt.Errorf("%w: unknown side %q", ErrInvalidTrade, s)
}

// ParseOutcome acepta Up/Down y los alias Yes/No de los mercados binarios clásicos.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "yes":
		return OutcomeUp, nil
	case "down", "no":
		return OutcomeDown, nil
	}
	return "", fmt.Errorf("%w: unknown outcome %q", ErrInvalidTrade, s)
}

// Trade representa una ejecución del trader analizado.
// Los campos de metadata (TxHash, Asset, ConditionID, Title) vienen de la
// Data API y no intervienen en los cálculos.
type Trade struct {
	Timestamp int64 // epoch seconds
	Side      Side
	Outcome   Outcome
	Size      float64
	Price     float64

	TxHash      string
	Asset       string
	ConditionID string
	Title       string
}

// Value devuelve el valor en USDC de la ejecución (size × price).
func (t Trade) Value() float64 {
	return t.Size * t.Price
}

// Time devuelve el timestamp como time.Time en UTC.
func (t Trade) Time() time.Time {
	return time.Unix(t.Timestamp, 0).UTC()
}

// Validate comprueba rangos: side/outcome conocidos, size >= 0, price en [0,1].
func (t Trade) Validate() error {
	if t.Timestamp <= 0 {
		return fmt.Errorf("%w: timestamp %d", ErrInvalidTrade, t.Timestamp)
	}
	if t.Side != SideBuy && t.Side != SideSell {
		return fmt.Errorf("%w: side %q", ErrInvalidTrade, t.Side)
	}
	if t.Outcome != OutcomeUp && t.Outcome != OutcomeDown {
		return fmt.Errorf("%w: outcome %q", ErrInvalidTrade, t.Outcome)
	}
	if math.IsNaN(t.Size) || math.IsInf(t.Size, 0) || t.Size < 0 {
		return fmt.Errorf("%w: size %v", ErrInvalidTrade, t.Size)
	}
	if math.IsNaN(t.Price) || t.Price < 0 || t.Price > 1 {
		return fmt.Errorf("%w: price %v", ErrInvalidTrade, t.Price)
	}
	return nil
}

// SortTrades devuelve una copia ordenada por timestamp ascendente.
// El orden es estable: trades con el mismo timestamp conservan el orden de entrada.
func SortTrades(trades []Trade) []Trade {
	sorted := slices.Clone(trades)
	slices.SortStableFunc(sorted, func(a, b Trade) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})
	return sorted
}

// DedupTrades elimina duplicados exactos (la Data API repite trades entre
// páginas cuando entran ejecuciones nuevas durante la paginación).
// Conserva la primera aparición y el orden relativo.
func DedupTrades(trades []Trade) []Trade {
	seen := make(map[string]struct{}, len(trades))
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		k := t.dedupKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (t Trade) dedupKey() string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%g|%g",
		t.TxHash, t.Asset, t.Side, t.Outcome, t.Timestamp, t.Size, t.Price)
}
