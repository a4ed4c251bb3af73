package domain

// RealizedPnL calcula el PnL realizado de un outcome:
//
//	proceeds - sharesSold × (costBasis / sharesBought)
//
// Aplica el coste medio agregado final a todas las ventas, incluidas las
// anteriores a compras posteriores. Es una aproximación; el valor cronológico
// está en OutcomePosition.RealizedAtSale.
func RealizedPnL(p OutcomePosition) float64 {
	avgCost := 0.0
	if p.SharesBought > 0 {
		avgCost = p.CostBasis / p.SharesBought
	}
	return p.Proceeds - p.SharesSold*avgCost
}

// PnLSummary es el PnL realizado por outcome y total.
// Unrealized siempre es nil: requiere precio de mercado en vivo.
type PnLSummary struct {
	UpRealized    float64 `json:"up_realized_pnl"`
	DownRealized  float64 `json:"down_realized_pnl"`
	TotalRealized float64 `json:"total_realized_pnl"`

	UpRealizedAtSale    float64 `json:"up_realized_pnl_at_sale"`
	DownRealizedAtSale  float64 `json:"down_realized_pnl_at_sale"`
	TotalRealizedAtSale float64 `json:"total_realized_pnl_at_sale"`

	Unrealized *float64 `json:"unrealized_pnl"`
}

// ComputePnL construye el resumen de PnL a partir de las posiciones finales.
func ComputePnL(up, down OutcomePosition) PnLSummary {
	s := PnLSummary{
		UpRealized:         RealizedPnL(up),
		DownRealized:       RealizedPnL(down),
		UpRealizedAtSale:   up.RealizedAtSale,
		DownRealizedAtSale: down.RealizedAtSale,
	}
	s.TotalRealized = s.UpRealized + s.DownRealized
	s.TotalRealizedAtSale = s.UpRealizedAtSale + s.DownRealizedAtSale
	return s
}
