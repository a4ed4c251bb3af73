package domain

// OutcomePosition es el estado acumulado de un outcome (Up o Down) tras
// procesar en orden todos los trades de ese outcome.
//
// Invariantes tras cada Apply:
//   - Position == SharesBought - SharesSold
//   - Position <= 0 ⇒ AvgPrice == 0 y TotalCost == 0 (no se modela coste de cortos)
type OutcomePosition struct {
	SharesBought float64 `json:"shares_bought"`
	SharesSold   float64 `json:"shares_sold"`
	CostBasis    float64 `json:"cost_basis"` // Σ size×price de compras
	Proceeds     float64 `json:"proceeds"`   // Σ size×price de ventas
	Position     float64 `json:"position"`   // neto firmado
	AvgPrice     float64 `json:"avg_price"`  // precio medio ponderado de la posición abierta
	TotalCost    float64 `json:"total_cost"` // AvgPrice × Position, incremental

	// RealizedAtSale acumula (precio venta - avg vigente) × shares cerradas en
	// cada venta. Es el PnL realizado cronológico; el de RealizedPnL usa el coste
	// medio agregado final.
	RealizedAtSale float64 `json:"realized_at_sale"`
}

// Apply devuelve el estado resultante de aplicar una ejecución.
// No modifica el receptor.
func (p OutcomePosition) Apply(side Side, size, price float64) OutcomePosition {
	value := size * price

	switch side {
	case SideBuy:
		p.SharesBought += size
		p.CostBasis += value
		p.TotalCost += value
		p.Position = p.SharesBought - p.SharesSold
		if p.Position > 0 {
			p.AvgPrice = p.TotalCost / p.Position
		}

	case SideSell:
		// Solo las shares que había en largo cierran posición; el resto es oversell.
		if p.Position > 0 {
			closed := min(size, p.Position)
			p.RealizedAtSale += closed * (price - p.AvgPrice)
		}
		p.SharesSold += size
		p.Proceeds += value
		p.Position = p.SharesBought - p.SharesSold
		if p.Position > 0 {
			p.TotalCost -= size * p.AvgPrice
			p.AvgPrice = p.TotalCost / p.Position
		}
	}

	if p.Position <= 0 {
		p.TotalCost = 0
		p.AvgPrice = 0
	}
	return p
}

// IsOpen devuelve true si hay posición larga abierta.
func (p OutcomePosition) IsOpen() bool {
	return p.Position > 0
}

// NetInvestment es lo gastado en compras menos lo recuperado en ventas.
func (p OutcomePosition) NetInvestment() float64 {
	return p.CostBasis - p.Proceeds
}
