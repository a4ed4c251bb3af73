package domain

import "math"

// Label es una etiqueta categórica derivada por umbrales.
type Label string

const (
	LabelHigh     Label = "HIGH"
	LabelModerate Label = "MODERATE"
	LabelLow      Label = "LOW"

	LabelUpFocused       Label = "UP_FOCUSED"
	LabelDownFocused     Label = "DOWN_FOCUSED"
	LabelBalancedHedging Label = "BALANCED_HEDGING"

	LabelConsistent Label = "CONSISTENT"
	LabelVariable   Label = "VARIABLE"

	LabelUpOverpriced   Label = "UP_OVERPRICED"
	LabelDownOverpriced Label = "DOWN_OVERPRICED"
	LabelBalanced       Label = "BALANCED"

	LabelIncreasing Label = "INCREASING"
	LabelDecreasing Label = "DECREASING"
	LabelSteady     Label = "STEADY"

	LabelChasingHigher Label = "CHASING_HIGHER"
	LabelBuyingDips    Label = "BUYING_DIPS"
	LabelNeutral       Label = "NEUTRAL"
)

// Classification es una etiqueta junto al valor numérico del que se derivó.
type Classification struct {
	Label Label   `json:"label"`
	Value float64 `json:"value"`
}

// Umbrales de clasificación.
const (
	intensityHighMins     = 5.0
	intensityModerateMins = 15.0

	focusedBuyMultiple = 2

	consistentSizingCV = 50.0

	imbalanceHighPct     = 30.0
	imbalanceModeratePct = 15.0

	spreadThreshold = 0.10

	accumulationFactor  = 1.5
	upAccumulationMin   = 50 // compras Up necesarias para medir acumulación
	downAccumulationMin = 20 // compras Down necesarias para medir acumulación

	priceTrendThreshold = 0.05
)

// ClassifyIntensity etiqueta la frecuencia de trading por minutos medios entre trades.
func ClassifyIntensity(avgMinutes float64) Classification {
	switch {
	case avgMinutes < intensityHighMins:
		return Classification{Label: LabelHigh, Value: avgMinutes}
	case avgMinutes < intensityModerateMins:
		return Classification{Label: LabelModerate, Value: avgMinutes}
	default:
		return Classification{Label: LabelLow, Value: avgMinutes}
	}
}

// ClassifyStrategy compara el número de compras de cada lado.
// Value es el porcentaje de compras Up sobre el total de compras.
func ClassifyStrategy(upBuys, downBuys int) Classification {
	upPct := pct(float64(upBuys), float64(upBuys+downBuys))
	switch {
	case upBuys > downBuys*focusedBuyMultiple:
		return Classification{Label: LabelUpFocused, Value: upPct}
	case downBuys > upBuys*focusedBuyMultiple:
		return Classification{Label: LabelDownFocused, Value: upPct}
	default:
		return Classification{Label: LabelBalancedHedging, Value: upPct}
	}
}

// ClassifySizing etiqueta la consistencia del tamaño por su coeficiente de variación (%).
func ClassifySizing(cv float64) Classification {
	if cv < consistentSizingCV {
		return Classification{Label: LabelConsistent, Value: cv}
	}
	return Classification{Label: LabelVariable, Value: cv}
}

// ClassifyImbalance etiqueta la diferencia de shares entre lados (% del total).
func ClassifyImbalance(imbalancePct float64) Classification {
	switch {
	case imbalancePct > imbalanceHighPct:
		return Classification{Label: LabelHigh, Value: imbalancePct}
	case imbalancePct > imbalanceModeratePct:
		return Classification{Label: LabelModerate, Value: imbalancePct}
	default:
		return Classification{Label: LabelLow, Value: imbalancePct}
	}
}

// ClassifySpread etiqueta el spread Down - Up de los precios medios.
func ClassifySpread(spread float64) Classification {
	switch {
	case spread > spreadThreshold:
		return Classification{Label: LabelDownOverpriced, Value: spread}
	case spread < -spreadThreshold:
		return Classification{Label: LabelUpOverpriced, Value: spread}
	default:
		return Classification{Label: LabelBalanced, Value: spread}
	}
}

// ClassifyAccumulation compara el tamaño medio del último tercio de compras
// con el del primero. Value es el multiplicador del lado dominante
// (late/early si INCREASING o STEADY, early/late si DECREASING).
func ClassifyAccumulation(sizes []float64) Classification {
	n := len(sizes)
	early := mean(sizes[:n/3])
	// El último tercio redondea hacia arriba.
	late := mean(sizes[n-(n+2)/3:])

	switch {
	case late > early*accumulationFactor:
		return Classification{Label: LabelIncreasing, Value: safeDiv(late, early)}
	case early > late*accumulationFactor:
		return Classification{Label: LabelDecreasing, Value: safeDiv(early, late)}
	default:
		return Classification{Label: LabelSteady, Value: safeDiv(late, early)}
	}
}

// ClassifyPriceTrend compara el último precio de compra con el primero.
func ClassifyPriceTrend(prices []float64) Classification {
	if len(prices) == 0 {
		return Classification{Label: LabelNeutral}
	}
	delta := prices[len(prices)-1] - prices[0]
	switch {
	case delta > priceTrendThreshold:
		return Classification{Label: LabelChasingHigher, Value: delta}
	case delta < -priceTrendThreshold:
		return Classification{Label: LabelBuyingDips, Value: delta}
	default:
		return Classification{Label: LabelNeutral, Value: delta}
	}
}

// --- helpers numéricos ---

// safeDiv devuelve 0 cuando el denominador es 0.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func pct(part, total float64) float64 {
	return safeDiv(part, total) * 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// coefficientOfVariation devuelve desviación típica poblacional / media × 100.
func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if m == 0 {
		return 0
	}
	var sq float64
	for _, v := range values {
		sq += (v - m) * (v - m)
	}
	std := math.Sqrt(sq / float64(len(values)))
	return std / m * 100
}
