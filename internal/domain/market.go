package domain

import "time"

// Market es el mercado binario Up/Down localizado por búsqueda en Gamma.
type Market struct {
	ConditionID string
	Question    string // question || title || título del evento
	Slug        string
	EventTitle  string
	EndDate     time.Time
	Outcomes    []string // normalmente ["Up", "Down"]
}

// Label devuelve una etiqueta legible: la pregunta o, si falta, el conditionID.
func (m Market) Label(maxLen int) string {
	return TruncateQuestion(m.Question, m.ConditionID, maxLen)
}

// TruncateQuestion devuelve la pregunta del mercado truncada a maxLen caracteres.
// Si la pregunta está vacía usa los primeros caracteres del conditionID como fallback.
func TruncateQuestion(question, conditionID string, maxLen int) string {
	q := question
	if q == "" {
		if len(conditionID) > 20 {
			q = conditionID[:20] + "..."
		} else {
			q = conditionID
		}
	}
	if len(q) > maxLen {
		q = q[:maxLen-3] + "..."
	}
	return q
}

// AnalysisRecord es la fila resumida de un análisis persistido.
type AnalysisRecord struct {
	ID                string
	ConditionID       string
	Question          string
	User              string
	TradeCount        int
	FirstTrade        time.Time
	LastTrade         time.Time
	UpPosition        float64
	DownPosition      float64
	TotalCost         float64
	TotalRealizedPnL  float64
	ProfitableCount   int
	UnprofitableCount int
	FinalState        HedgeState
	CreatedAt         time.Time
}
