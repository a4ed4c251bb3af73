package domain

import (
	"fmt"
	"time"
)

// AnalysisResult es el resultado completo de analizar los trades de un trader
// en un mercado. Se construye una vez en Analyze y no comparte estado.
type AnalysisResult struct {
	TradeCount int `json:"trade_count"`

	Up   OutcomePosition `json:"up"`
	Down OutcomePosition `json:"down"`

	Timeline []TimelineEntry `json:"profitability_timeline"`
	IntervalReport

	PnL      PnLSummary      `json:"pnl"`
	Behavior BehaviorSummary `json:"behavior"`
}

// FirstTrade / LastTrade devuelven el rango temporal analizado (cero si no hay trades).
func (r AnalysisResult) FirstTrade() int64 {
	if len(r.Timeline) == 0 {
		return 0
	}
	return r.Timeline[0].Timestamp
}

func (r AnalysisResult) LastTrade() int64 {
	if len(r.Timeline) == 0 {
		return 0
	}
	return r.Timeline[len(r.Timeline)-1].Timestamp
}

// Analyze valida, ordena y procesa los trades en una sola pasada.
// Un trade inválido aborta el análisis sin resultados parciales.
func Analyze(trades []Trade) (AnalysisResult, error) {
	for i, t := range trades {
		if err := t.Validate(); err != nil {
			return AnalysisResult{}, fmt.Errorf("domain.Analyze: trade %d: %w", i, err)
		}
	}

	sorted := SortTrades(trades)

	var up, down OutcomePosition
	timeline := make([]TimelineEntry, 0, len(sorted))
	for _, t := range sorted {
		if t.Outcome == OutcomeUp {
			up = up.Apply(t.Side, t.Size, t.Price)
		} else {
			down = down.Apply(t.Side, t.Size, t.Price)
		}
		timeline = append(timeline, Evaluate(t.Timestamp, up, down))
	}

	intervals := DetectIntervals(timeline)

	return AnalysisResult{
		TradeCount:     len(sorted),
		Up:             up,
		Down:           down,
		Timeline:       timeline,
		IntervalReport: intervals,
		PnL:            ComputePnL(up, down),
		Behavior:       Summarize(sorted, up, down, timeline, intervals),
	}, nil
}

// Report es un análisis ejecutado para un trader y mercado concretos.
type Report struct {
	ID        string
	Market    Market
	User      string
	CreatedAt time.Time
	Trades    []Trade // ordenados
	Result    AnalysisResult
}
