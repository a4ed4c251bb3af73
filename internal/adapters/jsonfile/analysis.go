package jsonfile

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// TimeLayout es el formato de fecha de los ficheros exportados.
const TimeLayout = "2006-01-02 15:04:05"

type exportMarket struct {
	ConditionID string `json:"condition_id"`
	Question    string `json:"question"`
}

type exportEntry struct {
	Timestamp string `json:"timestamp"`
	domain.TimelineEntry
}

type exportInterval struct {
	Start           string  `json:"start"`
	End             string  `json:"end"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type exportTime struct {
	TotalHours      float64      `json:"total_hours"`
	ProfitableHours float64      `json:"profitable_hours"`
	ProfitablePct   float64      `json:"profitable_pct"`
	UnprofitablePct float64      `json:"unprofitable_pct"`
	Best            *exportEntry `json:"best_entry"`
	Worst           *exportEntry `json:"worst_entry"`
}

type exportBehavior struct {
	domain.BehaviorSummary
	Time *exportTime `json:"time_analysis"`
}

// exportAnalysis es el JSON de resultados: sin listas de trades y con las
// fechas formateadas.
type exportAnalysis struct {
	ID         string       `json:"analysis_id,omitempty"`
	Market     exportMarket `json:"market"`
	User       string       `json:"user,omitempty"`
	CreatedAt  string       `json:"created_at,omitempty"`
	TradeCount int          `json:"trade_count"`
	FirstTrade *string      `json:"first_trade"`
	LastTrade  *string      `json:"last_trade"`

	Up   domain.OutcomePosition `json:"up"`
	Down domain.OutcomePosition `json:"down"`

	Timeline          []exportEntry    `json:"profitability_timeline"`
	Profitable        []exportInterval `json:"profitable_intervals"`
	Unprofitable      []exportInterval `json:"unprofitable_intervals"`
	FirstProfitable   *string          `json:"first_profitable"`
	FirstUnprofitable *string          `json:"first_unprofitable"`

	PnL      domain.PnLSummary `json:"pnl"`
	Behavior exportBehavior    `json:"behavior"`
}

// SaveAnalysis exporta el resultado del reporte a path. Las fechas se
// renderizan en loc (UTC si es nil).
func SaveAnalysis(path string, report domain.Report, loc *time.Location) error {
	if err := writeJSON(path, newExport(report, loc)); err != nil {
		return fmt.Errorf("jsonfile.SaveAnalysis: %w", err)
	}
	return nil
}

func newExport(report domain.Report, loc *time.Location) exportAnalysis {
	if loc == nil {
		loc = time.UTC
	}
	format := func(ts int64) string {
		return time.Unix(ts, 0).In(loc).Format(TimeLayout)
	}
	formatPtr := func(ts *int64) *string {
		if ts == nil {
			return nil
		}
		s := format(*ts)
		return &s
	}
	entryPtr := func(e *domain.TimelineEntry) *exportEntry {
		if e == nil {
			return nil
		}
		return &exportEntry{Timestamp: format(e.Timestamp), TimelineEntry: *e}
	}
	intervals := func(list []domain.Interval) []exportInterval {
		out := make([]exportInterval, len(list))
		for i, iv := range list {
			out[i] = exportInterval{
				Start:           format(iv.Start),
				End:             format(iv.End),
				DurationSeconds: iv.Duration().Seconds(),
			}
		}
		return out
	}

	r := report.Result
	e := exportAnalysis{
		ID: report.ID,
		Market: exportMarket{
			ConditionID: report.Market.ConditionID,
			Question:    report.Market.Question,
		},
		User:              report.User,
		TradeCount:        r.TradeCount,
		Up:                r.Up,
		Down:              r.Down,
		Timeline:          make([]exportEntry, len(r.Timeline)),
		Profitable:        intervals(r.Profitable),
		Unprofitable:      intervals(r.Unprofitable),
		FirstProfitable:   formatPtr(r.FirstProfitable),
		FirstUnprofitable: formatPtr(r.FirstUnprofitable),
		PnL:               r.PnL,
		Behavior:          exportBehavior{BehaviorSummary: r.Behavior},
	}
	if !report.CreatedAt.IsZero() {
		e.CreatedAt = report.CreatedAt.In(loc).Format(TimeLayout)
	}
	if r.TradeCount > 0 {
		first, last := r.FirstTrade(), r.LastTrade()
		e.FirstTrade, e.LastTrade = formatPtr(&first), formatPtr(&last)
	}
	for i, entry := range r.Timeline {
		e.Timeline[i] = exportEntry{Timestamp: format(entry.Timestamp), TimelineEntry: entry}
	}
	if t := r.Behavior.Time; t != nil {
		e.Behavior.Time = &exportTime{
			TotalHours:      t.TotalHours,
			ProfitableHours: t.ProfitableHours,
			ProfitablePct:   t.ProfitablePct,
			UnprofitablePct: t.UnprofitablePct,
			Best:            entryPtr(t.Best),
			Worst:           entryPtr(t.Worst),
		}
	}
	return e
}
