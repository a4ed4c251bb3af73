package domain

import "time"

// hedgePayout es lo que paga un par YES+NO completo al resolverse el mercado.
const hedgePayout = 1.0

// HedgeState es el resultado del test de cobertura en un punto del timeline.
type HedgeState int8

const (
	// HedgeUndefined: no hay posición positiva en ambos outcomes a la vez.
	HedgeUndefined HedgeState = iota
	HedgeProfitable
	HedgeUnprofitable
)

// String implementa fmt.Stringer.
func (s HedgeState) String() string {
	switch s {
	case HedgeProfitable:
		return "PROFITABLE"
	case HedgeUnprofitable:
		return "NOT_PROFITABLE"
	default:
		return "UNDEFINED"
	}
}

// Defined devuelve true si el test de cobertura aplica.
func (s HedgeState) Defined() bool {
	return s != HedgeUndefined
}

// MarshalJSON serializa como true / false / null.
func (s HedgeState) MarshalJSON() ([]byte, error) {
	switch s {
	case HedgeProfitable:
		return []byte("true"), nil
	case HedgeUnprofitable:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// TimelineEntry es el snapshot de rentabilidad emitido tras cada trade.
type TimelineEntry struct {
	Timestamp     int64      `json:"timestamp"`
	UpAvgPrice    float64    `json:"up_avg_price"`
	DownAvgPrice  float64    `json:"down_avg_price"`
	TotalAvgPrice float64    `json:"total_avg_price"`
	State         HedgeState `json:"is_profitable"`
	UpPosition    float64    `json:"up_position"`
	DownPosition  float64    `json:"down_position"`
}

// Evaluate calcula la entrada de timeline a partir del estado de ambos outcomes.
//
// Solo con posición > 0 en los dos lados el par está cubierto: pagar menos de
// $1 combinado asegura beneficio al resolverse.
func Evaluate(ts int64, up, down OutcomePosition) TimelineEntry {
	e := TimelineEntry{
		Timestamp:    ts,
		UpAvgPrice:   up.AvgPrice,
		DownAvgPrice: down.AvgPrice,
		UpPosition:   up.Position,
		DownPosition: down.Position,
	}

	switch {
	case up.IsOpen() && down.IsOpen():
		e.TotalAvgPrice = up.AvgPrice + down.AvgPrice
		e.State = HedgeUnprofitable
		if e.TotalAvgPrice < hedgePayout {
			e.State = HedgeProfitable
		}
	case up.IsOpen():
		e.TotalAvgPrice = up.AvgPrice
	case down.IsOpen():
		e.TotalAvgPrice = down.AvgPrice
	}
	return e
}

// Interval es una racha máxima de entradas con el mismo HedgeState definido.
// Start y End son timestamps de la primera y última entrada de la racha.
type Interval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Duration devuelve End - Start.
func (i Interval) Duration() time.Duration {
	return time.Duration(i.End-i.Start) * time.Second
}

// IntervalReport agrupa las rachas detectadas y los primeros cruces.
type IntervalReport struct {
	Profitable        []Interval `json:"profitable_intervals"`
	Unprofitable      []Interval `json:"unprofitable_intervals"`
	FirstProfitable   *int64     `json:"first_profitable"`
	FirstUnprofitable *int64     `json:"first_unprofitable"`
}

// DetectIntervals comprime el timeline en rachas rentables / no rentables.
//
// Las entradas HedgeUndefined se saltan: no abren, cierran ni rompen rachas.
// Cada racha termina en la última entrada definida antes del cambio de estado.
func DetectIntervals(timeline []TimelineEntry) IntervalReport {
	r := IntervalReport{
		Profitable:   []Interval{},
		Unprofitable: []Interval{},
	}

	current := HedgeUndefined
	var start, lastDefined int64

	closeRun := func(end int64) {
		iv := Interval{Start: start, End: end}
		if current == HedgeProfitable {
			r.Profitable = append(r.Profitable, iv)
		} else {
			r.Unprofitable = append(r.Unprofitable, iv)
		}
	}

	for _, e := range timeline {
		if !e.State.Defined() {
			continue
		}

		switch {
		case e.State == HedgeProfitable && r.FirstProfitable == nil:
			ts := e.Timestamp
			r.FirstProfitable = &ts
		case e.State == HedgeUnprofitable && r.FirstUnprofitable == nil:
			ts := e.Timestamp
			r.FirstUnprofitable = &ts
		}

		if e.State != current {
			if current.Defined() {
				closeRun(lastDefined)
			}
			current = e.State
			start = e.Timestamp
		}
		lastDefined = e.Timestamp
	}

	if current.Defined() {
		closeRun(lastDefined)
	}
	return r
}
