package domain

import "math"

// Stats es media/mín/máx de un subconjunto de trades.
type Stats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// NewStats devuelve nil para un subconjunto vacío: el reporte omite la línea.
func NewStats(values []float64) *Stats {
	if len(values) == 0 {
		return nil
	}
	s := &Stats{Count: len(values), Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = mean(values)
	return s
}

// CurrentStatus es el estado de cobertura con las posiciones finales.
type CurrentStatus struct {
	UpAvgPrice       float64    `json:"up_avg_price"`
	DownAvgPrice     float64    `json:"down_avg_price"`
	CombinedAvgPrice float64    `json:"combined_avg_price"`
	State            HedgeState `json:"is_profitable"`
}

// CombinedPosition resume shares y dólares de ambos lados.
type CombinedPosition struct {
	TotalShares   float64 `json:"total_shares"`
	UpSharePct    float64 `json:"up_share_pct"`
	DownSharePct  float64 `json:"down_share_pct"`
	TotalCost     float64 `json:"total_cost"`
	UpCostPct     float64 `json:"up_cost_pct"`
	DownCostPct   float64 `json:"down_cost_pct"`
	TotalProceeds float64 `json:"total_proceeds"`
	NetInvestment float64 `json:"net_investment"`
}

// TimeAnalysis reparte el periodo de trading entre rachas rentables y no rentables.
type TimeAnalysis struct {
	TotalHours      float64        `json:"total_hours"`
	ProfitableHours float64        `json:"profitable_hours"`
	ProfitablePct   float64        `json:"profitable_pct"`
	UnprofitablePct float64        `json:"unprofitable_pct"`
	Best            *TimelineEntry `json:"best_entry"`  // menor combinado entre entradas rentables
	Worst           *TimelineEntry `json:"worst_entry"` // mayor combinado entre entradas no rentables
}

// SizingAnalysis compara el tamaño medio de compra de cada lado.
type SizingAnalysis struct {
	UpAvgSize   float64        `json:"up_avg_size"`
	DownAvgSize float64        `json:"down_avg_size"`
	SizeRatio   float64        `json:"size_ratio"` // Down / Up
	UpSizing    Classification `json:"up_sizing"`
	DownSizing  Classification `json:"down_sizing"`
}

// PriceMove es el primer y último precio de compra de un outcome.
type PriceMove struct {
	First     float64 `json:"first"`
	Last      float64 `json:"last"`
	ChangePct float64 `json:"change_pct"`
}

// EntryTiming compara cómo evolucionó el precio de entrada en cada lado.
type EntryTiming struct {
	Up   PriceMove `json:"up"`
	Down PriceMove `json:"down"`
}

// RiskAnalysis son los escenarios de resolución con la posición cubierta actual
// (el outcome ganador paga $1/share).
type RiskAnalysis struct {
	UpWinPnL         float64  `json:"up_win_pnl"`
	DownWinPnL       float64  `json:"down_win_pnl"`
	UpWinReturnPct   float64  `json:"up_win_return_pct"`
	DownWinReturnPct float64  `json:"down_win_return_pct"`
	UpBreakEven      float64  `json:"up_break_even_price"`
	DownBreakEven    float64  `json:"down_break_even_price"`
	ImpliedUpProb    *float64 `json:"implied_up_prob"`
	ImpliedDownProb  *float64 `json:"implied_down_prob"`
}

// BehaviorSummary son las estadísticas descriptivas del trader.
// Los punteros nil significan "no aplica" y el reporte omite la línea.
type BehaviorSummary struct {
	UpBuys    int `json:"up_buys"`
	UpSells   int `json:"up_sells"`
	DownBuys  int `json:"down_buys"`
	DownSells int `json:"down_sells"`

	AvgMinutesBetweenTrades float64 `json:"avg_time_between_trades"`

	UpBuyPrices    *Stats `json:"up_buy_prices"`
	UpSellPrices   *Stats `json:"up_sell_prices"`
	DownBuyPrices  *Stats `json:"down_buy_prices"`
	DownSellPrices *Stats `json:"down_sell_prices"`
	UpBuySizes     *Stats `json:"up_buy_sizes"`
	DownBuySizes   *Stats `json:"down_buy_sizes"`

	BuyPct  float64 `json:"buy_pct"`
	SellPct float64 `json:"sell_pct"`

	Status   CurrentStatus    `json:"current_status"`
	Combined CombinedPosition `json:"combined_position"`
	Time     *TimeAnalysis    `json:"time_analysis"`

	PositionRatio *float64        `json:"position_ratio"` // Down / Up
	CostRatio     *float64        `json:"cost_ratio"`     // Down / Up
	Spread        *Classification `json:"spread"`         // Down avg - Up avg

	Intensity  Classification  `json:"intensity"`
	Sizing     *SizingAnalysis `json:"sizing"`
	Strategy   Classification  `json:"strategy"`
	UpBuyPct   float64         `json:"up_buy_pct"`
	DownBuyPct float64         `json:"down_buy_pct"`
	Imbalance  *Classification `json:"imbalance"`
	Entry      *EntryTiming    `json:"entry_timing"`
	Risk       *RiskAnalysis   `json:"risk"`

	UpAccumulation   *Classification `json:"up_accumulation"`
	DownAccumulation *Classification `json:"down_accumulation"`
	UpPriceTrend     *Classification `json:"up_price_trend"`
	DownPriceTrend   *Classification `json:"down_price_trend"`
}

// tradeBuckets separa precios y tamaños por outcome/side manteniendo el orden.
type tradeBuckets struct {
	upBuyPrices, upSellPrices     []float64
	downBuyPrices, downSellPrices []float64
	upBuySizes, downBuySizes      []float64
}

func bucketTrades(sorted []Trade) tradeBuckets {
	var b tradeBuckets
	for _, t := range sorted {
		switch {
		case t.Outcome == OutcomeUp && t.Side == SideBuy:
			b.upBuyPrices = append(b.upBuyPrices, t.Price)
			b.upBuySizes = append(b.upBuySizes, t.Size)
		case t.Outcome == OutcomeUp:
			b.upSellPrices = append(b.upSellPrices, t.Price)
		case t.Side == SideBuy:
			b.downBuyPrices = append(b.downBuyPrices, t.Price)
			b.downBuySizes = append(b.downBuySizes, t.Size)
		default:
			b.downSellPrices = append(b.downSellPrices, t.Price)
		}
	}
	return b
}

// Summarize calcula las estadísticas de comportamiento.
// sorted debe venir ordenado por timestamp; up/down son las posiciones finales.
func Summarize(sorted []Trade, up, down OutcomePosition, timeline []TimelineEntry, intervals IntervalReport) BehaviorSummary {
	b := bucketTrades(sorted)

	s := BehaviorSummary{
		UpBuys:    len(b.upBuyPrices),
		UpSells:   len(b.upSellPrices),
		DownBuys:  len(b.downBuyPrices),
		DownSells: len(b.downSellPrices),

		AvgMinutesBetweenTrades: avgMinutesBetween(sorted),

		UpBuyPrices:    NewStats(b.upBuyPrices),
		UpSellPrices:   NewStats(b.upSellPrices),
		DownBuyPrices:  NewStats(b.downBuyPrices),
		DownSellPrices: NewStats(b.downSellPrices),
		UpBuySizes:     NewStats(b.upBuySizes),
		DownBuySizes:   NewStats(b.downBuySizes),
	}

	total := float64(len(sorted))
	buys := float64(s.UpBuys + s.DownBuys)
	s.BuyPct = pct(buys, total)
	s.SellPct = pct(total-buys, total)

	s.Status = currentStatus(up, down)
	s.Combined = combinedPosition(up, down)
	s.Time = timeAnalysis(timeline, intervals)

	hedged := up.IsOpen() && down.IsOpen()
	if hedged {
		r := down.Position / up.Position
		s.PositionRatio = &r
		imb := ClassifyImbalance(pct(math.Abs(down.Position-up.Position), s.Combined.TotalShares))
		s.Imbalance = &imb
		s.Risk = riskAnalysis(up, down, s.Combined.TotalCost)
	}
	if up.CostBasis > 0 && down.CostBasis > 0 {
		r := down.CostBasis / up.CostBasis
		s.CostRatio = &r
	}
	if up.AvgPrice > 0 && down.AvgPrice > 0 {
		sp := ClassifySpread(down.AvgPrice - up.AvgPrice)
		s.Spread = &sp
	}

	s.Intensity = ClassifyIntensity(s.AvgMinutesBetweenTrades)
	s.Strategy = ClassifyStrategy(s.UpBuys, s.DownBuys)
	s.UpBuyPct = pct(float64(s.UpBuys), buys)
	s.DownBuyPct = pct(float64(s.DownBuys), buys)

	if len(b.upBuySizes) > 0 && len(b.downBuySizes) > 0 {
		upAvg, downAvg := mean(b.upBuySizes), mean(b.downBuySizes)
		s.Sizing = &SizingAnalysis{
			UpAvgSize:   upAvg,
			DownAvgSize: downAvg,
			SizeRatio:   safeDiv(downAvg, upAvg),
			UpSizing:    ClassifySizing(coefficientOfVariation(b.upBuySizes)),
			DownSizing:  ClassifySizing(coefficientOfVariation(b.downBuySizes)),
		}
	}

	if len(b.upBuyPrices) > 0 && len(b.downBuyPrices) > 0 {
		s.Entry = &EntryTiming{
			Up:   priceMove(b.upBuyPrices),
			Down: priceMove(b.downBuyPrices),
		}
	}

	if len(b.upBuySizes) > upAccumulationMin {
		c := ClassifyAccumulation(b.upBuySizes)
		s.UpAccumulation = &c
	}
	if len(b.downBuySizes) > downAccumulationMin {
		c := ClassifyAccumulation(b.downBuySizes)
		s.DownAccumulation = &c
	}
	if len(b.upBuyPrices) > 0 {
		c := ClassifyPriceTrend(b.upBuyPrices)
		s.UpPriceTrend = &c
	}
	if len(b.downBuyPrices) > 0 {
		c := ClassifyPriceTrend(b.downBuyPrices)
		s.DownPriceTrend = &c
	}

	return s
}

// avgMinutesBetween devuelve el gap medio en minutos entre trades consecutivos.
func avgMinutesBetween(sorted []Trade) float64 {
	if len(sorted) < 2 {
		return 0
	}
	span := sorted[len(sorted)-1].Timestamp - sorted[0].Timestamp
	return float64(span) / 60 / float64(len(sorted)-1)
}

func currentStatus(up, down OutcomePosition) CurrentStatus {
	cs := CurrentStatus{
		UpAvgPrice:   up.AvgPrice,
		DownAvgPrice: down.AvgPrice,
	}
	cs.CombinedAvgPrice = cs.UpAvgPrice + cs.DownAvgPrice
	if up.IsOpen() && down.IsOpen() {
		cs.State = HedgeUnprofitable
		if cs.CombinedAvgPrice < hedgePayout {
			cs.State = HedgeProfitable
		}
	}
	return cs
}

func combinedPosition(up, down OutcomePosition) CombinedPosition {
	c := CombinedPosition{
		TotalShares:   up.Position + down.Position,
		TotalCost:     up.CostBasis + down.CostBasis,
		TotalProceeds: up.Proceeds + down.Proceeds,
	}
	c.UpSharePct = pct(up.Position, c.TotalShares)
	c.DownSharePct = pct(down.Position, c.TotalShares)
	c.UpCostPct = pct(up.CostBasis, c.TotalCost)
	c.DownCostPct = pct(down.CostBasis, c.TotalCost)
	c.NetInvestment = c.TotalCost - c.TotalProceeds
	return c
}

func timeAnalysis(timeline []TimelineEntry, intervals IntervalReport) *TimeAnalysis {
	if len(intervals.Profitable) == 0 && len(intervals.Unprofitable) == 0 {
		return nil
	}

	ta := &TimeAnalysis{
		TotalHours: float64(timeline[len(timeline)-1].Timestamp-timeline[0].Timestamp) / 3600,
	}
	for _, iv := range intervals.Profitable {
		ta.ProfitableHours += iv.Duration().Hours()
	}
	if ta.TotalHours > 0 {
		ta.ProfitablePct = ta.ProfitableHours / ta.TotalHours * 100
		ta.UnprofitablePct = 100 - ta.ProfitablePct
	}

	for i := range timeline {
		e := timeline[i]
		switch e.State {
		case HedgeProfitable:
			if ta.Best == nil || e.TotalAvgPrice < ta.Best.TotalAvgPrice {
				ta.Best = &e
			}
		case HedgeUnprofitable:
			if ta.Worst == nil || e.TotalAvgPrice > ta.Worst.TotalAvgPrice {
				ta.Worst = &e
			}
		}
	}
	return ta
}

func riskAnalysis(up, down OutcomePosition, totalCost float64) *RiskAnalysis {
	r := &RiskAnalysis{
		UpWinPnL:      up.Position - down.CostBasis,
		DownWinPnL:    down.Position - up.CostBasis,
		UpBreakEven:   safeDiv(down.CostBasis, up.Position),
		DownBreakEven: safeDiv(up.CostBasis, down.Position),
	}
	r.UpWinReturnPct = pct(r.UpWinPnL, totalCost)
	r.DownWinReturnPct = pct(r.DownWinPnL, totalCost)

	if up.AvgPrice > 0 && down.AvgPrice > 0 {
		upProb, downProb := up.AvgPrice, down.AvgPrice
		r.ImpliedUpProb = &upProb
		r.ImpliedDownProb = &downProb
	}
	return r
}

func priceMove(prices []float64) PriceMove {
	m := PriceMove{First: prices[0], Last: prices[len(prices)-1]}
	if m.First > 0 {
		m.ChangePct = (m.Last - m.First) / m.First * 100
	}
	return m
}
