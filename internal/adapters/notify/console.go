package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

const (
	ruleWidth  = 80
	dateLayout = "2006-01-02 15:04:05"
	shortDate  = "2006-01-02 15:04"
)

// Console implementa ports.Notifier.
type Console struct {
	out io.Writer
	loc *time.Location
}

// NewConsole crea un notificador que escribe a stdout con fechas en loc.
func NewConsole(loc *time.Location) *Console {
	return NewConsoleWriter(os.Stdout, loc)
}

// NewConsoleWriter crea un notificador sobre w. loc nil equivale a UTC.
func NewConsoleWriter(w io.Writer, loc *time.Location) *Console {
	if loc == nil {
		loc = time.UTC
	}
	return &Console{out: w, loc: loc}
}

// Notify imprime el reporte completo del análisis.
func (c *Console) Notify(_ context.Context, report domain.Report) error {
	r := report.Result

	fmt.Fprintln(c.out, strings.Repeat("=", ruleWidth))
	fmt.Fprintln(c.out, "COMPREHENSIVE TRADE ANALYSIS")
	fmt.Fprintln(c.out, strings.Repeat("=", ruleWidth))
	if report.Market.Question != "" {
		fmt.Fprintf(c.out, "Market: %s\n", report.Market.Label(70))
	}
	if report.User != "" {
		fmt.Fprintf(c.out, "User:   %s\n", report.User)
	}
	fmt.Fprintln(c.out)

	if r.TradeCount == 0 {
		fmt.Fprintln(c.out, "No trades to analyze.")
		return nil
	}

	c.printPositions(r)
	c.printAveragePrices(r)
	c.printTimeline(r)
	c.printPnL(r.PnL)
	c.printBehavior(r.Behavior)
	c.printPatterns(r.Behavior)
	c.printInsights(r)

	fmt.Fprintln(c.out, strings.Repeat("=", ruleWidth))
	return nil
}

func (c *Console) section(title string) {
	fmt.Fprintln(c.out, title)
	fmt.Fprintln(c.out, strings.Repeat("-", ruleWidth))
}

func (c *Console) date(ts int64) string {
	return time.Unix(ts, 0).In(c.loc).Format(dateLayout)
}

// printPositions cubre BASIC STATISTICS, SHARES y DOLLAR ANALYSIS en una tabla.
func (c *Console) printPositions(r domain.AnalysisResult) {
	b := r.Behavior
	c.section("BASIC STATISTICS / SHARES / DOLLARS")

	table := tablewriter.NewWriter(c.out)
	table.Header("", "Up", "Down", "Total")
	table.Append("Buys",
		fmt.Sprintf("%d", b.UpBuys), fmt.Sprintf("%d", b.DownBuys), fmt.Sprintf("%d", b.UpBuys+b.DownBuys))
	table.Append("Sells",
		fmt.Sprintf("%d", b.UpSells), fmt.Sprintf("%d", b.DownSells), fmt.Sprintf("%d", b.UpSells+b.DownSells))
	table.Append("Shares bought",
		shares(r.Up.SharesBought), shares(r.Down.SharesBought), shares(r.Up.SharesBought+r.Down.SharesBought))
	table.Append("Shares sold",
		shares(r.Up.SharesSold), shares(r.Down.SharesSold), shares(r.Up.SharesSold+r.Down.SharesSold))
	table.Append("Final position",
		shares(r.Up.Position), shares(r.Down.Position), shares(r.Up.Position+r.Down.Position))
	table.Append("Total cost",
		usd(r.Up.CostBasis), usd(r.Down.CostBasis), usd(r.Up.CostBasis+r.Down.CostBasis))
	table.Append("Total proceeds",
		usd(r.Up.Proceeds), usd(r.Down.Proceeds), usd(r.Up.Proceeds+r.Down.Proceeds))
	table.Append("Net investment",
		usd(r.Up.NetInvestment()), usd(r.Down.NetInvestment()), usd(r.Up.NetInvestment()+r.Down.NetInvestment()))
	table.Render()
	fmt.Fprintln(c.out)
}

func (c *Console) printAveragePrices(r domain.AnalysisResult) {
	c.section("AVERAGE PRICES")
	fmt.Fprintf(c.out, "Up Average Price:        %s\n", avgOrNA(r.Up))
	fmt.Fprintf(c.out, "Down Average Price:      %s\n", avgOrNA(r.Down))

	st := r.Behavior.Status
	if r.Up.IsOpen() || r.Down.IsOpen() {
		fmt.Fprintf(c.out, "Combined Avg (Up+Down):  %s\n", price(st.CombinedAvgPrice))
		fmt.Fprintf(c.out, "Profitability Status:    %s\n", stateLabel(st.State))
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printTimeline(r domain.AnalysisResult) {
	c.section("PROFITABILITY TIMELINE")

	never := func(ts *int64) string {
		if ts == nil {
			return "Never"
		}
		return c.date(*ts)
	}
	fmt.Fprintf(c.out, "First Became Profitable:   %s\n", never(r.FirstProfitable))
	fmt.Fprintf(c.out, "First Became Unprofitable: %s\n", never(r.FirstUnprofitable))
	fmt.Fprintln(c.out)

	c.printIntervals("Profitable Intervals", r.Profitable)
	c.printIntervals("Unprofitable Intervals", r.Unprofitable)
}

func (c *Console) printIntervals(title string, list []domain.Interval) {
	fmt.Fprintf(c.out, "%s: %d\n", title, len(list))
	if len(list) == 0 {
		fmt.Fprintln(c.out)
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Start", "End", "Duration")
	for i, iv := range list {
		table.Append(
			fmt.Sprintf("%d", i+1),
			time.Unix(iv.Start, 0).In(c.loc).Format(shortDate),
			time.Unix(iv.End, 0).In(c.loc).Format(shortDate),
			iv.Duration().String(),
		)
	}
	table.Render()
	fmt.Fprintln(c.out)
}

func (c *Console) printPnL(p domain.PnLSummary) {
	c.section("PROFIT & LOSS (PnL)")
	fmt.Fprintf(c.out, "Up Realized PnL:         %s\n", usd(p.UpRealized))
	fmt.Fprintf(c.out, "Down Realized PnL:       %s\n", usd(p.DownRealized))
	fmt.Fprintf(c.out, "Total Realized PnL:      %s\n", usd(p.TotalRealized))
	fmt.Fprintf(c.out, "Realized at Sale:        %s (Up %s / Down %s)\n",
		usd(p.TotalRealizedAtSale), usd(p.UpRealizedAtSale), usd(p.DownRealizedAtSale))
	if p.Unrealized == nil {
		fmt.Fprintln(c.out, "Unrealized PnL:          N/A (needs live market price)")
	} else {
		fmt.Fprintf(c.out, "Unrealized PnL:          %s\n", usd(*p.Unrealized))
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printBehavior(b domain.BehaviorSummary) {
	c.section("TRADING BEHAVIOR INSIGHTS")
	fmt.Fprintf(c.out, "Average Time Between Trades: %.1f minutes\n\n", b.AvgMinutesBetweenTrades)

	c.printStats("Up Buy Prices", b.UpBuyPrices, price)
	c.printStats("Up Sell Prices", b.UpSellPrices, price)
	c.printStats("Down Buy Prices", b.DownBuyPrices, price)
	c.printStats("Down Sell Prices", b.DownSellPrices, price)
	c.printStats("Up Buy Sizes", b.UpBuySizes, shares)
	c.printStats("Down Buy Sizes", b.DownBuySizes, shares)
	fmt.Fprintln(c.out)
}

// printStats omite el bloque si el subconjunto está vacío.
func (c *Console) printStats(title string, s *domain.Stats, f func(float64) string) {
	if s == nil {
		return
	}
	fmt.Fprintf(c.out, "%s (%d):\n", title, s.Count)
	fmt.Fprintf(c.out, "  Average: %s\n", f(s.Mean))
	fmt.Fprintf(c.out, "  Min:     %s\n", f(s.Min))
	fmt.Fprintf(c.out, "  Max:     %s\n", f(s.Max))
}

func (c *Console) printPatterns(b domain.BehaviorSummary) {
	c.section("TRADING PATTERNS")
	fmt.Fprintf(c.out, "Buy/Sell Ratio:          %.1f%% buys / %.1f%% sells\n", b.BuyPct, b.SellPct)
	fmt.Fprintf(c.out, "Up/Down Ratio:           %d Up / %d Down\n", b.UpBuys+b.UpSells, b.DownBuys+b.DownSells)
	fmt.Fprintln(c.out)
}

func (c *Console) printInsights(r domain.AnalysisResult) {
	b := r.Behavior
	c.section("KEY INSIGHTS & BEHAVIORAL ANALYSIS")

	fmt.Fprintln(c.out, "CURRENT STATUS")
	fmt.Fprintf(c.out, "Current Up Avg Price:     %s\n", avgOrNA(r.Up))
	fmt.Fprintf(c.out, "Current Down Avg Price:   %s\n", avgOrNA(r.Down))
	if b.Status.State.Defined() {
		fmt.Fprintf(c.out, "Combined Avg (Up+Down):   %s\n", price(b.Status.CombinedAvgPrice))
		fmt.Fprintf(c.out, "Current Profitability:    %s\n", stateLabel(b.Status.State))
	} else {
		fmt.Fprintf(c.out, "Combined Avg (Up+Down):   %s (incomplete hedge)\n", price(b.Status.CombinedAvgPrice))
	}
	fmt.Fprintln(c.out)

	cp := b.Combined
	fmt.Fprintln(c.out, "COMBINED POSITION ANALYSIS")
	fmt.Fprintf(c.out, "Total Shares (Up+Down):   %s\n", shares(cp.TotalShares))
	fmt.Fprintf(c.out, "  - Up Shares:            %s (%.1f%%)\n", shares(r.Up.Position), cp.UpSharePct)
	fmt.Fprintf(c.out, "  - Down Shares:          %s (%.1f%%)\n", shares(r.Down.Position), cp.DownSharePct)
	fmt.Fprintf(c.out, "Total Cost (Up+Down):     %s\n", usd(cp.TotalCost))
	fmt.Fprintf(c.out, "  - Up Cost:              %s (%.1f%% of total)\n", usd(r.Up.CostBasis), cp.UpCostPct)
	fmt.Fprintf(c.out, "  - Down Cost:            %s (%.1f%% of total)\n", usd(r.Down.CostBasis), cp.DownCostPct)
	fmt.Fprintf(c.out, "Net Investment:           %s\n", usd(cp.NetInvestment))
	fmt.Fprintln(c.out)

	c.printTimeAnalysis(b.Time)
	c.printEvolution(b)
	c.printPriceAnalysis(b)
	c.printTradingBehavior(b)
	c.printStrategy(b)
	c.printRisk(b.Risk)
	c.printPatternInsights(b)
}

func (c *Console) printTimeAnalysis(ta *domain.TimeAnalysis) {
	fmt.Fprintln(c.out, "PROFITABILITY TIMELINE ANALYSIS")
	if ta == nil {
		fmt.Fprintln(c.out, "N/A (never fully hedged)")
		fmt.Fprintln(c.out)
		return
	}
	fmt.Fprintf(c.out, "Total Trading Period:     %.2f hours\n", ta.TotalHours)
	fmt.Fprintf(c.out, "Time Profitable:          %.2f%% (%.2f hours)\n", ta.ProfitablePct, ta.ProfitableHours)
	fmt.Fprintf(c.out, "Time Unprofitable:        %.2f%% (%.2f hours)\n", ta.UnprofitablePct, ta.TotalHours-ta.ProfitableHours)
	c.printEntry("Best Profitability", ta.Best)
	c.printEntry("Worst Profitability", ta.Worst)
	fmt.Fprintln(c.out)
}

func (c *Console) printEntry(title string, e *domain.TimelineEntry) {
	if e == nil {
		return
	}
	fmt.Fprintf(c.out, "%-25s %s at %s\n", title+":", price(e.TotalAvgPrice), c.date(e.Timestamp))
	fmt.Fprintf(c.out, "  - Up Avg:               %s\n", price(e.UpAvgPrice))
	fmt.Fprintf(c.out, "  - Down Avg:             %s\n", price(e.DownAvgPrice))
	fmt.Fprintf(c.out, "  - Up Shares:            %s\n", shares(e.UpPosition))
	fmt.Fprintf(c.out, "  - Down Shares:          %s\n", shares(e.DownPosition))
}

func (c *Console) printEvolution(b domain.BehaviorSummary) {
	fmt.Fprintln(c.out, "POSITION EVOLUTION")
	if b.PositionRatio != nil {
		fmt.Fprintf(c.out, "Position Ratio (Down/Up): %.2fx\n", *b.PositionRatio)
	}
	if b.CostRatio != nil {
		fmt.Fprintf(c.out, "Cost Ratio (Down/Up):     %.2fx\n", *b.CostRatio)
	}
	if b.PositionRatio == nil && b.CostRatio == nil {
		fmt.Fprintln(c.out, "N/A (single-sided)")
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printPriceAnalysis(b domain.BehaviorSummary) {
	fmt.Fprintln(c.out, "PRICE ANALYSIS")
	if b.Spread == nil {
		fmt.Fprintln(c.out, "N/A (needs open positions on both sides)")
		fmt.Fprintln(c.out)
		return
	}
	fmt.Fprintf(c.out, "Price Spread (Down-Up):   %s\n", price(b.Spread.Value))
	fmt.Fprintf(c.out, "  - Up Avg Price:         %s\n", price(b.Status.UpAvgPrice))
	fmt.Fprintf(c.out, "  - Down Avg Price:       %s\n", price(b.Status.DownAvgPrice))
	fmt.Fprintf(c.out, "  - Combined Avg:         %s\n", price(b.Status.CombinedAvgPrice))
	fmt.Fprintf(c.out, "  - Analysis:             %s\n", label(b.Spread.Label))
	fmt.Fprintln(c.out)
}

func (c *Console) printTradingBehavior(b domain.BehaviorSummary) {
	fmt.Fprintln(c.out, "TRADING BEHAVIOR")
	fmt.Fprintf(c.out, "Trading Intensity:        %s (avg %.1f min between trades)\n",
		label(b.Intensity.Label), b.Intensity.Value)
	if s := b.Sizing; s != nil {
		fmt.Fprintln(c.out, "Average Trade Size:")
		fmt.Fprintf(c.out, "  - Up:                   %s shares per trade\n", shares(s.UpAvgSize))
		fmt.Fprintf(c.out, "  - Down:                 %s shares per trade\n", shares(s.DownAvgSize))
		fmt.Fprintf(c.out, "  - Size Ratio (Down/Up): %.2fx\n", s.SizeRatio)
		fmt.Fprintf(c.out, "  - Up Size Variability:  %.1f%% CV (%s)\n", s.UpSizing.Value, label(s.UpSizing.Label))
		fmt.Fprintf(c.out, "  - Down Size Variability: %.1f%% CV (%s)\n", s.DownSizing.Value, label(s.DownSizing.Label))
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printStrategy(b domain.BehaviorSummary) {
	fmt.Fprintln(c.out, "STRATEGY ANALYSIS")
	fmt.Fprintf(c.out, "Primary Strategy:         %s (%.1f%% Up buys, %.1f%% Down buys)\n",
		label(b.Strategy.Label), b.UpBuyPct, b.DownBuyPct)
	if b.Imbalance != nil {
		fmt.Fprintf(c.out, "  - Position Imbalance:   %s (%.1f%% difference)\n", label(b.Imbalance.Label), b.Imbalance.Value)
	}
	if e := b.Entry; e != nil {
		fmt.Fprintln(c.out, "  - Entry Timing:")
		fmt.Fprintf(c.out, "    Up:   started at %s, ended at %s (%+.1f%% change)\n",
			price(e.Up.First), price(e.Up.Last), e.Up.ChangePct)
		fmt.Fprintf(c.out, "    Down: started at %s, ended at %s (%+.1f%% change)\n",
			price(e.Down.First), price(e.Down.Last), e.Down.ChangePct)
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printRisk(r *domain.RiskAnalysis) {
	fmt.Fprintln(c.out, "RISK ANALYSIS")
	if r == nil {
		fmt.Fprintln(c.out, "N/A (not hedged)")
		fmt.Fprintln(c.out)
		return
	}
	fmt.Fprintln(c.out, "Potential Outcomes:")
	fmt.Fprintf(c.out, "  - If Up wins:           %s PnL (%+.1f%% return)\n", usd(r.UpWinPnL), r.UpWinReturnPct)
	fmt.Fprintf(c.out, "  - If Down wins:         %s PnL (%+.1f%% return)\n", usd(r.DownWinPnL), r.DownWinReturnPct)
	fmt.Fprintln(c.out, "  - Break-even Prices:")
	fmt.Fprintf(c.out, "    Up needs to reach:    %s\n", price(r.UpBreakEven))
	fmt.Fprintf(c.out, "    Down needs to reach:  %s\n", price(r.DownBreakEven))
	if r.ImpliedUpProb != nil && r.ImpliedDownProb != nil {
		fmt.Fprintln(c.out, "  - Market Implied Prob:")
		fmt.Fprintf(c.out, "    Up probability:       %.1f%%\n", *r.ImpliedUpProb*100)
		fmt.Fprintf(c.out, "    Down probability:     %.1f%%\n", *r.ImpliedDownProb*100)
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printPatternInsights(b domain.BehaviorSummary) {
	fmt.Fprintln(c.out, "TRADING PATTERN INSIGHTS")
	printed := false
	line := func(title string, cl *domain.Classification, withValue bool) {
		if cl == nil {
			return
		}
		printed = true
		if withValue && cl.Value > 0 {
			fmt.Fprintf(c.out, "  - %-22s %s (%.1fx)\n", title+":", label(cl.Label), cl.Value)
			return
		}
		fmt.Fprintf(c.out, "  - %-22s %s\n", title+":", label(cl.Label))
	}
	line("Up Accumulation", b.UpAccumulation, true)
	line("Down Accumulation", b.DownAccumulation, true)
	line("Up Price Trend", b.UpPriceTrend, false)
	line("Down Price Trend", b.DownPriceTrend, false)
	if !printed {
		fmt.Fprintln(c.out, "  N/A")
	}
	fmt.Fprintln(c.out)
}

func avgOrNA(p domain.OutcomePosition) string {
	if !p.IsOpen() {
		return "N/A (no position)"
	}
	return price(p.AvgPrice)
}

func stateLabel(s domain.HedgeState) string {
	switch s {
	case domain.HedgeProfitable:
		return "PROFITABLE (avg < $1.00)"
	case domain.HedgeUnprofitable:
		return "NOT PROFITABLE (avg >= $1.00)"
	}
	return "N/A (incomplete hedge)"
}

func label(l domain.Label) string {
	return strings.ReplaceAll(string(l), "_", " ")
}

func price(v float64) string  { return fmt.Sprintf("$%.4f", v) }
func usd(v float64) string    { return fmt.Sprintf("$%.2f", v) }
func shares(v float64) string { return fmt.Sprintf("%.2f", v) }
