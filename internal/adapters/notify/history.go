package notify

import (
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// PrintHistory imprime los análisis guardados, más recientes primero.
func (c *Console) PrintHistory(records []domain.AnalysisRecord) {
	if len(records) == 0 {
		fmt.Fprintln(c.out, "No analyses stored yet.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Created", "Market", "User", "Trades", "Up pos", "Down pos", "Cost", "Realized", "P/U", "State")
	for _, r := range records {
		user := r.User
		if len(user) > 10 {
			user = user[:6] + "…" + user[len(user)-4:]
		}
		table.Append(
			r.CreatedAt.In(c.loc).Format(shortDate),
			domain.TruncateQuestion(r.Question, r.ConditionID, 40),
			user,
			fmt.Sprintf("%d", r.TradeCount),
			shares(r.UpPosition),
			shares(r.DownPosition),
			usd(r.TotalCost),
			usd(r.TotalRealizedPnL),
			fmt.Sprintf("%d/%d", r.ProfitableCount, r.UnprofitableCount),
			r.FinalState.String(),
		)
	}
	table.Render()
	fmt.Fprintf(c.out, "\n%d analyses\n", len(records))
}
