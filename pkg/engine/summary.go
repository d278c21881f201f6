package engine

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/kaviraj-dev/strikebot/pkg/metric"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// Summary renders all closed trades as a per-strategy table, a PnL
// histogram and bootstrap confidence intervals for the key statistics.
func (e *Engine) Summary() string {
	if e.storage == nil {
		return "no storage configured, summary unavailable"
	}

	trades, err := e.storage.Trades(core.TradeFilterStatus(core.TradeStatusClosed))
	if err != nil {
		return fmt.Sprintf("summary unavailable: %v", err)
	}
	if len(trades) == 0 {
		return "no closed trades yet"
	}

	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Strategy", "Trades", "Win", "Loss", "% Win", "Avg PnL", "Total PnL"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	var (
		totalWins int
		totalLoss int
		totalPnl  float64
	)
	allPnls := make([]float64, 0, len(trades))

	groups := lo.GroupBy(trades, func(t *core.Trade) string { return t.Strategy })
	strategies := lo.Keys(groups)
	sort.Strings(strategies)
	for _, strategy := range strategies {
		group := groups[strategy]
		pnls := lo.Map(group, func(t *core.Trade, _ int) float64 { return t.Pnl })

		wins := lo.CountBy(pnls, func(p float64) bool { return p > 0 })
		losses := len(pnls) - wins
		pnl := lo.Sum(pnls)

		table.Append([]string{
			strategy,
			strconv.Itoa(len(pnls)),
			strconv.Itoa(wins),
			strconv.Itoa(losses),
			fmt.Sprintf("%.1f %%", metric.WinRate(pnls)*100),
			fmt.Sprintf("%.2f", metric.MeanPnl(pnls)),
			fmt.Sprintf("%.2f", pnl),
		})

		totalWins += wins
		totalLoss += losses
		totalPnl += pnl
		allPnls = append(allPnls, pnls...)
	}

	table.SetFooter([]string{
		"TOTAL",
		strconv.Itoa(totalWins + totalLoss),
		strconv.Itoa(totalWins),
		strconv.Itoa(totalLoss),
		fmt.Sprintf("%.1f %%", metric.WinRate(allPnls)*100),
		fmt.Sprintf("%.2f", metric.MeanPnl(allPnls)),
		fmt.Sprintf("%.2f", totalPnl),
	})
	table.Render()

	fmt.Fprintln(buffer, "------ PNL DISTRIBUTION -------")
	hist := histogram.Hist(15, allPnls)
	if err := histogram.Fprint(buffer, hist, histogram.Linear(10)); err != nil {
		fmt.Fprintf(buffer, "histogram unavailable: %v\n", err)
	}

	fmt.Fprintln(buffer, "------ CONFIDENCE INTERVAL (95%) -------")
	meanInterval := metric.Bootstrap(allPnls, metric.MeanPnl, 10000, 0.95)
	winInterval := metric.Bootstrap(allPnls, metric.WinRate, 10000, 0.95)
	fmt.Fprintf(buffer, "AVG PNL:  %.2f (%.2f ~ %.2f)\n",
		meanInterval.Mean, meanInterval.Lower, meanInterval.Upper)
	fmt.Fprintf(buffer, "WIN RATE: %.1f%% (%.1f%% ~ %.1f%%)\n",
		winInterval.Mean*100, winInterval.Lower*100, winInterval.Upper*100)

	return buffer.String()
}
