package notification

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/kaviraj-dev/strikebot/pkg/engine"
)

func formatTrade(trade core.Trade) string {
	var sb strings.Builder

	if trade.Status == core.TradeStatusOpen {
		fmt.Fprintf(&sb, "✅ ENTRY - %s %s\n", trade.Index, trade.OptionType)
		sb.WriteString("-----\n")
		fmt.Fprintf(&sb, "Strategy: `%s`\n", trade.Strategy)
		fmt.Fprintf(&sb, "Strike: `%d` Expiry: `%s`\n", trade.Strike, trade.Expiry)
		fmt.Fprintf(&sb, "Qty: `%d` @ `%.2f`\n", trade.Qty, trade.EntryPrice)
		return sb.String()
	}

	emoji := "🟢"
	if trade.Pnl < 0 {
		emoji = "🔴"
	}
	fmt.Fprintf(&sb, "%s EXIT - %s %s\n", emoji, trade.Index, trade.OptionType)
	sb.WriteString("-----\n")
	fmt.Fprintf(&sb, "Strategy: `%s`\n", trade.Strategy)
	fmt.Fprintf(&sb, "Reason: `%s`\n", trade.ExitReason)
	fmt.Fprintf(&sb, "Entry: `%.2f` Exit: `%.2f`\n", trade.EntryPrice, trade.ExitPrice)
	fmt.Fprintf(&sb, "PnL: `%.2f`\n", trade.Pnl)
	return sb.String()
}

func formatStatus(snap engine.Telemetry) string {
	var sb strings.Builder

	session := "CLOSED"
	if snap.MarketOpen {
		session = "OPEN"
	}
	fmt.Fprintf(&sb, "*%s* spot `%.2f` session `%s`\n", snap.Index, snap.Spot, session)
	fmt.Fprintf(&sb, "Day: trades `%d` pnl `%.2f`\n", snap.DailyTrades, snap.DailyPnl)
	if snap.Breaker {
		sb.WriteString("⚠️ Daily loss breaker tripped\n")
	}

	for _, s := range snap.Statuses {
		fmt.Fprintf(&sb, "-----\n`%s` signal `%s`", s.ID, signalOrDash(s.Signal))
		if s.Position == nil {
			sb.WriteString(" flat\n")
			continue
		}
		fmt.Fprintf(&sb, "\n%s %d @ `%.2f` qty `%d`",
			s.Position.OptionType, s.Position.Strike, s.Position.EntryPrice, s.Position.Qty)
		if s.Position.TrailingStop != nil {
			fmt.Fprintf(&sb, " stop `%.2f`", *s.Position.TrailingStop)
		}
		if s.Position.ReconcilePending {
			sb.WriteString(" ⚠️ reconcile pending")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatDaySummary(summary engine.DaySummary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*%s*\n", summary.Day)
	fmt.Fprintf(&sb, "Trades: `%d` Win: `%d` Loss: `%d`\n", summary.Trades, summary.Wins, summary.Losses)
	fmt.Fprintf(&sb, "PnL: `%.2f` Drawdown: `%.2f`\n", summary.Pnl, summary.MaxDrawdown)
	if summary.Breaker {
		sb.WriteString("⚠️ Daily loss breaker tripped\n")
	}

	if len(summary.ByReason) > 0 {
		sb.WriteString("-----\n")
		reasons := make([]string, 0, len(summary.ByReason))
		for reason := range summary.ByReason {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(&sb, "%s: `%d`\n", reason, summary.ByReason[reason])
		}
	}
	return sb.String()
}

func signalOrDash(s core.Signal) string {
	if s == core.SignalNone {
		return "-"
	}
	return string(s)
}

func parseSquareOffID(text string) string {
	match := squareOffRegexp.FindStringSubmatch(text)
	if len(match) == 0 {
		return ""
	}
	return match[squareOffRegexp.SubexpIndex("id")]
}

func parseSetCommand(text string) (key, value string, ok bool) {
	match := setRegexp.FindStringSubmatch(text)
	if len(match) == 0 {
		return "", "", false
	}
	return match[setRegexp.SubexpIndex("key")], match[setRegexp.SubexpIndex("value")], true
}
