package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
	"golang.org/x/text/width"

	"github.com/Bernardxu123/unicom-calc/internal/ledger"
)

const currency = money.CNY

// yuan formats an amount as CNY, e.g. "39.00 元".
func yuan(amount float64) string {
	cur := money.GetCurrency(currency)
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0).IntPart()
	return money.New(minor, currency).Display()
}

// displayWidth counts wide and fullwidth runes (CJK) as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// table collects tab-separated rows and aligns them by display width.
type table struct {
	w    io.Writer
	rows [][]string
}

func newTable(w io.Writer) *table {
	return &table{w: w}
}

// Write takes one or more tab-separated lines.
func (t *table) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		t.rows = append(t.rows, strings.Split(line, "\t"))
	}
	return len(p), nil
}

// Flush writes the aligned rows.
func (t *table) Flush() error {
	var widths []int
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}
	for _, row := range t.rows {
		var b strings.Builder
		for i, cell := range row {
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-displayWidth(cell)+2))
			}
		}
		if _, err := fmt.Fprintln(t.w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	t.rows = nil
	return nil
}

// itemStatus describes an item's remaining run at asOf.
func itemStatus(it ledger.Item, asOf string) string {
	if ledger.IsExpired(it, asOf) {
		return "已到期"
	}
	if left, ok := ledger.RemainingMonths(it, asOf); ok {
		return fmt.Sprintf("剩余%d个月", left)
	}
	if it.Duration.Int() == ledger.Unlimited {
		return "长期"
	}
	return "-"
}

func duration(n ledger.Num) string {
	if !n.IsPending() && n.Int() == ledger.Unlimited {
		return "长期"
	}
	return n.String()
}

func writeTotals(w io.Writer, t ledger.Totals) {
	fmt.Fprintf(w, "月支出: %s\n", yuan(t.TotalCost))
	fmt.Fprintf(w, "会员收入: %s\n", yuan(t.TotalIncome))
	label := "净支出"
	if t.Profit() {
		label = "净收益"
	}
	fmt.Fprintf(w, "%s: %s\n", label, yuan(t.Net))
}

func writeList(w io.Writer, s ledger.Snapshot) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\t业务\t开始\t时长\t月支\t会员卖出\t状态")
	row := func(it ledger.Item) {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Title, it.StartMonth, duration(it.Duration),
			it.Cost.String(), it.VipPrice.String(), itemStatus(it, s.CurrentDate))
	}
	for _, c := range s.Cards {
		fmt.Fprintf(tw, "%s [%s]\t%s\t\t\t\t\t\n", ledger.KindMain.Label(), c.ID, c.Name)
		for _, it := range c.Items {
			row(it)
		}
		for _, sc := range c.SubCards {
			fmt.Fprintf(tw, "%s [%s]\t%s\t\t\t\t\t\n", ledger.KindSub.Label(), sc.ID, sc.Name)
			for _, it := range sc.Items {
				row(it)
			}
		}
	}
	return tw.Flush()
}

// summaryMarkdown renders the ledger at asOf as a markdown report.
func summaryMarkdown(s ledger.Snapshot, asOf string) string {
	t := ledger.ComputeTotals(s, asOf)
	var b strings.Builder
	fmt.Fprintf(&b, "# 账单 %s\n\n", asOf)
	fmt.Fprintf(&b, "| 类型 | 卡名 | 业务 | 月支 | 会员卖出 | 状态 |\n")
	fmt.Fprintf(&b, "|---|---|---|---:|---:|---|\n")
	s.Walk(func(kind ledger.CardKind, cardName string, it ledger.Item) {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			kind.Label(), cardName, it.Title, it.Cost.String(), it.VipPrice.String(), itemStatus(it, asOf))
	})
	fmt.Fprintf(&b, "\n- 月支出: **%s**\n", yuan(t.TotalCost))
	fmt.Fprintf(&b, "- 会员收入: **%s**\n", yuan(t.TotalIncome))
	fmt.Fprintf(&b, "- 净额: **%s**\n", yuan(t.Net))
	return b.String()
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render(md)
}
