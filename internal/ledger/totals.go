package ledger

import "github.com/shopspring/decimal"

// Totals are the derived monthly sums over every item still running.
type Totals struct {
	TotalCost   float64 `json:"totalCost"`
	TotalIncome float64 `json:"totalIncome"`
	Net         float64 `json:"net"`
}

// Profit reports whether rebates cover the costs.
func (t Totals) Profit() bool { return t.Net <= 0 }

// ComputeTotals sums cost and vipPrice of all non-expired items at asOf.
func ComputeTotals(s Snapshot, asOf string) Totals {
	cost, income := decimal.Zero, decimal.Zero
	s.Walk(func(_ CardKind, _ string, it Item) {
		if IsExpired(it, asOf) {
			return
		}
		cost = cost.Add(decimal.NewFromFloat(it.Cost.Float()))
		income = income.Add(decimal.NewFromFloat(it.VipPrice.Float()))
	})
	return Totals{
		TotalCost:   cost.Round(2).InexactFloat64(),
		TotalIncome: income.Round(2).InexactFloat64(),
		Net:         cost.Sub(income).Round(2).InexactFloat64(),
	}
}

// Totals evaluates the ledger at its own current month.
func (s Snapshot) Totals() Totals {
	return ComputeTotals(s, s.CurrentDate)
}

// Score is the leaderboard value for the ledger's current month: income
// minus cost, so higher is better.
func Score(s Snapshot) float64 {
	t := s.Totals()
	return decimal.NewFromFloat(t.TotalIncome).Sub(decimal.NewFromFloat(t.TotalCost)).Round(2).InexactFloat64()
}
