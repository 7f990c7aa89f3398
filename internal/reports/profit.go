package reports

import "github.com/shopspring/decimal"

// ProfitInput mirrors the profit calculator form on the terminal. All
// figures are entered by the operator; nothing is fetched.
type ProfitInput struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	OtherIncome   decimal.Decimal `json:"other_income"`
	MaterialCost  decimal.Decimal `json:"material_cost"`
	OperatingCost decimal.Decimal `json:"operating_cost"`
	OtherExpenses decimal.Decimal `json:"other_expenses"`
}

// ProfitResult is the computed breakdown.
type ProfitResult struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	ProfitMargin  decimal.Decimal `json:"profit_margin"`
}

// Profit computes revenue, expenses, net and margin. Margin is a percentage
// of revenue, zero when revenue is zero.
func Profit(in ProfitInput) ProfitResult {
	revenue := in.TotalSales.Add(in.OtherIncome)
	expenses := in.MaterialCost.Add(in.OperatingCost).Add(in.OtherExpenses)
	net := revenue.Sub(expenses)

	margin := decimal.Zero
	if !revenue.IsZero() {
		margin = net.Div(revenue).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return ProfitResult{
		TotalRevenue:  revenue.Round(2),
		TotalExpenses: expenses.Round(2),
		NetProfit:     net.Round(2),
		ProfitMargin:  margin,
	}
}
