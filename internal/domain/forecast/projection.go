package forecast

import (
	"time"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Horizon limits in weeks
const (
	DefaultWeeks = 12
	MaxWeeks     = 52
)

// Receivable is an outstanding invoice expected to be paid on its due date
type Receivable struct {
	DocumentID     uuid.UUID
	DocumentNumber string
	DueDate        *time.Time
	Amount         decimal.Decimal
}

// Week is one bucket of the projection, covering [Start, End)
type Week struct {
	Index        int             `json:"index"`
	Start        time.Time       `json:"start"`
	End          time.Time       `json:"end"`
	Inflow       decimal.Decimal `json:"inflow"`
	Outflow      decimal.Decimal `json:"outflow"`
	Net          decimal.Decimal `json:"net"`
	Balance      decimal.Decimal `json:"balance"`
	InvoiceCount int             `json:"invoice_count"`
	CostCount    int             `json:"cost_count"`
}

// Projection is the weekly cash-flow forecast
type Projection struct {
	Start           time.Time       `json:"start"`
	Weeks           []Week          `json:"weeks"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	TotalInflow     decimal.Decimal `json:"total_inflow"`
	TotalOutflow    decimal.Decimal `json:"total_outflow"`
	EndingBalance   decimal.Decimal `json:"ending_balance"`
	OverdueAmount   decimal.Decimal `json:"overdue_amount"`
	LowestBalance   decimal.Decimal `json:"lowest_balance"`
}

// Input collects everything the projection reads
type Input struct {
	Start           time.Time
	Weeks           int
	StartingBalance decimal.Decimal
	Receivables     []Receivable
	Costs           []RecurringCost
}

// Project buckets receivables by due date and recurring costs by occurrence
// into weeks and carries a running balance. Overdue receivables land in week
// zero; receivables due after the horizon are ignored. Inactive costs are
// skipped.
func Project(in Input) (*Projection, error) {
	weeks := in.Weeks
	if weeks == 0 {
		weeks = DefaultWeeks
	}
	if weeks < 1 || weeks > MaxWeeks {
		return nil, shared.NewDomainErrorf("INVALID_HORIZON", "Forecast horizon must be between 1 and %d weeks", MaxWeeks)
	}

	start := shared.TruncateToDay(in.Start)
	end := start.AddDate(0, 0, 7*weeks)

	p := &Projection{
		Start:           start,
		Weeks:           make([]Week, weeks),
		StartingBalance: in.StartingBalance,
		TotalInflow:     decimal.Zero,
		TotalOutflow:    decimal.Zero,
		OverdueAmount:   decimal.Zero,
	}
	for w := range p.Weeks {
		p.Weeks[w] = Week{
			Index:   w,
			Start:   start.AddDate(0, 0, 7*w),
			End:     start.AddDate(0, 0, 7*(w+1)),
			Inflow:  decimal.Zero,
			Outflow: decimal.Zero,
		}
	}

	for _, r := range in.Receivables {
		w := 0
		if r.DueDate != nil {
			due := shared.TruncateToDay(*r.DueDate)
			if !due.Before(end) {
				continue
			}
			if due.Before(start) {
				p.OverdueAmount = p.OverdueAmount.Add(r.Amount)
			} else {
				w = int(due.Sub(start).Hours()/24) / 7
			}
		}
		p.Weeks[w].Inflow = p.Weeks[w].Inflow.Add(r.Amount)
		p.Weeks[w].InvoiceCount++
	}

	for i := range in.Costs {
		cost := &in.Costs[i]
		if !cost.IsActive {
			continue
		}
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			if cost.OccursOn(d) {
				w := int(d.Sub(start).Hours()/24) / 7
				p.Weeks[w].Outflow = p.Weeks[w].Outflow.Add(cost.Amount)
				p.Weeks[w].CostCount++
			}
		}
	}

	balance := in.StartingBalance
	p.LowestBalance = balance
	for w := range p.Weeks {
		week := &p.Weeks[w]
		week.Net = week.Inflow.Sub(week.Outflow)
		balance = balance.Add(week.Net)
		week.Balance = balance
		if balance.LessThan(p.LowestBalance) {
			p.LowestBalance = balance
		}
		p.TotalInflow = p.TotalInflow.Add(week.Inflow)
		p.TotalOutflow = p.TotalOutflow.Add(week.Outflow)
	}
	p.EndingBalance = balance
	return p, nil
}
