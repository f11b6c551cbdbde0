package forecast

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func receivable(due time.Time, amount string) Receivable {
	return Receivable{DocumentID: uuid.New(), DueDate: &due, Amount: dec(amount)}
}

func monthlyCost(t *testing.T, amount string, dom int) RecurringCost {
	t.Helper()
	c, err := NewRecurringCost(uuid.New(), uuid.New(), CostDetails{
		Name: "Rent", Amount: dec(amount), Frequency: CostFrequencyMonthly, DayOfMonth: &dom,
	})
	require.NoError(t, err)
	return *c
}

func weeklyCost(t *testing.T, amount string, dow time.Weekday) RecurringCost {
	t.Helper()
	c, err := NewRecurringCost(uuid.New(), uuid.New(), CostDetails{
		Name: "Cleaning", Amount: dec(amount), Frequency: CostFrequencyWeekly, DayOfWeek: &dow,
	})
	require.NoError(t, err)
	return *c
}

func TestProjectBuckets(t *testing.T) {
	start := day(2026, 3, 2) // Monday

	p, err := Project(Input{
		Start:           start,
		Weeks:           4,
		StartingBalance: dec("1000.00"),
		Receivables: []Receivable{
			receivable(day(2026, 2, 20), "100.00"), // overdue
			receivable(day(2026, 3, 8), "200.00"),  // last day of week 0
			receivable(day(2026, 3, 9), "300.00"),  // first day of week 1
			receivable(day(2026, 3, 30), "400.00"), // first day after the horizon
		},
		Costs: []RecurringCost{
			monthlyCost(t, "500.00", 15),
			weeklyCost(t, "20.00", time.Friday),
		},
	})
	require.NoError(t, err)
	require.Len(t, p.Weeks, 4)

	assert.Equal(t, "300", p.Weeks[0].Inflow.String())
	assert.Equal(t, 2, p.Weeks[0].InvoiceCount)
	assert.Equal(t, "100", p.OverdueAmount.String())
	assert.Equal(t, "300", p.Weeks[1].Inflow.String())
	assert.True(t, p.Weeks[3].Inflow.IsZero())

	assert.Equal(t, "20", p.Weeks[0].Outflow.String())
	assert.Equal(t, "520", p.Weeks[1].Outflow.String(), "rent on the 15th plus friday cleaning")
	assert.Equal(t, 2, p.Weeks[1].CostCount)

	assert.Equal(t, "1280", p.Weeks[0].Balance.String())
	assert.Equal(t, "1060", p.Weeks[1].Balance.String())
	assert.Equal(t, day(2026, 3, 30), p.Weeks[3].End)
	assert.True(t, p.EndingBalance.Equal(p.Weeks[3].Balance))
}

func TestProjectMonthEndClamp(t *testing.T) {
	p, err := Project(Input{
		Start: day(2026, 2, 23),
		Weeks: 2,
		Costs: []RecurringCost{monthlyCost(t, "10.00", 31)},
	})
	require.NoError(t, err)
	assert.Equal(t, "10", p.Weeks[0].Outflow.String(), "paid on Feb 28")
	assert.True(t, p.Weeks[1].Outflow.IsZero())
}

func TestProjectSkipsInactiveCosts(t *testing.T) {
	c := weeklyCost(t, "50.00", time.Monday)
	c.SetActive(false)
	p, err := Project(Input{Start: day(2026, 3, 2), Costs: []RecurringCost{c}})
	require.NoError(t, err)
	assert.Len(t, p.Weeks, DefaultWeeks)
	assert.True(t, p.TotalOutflow.IsZero())
}

func TestProjectHorizon(t *testing.T) {
	_, err := Project(Input{Start: day(2026, 1, 1), Weeks: MaxWeeks + 1})
	assert.Error(t, err)
	_, err = Project(Input{Start: day(2026, 1, 1), Weeks: -1})
	assert.Error(t, err)
	p, err := Project(Input{Start: day(2026, 1, 1), Weeks: MaxWeeks})
	require.NoError(t, err)
	assert.Len(t, p.Weeks, MaxWeeks)
}

func TestProjectBalanceProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	start := day(2026, 1, 5)

	for run := 0; run < 50; run++ {
		var receivables []Receivable
		for i := 0; i < rng.Intn(20); i++ {
			due := start.AddDate(0, 0, rng.Intn(120)-30)
			receivables = append(receivables, receivable(due, decimal.New(int64(rng.Intn(1000000)), -2).String()))
		}
		costs := []RecurringCost{
			monthlyCost(t, decimal.New(int64(1+rng.Intn(500000)), -2).String(), 1+rng.Intn(31)),
			weeklyCost(t, decimal.New(int64(1+rng.Intn(50000)), -2).String(), time.Weekday(rng.Intn(7))),
		}
		startBalance := decimal.New(int64(rng.Intn(2000000)-1000000), -2)

		p, err := Project(Input{Start: start, Weeks: 1 + rng.Intn(MaxWeeks), StartingBalance: startBalance, Receivables: receivables, Costs: costs})
		require.NoError(t, err)

		inflow, outflow := decimal.Zero, decimal.Zero
		for n, w := range p.Weeks {
			inflow = inflow.Add(w.Inflow)
			outflow = outflow.Add(w.Outflow)
			want := startBalance.Add(inflow).Sub(outflow)
			require.True(t, want.Equal(w.Balance), "run %d week %d: want %s got %s", run, n, want, w.Balance)
		}
	}
}

func TestRecurringCostValidation(t *testing.T) {
	dom := 0
	_, err := NewRecurringCost(uuid.New(), uuid.New(), CostDetails{Name: "Rent", Amount: dec("1"), Frequency: CostFrequencyMonthly, DayOfMonth: &dom})
	assert.Error(t, err)
	_, err = NewRecurringCost(uuid.New(), uuid.New(), CostDetails{Name: "Rent", Amount: dec("1"), Frequency: CostFrequencyWeekly})
	assert.Error(t, err)
	_, err = NewRecurringCost(uuid.New(), uuid.New(), CostDetails{Name: "Rent", Amount: dec("0"), Frequency: "yearly"})
	assert.Error(t, err)
}
