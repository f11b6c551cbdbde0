package recurring

import (
	"testing"
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func weekdayPtr(w time.Weekday) *time.Weekday { return &w }

func monthlyDetails(dayOfMonth int, start time.Time) TemplateDetails {
	return TemplateDetails{
		Name:       "Hosting",
		CustomerID: uuid.New(),
		Schedule:   Schedule{Frequency: FrequencyMonthly, DayOfMonth: intPtr(dayOfMonth)},
		StartDate:  start,
		Notes:      "Monthly hosting fee",
		Lines: []invoicing.LineInput{{
			Description: "Managed hosting",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.RequireFromString("49.00"),
			TaxRate:     invoicing.TaxRateStandard,
		}},
	}
}

func TestScheduleNext(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		current  time.Time
		want     time.Time
	}{
		{"weekly", Schedule{Frequency: FrequencyWeekly}, day(2026, 3, 2), day(2026, 3, 9)},
		{"biweekly", Schedule{Frequency: FrequencyBiweekly}, day(2026, 12, 28), day(2027, 1, 11)},
		{"monthly 31st into february", Schedule{Frequency: FrequencyMonthly, DayOfMonth: intPtr(31)}, day(2026, 1, 31), day(2026, 2, 28)},
		{"monthly 31st into leap february", Schedule{Frequency: FrequencyMonthly, DayOfMonth: intPtr(31)}, day(2028, 1, 31), day(2028, 2, 29)},
		{"monthly recovers anchor", Schedule{Frequency: FrequencyMonthly, DayOfMonth: intPtr(31)}, day(2026, 2, 28), day(2026, 3, 31)},
		{"monthly without anchor", Schedule{Frequency: FrequencyMonthly}, day(2026, 5, 15), day(2026, 6, 15)},
		{"quarterly", Schedule{Frequency: FrequencyQuarterly, DayOfMonth: intPtr(30)}, day(2026, 11, 30), day(2027, 2, 28)},
		{"yearly from leap day", Schedule{Frequency: FrequencyYearly}, day(2028, 2, 29), day(2029, 2, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.schedule.Next(tt.current))
		})
	}
}

func TestNewTemplate_MonthlyWithoutDayKeepsStartAnchor(t *testing.T) {
	details := monthlyDetails(1, day(2026, 1, 31))
	details.Schedule.DayOfMonth = nil

	tmpl, err := NewTemplate(uuid.New(), uuid.New(), details)
	require.NoError(t, err)
	require.NotNil(t, tmpl.DayOfMonth)
	assert.Equal(t, 31, *tmpl.DayOfMonth)
	assert.Equal(t, day(2026, 1, 31), tmpl.NextIssueDate)

	tmpl.Advance(day(2026, 1, 31))
	assert.Equal(t, day(2026, 2, 28), tmpl.NextIssueDate)
	tmpl.Advance(day(2026, 2, 28))
	assert.Equal(t, day(2026, 3, 31), tmpl.NextIssueDate)

	t.Run("quarterly too", func(t *testing.T) {
		details.Schedule.Frequency = FrequencyQuarterly
		quarterly, err := NewTemplate(uuid.New(), uuid.New(), details)
		require.NoError(t, err)

		quarterly.Advance(day(2026, 1, 31))
		quarterly.Advance(day(2026, 4, 30))
		assert.Equal(t, day(2026, 7, 31), quarterly.NextIssueDate)
	})
}

func TestScheduleValidate(t *testing.T) {
	assert.NoError(t, Schedule{Frequency: FrequencyWeekly, DayOfWeek: weekdayPtr(time.Monday)}.Validate())
	assert.Error(t, Schedule{Frequency: "daily"}.Validate())
	assert.Error(t, Schedule{Frequency: FrequencyMonthly, DayOfMonth: intPtr(32)}.Validate())
	assert.Error(t, Schedule{Frequency: FrequencyWeekly, DayOfMonth: intPtr(1)}.Validate())
	assert.Error(t, Schedule{Frequency: FrequencyMonthly, DayOfWeek: weekdayPtr(time.Friday)}.Validate())
}

func TestScheduleFirstOccurrence(t *testing.T) {
	monday := Schedule{Frequency: FrequencyWeekly, DayOfWeek: weekdayPtr(time.Monday)}
	// 2026-03-04 is a Wednesday
	assert.Equal(t, day(2026, 3, 9), monday.FirstOccurrence(day(2026, 3, 4)))
	assert.Equal(t, day(2026, 3, 9), monday.FirstOccurrence(day(2026, 3, 9)))

	fifteenth := Schedule{Frequency: FrequencyMonthly, DayOfMonth: intPtr(15)}
	assert.Equal(t, day(2026, 3, 15), fifteenth.FirstOccurrence(day(2026, 3, 4)))
	assert.Equal(t, day(2026, 4, 15), fifteenth.FirstOccurrence(day(2026, 3, 16)))

	last := Schedule{Frequency: FrequencyMonthly, DayOfMonth: intPtr(31)}
	assert.Equal(t, day(2026, 2, 28), last.FirstOccurrence(day(2026, 2, 10)))
}

func TestTemplateTick(t *testing.T) {
	tenantID := uuid.New()
	tmpl, err := NewTemplate(tenantID, uuid.New(), monthlyDetails(31, day(2026, 1, 5)))
	require.NoError(t, err)
	assert.Equal(t, day(2026, 1, 31), tmpl.NextIssueDate)

	t.Run("not due before the date", func(t *testing.T) {
		_, err := tmpl.Generate(uuid.New(), day(2026, 1, 30))
		assert.ErrorIs(t, err, ErrTemplateNotDue)
	})

	t.Run("generates a draft copy of the lines", func(t *testing.T) {
		doc, err := tmpl.Generate(uuid.New(), day(2026, 1, 31))
		require.NoError(t, err)
		assert.Equal(t, invoicing.DocumentStatusDraft, doc.Status)
		assert.Equal(t, invoicing.DocumentTypeInvoice, doc.Type)
		assert.Equal(t, tmpl.CustomerID, doc.CustomerID)
		assert.Equal(t, tmpl.ID, *doc.RecurringTemplateID)
		assert.Equal(t, "Monthly hosting fee", doc.Notes)
		require.Len(t, doc.Lines, 1)
		assert.Equal(t, "58.80", doc.Total.StringFixed(2))
		assert.Nil(t, doc.DocumentNumber)
	})

	t.Run("advance clamps to end of february", func(t *testing.T) {
		now := time.Date(2026, 1, 31, 6, 0, 0, 0, time.UTC)
		tmpl.Advance(now)
		assert.Equal(t, day(2026, 2, 28), tmpl.NextIssueDate)
		assert.Equal(t, now, *tmpl.LastIssuedAt)
		tmpl.Advance(now)
		assert.Equal(t, day(2026, 3, 31), tmpl.NextIssueDate)
	})

	t.Run("no catch up for missed periods", func(t *testing.T) {
		late, err := NewTemplate(tenantID, uuid.New(), monthlyDetails(1, day(2026, 1, 1)))
		require.NoError(t, err)
		today := day(2026, 6, 10)
		require.True(t, late.IsDue(today))
		late.Advance(today)
		assert.Equal(t, day(2026, 2, 1), late.NextIssueDate)
		assert.True(t, late.IsDue(today))
	})

	t.Run("inactive template is never due", func(t *testing.T) {
		paused, err := NewTemplate(tenantID, uuid.New(), monthlyDetails(1, day(2026, 1, 1)))
		require.NoError(t, err)
		paused.Deactivate()
		_, err = paused.Generate(uuid.New(), day(2026, 6, 1))
		assert.ErrorIs(t, err, ErrTemplateNotDue)
	})
}

func TestNewTemplateValidation(t *testing.T) {
	cases := map[string]func(d *TemplateDetails){
		"empty name":     func(d *TemplateDetails) { d.Name = "" },
		"no customer":    func(d *TemplateDetails) { d.CustomerID = uuid.Nil },
		"no lines":       func(d *TemplateDetails) { d.Lines = nil },
		"bad line":       func(d *TemplateDetails) { d.Lines[0].Quantity = decimal.Zero },
		"no start date":  func(d *TemplateDetails) { d.StartDate = time.Time{} },
		"bad frequency":  func(d *TemplateDetails) { d.Schedule.Frequency = "hourly" },
		"lower currency": func(d *TemplateDetails) { d.Currency = "eur" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := monthlyDetails(1, day(2026, 1, 1))
			mutate(&d)
			_, err := NewTemplate(uuid.New(), uuid.New(), d)
			assert.Error(t, err)
		})
	}
}

func TestPeriodKey(t *testing.T) {
	tmpl, err := NewTemplate(uuid.New(), uuid.New(), monthlyDetails(15, day(2026, 3, 1)))
	require.NoError(t, err)
	assert.Equal(t, tmpl.ID.String()+":2026-03-15", tmpl.PeriodKey())
}
