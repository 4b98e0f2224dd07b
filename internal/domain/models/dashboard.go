package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period identifies a billing cycle.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// Label returns the short display form, e.g. "Mar 2024".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", time.Month(p.Month).String()[:3], p.Year)
}

// SortKey returns the lexicographically sortable "YYYY-MM" form.
func (p Period) SortKey() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Previous returns the preceding calendar month, rolling the year back
// across a January boundary.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// InsightType drives which icon and tone the UI picks for the trend banner.
type InsightType string

const (
	InsightIncrease    InsightType = "increase"
	InsightImprovement InsightType = "improvement"
	InsightDecrease    InsightType = "decrease"
	InsightNeutral     InsightType = "neutral"
)

// Insight is the trend classification for the latest period: year over year
// when the prior year has data, otherwise against the preceding month.
type Insight struct {
	Type      InsightType `json:"type"`
	Message   string      `json:"message"`
	ChangePct *float64    `json:"change_pct,omitempty"`
}

// DashboardSummary bundles every derived view computed from one snapshot of
// the record collection. Views are recomputed per request and never cached,
// so they stay mutually consistent within a render cycle.
type DashboardSummary struct {
	Latest        *LatestPeriod   `json:"latest,omitempty"`
	CarbonKgCO2e  decimal.Decimal `json:"carbon_kg_co2e"`
	AverageCost   decimal.Decimal `json:"average_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Insight       Insight         `json:"insight"`
	MoMChangePct  *float64        `json:"mom_change_pct,omitempty"`
	YearlyTotals  []YearTotal     `json:"yearly_totals"`
	MonthlySeries []MonthSeries   `json:"monthly_series"`
	MeterHistory  MeterHistory    `json:"meter_history"`
}

// LatestPeriod sums cost and usage across every meter billed in the most
// recent (month, year) present in the data.
type LatestPeriod struct {
	Period Period          `json:"period"`
	Label  string          `json:"label"`
	Cost   decimal.Decimal `json:"cost"`
	Usage  decimal.Decimal `json:"usage"`
}

// YearTotal is one bar of the yearly comparison chart.
type YearTotal struct {
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
}

// MonthSeries is one row of the seasonal cross-year comparison: the total for
// a calendar month in every year present in the data, zero when that year has
// no bill for the month.
type MonthSeries struct {
	Month  int                     `json:"month"`
	Label  string                  `json:"label"`
	Totals map[int]decimal.Decimal `json:"totals"`
}

// MeterHistory is the stacked per-meter monthly cost series.
type MeterHistory struct {
	Meters  []string      `json:"meters"`
	Periods []MeterPeriod `json:"periods"`
}

// MeterPeriod carries the per-meter cost split for one (month, year) group.
// Every meter listed in MeterHistory.Meters has an entry, zero when it has no
// bill that period, so stacked-series consumers never see a missing key.
type MeterPeriod struct {
	SortKey string                     `json:"sort_key"`
	Label   string                     `json:"label"`
	Totals  map[string]decimal.Decimal `json:"totals"`
}

// MonthBreakdown compares a single calendar month across years, split by
// meter. Recomputed whenever the caller changes the selected month.
type MonthBreakdown struct {
	Month  int              `json:"month"`
	Meters []string         `json:"meters"`
	Years  []YearMeterTotal `json:"years"`
}

// YearMeterTotal is one year's per-meter cost split within a MonthBreakdown.
type YearMeterTotal struct {
	Year   int                        `json:"year"`
	Totals map[string]decimal.Decimal `json:"totals"`
}
