package dashboard

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prasertw/voltbook/internal/domain/models"
)

// Emission factor (kgCO2e per kWh) for grid electricity, fixed per the
// reporting methodology the dashboard was built against.
var carbonFactor = decimal.RequireFromString("0.4999")

// unknownMeter labels records that carry no meter code in the stacked views.
const unknownMeter = "Unknown"

const neutralMessage = "Start saving energy today!"

// BuildSummary derives every dashboard view from one snapshot of the record
// collection. All views come from the same input, so they stay mutually
// consistent within one render cycle. Monetary sums use exact decimal
// addition; percentages are rounded only where a message is formatted.
func BuildSummary(records []models.BillingRecord) models.DashboardSummary {
	summary := models.DashboardSummary{
		CarbonKgCO2e:  decimal.Zero,
		AverageCost:   decimal.Zero,
		TotalCost:     decimal.Zero,
		Insight:       models.Insight{Type: models.InsightNeutral, Message: neutralMessage},
		YearlyTotals:  []models.YearTotal{},
		MonthlySeries: []models.MonthSeries{},
		MeterHistory:  models.MeterHistory{Meters: []string{}, Periods: []models.MeterPeriod{}},
	}
	if len(records) == 0 {
		return summary
	}

	latest := latestPeriod(records)
	latestCost := periodCost(records, latest)
	latestUsage := periodUsage(records, latest)

	summary.Latest = &models.LatestPeriod{
		Period: latest,
		Label:  latest.Label(),
		Cost:   latestCost,
		Usage:  latestUsage,
	}
	summary.CarbonKgCO2e = latestUsage.Mul(carbonFactor)
	summary.TotalCost = totalCost(records)
	summary.AverageCost = summary.TotalCost.Div(decimal.NewFromInt(int64(len(records))))
	summary.Insight = buildInsight(records, latest, latestCost)
	summary.MoMChangePct = momChange(records, latest, latestCost)
	summary.YearlyTotals = yearlyTotals(records)
	summary.MonthlySeries = monthlySeries(records)
	summary.MeterHistory = meterHistory(records)
	return summary
}

// BuildMonthBreakdown compares one calendar month across every year in the
// snapshot, split by meter. The meter set spans the whole snapshot so the
// stacked chart keys stay stable while the user flips through months.
func BuildMonthBreakdown(records []models.BillingRecord, month int) models.MonthBreakdown {
	meters := meterSet(records)
	breakdown := models.MonthBreakdown{
		Month:  month,
		Meters: meters,
		Years:  []models.YearMeterTotal{},
	}

	byYear := make(map[int]map[string]decimal.Decimal)
	for _, rec := range records {
		if rec.Month != month {
			continue
		}
		totals, ok := byYear[rec.Year]
		if !ok {
			totals = zeroMeterTotals(meters)
			byYear[rec.Year] = totals
		}
		meter := meterOf(rec)
		totals[meter] = totals[meter].Add(decimal.NewFromFloat(rec.TotalCost))
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	for _, year := range years {
		breakdown.Years = append(breakdown.Years, models.YearMeterTotal{Year: year, Totals: byYear[year]})
	}
	return breakdown
}

func latestPeriod(records []models.BillingRecord) models.Period {
	latest := records[0].Period()
	for _, rec := range records[1:] {
		p := rec.Period()
		if p.Year > latest.Year || (p.Year == latest.Year && p.Month > latest.Month) {
			latest = p
		}
	}
	return latest
}

func hasPeriod(records []models.BillingRecord, p models.Period) bool {
	for _, rec := range records {
		if rec.Month == p.Month && rec.Year == p.Year {
			return true
		}
	}
	return false
}

func periodCost(records []models.BillingRecord, p models.Period) decimal.Decimal {
	sum := decimal.Zero
	for _, rec := range records {
		if rec.Month == p.Month && rec.Year == p.Year {
			sum = sum.Add(decimal.NewFromFloat(rec.TotalCost))
		}
	}
	return sum
}

func periodUsage(records []models.BillingRecord, p models.Period) decimal.Decimal {
	sum := decimal.Zero
	for _, rec := range records {
		if rec.Month == p.Month && rec.Year == p.Year {
			sum = sum.Add(decimal.NewFromFloat(rec.Usage))
		}
	}
	return sum
}

func totalCost(records []models.BillingRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, rec := range records {
		sum = sum.Add(decimal.NewFromFloat(rec.TotalCost))
	}
	return sum
}

// pctChange returns (current-prior)/prior*100, or nil when the prior cost is
// zero. Division by a zero prior must yield an absent result, never Inf/NaN.
func pctChange(current, prior decimal.Decimal) *float64 {
	if prior.IsZero() {
		return nil
	}
	pct := current.Sub(prior).Div(prior).Mul(decimal.NewFromInt(100)).InexactFloat64()
	return &pct
}

// buildInsight classifies the latest period's cost. The same calendar month
// one year earlier takes priority; only when that year has no data does the
// comparison fall back to the preceding month. A zero prior cost stays
// neutral.
func buildInsight(records []models.BillingRecord, latest models.Period, latestCost decimal.Decimal) models.Insight {
	lastYear := models.Period{Month: latest.Month, Year: latest.Year - 1}
	if hasPeriod(records, lastYear) {
		pct := pctChange(latestCost, periodCost(records, lastYear))
		if pct == nil {
			return models.Insight{Type: models.InsightNeutral, Message: neutralMessage}
		}
		if *pct > 0 {
			return models.Insight{
				Type:      models.InsightIncrease,
				Message:   fmt.Sprintf("Electricity cost up %.1f%% vs the same month last year", *pct),
				ChangePct: pct,
			}
		}
		return models.Insight{
			Type:      models.InsightImprovement,
			Message:   fmt.Sprintf("Great! You saved %.1f%% vs last year", math.Abs(*pct)),
			ChangePct: pct,
		}
	}

	prev := latest.Previous()
	if hasPeriod(records, prev) {
		pct := pctChange(latestCost, periodCost(records, prev))
		if pct == nil {
			return models.Insight{Type: models.InsightNeutral, Message: neutralMessage}
		}
		if *pct > 0 {
			return models.Insight{
				Type:      models.InsightIncrease,
				Message:   fmt.Sprintf("Electricity cost up %.1f%% vs last month", *pct),
				ChangePct: pct,
			}
		}
		return models.Insight{
			Type:      models.InsightDecrease,
			Message:   fmt.Sprintf("Electricity cost down %.1f%% vs last month", math.Abs(*pct)),
			ChangePct: pct,
		}
	}

	return models.Insight{Type: models.InsightNeutral, Message: neutralMessage}
}

// momChange is always computed against the immediately preceding calendar
// month, independent of which comparison the insight picked.
func momChange(records []models.BillingRecord, latest models.Period, latestCost decimal.Decimal) *float64 {
	prev := latest.Previous()
	if !hasPeriod(records, prev) {
		return nil
	}
	return pctChange(latestCost, periodCost(records, prev))
}

func yearlyTotals(records []models.BillingRecord) []models.YearTotal {
	byYear := make(map[int]decimal.Decimal)
	for _, rec := range records {
		byYear[rec.Year] = byYear[rec.Year].Add(decimal.NewFromFloat(rec.TotalCost))
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	out := make([]models.YearTotal, 0, len(years))
	for _, year := range years {
		out = append(out, models.YearTotal{Year: year, Total: byYear[year]})
	}
	return out
}

// monthlySeries produces one row per calendar month January through December,
// carrying the total for every year present in the snapshot, zero when that
// year has no bill for the month.
func monthlySeries(records []models.BillingRecord) []models.MonthSeries {
	yearSet := make(map[int]struct{})
	for _, rec := range records {
		yearSet[rec.Year] = struct{}{}
	}

	out := make([]models.MonthSeries, 0, 12)
	for month := 1; month <= 12; month++ {
		row := models.MonthSeries{
			Month:  month,
			Label:  time.Month(month).String()[:3],
			Totals: make(map[int]decimal.Decimal, len(yearSet)),
		}
		for year := range yearSet {
			row.Totals[year] = periodCost(records, models.Period{Month: month, Year: year})
		}
		out = append(out, row)
	}
	return out
}

// meterHistory groups records by period and splits each period's cost per
// meter. Every meter gets an entry in every period, zero when it has no bill,
// and periods come out in ascending (year, month) order.
func meterHistory(records []models.BillingRecord) models.MeterHistory {
	meters := meterSet(records)

	byKey := make(map[string]*models.MeterPeriod)
	for _, rec := range records {
		p := rec.Period()
		key := p.SortKey()
		group, ok := byKey[key]
		if !ok {
			group = &models.MeterPeriod{
				SortKey: key,
				Label:   p.Label(),
				Totals:  zeroMeterTotals(meters),
			}
			byKey[key] = group
		}
		meter := meterOf(rec)
		group.Totals[meter] = group.Totals[meter].Add(decimal.NewFromFloat(rec.TotalCost))
	}

	periods := make([]models.MeterPeriod, 0, len(byKey))
	for _, group := range byKey {
		periods = append(periods, *group)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].SortKey < periods[j].SortKey })

	return models.MeterHistory{Meters: meters, Periods: periods}
}

func meterOf(rec models.BillingRecord) string {
	if rec.MeterCode == "" {
		return unknownMeter
	}
	return rec.MeterCode
}

func meterSet(records []models.BillingRecord) []string {
	set := make(map[string]struct{})
	for _, rec := range records {
		set[meterOf(rec)] = struct{}{}
	}

	meters := make([]string, 0, len(set))
	for meter := range set {
		meters = append(meters, meter)
	}
	sort.Strings(meters)
	return meters
}

func zeroMeterTotals(meters []string) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(meters))
	for _, meter := range meters {
		totals[meter] = decimal.Zero
	}
	return totals
}
