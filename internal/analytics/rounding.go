package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Money rounds to 2 decimal places, half away from zero.
func Money(v float64) float64 { return round(v, 2) }

// Kilograms rounds to 3 decimal places.
func Kilograms(v float64) float64 { return round(v, 3) }

// Percent rounds to 1 decimal place.
func Percent(v float64) float64 { return round(v, 1) }

func roundItems(items []ItemSummary) []ItemSummary {
	out := make([]ItemSummary, len(items))
	for i, item := range items {
		item.Quantity = Kilograms(item.Quantity)
		item.Weight = Kilograms(item.Weight)
		item.Revenue = Money(item.Revenue)
		out[i] = item
	}
	return out
}

func roundPrices(items []ItemPrice) []ItemPrice {
	out := make([]ItemPrice, len(items))
	for i, item := range items {
		item.Revenue = Money(item.Revenue)
		item.Weight = Kilograms(item.Weight)
		item.AveragePrice = Money(item.AveragePrice)
		out[i] = item
	}
	return out
}

func roundCategories(rows []CategoryRevenue) []CategoryRevenue {
	out := make([]CategoryRevenue, len(rows))
	for i, row := range rows {
		row.Revenue = Money(row.Revenue)
		row.Share = Percent(row.Share)
		out[i] = row
	}
	return out
}

func roundStatuses(rows []StatusCount) []StatusCount {
	out := make([]StatusCount, len(rows))
	for i, row := range rows {
		row.Percentage = Percent(row.Percentage)
		out[i] = row
	}
	return out
}

func roundTrend(points []TrendPoint) []TrendPoint {
	out := make([]TrendPoint, len(points))
	for i, point := range points {
		point.Revenue = Money(point.Revenue)
		point.AvgCompletionMinutes = round(point.AvgCompletionMinutes, 1)
		out[i] = point
	}
	return out
}

func roundCutTypes(rows []CutTypeSummary) []CutTypeSummary {
	if rows == nil {
		return nil
	}
	out := make([]CutTypeSummary, len(rows))
	for i, row := range rows {
		row.Quantity = Kilograms(row.Quantity)
		row.Revenue = Money(row.Revenue)
		out[i] = row
	}
	return out
}

func roundRejections(stats RejectionStats) RejectionStats {
	stats.Rate = Percent(stats.Rate)
	return stats
}
