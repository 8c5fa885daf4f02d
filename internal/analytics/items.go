package analytics

import (
	"sort"
	"strings"

	"butchery-analytics-service/internal/lineitem"
)

const (
	topItemsLimit   = 10
	topReasonsLimit = 5
)

type ItemSummary struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Weight   float64 `json:"weight"`
	Revenue  float64 `json:"revenue"`
	Orders   int     `json:"orders"`
}

type ItemPrice struct {
	Name         string  `json:"name"`
	Revenue      float64 `json:"revenue"`
	Weight       float64 `json:"weight"`
	AveragePrice float64 `json:"averagePrice"`
	Orders       int     `json:"orders"`
}

type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Share    float64 `json:"share"`
}

type CutTypeSummary struct {
	CutType  string  `json:"cutType"`
	Quantity float64 `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

const UnspecifiedCutType = "Unspecified"

// groupItems folds lines by canonical name. Orders counts distinct orders
// per name.
func groupItems(lines []lineitem.Line) []ItemSummary {
	byName := make(map[string]*ItemSummary)
	seen := make(map[string]map[string]struct{})
	for _, line := range lines {
		row, ok := byName[line.Name]
		if !ok {
			row = &ItemSummary{Name: line.Name}
			byName[line.Name] = row
			seen[line.Name] = make(map[string]struct{})
		}
		row.Quantity += line.Quantity
		row.Weight += line.Kilograms
		row.Revenue += line.Revenue
		key := line.ButcherID + "-" + line.OrderID
		if _, ok := seen[line.Name][key]; !ok {
			seen[line.Name][key] = struct{}{}
			row.Orders++
		}
	}

	out := make([]ItemSummary, 0, len(byName))
	for _, row := range byName {
		out = append(out, *row)
	}
	return out
}

// MostSold ranks items by total weight.
func MostSold(lines []lineitem.Line) []ItemSummary {
	items := groupItems(lines)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Weight != items[j].Weight {
			return items[i].Weight > items[j].Weight
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > topItemsLimit {
		items = items[:topItemsLimit]
	}
	return items
}

// PriceComparison ranks items by revenue with their average price per
// kilogram. Items without any weight are left out.
func PriceComparison(lines []lineitem.Line) []ItemPrice {
	items := groupItems(lines)
	out := make([]ItemPrice, 0, len(items))
	for _, item := range items {
		if item.Weight == 0 {
			continue
		}
		out = append(out, ItemPrice{
			Name:         item.Name,
			Revenue:      item.Revenue,
			Weight:       item.Weight,
			AveragePrice: item.Revenue / item.Weight,
			Orders:       item.Orders,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topItemsLimit {
		out = out[:topItemsLimit]
	}
	return out
}

// RevenueByCategory sums revenue per category. Share is a percentage of
// the total, 0 when the total is 0.
func RevenueByCategory(lines []lineitem.Line) []CategoryRevenue {
	byCategory := make(map[string]float64)
	total := 0.0
	for _, line := range lines {
		byCategory[line.Category] += line.Revenue
		total += line.Revenue
	}

	out := make([]CategoryRevenue, 0, len(byCategory))
	for category, revenue := range byCategory {
		share := 0.0
		if total != 0 {
			share = revenue / total * 100
		}
		out = append(out, CategoryRevenue{Category: category, Revenue: revenue, Share: share})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// CutTypes groups lines by cut type. Callers gate it on a single meat
// vendor being selected.
func CutTypes(lines []lineitem.Line) []CutTypeSummary {
	byCut := make(map[string]*CutTypeSummary)
	for _, line := range lines {
		cut := strings.TrimSpace(line.CutType)
		if cut == "" {
			cut = UnspecifiedCutType
		}
		row, ok := byCut[cut]
		if !ok {
			row = &CutTypeSummary{CutType: cut}
			byCut[cut] = row
		}
		row.Quantity += line.Quantity
		row.Revenue += line.Revenue
	}

	out := make([]CutTypeSummary, 0, len(byCut))
	for _, row := range byCut {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].CutType < out[j].CutType
	})
	return out
}
