package lineitem

import (
	"butchery-analytics-service/internal/normalize"
	"butchery-analytics-service/internal/orders"
)

// RevenueSource resolves the revenue attributable to one item of an order.
type RevenueSource interface {
	ItemRevenueFor(o *orders.Order, item orders.OrderItem) float64
}

// Line is the normalized view of one order item.
type Line struct {
	OrderID   string
	ButcherID string
	RawName   string
	Name      string
	Category  string
	CutType   string
	Size      string
	Unit      string
	Quantity  float64
	Kilograms float64
	Revenue   float64
}

// Build normalizes every item of o.
func Build(o *orders.Order, revenue RevenueSource) []Line {
	if o == nil || len(o.Items) == 0 {
		return nil
	}
	lines := make([]Line, 0, len(o.Items))
	for _, item := range o.Items {
		line := Line{
			OrderID:   o.OrderID,
			ButcherID: o.ButcherID,
			RawName:   item.Name,
			Name:      normalize.CanonicalName(item.Name),
			Category:  normalize.InferCategory(item.Category, item.Name),
			CutType:   item.CutType,
			Size:      item.Size,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
			Kilograms: Kilograms(o, item),
		}
		if revenue != nil {
			line.Revenue = revenue.ItemRevenueFor(o, item)
		}
		lines = append(lines, line)
	}
	return lines
}

// BuildAll normalizes every order in turn.
func BuildAll(list []orders.Order, revenue RevenueSource) []Line {
	var lines []Line
	for i := range list {
		lines = append(lines, Build(&list[i], revenue)...)
	}
	return lines
}

// Kilograms resolves the weight of an item: the recorded weight text, then
// the recorded quantity text, then the item quantity converted by its unit.
func Kilograms(o *orders.Order, item orders.OrderItem) float64 {
	if text, ok := normalize.Lookup(o.ItemWeights, item.Name, item.Size); ok {
		if kg := normalize.ToKilograms(text); kg > 0 {
			return kg
		}
	}
	if text, ok := normalize.Lookup(o.ItemQuantities, item.Name, item.Size); ok {
		if kg := normalize.ToKilograms(text); kg > 0 {
			return kg
		}
	}
	return normalize.QuantityKilograms(item.Quantity, item.Unit, item.Size)
}
