package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"butchery-analytics-service/internal/lineitem"
	"butchery-analytics-service/internal/orders"
	"butchery-analytics-service/internal/rates"
	"butchery-analytics-service/internal/revenue"

	"github.com/shopspring/decimal"
)

const OrderTimeLayout = "02/01/2006 15:04"

var CSVHeader = []string{
	"Order ID",
	"Butcher",
	"Customer",
	"Items",
	"Status",
	"Order Time",
	"Prep Time (min)",
	"Weight/Quantity",
	"Revenue",
	"Address",
}

// CSVOptions carries the lookups used to render each row.
type CSVOptions struct {
	Registry rates.Registry
	Location *time.Location
}

// WriteOrdersCSV writes one row per order. Every field is double-quoted.
func WriteOrdersCSV(w io.Writer, list []orders.Order, opts CSVOptions) error {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, CSVHeader); err != nil {
		return err
	}
	for i := range list {
		if err := writeRecord(bw, orderRecord(&list[i], opts.Registry, loc)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func orderRecord(o *orders.Order, registry rates.Registry, loc *time.Location) []string {
	prep := ""
	if minutes, ok := o.PreparationMinutes(); ok {
		prep = number(minutes).Round(1).String()
	}
	return []string{
		o.OrderID,
		rates.ButcherName(registry, o.ButcherID),
		o.CustomerName,
		describeItems(o.Items),
		o.Status,
		o.OrderTime.In(loc).Format(OrderTimeLayout),
		prep,
		describeWeight(o),
		number(revenue.OrderRevenue(o)).StringFixed(2),
		o.Address,
	}
}

func describeItems(items []orders.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		qty := number(item.Quantity).String()
		unit := strings.TrimSpace(item.Unit)
		if unit == "" {
			unit = orders.UnitCount
		}
		label := fmt.Sprintf("%s x %s %s", item.Name, qty, unit)
		if size := strings.TrimSpace(item.Size); size != "" {
			label += " (" + size + ")"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "; ")
}

// describeWeight prefers the picked weight, then the parsed item weights,
// then a plain item count.
func describeWeight(o *orders.Order) string {
	if o.PickedWeight != nil && *o.PickedWeight > 0 {
		return number(*o.PickedWeight).Round(3).String() + " kg"
	}
	kg := 0.0
	for _, item := range o.Items {
		kg += lineitem.Kilograms(o, item)
	}
	if kg > 0 {
		return number(kg).Round(3).String() + " kg"
	}
	return number(o.TotalQuantity()).String() + " items"
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}

func number(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
