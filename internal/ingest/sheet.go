package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"butchery-analytics-service/internal/orders"
	"butchery-analytics-service/internal/pricing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const DefaultOrdersSheet = "Orders"

var sheetTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04",
}

// SheetSource reads orders from a workbook tab. Columns are matched by
// header name; items and the per-item maps are JSON cells.
type SheetSource struct {
	path     string
	sheet    string
	location *time.Location
	logger   *zap.Logger
}

func NewSheetSource(path, sheet string, location *time.Location, logger *zap.Logger) *SheetSource {
	if strings.TrimSpace(sheet) == "" {
		sheet = DefaultOrdersSheet
	}
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetSource{path: path, sheet: sheet, location: location, logger: logger}
}

// LoadOrders reopens the workbook on every call so edits are picked up.
func (s *SheetSource) LoadOrders(ctx context.Context, butcherID string) ([]orders.Order, error) {
	file, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open orders workbook: %w", err)
	}
	defer file.Close()
	return s.ReadOrders(ctx, file, butcherID)
}

// ReadOrders parses orders from an already open workbook.
func (s *SheetSource) ReadOrders(ctx context.Context, file *excelize.File, butcherID string) ([]orders.Order, error) {
	rows, err := file.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", s.sheet, err)
	}
	if len(rows) == 0 {
		return []orders.Order{}, nil
	}

	columns := headerIndex(rows[0])
	list := make([]orders.Order, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := sheetRow{cells: cells, columns: columns}
		if row.get("order id") == "" {
			continue
		}
		o, err := s.parseRow(row)
		if err != nil {
			s.logger.Warn("skipping malformed order row", zap.Int("row", i+2), zap.Error(err))
			continue
		}
		if !allButchers(butcherID) && o.ButcherID != butcherID {
			continue
		}
		list = append(list, o)
	}
	return list, nil
}

func (s *SheetSource) parseRow(row sheetRow) (orders.Order, error) {
	o := orders.Order{
		OrderID:         row.get("order id"),
		ButcherID:       row.get("butcher id"),
		Status:          row.get("status"),
		RejectionReason: row.get("rejection reason"),
		Address:         row.get("address"),
		CustomerName:    row.get("customer name"),
	}

	orderTime, ok := s.parseTime(row.get("order time"))
	if !ok {
		return o, fmt.Errorf("order %s: invalid order time %q", o.OrderID, row.get("order time"))
	}
	o.OrderTime = orderTime

	var err error
	if o.Items, err = decodeItems([]byte(row.get("items"))); err != nil {
		return o, err
	}
	if o.ItemWeights, err = decodeTextMap([]byte(row.get("item weights")), "item weights"); err != nil {
		return o, err
	}
	if o.ItemQuantities, err = decodeTextMap([]byte(row.get("item quantities")), "item quantities"); err != nil {
		return o, err
	}
	if o.ItemRevenues, err = decodeNumberMap([]byte(row.get("item revenues")), "item revenues"); err != nil {
		return o, err
	}

	o.Revenue = parseNumber(row.get("revenue"))
	o.PickedWeight = parseNumber(row.get("picked weight"))
	o.CompletionTime = parseNumber(row.get("completion time"))
	if t, ok := s.parseTime(row.get("preparation start time")); ok {
		o.PreparationStartTime = &t
	}
	if t, ok := s.parseTime(row.get("preparation end time")); ok {
		o.PreparationEndTime = &t
	}
	return o, nil
}

func (s *SheetSource) parseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range sheetTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, s.location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumber(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		return &v
	}
	if v, ok := pricing.ParsePrice(value); ok {
		return &v
	}
	return nil
}

type sheetRow struct {
	cells   []string
	columns map[string]int
}

func (r sheetRow) get(column string) string {
	i, ok := r.columns[column]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, header := range headers {
		key := strings.ToLower(strings.Join(strings.Fields(header), " "))
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return index
}
