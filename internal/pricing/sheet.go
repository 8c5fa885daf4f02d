package pricing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"butchery-analytics-service/internal/normalize"
	"butchery-analytics-service/internal/rates"
	"butchery-analytics-service/internal/revenue"

	"github.com/xuri/excelize/v2"
)

type menuRow struct {
	name  string
	size  string
	price float64
}

// SheetMenu reads purchase prices from a menu workbook. Each butcher maps
// its categories to sheet tabs; a tab lists Item, Size and Price columns
// under a header row.
type SheetMenu struct {
	file     *excelize.File
	registry rates.Registry

	mu     sync.Mutex
	sheets map[string][]menuRow
}

func NewSheetMenu(file *excelize.File, registry rates.Registry) *SheetMenu {
	return &SheetMenu{file: file, registry: registry, sheets: make(map[string][]menuRow)}
}

func OpenSheetMenu(path string, registry rates.Registry) (*SheetMenu, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open menu workbook: %w", err)
	}
	return NewSheetMenu(file, registry), nil
}

func (m *SheetMenu) Close() error {
	return m.file.Close()
}

// PurchasePrice searches the butcher's category tabs in category order. An
// exact size match wins over a row without a size.
func (m *SheetMenu) PurchasePrice(ctx context.Context, butcherID, itemName, size string) (revenue.PriceQuote, error) {
	if m.registry == nil {
		return revenue.PriceQuote{}, ErrUnknownButcher
	}
	cfg, ok := m.registry.Butcher(butcherID)
	if !ok {
		return revenue.PriceQuote{}, fmt.Errorf("%w: %s", ErrUnknownButcher, butcherID)
	}

	categories := make([]string, 0, len(cfg.CategorySheets))
	for category := range cfg.CategorySheets {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	target := normalize.CanonicalName(itemName)
	var fallback *revenue.PriceQuote
	for _, category := range categories {
		if err := ctx.Err(); err != nil {
			return revenue.PriceQuote{}, err
		}
		rows, err := m.rows(cfg.CategorySheets[category])
		if err != nil {
			return revenue.PriceQuote{}, err
		}
		for _, row := range rows {
			if !strings.EqualFold(normalize.CanonicalName(row.name), target) {
				continue
			}
			quote := revenue.PriceQuote{Price: row.price, Category: category}
			if sameSize(row.size, size) {
				return quote, nil
			}
			if fallback == nil && strings.TrimSpace(row.size) == "" {
				fallback = &quote
			}
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return revenue.PriceQuote{}, fmt.Errorf("%w: %s/%s %s", ErrPriceNotFound, butcherID, target, size)
}

func (m *SheetMenu) rows(sheet string) ([]menuRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rows, ok := m.sheets[sheet]; ok {
		return rows, nil
	}

	raw, err := m.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read menu sheet %q: %w", sheet, err)
	}
	rows := parseMenuRows(raw)
	m.sheets[sheet] = rows
	return rows, nil
}

// parseMenuRows locates the Item/Size/Price columns from the first row.
func parseMenuRows(raw [][]string) []menuRow {
	if len(raw) == 0 {
		return nil
	}
	itemCol, sizeCol, priceCol := -1, -1, -1
	for i, header := range raw[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case "item", "item name", "name":
			itemCol = i
		case "size", "pack size":
			sizeCol = i
		case "price", "purchase price", "cost":
			priceCol = i
		}
	}
	if itemCol < 0 || priceCol < 0 {
		return nil
	}

	rows := make([]menuRow, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		name := cell(cells, itemCol)
		if name == "" {
			continue
		}
		price, ok := ParsePrice(cell(cells, priceCol))
		if !ok {
			continue
		}
		rows = append(rows, menuRow{name: name, size: cell(cells, sizeCol), price: price})
	}
	return rows
}

func cell(cells []string, col int) string {
	if col < 0 || col >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col])
}
