package pricing

import (
	"context"
	"errors"
	"testing"

	"butchery-analytics-service/internal/rates"

	"github.com/xuri/excelize/v2"
)

func testWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheets := map[string][][]any{
		"KAK Chicken": {
			{"Item", "Size", "Price"},
			{"Kozhi - Chicken Breast - கோழி", "500g", "₹ 160"},
			{"Chicken Breast", "", "300"},
			{"Chicken Curry Cut", "1kg", "240"},
		},
		"KAK Mutton": {
			{"Item Name", "Pack Size", "Purchase Price"},
			{"Mutton Keema", "500g", "1,250.50"},
			{"Mutton Chops", "500g", "n/a"},
		},
	}
	for name, rows := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for i, row := range rows {
			axis, _ := excelize.CoordinatesToCellName(1, i+1)
			values := row
			if err := f.SetSheetRow(name, axis, &values); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	return f
}

func testRegistry() *rates.StaticRegistry {
	return rates.NewStaticRegistry([]rates.ButcherConfig{
		{
			ID:   "kak",
			Type: rates.TypeMeat,
			CategorySheets: map[string]string{
				"chicken": "KAK Chicken",
				"mutton":  "KAK Mutton",
			},
		},
	})
}

func TestSheetMenuPurchasePrice(t *testing.T) {
	menu := NewSheetMenu(testWorkbook(t), testRegistry())

	cases := []struct {
		name         string
		butcher      string
		item         string
		size         string
		wantPrice    float64
		wantCategory string
		wantErr      error
	}{
		{name: "exact size", butcher: "kak", item: "Chicken Breast", size: "500g", wantPrice: 160, wantCategory: "chicken"},
		{name: "size spacing ignored", butcher: "kak", item: "Chicken Breast", size: "500 G", wantPrice: 160, wantCategory: "chicken"},
		{name: "unsized fallback", butcher: "kak", item: "Chicken Breast", size: "2kg", wantPrice: 300, wantCategory: "chicken"},
		{name: "composite name", butcher: "kak", item: "Aadu - Mutton Keema - ஆட்டு", size: "500g", wantPrice: 1250.5, wantCategory: "mutton"},
		{name: "unparsable price skipped", butcher: "kak", item: "Mutton Chops", size: "500g", wantErr: ErrPriceNotFound},
		{name: "unknown item", butcher: "kak", item: "Rohu Fish", wantErr: ErrPriceNotFound},
		{name: "unknown butcher", butcher: "ghost", item: "Chicken Breast", wantErr: ErrUnknownButcher},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote, err := menu.PurchasePrice(context.Background(), tc.butcher, tc.item, tc.size)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if quote.Price != tc.wantPrice || quote.Category != tc.wantCategory {
				t.Fatalf("expected %v/%s, got %v/%s", tc.wantPrice, tc.wantCategory, quote.Price, quote.Category)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{in: "420", want: 420, wantOK: true},
		{in: "₹ 1,250.50", want: 1250.5, wantOK: true},
		{in: "", wantOK: false},
		{in: "n/a", wantOK: false},
		{in: "-5", wantOK: false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParsePrice(tc.in)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("expected %v/%v, got %v/%v", tc.want, tc.wantOK, got, ok)
			}
		})
	}
}
