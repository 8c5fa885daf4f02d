package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"butchery-analytics-service/internal/orders"
)

// Source supplies raw orders. butcherID narrows the load when set; "" and
// "all" load every vendor. Results are in submission order.
type Source interface {
	LoadOrders(ctx context.Context, butcherID string) ([]orders.Order, error)
}

func allButchers(butcherID string) bool {
	butcherID = strings.TrimSpace(butcherID)
	return butcherID == "" || butcherID == "all"
}

// decodeMap reads an optional JSON object. Empty input leaves the map nil so
// absent and empty stay distinguishable.
func decodeMap[V any](raw []byte, field string) (map[string]V, error) {
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return nil, nil
	}
	var out map[string]V
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", field, err)
	}
	if out == nil {
		out = map[string]V{}
	}
	return out, nil
}

// decodeTextMap reads weight and quantity maps, whose values arrive either
// as text ("500g") or as bare numbers.
func decodeTextMap(raw []byte, field string) (map[string]string, error) {
	values, err := decodeMap[any](raw, field)
	if err != nil || values == nil {
		return nil, err
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case string:
			out[key] = v
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case nil:
		default:
			return nil, fmt.Errorf("decode %s: unexpected value for %q", field, key)
		}
	}
	return out, nil
}

// decodeNumberMap reads item revenue maps. Values written as quoted
// numbers ("240") are accepted; anything unreadable counts as 0 rather than
// dropping the order.
func decodeNumberMap(raw []byte, field string) (map[string]float64, error) {
	values, err := decodeMap[any](raw, field)
	if err != nil || values == nil {
		return nil, err
	}
	out := make(map[string]float64, len(values))
	for key, value := range values {
		out[key] = numberValue(value)
	}
	return out, nil
}

func numberValue(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		if n := parseNumber(v); n != nil {
			return *n
		}
	}
	return 0
}

func textValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// itemRecord is the stored shape of an order item. Quantity and size show
// up both quoted and bare.
type itemRecord struct {
	Name     string `json:"name"`
	Quantity any    `json:"quantity"`
	Unit     string `json:"unit"`
	Size     any    `json:"size"`
	CutType  string `json:"cutType"`
	Category string `json:"category"`
}

func decodeItems(raw []byte) ([]orders.OrderItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var records []itemRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if records == nil {
		return nil, nil
	}
	items := make([]orders.OrderItem, len(records))
	for i, r := range records {
		items[i] = orders.OrderItem{
			Name:     r.Name,
			Quantity: numberValue(r.Quantity),
			Unit:     r.Unit,
			Size:     textValue(r.Size),
			CutType:  r.CutType,
			Category: r.Category,
		}
	}
	return items, nil
}
