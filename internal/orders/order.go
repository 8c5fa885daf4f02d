package orders

import (
	"math"
	"strings"
	"time"
)

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
	StatusDeclined  = "declined"
)

const (
	UnitKilogram = "kg"
	UnitGram     = "g"
	UnitCount    = "count"
)

// Order is one submission from a butcher's stall as delivered by the
// persistence layer. Map fields are keyed by item name, sometimes raw and
// sometimes canonical. A nil map means the field was absent upstream.
type Order struct {
	OrderID   string      `json:"orderId"`
	ButcherID string      `json:"butcherId"`
	OrderTime time.Time   `json:"orderTime"`
	Status    string      `json:"status"`
	Items     []OrderItem `json:"items"`

	ItemWeights    map[string]string  `json:"itemWeights,omitempty"`
	ItemQuantities map[string]string  `json:"itemQuantities,omitempty"`
	ItemRevenues   map[string]float64 `json:"itemRevenues,omitempty"`

	Revenue              *float64   `json:"revenue,omitempty"`
	PickedWeight         *float64   `json:"pickedWeight,omitempty"`
	CompletionTime       *float64   `json:"completionTime,omitempty"`
	PreparationStartTime *time.Time `json:"preparationStartTime,omitempty"`
	PreparationEndTime   *time.Time `json:"preparationEndTime,omitempty"`

	RejectionReason string `json:"rejectionReason,omitempty"`
	Address         string `json:"address,omitempty"`
	CustomerName    string `json:"customerName,omitempty"`
}

// OrderItem is a single line of an order.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Size     string  `json:"size,omitempty"`
	CutType  string  `json:"cutType,omitempty"`
	Category string  `json:"category,omitempty"`
}

// Key is the composite identity used for deduplication.
func (o Order) Key() string {
	return o.ButcherID + "-" + o.OrderID
}

// HasStatus compares the order status case-insensitively.
func (o Order) HasStatus(statuses ...string) bool {
	current := strings.TrimSpace(o.Status)
	for _, status := range statuses {
		if strings.EqualFold(current, status) {
			return true
		}
	}
	return false
}

// TotalQuantity sums item quantities.
func (o Order) TotalQuantity() float64 {
	total := 0.0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// PreparationMinutes returns the stored completion time when present, else
// the minutes between preparation start and end. ok is false when neither
// signal is usable.
func (o Order) PreparationMinutes() (minutes float64, ok bool) {
	if o.CompletionTime != nil && !math.IsNaN(*o.CompletionTime) {
		return *o.CompletionTime, true
	}
	if o.PreparationStartTime != nil && o.PreparationEndTime != nil {
		diff := o.PreparationEndTime.Sub(*o.PreparationStartTime).Minutes()
		if diff >= 0 {
			return diff, true
		}
	}
	return 0, false
}

// FindItem returns the first item whose raw name matches, falling back to the
// first item matching by the supplied equivalence.
func (o Order) FindItem(name string, same func(a, b string) bool) (OrderItem, bool) {
	for _, item := range o.Items {
		if item.Name == name {
			return item, true
		}
	}
	if same == nil {
		return OrderItem{}, false
	}
	for _, item := range o.Items {
		if same(item.Name, name) {
			return item, true
		}
	}
	return OrderItem{}, false
}

func Float(v float64) *float64 {
	return &v
}
