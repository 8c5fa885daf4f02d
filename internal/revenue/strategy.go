package revenue

import (
	"math"

	"butchery-analytics-service/internal/normalize"
	"butchery-analytics-service/internal/orders"
)

// Strategy resolves an item's revenue or reports that it does not apply.
type Strategy struct {
	Name    string
	Resolve func(o *orders.Order, item orders.OrderItem) (float64, bool)
}

const (
	StrategyCanonicalKey  = "canonical-key"
	StrategyRawKey        = "raw-key"
	StrategyCanonicalScan = "canonical-scan"
	StrategySizeKey       = "size-key"
	StrategyProportional  = "proportional"
	StrategyNone          = "none"
)

// DefaultStrategies is the precedence used for every aggregate view.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyCanonicalKey, Resolve: byCanonicalKey},
		{Name: StrategyRawKey, Resolve: byRawKey},
		{Name: StrategyCanonicalScan, Resolve: byCanonicalScan},
		{Name: StrategySizeKey, Resolve: bySizeKey},
		{Name: StrategyProportional, Resolve: byProportionalAllocation},
	}
}

// Resolver walks its strategies in order; the first match wins.
type Resolver struct {
	strategies []Strategy
}

func NewResolver(strategies ...Strategy) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Resolver{strategies: strategies}
}

var defaultResolver = NewResolver()

// ItemRevenue resolves with the default strategy chain.
func ItemRevenue(o *orders.Order, itemName string) float64 {
	return defaultResolver.ItemRevenue(o, itemName)
}

// ItemRevenueFor resolves a concrete item with the default strategy chain.
func ItemRevenueFor(o *orders.Order, item orders.OrderItem) float64 {
	return defaultResolver.ItemRevenueFor(o, item)
}

// ItemRevenue resolves by name against the first matching item of o.
// Lines that share a name but differ in size need ItemRevenueFor.
func (r *Resolver) ItemRevenue(o *orders.Order, itemName string) float64 {
	value, _ := r.Resolve(o, itemName)
	return value
}

func (r *Resolver) ItemRevenueFor(o *orders.Order, item orders.OrderItem) float64 {
	value, _ := r.ResolveItem(o, item)
	return value
}

// Resolve returns the revenue and the name of the strategy that produced it.
func (r *Resolver) Resolve(o *orders.Order, itemName string) (float64, string) {
	if o == nil {
		return 0, StrategyNone
	}
	item, found := o.FindItem(itemName, normalize.SameItem)
	if !found {
		item = orders.OrderItem{Name: itemName}
	}
	return r.ResolveItem(o, item)
}

// ResolveItem runs the chain against item itself, so its size and quantity
// are the ones used by the size-key and proportional strategies.
func (r *Resolver) ResolveItem(o *orders.Order, item orders.OrderItem) (float64, string) {
	if o == nil {
		return 0, StrategyNone
	}
	for _, s := range r.strategies {
		if value, ok := s.Resolve(o, item); ok {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return 0, s.Name
			}
			return value, s.Name
		}
	}
	return 0, StrategyNone
}

// HasItemRevenues reports whether o carries usable item-level revenue. An
// empty map counts as absent.
func HasItemRevenues(o *orders.Order) bool {
	return o != nil && len(o.ItemRevenues) > 0
}

func byCanonicalKey(o *orders.Order, item orders.OrderItem) (float64, bool) {
	if !HasItemRevenues(o) {
		return 0, false
	}
	return normalize.LookupCanonical(o.ItemRevenues, item.Name)
}

func byRawKey(o *orders.Order, item orders.OrderItem) (float64, bool) {
	if !HasItemRevenues(o) {
		return 0, false
	}
	return normalize.LookupRaw(o.ItemRevenues, item.Name)
}

func byCanonicalScan(o *orders.Order, item orders.OrderItem) (float64, bool) {
	if !HasItemRevenues(o) {
		return 0, false
	}
	return normalize.LookupScan(o.ItemRevenues, item.Name)
}

func bySizeKey(o *orders.Order, item orders.OrderItem) (float64, bool) {
	if !HasItemRevenues(o) {
		return 0, false
	}
	return normalize.LookupSized(o.ItemRevenues, item.Name, item.Size)
}

// byProportionalAllocation applies only when the order carries no
// item-level revenue at all.
func byProportionalAllocation(o *orders.Order, item orders.OrderItem) (float64, bool) {
	if HasItemRevenues(o) {
		return 0, false
	}
	return OrderRevenue(o) * Share(item.Quantity, o.TotalQuantity()), true
}
