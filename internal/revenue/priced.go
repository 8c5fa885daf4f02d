package revenue

import (
	"context"
	"math"
	"sort"
	"strings"

	"butchery-analytics-service/internal/lineitem"
	"butchery-analytics-service/internal/normalize"
	"butchery-analytics-service/internal/orders"

	"go.uber.org/zap"
)

// PriceQuote is a vendor's purchase price for an item size, per kilogram.
type PriceQuote struct {
	Price    float64
	Category string
}

// PriceLookup returns the vendor purchase price for an item.
type PriceLookup interface {
	PurchasePrice(ctx context.Context, butcherID, itemName, size string) (PriceQuote, error)
}

// RateSource supplies commission and markup rates per butcher/category.
type RateSource interface {
	CommissionRate(butcherID string, category string) float64
	MarkupRate(butcherID string, category string) float64
}

// ItemStat aggregates one canonical item across a set of orders.
type ItemStat struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Orders       int     `json:"orders"`
	Quantity     float64 `json:"quantity"`
	Weight       float64 `json:"weight"`
	Revenue      float64 `json:"revenue"`
	PurchaseCost float64 `json:"purchaseCost"`
	Commission   float64 `json:"commission"`
	Estimated    bool    `json:"estimated"`
}

// PricedAllocator combines recorded revenue with vendor purchase prices to
// produce per-item totals. Orders lacking recorded revenue get an estimate of
// price × weight × (1 + markup).
type PricedAllocator struct {
	resolver *Resolver
	prices   PriceLookup
	rates    RateSource
	logger   *zap.Logger
}

func NewPricedAllocator(resolver *Resolver, prices PriceLookup, rates RateSource, logger *zap.Logger) *PricedAllocator {
	if resolver == nil {
		resolver = NewResolver()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricedAllocator{resolver: resolver, prices: prices, rates: rates, logger: logger}
}

type priceKey struct {
	butcherID string
	name      string
	size      string
}

// ItemStats folds list into per-item totals sorted by revenue descending,
// then name. Orders are processed sequentially. A failed price lookup is
// logged and counts as price 0.
func (a *PricedAllocator) ItemStats(ctx context.Context, list []orders.Order) ([]ItemStat, error) {
	memo := make(map[priceKey]PriceQuote)
	stats := make(map[string]*ItemStat)

	for i := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o := &list[i]
		total := o.TotalQuantity()
		orderRevenue := OrderRevenue(o)
		orderWeight := OrderWeight(o)

		seen := make(map[string]bool)
		for _, item := range o.Items {
			name := normalize.CanonicalName(item.Name)
			share := Share(item.Quantity, total)
			quote := a.quote(ctx, memo, o.ButcherID, name, item.Size)

			category := strings.TrimSpace(quote.Category)
			if category == "" {
				category = normalize.InferCategory(item.Category, item.Name)
			}

			var weight, revenue float64
			estimated := false
			if HasItemRevenues(o) {
				weight = lineitem.Kilograms(o, item)
				revenue = a.resolver.ItemRevenueFor(o, item)
			} else {
				weight = orderWeight * share
				if orderRevenue > 0 {
					revenue = orderRevenue * share
				} else {
					revenue = quote.Price * weight * (1 + a.markup(o.ButcherID, category))
					estimated = revenue > 0
				}
			}

			stat, ok := stats[name]
			if !ok {
				stat = &ItemStat{Name: name, Category: category}
				stats[name] = stat
			}
			if !seen[name] {
				stat.Orders++
				seen[name] = true
			}
			stat.Quantity += item.Quantity
			stat.Weight += weight
			stat.Revenue += revenue
			stat.PurchaseCost += quote.Price * weight
			stat.Commission += revenue * a.commission(o.ButcherID, category)
			stat.Estimated = stat.Estimated || estimated
		}
	}

	out := make([]ItemStat, 0, len(stats))
	for _, stat := range stats {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (a *PricedAllocator) quote(ctx context.Context, memo map[priceKey]PriceQuote, butcherID, name, size string) PriceQuote {
	key := priceKey{butcherID: butcherID, name: name, size: strings.TrimSpace(size)}
	if q, ok := memo[key]; ok {
		return q
	}
	var q PriceQuote
	if a.prices != nil {
		found, err := a.prices.PurchasePrice(ctx, butcherID, name, key.size)
		if err != nil {
			a.logger.Warn("purchase price lookup failed",
				zap.String("butcherId", butcherID),
				zap.String("item", name),
				zap.String("size", key.size),
				zap.Error(err),
			)
		} else if !math.IsNaN(found.Price) && found.Price > 0 {
			q = found
		} else {
			q.Category = found.Category
		}
	}
	memo[key] = q
	return q
}

func (a *PricedAllocator) markup(butcherID, category string) float64 {
	if a.rates == nil {
		return 0
	}
	return a.rates.MarkupRate(butcherID, category)
}

func (a *PricedAllocator) commission(butcherID, category string) float64 {
	if a.rates == nil {
		return 0
	}
	return a.rates.CommissionRate(butcherID, category)
}
