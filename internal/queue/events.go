package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"butchery-analytics-service/internal/analytics"
	"butchery-analytics-service/internal/recompute"
	"butchery-analytics-service/internal/reconcile"

	"go.uber.org/zap"
)

const (
	DefaultEventsExchange = "butchery.events"
	DefaultAnalyticsQueue = "butchery.analytics"

	// '#' matches multi-segment keys such as order.status.updated.
	OrderEventsBinding   = "order.#"
	RecomputedRoutingKey = "analytics.recomputed"
)

var ErrMalformedEvent = errors.New("malformed order event")

// OrderEvent is the envelope published on the events exchange whenever an
// order is created or changes state.
type OrderEvent struct {
	Type       string     `json:"type"`
	OrderID    string     `json:"orderId"`
	ButcherID  string     `json:"butcherId"`
	Status     string     `json:"status,omitempty"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
}

// RecomputedEvent announces a committed live dashboard.
type RecomputedEvent struct {
	Type        string            `json:"type"`
	Scope       string            `json:"scope"`
	RunID       string            `json:"runId"`
	Token       uint64            `json:"token"`
	OrderID     string            `json:"orderId,omitempty"`
	Summary     analytics.Summary `json:"summary"`
	CompletedAt time.Time         `json:"completedAt"`
}

func ParseOrderEvent(body []byte) (OrderEvent, error) {
	var evt OrderEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return OrderEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	evt.Type = strings.TrimSpace(evt.Type)
	evt.ButcherID = strings.TrimSpace(evt.ButcherID)
	return evt, nil
}

// Scopes lists the live scopes an event invalidates: always "all", plus the
// event's butcher when it names one.
func (e OrderEvent) Scopes() []string {
	scopes := []string{reconcile.AllButchers}
	if e.ButcherID != "" && e.ButcherID != reconcile.AllButchers {
		scopes = append(scopes, e.ButcherID)
	}
	return scopes
}

type Recomputer interface {
	Recompute(ctx context.Context, q analytics.Query) (recompute.Result[analytics.Dashboard], bool, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, exchange, routingKey string, payload any) error
}

// EventProcessor turns order events into live recomputations.
type EventProcessor struct {
	recomputer Recomputer
	publisher  Publisher
	exchange   string
	logger     *zap.Logger
}

func NewEventProcessor(recomputer Recomputer, publisher Publisher, exchange string, logger *zap.Logger) *EventProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exchange == "" {
		exchange = DefaultEventsExchange
	}
	return &EventProcessor{recomputer: recomputer, publisher: publisher, exchange: exchange, logger: logger}
}

// Handle is a HandlerFunc. Events other than order.* are acknowledged and
// ignored.
func (p *EventProcessor) Handle(ctx context.Context, body []byte) error {
	evt, err := ParseOrderEvent(body)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(evt.Type, "order.") {
		p.logger.Debug("ignoring event", zap.String("type", evt.Type))
		return nil
	}

	for _, scope := range evt.Scopes() {
		result, committed, err := p.recomputer.Recompute(ctx, analytics.Query{ButcherID: scope})
		if err != nil {
			return fmt.Errorf("recompute %s: %w", scope, err)
		}
		if !committed {
			continue
		}
		p.announce(ctx, scope, evt, result)
	}
	return nil
}

func (p *EventProcessor) announce(ctx context.Context, scope string, evt OrderEvent, result recompute.Result[analytics.Dashboard]) {
	if p.publisher == nil {
		return
	}
	msg := RecomputedEvent{
		Type:        RecomputedRoutingKey,
		Scope:       scope,
		RunID:       result.RunID,
		Token:       result.Token,
		OrderID:     evt.OrderID,
		Summary:     result.Value.Summary,
		CompletedAt: result.CompletedAt,
	}
	if err := p.publisher.PublishJSON(ctx, p.exchange, RecomputedRoutingKey, msg); err != nil {
		p.logger.Warn("recompute announcement failed", zap.String("scope", scope), zap.Error(err))
	}
}
