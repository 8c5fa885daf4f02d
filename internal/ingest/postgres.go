package ingest

import (
	"context"
	"fmt"

	"butchery-analytics-service/internal/orders"
	"butchery-analytics-service/internal/utils"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresSource loads orders from the butcher_orders table. Item lists and
// the per-item maps are jsonb columns.
type PostgresSource struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresSource(pool *pgxpool.Pool, logger *zap.Logger) *PostgresSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresSource{pool: pool, logger: logger}
}

const ordersQuery = `
	select order_id, butcher_id, order_time, status, items,
	       item_weights, item_quantities, item_revenues,
	       revenue, picked_weight, completion_time,
	       preparation_start_time, preparation_end_time,
	       rejection_reason, address, customer_name
	from butcher_orders
	where ($1::text = '' or butcher_id = $1)
	order by ingested_at asc, id asc`

func (s *PostgresSource) LoadOrders(ctx context.Context, butcherID string) ([]orders.Order, error) {
	filter := butcherID
	if allButchers(butcherID) {
		filter = ""
	}

	rows, err := s.pool.Query(ctx, ordersQuery, filter)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	list := make([]orders.Order, 0)
	for rows.Next() {
		var (
			o               orders.Order
			items           []byte
			weights         []byte
			quantities      []byte
			revenues        []byte
			revenue         pgtype.Numeric
			pickedWeight    pgtype.Numeric
			completionTime  pgtype.Numeric
			prepStart       pgtype.Timestamptz
			prepEnd         pgtype.Timestamptz
			rejectionReason pgtype.Text
			address         pgtype.Text
			customerName    pgtype.Text
		)
		if err := rows.Scan(
			&o.OrderID, &o.ButcherID, &o.OrderTime, &o.Status, &items,
			&weights, &quantities, &revenues,
			&revenue, &pickedWeight, &completionTime,
			&prepStart, &prepEnd,
			&rejectionReason, &address, &customerName,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := decodeOrderMaps(&o, items, weights, quantities, revenues); err != nil {
			s.logger.Warn("skipping malformed order", zap.String("orderId", o.OrderID), zap.String("butcherId", o.ButcherID), zap.Error(err))
			continue
		}
		o.Revenue = utils.NumericPtr(revenue)
		o.PickedWeight = utils.NumericPtr(pickedWeight)
		o.CompletionTime = utils.NumericPtr(completionTime)
		o.PreparationStartTime = utils.TimestamptzPtr(prepStart)
		o.PreparationEndTime = utils.TimestamptzPtr(prepEnd)
		o.RejectionReason = rejectionReason.String
		o.Address = address.String
		o.CustomerName = customerName.String
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}
	return list, nil
}

func decodeOrderMaps(o *orders.Order, items, weights, quantities, revenues []byte) error {
	var err error
	if o.Items, err = decodeItems(items); err != nil {
		return err
	}
	if o.ItemWeights, err = decodeTextMap(weights, "item_weights"); err != nil {
		return err
	}
	if o.ItemQuantities, err = decodeTextMap(quantities, "item_quantities"); err != nil {
		return err
	}
	if o.ItemRevenues, err = decodeNumberMap(revenues, "item_revenues"); err != nil {
		return err
	}
	return nil
}
