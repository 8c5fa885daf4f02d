package pricing

import (
	"context"
	"errors"
	"fmt"

	"butchery-analytics-service/internal/normalize"
	"butchery-analytics-service/internal/revenue"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMenu reads purchase prices from the butcher_menu_prices table.
type PostgresMenu struct {
	pool *pgxpool.Pool
}

func NewPostgresMenu(pool *pgxpool.Pool) *PostgresMenu {
	return &PostgresMenu{pool: pool}
}

func (m *PostgresMenu) PurchasePrice(ctx context.Context, butcherID, itemName, size string) (revenue.PriceQuote, error) {
	var price float64
	var category pgtype.Text

	err := m.pool.QueryRow(ctx, `
		select price, category
		from butcher_menu_prices
		where butcher_id = $1
		  and lower(item_name) = lower($2)
		  and (lower(size) = lower($3) or coalesce(size, '') = '')
		order by (lower(size) = lower($3)) desc nulls last
		limit 1
	`, butcherID, normalize.CanonicalName(itemName), size).Scan(&price, &category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return revenue.PriceQuote{}, fmt.Errorf("%w: %s/%s %s", ErrPriceNotFound, butcherID, itemName, size)
		}
		return revenue.PriceQuote{}, fmt.Errorf("query purchase price: %w", err)
	}

	quote := revenue.PriceQuote{Price: price}
	if category.Valid {
		quote.Category = category.String
	}
	return quote, nil
}
