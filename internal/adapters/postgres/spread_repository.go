package postgres

import (
	"context"
	"errors"
	"fmt"
	"fxexchange/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SpreadRepository struct {
	pool *pgxpool.Pool
}

func (r *SpreadRepository) FindLatest(ctx context.Context, currency string) (float64, bool, error) {
	const q = `
        select spread from currency_spread
        where currency = $1
        order by created_at desc, id desc
        limit 1;
    `

	var spread float64
	if err := r.pool.QueryRow(ctx, q, currency).Scan(&spread); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to select spread for %q: %w", currency, err)
	}
	return spread, true, nil
}

// Append is the write side of the spread history: it records a new spread for a
// currency, which FindLatest returns from then on. History rows are never updated.
func (r *SpreadRepository) Append(ctx context.Context, currency string, spread float64) (domain.Spread, error) {
	const q = `
        insert into currency_spread (currency, spread)
        values ($1, $2)
        returning id, currency, spread, created_at;
    `

	var s domain.Spread
	if err := r.pool.QueryRow(ctx, q, domain.NormalizeCode(currency), spread).Scan(&s.ID, &s.Currency, &s.Spread, &s.CreatedAt); err != nil {
		return domain.Spread{}, fmt.Errorf("failed to insert spread for %q: %w", currency, err)
	}
	return s, nil
}

func NewSpreadRepository(pool *pgxpool.Pool) *SpreadRepository {
	return &SpreadRepository{pool: pool}
}
