package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fxexchange/internal/domain"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type RateRepository struct {
	pool *pgxpool.Pool
}

// FindLatest returns the most recent rate for from/to dated on or before date.
func (r *RateRepository) FindLatest(ctx context.Context, from string, to string, date time.Time) (domain.ExchangeRate, error) {
	const q = `
        select id, currency_from, currency_to, rate, exchange_date, access_counter, created_at, updated_at
        from currency_exchange_rate
        where currency_from = $1 and currency_to = $2 and exchange_date <= $3
        order by exchange_date desc
        limit 1;
    `

	var rate domain.ExchangeRate
	if err := r.pool.QueryRow(ctx, q, from, to, date).Scan(
		&rate.ID,
		&rate.CurrencyFrom,
		&rate.CurrencyTo,
		&rate.Rate,
		&rate.ExchangeDate,
		&rate.AccessCounter,
		&rate.CreatedAt,
		&rate.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ExchangeRate{}, &domain.RateNotFoundError{Currency: to, Date: date}
		}
		return domain.ExchangeRate{}, fmt.Errorf("failed to select rate for pair %q/%q at %s: %w", from, to, date.Format(domain.DateLayout), err)
	}
	return rate, nil
}

func (r *RateRepository) IncrementAccessCounter(ctx context.Context, id int64) error {
	const q = `update currency_exchange_rate set access_counter = access_counter + 1 where id = $1;`

	if _, err := r.pool.Exec(ctx, q, id); err != nil {
		return fmt.Errorf("failed to increment access counter for rate %d: %w", id, err)
	}
	return nil
}

type batchRow struct {
	CurrencyFrom string          `json:"currency_from"`
	CurrencyTo   string          `json:"currency_to"`
	ExchangeDate string          `json:"exchange_date"`
	Rate         decimal.Decimal `json:"rate"`
}

// UpsertAll writes rates keyed by (currency_from, currency_to, exchange_date) in one transaction.
// Keys must be unique within the batch.
func (r *RateRepository) UpsertAll(ctx context.Context, rates []domain.ExchangeRate) (domain.MergeResult, error) {
	if len(rates) == 0 {
		return domain.MergeResult{}, nil
	}

	payload := make([]batchRow, 0, len(rates))
	for _, rate := range rates {
		payload = append(payload, batchRow{
			CurrencyFrom: rate.CurrencyFrom,
			CurrencyTo:   rate.CurrencyTo,
			ExchangeDate: rate.ExchangeDate.Format(domain.DateLayout),
			Rate:         rate.Rate,
		})
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return domain.MergeResult{}, fmt.Errorf("failed to marshal rates: %w", err)
	}

	const q = `
		with

		-- step 1: parsing input
		input_rows as (
		  select * from json_to_recordset($1::json)
		  as r(currency_from text, currency_to text, exchange_date date, rate numeric)
		),

		-- step 2: inserting new keys, overwriting the rate of existing ones
		upserted as (
		  insert into currency_exchange_rate(currency_from, currency_to, exchange_date, rate)
		  select currency_from, currency_to, exchange_date, rate from input_rows
		  on conflict (currency_from, currency_to, exchange_date) do update
		  set rate = excluded.rate, updated_at = now()
		  returning (xmax = 0) as inserted
		)

		-- step 3: counting what happened
		select count(*) filter (where inserted), count(*) filter (where not inserted)
		from upserted;
	`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return domain.MergeResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var res domain.MergeResult
	if err = tx.QueryRow(ctx, q, json.RawMessage(payloadJSON)).Scan(&res.Created, &res.Updated); err != nil {
		return domain.MergeResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return domain.MergeResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return res, nil
}

func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}
