package rate

import (
	"context"
	"fmt"
	"fxexchange/internal/adapters"
	"fxexchange/internal/domain"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// crossRateScale is the number of decimal places the cross rate is rounded to before the spread is applied.
const crossRateScale = 4

var hundred = decimal.NewFromInt(100)

type Settings struct {
	BaseCurrency  string
	SpreadBase    float64
	SpreadDefault float64
	AccessKey     string
}

// Service resolves quotes from base-relative rates and merges new rates into the store.
type Service struct {
	rates     adapters.RateRepository
	spreads   adapters.SpreadRepository
	provider  adapters.RateProvider
	validator *Validator
	settings  Settings
}

// ResolveQuote computes the exchange from -> to as of date. A zero date means today.
func (s *Service) ResolveQuote(ctx context.Context, from string, to string, date time.Time) (domain.Quote, error) {
	from = domain.NormalizeCode(from)
	to = domain.NormalizeCode(to)
	if err := s.validator.ValidatePair(from, to); err != nil {
		return domain.Quote{}, err
	}
	if date.IsZero() {
		date = s.validator.Today()
	}
	date = domain.DateOf(date)
	if err := s.validator.ValidateDate(date); err != nil {
		return domain.Quote{}, err
	}

	rateFrom, err := s.rateRelativeToBase(ctx, from, date)
	if err != nil {
		return domain.Quote{}, err
	}
	rateTo, err := s.rateRelativeToBase(ctx, to, date)
	if err != nil {
		return domain.Quote{}, err
	}
	spreadFrom, err := s.spreadFor(ctx, from)
	if err != nil {
		return domain.Quote{}, err
	}
	spreadTo, err := s.spreadFor(ctx, to)
	if err != nil {
		return domain.Quote{}, err
	}

	return domain.Quote{
		From:     from,
		To:       to,
		Exchange: crossRate(rateFrom, rateTo, spreadFrom, spreadTo),
	}, nil
}

// crossRate divides the two base-relative rates and discounts the result by the larger spread.
func crossRate(rateFrom, rateTo decimal.Decimal, spreadFrom, spreadTo float64) decimal.Decimal {
	cross := divRoundHalfEven(rateTo, rateFrom, crossRateScale)
	spread := decimal.NewFromFloat(math.Max(spreadFrom, spreadTo))
	return cross.Mul(hundred.Sub(spread).Div(hundred))
}

// divRoundHalfEven returns a/b rounded half-to-even at places decimals, without
// an intermediate truncated quotient.
func divRoundHalfEven(a, b decimal.Decimal, places int32) decimal.Decimal {
	q, r := a.QuoRem(b, places)
	if r.IsZero() {
		return q
	}
	unit := decimal.New(1, -places)
	if a.Sign()*b.Sign() < 0 {
		unit = unit.Neg()
	}
	switch r.Abs().Mul(decimal.NewFromInt(2)).Cmp(b.Abs().Mul(decimal.New(1, -places))) {
	case 1:
		return q.Add(unit)
	case 0:
		if q.Shift(places).BigInt().Bit(0) == 1 {
			return q.Add(unit)
		}
	}
	return q
}

func (s *Service) rateRelativeToBase(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error) {
	if currency == s.settings.BaseCurrency {
		return decimal.NewFromInt(1), nil
	}
	rate, err := s.rates.FindLatest(ctx, s.settings.BaseCurrency, currency, date)
	if err != nil {
		return decimal.Decimal{}, err
	}
	s.countAccess(ctx, rate)
	return rate.Rate, nil
}

// countAccess bumps the usage counter of rate. Failures are only logged.
func (s *Service) countAccess(ctx context.Context, rate domain.ExchangeRate) {
	if err := s.rates.IncrementAccessCounter(ctx, rate.ID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"rate_id": rate.ID, "currency": rate.CurrencyTo}).Warn("access counter not incremented")
	}
}

func (s *Service) spreadFor(ctx context.Context, currency string) (float64, error) {
	if currency == s.settings.BaseCurrency {
		return s.settings.SpreadBase, nil
	}
	spread, ok, err := s.spreads.FindLatest(ctx, currency)
	if err != nil {
		return 0, fmt.Errorf("failed to get spread for %q: %w", currency, err)
	}
	if !ok {
		return s.settings.SpreadDefault, nil
	}
	return spread, nil
}

// MergeRates validates the whole batch, then creates or overwrites one record per
// (from, to, date). Later entries win over earlier ones with the same key.
func (s *Service) MergeRates(ctx context.Context, entries []domain.RateEntry) (domain.MergeResult, error) {
	normalized := normalizeEntries(entries)
	if err := s.validator.ValidateEntries(normalized); err != nil {
		return domain.MergeResult{}, err
	}

	records := make([]domain.ExchangeRate, 0, len(normalized))
	index := make(map[domain.NaturalKey]int, len(normalized))
	for _, e := range normalized {
		record := domain.ExchangeRate{CurrencyFrom: e.From, CurrencyTo: e.To, ExchangeDate: e.Date, Rate: e.Rate}
		if i, ok := index[record.Key()]; ok {
			records[i].Rate = e.Rate
			continue
		}
		index[record.Key()] = len(records)
		records = append(records, record)
	}

	res, err := s.rates.UpsertAll(ctx, records)
	if err != nil {
		return domain.MergeResult{}, fmt.Errorf("failed to save rates: %w", err)
	}
	return res, nil
}

func normalizeEntries(entries []domain.RateEntry) []domain.RateEntry {
	out := make([]domain.RateEntry, len(entries))
	for i, e := range entries {
		out[i] = domain.RateEntry{
			From: domain.NormalizeCode(e.From),
			To:   domain.NormalizeCode(e.To),
			Date: domain.DateOf(e.Date),
			Rate: e.Rate,
		}
	}
	return out
}

// RefreshLatest fetches the provider's latest snapshot and merges it. Running it
// again for the same snapshot date only overwrites the same records.
func (s *Service) RefreshLatest(ctx context.Context) (domain.MergeResult, error) {
	snapshot, err := s.provider.FetchLatest(ctx, s.settings.AccessKey, s.settings.BaseCurrency)
	if err != nil {
		return domain.MergeResult{}, fmt.Errorf("failed to fetch latest rates: %w", err)
	}
	entries, err := s.snapshotEntries(snapshot)
	if err != nil {
		return domain.MergeResult{}, err
	}
	return s.MergeRates(ctx, entries)
}

// snapshotEntries expands a snapshot into one entry per quoted currency. Rates are
// rounded to the storage scale; entries still unusable after that are skipped.
func (s *Service) snapshotEntries(snapshot domain.Snapshot) ([]domain.RateEntry, error) {
	base := domain.NormalizeCode(snapshot.Base)
	if base != s.settings.BaseCurrency {
		return nil, fmt.Errorf("%w: snapshot base %q does not match configured base %q", domain.ErrProviderUnavailable, base, s.settings.BaseCurrency)
	}
	date := domain.DateOf(snapshot.Date)

	entries := make([]domain.RateEntry, 0, len(snapshot.Rates))
	for code, value := range snapshot.Rates {
		code = domain.NormalizeCode(code)
		if code == "" || code == base {
			continue
		}
		rate := value.Round(domain.RateScale)
		if err := ValidateRate(rate); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"currency": code, "rate": value.String()}).Warn("Skipping provider rate")
			continue
		}
		entries = append(entries, domain.RateEntry{From: base, To: code, Date: date, Rate: rate})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].To < entries[j].To })
	return entries, nil
}

// ApplyCorrections refreshes from the provider and then merges the caller's entries
// on top. A failed refresh is logged and does not block the corrections.
func (s *Service) ApplyCorrections(ctx context.Context, entries []domain.RateEntry) (domain.MergeResult, error) {
	if err := s.validator.ValidateEntries(normalizeEntries(entries)); err != nil {
		return domain.MergeResult{}, err
	}
	if res, err := s.RefreshLatest(ctx); err != nil {
		logrus.WithError(err).Warn("Refresh before corrections failed, applying corrections only")
	} else {
		logrus.WithFields(logrus.Fields{"created": res.Created, "updated": res.Updated}).Info("Refresh before corrections finished")
	}
	return s.MergeRates(ctx, entries)
}

func NewService(rates adapters.RateRepository, spreads adapters.SpreadRepository, provider adapters.RateProvider, validator *Validator, settings Settings) *Service {
	settings.BaseCurrency = domain.NormalizeCode(settings.BaseCurrency)
	return &Service{rates: rates, spreads: spreads, provider: provider, validator: validator, settings: settings}
}
