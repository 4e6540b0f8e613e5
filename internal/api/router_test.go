package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fxexchange/internal/domain"
	"fxexchange/internal/rate/handler"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	corrections []domain.RateEntry
}

func (s *stubService) ResolveQuote(_ context.Context, from string, to string, _ time.Time) (domain.Quote, error) {
	return domain.Quote{From: from, To: to, Exchange: decimal.RequireFromString("1.2345")}, nil
}

func (s *stubService) ApplyCorrections(_ context.Context, entries []domain.RateEntry) (domain.MergeResult, error) {
	s.corrections = entries
	return domain.MergeResult{Created: len(entries)}, nil
}

func TestRouter_Routes(t *testing.T) {
	svc := &stubService{}
	router := NewRouter(handler.NewExchangeHandler(svc))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/exchange?from=USD&to=EUR", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"from":"USD","to":"EUR","exchange":1.2345}`, rr.Body.String())

	rr = httptest.NewRecorder()
	body := `[{"from":"EUR","to":"USD","exchange":1.1,"date":"2024-01-10"}]`
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/exchange", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, svc.corrections, 1)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/exchange", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_LogsRequests(t *testing.T) {
	var buf bytes.Buffer
	prev := logrus.StandardLogger().Out
	logrus.SetOutput(&buf)
	t.Cleanup(func() { logrus.SetOutput(prev) })

	router := NewRouter(handler.NewExchangeHandler(&stubService{}))
	req := httptest.NewRequest(http.MethodGet, "/exchange?from=USD&to=EUR", nil)
	req.Header.Set("X-Request-Id", "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)

	logs := buf.String()
	require.Contains(t, logs, "Request served")
	require.Contains(t, logs, "req-42")
	require.Contains(t, logs, "path=/exchange")
}
