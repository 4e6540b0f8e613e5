package handler

import (
	"encoding/json"
	"fxexchange/internal/domain"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type GetExchangeResponse struct {
	From     string      `json:"from" example:"USD"`
	To       string      `json:"to" example:"EUR"`
	Exchange json.Number `json:"exchange" swaggertype:"number" example:"0.8955"`
}

// GetExchange godoc
// @Summary Get exchange rate
// @Description Compute the exchange rate between two currencies for a date, spread applied
// @Tags Exchange
// @Produce json
// @Param from query string true "Currency to exchange from"
// @Param to query string true "Currency to exchange to"
// @Param date query string false "Exchange date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} GetExchangeResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /exchange [get]
func (h *Handler) GetExchange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from := domain.NormalizeCode(query.Get("from"))
	to := domain.NormalizeCode(query.Get("to"))
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	var date time.Time
	if raw := query.Get("date"); raw != "" {
		parsed, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgCannotConvert+"date")
			return
		}
		date = parsed
	}

	quote, err := h.service.ResolveQuote(r.Context(), from, to, date)
	if err != nil {
		writeServiceError(w, err, logrus.Fields{"handler": "GetExchange", "from": from, "to": to, "date": query.Get("date")})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(GetExchangeResponse{
		From:     quote.From,
		To:       quote.To,
		Exchange: json.Number(quote.Exchange.String()),
	})
}
