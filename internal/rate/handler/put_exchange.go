package handler

import (
	"encoding/json"
	"errors"
	"fxexchange/internal/domain"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ExchangeEntryRequest struct {
	From     string      `json:"from" validate:"notblank" example:"EUR"`
	To       string      `json:"to" validate:"notblank" example:"USD"`
	Exchange json.Number `json:"exchange" validate:"required" swaggertype:"number" example:"1.0912"`
	Date     string      `json:"date" validate:"notblank" example:"2024-01-10"`
}

// PutExchange godoc
// @Summary Correct exchange rates
// @Description Refresh rates from the provider, then apply the supplied corrections
// @Tags Exchange
// @Accept json
// @Param entries body []ExchangeEntryRequest true "Rate corrections"
// @Success 200 "corrections applied"
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /exchange [put]
func (h *Handler) PutExchange(w http.ResponseWriter, r *http.Request) {
	var body []ExchangeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			writeError(w, http.StatusBadRequest, msgCannotConvert+typeErr.Field)
			return
		}
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if body == nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	entries := make([]domain.RateEntry, 0, len(body))
	for _, item := range body {
		if err := h.validate.Struct(item); err != nil {
			logrus.WithError(err).WithField("handler", "PutExchange").Warn("Invalid correction entry")
			writeError(w, http.StatusBadRequest, msgWrongBody)
			return
		}
		rate, err := decimal.NewFromString(item.Exchange.String())
		if err != nil {
			writeError(w, http.StatusBadRequest, msgCannotConvert+"exchange")
			return
		}
		date, err := time.Parse(domain.DateLayout, item.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgCannotConvert+"date")
			return
		}
		entries = append(entries, domain.RateEntry{From: item.From, To: item.To, Date: date, Rate: rate})
	}

	res, err := h.service.ApplyCorrections(r.Context(), entries)
	if err != nil {
		writeServiceError(w, err, logrus.Fields{"handler": "PutExchange", "entries": len(entries)})
		return
	}

	logrus.WithFields(logrus.Fields{"created": res.Created, "updated": res.Updated}).Info("Rate corrections applied")
	w.WriteHeader(http.StatusOK)
}
