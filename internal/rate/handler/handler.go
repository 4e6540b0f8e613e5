package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fxexchange/internal/domain"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const (
	msgBadRequest    = "Bad Request"
	msgWrongBody     = "Wrong object in the request body"
	msgInternalError = "Internal Server Error"
	msgCannotConvert = "Cannot convert field "
)

type Service interface {
	ResolveQuote(ctx context.Context, from string, to string, date time.Time) (domain.Quote, error)
	ApplyCorrections(ctx context.Context, entries []domain.RateEntry) (domain.MergeResult, error)
}

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewExchangeHandler(service Service) *Handler {
	return &Handler{service: service, validate: newValidate()}
}

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return !f.IsZero()
		}
		return strings.TrimSpace(f.String()) != ""
	})
	return v
}

type errorResponse struct {
	Status    string `json:"status" example:"BAD_REQUEST"`
	Message   string `json:"message" example:"cannot exchange the same currencies"`
	Timestamp string `json:"timestamp" example:"2024-01-10T12:05:00Z"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Status:    statusName(statusCode),
		Message:   errorMsg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// statusName turns "Bad Request" into "BAD_REQUEST".
func statusName(statusCode int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(statusCode), " ", "_"))
}

// writeServiceError maps domain errors onto response codes. Anything not
// classified is logged and hidden behind a generic message.
func writeServiceError(w http.ResponseWriter, err error, fields logrus.Fields) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		logrus.WithError(err).WithFields(fields).Warn("Request rejected")
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateNotFound):
		logrus.WithError(err).WithFields(fields).Warn("Rate not found")
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logrus.WithError(err).WithFields(fields).Error("Request failed")
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}
