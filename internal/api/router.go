package api

import (
	_ "fxexchange/docs"
	"fxexchange/internal/rate/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	swagger "github.com/swaggo/http-swagger"
)

func NewRouter(exchangeHandler *handler.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))
	router.Use(middleware.RequestID)
	router.Use(requestLogger)

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)

	router.Get("/exchange", exchangeHandler.GetExchange)
	router.Put("/exchange", exchangeHandler.PutExchange)
	return router
}
