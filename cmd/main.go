package main

import (
	"fxexchange/internal/app"

	"github.com/sirupsen/logrus"
)

// @title FX Exchange API
// @version 1.0
// @description Currency exchange rates with spread, refreshed daily from the upstream provider.
// @BasePath /
func main() {
	if err := app.Run(); err != nil {
		logrus.WithError(err).Fatal("Application stopped with error")
	}
}
