package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

// InitMetrics registers Prometheus HTTP metrics on the app and exposes them at /metrics.
func InitMetrics(app *fiber.App, serviceName string) {
	prom := fiberprometheus.New(serviceName)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)
}
