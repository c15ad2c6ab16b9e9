package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"diginotes/metrics"
	"diginotes/utils"
)

// Metrics records a counter and latency sample per request. The route
// pattern is used as the path label so ids do not explode cardinality.
// Errors have not reached the error handler yet when the chain unwinds,
// so the status label is derived from the error itself.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var appErr *utils.AppError
			var fiberErr *fiber.Error
			if errors.As(err, &appErr) {
				status = appErr.Code
			} else if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}

		metrics.RequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.Observe(time.Since(start).Seconds())

		return err
	}
}
