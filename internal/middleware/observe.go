package middleware

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// RequestObserver records the outcome of one request.
type RequestObserver interface {
	RequestStarted() func(method, route string, status int)
}

// Metrics returns a Huma middleware that reports each request to observer,
// labelled with the route template rather than the raw path.
func Metrics(observer RequestObserver) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		done := observer.RequestStarted()

		next(ctx)

		done(ctx.Method(), operationPath(ctx), ctx.Status())
	}
}

// AccessLog returns a Huma middleware that logs every request once it completes.
func AccessLog(logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		u := ctx.URL()
		logger.Info("request",
			zap.String("method", ctx.Method()),
			zap.String("path", u.Path),
			zap.String("route", operationPath(ctx)),
			zap.Int("status", ctx.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
