package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID returns the ID assigned to the current RPC, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggingInterceptor logs every RPC with its procedure, result code and
// duration. Each call gets a request ID, taken from the X-Request-Id header
// when the client sends one, which is echoed back and stored in the context.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			requestID := req.Header().Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			ctx = context.WithValue(ctx, requestIDKey{}, requestID)

			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"request_id", requestID,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if err == nil {
				resp.Header().Set(RequestIDHeader, requestID)
				slog.Info("RPC ok", attrs...)
				return resp, nil
			}

			var connectErr *connect.Error
			if errors.As(err, &connectErr) {
				connectErr.Meta().Set(RequestIDHeader, requestID)
				attrs = append(attrs, "code", connectErr.Code(), "error", connectErr.Message())
			} else {
				attrs = append(attrs, "error", err)
			}
			slog.Log(ctx, errorLevel(err), "RPC error", attrs...)
			return resp, err
		}
	}
}

// errorLevel reports client mistakes at Warn and server faults at Error.
func errorLevel(err error) slog.Level {
	switch connect.CodeOf(err) {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
