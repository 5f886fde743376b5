package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

const procedure = "/splitwiser.v1.GroupService/GetGroup"

type echoRequest struct {
	Value string `json:"value"`
}

type echoResponse struct {
	Value string `json:"value"`
}

func serve(t *testing.T, unary func(context.Context, *connect.Request[echoRequest]) (*connect.Response[echoResponse], error), interceptors ...connect.Interceptor) *connect.Client[echoRequest, echoResponse] {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, unary,
		connect.WithCodec(apiconnect.Codec{}), connect.WithInterceptors(interceptors...)))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return connect.NewClient[echoRequest, echoResponse](srv.Client(), srv.URL+procedure, connect.WithCodec(apiconnect.Codec{}))
}

func TestMetricsInterceptor(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	var fail atomic.Bool
	client := serve(t, func(context.Context, *connect.Request[echoRequest]) (*connect.Response[echoResponse], error) {
		if fail.Load() {
			return nil, connect.NewError(connect.CodeNotFound, errors.New("group not found"))
		}
		return connect.NewResponse(&echoResponse{}), nil
	}, MetricsInterceptor(m), LoggingInterceptor())

	_, err := client.CallUnary(context.Background(), connect.NewRequest(&echoRequest{}))
	require.NoError(t, err)

	fail.Store(true)
	_, err = client.CallUnary(context.Background(), connect.NewRequest(&echoRequest{}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RPCRequests.WithLabelValues(procedure, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RPCRequests.WithLabelValues(procedure, "not_found")))
}

func TestCORS(t *testing.T) {
	var called bool
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)

	rec = httptest.NewRecorder()
	RequestLogger(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.True(t, called)
}

func TestLoggingInterceptor_RequestID(t *testing.T) {
	var fail atomic.Bool
	client := serve(t, func(ctx context.Context, _ *connect.Request[echoRequest]) (*connect.Response[echoResponse], error) {
		if fail.Load() {
			return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("bad total"))
		}
		return connect.NewResponse(&echoResponse{Value: RequestID(ctx)}), nil
	}, LoggingInterceptor())

	req := connect.NewRequest(&echoRequest{})
	req.Header().Set(RequestIDHeader, "req-1")
	resp, err := client.CallUnary(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "req-1", resp.Msg.Value)
	assert.Equal(t, "req-1", resp.Header().Get(RequestIDHeader))

	resp, err = client.CallUnary(context.Background(), connect.NewRequest(&echoRequest{}))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Msg.Value)
	assert.Equal(t, resp.Msg.Value, resp.Header().Get(RequestIDHeader))

	fail.Store(true)
	req = connect.NewRequest(&echoRequest{})
	req.Header().Set(RequestIDHeader, "req-2")
	_, err = client.CallUnary(context.Background(), req)
	var connectErr *connect.Error
	require.ErrorAs(t, err, &connectErr)
	assert.Equal(t, "req-2", connectErr.Meta().Get(RequestIDHeader))
}

func TestErrorLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, errorLevel(connect.NewError(connect.CodeNotFound, nil)))
	assert.Equal(t, slog.LevelWarn, errorLevel(connect.NewError(connect.CodeFailedPrecondition, nil)))
	assert.Equal(t, slog.LevelError, errorLevel(connect.NewError(connect.CodeInternal, nil)))
	assert.Equal(t, slog.LevelError, errorLevel(errors.New("disk full")))
}
