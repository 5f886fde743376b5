package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

type testEnv struct {
	groups   apiconnect.GroupServiceClient
	splits   apiconnect.SplitServiceClient
	recorder *events.Recorder
	metrics  *metrics.Metrics
	splitSvc *SplitService
}

// setupTestServer creates a test server with both SplitService and GroupService
// backed by a temp SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		recorder: &events.Recorder{},
		metrics:  metrics.New(prometheus.NewRegistry()),
	}
	deps := Deps{
		Store:              store,
		Publisher:          env.recorder,
		Metrics:            env.metrics,
		DefaultCurrency:    "USD",
		SessionIdleTimeout: time.Hour,
	}
	env.splitSvc = NewSplitService(deps)

	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor())
	splitPath, splitHandler := apiconnect.NewSplitServiceHandler(env.splitSvc, interceptors)
	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(NewGroupService(deps), interceptors)

	mux := http.NewServeMux()
	mux.Handle(splitPath, splitHandler)
	mux.Handle(groupPath, groupHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	env.groups = apiconnect.NewGroupServiceClient(server.Client(), server.URL)
	env.splits = apiconnect.NewSplitServiceClient(server.Client(), server.URL)
	return env
}

func (e *testEnv) createGroup(t *testing.T, members ...string) *api.Group {
	t.Helper()
	resp, err := e.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    "Roommates",
		Members: members,
	}))
	require.NoError(t, err)
	return resp.Msg.Group
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func assertCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, connect.CodeOf(err), err.Error())
}
