package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/logging"
)

// testEnv is a running server backed by a temp-file SQLite store.
type testEnv struct {
	store     *sqlite.SQLiteStore
	metrics   *metrics.Metrics
	dashboard *DashboardService
	jwt       *auth.JWTManager

	auth     *api.AuthServiceClient
	groups   *api.GroupServiceClient
	expenses *api.ExpenseServiceClient
	dash     *api.DashboardServiceClient
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	return setupTestServerWith(t, nil)
}

// setupTestServerWith lets wrap replace the store the services see. env.store
// stays the underlying SQLite store.
func setupTestServerWith(t *testing.T, wrap func(storage.Store) storage.Store) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		store:   store,
		metrics: metrics.New(prometheus.NewRegistry()),
		jwt:     auth.NewJWTManager("service-test-secret", time.Hour),
	}
	var svcStore storage.Store = store
	if wrap != nil {
		svcStore = wrap(store)
	}
	logger := logging.Discard()
	deps := Deps{
		Store:             svcStore,
		Users:             cache.NewPassthrough(svcStore),
		Metrics:           env.metrics,
		Logger:            logger,
		LookupConcurrency: 4,
	}
	env.dashboard = NewDashboardService(deps)

	authenticator := auth.NewPasswordAuthenticator(svcStore)
	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(env.metrics),
		middleware.RequireAuth(env.jwt, api.AuthServiceRegisterProcedure, api.AuthServiceLoginProcedure),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, env.jwt, deps.Users, logger), interceptors))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(deps), interceptors))
	mux.Handle(api.NewExpenseServiceHandler(NewExpenseService(deps), interceptors))
	mux.Handle(api.NewDashboardServiceHandler(env.dashboard, interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	env.auth = api.NewAuthServiceClient(server.Client(), server.URL)
	env.groups = api.NewGroupServiceClient(server.Client(), server.URL)
	env.expenses = api.NewExpenseServiceClient(server.Client(), server.URL)
	env.dash = api.NewDashboardServiceClient(server.Client(), server.URL)
	return env
}

// testUser is a user inserted straight into the store, with a session token.
type testUser struct {
	ID    string
	Token string
}

func (e *testEnv) addUser(t *testing.T, name string) testUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.NewUser(strings.ToLower(name)+"@example.com", name, string(hash))
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	token, err := e.jwt.Generate(u)
	require.NoError(t, err)
	return testUser{ID: u.ID, Token: token}
}

// as builds a request authenticated as u.
func as[T any](u testUser, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+u.Token)
	return req
}

func (e *testEnv) createGroup(t *testing.T, owner testUser, others ...testUser) string {
	t.Helper()
	ids := make([]string, len(others))
	for i, o := range others {
		ids[i] = o.ID
	}
	resp, err := e.groups.CreateGroup(context.Background(), as(owner, &api.CreateGroupRequest{
		Name:      "Trip",
		MemberIDs: ids,
	}))
	require.NoError(t, err)
	return resp.Msg.Group.ID
}

func (e *testEnv) addExpense(t *testing.T, by testUser, req *api.CreateExpenseRequest) api.Expense {
	t.Helper()
	resp, err := e.expenses.CreateExpense(context.Background(), as(by, req))
	require.NoError(t, err)
	return *resp.Msg.Expense
}

func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, connect.CodeOf(err), "error: %v", err)
}
