package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taskbountyv1 "github.com/kazz187/taskbounty/internal/api/taskbountyv1"
	"github.com/kazz187/taskbounty/internal/client"
	"github.com/kazz187/taskbounty/internal/config"
	"github.com/kazz187/taskbounty/internal/eventbus"
	"github.com/kazz187/taskbounty/internal/pushnotification"
	"github.com/kazz187/taskbounty/internal/registry/memory"
	"github.com/kazz187/taskbounty/internal/session"
	"github.com/kazz187/taskbounty/internal/task"
	"github.com/kazz187/taskbounty/internal/wallet"
	"github.com/kazz187/taskbounty/pkg/cerr"
)

const testAPIKey = "test-key"

type testEnv struct {
	srv    *httptest.Server
	client *client.SessionClient
	wallet *wallet.Static
}

func newTestEnv(t *testing.T, accounts ...string) *testEnv {
	t.Helper()
	w := wallet.NewStatic("296", accounts...)
	reg := memory.New(w.Account)
	require.NoError(t, reg.Seed(&memory.Fixture{Tasks: []memory.FixtureTask{
		{Description: "T1", Reward: "500000000", Creator: "0xAAA"},
		{Description: "T2", Reward: "100000000", Creator: "0xBBB", Participants: []string{"0xCCC"}},
	}}))
	bus := eventbus.New()
	ctrl := session.NewController(w, reg, bus)
	vapid := &config.VAPIDEnv{VAPIDPublicKey: "pub"}
	sessionServer := NewSessionServer(ctrl, bus, pushnotification.NewSubscriptions(), vapid)
	s := NewServer(&config.BaseEnv{APIKey: testAPIKey}, sessionServer)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{
		srv:    srv,
		client: client.NewSessionClientWithHTTP(srv.Client(), srv.URL, testAPIKey),
		wallet: w,
	}
}

func TestServer_RoundTrip(t *testing.T) {
	env := newTestEnv(t, "0xCCC")
	ctx := context.Background()

	s, err := env.client.GetSession(ctx)
	require.NoError(t, err)
	assert.False(t, s.Connected)

	s, err = env.client.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0xCCC", s.Address)
	assert.Equal(t, 2, s.TaskCount)

	s, err = env.client.SelectTab(ctx, string(task.TabOpenBounties))
	require.NoError(t, err)
	assert.Equal(t, "open_bounties", s.Tab)

	views, err := env.client.ListViews(ctx, string(task.TabOpenBounties))
	require.NoError(t, err)
	require.Len(t, views.Tasks, 2)
	assert.Equal(t, 5.0, views.Tasks[0].Reward)

	receipt, err := env.client.RegisterForTask(ctx, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.TxHash)

	refreshed, err := env.client.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0xCCC"}, refreshed.Tasks[0].Participants)
}

func TestServer_RejectionCarriesReason(t *testing.T) {
	env := newTestEnv(t, "0xCCC")
	ctx := context.Background()
	_, err := env.client.Connect(ctx)
	require.NoError(t, err)

	_, err = env.client.RegisterForTask(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
	assert.Equal(t, string(task.ReasonAlreadyRegistered), cerr.ReasonOf(err))

	_, err = env.client.CreateTask(ctx, "", "1")
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	assert.Equal(t, string(task.ReasonInvalidTaskInput), cerr.ReasonOf(err))
}

func TestServer_NotConnected(t *testing.T) {
	env := newTestEnv(t, "0xCCC")
	_, err := env.client.ListViews(context.Background(), "")
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	env = newTestEnv(t)
	_, err = env.client.Connect(context.Background())
	assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
}

func TestServer_APIKey(t *testing.T) {
	env := newTestEnv(t, "0xCCC")

	bad := client.NewSessionClientWithHTTP(env.srv.Client(), env.srv.URL, "wrong")
	_, err := bad.GetSession(context.Background())
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	resp, err := env.srv.Client().Get(env.srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ChiViews(t *testing.T) {
	env := newTestEnv(t, "0xAAA")
	_, err := env.client.Connect(context.Background())
	require.NoError(t, err)

	get := func(path string) (*http.Response, map[string]any) {
		req, err := http.NewRequest(http.MethodGet, env.srv.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+testAPIKey)
		resp, err := env.srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return resp, body
	}

	resp, body := get("/api/views")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0xAAA", body["wallet"])
	assert.Len(t, body["in_progress"], 1)
	assert.Len(t, body["open_bounties"], 1)

	resp, body = get("/api/views?tab=complete_task")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["tasks"], 1)

	resp, body = get("/api/views?tab=bogus")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "InvalidArgument", body["code"])

	resp, body = get("/api/session")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["connected"])

	resp, _ = get("/api/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_SubscribePush(t *testing.T) {
	env := newTestEnv(t, "0xAAA")
	ctx := context.Background()

	_, err := env.client.SubscribePush(ctx, "", "k", "a")
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	res, err := env.client.SubscribePush(ctx, "https://push.example/1", "k", "a")
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "pub", res.VAPIDPublicKey)
}

func TestServer_WatchEvents(t *testing.T) {
	env := newTestEnv(t, "0xAAA")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan *taskbountyv1.Event, 1)
	errDone := errors.New("done")
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- env.client.WatchEvents(ctx, []string{string(eventbus.EventSessionConnected)}, func(ev *taskbountyv1.Event) error {
			got <- ev
			return errDone
		})
	}()

	require.Eventually(t, func() bool {
		_, _ = env.client.Connect(ctx)
		select {
		case ev := <-got:
			assert.Equal(t, "0xAAA", ev.ResourceID)
			return true
		default:
			return false
		}
	}, 4*time.Second, 50*time.Millisecond)
	assert.ErrorIs(t, <-watchErr, errDone)
}
