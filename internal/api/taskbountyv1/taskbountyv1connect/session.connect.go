// Package taskbountyv1connect wires the taskbounty.v1 session service onto
// Connect handlers and clients.
package taskbountyv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	taskbountyv1 "github.com/kazz187/taskbounty/internal/api/taskbountyv1"
)

const SessionServiceName = "taskbounty.v1.SessionService"

const (
	SessionServiceGetSessionProcedure      = "/taskbounty.v1.SessionService/GetSession"
	SessionServiceConnectProcedure         = "/taskbounty.v1.SessionService/Connect"
	SessionServiceDisconnectProcedure      = "/taskbounty.v1.SessionService/Disconnect"
	SessionServiceSelectTabProcedure       = "/taskbounty.v1.SessionService/SelectTab"
	SessionServiceRefreshProcedure         = "/taskbounty.v1.SessionService/Refresh"
	SessionServiceListViewsProcedure       = "/taskbounty.v1.SessionService/ListViews"
	SessionServiceCreateTaskProcedure      = "/taskbounty.v1.SessionService/CreateTask"
	SessionServiceRegisterForTaskProcedure = "/taskbounty.v1.SessionService/RegisterForTask"
	SessionServiceCompleteTaskProcedure    = "/taskbounty.v1.SessionService/CompleteTask"
	SessionServiceSubscribePushProcedure   = "/taskbounty.v1.SessionService/SubscribePush"
	SessionServiceWatchEventsProcedure     = "/taskbounty.v1.SessionService/WatchEvents"
)

type SessionServiceHandler interface {
	GetSession(context.Context, *connect.Request[taskbountyv1.GetSessionRequest]) (*connect.Response[taskbountyv1.GetSessionResponse], error)
	Connect(context.Context, *connect.Request[taskbountyv1.ConnectRequest]) (*connect.Response[taskbountyv1.ConnectResponse], error)
	Disconnect(context.Context, *connect.Request[taskbountyv1.DisconnectRequest]) (*connect.Response[taskbountyv1.DisconnectResponse], error)
	SelectTab(context.Context, *connect.Request[taskbountyv1.SelectTabRequest]) (*connect.Response[taskbountyv1.SelectTabResponse], error)
	Refresh(context.Context, *connect.Request[taskbountyv1.RefreshRequest]) (*connect.Response[taskbountyv1.RefreshResponse], error)
	ListViews(context.Context, *connect.Request[taskbountyv1.ListViewsRequest]) (*connect.Response[taskbountyv1.ListViewsResponse], error)
	CreateTask(context.Context, *connect.Request[taskbountyv1.CreateTaskRequest]) (*connect.Response[taskbountyv1.CreateTaskResponse], error)
	RegisterForTask(context.Context, *connect.Request[taskbountyv1.RegisterForTaskRequest]) (*connect.Response[taskbountyv1.RegisterForTaskResponse], error)
	CompleteTask(context.Context, *connect.Request[taskbountyv1.CompleteTaskRequest]) (*connect.Response[taskbountyv1.CompleteTaskResponse], error)
	SubscribePush(context.Context, *connect.Request[taskbountyv1.SubscribePushRequest]) (*connect.Response[taskbountyv1.SubscribePushResponse], error)
	WatchEvents(context.Context, *connect.Request[taskbountyv1.WatchEventsRequest], *connect.ServerStream[taskbountyv1.Event]) error
}

func withCodec[T any](opts []T, codec T) []T {
	return append(append([]T(nil), opts...), codec)
}

// NewSessionServiceHandler builds an HTTP handler for every session
// procedure. It returns the path to mount the handler on.
func NewSessionServiceHandler(svc SessionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	hopts := connect.WithHandlerOptions(withCodec(opts, connect.HandlerOption(connect.WithCodec(taskbountyv1.JSONCodec{})))...)

	handlers := map[string]http.Handler{
		SessionServiceGetSessionProcedure:      connect.NewUnaryHandler(SessionServiceGetSessionProcedure, svc.GetSession, hopts),
		SessionServiceConnectProcedure:         connect.NewUnaryHandler(SessionServiceConnectProcedure, svc.Connect, hopts),
		SessionServiceDisconnectProcedure:      connect.NewUnaryHandler(SessionServiceDisconnectProcedure, svc.Disconnect, hopts),
		SessionServiceSelectTabProcedure:       connect.NewUnaryHandler(SessionServiceSelectTabProcedure, svc.SelectTab, hopts),
		SessionServiceRefreshProcedure:         connect.NewUnaryHandler(SessionServiceRefreshProcedure, svc.Refresh, hopts),
		SessionServiceListViewsProcedure:       connect.NewUnaryHandler(SessionServiceListViewsProcedure, svc.ListViews, hopts),
		SessionServiceCreateTaskProcedure:      connect.NewUnaryHandler(SessionServiceCreateTaskProcedure, svc.CreateTask, hopts),
		SessionServiceRegisterForTaskProcedure: connect.NewUnaryHandler(SessionServiceRegisterForTaskProcedure, svc.RegisterForTask, hopts),
		SessionServiceCompleteTaskProcedure:    connect.NewUnaryHandler(SessionServiceCompleteTaskProcedure, svc.CompleteTask, hopts),
		SessionServiceSubscribePushProcedure:   connect.NewUnaryHandler(SessionServiceSubscribePushProcedure, svc.SubscribePush, hopts),
		SessionServiceWatchEventsProcedure:     connect.NewServerStreamHandler(SessionServiceWatchEventsProcedure, svc.WatchEvents, hopts),
	}
	return "/" + SessionServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

type SessionServiceClient interface {
	GetSession(context.Context, *connect.Request[taskbountyv1.GetSessionRequest]) (*connect.Response[taskbountyv1.GetSessionResponse], error)
	Connect(context.Context, *connect.Request[taskbountyv1.ConnectRequest]) (*connect.Response[taskbountyv1.ConnectResponse], error)
	Disconnect(context.Context, *connect.Request[taskbountyv1.DisconnectRequest]) (*connect.Response[taskbountyv1.DisconnectResponse], error)
	SelectTab(context.Context, *connect.Request[taskbountyv1.SelectTabRequest]) (*connect.Response[taskbountyv1.SelectTabResponse], error)
	Refresh(context.Context, *connect.Request[taskbountyv1.RefreshRequest]) (*connect.Response[taskbountyv1.RefreshResponse], error)
	ListViews(context.Context, *connect.Request[taskbountyv1.ListViewsRequest]) (*connect.Response[taskbountyv1.ListViewsResponse], error)
	CreateTask(context.Context, *connect.Request[taskbountyv1.CreateTaskRequest]) (*connect.Response[taskbountyv1.CreateTaskResponse], error)
	RegisterForTask(context.Context, *connect.Request[taskbountyv1.RegisterForTaskRequest]) (*connect.Response[taskbountyv1.RegisterForTaskResponse], error)
	CompleteTask(context.Context, *connect.Request[taskbountyv1.CompleteTaskRequest]) (*connect.Response[taskbountyv1.CompleteTaskResponse], error)
	SubscribePush(context.Context, *connect.Request[taskbountyv1.SubscribePushRequest]) (*connect.Response[taskbountyv1.SubscribePushResponse], error)
	WatchEvents(context.Context, *connect.Request[taskbountyv1.WatchEventsRequest]) (*connect.ServerStreamForClient[taskbountyv1.Event], error)
}

type sessionServiceClient struct {
	getSession      *connect.Client[taskbountyv1.GetSessionRequest, taskbountyv1.GetSessionResponse]
	connectWallet   *connect.Client[taskbountyv1.ConnectRequest, taskbountyv1.ConnectResponse]
	disconnect      *connect.Client[taskbountyv1.DisconnectRequest, taskbountyv1.DisconnectResponse]
	selectTab       *connect.Client[taskbountyv1.SelectTabRequest, taskbountyv1.SelectTabResponse]
	refresh         *connect.Client[taskbountyv1.RefreshRequest, taskbountyv1.RefreshResponse]
	listViews       *connect.Client[taskbountyv1.ListViewsRequest, taskbountyv1.ListViewsResponse]
	createTask      *connect.Client[taskbountyv1.CreateTaskRequest, taskbountyv1.CreateTaskResponse]
	registerForTask *connect.Client[taskbountyv1.RegisterForTaskRequest, taskbountyv1.RegisterForTaskResponse]
	completeTask    *connect.Client[taskbountyv1.CompleteTaskRequest, taskbountyv1.CompleteTaskResponse]
	subscribePush   *connect.Client[taskbountyv1.SubscribePushRequest, taskbountyv1.SubscribePushResponse]
	watchEvents     *connect.Client[taskbountyv1.WatchEventsRequest, taskbountyv1.Event]
}

func NewSessionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SessionServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	copts := withCodec(opts, connect.ClientOption(connect.WithCodec(taskbountyv1.JSONCodec{})))
	return &sessionServiceClient{
		getSession:      connect.NewClient[taskbountyv1.GetSessionRequest, taskbountyv1.GetSessionResponse](httpClient, baseURL+SessionServiceGetSessionProcedure, copts...),
		connectWallet:   connect.NewClient[taskbountyv1.ConnectRequest, taskbountyv1.ConnectResponse](httpClient, baseURL+SessionServiceConnectProcedure, copts...),
		disconnect:      connect.NewClient[taskbountyv1.DisconnectRequest, taskbountyv1.DisconnectResponse](httpClient, baseURL+SessionServiceDisconnectProcedure, copts...),
		selectTab:       connect.NewClient[taskbountyv1.SelectTabRequest, taskbountyv1.SelectTabResponse](httpClient, baseURL+SessionServiceSelectTabProcedure, copts...),
		refresh:         connect.NewClient[taskbountyv1.RefreshRequest, taskbountyv1.RefreshResponse](httpClient, baseURL+SessionServiceRefreshProcedure, copts...),
		listViews:       connect.NewClient[taskbountyv1.ListViewsRequest, taskbountyv1.ListViewsResponse](httpClient, baseURL+SessionServiceListViewsProcedure, copts...),
		createTask:      connect.NewClient[taskbountyv1.CreateTaskRequest, taskbountyv1.CreateTaskResponse](httpClient, baseURL+SessionServiceCreateTaskProcedure, copts...),
		registerForTask: connect.NewClient[taskbountyv1.RegisterForTaskRequest, taskbountyv1.RegisterForTaskResponse](httpClient, baseURL+SessionServiceRegisterForTaskProcedure, copts...),
		completeTask:    connect.NewClient[taskbountyv1.CompleteTaskRequest, taskbountyv1.CompleteTaskResponse](httpClient, baseURL+SessionServiceCompleteTaskProcedure, copts...),
		subscribePush:   connect.NewClient[taskbountyv1.SubscribePushRequest, taskbountyv1.SubscribePushResponse](httpClient, baseURL+SessionServiceSubscribePushProcedure, copts...),
		watchEvents:     connect.NewClient[taskbountyv1.WatchEventsRequest, taskbountyv1.Event](httpClient, baseURL+SessionServiceWatchEventsProcedure, copts...),
	}
}

func (c *sessionServiceClient) GetSession(ctx context.Context, req *connect.Request[taskbountyv1.GetSessionRequest]) (*connect.Response[taskbountyv1.GetSessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *sessionServiceClient) Connect(ctx context.Context, req *connect.Request[taskbountyv1.ConnectRequest]) (*connect.Response[taskbountyv1.ConnectResponse], error) {
	return c.connectWallet.CallUnary(ctx, req)
}

func (c *sessionServiceClient) Disconnect(ctx context.Context, req *connect.Request[taskbountyv1.DisconnectRequest]) (*connect.Response[taskbountyv1.DisconnectResponse], error) {
	return c.disconnect.CallUnary(ctx, req)
}

func (c *sessionServiceClient) SelectTab(ctx context.Context, req *connect.Request[taskbountyv1.SelectTabRequest]) (*connect.Response[taskbountyv1.SelectTabResponse], error) {
	return c.selectTab.CallUnary(ctx, req)
}

func (c *sessionServiceClient) Refresh(ctx context.Context, req *connect.Request[taskbountyv1.RefreshRequest]) (*connect.Response[taskbountyv1.RefreshResponse], error) {
	return c.refresh.CallUnary(ctx, req)
}

func (c *sessionServiceClient) ListViews(ctx context.Context, req *connect.Request[taskbountyv1.ListViewsRequest]) (*connect.Response[taskbountyv1.ListViewsResponse], error) {
	return c.listViews.CallUnary(ctx, req)
}

func (c *sessionServiceClient) CreateTask(ctx context.Context, req *connect.Request[taskbountyv1.CreateTaskRequest]) (*connect.Response[taskbountyv1.CreateTaskResponse], error) {
	return c.createTask.CallUnary(ctx, req)
}

func (c *sessionServiceClient) RegisterForTask(ctx context.Context, req *connect.Request[taskbountyv1.RegisterForTaskRequest]) (*connect.Response[taskbountyv1.RegisterForTaskResponse], error) {
	return c.registerForTask.CallUnary(ctx, req)
}

func (c *sessionServiceClient) CompleteTask(ctx context.Context, req *connect.Request[taskbountyv1.CompleteTaskRequest]) (*connect.Response[taskbountyv1.CompleteTaskResponse], error) {
	return c.completeTask.CallUnary(ctx, req)
}

func (c *sessionServiceClient) SubscribePush(ctx context.Context, req *connect.Request[taskbountyv1.SubscribePushRequest]) (*connect.Response[taskbountyv1.SubscribePushResponse], error) {
	return c.subscribePush.CallUnary(ctx, req)
}

func (c *sessionServiceClient) WatchEvents(ctx context.Context, req *connect.Request[taskbountyv1.WatchEventsRequest]) (*connect.ServerStreamForClient[taskbountyv1.Event], error) {
	return c.watchEvents.CallServerStream(ctx, req)
}
