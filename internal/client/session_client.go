package client

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"

	taskbountyv1 "github.com/kazz187/taskbounty/internal/api/taskbountyv1"
	"github.com/kazz187/taskbounty/internal/api/taskbountyv1/taskbountyv1connect"
)

// SessionClient talks to a running session daemon.
type SessionClient struct {
	client taskbountyv1connect.SessionServiceClient
}

func NewSessionClient(baseURL, apiKey string) *SessionClient {
	return NewSessionClientWithHTTP(http.DefaultClient, baseURL, apiKey)
}

func NewSessionClientWithHTTP(httpClient connect.HTTPClient, baseURL, apiKey string) *SessionClient {
	return &SessionClient{
		client: taskbountyv1connect.NewSessionServiceClient(
			httpClient,
			baseURL,
			connect.WithInterceptors(apiKeyInterceptor(apiKey)),
		),
	}
}

func (c *SessionClient) GetSession(ctx context.Context) (*taskbountyv1.Session, error) {
	resp, err := c.client.GetSession(ctx, connect.NewRequest(&taskbountyv1.GetSessionRequest{}))
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return resp.Msg.Session, nil
}

func (c *SessionClient) Connect(ctx context.Context) (*taskbountyv1.Session, error) {
	resp, err := c.client.Connect(ctx, connect.NewRequest(&taskbountyv1.ConnectRequest{}))
	if err != nil {
		return nil, fmt.Errorf("failed to connect wallet: %w", err)
	}
	return resp.Msg.Session, nil
}

func (c *SessionClient) Disconnect(ctx context.Context) (*taskbountyv1.Session, error) {
	resp, err := c.client.Disconnect(ctx, connect.NewRequest(&taskbountyv1.DisconnectRequest{}))
	if err != nil {
		return nil, fmt.Errorf("failed to disconnect wallet: %w", err)
	}
	return resp.Msg.Session, nil
}

func (c *SessionClient) SelectTab(ctx context.Context, tab string) (*taskbountyv1.Session, error) {
	resp, err := c.client.SelectTab(ctx, connect.NewRequest(&taskbountyv1.SelectTabRequest{Tab: tab}))
	if err != nil {
		return nil, fmt.Errorf("failed to select tab: %w", err)
	}
	return resp.Msg.Session, nil
}

func (c *SessionClient) Refresh(ctx context.Context) (*taskbountyv1.RefreshResponse, error) {
	resp, err := c.client.Refresh(ctx, connect.NewRequest(&taskbountyv1.RefreshRequest{}))
	if err != nil {
		return nil, fmt.Errorf("failed to refresh tasks: %w", err)
	}
	return resp.Msg, nil
}

// ListViews returns every view, plus the tasks of tab when tab is set.
func (c *SessionClient) ListViews(ctx context.Context, tab string) (*taskbountyv1.ListViewsResponse, error) {
	resp, err := c.client.ListViews(ctx, connect.NewRequest(&taskbountyv1.ListViewsRequest{Tab: tab}))
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	return resp.Msg, nil
}

func (c *SessionClient) CreateTask(ctx context.Context, description, bounty string) (*taskbountyv1.Receipt, error) {
	resp, err := c.client.CreateTask(ctx, connect.NewRequest(&taskbountyv1.CreateTaskRequest{
		Description: description,
		Bounty:      bounty,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return resp.Msg.Receipt, nil
}

func (c *SessionClient) RegisterForTask(ctx context.Context, taskID uint64) (*taskbountyv1.Receipt, error) {
	resp, err := c.client.RegisterForTask(ctx, connect.NewRequest(&taskbountyv1.RegisterForTaskRequest{TaskID: taskID}))
	if err != nil {
		return nil, fmt.Errorf("failed to register for task #%d: %w", taskID, err)
	}
	return resp.Msg.Receipt, nil
}

func (c *SessionClient) CompleteTask(ctx context.Context, taskID uint64, participant string) (*taskbountyv1.Receipt, error) {
	resp, err := c.client.CompleteTask(ctx, connect.NewRequest(&taskbountyv1.CompleteTaskRequest{
		TaskID:      taskID,
		Participant: participant,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to complete task #%d: %w", taskID, err)
	}
	return resp.Msg.Receipt, nil
}

func (c *SessionClient) SubscribePush(ctx context.Context, endpoint, p256dh, auth string) (*taskbountyv1.SubscribePushResponse, error) {
	resp, err := c.client.SubscribePush(ctx, connect.NewRequest(&taskbountyv1.SubscribePushRequest{
		Endpoint:  endpoint,
		P256dhKey: p256dh,
		AuthKey:   auth,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe push: %w", err)
	}
	return resp.Msg, nil
}

// WatchEvents streams session events to fn until ctx is done, the stream
// ends or fn returns an error.
func (c *SessionClient) WatchEvents(ctx context.Context, types []string, fn func(*taskbountyv1.Event) error) error {
	stream, err := c.client.WatchEvents(ctx, connect.NewRequest(&taskbountyv1.WatchEventsRequest{Types: types}))
	if err != nil {
		return fmt.Errorf("failed to watch events: %w", err)
	}
	defer stream.Close()

	for stream.Receive() {
		if err := fn(stream.Msg()); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("event stream failed: %w", err)
	}
	return nil
}

type apiKeyInterceptor string

func (k apiKeyInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient && k != "" {
			req.Header().Set("X-API-Key", string(k))
		}
		return next(ctx, req)
	}
}

func (k apiKeyInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return func(ctx context.Context, spec connect.Spec) connect.StreamingClientConn {
		conn := next(ctx, spec)
		if k != "" {
			conn.RequestHeader().Set("X-API-Key", string(k))
		}
		return conn
	}
}

func (k apiKeyInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
