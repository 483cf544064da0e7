package server

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	taskbountyv1 "github.com/kazz187/taskbounty/internal/api/taskbountyv1"
	"github.com/kazz187/taskbounty/internal/api/taskbountyv1/taskbountyv1connect"
	"github.com/kazz187/taskbounty/internal/config"
	"github.com/kazz187/taskbounty/internal/eventbus"
	"github.com/kazz187/taskbounty/internal/pushnotification"
	"github.com/kazz187/taskbounty/internal/session"
	"github.com/kazz187/taskbounty/internal/task"
	"github.com/kazz187/taskbounty/pkg/cerr"
)

var _ taskbountyv1connect.SessionServiceHandler = (*SessionServer)(nil)

type SessionServer struct {
	ctrl     *session.Controller
	eventBus *eventbus.Bus
	subs     *pushnotification.Subscriptions
	vapidEnv *config.VAPIDEnv
}

func NewSessionServer(ctrl *session.Controller, eventBus *eventbus.Bus, subs *pushnotification.Subscriptions, vapidEnv *config.VAPIDEnv) *SessionServer {
	return &SessionServer{
		ctrl:     ctrl,
		eventBus: eventBus,
		subs:     subs,
		vapidEnv: vapidEnv,
	}
}

func (s *SessionServer) PathAndHandler(opts ...connect.HandlerOption) (string, http.Handler) {
	return taskbountyv1connect.NewSessionServiceHandler(s, opts...)
}

func (s *SessionServer) session() *taskbountyv1.Session {
	return toSessionProto(s.ctrl.Snapshot(), s.ctrl.Store())
}

func (s *SessionServer) GetSession(_ context.Context, _ *connect.Request[taskbountyv1.GetSessionRequest]) (*connect.Response[taskbountyv1.GetSessionResponse], error) {
	return connect.NewResponse(&taskbountyv1.GetSessionResponse{Session: s.session()}), nil
}

func (s *SessionServer) Connect(ctx context.Context, _ *connect.Request[taskbountyv1.ConnectRequest]) (*connect.Response[taskbountyv1.ConnectResponse], error) {
	if _, err := s.ctrl.Connect(ctx); err != nil {
		return nil, err
	}
	return connect.NewResponse(&taskbountyv1.ConnectResponse{Session: s.session()}), nil
}

func (s *SessionServer) Disconnect(ctx context.Context, _ *connect.Request[taskbountyv1.DisconnectRequest]) (*connect.Response[taskbountyv1.DisconnectResponse], error) {
	s.ctrl.Disconnect(ctx)
	return connect.NewResponse(&taskbountyv1.DisconnectResponse{Session: s.session()}), nil
}

func (s *SessionServer) SelectTab(ctx context.Context, req *connect.Request[taskbountyv1.SelectTabRequest]) (*connect.Response[taskbountyv1.SelectTabResponse], error) {
	if _, err := s.ctrl.SelectTab(ctx, task.Tab(req.Msg.Tab)); err != nil {
		return nil, err
	}
	return connect.NewResponse(&taskbountyv1.SelectTabResponse{Session: s.session()}), nil
}

func (s *SessionServer) Refresh(ctx context.Context, _ *connect.Request[taskbountyv1.RefreshRequest]) (*connect.Response[taskbountyv1.RefreshResponse], error) {
	snap, err := s.ctrl.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&taskbountyv1.RefreshResponse{
		Generation: snap.Generation,
		FetchedAt:  snap.FetchedAt,
		Tasks:      toTasksProto(snap.Tasks),
	}), nil
}

func (s *SessionServer) ListViews(ctx context.Context, req *connect.Request[taskbountyv1.ListViewsRequest]) (*connect.Response[taskbountyv1.ListViewsResponse], error) {
	views, err := s.ctrl.Views(ctx)
	if err != nil {
		return nil, err
	}
	res := &taskbountyv1.ListViewsResponse{Views: toViewsProto(views)}
	if req.Msg.Tab != "" {
		tab := task.Tab(req.Msg.Tab)
		if !tab.Valid() {
			return nil, cerr.NewError(cerr.InvalidArgument, "unknown tab", session.ErrUnknownTab)
		}
		res.Tab = string(tab)
		res.Tasks = toTasksProto(views.ForTab(tab))
	}
	return connect.NewResponse(res), nil
}

func (s *SessionServer) CreateTask(ctx context.Context, req *connect.Request[taskbountyv1.CreateTaskRequest]) (*connect.Response[taskbountyv1.CreateTaskResponse], error) {
	receipt, err := s.ctrl.CreateTask(ctx, req.Msg.Description, req.Msg.Bounty)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&taskbountyv1.CreateTaskResponse{Receipt: toReceiptProto(receipt)}), nil
}

func (s *SessionServer) RegisterForTask(ctx context.Context, req *connect.Request[taskbountyv1.RegisterForTaskRequest]) (*connect.Response[taskbountyv1.RegisterForTaskResponse], error) {
	receipt, err := s.ctrl.Register(ctx, req.Msg.TaskID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&taskbountyv1.RegisterForTaskResponse{Receipt: toReceiptProto(receipt)}), nil
}

func (s *SessionServer) CompleteTask(ctx context.Context, req *connect.Request[taskbountyv1.CompleteTaskRequest]) (*connect.Response[taskbountyv1.CompleteTaskResponse], error) {
	receipt, err := s.ctrl.Complete(ctx, req.Msg.TaskID, req.Msg.Participant)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&taskbountyv1.CompleteTaskResponse{Receipt: toReceiptProto(receipt)}), nil
}

func (s *SessionServer) SubscribePush(ctx context.Context, req *connect.Request[taskbountyv1.SubscribePushRequest]) (*connect.Response[taskbountyv1.SubscribePushResponse], error) {
	if s.vapidEnv.VAPIDPublicKey == "" {
		return nil, cerr.NewError(cerr.FailedPrecondition, "VAPID keys not configured", nil)
	}
	if req.Msg.Endpoint == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "endpoint is required", nil)
	}
	if req.Msg.P256dhKey == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "p256dh_key is required", nil)
	}
	if req.Msg.AuthKey == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "auth_key is required", nil)
	}
	sub := s.subs.Upsert(ctx, req.Msg.Endpoint, req.Msg.P256dhKey, req.Msg.AuthKey)
	return connect.NewResponse(&taskbountyv1.SubscribePushResponse{
		ID:             sub.ID,
		VAPIDPublicKey: s.vapidEnv.VAPIDPublicKey,
	}), nil
}

func (s *SessionServer) WatchEvents(ctx context.Context, req *connect.Request[taskbountyv1.WatchEventsRequest], stream *connect.ServerStream[taskbountyv1.Event]) error {
	subID, ch := s.eventBus.Subscribe(64)
	defer s.eventBus.Unsubscribe(subID)

	typeFilter := make(map[string]struct{}, len(req.Msg.Types))
	for _, t := range req.Msg.Types {
		typeFilter[t] = struct{}{}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if len(typeFilter) > 0 {
				if _, match := typeFilter[string(event.Type)]; !match {
					continue
				}
			}
			if err := stream.Send(toEventProto(event)); err != nil {
				return err
			}
		}
	}
}
