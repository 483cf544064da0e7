package server

import (
	"net/http"

	"github.com/kazz187/taskbounty/internal/session"
	"github.com/kazz187/taskbounty/internal/task"
	"github.com/kazz187/taskbounty/pkg/cerr"
	"github.com/kazz187/taskbounty/pkg/clog"
)

func (s *Server) getSession(_ http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), s.sessionServer.session())
}

// getViews serves the partitioned views. ?tab= narrows the result to the
// tasks one tab displays.
func (s *Server) getViews(_ http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := s.sessionServer.ctrl.Views(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	clog.AddWallet(ctx, views.Wallet)

	tab := task.Tab(r.URL.Query().Get("tab"))
	if tab == task.TabNone {
		cerr.SetJSONResponse(ctx, toViewsProto(views))
		return
	}
	if !tab.Valid() {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "unknown tab", session.ErrUnknownTab)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]any{
		"tab":   tab,
		"tasks": toTasksProto(views.ForTab(tab)),
	})
}
