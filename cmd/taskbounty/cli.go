package main

import (
	"context"
	"fmt"

	taskbountyv1 "github.com/kazz187/taskbounty/internal/api/taskbountyv1"
)

// sessionAPI is the slice of client.SessionClient the commands use.
type sessionAPI interface {
	GetSession(ctx context.Context) (*taskbountyv1.Session, error)
	Connect(ctx context.Context) (*taskbountyv1.Session, error)
	Disconnect(ctx context.Context) (*taskbountyv1.Session, error)
	SelectTab(ctx context.Context, tab string) (*taskbountyv1.Session, error)
	Refresh(ctx context.Context) (*taskbountyv1.RefreshResponse, error)
	ListViews(ctx context.Context, tab string) (*taskbountyv1.ListViewsResponse, error)
	CreateTask(ctx context.Context, description, bounty string) (*taskbountyv1.Receipt, error)
	RegisterForTask(ctx context.Context, taskID uint64) (*taskbountyv1.Receipt, error)
	CompleteTask(ctx context.Context, taskID uint64, participant string) (*taskbountyv1.Receipt, error)
	WatchEvents(ctx context.Context, types []string, fn func(*taskbountyv1.Event) error) error
}

type CLI struct {
	client sessionAPI
	out    *printer
}

func (c *CLI) dispatch(ctx context.Context, command string) error {
	switch command {
	case sessionCmd.FullCommand():
		return c.showSession(ctx)
	case connectCmd.FullCommand():
		return c.sessionResult(c.client.Connect(ctx))
	case disconnectCmd.FullCommand():
		return c.sessionResult(c.client.Disconnect(ctx))
	case tabCmd.FullCommand():
		return c.sessionResult(c.client.SelectTab(ctx, *tabName))
	case refreshCmd.FullCommand():
		return c.refresh(ctx, *refreshDiff)
	case viewsCmd.FullCommand():
		return c.views(ctx, *viewsTab)
	case createCmd.FullCommand():
		return c.receiptResult(c.client.CreateTask(ctx, *createDescription, *createBounty))
	case registerCmd.FullCommand():
		return c.receiptResult(c.client.RegisterForTask(ctx, *registerID))
	case completeCmd.FullCommand():
		return c.receiptResult(c.client.CompleteTask(ctx, *completeID, *completeParticipant))
	case watchCmd.FullCommand():
		return c.watch(ctx, *watchTypes)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (c *CLI) showSession(ctx context.Context) error {
	return c.sessionResult(c.client.GetSession(ctx))
}

func (c *CLI) sessionResult(s *taskbountyv1.Session, err error) error {
	if err != nil {
		return err
	}
	return c.out.Session(s)
}

func (c *CLI) receiptResult(r *taskbountyv1.Receipt, err error) error {
	if err != nil {
		return err
	}
	return c.out.Receipt(r)
}

func (c *CLI) refresh(ctx context.Context, diff bool) error {
	if !diff {
		res, err := c.client.Refresh(ctx)
		if err != nil {
			return err
		}
		return c.out.Tasks("Tasks", res.Tasks)
	}

	before, err := c.client.ListViews(ctx, "")
	if err != nil {
		return err
	}
	if _, err := c.client.Refresh(ctx); err != nil {
		return err
	}
	after, err := c.client.ListViews(ctx, "")
	if err != nil {
		return err
	}
	return c.out.Diff(before.Views, after.Views)
}

func (c *CLI) views(ctx context.Context, tab string) error {
	res, err := c.client.ListViews(ctx, tab)
	if err != nil {
		return err
	}
	if tab != "" {
		return c.out.Tasks(tab, res.Tasks)
	}
	return c.out.Views(res.Views)
}

func (c *CLI) watch(ctx context.Context, types []string) error {
	return c.client.WatchEvents(ctx, types, c.out.Event)
}
