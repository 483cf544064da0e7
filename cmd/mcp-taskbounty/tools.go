package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	taskbountyv1 "github.com/kazz187/taskbounty/internal/api/taskbountyv1"
	"github.com/kazz187/taskbounty/pkg/cerr"
)

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
}

type EmptyInput struct{}

type SelectTabInput struct {
	Tab string `json:"tab" jsonschema:"tab to select: open_bounties, create_task or complete_task"`
}

type ListViewsInput struct {
	Tab string `json:"tab,omitempty" jsonschema:"only return the tasks this tab displays; omit for every view"`
}

type CreateTaskInput struct {
	Description string `json:"description" jsonschema:"what the task asks for"`
	Bounty      string `json:"bounty" jsonschema:"bounty as a plain decimal amount, e.g. 2.5"`
}

type RegisterInput struct {
	TaskID uint64 `json:"task_id" jsonschema:"id of the task to register for"`
}

type CompleteTaskInput struct {
	TaskID      uint64 `json:"task_id" jsonschema:"id of the task to complete"`
	Participant string `json:"participant" jsonschema:"registered participant address that receives the bounty"`
}

type Tools struct {
	client sessionAPI
}

func NewTools(client sessionAPI) *Tools {
	return &Tools{client: client}
}

func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "taskbounty_get_session",
		Title:       "TaskBounty: Get Session",
		Description: "Show the connected wallet address, the selected tab and how many tasks are loaded.",
	}, t.GetSession)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "taskbounty_connect",
		Title:       "TaskBounty: Connect Wallet",
		Description: "Connect the wallet and fetch all tasks from the registry.",
	}, t.Connect)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "taskbounty_disconnect",
		Title:       "TaskBounty: Disconnect Wallet",
		Description: "Disconnect the wallet and clear loaded tasks.",
	}, t.Disconnect)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "taskbounty_select_tab",
		Title:       "TaskBounty: Select Tab",
		Description: "Select the active tab of the session.",
	}, t.SelectTab)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "taskbounty_refresh",
		Title:       "TaskBounty: Refresh Tasks",
		Description: "Fetch all tasks from the registry again.",
	}, t.Refresh)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "taskbounty_list_views",
		Title:       "TaskBounty: List Views",
		Description: "List tasks partitioned for the connected wallet into open bounties, in-progress and completed tasks.",
	}, t.ListViews)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "taskbounty_create_task",
		Title:       "TaskBounty: Create Task",
		Description: "Create a task funded with a bounty. Waits for the transaction to confirm.",
	}, t.CreateTask)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "taskbounty_register",
		Title:       "TaskBounty: Register For Task",
		Description: "Register the connected wallet as a participant of someone else's open task.",
	}, t.RegisterForTask)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "taskbounty_complete_task",
		Title:       "TaskBounty: Complete Task",
		Description: "Mark one of your tasks complete and pay its bounty to a registered participant.",
	}, t.CompleteTask)
}

func (t *Tools) GetSession(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, any, error) {
	return result(t.client.GetSession(ctx))
}

func (t *Tools) Connect(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, any, error) {
	return result(t.client.Connect(ctx))
}

func (t *Tools) Disconnect(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, any, error) {
	return result(t.client.Disconnect(ctx))
}

func (t *Tools) SelectTab(ctx context.Context, _ *mcp.CallToolRequest, in SelectTabInput) (*mcp.CallToolResult, any, error) {
	return result(t.client.SelectTab(ctx, in.Tab))
}

func (t *Tools) Refresh(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, any, error) {
	return result(t.client.Refresh(ctx))
}

func (t *Tools) ListViews(ctx context.Context, _ *mcp.CallToolRequest, in ListViewsInput) (*mcp.CallToolResult, any, error) {
	res, err := t.client.ListViews(ctx, in.Tab)
	if err != nil || in.Tab == "" {
		return result(res, err)
	}
	return result(map[string]any{"tab": res.Tab, "tasks": res.Tasks}, nil)
}

func (t *Tools) CreateTask(ctx context.Context, _ *mcp.CallToolRequest, in CreateTaskInput) (*mcp.CallToolResult, any, error) {
	return result(t.client.CreateTask(ctx, in.Description, in.Bounty))
}

func (t *Tools) RegisterForTask(ctx context.Context, _ *mcp.CallToolRequest, in RegisterInput) (*mcp.CallToolResult, any, error) {
	return result(t.client.RegisterForTask(ctx, in.TaskID))
}

func (t *Tools) CompleteTask(ctx context.Context, _ *mcp.CallToolRequest, in CompleteTaskInput) (*mcp.CallToolResult, any, error) {
	return result(t.client.CompleteTask(ctx, in.TaskID, in.Participant))
}

// result renders v as indented JSON. Errors become tool errors so the model
// sees the reason instead of a protocol failure.
func result(v any, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		text := fmt.Sprintf("Error: %v", err)
		if reason := cerr.ReasonOf(err); reason != "" {
			text = fmt.Sprintf("Error (%s): %v", reason, err)
		}
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil, nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
