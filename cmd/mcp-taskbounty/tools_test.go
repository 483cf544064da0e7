package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taskbountyv1 "github.com/kazz187/taskbounty/internal/api/taskbountyv1"
	"github.com/kazz187/taskbounty/pkg/cerr"
)

type fakeAPI struct {
	registerErr error
	registered  []uint64
}

func (f *fakeAPI) GetSession(context.Context) (*taskbountyv1.Session, error) {
	return &taskbountyv1.Session{Address: "0xAAA", Connected: true}, nil
}

func (f *fakeAPI) Connect(ctx context.Context) (*taskbountyv1.Session, error) {
	return f.GetSession(ctx)
}

func (f *fakeAPI) Disconnect(context.Context) (*taskbountyv1.Session, error) {
	return &taskbountyv1.Session{}, nil
}

func (f *fakeAPI) SelectTab(_ context.Context, tab string) (*taskbountyv1.Session, error) {
	return &taskbountyv1.Session{Address: "0xAAA", Connected: true, Tab: tab}, nil
}

func (f *fakeAPI) Refresh(context.Context) (*taskbountyv1.RefreshResponse, error) {
	return &taskbountyv1.RefreshResponse{Generation: 2}, nil
}

func (f *fakeAPI) ListViews(_ context.Context, tab string) (*taskbountyv1.ListViewsResponse, error) {
	open := []*taskbountyv1.Task{{ID: 1, Description: "Docs", Reward: 2.5, Creator: "0xBBB", Participants: []string{}}}
	res := &taskbountyv1.ListViewsResponse{Views: &taskbountyv1.Views{Wallet: "0xAAA", OpenBounties: open}}
	if tab != "" {
		res.Tab = tab
		res.Tasks = open
	}
	return res, nil
}

func (f *fakeAPI) CreateTask(context.Context, string, string) (*taskbountyv1.Receipt, error) {
	return &taskbountyv1.Receipt{TxHash: "0x1"}, nil
}

func (f *fakeAPI) RegisterForTask(_ context.Context, id uint64) (*taskbountyv1.Receipt, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = append(f.registered, id)
	return &taskbountyv1.Receipt{TxHash: "0x2"}, nil
}

func (f *fakeAPI) CompleteTask(context.Context, uint64, string) (*taskbountyv1.Receipt, error) {
	return &taskbountyv1.Receipt{TxHash: "0x3"}, nil
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestTools_ListViews(t *testing.T) {
	tools := NewTools(&fakeAPI{})

	res, _, err := tools.ListViews(context.Background(), nil, ListViewsInput{})
	require.NoError(t, err)
	var all taskbountyv1.ListViewsResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &all))
	assert.Equal(t, "0xAAA", all.Views.Wallet)

	res, _, err = tools.ListViews(context.Background(), nil, ListViewsInput{Tab: "open_bounties"})
	require.NoError(t, err)
	var narrowed struct {
		Tab   string               `json:"tab"`
		Tasks []*taskbountyv1.Task `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &narrowed))
	assert.Equal(t, "open_bounties", narrowed.Tab)
	require.Len(t, narrowed.Tasks, 1)
	assert.Equal(t, 2.5, narrowed.Tasks[0].Reward)
}

func TestTools_ErrorsBecomeToolErrors(t *testing.T) {
	rejection := cerr.NewError(cerr.FailedPrecondition, "already registered", nil).
		AddDetailMessageWithCode("wallet is already registered for this task", "AlreadyRegistered")
	tools := NewTools(&fakeAPI{registerErr: rejection})

	res, _, err := tools.RegisterForTask(context.Background(), nil, RegisterInput{TaskID: 1})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "Error (AlreadyRegistered)")
}

func TestTools_OverMCP(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	server := mcp.NewServer(&mcp.Implementation{Name: "mcp-taskbounty", Version: "test"}, nil)
	NewTools(api).Register(server)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	c := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "test"}, nil)
	cs, err := c.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "taskbounty_register")
	assert.Contains(t, names, "taskbounty_complete_task")
	assert.Len(t, names, 9)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "taskbounty_register",
		Arguments: map[string]any{"task_id": 4},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, []uint64{4}, api.registered)
}
