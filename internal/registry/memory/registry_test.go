package memory

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskbounty/internal/registry"
	"github.com/kazz187/taskbounty/internal/task"
)

type signer struct{ addr string }

func (s *signer) get() string { return s.addr }

func fetch(t *testing.T, r *Registry) []*task.Task {
	t.Helper()
	count, raws, err := r.GetAllTasks(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(len(raws)), count.Int64())
	tasks, errs := task.NormalizeAll(raws)
	require.Empty(t, errs)
	return tasks
}

func TestRegistry_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := &signer{addr: "0xAAA"}
	r := New(s.get)

	value, _ := new(big.Int).SetString("5000000000000000000", 10)
	tx, err := r.CreateTask(ctx, "Fix bug", value)
	require.NoError(t, err)
	receipt, err := tx.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), receipt.TxHash)

	tasks := fetch(t, r)
	require.Len(t, tasks, 1)
	assert.Equal(t, uint64(0), tasks[0].ID)
	assert.Equal(t, 5.0, tasks[0].Reward)
	assert.Equal(t, "0xAAA", tasks[0].Creator)

	s.addr = "0xBBB"
	_, err = r.AddParticipant(ctx, 0)
	require.NoError(t, err)
	_, err = r.AddParticipant(ctx, 0)
	assert.ErrorIs(t, err, registry.ErrTransactionFailed)

	_, err = r.CompleteTask(ctx, 0, "0xbbb")
	assert.ErrorIs(t, err, registry.ErrTransactionFailed, "only the creator completes")

	s.addr = "0xaaa"
	_, err = r.CompleteTask(ctx, 0, "0xccc")
	assert.ErrorIs(t, err, registry.ErrTransactionFailed)
	_, err = r.CompleteTask(ctx, 0, "0xbbb")
	require.NoError(t, err)

	tasks = fetch(t, r)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, []string{"0xBBB"}, tasks[0].Participants)
}

func TestRegistry_Reverts(t *testing.T) {
	ctx := context.Background()
	r := New(func() string { return "0xAAA" })

	_, err := r.CreateTask(ctx, " ", big.NewInt(1))
	assert.ErrorIs(t, err, registry.ErrTransactionFailed)
	_, err = r.CreateTask(ctx, "x", big.NewInt(0))
	assert.ErrorIs(t, err, registry.ErrTransactionFailed)
	_, err = r.AddParticipant(ctx, 3)
	assert.ErrorIs(t, err, registry.ErrTransactionFailed)

	_, err = r.CreateTask(ctx, "dust", big.NewInt(1))
	assert.ErrorIs(t, err, registry.ErrTransactionFailed, "below one reward unit")
	frac, _ := new(big.Int).SetString("1000000009000000000", 10)
	_, err = r.CreateTask(ctx, "frac", frac)
	assert.ErrorIs(t, err, registry.ErrTransactionFailed, "remainder below reward precision")
	_, _, err = r.GetAllTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, fetch(t, r))

	_, err = r.CreateTask(ctx, "mine", big.NewInt(10_000_000_000))
	require.NoError(t, err)
	_, err = r.AddParticipant(ctx, 0)
	assert.ErrorIs(t, err, registry.ErrTransactionFailed, "creator cannot join")

	noSigner := New(func() string { return "" })
	_, err = noSigner.CreateTask(ctx, "x", big.NewInt(1))
	assert.ErrorIs(t, err, registry.ErrTransactionFailed)
}

func TestRegistry_SeedFixture(t *testing.T) {
	fx, err := LoadFixture(strings.NewReader(`
tasks:
  - description: T1
    reward: "500000000"
    creator: "0xAAA"
  - description: T2
    reward: "1"
    creator: "0xBBB"
    participants: ["0xAAA"]
  - description: T3
    creator: "0xaaa"
    completed: true
`))
	require.NoError(t, err)

	r := New(func() string { return "0xAAA" })
	require.NoError(t, r.Seed(fx))

	tasks := fetch(t, r)
	require.Len(t, tasks, 3)
	assert.Equal(t, 5.0, tasks[0].Reward)
	assert.Equal(t, 0.00000001, tasks[1].Reward)
	assert.Equal(t, float64(0), tasks[2].Reward)

	v := task.Partition(tasks, "0xaaa")
	assert.Len(t, v.OpenBounties, 1)
	assert.Len(t, v.InProgress, 1)
	assert.Len(t, v.Completed, 1)
}

func TestRegistry_SeedRejectsBadReward(t *testing.T) {
	r := New(nil)
	err := r.Seed(&Fixture{Tasks: []FixtureTask{{Description: "x", Reward: "-1"}}})
	assert.Error(t, err)

	err = r.Seed(&Fixture{Tasks: []FixtureTask{
		{Description: "ok", Reward: "5", Creator: "0xAAA"},
		{Description: "bad", Reward: "1.5", Creator: "0xAAA"},
	}})
	assert.Error(t, err)
	assert.Empty(t, fetch(t, r), "a failed seed leaves no partial rows")

	require.NoError(t, r.Seed(&Fixture{Tasks: []FixtureTask{{Description: "ok", Reward: "5", Creator: "0xAAA"}}}))
	tasks := fetch(t, r)
	require.Len(t, tasks, 1)
	assert.Equal(t, uint64(0), tasks[0].ID)
}

func TestLoadFixture_Empty(t *testing.T) {
	fx, err := LoadFixture(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fx.Tasks)
}
