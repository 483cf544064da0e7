package task

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanRegister(t *testing.T) {
	open := &Task{ID: 7, Creator: "0xAAA", Participants: []string{"0xbbb"}}

	tests := []struct {
		name   string
		task   *Task
		wallet string
		want   Reason
	}{
		{name: "already registered", task: open, wallet: "0xbbb", want: ReasonAlreadyRegistered},
		{name: "already registered different case", task: open, wallet: "0xBBB", want: ReasonAlreadyRegistered},
		{name: "new participant", task: open, wallet: "0xccc"},
		{name: "own task", task: open, wallet: "0xaaa", want: ReasonCannotRegisterOwnTask},
		{
			name:   "completed wins over registered",
			task:   &Task{ID: 8, Creator: "0xAAA", Participants: []string{"0xbbb"}, Completed: true},
			wallet: "0xbbb",
			want:   ReasonAlreadyCompleted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CanRegister(tt.task, tt.wallet)
			if tt.want == "" {
				assert.Nil(t, r)
				return
			}
			require.NotNil(t, r)
			assert.Equal(t, tt.want, r.Reason)
			assert.Equal(t, tt.task.ID, r.TaskID)
		})
	}
}

func TestCanComplete(t *testing.T) {
	mine := &Task{ID: 3, Creator: "0xAAA", Participants: []string{"0xBBB"}}

	tests := []struct {
		name        string
		task        *Task
		wallet      string
		participant string
		want        Reason
	}{
		{name: "permitted", task: mine, wallet: "0xaaa", participant: "0xbbb"},
		{name: "not creator", task: mine, wallet: "0xbbb", participant: "0xbbb", want: ReasonNotCreator},
		{name: "no participant", task: mine, wallet: "0xaaa", participant: " ", want: ReasonNoParticipantSelected},
		{name: "unknown participant", task: mine, wallet: "0xaaa", participant: "0xccc", want: ReasonParticipantNotRegistered},
		{
			name:        "already completed",
			task:        &Task{ID: 4, Creator: "0xAAA", Participants: []string{"0xBBB"}, Completed: true},
			wallet:      "0xaaa",
			participant: "0xbbb",
			want:        ReasonAlreadyCompleted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CanComplete(tt.task, tt.wallet, tt.participant)
			if tt.want == "" {
				assert.Nil(t, r)
				return
			}
			require.NotNil(t, r)
			assert.Equal(t, tt.want, r.Reason)
		})
	}
}

func TestCanComplete_DetailNamesParticipant(t *testing.T) {
	r := CanComplete(&Task{ID: 1, Creator: "0xAAA"}, "0xaaa", "0xccc")
	require.NotNil(t, r)
	assert.Equal(t, "0xccc", r.Detail)
	assert.Contains(t, r.Error(), "ParticipantNotRegistered")
}

func TestCanCreate(t *testing.T) {
	tests := []struct {
		name        string
		description string
		bounty      string
		ok          bool
	}{
		{name: "valid", description: "Fix bug", bounty: "10", ok: true},
		{name: "fractional", description: "Fix bug", bounty: "0.25", ok: true},
		{name: "empty description", description: "", bounty: "10"},
		{name: "blank description", description: "   ", bounty: "10"},
		{name: "empty bounty", description: "Fix bug", bounty: ""},
		{name: "zero bounty", description: "Fix bug", bounty: "0"},
		{name: "negative bounty", description: "Fix bug", bounty: "-1"},
		{name: "not a number", description: "Fix bug", bounty: "ten"},
		{name: "exponent", description: "Fix bug", bounty: "1e3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CanCreate(tt.description, tt.bounty)
			if tt.ok {
				assert.Nil(t, r)
				return
			}
			require.NotNil(t, r)
			assert.Equal(t, ReasonInvalidTaskInput, r.Reason)
		})
	}
}

func TestPrepareCreate(t *testing.T) {
	args, r := PrepareCreate("  Fix bug ", "1.5", DefaultValueDecimals)
	require.Nil(t, r)
	assert.Equal(t, "Fix bug", args.Description)
	assert.Equal(t, 0, args.Bounty.Cmp(big.NewRat(3, 2)))
	want, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, 0, args.Value.Cmp(want))

	_, r = PrepareCreate("Fix bug", "0.123", 2)
	require.NotNil(t, r)
	assert.Equal(t, ReasonInvalidTaskInput, r.Reason)
}
