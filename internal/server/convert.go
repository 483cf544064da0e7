package server

import (
	"slices"

	taskbountyv1 "github.com/kazz187/taskbounty/internal/api/taskbountyv1"
	"github.com/kazz187/taskbounty/internal/eventbus"
	"github.com/kazz187/taskbounty/internal/registry"
	"github.com/kazz187/taskbounty/internal/session"
	"github.com/kazz187/taskbounty/internal/task"
)

func toSessionProto(s session.Session, store *task.Store) *taskbountyv1.Session {
	snap := store.Snapshot()
	return &taskbountyv1.Session{
		Address:    s.Address,
		Tab:        string(s.Tab),
		Connected:  s.Connected(),
		Generation: snap.Generation,
		TaskCount:  len(snap.Tasks),
	}
}

func toTaskProto(t *task.Task) *taskbountyv1.Task {
	return &taskbountyv1.Task{
		ID:           t.ID,
		Description:  t.Description,
		Reward:       t.Reward,
		Creator:      t.Creator,
		Participants: slices.Clone(t.Participants),
		Completed:    t.Completed,
	}
}

func toTasksProto(tasks []*task.Task) []*taskbountyv1.Task {
	out := make([]*taskbountyv1.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskProto(t))
	}
	return out
}

func toViewsProto(v task.Views) *taskbountyv1.Views {
	return &taskbountyv1.Views{
		Wallet:       v.Wallet,
		Generation:   v.Generation,
		OpenBounties: toTasksProto(v.OpenBounties),
		InProgress:   toTasksProto(v.InProgress),
		Completed:    toTasksProto(v.Completed),
	}
}

func toReceiptProto(r *registry.Receipt) *taskbountyv1.Receipt {
	if r == nil {
		return nil
	}
	return &taskbountyv1.Receipt{
		TxHash:      r.TxHash,
		BlockNumber: r.BlockNumber,
		GasUsed:     r.GasUsed,
	}
}

func toEventProto(e *eventbus.Event) *taskbountyv1.Event {
	return &taskbountyv1.Event{
		ID:         e.ID,
		Type:       string(e.Type),
		ResourceID: e.ResourceID,
		Payload:    e.Payload,
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt,
	}
}
