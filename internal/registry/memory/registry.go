package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"sync"

	"github.com/kazz187/taskbounty/internal/registry"
	"github.com/kazz187/taskbounty/internal/task"
)

var _ registry.Registry = (*Registry)(nil)

// Registry is an in-process task registry enforcing the same rules as the
// deployed contract. Writes apply when sent and confirm on the next Wait.
type Registry struct {
	mu     sync.RWMutex
	tasks  []*record
	block  uint64
	sender func() string
	// valueShift converts a payable value into raw reward units.
	valueShift *big.Int
}

type record struct {
	id           uint64
	description  string
	reward       *big.Int
	creator      string
	participants []string
	completed    bool
}

type Option func(*Registry)

// WithValueDecimals sets the precision of the value passed to CreateTask.
// Rewards are stored with task.RewardDecimals.
func WithValueDecimals(decimals int) Option {
	return func(r *Registry) {
		shift := decimals - task.RewardDecimals
		if shift < 0 {
			shift = 0
		}
		r.valueShift = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(shift)), nil)
	}
}

// New creates an empty registry. sender reports the account that signs
// writes, normally the connected wallet.
func New(sender func() string, opts ...Option) *Registry {
	r := &Registry{sender: sender}
	WithValueDecimals(task.DefaultValueDecimals)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) GetAllTasks(_ context.Context) (*big.Int, []task.RawTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	raws := make([]task.RawTask, 0, len(r.tasks))
	for _, rec := range r.tasks {
		raws = append(raws, task.RawTask{
			ID:           new(big.Int).SetUint64(rec.id),
			Description:  rec.description,
			Reward:       new(big.Int).Set(rec.reward),
			Creator:      rec.creator,
			Participants: slices.Clone(rec.participants),
			Completed:    rec.completed,
		})
	}
	return big.NewInt(int64(len(raws))), raws, nil
}

func (r *Registry) CreateTask(_ context.Context, description string, value *big.Int) (registry.PendingTx, error) {
	from, err := r.from()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, revert("description required")
	}
	if value == nil || value.Sign() <= 0 {
		return nil, revert("reward must be greater than zero")
	}

	reward, rem := new(big.Int).QuoRem(value, r.valueShift, new(big.Int))
	if rem.Sign() != 0 || reward.Sign() == 0 {
		return nil, revert("value below reward precision")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, &record{
		id:           uint64(len(r.tasks)),
		description:  description,
		reward:       reward,
		creator:      from,
		participants: []string{},
	})
	return r.pending(), nil
}

func (r *Registry) AddParticipant(_ context.Context, taskID uint64) (registry.PendingTx, error) {
	from, err := r.from()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rec, err := r.lookup(taskID)
	if err != nil {
		return nil, err
	}
	switch {
	case rec.completed:
		return nil, revert("task already completed")
	case task.SameAddress(rec.creator, from):
		return nil, revert("creator cannot participate")
	case slices.ContainsFunc(rec.participants, func(p string) bool { return task.SameAddress(p, from) }):
		return nil, revert("already a participant")
	}
	rec.participants = append(rec.participants, from)
	return r.pending(), nil
}

func (r *Registry) CompleteTask(_ context.Context, taskID uint64, participant string) (registry.PendingTx, error) {
	from, err := r.from()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rec, err := r.lookup(taskID)
	if err != nil {
		return nil, err
	}
	switch {
	case rec.completed:
		return nil, revert("task already completed")
	case !task.SameAddress(rec.creator, from):
		return nil, revert("only creator can complete")
	case !slices.ContainsFunc(rec.participants, func(p string) bool { return task.SameAddress(p, participant) }):
		return nil, revert("participant not registered")
	}
	rec.completed = true
	return r.pending(), nil
}

func (r *Registry) from() (string, error) {
	if r.sender == nil {
		return "", fmt.Errorf("%w: no signer", registry.ErrTransactionFailed)
	}
	from := r.sender()
	if from == "" {
		return "", fmt.Errorf("%w: no signer", registry.ErrTransactionFailed)
	}
	return from, nil
}

func (r *Registry) lookup(id uint64) (*record, error) {
	if id >= uint64(len(r.tasks)) {
		return nil, revert("task does not exist")
	}
	return r.tasks[id], nil
}

// pending must be called with mu held.
func (r *Registry) pending() *pendingTx {
	r.block++
	var b [32]byte
	_, _ = rand.Read(b[:])
	return &pendingTx{
		hash:  "0x" + hex.EncodeToString(b[:]),
		block: r.block,
	}
}

func revert(reason string) error {
	return fmt.Errorf("%w: execution reverted: %s", registry.ErrTransactionFailed, reason)
}

type pendingTx struct {
	hash  string
	block uint64
}

func (p *pendingTx) Hash() string { return p.hash }

func (p *pendingTx) Wait(ctx context.Context) (*registry.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &registry.Receipt{TxHash: p.hash, BlockNumber: p.block, GasUsed: 21000}, nil
}
