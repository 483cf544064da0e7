package registry

import (
	"context"
	"errors"
	"math/big"

	"github.com/kazz187/taskbounty/internal/task"
)

var (
	// ErrFetchFailed means the whole task list could not be read. Callers
	// keep their previous snapshot.
	ErrFetchFailed = errors.New("task fetch failed")
	// ErrTransactionFailed means a write was not sent or did not confirm.
	ErrTransactionFailed = errors.New("transaction failed")
)

// Reader reads the registry's full task list.
type Reader interface {
	// GetAllTasks returns the registry's task count alongside its records.
	// The count may disagree with len(records); records win.
	GetAllTasks(ctx context.Context) (*big.Int, []task.RawTask, error)
}

// Writer submits state-changing calls. Each returns once the transaction is
// sent; the caller waits on the PendingTx for confirmation.
type Writer interface {
	CreateTask(ctx context.Context, description string, value *big.Int) (PendingTx, error)
	AddParticipant(ctx context.Context, taskID uint64) (PendingTx, error)
	CompleteTask(ctx context.Context, taskID uint64, participant string) (PendingTx, error)
}

type Registry interface {
	Reader
	Writer
}

// PendingTx is a sent transaction awaiting confirmation.
type PendingTx interface {
	Hash() string
	// Wait blocks until the transaction is mined. A reverted transaction
	// returns ErrTransactionFailed.
	Wait(ctx context.Context) (*Receipt, error)
}

type Receipt struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
}
