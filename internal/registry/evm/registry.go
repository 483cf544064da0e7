package evm

import (
	"context"
	_ "embed"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/kazz187/taskbounty/internal/registry"
	"github.com/kazz187/taskbounty/internal/task"
)

//go:embed taskregistry.abi.json
var registryABI string

var _ registry.Registry = (*Registry)(nil)

// Backend is what the registry needs from a node connection.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Signer hands out transaction options for the connected account.
type Signer interface {
	TransactOpts(ctx context.Context) (*bind.TransactOpts, error)
}

// onchainTask mirrors the tuple returned by getAllTasks.
type onchainTask struct {
	Id           *big.Int
	Description  string
	Reward       *big.Int
	Creator      common.Address
	Participants []common.Address
	Completed    bool
}

type Registry struct {
	contract       *bind.BoundContract
	receipts       bind.DeployBackend
	signer         Signer
	receiptTimeout time.Duration
}

type Option func(*Registry)

// WithReceiptTimeout bounds how long Wait blocks for a transaction to mine.
func WithReceiptTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.receiptTimeout = d
	}
}

func New(address string, backend Backend, signer Signer, opts ...Option) (*Registry, error) {
	return newRegistry(address, backend, backend, backend, signer, opts...)
}

func newRegistry(address string, caller bind.ContractCaller, transactor bind.ContractTransactor, receipts bind.DeployBackend, signer Signer, opts ...Option) (*Registry, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid registry address %q", address)
	}
	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry abi: %w", err)
	}
	r := &Registry{
		contract:       bind.NewBoundContract(common.HexToAddress(address), parsed, caller, transactor, nil),
		receipts:       receipts,
		signer:         signer,
		receiptTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Registry) GetAllTasks(ctx context.Context) (*big.Int, []task.RawTask, error) {
	var out []any
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getAllTasks"); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", registry.ErrFetchFailed, err)
	}
	if len(out) != 2 {
		return nil, nil, fmt.Errorf("%w: unexpected output arity %d", registry.ErrFetchFailed, len(out))
	}
	count, ok := out[0].(*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unexpected count type %T", registry.ErrFetchFailed, out[0])
	}
	records, err := convertTasks(out[1])
	if err != nil {
		return nil, nil, err
	}

	raws := make([]task.RawTask, 0, len(records))
	for _, rec := range records {
		participants := make([]string, 0, len(rec.Participants))
		for _, p := range rec.Participants {
			participants = append(participants, p.Hex())
		}
		raws = append(raws, task.RawTask{
			ID:           rec.Id,
			Description:  rec.Description,
			Reward:       rec.Reward,
			Creator:      rec.Creator.Hex(),
			Participants: participants,
			Completed:    rec.Completed,
		})
	}
	return count, raws, nil
}

// convertTasks maps the decoded tuple array onto onchainTask. abi.ConvertType
// panics on a shape mismatch.
func convertTasks(v any) (records []onchainTask, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: unexpected tasks shape %T: %v", registry.ErrFetchFailed, v, rec)
		}
	}()
	return *abi.ConvertType(v, new([]onchainTask)).(*[]onchainTask), nil
}

func (r *Registry) CreateTask(ctx context.Context, description string, value *big.Int) (registry.PendingTx, error) {
	opts, err := r.signer.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}
	opts.Value = value
	return r.transact(opts, "createTask", description)
}

func (r *Registry) AddParticipant(ctx context.Context, taskID uint64) (registry.PendingTx, error) {
	opts, err := r.signer.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}
	return r.transact(opts, "addParticipant", new(big.Int).SetUint64(taskID))
}

func (r *Registry) CompleteTask(ctx context.Context, taskID uint64, participant string) (registry.PendingTx, error) {
	if !common.IsHexAddress(participant) {
		return nil, fmt.Errorf("%w: invalid participant address %q", registry.ErrTransactionFailed, participant)
	}
	opts, err := r.signer.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}
	return r.transact(opts, "completeTask", new(big.Int).SetUint64(taskID), common.HexToAddress(participant))
}

func (r *Registry) transact(opts *bind.TransactOpts, method string, params ...any) (registry.PendingTx, error) {
	tx, err := r.contract.Transact(opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", registry.ErrTransactionFailed, method, err)
	}
	return &pendingTx{tx: tx, receipts: r.receipts, timeout: r.receiptTimeout}, nil
}

type pendingTx struct {
	tx       *types.Transaction
	receipts bind.DeployBackend
	timeout  time.Duration
}

func (p *pendingTx) Hash() string {
	return p.tx.Hash().Hex()
}

func (p *pendingTx) Wait(ctx context.Context) (*registry.Receipt, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	receipt, err := bind.WaitMined(ctx, p.receipts, p.tx)
	if err != nil {
		return nil, fmt.Errorf("%w: waiting for %s: %v", registry.ErrTransactionFailed, p.Hash(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s reverted", registry.ErrTransactionFailed, p.Hash())
	}
	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}
	return &registry.Receipt{
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: block,
		GasUsed:     receipt.GasUsed,
	}, nil
}
