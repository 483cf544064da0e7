package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/kazz187/taskbounty/internal/eventbus"
	"github.com/kazz187/taskbounty/internal/registry"
	"github.com/kazz187/taskbounty/internal/task"
	"github.com/kazz187/taskbounty/internal/wallet"
	"github.com/kazz187/taskbounty/pkg/cerr"
	"github.com/kazz187/taskbounty/pkg/clog"
)

// Controller is the single owner of the session. It sequences wallet and
// registry calls and turns every outcome into a notification on the bus.
type Controller struct {
	mu      sync.Mutex
	session Session

	store         *task.Store
	registry      registry.Registry
	wallet        wallet.Wallet
	bus           *eventbus.Bus
	valueDecimals int
	reload        func(chainID string)
}

type Option func(*Controller)

// WithValueDecimals sets the precision of the payable value sent on create.
func WithValueDecimals(decimals int) Option {
	return func(c *Controller) {
		c.valueDecimals = decimals
	}
}

// WithReloadHook is invoked when the wallet switches networks. The session
// cannot continue on another chain, so the hook is expected to restart it.
func WithReloadHook(hook func(chainID string)) Option {
	return func(c *Controller) {
		c.reload = hook
	}
}

func NewController(w wallet.Wallet, reg registry.Registry, bus *eventbus.Bus, opts ...Option) *Controller {
	c := &Controller{
		store:         task.NewStore(),
		registry:      reg,
		wallet:        w,
		bus:           bus,
		valueDecimals: task.DefaultValueDecimals,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run subscribes to wallet changes and drives the wallet until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	c.wallet.OnAccountsChanged(func(accounts []string) {
		c.HandleAccountsChanged(ctx, accounts)
	})
	c.wallet.OnChainChanged(func(chainID string) {
		c.HandleChainChanged(ctx, chainID)
	})
	return c.wallet.Run(ctx)
}

// Snapshot returns the current session value.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Controller) Store() *task.Store {
	return c.store
}

func (c *Controller) Connect(ctx context.Context) (Session, error) {
	addr, err := c.wallet.Connect(ctx)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrNoWalletInstalled):
			c.bus.Notify(eventbus.SeverityError, "", "No wallet is installed.")
			return c.Snapshot(), cerr.NewError(cerr.Unavailable, "no wallet installed", err)
		case errors.Is(err, wallet.ErrUserRejected):
			c.bus.Notify(eventbus.SeverityError, "", "Wallet connection was rejected.")
			return c.Snapshot(), cerr.NewError(cerr.PermissionDenied, "wallet connection rejected", err)
		default:
			c.bus.Notify(eventbus.SeverityError, "", "Error connecting wallet.")
			return c.Snapshot(), cerr.NewError(cerr.Unavailable, "failed to connect wallet", err)
		}
	}

	c.mu.Lock()
	c.session = c.session.Connect(addr)
	s := c.session
	c.mu.Unlock()

	clog.AddWallet(ctx, s.Address)
	slog.InfoContext(ctx, "wallet connected", "address", s.Address)
	c.bus.PublishNew(eventbus.EventSessionConnected, s.Address, "", nil)
	c.bus.Notify(eventbus.SeveritySuccess, "", "Wallet connected!")

	if _, err := c.Refresh(ctx); err != nil {
		slog.WarnContext(ctx, "initial refresh failed", "error", err)
	}
	return s, nil
}

func (c *Controller) Disconnect(ctx context.Context) Session {
	c.mu.Lock()
	prev := c.session
	c.session = c.session.Disconnect()
	s := c.session
	c.store.Clear()
	c.mu.Unlock()

	slog.InfoContext(ctx, "wallet disconnected", "address", prev.Address)
	c.bus.PublishNew(eventbus.EventSessionDisconnected, prev.Address, "", nil)
	c.bus.Notify(eventbus.SeverityInfo, "", "Wallet disconnected.")
	return s
}

func (c *Controller) SelectTab(ctx context.Context, tab task.Tab) (Session, error) {
	c.mu.Lock()
	next, err := c.session.SelectTab(tab)
	if err != nil {
		c.mu.Unlock()
		return next, sessionError(err)
	}
	c.session = next
	c.mu.Unlock()

	c.bus.PublishNew(eventbus.EventTabSelected, next.Address, string(tab), nil)
	return next, nil
}

// Refresh fetches every task and replaces the store. On failure the store
// keeps its previous snapshot.
func (c *Controller) Refresh(ctx context.Context) (*task.Snapshot, error) {
	if _, err := c.requireConnected(); err != nil {
		return nil, err
	}

	count, raws, err := c.registry.GetAllTasks(ctx)
	if err != nil {
		if !errors.Is(err, registry.ErrFetchFailed) {
			err = fmt.Errorf("%w: %w", registry.ErrFetchFailed, err)
		}
		c.bus.Notify(eventbus.SeverityError, "", "Error fetching tasks")
		return nil, cerr.NewError(cerr.Unavailable, "failed to fetch tasks", err)
	}

	tasks, errs := task.NormalizeAll(raws)
	for _, e := range errs {
		slog.WarnContext(ctx, "dropping malformed task record", "error", e)
	}
	if count != nil && count.IsInt64() && count.Int64() != int64(len(raws)) {
		slog.DebugContext(ctx, "task count disagrees with records", "count", count.String(), "records", len(raws))
	}

	// The wallet may have gone away while the fetch was in flight. Holding mu
	// orders the replace against Disconnect's clear.
	c.mu.Lock()
	if !c.session.Connected() {
		c.mu.Unlock()
		return nil, cerr.NewError(cerr.FailedPrecondition, "wallet disconnected during refresh", ErrNotConnected)
	}
	snap := c.store.Replace(tasks)
	c.mu.Unlock()

	c.bus.PublishNew(eventbus.EventTasksRefreshed, "", "", map[string]string{
		"generation": strconv.FormatUint(snap.Generation, 10),
		"count":      strconv.Itoa(len(snap.Tasks)),
		"dropped":    strconv.Itoa(len(errs)),
	})
	c.bus.Notify(eventbus.SeverityInfo, "", "Fetched tasks!")
	return snap, nil
}

// Views partitions the current store for the connected wallet.
func (c *Controller) Views(_ context.Context) (task.Views, error) {
	addr, err := c.requireConnected()
	if err != nil {
		return task.Views{}, err
	}
	return task.PartitionSnapshot(c.store.Snapshot(), addr), nil
}

// ActiveView returns the tasks the active tab displays.
func (c *Controller) ActiveView(ctx context.Context) (task.Tab, []*task.Task, error) {
	views, err := c.Views(ctx)
	if err != nil {
		return task.TabNone, nil, err
	}
	tab := c.Snapshot().Tab
	return tab, views.ForTab(tab), nil
}

func (c *Controller) CreateTask(ctx context.Context, description, bounty string) (*registry.Receipt, error) {
	if _, err := c.requireConnected(); err != nil {
		return nil, err
	}
	args, rej := task.PrepareCreate(description, bounty, c.valueDecimals)
	if rej != nil {
		c.bus.Notify(eventbus.SeverityWarning, "", "Please fill out all fields correctly.")
		return nil, rejectionError(rej)
	}

	tx, err := c.registry.CreateTask(ctx, args.Description, args.Value)
	if err != nil {
		c.bus.Notify(eventbus.SeverityError, "", "Error in creating task")
		return nil, txError(err)
	}
	return c.settle(ctx, tx, "", "Task created!", "Error in creating task")
}

func (c *Controller) Register(ctx context.Context, taskID uint64) (*registry.Receipt, error) {
	addr, err := c.requireConnected()
	if err != nil {
		return nil, err
	}
	id := strconv.FormatUint(taskID, 10)
	failed := fmt.Sprintf("Failed to register for task #%d", taskID)

	t, err := c.lookup(taskID)
	if err != nil {
		c.bus.Notify(eventbus.SeverityError, id, failed)
		return nil, err
	}
	if rej := task.CanRegister(t, addr); rej != nil {
		c.bus.Notify(eventbus.SeverityError, id, failed+": "+rej.Message())
		return nil, rejectionError(rej)
	}

	tx, err := c.registry.AddParticipant(ctx, taskID)
	if err != nil {
		c.bus.Notify(eventbus.SeverityError, id, failed)
		return nil, txError(err)
	}
	return c.settle(ctx, tx, id, fmt.Sprintf("Registered for task #%d", taskID), failed)
}

func (c *Controller) Complete(ctx context.Context, taskID uint64, participant string) (*registry.Receipt, error) {
	addr, err := c.requireConnected()
	if err != nil {
		return nil, err
	}
	id := strconv.FormatUint(taskID, 10)
	failed := "Error in completing the task"

	t, err := c.lookup(taskID)
	if err != nil {
		c.bus.Notify(eventbus.SeverityError, id, failed)
		return nil, err
	}
	if rej := task.CanComplete(t, addr, participant); rej != nil {
		c.bus.Notify(eventbus.SeverityError, id, failed+": "+rej.Message())
		return nil, rejectionError(rej)
	}

	// Send the address exactly as registered, not the caller's spelling of it.
	registered, _ := t.Participant(participant)
	tx, err := c.registry.CompleteTask(ctx, taskID, registered)
	if err != nil {
		c.bus.Notify(eventbus.SeverityError, id, failed)
		return nil, txError(err)
	}
	return c.settle(ctx, tx, id, fmt.Sprintf("Task #%d marked complete!", taskID), failed)
}

// HandleAccountsChanged applies a provider account change.
func (c *Controller) HandleAccountsChanged(ctx context.Context, accounts []string) {
	c.mu.Lock()
	prev := c.session
	c.session = c.session.AccountsChanged(accounts)
	next := c.session
	if prev != next && !next.Connected() {
		c.store.Clear()
	}
	c.mu.Unlock()

	if prev == next {
		return
	}
	if !next.Connected() {
		slog.InfoContext(ctx, "wallet has no usable account", "previous", prev.Address)
		c.bus.PublishNew(eventbus.EventSessionDisconnected, prev.Address, "", nil)
		c.bus.Notify(eventbus.SeverityInfo, "", "Wallet disconnected.")
		return
	}

	slog.InfoContext(ctx, "wallet account changed", "from", prev.Address, "to", next.Address)
	c.bus.PublishNew(eventbus.EventAccountChanged, next.Address, "", map[string]string{"previous": prev.Address})
	if _, err := c.Refresh(ctx); err != nil {
		slog.WarnContext(ctx, "refresh after account change failed", "error", err)
	}
}

// HandleChainChanged ends the session; a new chain needs a fresh process.
func (c *Controller) HandleChainChanged(ctx context.Context, chainID string) {
	slog.InfoContext(ctx, "wallet chain changed, reloading", "chain_id", chainID)
	c.bus.PublishNew(eventbus.EventChainChanged, chainID, "", nil)
	if c.reload != nil {
		c.reload(chainID)
	}
}

// settle waits for tx to confirm and then refreshes. The transaction is
// already sent, so the caller's cancellation no longer applies.
func (c *Controller) settle(ctx context.Context, tx registry.PendingTx, resourceID, success, failure string) (*registry.Receipt, error) {
	ctx = context.WithoutCancel(ctx)
	c.bus.PublishNew(eventbus.EventTxSubmitted, resourceID, tx.Hash(), nil)
	slog.InfoContext(ctx, "transaction sent", "tx", tx.Hash())

	receipt, err := tx.Wait(ctx)
	if err != nil {
		c.bus.Notify(eventbus.SeverityError, resourceID, failure)
		return nil, txError(err)
	}
	c.bus.PublishNew(eventbus.EventTxConfirmed, resourceID, receipt.TxHash, map[string]string{
		"block": strconv.FormatUint(receipt.BlockNumber, 10),
	})
	c.bus.Notify(eventbus.SeveritySuccess, resourceID, success)

	if _, err := c.Refresh(ctx); err != nil {
		slog.WarnContext(ctx, "refresh after transaction failed", "tx", receipt.TxHash, "error", err)
	}
	return receipt, nil
}

func (c *Controller) requireConnected() (string, error) {
	s := c.Snapshot()
	if !s.Connected() {
		return "", sessionError(ErrNotConnected)
	}
	return s.Address, nil
}

func (c *Controller) lookup(taskID uint64) (*task.Task, error) {
	t, ok := c.store.Get(taskID)
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, fmt.Sprintf("task #%d not found, refresh and retry", taskID), nil)
	}
	return t, nil
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, ErrNotConnected):
		return cerr.NewError(cerr.FailedPrecondition, "wallet not connected", err)
	case errors.Is(err, ErrUnknownTab):
		return cerr.NewError(cerr.InvalidArgument, "unknown tab", err)
	}
	return err
}

func txError(err error) error {
	if errors.Is(err, wallet.ErrNotConnected) {
		return cerr.NewError(cerr.FailedPrecondition, "wallet not connected", err)
	}
	if !errors.Is(err, registry.ErrTransactionFailed) {
		err = fmt.Errorf("%w: %w", registry.ErrTransactionFailed, err)
	}
	return cerr.NewError(cerr.Aborted, "transaction failed", err)
}

func rejectionError(rej *task.Rejection) error {
	code := cerr.FailedPrecondition
	switch rej.Reason {
	case task.ReasonInvalidTaskInput, task.ReasonNoParticipantSelected:
		code = cerr.InvalidArgument
	}
	return cerr.NewError(code, rej.Message(), rej).AddDetailMessageWithCode(rej.Message(), string(rej.Reason))
}
