package wallet

import (
	"context"
	"slices"
	"sync"
)

var _ Wallet = (*Static)(nil)

// Static is a wallet with a fixed, scriptable account list. It backs local
// development against the memory registry.
type Static struct {
	listeners

	mu        sync.Mutex
	accounts  []string
	chainID   string
	connected string
	reject    bool
}

func NewStatic(chainID string, accounts ...string) *Static {
	return &Static{chainID: chainID, accounts: slices.Clone(accounts)}
}

func (w *Static) Connect(_ context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.accounts) == 0 {
		return "", ErrNoWalletInstalled
	}
	if w.reject {
		return "", ErrUserRejected
	}
	w.connected = w.accounts[0]
	return w.connected, nil
}

func (w *Static) Account() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

// RejectConnect makes subsequent Connect calls fail as if the user declined.
func (w *Static) RejectConnect(reject bool) {
	w.mu.Lock()
	w.reject = reject
	w.mu.Unlock()
}

// SetAccounts replaces the account list. Listeners hear about it only while
// connected.
func (w *Static) SetAccounts(accounts ...string) {
	w.mu.Lock()
	w.accounts = slices.Clone(accounts)
	if w.connected == "" {
		w.mu.Unlock()
		return
	}
	w.connected = ""
	if len(accounts) > 0 {
		w.connected = accounts[0]
	}
	w.mu.Unlock()
	w.emitAccounts(accounts)
}

// SetChain switches the network, notifying listeners when it differs.
func (w *Static) SetChain(chainID string) {
	w.mu.Lock()
	changed := w.chainID != chainID
	w.chainID = chainID
	w.mu.Unlock()
	if changed {
		w.emitChain(chainID)
	}
}

func (w *Static) ChainID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chainID
}

func (w *Static) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}
