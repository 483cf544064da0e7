package wallet

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var (
	// ErrNoWalletInstalled means no wallet provider is available to connect.
	ErrNoWalletInstalled = errors.New("no wallet installed")
	// ErrUserRejected means the provider refused the connection request.
	ErrUserRejected = errors.New("user rejected the request")
)

// Wallet is the provider the session connects through.
type Wallet interface {
	// Connect asks the provider for an account and returns its address.
	Connect(ctx context.Context) (string, error)
	// Account is the currently connected address, empty when disconnected.
	Account() string
	// OnAccountsChanged registers cb for account changes. An empty slice
	// means no account is usable any more.
	OnAccountsChanged(cb func(accounts []string))
	// OnChainChanged registers cb for network switches.
	OnChainChanged(cb func(chainID string))
	// Run drives change detection until ctx is done.
	Run(ctx context.Context) error
}

// listeners fans provider events out to registered callbacks.
type listeners struct {
	lmu      sync.Mutex
	accounts []func([]string)
	chain    []func(string)
}

func (l *listeners) OnAccountsChanged(cb func([]string)) {
	l.lmu.Lock()
	l.accounts = append(l.accounts, cb)
	l.lmu.Unlock()
}

func (l *listeners) OnChainChanged(cb func(string)) {
	l.lmu.Lock()
	l.chain = append(l.chain, cb)
	l.lmu.Unlock()
}

func (l *listeners) emitAccounts(accounts []string) {
	l.lmu.Lock()
	cbs := slices.Clone(l.accounts)
	l.lmu.Unlock()
	for _, cb := range cbs {
		cb(slices.Clone(accounts))
	}
}

func (l *listeners) emitChain(chainID string) {
	l.lmu.Lock()
	cbs := slices.Clone(l.chain)
	l.lmu.Unlock()
	for _, cb := range cbs {
		cb(chainID)
	}
}
