package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"

	"github.com/kazz187/taskbounty/pkg/cerr"
	"github.com/kazz187/taskbounty/pkg/storage"
)

var _ Wallet = (*Keystore)(nil)

// ErrNotConnected is returned when signing is requested before Connect.
var ErrNotConnected = errors.New("wallet not connected")

// ChainIDReader reports the network the node is on. *ethclient.Client
// satisfies it.
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Keystore is a wallet backed by an encrypted key directory. The first
// account that unlocks with the configured passphrase is the connected one.
type Keystore struct {
	listeners

	ks           *keystore.KeyStore
	passphrase   string
	chain        ChainIDReader
	pollInterval time.Duration

	mu        sync.RWMutex
	account   *accounts.Account
	chainID   *big.Int
	connected bool
}

type KeystoreOption func(*keystoreConfig)

type keystoreConfig struct {
	scryptN, scryptP int
	pollInterval     time.Duration
}

// WithLightScrypt uses cheap key derivation, for tests and throwaway keys.
func WithLightScrypt() KeystoreOption {
	return func(c *keystoreConfig) {
		c.scryptN, c.scryptP = keystore.LightScryptN, keystore.LightScryptP
	}
}

func WithChainPollInterval(d time.Duration) KeystoreOption {
	return func(c *keystoreConfig) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func NewKeystore(dir, passphrase string, chain ChainIDReader, opts ...KeystoreOption) *Keystore {
	cfg := keystoreConfig{
		scryptN:      keystore.StandardScryptN,
		scryptP:      keystore.StandardScryptP,
		pollInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Keystore{
		ks:           keystore.NewKeyStore(dir, cfg.scryptN, cfg.scryptP),
		passphrase:   passphrase,
		chain:        chain,
		pollInterval: cfg.pollInterval,
	}
}

// KeyStore exposes the underlying key store.
func (w *Keystore) KeyStore() *keystore.KeyStore {
	return w.ks
}

func (w *Keystore) Connect(ctx context.Context) (string, error) {
	accs := w.ks.Accounts()
	if len(accs) == 0 {
		return "", ErrNoWalletInstalled
	}
	acc := accs[0]
	if err := w.unlock(acc); err != nil {
		return "", err
	}
	chainID, err := w.chain.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read chain id: %w", err)
	}

	w.mu.Lock()
	w.account = &acc
	w.chainID = chainID
	w.connected = true
	w.mu.Unlock()
	return acc.Address.Hex(), nil
}

func (w *Keystore) Account() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.account == nil {
		return ""
	}
	return w.account.Address.Hex()
}

// TransactOpts returns signing options for the connected account.
func (w *Keystore) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	w.mu.RLock()
	acc, chainID := w.account, w.chainID
	w.mu.RUnlock()
	if acc == nil || chainID == nil {
		return nil, ErrNotConnected
	}
	opts, err := bind.NewKeyStoreTransactorWithChainID(w.ks, *acc, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

// Run watches the key directory for accounts coming and going and polls the
// node for chain switches.
func (w *Keystore) Run(ctx context.Context) error {
	sink := make(chan accounts.WalletEvent, 16)
	sub := w.ks.Subscribe(sink)
	defer sub.Unsubscribe()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return err
		case ev := <-sink:
			w.handleWalletEvent(ev)
		case <-ticker.C:
			w.pollChain(ctx)
		}
	}
}

func (w *Keystore) handleWalletEvent(ev accounts.WalletEvent) {
	switch ev.Kind {
	case accounts.WalletArrived:
		w.handleArrived(ev.Wallet)
	case accounts.WalletDropped:
		w.handleDropped(ev.Wallet)
	}
}

// handleArrived adopts a new key when a connected wallet has lost all of
// its unlocked accounts. An account already in use is kept.
func (w *Keystore) handleArrived(wallet accounts.Wallet) {
	w.mu.Lock()
	if !w.connected || w.account != nil {
		w.mu.Unlock()
		return
	}
	for _, acc := range wallet.Accounts() {
		if err := w.unlock(acc); err != nil {
			slog.Warn("cannot unlock arrived wallet account", "account", acc.Address.Hex(), "error", err)
			continue
		}
		w.account = &acc
		break
	}
	next := w.account
	w.mu.Unlock()

	if next == nil {
		return
	}
	slog.Info("wallet account arrived", "account", next.Address.Hex())
	w.emitAccounts([]string{next.Address.Hex()})
}

func (w *Keystore) handleDropped(wallet accounts.Wallet) {
	w.mu.Lock()
	current := w.account
	if current == nil || !wallet.Contains(*current) {
		w.mu.Unlock()
		return
	}
	w.account = nil
	for _, acc := range w.ks.Accounts() {
		if acc.Address == current.Address {
			continue
		}
		if err := w.unlock(acc); err == nil {
			w.account = &acc
			break
		}
	}
	next := w.account
	w.mu.Unlock()

	slog.Info("wallet account dropped", "account", current.Address.Hex())
	if next == nil {
		w.emitAccounts([]string{})
		return
	}
	w.emitAccounts([]string{next.Address.Hex()})
}

func (w *Keystore) pollChain(ctx context.Context) {
	id, err := w.chain.ChainID(ctx)
	if err != nil {
		slog.Warn("failed to poll chain id", "error", err)
		return
	}
	w.mu.Lock()
	prev := w.chainID
	if prev == nil {
		// Not connected yet; remember the network as the baseline.
		w.chainID = id
		w.mu.Unlock()
		return
	}
	changed := prev.Cmp(id) != 0
	w.chainID = id
	w.mu.Unlock()

	if changed {
		slog.Info("wallet chain changed", "from", prev.String(), "to", id.String())
		w.emitChain(id.String())
	}
}

func (w *Keystore) unlock(acc accounts.Account) error {
	if err := w.ks.Unlock(acc, w.passphrase); err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return fmt.Errorf("%w: %v", ErrUserRejected, err)
		}
		return fmt.Errorf("failed to unlock %s: %w", acc.Address.Hex(), err)
	}
	return nil
}

// ImportKeys copies every key file found in st into the key store,
// re-encrypting it with the wallet passphrase. Keys already present are
// skipped. It returns the number of keys imported.
func (w *Keystore) ImportKeys(ctx context.Context, st storage.Storage, prefix string) (int, error) {
	names, err := st.List(ctx, prefix)
	if err != nil {
		return 0, cerr.WrapStorageListError("key files", err)
	}
	imported := 0
	for _, name := range names {
		data, err := st.Read(ctx, name)
		if err != nil {
			return imported, cerr.WrapStorageReadError("key file "+name, err)
		}
		acc, err := w.ks.Import(data, w.passphrase, w.passphrase)
		if errors.Is(err, keystore.ErrAccountAlreadyExists) {
			continue
		}
		if err != nil {
			return imported, fmt.Errorf("failed to import key file %s: %w", name, err)
		}
		slog.Info("imported wallet key", "account", acc.Address.Hex(), "source", name)
		imported++
	}
	return imported, nil
}
