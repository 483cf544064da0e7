package wallet

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskbounty/pkg/cerr"
	"github.com/kazz187/taskbounty/pkg/storage"
)

type fakeChain struct {
	mu sync.Mutex
	id *big.Int
}

func (c *fakeChain) ChainID(context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.id), nil
}

func (c *fakeChain) set(id int64) {
	c.mu.Lock()
	c.id = big.NewInt(id)
	c.mu.Unlock()
}

func newAccountDir(t *testing.T, passphrase string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
	acc, err := ks.NewAccount(passphrase)
	require.NoError(t, err)
	return dir, acc.Address.Hex()
}

func TestKeystore_ConnectNoKeys(t *testing.T) {
	w := NewKeystore(t.TempDir(), "pw", &fakeChain{id: big.NewInt(296)}, WithLightScrypt())
	_, err := w.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNoWalletInstalled)
}

func TestKeystore_ConnectWrongPassphrase(t *testing.T) {
	dir, _ := newAccountDir(t, "right")
	w := NewKeystore(dir, "wrong", &fakeChain{id: big.NewInt(296)}, WithLightScrypt())
	_, err := w.Connect(context.Background())
	assert.ErrorIs(t, err, ErrUserRejected)
	assert.Empty(t, w.Account())
}

func TestKeystore_ConnectAndSign(t *testing.T) {
	dir, addr := newAccountDir(t, "pw")
	w := NewKeystore(dir, "pw", &fakeChain{id: big.NewInt(296)}, WithLightScrypt())

	_, err := w.TransactOpts(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)

	got, err := w.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, addr, got)
	assert.Equal(t, addr, w.Account())

	opts, err := w.TransactOpts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, addr, opts.From.Hex())
}

func TestKeystore_ChainPolling(t *testing.T) {
	dir, _ := newAccountDir(t, "pw")
	chain := &fakeChain{id: big.NewInt(296)}
	w := NewKeystore(dir, "pw", chain, WithLightScrypt(), WithChainPollInterval(10*time.Millisecond))
	_, err := w.Connect(context.Background())
	require.NoError(t, err)

	changed := make(chan string, 1)
	w.OnChainChanged(func(id string) {
		select {
		case changed <- id:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	chain.set(1)
	select {
	case id := <-changed:
		assert.Equal(t, "1", id)
	case <-time.After(5 * time.Second):
		t.Fatal("chain change not observed")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestKeystore_ImportKeys(t *testing.T) {
	srcDir, addr := newAccountDir(t, "pw")
	src, err := storage.NewLocalStorage(srcDir)
	require.NoError(t, err)

	w := NewKeystore(t.TempDir(), "pw", &fakeChain{id: big.NewInt(296)}, WithLightScrypt())
	n, err := w.ImportKeys(context.Background(), src, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = w.ImportKeys(context.Background(), src, "")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "already imported keys are skipped")

	got, err := w.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}

type missingStorage struct{}

func (missingStorage) List(context.Context, string) ([]string, error) {
	return []string{"gone.json"}, nil
}

func (missingStorage) Read(context.Context, string) ([]byte, error) {
	return nil, storage.ErrNotFound
}

func TestKeystore_ImportKeys_MissingFile(t *testing.T) {
	w := NewKeystore(t.TempDir(), "pw", &fakeChain{id: big.NewInt(296)}, WithLightScrypt())
	_, err := w.ImportKeys(context.Background(), missingStorage{}, "")
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func walletFor(t *testing.T, ks *keystore.KeyStore, acc accounts.Account) accounts.Wallet {
	t.Helper()
	for _, wl := range ks.Wallets() {
		if wl.Contains(acc) {
			return wl
		}
	}
	t.Fatalf("no wallet for %s", acc.Address.Hex())
	return nil
}

func TestKeystore_AccountDropAndArrival(t *testing.T) {
	dir, addr := newAccountDir(t, "pw")
	w := NewKeystore(dir, "pw", &fakeChain{id: big.NewInt(296)}, WithLightScrypt())

	var got [][]string
	w.OnAccountsChanged(func(accs []string) { got = append(got, accs) })

	ks := w.KeyStore()
	early, err := ks.NewAccount("pw")
	require.NoError(t, err)
	w.handleWalletEvent(accounts.WalletEvent{Wallet: walletFor(t, ks, early), Kind: accounts.WalletArrived})
	assert.Empty(t, w.Account(), "arrivals before connect are ignored")
	require.NoError(t, ks.Delete(early, "pw"))

	connected, err := w.Connect(context.Background())
	require.NoError(t, err)
	require.Equal(t, addr, connected)
	accA := ks.Accounts()[0]

	spare, err := ks.NewAccount("pw")
	require.NoError(t, err)
	w.handleWalletEvent(accounts.WalletEvent{Wallet: walletFor(t, ks, spare), Kind: accounts.WalletArrived})
	assert.Equal(t, addr, w.Account(), "a held account is kept")
	assert.Empty(t, got)
	require.NoError(t, ks.Delete(spare, "pw"))

	walletA := walletFor(t, ks, accA)
	require.NoError(t, ks.Delete(accA, "pw"))
	w.handleWalletEvent(accounts.WalletEvent{Wallet: walletA, Kind: accounts.WalletDropped})
	assert.Empty(t, w.Account())
	require.Equal(t, [][]string{{}}, got)

	accB, err := ks.NewAccount("pw")
	require.NoError(t, err)
	w.handleWalletEvent(accounts.WalletEvent{Wallet: walletFor(t, ks, accB), Kind: accounts.WalletArrived})
	assert.Equal(t, accB.Address.Hex(), w.Account())
	assert.Equal(t, [][]string{{}, {accB.Address.Hex()}}, got)
}
