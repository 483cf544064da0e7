// Package daemon assembles the taskbounty service from its environment and
// runs it until shutdown or a chain switch.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sourcegraph/conc/pool"

	"github.com/kazz187/taskbounty/internal/config"
	"github.com/kazz187/taskbounty/internal/eventbus"
	"github.com/kazz187/taskbounty/internal/pushnotification"
	"github.com/kazz187/taskbounty/internal/registry"
	"github.com/kazz187/taskbounty/internal/registry/evm"
	"github.com/kazz187/taskbounty/internal/registry/memory"
	"github.com/kazz187/taskbounty/internal/server"
	"github.com/kazz187/taskbounty/internal/session"
	"github.com/kazz187/taskbounty/internal/wallet"
	"github.com/kazz187/taskbounty/pkg/panicerr"
	"github.com/kazz187/taskbounty/pkg/storage"
)

// ErrReload is returned by Start when the wallet switched chains and the
// process has to start over.
var ErrReload = errors.New("chain changed, reload required")

const shutdownTimeout = 10 * time.Second

type Daemon struct {
	env        *config.Env
	bus        *eventbus.Bus
	ctrl       *session.Controller
	server     *server.Server
	dispatcher *pushnotification.Dispatcher

	reloadCh chan string
	closers  []func()
}

// New wires the registry, wallet, controller and API server described by env.
func New(ctx context.Context, env *config.Env) (*Daemon, error) {
	d := &Daemon{
		env:      env,
		bus:      eventbus.New(),
		reloadCh: make(chan string, 1),
	}

	var rpc *ethclient.Client
	if env.RegistryEnv.Type == "evm" || env.WalletEnv.Type == "keystore" {
		c, err := ethclient.DialContext(ctx, env.ChainEnv.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("failed to dial rpc %s: %w", env.ChainEnv.RPCURL, err)
		}
		rpc = c
		d.closers = append(d.closers, c.Close)
	}

	w, signer, err := newWallet(ctx, env, rpc)
	if err != nil {
		d.Close()
		return nil, err
	}
	reg, err := newRegistry(env, w, rpc, signer)
	if err != nil {
		d.Close()
		return nil, err
	}

	d.ctrl = session.NewController(w, reg, d.bus,
		session.WithValueDecimals(env.ChainEnv.ValueDecimals),
		session.WithReloadHook(d.requestReload),
	)

	subs := pushnotification.NewSubscriptions()
	sender := pushnotification.NewSender(&env.VAPIDEnv, subs)
	d.dispatcher = pushnotification.NewDispatcher(d.bus, sender)
	d.server = server.NewServer(&env.BaseEnv, server.NewSessionServer(d.ctrl, d.bus, subs, &env.VAPIDEnv))
	return d, nil
}

func newWallet(ctx context.Context, env *config.Env, rpc *ethclient.Client) (wallet.Wallet, evm.Signer, error) {
	switch env.WalletEnv.Type {
	case "static":
		return wallet.NewStatic(env.WalletEnv.StaticChainID, env.WalletEnv.StaticAccounts...), nil, nil
	case "keystore":
		ks := wallet.NewKeystore(env.WalletEnv.KeystoreDir, env.WalletEnv.Passphrase, rpc,
			wallet.WithChainPollInterval(env.ChainEnv.ChainPollInterval))
		src, err := keySource(ctx, &env.WalletEnv)
		if err != nil {
			return nil, nil, err
		}
		if src != nil {
			n, err := ks.ImportKeys(ctx, src, "")
			if err != nil {
				return nil, nil, fmt.Errorf("failed to import keys: %w", err)
			}
			slog.Info("imported wallet keys", "count", n, "source", env.WalletEnv.ImportType)
		}
		return ks, ks, nil
	default:
		return nil, nil, fmt.Errorf("unknown wallet type %q", env.WalletEnv.Type)
	}
}

func keySource(ctx context.Context, env *config.WalletEnv) (storage.Storage, error) {
	switch env.ImportType {
	case "", "none":
		return nil, nil
	case "local":
		st, err := storage.NewLocalStorage(env.ImportDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open key import dir: %w", err)
		}
		return st, nil
	case "s3":
		st, err := storage.NewS3Storage(ctx, env.ImportBucket, env.ImportPrefix, env.ImportRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 key source: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown key import type %q", env.ImportType)
	}
}

func newRegistry(env *config.Env, w wallet.Wallet, rpc *ethclient.Client, signer evm.Signer) (registry.Registry, error) {
	switch env.RegistryEnv.Type {
	case "memory":
		reg := memory.New(w.Account, memory.WithValueDecimals(env.ChainEnv.ValueDecimals))
		if env.RegistryEnv.FixturePath != "" {
			fx, err := memory.LoadFixtureFile(env.RegistryEnv.FixturePath)
			if err != nil {
				return nil, err
			}
			if err := reg.Seed(fx); err != nil {
				return nil, fmt.Errorf("failed to seed registry: %w", err)
			}
		}
		return reg, nil
	case "evm":
		if signer == nil {
			return nil, errors.New("evm registry requires the keystore wallet")
		}
		return evm.New(env.ChainEnv.RegistryAddress, rpc, signer,
			evm.WithReceiptTimeout(env.ChainEnv.ReceiptTimeout))
	default:
		return nil, fmt.Errorf("unknown registry type %q", env.RegistryEnv.Type)
	}
}

func (d *Daemon) requestReload(chainID string) {
	select {
	case d.reloadCh <- chainID:
	default:
	}
}

// Start runs the API server, the wallet watcher and the push dispatcher. It
// returns nil once ctx is done, or ErrReload after a chain switch.
func (d *Daemon) Start(ctx context.Context) error {
	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(panicerr.SafeContext("http server", d.serve))
	p.Go(panicerr.SafeContext("session controller", d.ctrl.Run))
	p.Go(panicerr.SafeContext("push dispatcher", func(ctx context.Context) error {
		d.dispatcher.Start(ctx)
		return nil
	}))
	p.Go(func(ctx context.Context) error {
		select {
		case chainID := <-d.reloadCh:
			slog.Info("reloading after chain switch", "chain_id", chainID)
			return ErrReload
		case <-ctx.Done():
			return nil
		}
	})

	err := p.Wait()
	switch {
	case errors.Is(err, ErrReload):
		return ErrReload
	case err != nil && ctx.Err() == nil:
		return err
	default:
		return nil
	}
}

func (d *Daemon) serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- d.server.ListenAndServe(ctx) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		return nil
	}
}

// Close releases the node connection.
func (d *Daemon) Close() {
	for _, c := range d.closers {
		c()
	}
}
