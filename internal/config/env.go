package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3200"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	APIKey   string `envconfig:"API_KEY" required:"true"`
}

type ChainEnv struct {
	RPCURL          string `envconfig:"RPC_URL" default:"https://testnet.hashio.io/api"`
	RegistryAddress string `envconfig:"REGISTRY_ADDRESS" default:"0x00000000000000000000000000000000005976fc"`
	// ValueDecimals is the precision of the payable value sent on create.
	ValueDecimals     int           `envconfig:"VALUE_DECIMALS" default:"18"`
	ChainPollInterval time.Duration `envconfig:"CHAIN_POLL_INTERVAL" default:"5s"`
	ReceiptTimeout    time.Duration `envconfig:"RECEIPT_TIMEOUT" default:"2m"`
}

type WalletEnv struct {
	Type        string `envconfig:"WALLET_TYPE" default:"keystore"`
	KeystoreDir string `envconfig:"KEYSTORE_DIR" default:".taskbounty/keystore"`
	Passphrase  string `envconfig:"KEYSTORE_PASSPHRASE"`
	// Static wallet accounts (used when Type == "static")
	StaticAccounts []string `envconfig:"STATIC_ACCOUNTS"`
	StaticChainID  string   `envconfig:"STATIC_CHAIN_ID" default:"296"`
	// Key import source: none, local or s3
	ImportType   string `envconfig:"KEY_IMPORT_TYPE" default:"none"`
	ImportDir    string `envconfig:"KEY_IMPORT_DIR"`
	ImportBucket string `envconfig:"KEY_IMPORT_S3_BUCKET"`
	ImportPrefix string `envconfig:"KEY_IMPORT_S3_PREFIX" default:"taskbounty/keys/"`
	ImportRegion string `envconfig:"KEY_IMPORT_S3_REGION" default:"ap-northeast-1"`
}

type RegistryEnv struct {
	Type        string `envconfig:"REGISTRY_TYPE" default:"evm"`
	FixturePath string `envconfig:"REGISTRY_FIXTURE"`
}

type VAPIDEnv struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDContact    string `envconfig:"VAPID_CONTACT" default:"mailto:admin@example.com"`
}

type Env struct {
	BaseEnv
	ChainEnv
	WalletEnv
	RegistryEnv
	VAPIDEnv
}

const namespace = "TASKBOUNTY"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) IsLocal() bool {
	return e.Env == "local"
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}
