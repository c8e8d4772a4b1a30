package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Mainnet deployments, used when the config file does not override them.
const (
	DefaultPositionManager = "0xC36442b4a4522E871399CD717aBDD847Ab11FE88"
	DefaultFactory         = "0x1F98431c8aD98523631AE4a59f267346ea31F984"
	DefaultRouter          = "0xE592427A0AEce92De3Edee1F18E0157C05861564"
	DefaultQuoterV2        = "0x61fFE014bA17989E743c5F6cB21bF9697530B21e"
	DefaultWETH            = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL           string
	HistoryFromBlock uint64
	ScanChunkSize    uint64
	MaxRetries       int
	RetryBackoff     time.Duration
	LogLevel         string

	// Wallet aliases to addresses and key file paths.
	Wallets map[string]string
	Keys    map[string]string

	// Token aliases to ERC-20 addresses, and the subset shown by
	// `balance --all`.
	Tokens        map[string]string
	BalanceTokens []string

	PositionManager string
	Factory         string
	Router          string
	Quoter          string
	WETH            string

	CachePath   string
	PostgresDSN string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BUM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("network.from-block", uint64(12369621))
	v.SetDefault("network.scan-chunk-size", uint64(5000))
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")
	v.SetDefault("uniswap.position-manager", DefaultPositionManager)
	v.SetDefault("uniswap.factory", DefaultFactory)
	v.SetDefault("uniswap.router", DefaultRouter)
	v.SetDefault("uniswap.quoter", DefaultQuoterV2)
	v.SetDefault("uniswap.weth", DefaultWETH)
	v.SetDefault("cache", "./data/positions.db")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:           v.GetString("rpc"),
		HistoryFromBlock: v.GetUint64("network.from-block"),
		ScanChunkSize:    v.GetUint64("network.scan-chunk-size"),
		MaxRetries:       v.GetInt("max-retries"),
		RetryBackoff:     v.GetDuration("retry-backoff"),
		LogLevel:         v.GetString("log-level"),
		Wallets:          v.GetStringMapString("wallet.addresses"),
		Keys:             v.GetStringMapString("wallet.keys"),
		Tokens:           upperKeys(v.GetStringMapString("erc20.tokens")),
		BalanceTokens:    getStringSlice(v, "wallet.erc20-active"),
		PositionManager:  v.GetString("uniswap.position-manager"),
		Factory:          v.GetString("uniswap.factory"),
		Router:           v.GetString("uniswap.router"),
		Quoter:           v.GetString("uniswap.quoter"),
		WETH:             v.GetString("uniswap.weth"),
		CachePath:        v.GetString("cache"),
		PostgresDSN:      v.GetString("pg-dsn"),
	}

	return cfg, nil
}

// ResolveWallet maps a wallet alias to its address; unknown inputs pass
// through untouched so literal addresses keep working.
func (c Config) ResolveWallet(wallet string) string {
	for alias, address := range c.Wallets {
		if strings.EqualFold(wallet, alias) || strings.EqualFold(wallet, address) {
			return address
		}
	}
	return wallet
}

// WalletAlias returns the configured alias for an address, or the address
// itself when none is configured.
func (c Config) WalletAlias(address string) string {
	for alias, configured := range c.Wallets {
		if strings.EqualFold(address, configured) {
			return alias
		}
	}
	return address
}

// ResolveToken maps a token symbol to its address; unknown inputs pass
// through untouched.
func (c Config) ResolveToken(token string) string {
	if address, ok := c.Tokens[strings.ToUpper(token)]; ok {
		return address
	}
	return token
}

// KeyPath returns the private key file path for a wallet alias or address.
func (c Config) KeyPath(wallet string) (string, bool) {
	for alias, address := range c.Wallets {
		if strings.EqualFold(wallet, alias) || strings.EqualFold(wallet, address) {
			path, ok := c.Keys[alias]
			return path, ok
		}
	}
	return "", false
}

func upperKeys(in map[string]string) map[string]string {
	if len(in) == 0 {
		return in
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[strings.ToUpper(key)] = value
	}
	return out
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
