package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/adellantado/uniswap-manager/internal/chain"
	"github.com/adellantado/uniswap-manager/internal/config"
	"github.com/adellantado/uniswap-manager/internal/manager"
)

func main() {
	root := &cobra.Command{
		Use:          "bum",
		Short:        "Uniswap V3 wallet and liquidity manager",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("rpc", "", "Ethereum RPC URL")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newBalanceCmd(),
		newPriceCmd(),
		newNetCmd(),
		newPositionsCmd(),
		newSwapCmd(),
		newOpenPositionCmd(),
		newAddLiquidityCmd(),
		newRemoveLiquidityCmd(),
		newClosePositionCmd(),
		newCollectFeesCmd(),
		newSendCmd(),
		newSendRawTxCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the pieces every command needs.
type app struct {
	ctx    context.Context
	cfg    config.Config
	logger *zap.Logger
	client *chain.Client

	stop    context.CancelFunc
	cleanup []func()
}

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.client.Close()
	a.logger.Sync()
	a.stop()
}

func loadApp(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		stop()
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	return &app{ctx: ctx, cfg: cfg, logger: logger, client: client, stop: stop}, nil
}

// walletAddress resolves a wallet alias or literal address argument.
func (a *app) walletAddress(arg string) (common.Address, error) {
	resolved := a.cfg.ResolveWallet(arg)
	if !common.IsHexAddress(resolved) {
		return common.Address{}, fmt.Errorf("unknown wallet %q", arg)
	}
	return common.HexToAddress(resolved), nil
}

// signer loads the key file configured for a wallet.
func (a *app) signer(arg string) (*manager.Signer, error) {
	path, ok := a.cfg.KeyPath(arg)
	if !ok {
		return nil, fmt.Errorf("%w %q", manager.ErrNoKey, arg)
	}
	return manager.LoadSigner(path)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
