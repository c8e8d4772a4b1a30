package main

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adellantado/uniswap-manager/internal/manager"
	"github.com/adellantado/uniswap-manager/internal/pricefeed"
	"github.com/adellantado/uniswap-manager/internal/store"
)

func addExecutionFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("send", false, "sign and broadcast the transactions")
	cmd.Flags().Bool("raw", false, "sign and print raw transaction hex without broadcasting")
}

// executePlan runs a transaction plan in the selected mode. The default is
// a dry run that only prints gas estimates.
func executePlan(app *app, cmd *cobra.Command, plan *manager.TxPlan, walletArg string) error {
	executor := manager.NewExecutor(app.client, app.logger)

	send, _ := cmd.Flags().GetBool("send")
	raw, _ := cmd.Flags().GetBool("raw")
	if send && raw {
		return fmt.Errorf("--send and --raw are mutually exclusive")
	}

	switch {
	case send:
		signer, err := app.signer(walletArg)
		if err != nil {
			return err
		}
		hashes, err := executor.Send(app.ctx, plan, signer)
		for i, hash := range hashes {
			fmt.Printf("%-28s %s\n", plan.Steps[i].Label+":", hash.Hex())
		}
		return err
	case raw:
		signer, err := app.signer(walletArg)
		if err != nil {
			return err
		}
		rawTxs, err := executor.RawHex(app.ctx, plan, signer)
		if err != nil {
			return err
		}
		for i, tx := range rawTxs {
			fmt.Printf("%-28s %s\n", plan.Steps[i].Label+":", tx)
		}
		return nil
	default:
		estimates, err := executor.Estimate(app.ctx, plan)
		if err != nil {
			return err
		}
		var total uint64
		for _, estimate := range estimates {
			fmt.Printf("%-28s %d gas\n", estimate.Label+":", estimate.Gas)
			total += estimate.Gas
		}
		fmt.Printf("%-28s %d gas\n", "total:", total)
		return nil
	}
}

func (a *app) uniswapManager() (*manager.UniswapManager, func()) {
	cache, err := store.OpenCache(a.cfg.CachePath)
	cleanup := func() {}
	if err != nil {
		a.logger.Warn("position cache unavailable", zap.Error(err))
		cache = nil
	} else {
		cleanup = func() { cache.Close() }
	}
	prices := pricefeed.NewClient(a.logger)
	return manager.NewUniswapManager(a.client, a.cfg, cache, prices, a.logger), cleanup
}

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap IN[=AMOUNT] OUT[=AMOUNT] WALLET",
		Short: "Swap tokens at the best quoted fee tier",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			tokenIn, amountIn, err := manager.SplitTokenAmount(args[0])
			if err != nil {
				return err
			}
			tokenOut, amountOut, err := manager.SplitTokenAmount(args[1])
			if err != nil {
				return err
			}
			wallet, err := app.walletAddress(args[2])
			if err != nil {
				return err
			}

			uniswap, cleanup := app.uniswapManager()
			defer cleanup()

			swap, err := uniswap.Swap(app.ctx, wallet, tokenIn, amountIn, tokenOut, amountOut)
			if err != nil {
				return err
			}

			fmt.Printf("best tier %.2f%%: %s %s -> %s %s\n",
				float64(swap.FeeTier)/10000,
				swap.AmountIn.FloatString(6), swap.TokenIn.Symbol,
				swap.AmountOut.FloatString(6), swap.TokenOut.Symbol)
			return executePlan(app, cmd, swap.Plan, args[2])
		},
	}
	addExecutionFlags(cmd)
	return cmd
}

func newOpenPositionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open-position TOKEN0=AMOUNT TOKEN1=AMOUNT FEE WALLET",
		Short: "Mint a new liquidity position around the current price",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			token0, amount0, err := manager.SplitTokenAmount(args[0])
			if err != nil {
				return err
			}
			token1, amount1, err := manager.SplitTokenAmount(args[1])
			if err != nil {
				return err
			}
			if amount0 == nil || amount1 == nil {
				return fmt.Errorf("both tokens need an amount, e.g. WETH=0.5 USDC=1000")
			}
			fee, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid fee tier %q", args[2])
			}
			wallet, err := app.walletAddress(args[3])
			if err != nil {
				return err
			}

			uniswap, cleanup := app.uniswapManager()
			defer cleanup()

			plan, err := uniswap.OpenPosition(app.ctx, wallet, token0, amount0, token1, amount1, uint32(fee))
			if err != nil {
				return err
			}
			return executePlan(app, cmd, plan, args[3])
		},
	}
	addExecutionFlags(cmd)
	return cmd
}

func newAddLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-liquidity POSITION_ID AMOUNT0 AMOUNT1 WALLET",
		Short: "Add liquidity to an existing position",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			tokenID, err := parseTokenID(args[0])
			if err != nil {
				return err
			}
			amount0, err := manager.ParseDecimal(args[1])
			if err != nil {
				return err
			}
			amount1, err := manager.ParseDecimal(args[2])
			if err != nil {
				return err
			}
			wallet, err := app.walletAddress(args[3])
			if err != nil {
				return err
			}

			uniswap, cleanup := app.uniswapManager()
			defer cleanup()

			plan, err := uniswap.AddLiquidity(app.ctx, wallet, tokenID, amount0, amount1)
			if err != nil {
				return err
			}
			return executePlan(app, cmd, plan, args[3])
		},
	}
	addExecutionFlags(cmd)
	return cmd
}

func newRemoveLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-liquidity POSITION_ID PERCENT WALLET",
		Short: "Remove a percentage of a position's liquidity",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			tokenID, err := parseTokenID(args[0])
			if err != nil {
				return err
			}
			percent, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid percent %q", args[1])
			}
			wallet, err := app.walletAddress(args[2])
			if err != nil {
				return err
			}

			uniswap, cleanup := app.uniswapManager()
			defer cleanup()

			plan, err := uniswap.RemoveLiquidity(app.ctx, wallet, tokenID, percent)
			if err != nil {
				return err
			}
			return executePlan(app, cmd, plan, args[2])
		},
	}
	addExecutionFlags(cmd)
	return cmd
}

func newClosePositionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close-position POSITION_ID WALLET",
		Short: "Remove all liquidity, collect, and burn a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			tokenID, err := parseTokenID(args[0])
			if err != nil {
				return err
			}
			wallet, err := app.walletAddress(args[1])
			if err != nil {
				return err
			}

			uniswap, cleanup := app.uniswapManager()
			defer cleanup()

			plan, err := uniswap.ClosePosition(app.ctx, wallet, tokenID)
			if err != nil {
				return err
			}
			return executePlan(app, cmd, plan, args[1])
		},
	}
	addExecutionFlags(cmd)
	return cmd
}

func newCollectFeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect-fees POSITION_ID WALLET",
		Short: "Collect everything a position owes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			tokenID, err := parseTokenID(args[0])
			if err != nil {
				return err
			}
			wallet, err := app.walletAddress(args[1])
			if err != nil {
				return err
			}

			uniswap, cleanup := app.uniswapManager()
			defer cleanup()

			plan, err := uniswap.CollectFees(app.ctx, wallet, tokenID)
			if err != nil {
				return err
			}
			return executePlan(app, cmd, plan, args[1])
		},
	}
	addExecutionFlags(cmd)
	return cmd
}

func parseTokenID(arg string) (*big.Int, error) {
	tokenID, ok := new(big.Int).SetString(arg, 10)
	if !ok || tokenID.Sign() < 0 {
		return nil, fmt.Errorf("invalid position id %q", arg)
	}
	return tokenID, nil
}
