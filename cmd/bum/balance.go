package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adellantado/uniswap-manager/internal/manager"
	"github.com/adellantado/uniswap-manager/internal/pricefeed"
)

func newBalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance WALLET [TOKEN...]",
		Short: "Show ETH and ERC-20 balances of a wallet",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBalance,
	}
	cmd.Flags().Bool("all", false, "include every configured visible token")
	return cmd
}

func runBalance(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	wallet, err := app.walletAddress(args[0])
	if err != nil {
		return err
	}

	symbols := args[1:]
	if all, _ := cmd.Flags().GetBool("all"); all {
		symbols = app.cfg.BalanceTokens
	}

	prices := pricefeed.NewClient(app.logger)
	balances := manager.NewBalanceManager(app.client, app.cfg, prices, app.logger)

	rows, err := balances.Balances(app.ctx, wallet, symbols)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", args[0], wallet.Hex())
	for _, row := range rows {
		if row.USD != nil {
			fmt.Printf("  %-8s %s  ($%s)\n", row.Symbol, row.Amount.FloatString(6), row.USD.FloatString(2))
		} else {
			fmt.Printf("  %-8s %s\n", row.Symbol, row.Amount.FloatString(6))
		}
	}
	return nil
}

func newPriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price SYMBOL",
		Short: "Show the USD price of a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			price, err := pricefeed.NewClient(app.logger).USDPrice(app.ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: $%s\n", args[0], price.FloatString(2))
			return nil
		},
	}
}

func newNetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "net",
		Short: "Show network connection details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			chainID, err := app.client.GetChainID(app.ctx)
			if err != nil {
				return err
			}
			gasPrice, err := app.client.GasPrice(app.ctx)
			if err != nil {
				return err
			}
			version, err := app.client.ClientVersion(app.ctx)
			if err != nil {
				return err
			}
			latest, err := app.client.LatestBlockNumber(app.ctx)
			if err != nil {
				return err
			}

			fmt.Printf("connected:    %s\n", app.cfg.RPCURL)
			fmt.Printf("client:       %s\n", version)
			fmt.Printf("chain id:     %s\n", chainID)
			fmt.Printf("latest block: %d\n", latest)
			fmt.Printf("gas price:    %s gwei\n", manager.WeiPerGwei(gasPrice).FloatString(2))
			return nil
		},
	}
}
