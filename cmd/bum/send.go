package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adellantado/uniswap-manager/internal/manager"
)

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send TOKEN=AMOUNT FROM_WALLET TO",
		Short: "Transfer ETH or an ERC-20 token",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			token, amount, err := manager.SplitTokenAmount(args[0])
			if err != nil {
				return err
			}
			if amount == nil {
				return fmt.Errorf("amount is required, e.g. ETH=0.1")
			}
			from, err := app.walletAddress(args[1])
			if err != nil {
				return err
			}
			to, err := app.walletAddress(args[2])
			if err != nil {
				return err
			}

			balances := manager.NewBalanceManager(app.client, app.cfg, nil, app.logger)
			plan, err := balances.SendPlan(app.ctx, from, to, token, amount)
			if err != nil {
				return err
			}
			return executePlan(app, cmd, plan, args[1])
		},
	}
	addExecutionFlags(cmd)
	return cmd
}

func newSendRawTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send-raw-tx RAW_HEX",
		Short: "Broadcast a pre-signed raw transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			hash, err := app.client.SendRawTransaction(app.ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("sent: %s\n", hash.Hex())
			return nil
		},
	}
}
