package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adellantado/uniswap-manager/internal/manager"
	"github.com/adellantado/uniswap-manager/internal/pricefeed"
	"github.com/adellantado/uniswap-manager/internal/store"
	"github.com/adellantado/uniswap-manager/internal/store/postgres"
)

func newPositionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions [WALLET...]",
		Short: "List and value Uniswap V3 positions",
		RunE:  runPositions,
	}
	cmd.Flags().Bool("record", false, "persist valuations to Postgres (requires pg-dsn)")
	cmd.Flags().String("out", "", "append valuations to a JSONL file")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for --record")
	return cmd
}

func runPositions(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	wallets := args
	if len(wallets) == 0 {
		for alias := range app.cfg.Wallets {
			wallets = append(wallets, alias)
		}
	}
	if len(wallets) == 0 {
		return fmt.Errorf("no wallets given and none configured")
	}

	cache, err := store.OpenCache(app.cfg.CachePath)
	if err != nil {
		app.logger.Warn("position cache unavailable", zap.Error(err))
		cache = nil
	} else {
		defer cache.Close()
	}

	prices := pricefeed.NewClient(app.logger)
	uniswap := manager.NewUniswapManager(app.client, app.cfg, cache, prices, app.logger)

	capturedAt := time.Now().UTC()
	var records []store.ValuationRecord

	for _, arg := range wallets {
		wallet, err := app.walletAddress(arg)
		if err != nil {
			return err
		}

		reports, err := uniswap.ListPositions(app.ctx, wallet)
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s): %d position(s)\n", app.cfg.WalletAlias(wallet.Hex()), wallet.Hex(), len(reports))
		for _, report := range reports {
			printReport(report)
			records = append(records, manager.ToRecord(report, capturedAt))
		}
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := store.NewJsonlExporter(out).PutRecordBatch(records); err != nil {
			return err
		}
		app.logger.Info("valuations exported", zap.String("out", out), zap.Int("records", len(records)))
	}

	if record, _ := cmd.Flags().GetBool("record"); record {
		pg, err := postgres.NewStore(app.ctx, app.cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.EnsureSchema(app.ctx); err != nil {
			return err
		}
		if err := pg.UpsertValuations(app.ctx, records); err != nil {
			return err
		}
		app.logger.Info("valuations recorded", zap.Int("records", len(records)))
	}

	return nil
}

func printReport(report manager.PositionReport) {
	v := report.Valuation

	glyph := "🟢"
	switch {
	case v.Closed:
		glyph = "⚪️"
	case !v.Active:
		glyph = "🔴"
	}

	fmt.Printf("%s #%s %s/%s %.2f%%\n", glyph, report.TokenID,
		report.Token0.Symbol, report.Token1.Symbol, float64(report.FeeTier)/10000)
	fmt.Printf("   range:  %s - %s %s per %s\n",
		v.PriceLower.FloatString(6), v.PriceUpper.FloatString(6),
		report.Token1.Symbol, report.Token0.Symbol)
	fmt.Printf("   locked: %s %s + %s %s\n",
		v.Locked0.FloatString(6), report.Token0.Symbol,
		v.Locked1.FloatString(6), report.Token1.Symbol)
	fmt.Printf("   fees:   %s %s + %s %s\n",
		v.UncollectedFee0.FloatString(8), report.Token0.Symbol,
		v.UncollectedFee1.FloatString(8), report.Token1.Symbol)

	if v.TotalValueUSD != nil && v.TotalFeesUSD != nil {
		fmt.Printf("   value:  $%s (+$%s fees)\n",
			v.TotalValueUSD.FloatString(2), v.TotalFeesUSD.FloatString(2))
	}
	if v.AgeKnown {
		fmt.Printf("   age:    %d day(s), APY %s%%\n", v.AgeDays, v.APYPercent.FloatString(2))
	} else {
		fmt.Printf("   age:    unknown\n")
	}
}
