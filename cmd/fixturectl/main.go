// Command fixturectl runs GraphQL documents against an in-process copy of
// the fixture backends and prints their schemas.
package main

import (
	"context"
	"fmt"
	"os"

	"fixture-graph/internal/config"
	"fixture-graph/internal/facade"
	"fixture-graph/internal/food"
	"fixture-graph/internal/graph"
	"fixture-graph/internal/logger"
	"fixture-graph/internal/rates"
	"fixture-graph/internal/seed"
	"fixture-graph/internal/store"
	"fixture-graph/internal/wallet"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	noSeed bool
	rates  string
	base   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "fixturectl",
		Short: "Query the food and wallet fixture backends from the command line",
		Long: `fixturectl builds both fixture backends in memory, loads the sample
data unless told otherwise, and runs GraphQL documents against them without
starting a server.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Keep stdout for results.
			logger.Set(zap.NewNop())
		},
	}

	cfg := config.LoadConfig()
	root.PersistentFlags().BoolVar(&opts.noSeed, "no-seed", false, "start from empty collections")
	root.PersistentFlags().StringVar(&opts.rates, "rates", cfg.Rates, `rate table such as "USD:1,EUR:0.92"`)
	root.PersistentFlags().StringVar(&opts.base, "base", cfg.BaseCurrency, "currency Currency.rate quotes against")

	root.AddCommand(newQueryCmd(opts), newSchemaCmd(), newOpsCmd(opts))
	return root
}

// facadeFor builds domain over a fresh in-memory store.
func facadeFor(ctx context.Context, opts *options, domain string) (*facade.Facade, error) {
	var src rates.Source = rates.Identity{}
	if opts.rates != "" {
		t, err := rates.ParseTable(opts.rates)
		if err != nil {
			return nil, fmt.Errorf("--rates: %w", err)
		}
		src = t
	}

	st := store.New()
	var fx *seed.Fixtures
	if !opts.noSeed {
		var err error
		if fx, err = seed.Default(); err != nil {
			return nil, err
		}
	}

	switch domain {
	case graph.Food:
		svc := food.NewService(st)
		if fx != nil {
			if err := seed.Food(ctx, svc, fx.Food); err != nil {
				return nil, err
			}
		}
		return facade.New(domain, st, nil, food.Operations(svc))
	case graph.Wallet:
		svc := wallet.NewService(st, src)
		if fx != nil {
			if err := seed.Wallet(ctx, svc, fx.Wallet); err != nil {
				return nil, err
			}
		}
		return facade.New(domain, st, src, wallet.Operations(svc, opts.base))
	default:
		return nil, fmt.Errorf("unknown domain %q (use %s or %s)", domain, graph.Food, graph.Wallet)
	}
}
