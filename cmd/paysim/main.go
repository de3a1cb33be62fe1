// Command paysim runs the mock payment simulator offline and reports the observed
// success rate against the configured one.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/mockpay"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "paysim"})

	runs := flag.Int("n", 1000, "number of payments to simulate")
	rate := flag.Float64("rate", 0.8, "success probability")
	seed := flag.Uint64("seed", 0, "rng seed; 0 draws a random one")
	method := flag.String("method", string(mockpay.MethodUPI), "payment method to submit with")
	flag.Parse()

	ctx := logg.WithFields(context.Background(), map[string]any{
		"runs": *runs,
		"rate": *rate,
		"seed": *seed,
	})

	if *runs <= 0 {
		fmt.Fprintln(os.Stderr, "-n must be positive")
		os.Exit(1)
	}
	m, err := mockpay.ParseMethod(*method)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -method: %v\n", err)
		os.Exit(1)
	}

	sim, err := mockpay.NewSimulator(config.MockPayConfig{SuccessRate: *rate, Seed: *seed})
	if err != nil {
		logg.Error(ctx, "failed to build simulator", err)
		os.Exit(1)
	}

	successes := 0
	for i := 0; i < *runs; i++ {
		p := sim.Start(fmt.Sprintf("sim-%d", i), decimal.NewFromInt(1), nil)
		if err := p.SelectMethod(m, nil); err != nil {
			logg.Error(ctx, "select method failed", err)
			os.Exit(1)
		}
		res, err := p.Submit(ctx)
		if err != nil {
			logg.Error(ctx, "submit failed", err)
			os.Exit(1)
		}
		if res.Status == mockpay.StatusSuccess {
			successes++
		}
	}

	n := float64(*runs)
	observed := float64(successes) / n
	sigma := math.Sqrt(*rate * (1 - *rate) / n)
	within := math.Abs(observed-*rate) <= 3*sigma

	fmt.Printf("runs=%d successes=%d observed=%.4f expected=%.4f sigma=%.4f within_3sigma=%t\n",
		*runs, successes, observed, *rate, sigma, within)
	if !within {
		os.Exit(2)
	}
}
