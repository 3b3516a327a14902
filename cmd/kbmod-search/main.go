// Command kbmod-search demonstrates the grid-search pipeline end to end
// against synthetic fakedata input. It is demo glue, not a feature of the
// core engine.
package main

import (
	"fmt"
	"os"

	"kbmod/pkg/config"
	"kbmod/pkg/fakedata"
	"kbmod/pkg/search"
)

func run(args []string) error {
	cfgPath := ""
	if len(args) > 1 {
		cfgPath = args[1]
	}

	var cfg *config.SearchConfiguration
	var err error
	if cfgPath != "" {
		cfg, err = config.LoadSearchConfiguration(cfgPath)
		if err != nil {
			return err
		}
	} else {
		cfg = config.NewSearchConfiguration()
	}

	psf := search.NewGaussianPSF(1.0)

	fmt.Printf("building synthetic image stack...\n")
	stack, err := fakedata.MakeFakeImageStack(64, 64, 10, 20, 20, 1.0, 0.0, 100, 1.0, 1.0, psf, 42)
	if err != nil {
		return err
	}

	ss := search.NewStackSearch(stack)
	ss.SetLogger(search.NewStdLogger())
	ss.SetMinObs(cfg.MinObservations)
	ss.SetMinLH(cfg.MinLH)
	ss.EnableGPUEncoding(cfg.EncodingBytes)
	if cfg.SigmaGEnabled {
		ss.EnableGPUSigmaGFilter(cfg.SigmaGPercentileL, cfg.SigmaGPercentileH, cfg.SigmaGCoefficient, cfg.MinLH)
	}

	fmt.Printf("preparing psi/phi...\n")
	if err := ss.PreparePsiPhi(); err != nil {
		return err
	}

	fmt.Printf("searching %d x %d grid over %dx%d start pixels...\n", cfg.AngleSteps, cfg.VelocitySteps, stack.Width(), stack.Height())
	if err := ss.Search(cfg.AngleSteps, cfg.VelocitySteps, cfg.MinAngle, cfg.MaxAngle, cfg.MinVelocity, cfg.MaxVelocity, cfg.MinObservations); err != nil {
		return err
	}

	results, err := ss.GetResults(0, 5)
	if err != nil {
		return err
	}
	fmt.Printf("top %d results:\n", len(results))
	for i, t := range results {
		fmt.Printf("  %d: x=%d y=%d vx=%.3f vy=%.3f lh=%.3f obs=%d\n", i, t.X, t.Y, t.VX, t.VY, t.LH, t.ObsCount)
	}
	return nil
}

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "kbmod-search: %v\n", err)
		os.Exit(1)
	}
}
