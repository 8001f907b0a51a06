// Package main provides the tomo CLI.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"github.com/tomo-ml/tomo/callbacks"
	"github.com/tomo-ml/tomo/data"
	"github.com/tomo-ml/tomo/wavefunction"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("tomo %s\n", version)
	case "train":
		if err := runTrain(os.Args[2:]); err != nil {
			log.Fatal(err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("tomo - quantum state tomography with RBM wavefunctions")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train      Train a positive-real wavefunction on measurement data")
	fmt.Println("  version    Show version")
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	var (
		dataPath   = fs.String("data", "", "measurement data file (required)")
		targetPath = fs.String("target", "", "reference wavefunction file for fidelity/KL tracking")
		outPath    = fs.String("out", "trained.tomo", "output model file")
		numHidden  = fs.Int("hidden", 0, "hidden units (default: number of sites)")
		epochs     = fs.Int("epochs", 100, "training epochs")
		posBatch   = fs.Int("pos-batch", 100, "positive-phase batch size")
		negBatch   = fs.Int("neg-batch", 100, "negative-phase batch size")
		k          = fs.Int("k", 1, "Gibbs steps per negative sample")
		lr         = fs.Float64("lr", 0.001, "learning rate")
		period     = fs.Int("period", 10, "metric evaluation period in epochs")
		seed       = fs.Uint64("seed", 1234, "random seed")
		adam       = fs.Bool("adam", false, "use Adam instead of SGD")
		timing     = fs.Bool("time", false, "report elapsed training time")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dataPath == "" {
		fs.Usage()
		return fmt.Errorf("train: -data is required")
	}

	samples, err := data.LoadObservations(*dataPath)
	if err != nil {
		return err
	}
	numSamples, numSites := samples.Dims()
	log.Printf("loaded %d measurements of %d sites", numSamples, numSites)

	hidden := *numHidden
	if hidden == 0 {
		hidden = numSites
	}

	rng := rand.New(rand.NewPCG(*seed, 0))
	psi, err := wavefunction.New(numSites, hidden, rng)
	if err != nil {
		return err
	}
	trainer := wavefunction.NewTrainer(psi, rng)

	cfg := wavefunction.DefaultFitConfig()
	cfg.Epochs = *epochs
	cfg.PosBatchSize = *posBatch
	cfg.NegBatchSize = *negBatch
	cfg.K = *k
	cfg.LR = *lr
	cfg.Time = *timing
	if *adam {
		cfg.Optimizer = wavefunction.NewAdam(trainer, wavefunction.AdamConfig{LR: *lr})
	}

	var evaluator *callbacks.MetricEvaluator
	if *targetPath != "" {
		target, err := data.LoadWavefunction(*targetPath)
		if err != nil {
			return err
		}
		space, err := wavefunction.Enumerate(numSites)
		if err != nil {
			return err
		}
		evaluator, err = callbacks.NewMetricEvaluator(*period,
			[]callbacks.Metric{
				{Name: "Fidelity", Func: callbacks.Fidelity},
				{Name: "KL", Func: callbacks.KLDivergence},
			},
			callbacks.Options{Target: target, Space: space},
		)
		if err != nil {
			return err
		}
		cfg.Callbacks = []wavefunction.Callback{evaluator, progress{evaluator}}
	}

	if err := trainer.Fit(samples, cfg); err != nil {
		return err
	}

	if evaluator != nil {
		for _, name := range evaluator.Names() {
			if last, err := evaluator.Last(name); err == nil {
				log.Printf("final %s: %.6f", name, last)
			}
		}
	}

	if err := psi.Save(*outPath); err != nil {
		return err
	}
	log.Printf("saved model to %s", *outPath)
	return nil
}

// progress logs metric values as they are recorded.
type progress struct {
	evaluator *callbacks.MetricEvaluator
}

func (p progress) OnEpochEnd(_ wavefunction.View, epoch int) error {
	if epoch%p.evaluator.Period() != 0 {
		return nil
	}
	line := fmt.Sprintf("epoch %d:", epoch)
	for _, name := range p.evaluator.Names() {
		value, err := p.evaluator.Last(name)
		if err != nil {
			continue
		}
		line += fmt.Sprintf(" %s=%.6f", name, value)
	}
	log.Print(line)
	return nil
}
