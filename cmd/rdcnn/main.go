// Package main provides the rdcnn command-line tool.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/radarml/rdcnn/backend/cpu"
	"github.com/radarml/rdcnn/internal/nn"
	"github.com/radarml/rdcnn/models"
	"github.com/radarml/rdcnn/summary"
	"github.com/radarml/rdcnn/tensor"
)

const version = "v0.1.0"

func main() {
	log.SetFlags(0)
	log.SetPrefix("rdcnn: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("rdcnn %s\n", version)
	case "summary":
		err = runSummary(os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	case "forward":
		err = runForward(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func usage() {
	fmt.Println("rdcnn - convolutional networks for radar range-Doppler maps")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  summary    Print the model architecture")
	fmt.Println("  init       Write freshly initialized weights")
	fmt.Println("  forward    Run the model on random input")
}

type modelFlags struct {
	config  string
	variant string
}

func (f *modelFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.config, "config", "", "YAML model configuration")
	fs.StringVar(&f.variant, "variant", "ri", "model variant: ri (real/imaginary) or mag (magnitude)")
}

func (f *modelFlags) build() (*models.RICNN, error) {
	var cfg models.Config
	if f.config != "" {
		var err error
		cfg, err = models.LoadConfig(f.config)
		if err != nil {
			return nil, err
		}
	}

	backend := cpu.New()
	switch f.variant {
	case "ri":
		return models.NewRICNN(cfg, backend)
	case "mag":
		m, err := models.NewMagCNNFromConfig(cfg, backend)
		if err != nil {
			return nil, err
		}
		return m.RICNN, nil
	default:
		return nil, fmt.Errorf("unknown variant %q", f.variant)
	}
}

func runSummary(args []string) error {
	var mf modelFlags
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	mf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	model, err := mf.build()
	if err != nil {
		return err
	}
	fmt.Print(model)

	data, err := model.Config().YAML()
	if err != nil {
		return err
	}
	fmt.Printf("\n%s", data)
	return nil
}

func runInit(args []string) error {
	var mf modelFlags
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	mf.register(fs)
	out := fs.String("out", "weights.safetensors", "output weights file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	model, err := mf.build()
	if err != nil {
		return err
	}
	if err := model.Save(*out); err != nil {
		return err
	}
	log.Printf("wrote %d parameters to %s", model.NumParameters(), *out)
	return nil
}

func runForward(args []string) error {
	var mf modelFlags
	fs := flag.NewFlagSet("forward", flag.ContinueOnError)
	mf.register(fs)
	weights := fs.String("weights", "", "SafeTensors weights to load")
	batch := fs.Int("batch", 1, "batch size")
	eval := fs.Bool("eval", false, "use batch-norm running statistics")
	histograms := fs.String("histograms", "", "directory for per-stage histogram events")
	calls := fs.Int("calls", 1, "number of forward passes")
	seed := fs.Int64("seed", 0, "input seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *batch < 1 || *calls < 1 {
		return errors.New("batch and calls must be positive")
	}

	model, err := mf.build()
	if err != nil {
		return err
	}
	if *weights != "" {
		if err := model.Load(*weights); err != nil {
			return err
		}
	}
	if *eval {
		model.SetTraining(false)
	}

	if *histograms != "" {
		w, err := summary.NewCSVWriter(*histograms)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := w.Close(); cerr != nil {
				log.Printf("close events file: %v", cerr)
			}
		}()
		model.SetSummaryWriter(w)
		model.SetLoggingActive(true)
		log.Printf("writing histograms to %s", w.Path())
	}

	in := model.Config().InputSize
	rng := nn.NewRNG(*seed)
	var out *tensor.Tensor
	for i := 0; i < *calls; i++ {
		x := tensor.Randn(tensor.Shape{*batch, in[0], in[1], in[2]}, rng)
		out = model.Forward(x)
	}

	h := summary.NewHistogram("output", out.Data(), model.ForwardCalls()-1, summary.DefaultBins)
	fmt.Printf("output shape: %v\n", out.Shape())
	fmt.Printf("min=%.6g max=%.6g mean=%.6g std=%.6g\n", h.Min, h.Max, h.Mean, h.StdDev)
	fmt.Printf("forward calls: %d\n", model.ForwardCalls())
	return nil
}
