package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"facenet/internal/config"
	"facenet/internal/dataset"
	"facenet/internal/trainer"
	"facenet/internal/viz"
	"facenet/internal/web"
)

const defaultCSV = "./training-data/faces_dataset_10x10_varied_TEST.csv"

func usage() {
	fmt.Fprintln(os.Stderr, "usage: facenet <train|visualize|serve> [flags]")
	fmt.Fprintln(os.Stderr, "  train                                  train and test a model")
	fmt.Fprintln(os.Stderr, "  visualize [-csv f] generate            write HTML and text renderings")
	fmt.Fprintln(os.Stderr, "  visualize [-csv f] stats               print dataset statistics")
	fmt.Fprintln(os.Stderr, "  visualize [-csv f] display [row]       print one grid")
	fmt.Fprintln(os.Stderr, "  serve [-csv f] [-addr :8080]           browse a dataset and training runs")
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "visualize":
		err = runVisualize(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

// configFlags registers the flags shared by train and serve.
func configFlags(fs *flag.FlagSet) (*string, *config.Overrides) {
	cfgPath := fs.String("config", "configs/faces.yaml", "Path to YAML config (empty for defaults)")
	o := &config.Overrides{}
	fs.StringVar(&o.DataDir, "data-dir", "", "Override dataset directory")
	fs.StringVar(&o.TrainPath, "train", "", "Override training CSV")
	fs.StringVar(&o.TestPath, "test", "", "Override test CSV")
	fs.StringVar(&o.Model, "model", "", "Model kind: network or perceptron")
	fs.IntVar(&o.Epochs, "epochs", 0, "Number of training epochs")
	fs.Float64Var(&o.LearningRate, "lr", 0, "Learning rate")
	fs.Int64Var(&o.Seed, "seed", 0, "PRNG seed")
	fs.StringVar(&o.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&o.PlotPath, "plot", "", "Write the per-epoch error curve to this SVG")
	return cfgPath, o
}

func loadConfig(path string, o *config.Overrides) (*config.Config, *slog.Logger, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, nil, errors.Wrap(err, "load config")
		}
	}
	cfg.ApplyOverrides(*o)
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid config")
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfgPath, overrides := configFlags(fs)
	predict := fs.String("predict", "", "Comma separated images to classify after training")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := loadConfig(*cfgPath, overrides)
	if err != nil {
		return err
	}
	runCfg, err := trainer.FromConfig(cfg)
	if err != nil {
		return err
	}
	runCfg.Logger = logger
	if *predict != "" {
		runCfg.PredictImages = strings.Split(*predict, ",")
	}

	report, err := trainer.Run(runCfg)
	if err != nil {
		return err
	}
	fmt.Printf("correct=%d accuracy=%.2f%% avg_error=%.4f total_error=%.4f\n",
		report.Test.CorrectPredictions,
		report.Test.Accuracy,
		report.Test.AvgTestError,
		report.Test.TotalTestError,
	)
	for _, p := range report.Predictions {
		fmt.Printf("%s prediction=%.4f face=%t\n", p.Path, p.Prediction, p.Face)
	}
	return nil
}

func loadGrids(path string) ([]viz.Grid, error) {
	samples, err := dataset.LoadCSV(path)
	if err != nil {
		return nil, err
	}
	return viz.GridsFromSamples(samples, dataset.GridSize)
}

func runVisualize(args []string) error {
	fs := flag.NewFlagSet("visualize", flag.ExitOnError)
	csvPath := fs.String("csv", defaultCSV, "Dataset CSV to render")
	outDir := fs.String("out", "./visualizations", "Output directory for generate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	command := "generate"
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}
	row := 1
	if command == "display" && fs.NArg() > 1 {
		if v, err := strconv.Atoi(fs.Arg(1)); err == nil && v > 0 {
			row = v
		}
	}

	grids, err := loadGrids(*csvPath)
	if err != nil {
		return err
	}
	switch command {
	case "generate":
		st := viz.ComputeStats(grids)
		log.Printf("images=%d faces=%d non_faces=%d", st.Total, st.Faces, st.NonFaces)
		written, err := viz.Generate(*outDir, grids)
		if err != nil {
			return err
		}
		for _, path := range written {
			log.Printf("wrote %s", path)
		}
		return nil
	case "stats":
		return viz.WriteStats(os.Stdout, viz.ComputeStats(grids))
	case "display":
		return viz.Display(os.Stdout, grids, row)
	default:
		usage()
		return errors.Errorf("unknown visualize command %q", command)
	}
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath, overrides := configFlags(fs)
	csvPath := fs.String("csv", defaultCSV, "Dataset CSV to browse")
	addr := fs.String("addr", ":8080", "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := loadConfig(*cfgPath, overrides)
	if err != nil {
		return err
	}
	grids, err := loadGrids(*csvPath)
	if err != nil {
		return err
	}
	train := func() (*trainer.Report, error) {
		runCfg, err := trainer.FromConfig(cfg)
		if err != nil {
			return nil, err
		}
		runCfg.Logger = logger
		return trainer.Run(runCfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           web.NewServer(grids, train, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	logger.Info("serving viewer", "addr", *addr, "grids", len(grids))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
