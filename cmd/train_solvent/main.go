package main

import "context"
import "flag"
import "fmt"
import "log/slog"
import "os"
import "os/signal"
import "syscall"

import "github.com/neurlang/crystal/config"
import "github.com/neurlang/crystal/datasets/pdb"
import "github.com/neurlang/crystal/logging"
import "github.com/neurlang/crystal/parallel"
import "github.com/neurlang/crystal/report"
import "github.com/neurlang/crystal/trainer"

func main() {
	configfile := flag.String("config", "", "YAML configuration file")
	data := flag.String("data", "", "gzip JSON lines PDB export, overrides data.path")
	dstmodel := flag.String("dstmodel", "", "model destination .json.zlib file, defaults to <model.dir>/<problem>.json.zlib")
	resume := flag.Bool("resume", false, "resume training")
	cache := flag.String("cache", "", "feature cache directory, overrides data.cache")
	epochs := flag.Int("epochs", 0, "training epochs, overrides train.epochs")
	history := flag.String("history", "", "sqlite training history, overrides history.path")
	dumpconfig := flag.Bool("dumpconfig", false, "print the effective configuration and exit")
	flag.Parse()

	cfg, err := config.Load(*configfile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *data != "" {
		cfg.Data.Path = *data
	}
	if *cache != "" {
		cfg.Data.Cache = *cache
	}
	if *epochs > 0 {
		cfg.Train.Epochs = *epochs
	}
	if *history != "" {
		cfg.History.Path = *history
	}
	if *dumpconfig {
		out, err := config.Dump(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}
	if _, err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.Info("cpu", "info", parallel.Describe())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := trainer.Train(ctx, cfg, pdb.Solvent, trainer.Options{Resume: *resume, Model: *dstmodel})
	if res != nil && len(res.Final.Pred) == res.Test.Len() {
		if stats, err := report.Compute(res.Final.Pred, res.Test.Y); err == nil {
			fmt.Println(report.Render("solvent content (%), test split", stats))
		}
		if len(res.Epochs) > 0 {
			fmt.Println(report.RenderHistory(res.Epochs, 20))
		}
		slog.Info("best model", "path", res.Model, "problem", pdb.Solvent.String(), "test_mse", res.Best)
	}
	if err != nil {
		slog.Error("training failed", logging.Err(err))
		os.Exit(1)
	}
}
