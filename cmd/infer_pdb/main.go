package main

import "context"
import "flag"
import "fmt"
import "log/slog"
import "os"

import "github.com/pkg/errors"

import "github.com/neurlang/crystal/config"
import "github.com/neurlang/crystal/datasets/pdb"
import "github.com/neurlang/crystal/logging"
import "github.com/neurlang/crystal/net/feedforward"
import "github.com/neurlang/crystal/report"
import "github.com/neurlang/crystal/trainer"

func fatal(err error) {
	slog.Error("inference failed", logging.Err(err))
	os.Exit(1)
}

func main() {
	configfile := flag.String("config", "", "YAML configuration file")
	problem := flag.String("problem", "matthews", "matthews or solvent")
	data := flag.String("data", "", "gzip JSON lines PDB export, overrides data.path")
	model := flag.String("model", "", "trained .json.zlib model, defaults to <model.dir>/<problem>.json.zlib")
	cache := flag.String("cache", "", "feature cache directory, overrides data.cache")
	worst := flag.Int("worst", 10, "list this many worst predictions")
	flag.Parse()

	cfg, err := config.Load(*configfile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	p, err := pdb.ParseProblem(*problem)
	if err != nil {
		fatal(err)
	}
	if *data != "" {
		cfg.Data.Path = *data
	}
	if *cache != "" {
		cfg.Data.Cache = *cache
	}
	var path = *model
	if path == "" {
		path = cfg.ModelPath(p)
	}

	var net feedforward.FeedforwardNetwork
	if err := net.ReadZlibWeightsFromFile(path); err != nil {
		fatal(err)
	}
	if net.GetInputs() != p.Width() {
		fatal(errors.Errorf("model %s takes %d inputs, %s has %d features", path, net.GetInputs(), p, p.Width()))
	}

	ds, err := pdb.Prepare(context.Background(), pdb.Source{
		Path:         cfg.Data.Path,
		Cache:        cfg.CachePath(p),
		BuildOptions: pdb.BuildOptions{Threads: cfg.Train.Threads, Filter: cfg.Data.Filter},
	}, p)
	if err != nil {
		fatal(err)
	}
	pred, err := trainer.Predict(&net, ds, cfg.Train.Threads)
	if err != nil {
		fatal(err)
	}
	stats, err := report.Compute(pred, ds.Y)
	if err != nil {
		fatal(err)
	}
	fmt.Println(report.Render(fmt.Sprintf("%s, %d entries", p.Target(), ds.Len()), stats))
	if *worst > 0 {
		fmt.Println(report.RenderWorst(ds.IDs, pred, ds.Y, *worst))
	}
}
