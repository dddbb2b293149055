package trainer

import "context"
import "log/slog"
import "math/rand"
import "os"
import "path/filepath"

import "github.com/pkg/errors"

import "github.com/neurlang/crystal/config"
import "github.com/neurlang/crystal/datasets"
import "github.com/neurlang/crystal/datasets/pdb"
import "github.com/neurlang/crystal/learning"
import "github.com/neurlang/crystal/net/feedforward"

// Result of a training run
type Result struct {
	Run     string // history id, empty without a history database
	Hyper   learning.HyperParameters
	Net     *feedforward.FeedforwardNetwork
	Train   datasets.Dataset // raw, unscaled rows
	Test    datasets.Dataset
	Final   Evaluation // test evaluation after the last epoch
	Best    float64    // lowest test MSE seen, the one saved to the model file
	Model   string     // where the best model was saved
	Resumed bool
	Epochs  []Epoch // recorded history, nil without a history database
}

// Options of one training run
type Options struct {
	Resume bool   // continue from the model file when it exists
	Model  string // model file, empty uses the configured one for the problem
}

// NewNetwork builds an MLP with h's hidden layers and a linear output.
func NewNetwork(inputs int, h learning.HyperParameters, rng *rand.Rand) (*feedforward.FeedforwardNetwork, error) {
	act, err := feedforward.ParseActivation(h.Activation)
	if err != nil {
		return nil, err
	}
	net := new(feedforward.FeedforwardNetwork)
	net.NewInput(inputs)
	for _, n := range h.Hidden {
		net.NewLayer(n, act)
	}
	net.NewLayer(1, feedforward.Identity)
	net.Init(rng)
	return net, nil
}

// Train runs the whole pipeline for problem p: prepare the dataset, split it,
// standardize with statistics of the training split, train and evaluate every
// epoch, saving the best model to the model file.
func Train(ctx context.Context, cfg *config.Config, p pdb.Problem, opt Options) (*Result, error) {
	h, err := cfg.Hyper(p)
	if err != nil {
		return nil, err
	}

	ds, err := pdb.Prepare(ctx, pdb.Source{
		Path:         cfg.Data.Path,
		Cache:        cfg.CachePath(p),
		BuildOptions: pdb.BuildOptions{Threads: h.Threads, Filter: cfg.Data.Filter},
	}, p)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(h.Seed))
	ds.Shuffle(rng)
	train, test := ds.Split(h.TrainFraction)
	if train.Len() == 0 || test.Len() == 0 {
		return nil, errors.Wrapf(datasets.ErrEmpty, "%d rows split into %d train and %d test", ds.Len(), train.Len(), test.Len())
	}

	var scaler datasets.StandardScaler
	if err := scaler.Fit(train); err != nil {
		return nil, errors.Wrap(err, "fitting scaler")
	}

	net, err := NewNetwork(p.Width(), h, rng)
	if err != nil {
		return nil, err
	}
	net.Scaler = &scaler

	var res = &Result{Hyper: h, Net: net, Train: train, Test: test}
	var dstmodel = opt.Model
	if dstmodel == "" {
		dstmodel = cfg.ModelPath(p)
	}
	res.Model = dstmodel
	if err := os.MkdirAll(filepath.Dir(dstmodel), 0755); err != nil {
		return nil, errors.Wrapf(err, "model directory for %q", dstmodel)
	}
	if res.Resumed, err = Resume(net, &opt.Resume, &dstmodel); err != nil {
		return nil, err
	}
	if !net.Scaler.Fitted() {
		net.Scaler = &scaler
	}
	if net.GetInputs() != p.Width() || net.GetOutputs() != 1 {
		return nil, errors.Wrapf(feedforward.ErrShape, "model %q maps %d inputs to %d outputs", dstmodel, net.GetInputs(), net.GetOutputs())
	}

	scaled, err := net.Scaler.TransformAll(train)
	if err != nil {
		return nil, err
	}
	schedule, err := learning.NewSchedule(h)
	if err != nil {
		return nil, err
	}
	adam := learning.NewAdamFrom(net.Params(), h)

	history, err := OpenHistory(cfg.History.Path)
	if err != nil {
		return nil, err
	}
	defer history.Close()
	if res.Run, err = history.BeginRun(p.String(), h); err != nil {
		return nil, err
	}

	best := NoBest()
	evaluate := NewEvaluateFunc(net, test, h.Threads, best, &dstmodel)
	if res.Resumed {
		// a resumed model only gets overwritten by a better one
		if _, err := evaluate(); err != nil {
			return nil, err
		}
	}

	slog.Info("training", "problem", p.String(), "train", train.Len(), "test", test.Len(),
		"params", net.Len(), "hidden", h.Hidden, "run", res.Run)

	loop := NewLoopFunc(h.Epochs, adam, schedule, NewTrainEpochFunc(net, adam, scaled, h.BatchSize, rng), evaluate, history, res.Run)
	res.Final, err = loop(ctx)
	res.Best = *best
	if err != nil {
		return res, err
	}
	if res.Epochs, err = history.Epochs(res.Run); err != nil {
		return res, err
	}
	return res, nil
}
