package trainer

import "bytes"
import "compress/gzip"
import "context"
import "fmt"
import "math"
import "math/rand"
import "os"
import "path/filepath"
import "strings"
import "testing"

import "github.com/neurlang/crystal/config"
import "github.com/neurlang/crystal/datasets/pdb"
import "github.com/neurlang/crystal/learning"
import "github.com/neurlang/crystal/net/feedforward"

func writeExport(t testing.TB, path string, n int) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	rng := rand.New(rand.NewSource(5))
	groups := []string{"P 21 21 21", "C 1 2 1", "P 1 21 1", "P 43 21 2"}
	for i := 0; i < n; i++ {
		vm := 1.8 + 2*rng.Float64()
		z := []int{2, 4, 8}[rng.Intn(3)]
		residues := 100 + rng.Intn(300)
		a, b := 40+50*rng.Float64(), 40+50*rng.Float64()
		c := vm * float64(z) * 110 * float64(residues) / (a * b)
		fmt.Fprintf(w, `{"rcsb_id": "P%d", `+
			`"cell": {"length_a": %v, "length_b": %v, "length_c": %v, "angle_alpha": 90, "angle_beta": 90, "angle_gamma": 90, "Z_PDB": %d}, `+
			`"symmetry": {"space_group_name_H-M": %q}, "pdbx_seq_one_letter_code": %q, `+
			`"exptl_crystal": {"density_Matthews": %v, "density_percent_sol": %v}}`+"\n",
			i, a, b, c, z, groups[rng.Intn(len(groups))], strings.Repeat("A", residues), vm, 100*(1-1.23/vm))
	}
	fmt.Fprintln(w, `{"rcsb_id": "broken"`)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func pipelineConfig(t testing.TB) *config.Config {
	dir := t.TempDir()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Data.Path = filepath.Join(dir, "entries.jsonl.gz")
	cfg.Data.Cache = filepath.Join(dir, "cache")
	cfg.Model.Dir = filepath.Join(dir, "models")
	cfg.History.Path = filepath.Join(dir, "history.db")
	cfg.Train.Epochs = 30
	cfg.Train.BatchSize = 16
	cfg.Train.LearningRate = 1e-2
	cfg.Train.Activation = "tanh"
	cfg.Train.StepSize = 10
	writeExport(t, cfg.Data.Path, 200)
	return cfg
}

func TestNewNetwork(t *testing.T) {
	h := learning.Defaults()
	net, err := NewNetwork(9, h, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if net.GetInputs() != 9 || net.GetOutputs() != 1 || net.LenLayers() != 3 {
		t.Errorf("network %d -> %d over %d layers", net.GetInputs(), net.GetOutputs(), net.LenLayers())
	}
	if net.Len() != 9*64+64+64*32+32+32+1 {
		t.Errorf("%d parameters", net.Len())
	}
	h.Activation = "swish"
	if _, err := NewNetwork(9, h, rand.New(rand.NewSource(1))); err == nil {
		t.Errorf("unknown activation accepted")
	}
}

func TestTrainPipeline(t *testing.T) {
	cfg := pipelineConfig(t)

	res, err := Train(context.Background(), cfg, pdb.Solvent, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Train.Len() != 160 || res.Test.Len() != 40 {
		t.Errorf("split %d/%d", res.Train.Len(), res.Test.Len())
	}
	if len(res.Epochs) != 30 || res.Run == "" {
		t.Fatalf("history has %d epochs for run %q", len(res.Epochs), res.Run)
	}
	if res.Best > res.Epochs[0].TestMSE || res.Best > res.Final.MSE {
		t.Errorf("best %v, first %v, final %v", res.Best, res.Epochs[0].TestMSE, res.Final.MSE)
	}
	if res.Final.MAE > 5 {
		t.Errorf("final test mae %v percent", res.Final.MAE)
	}
	for _, path := range []string{cfg.ModelPath(pdb.Solvent), cfg.CachePath(pdb.Solvent)} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s not written: %v", path, err)
		}
	}

	// resuming from the cache, the export is not read again
	os.Remove(cfg.Data.Path)
	cfg.Train.Epochs = 2
	again, err := Train(context.Background(), cfg, pdb.Solvent, Options{Resume: true})
	if err != nil {
		t.Fatal(err)
	}
	if !again.Resumed {
		t.Errorf("model not resumed")
	}
	if again.Best > res.Best*1.0001 {
		t.Errorf("resumed run best %v is worse than the saved %v", again.Best, res.Best)
	}

	h, err := OpenHistory(cfg.History.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	runs, err := h.Runs("solvent")
	if err != nil || len(runs) != 2 {
		t.Errorf("%d runs recorded: %v", len(runs), err)
	}
}

func TestTrainBadHyperparameters(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Train.BatchSize = 0
	if _, err := Train(context.Background(), cfg, pdb.Solvent, Options{}); err == nil {
		t.Errorf("batch size 0 accepted")
	}
}

func TestTrainMatthews(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Train.Epochs = 5
	cfg.History.Path = ""

	solvent, err := Train(context.Background(), cfg, pdb.Solvent, Options{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Train(context.Background(), cfg, pdb.Matthews, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Train.Width() != 9 || res.Net.GetInputs() != 9 {
		t.Errorf("matthews rows have %d features, network takes %d", res.Train.Width(), res.Net.GetInputs())
	}
	if len(res.Final.Pred) != res.Test.Len() || math.IsNaN(res.Final.MAE) {
		t.Errorf("final evaluation %v over %d rows", res.Final.MAE, res.Test.Len())
	}
	if res.Best > res.Final.MSE {
		t.Errorf("best %v above final %v", res.Best, res.Final.MSE)
	}
	if res.Epochs != nil {
		t.Errorf("epochs recorded without a history database")
	}
	if res.Model == solvent.Model || cfg.CachePath(pdb.Matthews) == cfg.CachePath(pdb.Solvent) {
		t.Fatalf("problems share files: %s", res.Model)
	}

	var loaded feedforward.FeedforwardNetwork
	if err := loaded.ReadZlibWeightsFromFile(res.Model); err != nil {
		t.Fatal(err)
	}
	if loaded.GetInputs() != 9 {
		t.Errorf("saved matthews model takes %d inputs", loaded.GetInputs())
	}

	// the solvent cache survived the matthews run
	os.Remove(cfg.Data.Path)
	if _, err := Train(context.Background(), cfg, pdb.Solvent, Options{}); err != nil {
		t.Errorf("solvent cache lost: %v", err)
	}
}
