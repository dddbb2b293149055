package learning

import "math"
import "testing"

func TestAdamFirstStep(t *testing.T) {
	params := [][]float64{{1, -2}, {0.5}}
	a := NewAdam(params, 0.1, 0.9, 0.999, 1e-8, 0)
	a.Step([][]float64{{3, -0.01}, {0}})
	// bias correction makes the first step lr * sign(g)
	if math.Abs(params[0][0]-0.9) > 1e-6 || math.Abs(params[0][1]+1.9) > 1e-6 {
		t.Errorf("first step %v", params[0])
	}
	if params[1][0] != 0.5 {
		t.Errorf("zero gradient moved parameter: %v", params[1][0])
	}
	if a.Steps() != 1 {
		t.Errorf("steps %d", a.Steps())
	}
}

func TestAdamMinimizesQuadratic(t *testing.T) {
	x := []float64{5, -3}
	a := NewAdam([][]float64{x}, 0.1, 0.9, 0.999, 1e-8, 0)
	for i := 0; i < 2000; i++ {
		a.Step([][]float64{{2 * (x[0] - 1), 2 * (x[1] + 2)}})
	}
	if math.Abs(x[0]-1) > 5e-2 || math.Abs(x[1]+2) > 5e-2 {
		t.Errorf("did not converge: %v", x)
	}
}

func TestAdamWeightDecay(t *testing.T) {
	x := []float64{1}
	a := NewAdam([][]float64{x}, 0.01, 0.9, 0.999, 1e-8, 0.1)
	a.Step([][]float64{{0}})
	if x[0] >= 1 {
		t.Errorf("weight decay did not shrink parameter: %v", x[0])
	}
	a.SetLR(0.5)
	if a.LR() != 0.5 {
		t.Errorf("lr %v", a.LR())
	}
}

func TestSchedules(t *testing.T) {
	h := Defaults()
	h.LearningRate = 1
	h.Epochs = 10

	for _, tc := range []struct {
		schedule string
		stepSize int
		gamma    float64
		epoch    int
		want     float64
	}{
		{"step", 3, 0.5, 0, 1},
		{"step", 3, 0.5, 2, 1},
		{"step", 3, 0.5, 3, 0.5},
		{"step", 3, 0.5, 7, 0.25},
		{"exponential", 0, 0.9, 2, 0.81},
		{"linear", 0, 0, 0, 1},
		{"linear", 0, 0, 5, 0.5},
		{"linear", 0, 0, 10, 0},
		{"constant", 0, 0, 99, 1},
	} {
		h.Schedule, h.StepSize, h.Gamma = tc.schedule, tc.stepSize, tc.gamma
		s, err := NewSchedule(h)
		if err != nil {
			t.Fatal(err)
		}
		if got := s.Rate(tc.epoch); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("%s epoch %d: %v, want %v", tc.schedule, tc.epoch, got, tc.want)
		}
	}

	h.Schedule = "cosine"
	if _, err := NewSchedule(h); err == nil {
		t.Errorf("unknown schedule accepted")
	}
	h.Schedule, h.StepSize = "step", 0
	if _, err := NewSchedule(h); err == nil {
		t.Errorf("step schedule without step size accepted")
	}
}

func TestValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatal(err)
	}
	for name, mutate := range map[string]func(*HyperParameters){
		"epochs":   func(h *HyperParameters) { h.Epochs = 0 },
		"batch":    func(h *HyperParameters) { h.BatchSize = -1 },
		"lr":       func(h *HyperParameters) { h.LearningRate = 0 },
		"beta1":    func(h *HyperParameters) { h.Beta1 = 1 },
		"beta2":    func(h *HyperParameters) { h.Beta2 = -0.1 },
		"eps":      func(h *HyperParameters) { h.Eps = 0 },
		"decay":    func(h *HyperParameters) { h.WeightDecay = -1 },
		"fraction": func(h *HyperParameters) { h.TrainFraction = 1 },
		"hidden":   func(h *HyperParameters) { h.Hidden = []int{8, 0} },
		"schedule": func(h *HyperParameters) { h.Schedule = "warmup" },
	} {
		h := Defaults()
		mutate(&h)
		if h.Validate() == nil {
			t.Errorf("%s: invalid hyperparameters accepted", name)
		}
	}
}

func TestLosses(t *testing.T) {
	p := []float64{1, 2, 3}
	y := []float64{1, 4, 0}
	if MSE(p, y) != 13.0/3 || MAE(p, y) != 5.0/3 || math.Abs(RMSE(p, y)-math.Sqrt(13.0/3)) > 1e-12 {
		t.Errorf("losses %v %v %v", MSE(p, y), MAE(p, y), RMSE(p, y))
	}
	if MSE(nil, nil) != 0 || MAE(nil, nil) != 0 {
		t.Errorf("empty losses")
	}
}
